package validate

import (
	"errors"
	"testing"

	"github.com/go-playground/validator/v10"

	"bookseed/pkg/models"
)

func TestBook(t *testing.T) {
	cases := []struct {
		name string
		book models.Book
		ok   bool
	}{
		{"complete", models.Book{BookID: "OL1M", Name: "Dune"}, true},
		{"only mandatory", models.Book{BookID: "x", Name: "y"}, true},
		{"empty name", models.Book{BookID: "OL1M", Name: "", Author: "Frank Herbert", ISBN: "0441013597"}, false},
		{"empty id", models.Book{Name: "Dune"}, false},
		{"blank name", models.Book{BookID: "OL1M", Name: "   "}, false},
	}
	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			err := Book(c.book)
			if (err == nil) != c.ok {
				t.Fatalf("Book() err = %v, want ok=%v", err, c.ok)
			}
		})
	}
}

func TestBookErrorKinds(t *testing.T) {
	var verrs validator.ValidationErrors
	if err := Book(models.Book{BookID: "x"}); !errors.As(err, &verrs) {
		t.Fatalf("want ValidationErrors, got %v", err)
	}
	if err := Book(models.Book{BookID: "x", Name: " "}); !errors.Is(err, ErrBlank) {
		t.Fatalf("want ErrBlank, got %v", err)
	}
}
