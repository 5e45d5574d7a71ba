// Package validate is the gate between normalization and the store.
package validate

import (
	"errors"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"

	"bookseed/pkg/models"
)

var ErrBlank = errors.New("required field is blank")

var (
	once sync.Once
	v    *validator.Validate
)

// Validator returns the shared validator instance.
func Validator() *validator.Validate {
	once.Do(func() {
		v = validator.New(validator.WithRequiredStructEnabled())
	})
	return v
}

// Book rejects records missing book_id or name. Whitespace-only values
// count as missing.
func Book(b models.Book) error {
	if err := Validator().Struct(b); err != nil {
		return err
	}
	if strings.TrimSpace(b.BookID) == "" || strings.TrimSpace(b.Name) == "" {
		return ErrBlank
	}
	return nil
}

// Struct validates any tagged struct, e.g. configuration.
func Struct(s any) error {
	return Validator().Struct(s)
}
