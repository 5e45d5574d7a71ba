package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"

	"bookseed/internal/store"
	"bookseed/pkg/database"
	"bookseed/pkg/models"
)

func init() { gin.SetMode(gin.TestMode) }

func newTestRouter(t *testing.T) *gin.Engine {
	t.Helper()
	ctx := context.Background()
	s, err := store.OpenSQLite(database.MemoryPath)
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { s.Close() })
	if err := s.EnsureSchema(ctx); err != nil {
		t.Fatal(err)
	}
	if _, err := s.InsertBatch(ctx, []models.Book{
		{BookID: "OL1M", Name: "Dune", Author: "Frank Herbert"},
		{BookID: "OL2M", Name: "Children of Dune", Author: "Frank Herbert"},
		{BookID: "ESLITE_1", Name: "挪威的森林", Author: "村上春樹"},
	}); err != nil {
		t.Fatal(err)
	}
	start := time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC)
	if err := s.RecordRun(ctx, models.Run{ID: "r1", Source: "openlibrary", StartedAt: start, FinishedAt: start, Stats: models.Stats{Inserted: 2}}); err != nil {
		t.Fatal(err)
	}
	return NewRouter(s)
}

func get(t *testing.T, r http.Handler, target string, out any) int {
	t.Helper()
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, target, nil))
	if out != nil && w.Code == http.StatusOK {
		if err := json.Unmarshal(w.Body.Bytes(), out); err != nil {
			t.Fatalf("%s: decode: %v", target, err)
		}
	}
	return w.Code
}

type listResponse struct {
	Total  int           `json:"total"`
	Limit  int           `json:"limit"`
	Offset int           `json:"offset"`
	Items  []models.Book `json:"items"`
}

func TestList(t *testing.T) {
	r := newTestRouter(t)
	cases := []struct {
		target    string
		wantTotal int
		wantIDs   []string
		wantLimit int
	}{
		{"/books", 3, []string{"OL2M", "OL1M", "ESLITE_1"}, 20},
		{"/books?q=herbert&limit=1", 2, []string{"OL2M"}, 1},
		{"/books?q=herbert&limit=1&offset=1", 2, []string{"OL1M"}, 1},
		{"/books?q=%E6%9D%91%E4%B8%8A", 1, []string{"ESLITE_1"}, 20},
		{"/books?limit=500", 3, []string{"OL2M", "OL1M", "ESLITE_1"}, 100},
		{"/books?q=nothing", 0, nil, 20},
	}
	for _, c := range cases {
		var resp listResponse
		if code := get(t, r, c.target, &resp); code != http.StatusOK {
			t.Fatalf("%s: status %d", c.target, code)
		}
		if resp.Total != c.wantTotal || resp.Limit != c.wantLimit || len(resp.Items) != len(c.wantIDs) {
			t.Fatalf("%s: %+v", c.target, resp)
		}
		for i, id := range c.wantIDs {
			if resp.Items[i].BookID != id {
				t.Errorf("%s: item %d = %s, want %s", c.target, i, resp.Items[i].BookID, id)
			}
		}
	}
}

func TestGetByID(t *testing.T) {
	r := newTestRouter(t)
	var b models.Book
	if code := get(t, r, "/books/OL1M", &b); code != http.StatusOK || b.Name != "Dune" {
		t.Fatalf("status %d book %+v", code, b)
	}
	if code := get(t, r, "/books/missing", nil); code != http.StatusNotFound {
		t.Fatalf("missing: status %d", code)
	}
}

func TestHealthAndStats(t *testing.T) {
	r := newTestRouter(t)
	if code := get(t, r, "/health", nil); code != http.StatusOK {
		t.Fatalf("health: %d", code)
	}
	var stats struct {
		Books int          `json:"books"`
		Runs  []models.Run `json:"runs"`
	}
	if code := get(t, r, "/stats", &stats); code != http.StatusOK {
		t.Fatalf("stats: %d", code)
	}
	if stats.Books != 3 || len(stats.Runs) != 1 || stats.Runs[0].Inserted != 2 {
		t.Fatalf("stats = %+v", stats)
	}
}

type brokenReader struct{}

var errBroken = errors.New("broken")

func (brokenReader) Count(context.Context, store.ListQuery) (int, error) {
	return 0, errBroken
}

func (brokenReader) List(context.Context, store.ListQuery) ([]models.Book, error) {
	return nil, errBroken
}

func (brokenReader) Get(context.Context, string) (*models.Book, error) {
	return nil, errBroken
}

func (brokenReader) Runs(context.Context, int) ([]models.Run, error) {
	return nil, errBroken
}

func TestStoreErrors(t *testing.T) {
	r := NewRouter(brokenReader{})
	for _, target := range []string{"/books", "/books/x", "/stats"} {
		if code := get(t, r, target, nil); code != http.StatusInternalServerError {
			t.Errorf("%s: status %d", target, code)
		}
	}
}
