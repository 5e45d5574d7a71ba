// Package catalog serves the stored books over a read-only HTTP API.
package catalog

import (
	"context"
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"bookseed/internal/logging"
	"bookseed/internal/store"
	"bookseed/pkg/models"
)

// recentRuns is how many ingest runs /stats reports.
const recentRuns = 10

// Reader is the part of the store the API reads from.
type Reader interface {
	Count(ctx context.Context, q store.ListQuery) (int, error)
	List(ctx context.Context, q store.ListQuery) ([]models.Book, error)
	Get(ctx context.Context, bookID string) (*models.Book, error)
	Runs(ctx context.Context, limit int) ([]models.Run, error)
}

type Handler struct {
	Books Reader
}

func NewHandler(books Reader) *Handler {
	return &Handler{Books: books}
}

func (h *Handler) RegisterRoutes(r gin.IRoutes) {
	r.GET("/health", h.health)
	r.GET("/books", h.list)        // GET /books?q=&limit=&offset=
	r.GET("/books/:id", h.getByID) // GET /books/:id
	r.GET("/stats", h.stats)
}

func (h *Handler) health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (h *Handler) list(c *gin.Context) {
	q := store.ListQuery{
		Q:      strings.TrimSpace(c.Query("q")),
		Limit:  parseInt(c.Query("limit"), 20),
		Offset: parseInt(c.Query("offset"), 0),
	}
	q.Limit, q.Offset = store.PageBounds(q)

	total, err := h.Books.Count(c.Request.Context(), q)
	if err != nil {
		logging.WithPrefix("catalog").Error("count failed", "err", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "count failed"})
		return
	}

	items, err := h.Books.List(c.Request.Context(), q)
	if err != nil {
		logging.WithPrefix("catalog").Error("list failed", "err", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "list failed"})
		return
	}
	if items == nil {
		items = []models.Book{}
	}

	c.JSON(http.StatusOK, gin.H{
		"total":  total,
		"limit":  q.Limit,
		"offset": q.Offset,
		"items":  items,
	})
}

func (h *Handler) getByID(c *gin.Context) {
	b, err := h.Books.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		logging.WithPrefix("catalog").Error("get failed", "id", c.Param("id"), "err", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "get failed"})
		return
	}
	if b == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "not found"})
		return
	}
	c.JSON(http.StatusOK, b)
}

func (h *Handler) stats(c *gin.Context) {
	ctx := c.Request.Context()
	total, err := h.Books.Count(ctx, store.ListQuery{})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "count failed"})
		return
	}
	runs, err := h.Books.Runs(ctx, recentRuns)
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "runs failed"})
		return
	}
	if runs == nil {
		runs = []models.Run{}
	}
	c.JSON(http.StatusOK, gin.H{"books": total, "runs": runs})
}

func parseInt(s string, def int) int {
	if strings.TrimSpace(s) == "" {
		return def
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return def
	}
	return n
}
