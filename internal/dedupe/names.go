package dedupe

import (
	"strings"

	"bookseed/pkg/models"
)

// NormalizeName is the equivalence key for name-based dedupe:
// lowercased with whitespace runs collapsed.
func NormalizeName(name string) string {
	return strings.Join(strings.Fields(strings.ToLower(name)), " ")
}

// ByName keeps the first book for each normalized name, in input order.
// Books whose name normalizes to "" are dropped as well.
func ByName(books []models.Book) ([]models.Book, int) {
	seen := make(map[string]struct{}, len(books))
	kept := make([]models.Book, 0, len(books))
	for _, b := range books {
		key := NormalizeName(b.Name)
		if key == "" {
			continue
		}
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		kept = append(kept, b)
	}
	return kept, len(books) - len(kept)
}
