// internal/catalog/domain.go
package catalog

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"shelfwise/internal/apperr"
)

// Book represents a title in the catalog. Available counts copies not
// currently on loan; it is mutated only by the availability reconciler and
// by quantity changes re-deriving it from the active-loan count.
type Book struct {
	ID        uuid.UUID `json:"id"`
	Title     string    `json:"title"`
	Author    string    `json:"author"`
	ISBN      string    `json:"isbn"`
	Category  string    `json:"category"`
	Quantity  int       `json:"quantity"`
	Available int       `json:"available"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// BookSpec carries the caller-settable fields of a book. Available is
// deliberately absent.
type BookSpec struct {
	Title    string
	Author   string
	ISBN     string
	Category string
	Quantity int
}

// Validate checks the spec's required fields and ranges.
func (s BookSpec) Validate() error {
	var fields []apperr.FieldError
	for _, f := range []struct {
		name, label, value string
	}{
		{"title", "Title", s.Title},
		{"author", "Author", s.Author},
		{"isbn", "ISBN", s.ISBN},
		{"category", "Category", s.Category},
	} {
		if strings.TrimSpace(f.value) == "" {
			fields = append(fields, apperr.FieldError{
				Field:   f.name,
				Message: f.label + " is required",
			})
		}
	}
	if s.Quantity < 0 {
		fields = append(fields, apperr.FieldError{
			Field:   "quantity",
			Message: "Quantity must be a positive number",
		})
	}
	if len(fields) > 0 {
		return apperr.Validation(fields...)
	}
	return nil
}

// Filter narrows a catalog listing.
type Filter struct {
	// Search matches title or author, case-insensitive substring.
	Search string
	// Category is an exact match.
	Category string
	// AvailableOnly keeps books with at least one copy available.
	AvailableOnly bool
}

// Matches reports whether the book passes the filter. The Postgres store
// expresses the same predicate in SQL; this form serves the in-memory
// backend.
func (f Filter) Matches(b *Book) bool {
	if f.Search != "" {
		needle := strings.ToLower(f.Search)
		if !strings.Contains(strings.ToLower(b.Title), needle) &&
			!strings.Contains(strings.ToLower(b.Author), needle) {
			return false
		}
	}
	if f.Category != "" && b.Category != f.Category {
		return false
	}
	if f.AvailableOnly && b.Available <= 0 {
		return false
	}
	return true
}
