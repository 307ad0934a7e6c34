// internal/catalog/implementation.go
package catalog

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// service implements the Service interface.
type service struct {
	store Store
}

// NewService creates a new catalog service instance.
func NewService(store Store) Service {
	return &service{store: store}
}

// Create adds a book to the catalog with all copies available.
func (s *service) Create(ctx context.Context, spec BookSpec) (*Book, error) {
	if err := spec.Validate(); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	book := &Book{
		ID:        uuid.New(),
		Title:     spec.Title,
		Author:    spec.Author,
		ISBN:      spec.ISBN,
		Category:  spec.Category,
		Quantity:  spec.Quantity,
		Available: spec.Quantity,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := s.store.InsertBook(ctx, book); err != nil {
		return nil, err
	}
	return book, nil
}

// Get retrieves a book by id.
func (s *service) Get(ctx context.Context, id uuid.UUID) (*Book, error) {
	return s.store.GetBook(ctx, id)
}

// List returns books matching the filter.
func (s *service) List(ctx context.Context, filter Filter) ([]*Book, error) {
	return s.store.ListBooks(ctx, filter)
}

// Update replaces the caller-settable fields. The available count is not
// among them; the store re-derives it from the active-loan count.
func (s *service) Update(ctx context.Context, id uuid.UUID, spec BookSpec) (*Book, error) {
	if err := spec.Validate(); err != nil {
		return nil, err
	}
	return s.store.UpdateBook(ctx, id, spec)
}

// Delete removes a book with no active borrowings.
func (s *service) Delete(ctx context.Context, id uuid.UUID) error {
	return s.store.DeleteBook(ctx, id)
}
