// internal/catalog/service.go
package catalog

import (
	"context"

	"github.com/google/uuid"
)

// Service defines the interface for the catalog service.
type Service interface {
	Create(ctx context.Context, spec BookSpec) (*Book, error)
	Get(ctx context.Context, id uuid.UUID) (*Book, error)
	List(ctx context.Context, filter Filter) ([]*Book, error)
	Update(ctx context.Context, id uuid.UUID, spec BookSpec) (*Book, error)
	Delete(ctx context.Context, id uuid.UUID) error
}

// Store persists books. Update re-derives the available count from the
// active-loan count and fails with a conflict when the new quantity is
// below it; Delete fails with a conflict while active borrowings reference
// the book.
type Store interface {
	InsertBook(ctx context.Context, b *Book) error
	GetBook(ctx context.Context, id uuid.UUID) (*Book, error)
	ListBooks(ctx context.Context, filter Filter) ([]*Book, error)
	UpdateBook(ctx context.Context, id uuid.UUID, spec BookSpec) (*Book, error)
	DeleteBook(ctx context.Context, id uuid.UUID) error
}
