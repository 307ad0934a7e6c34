// internal/borrowing/service.go
package borrowing

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Service defines the interface for the borrowing ledger.
type Service interface {
	Borrow(ctx context.Context, bookID, borrowerID uuid.UUID, dueDate time.Time) (*Borrowing, error)
	Return(ctx context.Context, borrowingID, borrowerID uuid.UUID) (*Borrowing, error)
	ActiveBorrowing(ctx context.Context, bookID, borrowerID uuid.UUID) (*Borrowing, error)
	ListAll(ctx context.Context) ([]*Record, error)
	ListForBorrower(ctx context.Context, borrowerID uuid.UUID) ([]*Record, error)
}

// Store persists borrowing records. Insert fails with a conflict when an
// active record for the same (book, borrower) pair exists. MarkReturned is
// a conditional transition: it succeeds only for the borrower's own record
// in the borrowed state, so double returns and cross-borrower returns
// surface as not-found.
type Store interface {
	InsertBorrowing(ctx context.Context, b *Borrowing) error
	FindActive(ctx context.Context, bookID, borrowerID uuid.UUID) (*Borrowing, error)
	MarkReturned(ctx context.Context, id, borrowerID uuid.UUID, returnedAt time.Time) (*Borrowing, error)
	// Reinstate reverts a just-returned record back to borrowed. It is
	// the compensation step when the availability release fails after
	// the ledger write.
	Reinstate(ctx context.Context, id uuid.UUID) error
	// The listings join each record with its book and borrower.
	ListAll(ctx context.Context) ([]*Record, error)
	ListForBorrower(ctx context.Context, borrowerID uuid.UUID) ([]*Record, error)
}
