// internal/borrowing/domain.go
package borrowing

import (
	"time"

	"github.com/google/uuid"
)

// Status is the lifecycle state of a borrowing record.
type Status string

const (
	StatusBorrowed Status = "borrowed"
	StatusReturned Status = "returned"
	// StatusOverdue is a recognized stored value, but nothing transitions
	// to it automatically; listings expose a computed overdue flag
	// instead.
	StatusOverdue Status = "overdue"
)

// Borrowing records one loan of one book to one borrower. Its existence in
// the borrowed state is the source of truth for "this copy is lent out".
// A returned record is immutable.
type Borrowing struct {
	ID         uuid.UUID  `json:"id"`
	BookID     uuid.UUID  `json:"book_id"`
	BorrowerID uuid.UUID  `json:"user_id"`
	BorrowDate time.Time  `json:"borrow_date"`
	DueDate    time.Time  `json:"due_date"`
	ReturnDate *time.Time `json:"return_date,omitempty"`
	Status     Status     `json:"status"`
	// Overdue is derived at read time: past due and not yet returned.
	Overdue bool `json:"overdue"`
}

// Record is a borrowing joined with its book and borrower, the shape the
// listing endpoints return.
type Record struct {
	Borrowing
	BookTitle  string `json:"book_title"`
	BookAuthor string `json:"book_author"`
	Username   string `json:"username"`
}

// IsOverdue reports whether the loan is past due and still outstanding.
func (b *Borrowing) IsOverdue(now time.Time) bool {
	return b.Status == StatusBorrowed && now.After(b.DueDate)
}

// Active reports whether the loan is still outstanding.
func (b *Borrowing) Active() bool { return b.Status == StatusBorrowed }
