package memstore

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"

	"shelfwise/internal/apperr"
	"shelfwise/internal/borrowing"
)

// BorrowingStore implements borrowing.Store over the shared store.
type BorrowingStore struct {
	s *Store
}

func (bs *BorrowingStore) InsertBorrowing(_ context.Context, b *borrowing.Borrowing) error {
	bs.s.mu.Lock()
	defer bs.s.mu.Unlock()

	// Same rule as the partial unique index: one active loan per
	// (book, borrower) pair.
	for _, existing := range bs.s.borrowings {
		if existing.BookID == b.BookID &&
			existing.BorrowerID == b.BorrowerID &&
			existing.Status == borrowing.StatusBorrowed {
			return apperr.Conflict("You have already borrowed this book")
		}
	}

	clone := *b
	bs.s.borrowings[b.ID] = &clone
	return nil
}

func (bs *BorrowingStore) FindActive(_ context.Context, bookID, borrowerID uuid.UUID) (*borrowing.Borrowing, error) {
	bs.s.mu.Lock()
	defer bs.s.mu.Unlock()

	for _, b := range bs.s.borrowings {
		if b.BookID == bookID && b.BorrowerID == borrowerID && b.Status == borrowing.StatusBorrowed {
			clone := *b
			return &clone, nil
		}
	}
	return nil, apperr.NotFound("Borrowing record not found")
}

func (bs *BorrowingStore) MarkReturned(_ context.Context, id, borrowerID uuid.UUID, returnedAt time.Time) (*borrowing.Borrowing, error) {
	bs.s.mu.Lock()
	defer bs.s.mu.Unlock()

	b, ok := bs.s.borrowings[id]
	if !ok || b.BorrowerID != borrowerID || b.Status != borrowing.StatusBorrowed {
		return nil, apperr.NotFound("Borrowing record not found")
	}

	b.Status = borrowing.StatusReturned
	b.ReturnDate = &returnedAt

	clone := *b
	return &clone, nil
}

func (bs *BorrowingStore) Reinstate(_ context.Context, id uuid.UUID) error {
	bs.s.mu.Lock()
	defer bs.s.mu.Unlock()

	b, ok := bs.s.borrowings[id]
	if !ok || b.Status != borrowing.StatusReturned {
		return nil
	}
	b.Status = borrowing.StatusBorrowed
	b.ReturnDate = nil
	return nil
}

func (bs *BorrowingStore) ListAll(_ context.Context) ([]*borrowing.Record, error) {
	bs.s.mu.Lock()
	defer bs.s.mu.Unlock()

	var records []*borrowing.Record
	for _, b := range bs.s.borrowings {
		records = append(records, bs.recordLocked(b))
	}
	sortByBorrowDate(records)
	return records, nil
}

func (bs *BorrowingStore) ListForBorrower(_ context.Context, borrowerID uuid.UUID) ([]*borrowing.Record, error) {
	bs.s.mu.Lock()
	defer bs.s.mu.Unlock()

	var records []*borrowing.Record
	for _, b := range bs.s.borrowings {
		if b.BorrowerID == borrowerID {
			records = append(records, bs.recordLocked(b))
		}
	}
	sortByBorrowDate(records)
	return records, nil
}

// recordLocked joins a borrowing with its book and borrower. Must be called
// with the lock held.
func (bs *BorrowingStore) recordLocked(b *borrowing.Borrowing) *borrowing.Record {
	record := &borrowing.Record{Borrowing: *b}
	if book, ok := bs.s.books[b.BookID]; ok {
		record.BookTitle = book.Title
		record.BookAuthor = book.Author
	}
	if user, ok := bs.s.users[b.BorrowerID]; ok {
		record.Username = user.Username
	}
	return record
}

func sortByBorrowDate(records []*borrowing.Record) {
	sort.Slice(records, func(i, j int) bool {
		return records[i].BorrowDate.After(records[j].BorrowDate)
	})
}
