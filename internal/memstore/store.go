// Package memstore provides in-memory implementations of the catalog,
// borrowing, identity, and availability store interfaces. It backs the
// server when no DATABASE_URL is configured and the unit and property
// tests. One mutex guards all collections, mirroring the transactional
// boundary the Postgres stores get from conditional updates.
package memstore

import (
	"sync"

	"github.com/google/uuid"

	"shelfwise/internal/borrowing"
	"shelfwise/internal/catalog"
	"shelfwise/internal/identity"
)

// Store holds all collections behind one lock.
type Store struct {
	mu         sync.Mutex
	books      map[uuid.UUID]*catalog.Book
	borrowings map[uuid.UUID]*borrowing.Borrowing
	users      map[uuid.UUID]*identity.User
}

// New creates an empty store.
func New() *Store {
	return &Store{
		books:      make(map[uuid.UUID]*catalog.Book),
		borrowings: make(map[uuid.UUID]*borrowing.Borrowing),
		users:      make(map[uuid.UUID]*identity.User),
	}
}

// Books exposes the catalog store and availability reconciler view.
func (s *Store) Books() *BookStore { return &BookStore{s: s} }

// Borrowings exposes the borrowing store view.
func (s *Store) Borrowings() *BorrowingStore { return &BorrowingStore{s: s} }

// Users exposes the identity store view.
func (s *Store) Users() *UserStore { return &UserStore{s: s} }

// activeLoanCount must be called with the lock held.
func (s *Store) activeLoanCount(bookID uuid.UUID) int {
	count := 0
	for _, b := range s.borrowings {
		if b.BookID == bookID && b.Status == borrowing.StatusBorrowed {
			count++
		}
	}
	return count
}
