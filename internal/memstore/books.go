package memstore

import (
	"context"
	"sort"
	"time"

	"github.com/google/uuid"

	"shelfwise/internal/apperr"
	"shelfwise/internal/catalog"
)

// BookStore implements catalog.Store and availability.Reconciler over the
// shared store.
type BookStore struct {
	s *Store
}

func (bs *BookStore) InsertBook(_ context.Context, b *catalog.Book) error {
	bs.s.mu.Lock()
	defer bs.s.mu.Unlock()

	for _, existing := range bs.s.books {
		if existing.ISBN == b.ISBN {
			return apperr.Conflict("A book with this ISBN already exists")
		}
	}

	clone := *b
	bs.s.books[b.ID] = &clone
	return nil
}

func (bs *BookStore) GetBook(_ context.Context, id uuid.UUID) (*catalog.Book, error) {
	bs.s.mu.Lock()
	defer bs.s.mu.Unlock()
	return bs.getLocked(id)
}

func (bs *BookStore) getLocked(id uuid.UUID) (*catalog.Book, error) {
	book, ok := bs.s.books[id]
	if !ok {
		return nil, apperr.NotFound("Book not found")
	}
	clone := *book
	return &clone, nil
}

func (bs *BookStore) ListBooks(_ context.Context, filter catalog.Filter) ([]*catalog.Book, error) {
	bs.s.mu.Lock()
	defer bs.s.mu.Unlock()

	var books []*catalog.Book
	for _, book := range bs.s.books {
		if filter.Matches(book) {
			clone := *book
			books = append(books, &clone)
		}
	}
	sort.Slice(books, func(i, j int) bool { return books[i].Title < books[j].Title })
	return books, nil
}

// UpdateBook carries the checked-out count across a quantity change as a
// delta on available. Counting ledger records here would refund a
// reservation whose record is not written yet; the delta cannot.
func (bs *BookStore) UpdateBook(_ context.Context, id uuid.UUID, spec catalog.BookSpec) (*catalog.Book, error) {
	bs.s.mu.Lock()
	defer bs.s.mu.Unlock()

	book, ok := bs.s.books[id]
	if !ok {
		return nil, apperr.NotFound("Book not found")
	}

	for otherID, other := range bs.s.books {
		if otherID != id && other.ISBN == spec.ISBN {
			return nil, apperr.Conflict("A book with this ISBN already exists")
		}
	}

	checkedOut := book.Quantity - book.Available
	if spec.Quantity < checkedOut {
		return nil, apperr.Conflict("Quantity cannot be below the number of active borrowings")
	}

	book.Title = spec.Title
	book.Author = spec.Author
	book.ISBN = spec.ISBN
	book.Category = spec.Category
	book.Quantity = spec.Quantity
	book.Available = spec.Quantity - checkedOut
	book.UpdatedAt = time.Now().UTC()

	clone := *book
	return &clone, nil
}

func (bs *BookStore) DeleteBook(_ context.Context, id uuid.UUID) error {
	bs.s.mu.Lock()
	defer bs.s.mu.Unlock()

	if _, ok := bs.s.books[id]; !ok {
		return apperr.NotFound("Book not found")
	}
	if bs.s.activeLoanCount(id) > 0 {
		return apperr.Conflict("Book has active borrowings")
	}

	delete(bs.s.books, id)
	return nil
}

// ReserveOne decrements available if a copy is left. The check and the
// decrement happen under the store lock, matching the atomicity of the
// Postgres conditional update.
func (bs *BookStore) ReserveOne(_ context.Context, bookID uuid.UUID) error {
	bs.s.mu.Lock()
	defer bs.s.mu.Unlock()

	book, ok := bs.s.books[bookID]
	if !ok {
		return apperr.NotFound("Book not found")
	}
	if book.Available <= 0 {
		return apperr.NotAvailable("Book is not available")
	}

	book.Available--
	book.UpdatedAt = time.Now().UTC()
	return nil
}

// ReleaseOne increments available, capped at quantity.
func (bs *BookStore) ReleaseOne(_ context.Context, bookID uuid.UUID) error {
	bs.s.mu.Lock()
	defer bs.s.mu.Unlock()

	book, ok := bs.s.books[bookID]
	if !ok {
		return apperr.NotFound("Book not found")
	}
	if book.Available < book.Quantity {
		book.Available++
		book.UpdatedAt = time.Now().UTC()
	}
	return nil
}
