package borrowing_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"shelfwise/internal/apperr"
	"shelfwise/internal/availability"
	"shelfwise/internal/borrowing"
	"shelfwise/internal/catalog"
	"shelfwise/internal/memstore"
)

type fixture struct {
	borrowing borrowing.Service
	catalog   catalog.Service
}

func newFixture() *fixture {
	mem := memstore.New()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	return &fixture{
		borrowing: borrowing.NewService(mem.Borrowings(), mem.Books(), logger),
		catalog:   catalog.NewService(mem.Books()),
	}
}

func (f *fixture) addBook(t *testing.T, quantity int) *catalog.Book {
	t.Helper()
	book, err := f.catalog.Create(context.Background(), catalog.BookSpec{
		Title:    "The Left Hand of Darkness",
		Author:   "Ursula K. Le Guin",
		ISBN:     "9780441478125",
		Category: "science-fiction",
		Quantity: quantity,
	})
	require.NoError(t, err)
	return book
}

func (f *fixture) available(t *testing.T, id uuid.UUID) int {
	t.Helper()
	book, err := f.catalog.Get(context.Background(), id)
	require.NoError(t, err)
	return book.Available
}

func dueIn(d time.Duration) time.Time { return time.Now().UTC().Add(d) }

func TestBorrowAndReturnFlow(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	book := f.addBook(t, 2)
	alice, bob, carol := uuid.New(), uuid.New(), uuid.New()

	aliceLoan, err := f.borrowing.Borrow(ctx, book.ID, alice, dueIn(14*24*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, borrowing.StatusBorrowed, aliceLoan.Status)
	assert.Equal(t, 1, f.available(t, book.ID))

	_, err = f.borrowing.Borrow(ctx, book.ID, bob, dueIn(14*24*time.Hour))
	require.NoError(t, err)
	assert.Equal(t, 0, f.available(t, book.ID))

	_, err = f.borrowing.Borrow(ctx, book.ID, carol, dueIn(14*24*time.Hour))
	require.Error(t, err)
	assert.Equal(t, apperr.KindNotAvailable, apperr.KindOf(err))
	assert.Equal(t, 0, f.available(t, book.ID))

	returned, err := f.borrowing.Return(ctx, aliceLoan.ID, alice)
	require.NoError(t, err)
	assert.Equal(t, borrowing.StatusReturned, returned.Status)
	require.NotNil(t, returned.ReturnDate)
	assert.Equal(t, 1, f.available(t, book.ID))
}

func TestBorrowUnknownBook(t *testing.T) {
	f := newFixture()

	_, err := f.borrowing.Borrow(context.Background(), uuid.New(), uuid.New(), dueIn(time.Hour))
	require.Error(t, err)
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
}

func TestBorrowSameBookTwiceConflicts(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	book := f.addBook(t, 3)
	alice := uuid.New()

	_, err := f.borrowing.Borrow(ctx, book.ID, alice, dueIn(time.Hour))
	require.NoError(t, err)
	assert.Equal(t, 2, f.available(t, book.ID))

	_, err = f.borrowing.Borrow(ctx, book.ID, alice, dueIn(time.Hour))
	require.Error(t, err)
	assert.Equal(t, apperr.KindConflict, apperr.KindOf(err))
	// No state change on conflict.
	assert.Equal(t, 2, f.available(t, book.ID))
}

func TestBorrowRejectsPastDueDate(t *testing.T) {
	f := newFixture()
	book := f.addBook(t, 1)

	_, err := f.borrowing.Borrow(context.Background(), book.ID, uuid.New(), dueIn(-time.Hour))
	require.Error(t, err)
	assert.Equal(t, apperr.KindValidation, apperr.KindOf(err))
	assert.Equal(t, 1, f.available(t, book.ID))
}

func TestReturnTwiceIncrementsOnce(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	book := f.addBook(t, 1)
	alice := uuid.New()

	loan, err := f.borrowing.Borrow(ctx, book.ID, alice, dueIn(time.Hour))
	require.NoError(t, err)
	assert.Equal(t, 0, f.available(t, book.ID))

	_, err = f.borrowing.Return(ctx, loan.ID, alice)
	require.NoError(t, err)
	assert.Equal(t, 1, f.available(t, book.ID))

	_, err = f.borrowing.Return(ctx, loan.ID, alice)
	require.Error(t, err)
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
	assert.Equal(t, 1, f.available(t, book.ID))
}

func TestReturnSomeoneElsesLoan(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	book := f.addBook(t, 1)
	alice, mallory := uuid.New(), uuid.New()

	loan, err := f.borrowing.Borrow(ctx, book.ID, alice, dueIn(time.Hour))
	require.NoError(t, err)

	_, err = f.borrowing.Return(ctx, loan.ID, mallory)
	require.Error(t, err)
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
	assert.Equal(t, 0, f.available(t, book.ID))
}

func TestConcurrentBorrowOfLastCopy(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	book := f.addBook(t, 1)

	const borrowers = 10
	var wg sync.WaitGroup
	var mu sync.Mutex
	successes, notAvailable := 0, 0

	for i := 0; i < borrowers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.borrowing.Borrow(ctx, book.ID, uuid.New(), dueIn(time.Hour))
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				successes++
			case apperr.IsKind(err, apperr.KindNotAvailable):
				notAvailable++
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, successes, "only one concurrent borrow should succeed")
	assert.Equal(t, borrowers-1, notAvailable)
	assert.Equal(t, 0, f.available(t, book.ID))
}

// flakyStore fails ledger writes on demand.
type flakyStore struct {
	borrowing.Store
	failInsert bool
}

func (s *flakyStore) InsertBorrowing(ctx context.Context, b *borrowing.Borrowing) error {
	if s.failInsert {
		return apperr.Internal(errors.New("connection reset"))
	}
	return s.Store.InsertBorrowing(ctx, b)
}

// flakyReconciler fails releases on demand.
type flakyReconciler struct {
	availability.Reconciler
	failRelease bool
}

func (r *flakyReconciler) ReleaseOne(ctx context.Context, bookID uuid.UUID) error {
	if r.failRelease {
		return apperr.Internal(errors.New("connection reset"))
	}
	return r.Reconciler.ReleaseOne(ctx, bookID)
}

func TestBorrowReleasesReservationOnFailedWrite(t *testing.T) {
	mem := memstore.New()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	store := &flakyStore{Store: mem.Borrowings(), failInsert: true}
	loans := borrowing.NewService(store, mem.Books(), logger)
	books := catalog.NewService(mem.Books())
	ctx := context.Background()

	book, err := books.Create(ctx, catalog.BookSpec{
		Title:    "The Dispossessed",
		Author:   "Ursula K. Le Guin",
		ISBN:     "9780061054884",
		Category: "science-fiction",
		Quantity: 1,
	})
	require.NoError(t, err)
	alice := uuid.New()

	_, err = loans.Borrow(ctx, book.ID, alice, dueIn(time.Hour))
	require.Error(t, err)

	// The reservation was released, not leaked as a phantom loan.
	got, err := books.Get(ctx, book.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, got.Available)

	// The copy is borrowable again once the store recovers.
	store.failInsert = false
	_, err = loans.Borrow(ctx, book.ID, alice, dueIn(time.Hour))
	require.NoError(t, err)
	got, err = books.Get(ctx, book.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, got.Available)
}

func TestReturnReinstatesRecordOnFailedRelease(t *testing.T) {
	mem := memstore.New()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	reconciler := &flakyReconciler{Reconciler: mem.Books()}
	loans := borrowing.NewService(mem.Borrowings(), reconciler, logger)
	books := catalog.NewService(mem.Books())
	ctx := context.Background()

	book, err := books.Create(ctx, catalog.BookSpec{
		Title:    "The Dispossessed",
		Author:   "Ursula K. Le Guin",
		ISBN:     "9780061054884",
		Category: "science-fiction",
		Quantity: 1,
	})
	require.NoError(t, err)
	alice := uuid.New()

	loan, err := loans.Borrow(ctx, book.ID, alice, dueIn(time.Hour))
	require.NoError(t, err)

	reconciler.failRelease = true
	_, err = loans.Return(ctx, loan.ID, alice)
	require.Error(t, err)

	// The record reverted to borrowed and the copy stays counted out, so
	// the ledger and the counter still agree.
	active, err := loans.ActiveBorrowing(ctx, book.ID, alice)
	require.NoError(t, err)
	assert.Equal(t, loan.ID, active.ID)
	assert.Equal(t, borrowing.StatusBorrowed, active.Status)
	got, err := books.Get(ctx, book.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, got.Available)

	// The retry succeeds once the release path recovers.
	reconciler.failRelease = false
	returned, err := loans.Return(ctx, loan.ID, alice)
	require.NoError(t, err)
	assert.Equal(t, borrowing.StatusReturned, returned.Status)
	got, err = books.Get(ctx, book.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, got.Available)
}

func TestListForBorrowerMarksOverdue(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	book := f.addBook(t, 1)
	alice := uuid.New()

	// Just barely in the future; past due by the time we list.
	_, err := f.borrowing.Borrow(ctx, book.ID, alice, dueIn(time.Millisecond))
	require.NoError(t, err)
	time.Sleep(5 * time.Millisecond)

	records, err := f.borrowing.ListForBorrower(ctx, alice)
	require.NoError(t, err)
	require.Len(t, records, 1)
	assert.Equal(t, borrowing.StatusBorrowed, records[0].Status)
	assert.True(t, records[0].Overdue)
	assert.Equal(t, "The Left Hand of Darkness", records[0].BookTitle)
}
