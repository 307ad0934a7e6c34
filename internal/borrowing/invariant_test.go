package borrowing_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"pgregory.net/rapid"

	"shelfwise/internal/apperr"
	"shelfwise/internal/borrowing"
	"shelfwise/internal/catalog"
)

func catalogSpec(quantity int) catalog.BookSpec {
	return catalog.BookSpec{
		Title:    "Invisible Cities",
		Author:   "Italo Calvino",
		ISBN:     "9780156453806",
		Category: "fiction",
		Quantity: quantity,
	}
}

// The availability invariant: for every book, at all times,
// 0 <= available <= quantity and quantity - available equals the number of
// active borrowings. Random interleavings of borrow and return must never
// break it.
func TestAvailabilityInvariant(t *testing.T) {
	rapid.Check(t, func(rt *rapid.T) {
		f := newFixture()
		ctx := context.Background()

		quantity := rapid.IntRange(1, 5).Draw(rt, "quantity")
		book, err := f.catalog.Create(ctx, catalogSpec(quantity))
		if err != nil {
			rt.Fatalf("failed to create book: %v", err)
		}

		borrowers := make([]uuid.UUID, 8)
		for i := range borrowers {
			borrowers[i] = uuid.New()
		}
		var active []*borrowing.Borrowing

		ops := rapid.IntRange(1, 40).Draw(rt, "ops")
		for i := 0; i < ops; i++ {
			if len(active) > 0 && rapid.Bool().Draw(rt, "doReturn") {
				idx := rapid.IntRange(0, len(active)-1).Draw(rt, "loan")
				loan := active[idx]
				if _, err := f.borrowing.Return(ctx, loan.ID, loan.BorrowerID); err != nil {
					rt.Fatalf("return failed: %v", err)
				}
				active = append(active[:idx], active[idx+1:]...)
			} else {
				who := borrowers[rapid.IntRange(0, len(borrowers)-1).Draw(rt, "borrower")]
				loan, err := f.borrowing.Borrow(ctx, book.ID, who, time.Now().UTC().Add(time.Hour))
				switch {
				case err == nil:
					active = append(active, loan)
				case apperr.IsKind(err, apperr.KindNotAvailable):
				case apperr.IsKind(err, apperr.KindConflict):
				default:
					rt.Fatalf("borrow failed: %v", err)
				}
			}

			current, err := f.catalog.Get(ctx, book.ID)
			if err != nil {
				rt.Fatalf("get failed: %v", err)
			}
			if current.Available < 0 || current.Available > current.Quantity {
				rt.Fatalf("available %d out of bounds [0, %d]", current.Available, current.Quantity)
			}
			if got := current.Quantity - current.Available; got != len(active) {
				rt.Fatalf("quantity - available = %d, want %d active borrowings", got, len(active))
			}
		}
	})
}
