// Package availability holds the reconciler: the single authority over a
// book's available count. Reservations and releases are single conditional
// updates, never read-check-write round trips, so concurrent borrows of the
// last copy resolve to exactly one winner.
package availability

import (
	"context"

	"github.com/google/uuid"
)

// Reconciler mutates book availability in lockstep with the borrowing
// ledger.
type Reconciler interface {
	// ReserveOne decrements a book's available count. It fails with
	// NotAvailable when no copies are left and NotFound for an unknown
	// book.
	ReserveOne(ctx context.Context, bookID uuid.UUID) error
	// ReleaseOne increments a book's available count, capped at the
	// total quantity. A capped release is logged, not an error.
	ReleaseOne(ctx context.Context, bookID uuid.UUID) error
}
