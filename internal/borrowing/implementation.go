// internal/borrowing/implementation.go
package borrowing

import (
	"context"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	"shelfwise/internal/apperr"
	"shelfwise/internal/availability"
)

// service implements the Service interface.
type service struct {
	store      Store
	reconciler availability.Reconciler
	logger     *slog.Logger
	tracer     trace.Tracer

	borrowsCreated  metric.Int64Counter
	borrowsReturned metric.Int64Counter
	borrowsRejected metric.Int64Counter
}

// NewService creates a new borrowing service instance. All availability
// changes go through the reconciler; the service never touches the counter
// itself.
func NewService(store Store, reconciler availability.Reconciler, logger *slog.Logger) Service {
	meter := otel.Meter("shelfwise/borrowing")
	borrowsCreated, _ := meter.Int64Counter("borrowings.created")
	borrowsReturned, _ := meter.Int64Counter("borrowings.returned")
	borrowsRejected, _ := meter.Int64Counter("borrowings.rejected")

	return &service{
		store:           store,
		reconciler:      reconciler,
		logger:          logger,
		tracer:          otel.Tracer("shelfwise/borrowing"),
		borrowsCreated:  borrowsCreated,
		borrowsReturned: borrowsReturned,
		borrowsRejected: borrowsRejected,
	}
}

// Borrow checks for a duplicate active loan, reserves a copy, then writes
// the ledger record. A failed ledger write releases the reservation so no
// copy leaks as permanently checked out.
func (s *service) Borrow(ctx context.Context, bookID, borrowerID uuid.UUID, dueDate time.Time) (*Borrowing, error) {
	ctx, span := s.tracer.Start(ctx, "borrowing.borrow",
		trace.WithAttributes(
			attribute.String("book.id", bookID.String()),
			attribute.String("borrower.id", borrowerID.String()),
		),
	)
	defer span.End()

	now := time.Now().UTC()
	if !dueDate.After(now) {
		s.reject(ctx, "due_date")
		return nil, apperr.Validation(apperr.FieldError{
			Field:   "due_date",
			Message: "Due date must be in the future",
		})
	}

	existing, err := s.store.FindActive(ctx, bookID, borrowerID)
	if err != nil && !apperr.IsKind(err, apperr.KindNotFound) {
		return nil, err
	}
	if existing != nil {
		s.reject(ctx, "duplicate")
		return nil, apperr.Conflict("You have already borrowed this book")
	}

	if err := s.reconciler.ReserveOne(ctx, bookID); err != nil {
		if apperr.IsKind(err, apperr.KindNotAvailable) {
			s.reject(ctx, "not_available")
		}
		return nil, err
	}

	record := &Borrowing{
		ID:         uuid.New(),
		BookID:     bookID,
		BorrowerID: borrowerID,
		BorrowDate: now,
		DueDate:    dueDate,
		Status:     StatusBorrowed,
	}

	if err := s.store.InsertBorrowing(ctx, record); err != nil {
		// Compensate: the reservation must not outlive the failed
		// ledger write.
		if relErr := s.reconciler.ReleaseOne(ctx, bookID); relErr != nil {
			s.logger.ErrorContext(ctx, "failed to compensate reservation",
				"book_id", bookID,
				"error", relErr,
			)
		}
		if apperr.IsKind(err, apperr.KindConflict) {
			s.reject(ctx, "duplicate")
			return nil, apperr.Conflict("You have already borrowed this book")
		}
		return nil, err
	}

	s.borrowsCreated.Add(ctx, 1)
	return record, nil
}

// Return transitions the borrower's own active record to returned, then
// releases the copy. A failed release reinstates the record so the ledger
// and the counter do not diverge.
func (s *service) Return(ctx context.Context, borrowingID, borrowerID uuid.UUID) (*Borrowing, error) {
	ctx, span := s.tracer.Start(ctx, "borrowing.return",
		trace.WithAttributes(
			attribute.String("borrowing.id", borrowingID.String()),
			attribute.String("borrower.id", borrowerID.String()),
		),
	)
	defer span.End()

	record, err := s.store.MarkReturned(ctx, borrowingID, borrowerID, time.Now().UTC())
	if err != nil {
		return nil, err
	}

	if err := s.reconciler.ReleaseOne(ctx, record.BookID); err != nil {
		s.logger.ErrorContext(ctx, "failed to release copy, reinstating borrowing",
			"borrowing_id", borrowingID,
			"book_id", record.BookID,
			"error", err,
		)
		if reErr := s.store.Reinstate(ctx, borrowingID); reErr != nil {
			s.logger.ErrorContext(ctx, "failed to reinstate borrowing",
				"borrowing_id", borrowingID,
				"error", reErr,
			)
		}
		return nil, err
	}

	s.borrowsReturned.Add(ctx, 1)
	return record, nil
}

// ActiveBorrowing returns the outstanding loan for a (book, borrower)
// pair.
func (s *service) ActiveBorrowing(ctx context.Context, bookID, borrowerID uuid.UUID) (*Borrowing, error) {
	return s.store.FindActive(ctx, bookID, borrowerID)
}

// ListAll returns every borrowing record joined with its book and borrower.
func (s *service) ListAll(ctx context.Context) ([]*Record, error) {
	records, err := s.store.ListAll(ctx)
	if err != nil {
		return nil, err
	}
	markOverdue(records)
	return records, nil
}

// ListForBorrower returns the borrower's own records joined with their books.
func (s *service) ListForBorrower(ctx context.Context, borrowerID uuid.UUID) ([]*Record, error) {
	records, err := s.store.ListForBorrower(ctx, borrowerID)
	if err != nil {
		return nil, err
	}
	markOverdue(records)
	return records, nil
}

func markOverdue(records []*Record) {
	now := time.Now().UTC()
	for _, r := range records {
		r.Overdue = r.IsOverdue(now)
	}
}

func (s *service) reject(ctx context.Context, reason string) {
	s.borrowsRejected.Add(ctx, 1, metric.WithAttributes(attribute.String("reason", reason)))
}
