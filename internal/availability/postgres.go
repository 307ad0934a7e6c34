// internal/availability/postgres.go
package availability

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"shelfwise/internal/apperr"
)

// PostgresReconciler implements Reconciler with conditional UPDATE
// statements, leaving the check-then-mutate race to the database.
type PostgresReconciler struct {
	db     *sql.DB
	tracer trace.Tracer
	logger *slog.Logger
}

// NewPostgresReconciler creates a Postgres-backed reconciler.
func NewPostgresReconciler(db *sql.DB, logger *slog.Logger) *PostgresReconciler {
	return &PostgresReconciler{
		db:     db,
		tracer: otel.Tracer("shelfwise/availability"),
		logger: logger,
	}
}

// ReserveOne atomically decrements available if any copy is left.
func (r *PostgresReconciler) ReserveOne(ctx context.Context, bookID uuid.UUID) error {
	ctx, span := r.tracer.Start(ctx, "availability.reserve",
		trace.WithAttributes(attribute.String("book.id", bookID.String())),
	)
	defer span.End()

	res, err := r.db.ExecContext(ctx, `
		UPDATE books
		SET available = available - 1, updated_at = NOW()
		WHERE id = $1 AND available > 0
	`, bookID)
	if err != nil {
		return fmt.Errorf("failed to reserve copy: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to reserve copy: %w", err)
	}
	if affected == 0 {
		exists, err := r.bookExists(ctx, bookID)
		if err != nil {
			return err
		}
		if !exists {
			return apperr.NotFound("Book not found")
		}
		span.SetAttributes(attribute.Bool("reserve.rejected", true))
		return apperr.NotAvailable("Book is not available")
	}

	return nil
}

// ReleaseOne atomically increments available, capped at quantity. Hitting
// the cap means a double release happened somewhere; the anomaly is logged
// and the release treated as a no-op.
func (r *PostgresReconciler) ReleaseOne(ctx context.Context, bookID uuid.UUID) error {
	ctx, span := r.tracer.Start(ctx, "availability.release",
		trace.WithAttributes(attribute.String("book.id", bookID.String())),
	)
	defer span.End()

	res, err := r.db.ExecContext(ctx, `
		UPDATE books
		SET available = available + 1, updated_at = NOW()
		WHERE id = $1 AND available < quantity
	`, bookID)
	if err != nil {
		return fmt.Errorf("failed to release copy: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to release copy: %w", err)
	}
	if affected == 0 {
		exists, err := r.bookExists(ctx, bookID)
		if err != nil {
			return err
		}
		if !exists {
			return apperr.NotFound("Book not found")
		}
		span.SetAttributes(attribute.Bool("release.capped", true))
		r.logger.WarnContext(ctx, "release with all copies already available",
			"book_id", bookID,
		)
	}

	return nil
}

func (r *PostgresReconciler) bookExists(ctx context.Context, bookID uuid.UUID) (bool, error) {
	var one int
	err := r.db.QueryRowContext(ctx, `SELECT 1 FROM books WHERE id = $1`, bookID).Scan(&one)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to check book existence: %w", err)
	}
	return true, nil
}
