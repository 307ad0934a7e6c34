// internal/borrowing/postgres.go
package borrowing

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"shelfwise/internal/apperr"
)

const borrowingColumns = "id, book_id, user_id, borrow_date, due_date, return_date, status"

// PostgresStore persists borrowing records in PostgreSQL. The partial
// unique index on active (book_id, user_id) pairs backstops the duplicate
// check in the service.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgresStore creates a Postgres-backed borrowing store.
func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) InsertBorrowing(ctx context.Context, b *Borrowing) error {
	query := `
		INSERT INTO borrowings (id, book_id, user_id, borrow_date, due_date, return_date, status)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
	`
	_, err := s.db.ExecContext(ctx, query,
		b.ID, b.BookID, b.BorrowerID, b.BorrowDate, b.DueDate, b.ReturnDate, b.Status)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23505" {
			return apperr.Conflict("You have already borrowed this book")
		}
		return fmt.Errorf("failed to insert borrowing: %w", err)
	}
	return nil
}

func (s *PostgresStore) FindActive(ctx context.Context, bookID, borrowerID uuid.UUID) (*Borrowing, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM borrowings
		WHERE book_id = $1 AND user_id = $2 AND status = 'borrowed'
	`, borrowingColumns)

	record, err := scanBorrowing(s.db.QueryRowContext(ctx, query, bookID, borrowerID))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperr.NotFound("Borrowing record not found")
		}
		return nil, fmt.Errorf("failed to find active borrowing: %w", err)
	}
	return record, nil
}

// MarkReturned transitions the record to returned in one conditional
// update: wrong borrower, unknown id and already-returned all fall out as
// zero rows.
func (s *PostgresStore) MarkReturned(ctx context.Context, id, borrowerID uuid.UUID, returnedAt time.Time) (*Borrowing, error) {
	query := fmt.Sprintf(`
		UPDATE borrowings
		SET status = 'returned', return_date = $3
		WHERE id = $1 AND user_id = $2 AND status = 'borrowed'
		RETURNING %s
	`, borrowingColumns)

	record, err := scanBorrowing(s.db.QueryRowContext(ctx, query, id, borrowerID, returnedAt))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperr.NotFound("Borrowing record not found")
		}
		return nil, fmt.Errorf("failed to mark borrowing returned: %w", err)
	}
	return record, nil
}

func (s *PostgresStore) Reinstate(ctx context.Context, id uuid.UUID) error {
	query := `
		UPDATE borrowings
		SET status = 'borrowed', return_date = NULL
		WHERE id = $1 AND status = 'returned'
	`
	if _, err := s.db.ExecContext(ctx, query, id); err != nil {
		return fmt.Errorf("failed to reinstate borrowing: %w", err)
	}
	return nil
}

// recordColumns joins each borrowing with its book and borrower. The
// restrict foreign keys guarantee both rows exist.
const recordColumns = `b.id, b.book_id, b.user_id, b.borrow_date, b.due_date, b.return_date, b.status,
	bk.title, bk.author, u.username`

func (s *PostgresStore) ListAll(ctx context.Context) ([]*Record, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM borrowings b
		JOIN books bk ON bk.id = b.book_id
		JOIN users u ON u.id = b.user_id
		ORDER BY b.borrow_date DESC
	`, recordColumns)
	return s.list(ctx, query)
}

func (s *PostgresStore) ListForBorrower(ctx context.Context, borrowerID uuid.UUID) ([]*Record, error) {
	query := fmt.Sprintf(`
		SELECT %s FROM borrowings b
		JOIN books bk ON bk.id = b.book_id
		JOIN users u ON u.id = b.user_id
		WHERE b.user_id = $1
		ORDER BY b.borrow_date DESC
	`, recordColumns)
	return s.list(ctx, query, borrowerID)
}

func (s *PostgresStore) list(ctx context.Context, query string, args ...interface{}) ([]*Record, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list borrowings: %w", err)
	}
	defer rows.Close()

	var records []*Record
	for rows.Next() {
		record, err := scanRecord(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan borrowing: %w", err)
		}
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate borrowings: %w", err)
	}
	return records, nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanBorrowing(row rowScanner) (*Borrowing, error) {
	record := &Borrowing{}
	var returnDate sql.NullTime
	err := row.Scan(
		&record.ID,
		&record.BookID,
		&record.BorrowerID,
		&record.BorrowDate,
		&record.DueDate,
		&returnDate,
		&record.Status,
	)
	if err != nil {
		return nil, err
	}
	if returnDate.Valid {
		record.ReturnDate = &returnDate.Time
	}
	return record, nil
}

func scanRecord(row rowScanner) (*Record, error) {
	record := &Record{}
	var returnDate sql.NullTime
	err := row.Scan(
		&record.ID,
		&record.BookID,
		&record.BorrowerID,
		&record.BorrowDate,
		&record.DueDate,
		&returnDate,
		&record.Status,
		&record.BookTitle,
		&record.BookAuthor,
		&record.Username,
	)
	if err != nil {
		return nil, err
	}
	if returnDate.Valid {
		record.ReturnDate = &returnDate.Time
	}
	return record, nil
}
