// internal/catalog/postgres.go
package catalog

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"shelfwise/internal/apperr"
)

const bookColumns = "id, title, author, isbn, category, quantity, available, created_at, updated_at"

// PostgresStore persists books in PostgreSQL.
type PostgresStore struct {
	db *sql.DB
}

// NewPostgresStore creates a Postgres-backed book store.
func NewPostgresStore(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) InsertBook(ctx context.Context, b *Book) error {
	query := `
		INSERT INTO books (id, title, author, isbn, category, quantity, available, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`
	_, err := s.db.ExecContext(ctx, query,
		b.ID, b.Title, b.Author, b.ISBN, b.Category, b.Quantity, b.Available, b.CreatedAt, b.UpdatedAt)
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23505" {
			return apperr.Conflict("A book with this ISBN already exists")
		}
		return fmt.Errorf("failed to insert book: %w", err)
	}
	return nil
}

func (s *PostgresStore) GetBook(ctx context.Context, id uuid.UUID) (*Book, error) {
	query := fmt.Sprintf("SELECT %s FROM books WHERE id = $1", bookColumns)
	book, err := scanBook(s.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, apperr.NotFound("Book not found")
		}
		return nil, fmt.Errorf("failed to get book: %w", err)
	}
	return book, nil
}

func (s *PostgresStore) ListBooks(ctx context.Context, filter Filter) ([]*Book, error) {
	query := fmt.Sprintf("SELECT %s FROM books", bookColumns)

	var conds []string
	var args []interface{}
	if filter.Search != "" {
		args = append(args, "%"+filter.Search+"%")
		conds = append(conds, fmt.Sprintf("(title ILIKE $%d OR author ILIKE $%d)", len(args), len(args)))
	}
	if filter.Category != "" {
		args = append(args, filter.Category)
		conds = append(conds, fmt.Sprintf("category = $%d", len(args)))
	}
	if filter.AvailableOnly {
		conds = append(conds, "available > 0")
	}
	if len(conds) > 0 {
		query += " WHERE " + strings.Join(conds, " AND ")
	}
	query += " ORDER BY title ASC"

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list books: %w", err)
	}
	defer rows.Close()

	var books []*Book
	for rows.Next() {
		book, err := scanBook(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan book: %w", err)
		}
		books = append(books, book)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate books: %w", err)
	}
	return books, nil
}

// UpdateBook replaces the caller-settable fields and carries the
// checked-out count across the quantity change as a delta on available.
// Counting ledger records here would refund a reservation whose record is
// not committed yet; the delta applies atomically against the same row the
// reconciler's conditional updates touch, so it cannot.
func (s *PostgresStore) UpdateBook(ctx context.Context, id uuid.UUID, spec BookSpec) (*Book, error) {
	query := fmt.Sprintf(`
		UPDATE books
		SET title = $2, author = $3, isbn = $4, category = $5,
		    available = available + ($6 - quantity), quantity = $6,
		    updated_at = NOW()
		WHERE id = $1
		  AND available + ($6 - quantity) >= 0
		RETURNING %s
	`, bookColumns)

	book, err := scanBook(s.db.QueryRowContext(ctx, query,
		id, spec.Title, spec.Author, spec.ISBN, spec.Category, spec.Quantity))
	if err == sql.ErrNoRows {
		// Either the book is unknown or the new quantity is below the
		// checked-out count; tell them apart.
		if _, getErr := s.GetBook(ctx, id); getErr != nil {
			return nil, getErr
		}
		return nil, apperr.Conflict("Quantity cannot be below the number of active borrowings")
	}
	if err != nil {
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23505" {
			return nil, apperr.Conflict("A book with this ISBN already exists")
		}
		return nil, fmt.Errorf("failed to update book: %w", err)
	}
	return book, nil
}

func (s *PostgresStore) DeleteBook(ctx context.Context, id uuid.UUID) error {
	query := `
		DELETE FROM books
		WHERE id = $1
		  AND NOT EXISTS (SELECT 1 FROM borrowings WHERE book_id = $1 AND status = 'borrowed')
	`
	res, err := s.db.ExecContext(ctx, query, id)
	if err != nil {
		// The RESTRICT foreign key backstops the NOT EXISTS guard.
		if pqErr, ok := err.(*pq.Error); ok && pqErr.Code == "23503" {
			return apperr.Conflict("Book has active borrowings")
		}
		return fmt.Errorf("failed to delete book: %w", err)
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to delete book: %w", err)
	}
	if affected == 0 {
		if _, getErr := s.GetBook(ctx, id); getErr != nil {
			return getErr
		}
		return apperr.Conflict("Book has active borrowings")
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanBook(row rowScanner) (*Book, error) {
	book := &Book{}
	err := row.Scan(
		&book.ID,
		&book.Title,
		&book.Author,
		&book.ISBN,
		&book.Category,
		&book.Quantity,
		&book.Available,
		&book.CreatedAt,
		&book.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return book, nil
}
