package library

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

type PostgresRepo struct {
	db      *pgxpool.Pool
	timeout time.Duration
}

func NewPostgresRepo(db *pgxpool.Pool, timeout time.Duration) *PostgresRepo {
	return &PostgresRepo{db: db, timeout: timeout}
}

func (r *PostgresRepo) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, r.timeout)
}

// Add saves the book, bumping added_at if it was already there.
func (r *PostgresRepo) Add(ctx context.Context, userID, bookID string) (Entry, error) {
	const upsertSQL = `
		INSERT INTO library_entries (user_id, book_id, added_at)
		VALUES ($1, $2, now())
		ON CONFLICT (user_id, book_id)
		DO UPDATE SET added_at = EXCLUDED.added_at
		RETURNING user_id, book_id, added_at
	`
	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()
	var e Entry
	err := r.db.QueryRow(timeoutCtx, upsertSQL, userID, bookID).Scan(&e.UserID, &e.BookID, &e.AddedAt)
	return e, err
}

func (r *PostgresRepo) Remove(ctx context.Context, userID, bookID string) error {
	const deleteSQL = `DELETE FROM library_entries WHERE user_id = $1 AND book_id = $2`
	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()
	tag, err := r.db.Exec(timeoutCtx, deleteSQL, userID, bookID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *PostgresRepo) Get(ctx context.Context, userID, bookID string) (Entry, error) {
	const query = `
		SELECT user_id, book_id, added_at
		FROM library_entries
		WHERE user_id = $1 AND book_id = $2
	`
	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()
	var e Entry
	if err := r.db.QueryRow(timeoutCtx, query, userID, bookID).Scan(&e.UserID, &e.BookID, &e.AddedAt); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Entry{}, ErrNotFound
		}
		return Entry{}, err
	}
	return e, nil
}

func (r *PostgresRepo) ListByUser(ctx context.Context, userID string, limit, offset int) ([]Entry, int, error) {
	total, err := r.CountByUser(ctx, userID)
	if err != nil {
		return nil, 0, err
	}

	const dataSQL = `
		SELECT user_id, book_id, added_at
		FROM library_entries
		WHERE user_id = $1
		ORDER BY added_at DESC, book_id ASC
		LIMIT $2 OFFSET $3
	`
	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()
	rows, err := r.db.Query(timeoutCtx, dataSQL, userID, limit, offset)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	entries := []Entry{}
	for rows.Next() {
		var e Entry
		if err := rows.Scan(&e.UserID, &e.BookID, &e.AddedAt); err != nil {
			return nil, 0, err
		}
		entries = append(entries, e)
	}
	return entries, total, rows.Err()
}

func (r *PostgresRepo) CountByUser(ctx context.Context, userID string) (int, error) {
	const countSQL = `SELECT COUNT(*) FROM library_entries WHERE user_id = $1`
	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()
	var total int
	err := r.db.QueryRow(timeoutCtx, countSQL, userID).Scan(&total)
	return total, err
}
