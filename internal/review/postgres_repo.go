package review

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"bookreview/internal/user"
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

// Upsert writes the review, keeping created_at from the first write.
func (r *PostgresRepo) Upsert(ctx context.Context, rv *Review) error {
	const upsertSQL = `
		INSERT INTO reviews (user_id, book_id, rating, body, created_at, updated_at)
		VALUES ($1, $2, $3, $4, now(), now())
		ON CONFLICT (user_id, book_id)
		DO UPDATE SET rating = EXCLUDED.rating, body = EXCLUDED.body, updated_at = now()
		RETURNING created_at, updated_at
	`
	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()
	return r.db.QueryRow(timeoutCtx, upsertSQL, rv.UserID, rv.BookID, rv.Rating, rv.Body).
		Scan(&rv.CreatedAt, &rv.UpdatedAt)
}

func (r *PostgresRepo) Get(ctx context.Context, userID, bookID string) (Review, error) {
	const query = `
		SELECT user_id, book_id, rating, body, created_at, updated_at
		FROM reviews
		WHERE user_id = $1 AND book_id = $2
	`
	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()
	var rv Review
	err := r.db.QueryRow(timeoutCtx, query, userID, bookID).
		Scan(&rv.UserID, &rv.BookID, &rv.Rating, &rv.Body, &rv.CreatedAt, &rv.UpdatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) || isInvalidID(err) {
			return Review{}, ErrNotFound
		}
		return Review{}, err
	}
	return rv, nil
}

func (r *PostgresRepo) Delete(ctx context.Context, userID, bookID string) error {
	const deleteSQL = `DELETE FROM reviews WHERE user_id = $1 AND book_id = $2`
	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()
	tag, err := r.db.Exec(timeoutCtx, deleteSQL, userID, bookID)
	if err != nil {
		if isInvalidID(err) {
			return ErrNotFound
		}
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *PostgresRepo) ListByBook(ctx context.Context, bookID string, limit int, after *Cursor) ([]Entry, error) {
	const firstPageSQL = `
		SELECT rv.user_id, rv.book_id, rv.rating, rv.body, rv.created_at, rv.updated_at,
		       u.name, u.surname, u.photo_url
		FROM reviews rv
		JOIN users u ON u.id = rv.user_id
		WHERE rv.book_id = $1
		ORDER BY rv.updated_at DESC, rv.user_id DESC
		LIMIT $2
	`
	const nextPageSQL = `
		SELECT rv.user_id, rv.book_id, rv.rating, rv.body, rv.created_at, rv.updated_at,
		       u.name, u.surname, u.photo_url
		FROM reviews rv
		JOIN users u ON u.id = rv.user_id
		WHERE rv.book_id = $1 AND (rv.updated_at, rv.user_id) < ($3, $4::uuid)
		ORDER BY rv.updated_at DESC, rv.user_id DESC
		LIMIT $2
	`
	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()

	var (
		rows pgx.Rows
		err  error
	)
	if after == nil {
		rows, err = r.db.Query(timeoutCtx, firstPageSQL, bookID, limit)
	} else {
		rows, err = r.db.Query(timeoutCtx, nextPageSQL, bookID, limit, after.UpdatedAt, after.UserID)
	}
	if err != nil {
		if isInvalidID(err) {
			return nil, ErrInvalidCursor
		}
		return nil, err
	}
	defer rows.Close()

	entries := []Entry{}
	for rows.Next() {
		var (
			e                       Entry
			name, surname, photoURL string
		)
		if err := rows.Scan(
			&e.UserID, &e.BookID, &e.Rating, &e.Body, &e.CreatedAt, &e.UpdatedAt,
			&name, &surname, &photoURL,
		); err != nil {
			return nil, err
		}
		e.Author = Author{
			UserID:      e.UserID,
			DisplayName: user.DisplayName(name, surname),
			PhotoURL:    user.AvatarURL(photoURL),
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		if isInvalidID(err) {
			return nil, ErrInvalidCursor
		}
		return nil, err
	}
	return entries, nil
}

func (r *PostgresRepo) BookStats(ctx context.Context, bookID string) (Stats, error) {
	const query = `SELECT AVG(rating)::FLOAT, COUNT(rating) FROM reviews WHERE book_id = $1`
	return r.stats(ctx, query, bookID)
}

func (r *PostgresRepo) UserStats(ctx context.Context, userID string) (Stats, error) {
	const query = `SELECT AVG(rating)::FLOAT, COUNT(rating) FROM reviews WHERE user_id = $1`
	return r.stats(ctx, query, userID)
}

func (r *PostgresRepo) stats(ctx context.Context, query, arg string) (Stats, error) {
	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()
	var (
		average sql.NullFloat64
		count   int
	)
	if err := r.db.QueryRow(timeoutCtx, query, arg).Scan(&average, &count); err != nil {
		if isInvalidID(err) {
			return Stats{}, nil
		}
		return Stats{}, err
	}
	if !average.Valid {
		return Stats{}, nil
	}
	return Stats{AverageRating: average.Float64, ReviewsCount: count}, nil
}

func isInvalidID(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "22P02"
}
