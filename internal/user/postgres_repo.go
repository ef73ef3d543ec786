package user

import (
	"context"
	"errors"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

const (
	pgUniqueViolation       = "23505"
	pgInvalidTextRepresentn = "22P02"
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

func pgCode(err error) string {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code
	}
	return ""
}

// mapLookupErr treats a malformed uuid like a missing row.
func mapLookupErr(err error) error {
	if errors.Is(err, pgx.ErrNoRows) || pgCode(err) == pgInvalidTextRepresentn {
		return ErrNotFound
	}
	return err
}

const userColumns = `id, email, password_hash, role, name, surname, photo_url, created_at, updated_at`

func scanUser(row pgx.Row) (User, error) {
	var u User
	err := row.Scan(&u.ID, &u.Email, &u.Password, &u.Role, &u.Name, &u.Surname, &u.PhotoURL, &u.CreatedAt, &u.UpdatedAt)
	return u, err
}

func (r *PostgresRepo) Create(ctx context.Context, user *User) error {
	const query = `
	INSERT INTO users (email, password_hash, role, name, surname)
	VALUES ($1, $2, COALESCE(NULLIF($3, ''), 'USER'), $4, $5)
	RETURNING id, role, photo_url, created_at, updated_at
	`
	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()
	err := r.db.QueryRow(timeoutCtx, query, user.Email, user.Password, user.Role, user.Name, user.Surname).
		Scan(&user.ID, &user.Role, &user.PhotoURL, &user.CreatedAt, &user.UpdatedAt)
	if pgCode(err) == pgUniqueViolation {
		return ErrAlreadyExists
	}
	return err
}

func (r *PostgresRepo) GetByEmail(ctx context.Context, email string) (User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE email = $1 LIMIT 1`
	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()
	u, err := scanUser(r.db.QueryRow(timeoutCtx, query, email))
	if err != nil {
		return User{}, mapLookupErr(err)
	}
	return u, nil
}

func (r *PostgresRepo) GetByID(ctx context.Context, id string) (User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1 LIMIT 1`
	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()
	u, err := scanUser(r.db.QueryRow(timeoutCtx, query, id))
	if err != nil {
		return User{}, mapLookupErr(err)
	}
	return u, nil
}

var updatableColumns = map[string]bool{
	"name":      true,
	"surname":   true,
	"photo_url": true,
}

func (r *PostgresRepo) UpdateProfile(ctx context.Context, userID string, updates map[string]any) error {
	keys := make([]string, 0, len(updates))
	for key := range updates {
		if updatableColumns[key] {
			keys = append(keys, key)
		}
	}
	if len(keys) == 0 {
		return nil
	}
	sort.Strings(keys)

	fields := make([]string, 0, len(keys)+1)
	args := make([]any, 0, len(keys)+1)
	for i, key := range keys {
		fields = append(fields, key+" = $"+strconv.Itoa(i+1))
		args = append(args, updates[key])
	}
	fields = append(fields, "updated_at = now()")
	args = append(args, userID)

	query := "UPDATE users SET " + strings.Join(fields, ", ") + " WHERE id = $" + strconv.Itoa(len(args))
	timeoutCtx, cancel := r.withTimeout(ctx)
	defer cancel()
	tag, err := r.db.Exec(timeoutCtx, query, args...)
	if err != nil {
		return mapLookupErr(err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}
