package review

import (
	"context"

	"bookreview/internal/book"
)

//go:generate mockgen -source=ports.go -destination=mock_ports.go -package=review

type Repository interface {
	Upsert(ctx context.Context, r *Review) error
	Get(ctx context.Context, userID, bookID string) (Review, error)
	Delete(ctx context.Context, userID, bookID string) error
	// ListByBook returns up to limit reviews strictly after the cursor.
	ListByBook(ctx context.Context, bookID string, limit int, after *Cursor) ([]Entry, error)
	BookStats(ctx context.Context, bookID string) (Stats, error)
	UserStats(ctx context.Context, userID string) (Stats, error)
}

type Catalog interface {
	Get(ctx context.Context, id string) (book.Book, error)
}
