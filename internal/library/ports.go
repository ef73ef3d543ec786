package library

import (
	"context"

	"bookreview/internal/book"
)

//go:generate mockgen -source=ports.go -destination=mock_ports.go -package=library

type Repository interface {
	Add(ctx context.Context, userID, bookID string) (Entry, error)
	Remove(ctx context.Context, userID, bookID string) error
	Get(ctx context.Context, userID, bookID string) (Entry, error)
	ListByUser(ctx context.Context, userID string, limit, offset int) ([]Entry, int, error)
	CountByUser(ctx context.Context, userID string) (int, error)
}

type Catalog interface {
	Get(ctx context.Context, id string) (book.Book, error)
}
