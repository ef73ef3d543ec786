package profile

import (
	"context"

	"bookreview/internal/platform/objectstore"
	"bookreview/internal/review"
	"bookreview/internal/user"
)

//go:generate mockgen -source=ports.go -destination=mock_ports.go -package=profile

type UserStore interface {
	GetByID(ctx context.Context, id string) (user.User, error)
	UpdateProfile(ctx context.Context, userID string, updates map[string]any) error
	SetPhotoURL(ctx context.Context, userID, photoURL string) error
}

type LibraryCounter interface {
	Count(ctx context.Context, userID string) (int, error)
}

type ReviewStats interface {
	UserStats(ctx context.Context, userID string) (review.Stats, error)
}

type PhotoStore interface {
	Put(ctx context.Context, key, contentType string, data []byte) error
	Get(ctx context.Context, key string) (*objectstore.Object, error)
	Delete(ctx context.Context, key string) error
}
