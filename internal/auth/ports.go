package auth

import (
	"context"
	"time"

	"bookreview/internal/session"
	"bookreview/internal/user"
)

//go:generate mockgen -source=ports.go -destination=mock_ports.go -package=auth

// UserStore is the slice of user.Service that login needs.
type UserStore interface {
	GetByEmail(ctx context.Context, email string) (user.User, error)
	GetByID(ctx context.Context, id string) (user.User, error)
}

type SessionStore interface {
	Create(ctx context.Context, s *session.Session) error
	Redeem(ctx context.Context, hash string) (session.Session, error)
	DeleteByTokenHash(ctx context.Context, hash string) error
	AddToBlacklist(ctx context.Context, jti, userID string, expiresAt time.Time) error
}
