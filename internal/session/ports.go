package session

import (
	"context"
	"time"
)

//go:generate mockgen -source=ports.go -destination=mock_ports.go -package=session

type Repository interface {
	Create(ctx context.Context, s *Session) error
	Redeem(ctx context.Context, tokenHash string) (Session, error)
	ListByUserID(ctx context.Context, userID string) ([]Session, error)
	DeleteForUser(ctx context.Context, userID, sessionID string) error
	DeleteByTokenHash(ctx context.Context, tokenHash string) error
	CleanupExpired(ctx context.Context) (int64, error)
}

type BlacklistRepository interface {
	AddToken(ctx context.Context, jti, userID string, expiresAt time.Time) error
	IsBlacklisted(ctx context.Context, jti string) (bool, error)
	CleanupExpired(ctx context.Context) (int64, error)
}
