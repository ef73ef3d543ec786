package session

import (
	"context"
	"time"
)

type Service struct {
	repo          Repository
	blacklistRepo BlacklistRepository
}

func NewService(repo Repository, blacklistRepo BlacklistRepository) *Service {
	return &Service{
		repo:          repo,
		blacklistRepo: blacklistRepo,
	}
}

func (s *Service) ListByUserID(ctx context.Context, userID string) ([]Session, error) {
	return s.repo.ListByUserID(ctx, userID)
}

// Revoke deletes a session only when it belongs to userID.
func (s *Service) Revoke(ctx context.Context, userID, sessionID string) error {
	return s.repo.DeleteForUser(ctx, userID, sessionID)
}

func (s *Service) Create(ctx context.Context, session *Session) error {
	return s.repo.Create(ctx, session)
}

// Redeem consumes a refresh token hash. A token can be redeemed once.
func (s *Service) Redeem(ctx context.Context, hash string) (Session, error) {
	return s.repo.Redeem(ctx, hash)
}

func (s *Service) DeleteByTokenHash(ctx context.Context, hash string) error {
	return s.repo.DeleteByTokenHash(ctx, hash)
}

func (s *Service) AddToBlacklist(ctx context.Context, jti, userID string, expiresAt time.Time) error {
	return s.blacklistRepo.AddToken(ctx, jti, userID, expiresAt)
}

// IsBlacklisted satisfies httpx.BlacklistChecker.
func (s *Service) IsBlacklisted(ctx context.Context, jti string) (bool, error) {
	return s.blacklistRepo.IsBlacklisted(ctx, jti)
}

// CleanupExpired removes expired sessions and blacklist rows, returning how
// many of each were deleted.
func (s *Service) CleanupExpired(ctx context.Context) (sessions, tokens int64, err error) {
	sessions, err = s.repo.CleanupExpired(ctx)
	if err != nil {
		return 0, 0, err
	}
	tokens, err = s.blacklistRepo.CleanupExpired(ctx)
	if err != nil {
		return sessions, 0, err
	}
	return sessions, tokens, nil
}
