package auth

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"time"

	"bookreview/internal/platform/crypto"
	"bookreview/internal/session"
)

var ErrUnauthorized = errors.New("unauthorized")

const (
	DefaultAccessTokenTTL = 15 * time.Minute
	RefreshTokenTTL       = 30 * 24 * time.Hour
	RememberMeTTL         = 90 * 24 * time.Hour

	refreshTokenBytes = 32
)

type TokenPair struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int    `json:"expires_in"`
}

// ClientInfo describes where a login came from.
type ClientInfo struct {
	UserAgent string
	IPAddress string
}

type Service struct {
	secret    string
	accessTTL time.Duration
	users     UserStore
	sessions  SessionStore
	now       func() time.Time
}

func NewService(secret string, accessTTL time.Duration, users UserStore, sessions SessionStore) *Service {
	if accessTTL <= 0 {
		accessTTL = DefaultAccessTokenTTL
	}
	return &Service{
		secret:    secret,
		accessTTL: accessTTL,
		users:     users,
		sessions:  sessions,
		now:       time.Now,
	}
}

func hashToken(token string) string {
	hash := sha256.Sum256([]byte(token))
	return hex.EncodeToString(hash[:])
}

func refreshTTL(rememberMe bool) time.Duration {
	if rememberMe {
		return RememberMeTTL
	}
	return RefreshTokenTTL
}

func (s *Service) Login(ctx context.Context, email, password string, rememberMe bool, client ClientInfo) (TokenPair, error) {
	u, err := s.users.GetByEmail(ctx, email)
	if err != nil || !crypto.VerifyPassword(u.Password, password) {
		return TokenPair{}, ErrUnauthorized
	}

	return s.issue(ctx, session.Session{
		UserID:     u.ID,
		UserAgent:  client.UserAgent,
		IPAddress:  client.IPAddress,
		RememberMe: rememberMe,
	}, u.Role)
}

// Refresh rotates a refresh token: the presented one stops working and a new
// pair is returned. Redeeming is a single delete, so a token replayed
// concurrently yields one pair at most.
func (s *Service) Refresh(ctx context.Context, refreshToken string) (TokenPair, error) {
	sess, err := s.sessions.Redeem(ctx, hashToken(refreshToken))
	if err != nil {
		if errors.Is(err, session.ErrNotFound) {
			return TokenPair{}, ErrUnauthorized
		}
		return TokenPair{}, err
	}

	u, err := s.users.GetByID(ctx, sess.UserID)
	if err != nil {
		return TokenPair{}, ErrUnauthorized
	}

	sess.ID = ""
	return s.issue(ctx, sess, u.Role)
}

func (s *Service) issue(ctx context.Context, sess session.Session, role string) (TokenPair, error) {
	accessToken, _, err := crypto.GenerateToken(s.secret, sess.UserID, role, s.accessTTL)
	if err != nil {
		return TokenPair{}, err
	}

	refreshToken, err := crypto.RandomHex(refreshTokenBytes)
	if err != nil {
		return TokenPair{}, err
	}

	sess.RefreshTokenHash = hashToken(refreshToken)
	sess.ExpiresAt = s.now().Add(refreshTTL(sess.RememberMe))
	if err := s.sessions.Create(ctx, &sess); err != nil {
		return TokenPair{}, err
	}

	return TokenPair{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresIn:    int(s.accessTTL.Seconds()),
	}, nil
}

// Logout revokes the access token identified by jti until it would have
// expired anyway. A non-empty refreshToken also ends that session.
func (s *Service) Logout(ctx context.Context, userID, jti string, expiresAt time.Time, refreshToken string) error {
	if jti == "" {
		return ErrUnauthorized
	}
	if expiresAt.IsZero() {
		expiresAt = s.now().Add(s.accessTTL)
	}

	if err := s.sessions.AddToBlacklist(ctx, jti, userID, expiresAt); err != nil {
		return err
	}

	if refreshToken != "" {
		err := s.sessions.DeleteByTokenHash(ctx, hashToken(refreshToken))
		if err != nil && !errors.Is(err, session.ErrNotFound) {
			return err
		}
	}
	return nil
}
