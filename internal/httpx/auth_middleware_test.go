package httpx

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"bookreview/internal/platform/crypto"
)

type fakeBlacklist struct {
	revoked map[string]bool
	err     error
}

func (f fakeBlacklist) IsBlacklisted(_ context.Context, jti string) (bool, error) {
	return f.revoked[jti], f.err
}

func TestAuthMiddleware(t *testing.T) {
	const secret = "test-secret"
	token, jti, err := crypto.GenerateToken(secret, "user-1", "USER", time.Hour)
	require.NoError(t, err)

	var gotUser, gotJTI string
	next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUser = UserIDFrom(r)
		gotJTI = TokenIDFrom(r)
		w.WriteHeader(http.StatusOK)
	})

	tests := []struct {
		name      string
		header    string
		blacklist BlacklistChecker
		wantCode  int
	}{
		{"missing header", "", nil, http.StatusUnauthorized},
		{"wrong scheme", "Basic abc", nil, http.StatusUnauthorized},
		{"garbage token", "Bearer nope", nil, http.StatusUnauthorized},
		{"valid token", "Bearer " + token, fakeBlacklist{}, http.StatusOK},
		{"revoked token", "Bearer " + token, fakeBlacklist{revoked: map[string]bool{jti: true}}, http.StatusUnauthorized},
		{"blacklist failure fails closed", "Bearer " + token, fakeBlacklist{err: errors.New("db down")}, http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			gotUser, gotJTI = "", ""
			req := httptest.NewRequest(http.MethodGet, "/me", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			w := httptest.NewRecorder()

			AuthMiddleware(secret, tt.blacklist)(next).ServeHTTP(w, req)

			assert.Equal(t, tt.wantCode, w.Code)
			if tt.wantCode == http.StatusOK {
				assert.Equal(t, "user-1", gotUser)
				assert.Equal(t, jti, gotJTI)
			} else {
				assert.Contains(t, w.Body.String(), CodeUnauthorized)
			}
		})
	}
}

func TestAuthMiddleware_ExpiredToken(t *testing.T) {
	token, _, err := crypto.GenerateToken("s", "user-1", "USER", -time.Minute)
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/me", nil)
	req.Header.Set("Authorization", "Bearer "+token)
	w := httptest.NewRecorder()

	AuthMiddleware("s", nil)(okHandler()).ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}
