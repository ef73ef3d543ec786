package session

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"bookreview/internal/httpx"
	"bookreview/internal/testutil"
)

func newTestHandler(t *testing.T) (*HTTPHandler, *MockRepository) {
	ctrl := gomock.NewController(t)
	repo := NewMockRepository(ctrl)
	return NewHTTPHandler(NewService(repo, NewMockBlacklistRepository(ctrl)), zap.NewNop()), repo
}

func withUser(r *http.Request, userID string) *http.Request {
	return r.WithContext(httpx.ContextWithUser(r.Context(), userID, "USER"))
}

func TestHTTPHandler_ListSessions(t *testing.T) {
	t.Run("unauthorized", func(t *testing.T) {
		h, _ := newTestHandler(t)
		w := httptest.NewRecorder()
		h.ListSessions(w, httptest.NewRequest(http.MethodGet, "/me/sessions", nil))
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("lists without token hashes", func(t *testing.T) {
		h, repo := newTestHandler(t)
		repo.EXPECT().ListByUserID(gomock.Any(), "u-1").Return([]Session{
			{ID: "s-1", UserID: "u-1", RefreshTokenHash: "secret-hash", UserAgent: "curl", ExpiresAt: time.Now().Add(time.Hour)},
		}, nil)

		w := httptest.NewRecorder()
		h.ListSessions(w, withUser(httptest.NewRequest(http.MethodGet, "/me/sessions", nil), "u-1"))

		resp := testutil.RecordHTTPResponse(w)
		require.Equal(t, http.StatusOK, resp.Code)
		assert.NotContains(t, w.Body.String(), "secret-hash")
		data := resp.Body["data"].([]any)
		require.Len(t, data, 1)
		assert.Equal(t, "curl", data[0].(map[string]any)["user_agent"])
	})
}

func TestHTTPHandler_DeleteSession(t *testing.T) {
	t.Run("revoked", func(t *testing.T) {
		h, repo := newTestHandler(t)
		repo.EXPECT().DeleteForUser(gomock.Any(), "u-1", "s-1").Return(nil)

		r := withUser(httptest.NewRequest(http.MethodDelete, "/me/sessions/s-1", nil), "u-1")
		r.SetPathValue("id", "s-1")
		w := httptest.NewRecorder()
		h.DeleteSession(w, r)

		assert.Equal(t, http.StatusNoContent, w.Code)
	})

	t.Run("someone else's session", func(t *testing.T) {
		h, repo := newTestHandler(t)
		repo.EXPECT().DeleteForUser(gomock.Any(), "u-1", "s-2").Return(ErrNotFound)

		r := withUser(httptest.NewRequest(http.MethodDelete, "/me/sessions/s-2", nil), "u-1")
		r.SetPathValue("id", "s-2")
		w := httptest.NewRecorder()
		h.DeleteSession(w, r)

		resp := testutil.RecordHTTPResponse(w)
		assert.Equal(t, http.StatusNotFound, resp.Code)
		assert.Equal(t, httpx.CodeNotFound, resp.ErrorCode())
	})
}
