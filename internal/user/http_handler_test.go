package user

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/golang/mock/gomock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"bookreview/internal/httpx"
	"bookreview/internal/platform/crypto"
	"bookreview/internal/testutil"
)

func TestHTTPHandler_RegisterUser(t *testing.T) {
	valid := map[string]any{
		"email":            "Ada@Example.com",
		"password":         "Secret123!",
		"confirm_password": "Secret123!",
		"name":             "Ada",
		"surname":          "Lovelace",
	}

	t.Run("created", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		repo := NewMockRepository(ctrl)
		repo.EXPECT().GetByEmail(gomock.Any(), "ada@example.com").Return(User{}, ErrNotFound)
		repo.EXPECT().Create(gomock.Any(), gomock.Any()).DoAndReturn(func(_ context.Context, u *User) error {
			assert.True(t, crypto.VerifyPassword(u.Password, "Secret123!"))
			u.ID = "u-1"
			return nil
		})
		h := NewHTTPHandler(NewService(repo), zap.NewNop())

		w := httptest.NewRecorder()
		h.RegisterUser(w, testutil.NewRequest(http.MethodPost, "/auth/register", valid))

		resp := testutil.RecordHTTPResponse(w)
		require.Equal(t, http.StatusCreated, resp.Code)
		data := resp.Body["data"].(map[string]any)
		assert.Equal(t, "u-1", data["id"])
		assert.Equal(t, "ada@example.com", data["email"])
		assert.Equal(t, "Ada Lovelace", data["display_name"])
		assert.NotContains(t, data, "password")
	})

	t.Run("password mismatch", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		h := NewHTTPHandler(NewService(NewMockRepository(ctrl)), zap.NewNop())
		body := map[string]any{
			"email":            "ada@example.com",
			"password":         "Secret123!",
			"confirm_password": "Secret123?",
		}

		w := httptest.NewRecorder()
		h.RegisterUser(w, testutil.NewRequest(http.MethodPost, "/auth/register", body))

		resp := testutil.RecordHTTPResponse(w)
		assert.Equal(t, http.StatusBadRequest, resp.Code)
		assert.Equal(t, httpx.CodeValidation, resp.ErrorCode())
		assert.Contains(t, w.Body.String(), "confirm_password")
	})

	t.Run("weak password", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		h := NewHTTPHandler(NewService(NewMockRepository(ctrl)), zap.NewNop())
		body := map[string]any{
			"email":            "ada@example.com",
			"password":         "short",
			"confirm_password": "short",
		}

		w := httptest.NewRecorder()
		h.RegisterUser(w, testutil.NewRequest(http.MethodPost, "/auth/register", body))

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})

	t.Run("password longer than bcrypt accepts", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		h := NewHTTPHandler(NewService(NewMockRepository(ctrl)), zap.NewNop())
		long := "Aa1!" + strings.Repeat("x", 84)
		body := map[string]any{
			"email":            "ada@example.com",
			"password":         long,
			"confirm_password": long,
		}

		w := httptest.NewRecorder()
		h.RegisterUser(w, testutil.NewRequest(http.MethodPost, "/auth/register", body))

		assert.Equal(t, http.StatusBadRequest, w.Code)
		resp := testutil.RecordHTTPResponse(w)
		assert.Equal(t, httpx.CodeValidation, resp.ErrorCode())
		assert.Contains(t, w.Body.String(), "72 bytes")
	})

	t.Run("duplicate", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		repo := NewMockRepository(ctrl)
		repo.EXPECT().GetByEmail(gomock.Any(), gomock.Any()).Return(User{ID: "u-1"}, nil)
		h := NewHTTPHandler(NewService(repo), zap.NewNop())

		w := httptest.NewRecorder()
		h.RegisterUser(w, testutil.NewRequest(http.MethodPost, "/auth/register", valid))

		resp := testutil.RecordHTTPResponse(w)
		assert.Equal(t, http.StatusConflict, resp.Code)
		assert.Equal(t, httpx.CodeAlreadyExists, resp.ErrorCode())
	})

	t.Run("malformed body", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		h := NewHTTPHandler(NewService(NewMockRepository(ctrl)), zap.NewNop())

		w := httptest.NewRecorder()
		h.RegisterUser(w, testutil.NewRequest(http.MethodPost, "/auth/register", "not an object"))

		assert.Equal(t, http.StatusBadRequest, w.Code)
	})
}

func TestHTTPHandler_GetCurrentUser(t *testing.T) {
	t.Run("anonymous", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		h := NewHTTPHandler(NewService(NewMockRepository(ctrl)), zap.NewNop())

		w := httptest.NewRecorder()
		h.GetCurrentUser(w, httptest.NewRequest(http.MethodGet, "/me", nil))

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("signed in", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		repo := NewMockRepository(ctrl)
		repo.EXPECT().GetByID(gomock.Any(), "u-1").Return(User{ID: "u-1", Email: "ada@example.com", Name: "Ada"}, nil)
		h := NewHTTPHandler(NewService(repo), zap.NewNop())

		r := httptest.NewRequest(http.MethodGet, "/me", nil)
		r = r.WithContext(httpx.ContextWithUser(r.Context(), "u-1", RoleUser))
		w := httptest.NewRecorder()
		h.GetCurrentUser(w, r)

		resp := testutil.RecordHTTPResponse(w)
		require.Equal(t, http.StatusOK, resp.Code)
		data := resp.Body["data"].(map[string]any)
		assert.Equal(t, true, data["authenticated"])
		u := data["user"].(map[string]any)
		assert.Equal(t, "Ada", u["display_name"])
		assert.Equal(t, DefaultAvatarURL, u["avatar_url"])
	})

	t.Run("deleted user", func(t *testing.T) {
		ctrl := gomock.NewController(t)
		repo := NewMockRepository(ctrl)
		repo.EXPECT().GetByID(gomock.Any(), "gone").Return(User{}, ErrNotFound)
		h := NewHTTPHandler(NewService(repo), zap.NewNop())

		r := httptest.NewRequest(http.MethodGet, "/me", nil)
		r = r.WithContext(httpx.ContextWithUser(r.Context(), "gone", RoleUser))
		w := httptest.NewRecorder()
		h.GetCurrentUser(w, r)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})
}
