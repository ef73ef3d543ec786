package session

import (
	"errors"
	"net/http"
	"time"

	"go.uber.org/zap"

	"bookreview/internal/httpx"
)

type HTTPHandler struct {
	service *Service
	logger  *zap.Logger
}

func NewHTTPHandler(service *Service, logger *zap.Logger) *HTTPHandler {
	return &HTTPHandler{service: service, logger: logger}
}

type SessionResponse struct {
	ID         string    `json:"id"`
	UserAgent  string    `json:"user_agent"`
	IPAddress  string    `json:"ip_address"`
	RememberMe bool      `json:"remember_me"`
	CreatedAt  time.Time `json:"created_at"`
	LastUsedAt time.Time `json:"last_used_at"`
	ExpiresAt  time.Time `json:"expires_at"`
}

// ListSessions handles GET /me/sessions
// @Summary List user sessions
// @Description Get all active sessions for the authenticated user
// @Tags sessions
// @Produce json
// @Security Bearer
// @Success 200 {object} httpx.SuccessResponse
// @Failure 401 {object} httpx.ErrorResponse
// @Failure 500 {object} httpx.ErrorResponse
// @Router /me/sessions [get]
func (h *HTTPHandler) ListSessions(w http.ResponseWriter, r *http.Request) {
	userID := httpx.UserIDFrom(r)
	if userID == "" {
		httpx.JSONError(w, r, http.StatusUnauthorized, httpx.CodeUnauthorized, "Unauthorized", nil)
		return
	}

	sessions, err := h.service.ListByUserID(r.Context(), userID)
	if err != nil {
		h.logger.Error("list sessions", zap.String("user_id", userID), zap.Error(err))
		httpx.JSONError(w, r, http.StatusInternalServerError, httpx.CodeInternal, "Internal server error", nil)
		return
	}

	response := make([]SessionResponse, 0, len(sessions))
	for _, s := range sessions {
		response = append(response, SessionResponse{
			ID:         s.ID,
			UserAgent:  s.UserAgent,
			IPAddress:  s.IPAddress,
			RememberMe: s.RememberMe,
			CreatedAt:  s.CreatedAt.UTC(),
			LastUsedAt: s.LastUsedAt.UTC(),
			ExpiresAt:  s.ExpiresAt.UTC(),
		})
	}

	httpx.JSONSuccess(w, r, response, map[string]any{"total": len(response)})
}

// DeleteSession handles DELETE /me/sessions/{id}
// @Summary Delete session
// @Description Revoke one of the caller's sessions
// @Tags sessions
// @Produce json
// @Security Bearer
// @Param id path string true "Session ID"
// @Success 204 "No Content"
// @Failure 400 {object} httpx.ErrorResponse
// @Failure 401 {object} httpx.ErrorResponse
// @Failure 404 {object} httpx.ErrorResponse
// @Failure 500 {object} httpx.ErrorResponse
// @Router /me/sessions/{id} [delete]
func (h *HTTPHandler) DeleteSession(w http.ResponseWriter, r *http.Request) {
	userID := httpx.UserIDFrom(r)
	if userID == "" {
		httpx.JSONError(w, r, http.StatusUnauthorized, httpx.CodeUnauthorized, "Unauthorized", nil)
		return
	}

	sessionID := r.PathValue("id")
	if sessionID == "" {
		httpx.JSONError(w, r, http.StatusBadRequest, httpx.CodeBadRequest, "Invalid session ID", nil)
		return
	}

	if err := h.service.Revoke(r.Context(), userID, sessionID); err != nil {
		if errors.Is(err, ErrNotFound) {
			httpx.JSONError(w, r, http.StatusNotFound, httpx.CodeNotFound, "Session not found", nil)
			return
		}
		h.logger.Error("revoke session", zap.String("session_id", sessionID), zap.Error(err))
		httpx.JSONError(w, r, http.StatusInternalServerError, httpx.CodeInternal, "Internal server error", nil)
		return
	}

	h.logger.Info("session revoked", zap.String("user_id", userID), zap.String("session_id", sessionID))
	httpx.JSONSuccessNoContent(w)
}
