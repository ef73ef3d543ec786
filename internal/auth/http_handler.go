package auth

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"bookreview/internal/httpx"
	"bookreview/internal/user"
)

type HTTPHandler struct {
	service *Service
	logger  *zap.Logger
}

func NewHTTPHandler(service *Service, logger *zap.Logger) *HTTPHandler {
	return &HTTPHandler{service: service, logger: logger}
}

type LoginReq struct {
	Email      string `json:"email" validate:"required,email"`
	Password   string `json:"password" validate:"required"`
	RememberMe bool   `json:"remember_me"`
}

// Login handles POST /auth/login
// @Summary User login
// @Description Authenticate user and receive access and refresh tokens
// @Tags auth
// @Accept json
// @Produce json
// @Param request body LoginReq true "Login request"
// @Success 200 {object} httpx.SuccessResponse
// @Failure 400 {object} httpx.ErrorResponse
// @Failure 401 {object} httpx.ErrorResponse
// @Failure 500 {object} httpx.ErrorResponse
// @Router /auth/login [post]
func (h *HTTPHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.JSONError(w, r, http.StatusBadRequest, httpx.CodeBadRequest, "Invalid request body", nil)
		return
	}
	req.Email = user.NormalizeEmail(req.Email)

	if validationErrors := httpx.ValidateStruct(req); len(validationErrors) > 0 {
		httpx.JSONError(w, r, http.StatusBadRequest, httpx.CodeValidation, "Invalid input", validationErrors)
		return
	}

	client := ClientInfo{UserAgent: r.UserAgent(), IPAddress: httpx.ClientIP(r)}
	pair, err := h.service.Login(r.Context(), req.Email, req.Password, req.RememberMe, client)
	if err != nil {
		if errors.Is(err, ErrUnauthorized) {
			h.logger.Info("login rejected", zap.String("ip", client.IPAddress))
			httpx.JSONError(w, r, http.StatusUnauthorized, httpx.CodeUnauthorized, "Invalid email or password", nil)
			return
		}
		h.logger.Error("login", zap.Error(err))
		httpx.JSONError(w, r, http.StatusInternalServerError, httpx.CodeInternal, "Internal server error", nil)
		return
	}

	httpx.JSONSuccess(w, r, pair, nil)
}

type RefreshReq struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

// RefreshToken handles POST /auth/refresh
// @Summary Refresh access token
// @Description Trade a refresh token for a new token pair
// @Tags auth
// @Accept json
// @Produce json
// @Param request body RefreshReq true "Refresh token request"
// @Success 200 {object} httpx.SuccessResponse
// @Failure 400 {object} httpx.ErrorResponse
// @Failure 401 {object} httpx.ErrorResponse
// @Failure 500 {object} httpx.ErrorResponse
// @Router /auth/refresh [post]
func (h *HTTPHandler) RefreshToken(w http.ResponseWriter, r *http.Request) {
	var req RefreshReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.JSONError(w, r, http.StatusBadRequest, httpx.CodeBadRequest, "Invalid request body", nil)
		return
	}

	if validationErrors := httpx.ValidateStruct(req); len(validationErrors) > 0 {
		httpx.JSONError(w, r, http.StatusBadRequest, httpx.CodeValidation, "Invalid input", validationErrors)
		return
	}

	pair, err := h.service.Refresh(r.Context(), req.RefreshToken)
	if err != nil {
		if errors.Is(err, ErrUnauthorized) {
			httpx.JSONError(w, r, http.StatusUnauthorized, httpx.CodeUnauthorized, "Invalid or expired refresh token", nil)
			return
		}
		h.logger.Error("refresh token", zap.Error(err))
		httpx.JSONError(w, r, http.StatusInternalServerError, httpx.CodeInternal, "Internal server error", nil)
		return
	}

	httpx.JSONSuccess(w, r, pair, nil)
}

type LogoutReq struct {
	RefreshToken string `json:"refresh_token"`
}

// Logout handles POST /auth/logout
// @Summary User logout
// @Description Revoke the current access token and, optionally, a refresh token
// @Tags auth
// @Accept json
// @Produce json
// @Security Bearer
// @Param request body LogoutReq false "Refresh token to end"
// @Success 204 "No Content"
// @Failure 400 {object} httpx.ErrorResponse
// @Failure 401 {object} httpx.ErrorResponse
// @Failure 500 {object} httpx.ErrorResponse
// @Router /auth/logout [post]
func (h *HTTPHandler) Logout(w http.ResponseWriter, r *http.Request) {
	userID := httpx.UserIDFrom(r)
	if userID == "" {
		httpx.JSONError(w, r, http.StatusUnauthorized, httpx.CodeUnauthorized, "Unauthorized", nil)
		return
	}

	var req LogoutReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		httpx.JSONError(w, r, http.StatusBadRequest, httpx.CodeBadRequest, "Invalid request body", nil)
		return
	}

	err := h.service.Logout(r.Context(), userID, httpx.TokenIDFrom(r), httpx.TokenExpiryFrom(r), strings.TrimSpace(req.RefreshToken))
	if err != nil {
		if errors.Is(err, ErrUnauthorized) {
			httpx.JSONError(w, r, http.StatusUnauthorized, httpx.CodeUnauthorized, "Unauthorized", nil)
			return
		}
		h.logger.Error("logout", zap.String("user_id", userID), zap.Error(err))
		httpx.JSONError(w, r, http.StatusInternalServerError, httpx.CodeInternal, "Internal server error", nil)
		return
	}

	h.logger.Info("user logged out", zap.String("user_id", userID))
	httpx.JSONSuccessNoContent(w)
}
