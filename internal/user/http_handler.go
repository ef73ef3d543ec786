package user

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"bookreview/internal/httpx"
	"bookreview/internal/platform/crypto"
)

type HTTPHandler struct {
	service *Service
	logger  *zap.Logger
}

func NewHTTPHandler(service *Service, logger *zap.Logger) *HTTPHandler {
	return &HTTPHandler{service: service, logger: logger}
}

type registerReq struct {
	Email           string `json:"email" validate:"required,email,max=254"`
	Password        string `json:"password" validate:"required,password_strength"`
	ConfirmPassword string `json:"confirm_password" validate:"required,eqfield=Password"`
	Name            string `json:"name" validate:"max=100"`
	Surname         string `json:"surname" validate:"max=100"`
}

// RegisterUser handles POST /auth/register
// @Summary Register a new user
// @Description Create a new account with email and password
// @Tags users
// @Accept json
// @Produce json
// @Param request body registerReq true "Registration request"
// @Success 201 {object} httpx.SuccessResponse
// @Failure 400 {object} httpx.ErrorResponse
// @Failure 409 {object} httpx.ErrorResponse
// @Failure 500 {object} httpx.ErrorResponse
// @Router /auth/register [post]
func (h *HTTPHandler) RegisterUser(w http.ResponseWriter, r *http.Request) {
	var req registerReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.JSONError(w, r, http.StatusBadRequest, httpx.CodeBadRequest, "Invalid request body", nil)
		return
	}
	req.Email = NormalizeEmail(req.Email)
	req.Name = strings.TrimSpace(req.Name)
	req.Surname = strings.TrimSpace(req.Surname)

	if validationErrors := httpx.ValidateStruct(req); len(validationErrors) > 0 {
		httpx.JSONError(w, r, http.StatusBadRequest, httpx.CodeValidation, "Invalid input", validationErrors)
		return
	}

	hashedPassword, err := crypto.HashPassword(req.Password)
	if err != nil {
		h.logger.Error("hash password", zap.Error(err))
		httpx.JSONError(w, r, http.StatusInternalServerError, httpx.CodeInternal, "Internal server error", nil)
		return
	}

	newUser, err := h.service.Register(r.Context(), req.Email, hashedPassword, req.Name, req.Surname)
	if err != nil {
		if errors.Is(err, ErrAlreadyExists) {
			httpx.JSONError(w, r, http.StatusConflict, httpx.CodeAlreadyExists, "Email already exists", nil)
			return
		}
		h.logger.Error("register user", zap.Error(err))
		httpx.JSONError(w, r, http.StatusInternalServerError, httpx.CodeInternal, "Internal server error", nil)
		return
	}

	h.logger.Info("user registered", zap.String("user_id", newUser.ID))
	httpx.JSONSuccessCreated(w, r, newUser.View())
}

// GetCurrentUser handles GET /me
// @Summary Get current user
// @Description Report whether the caller is signed in and who they are
// @Tags users
// @Produce json
// @Security Bearer
// @Success 200 {object} httpx.SuccessResponse
// @Failure 401 {object} httpx.ErrorResponse
// @Router /me [get]
func (h *HTTPHandler) GetCurrentUser(w http.ResponseWriter, r *http.Request) {
	userID := httpx.UserIDFrom(r)
	if userID == "" {
		httpx.JSONError(w, r, http.StatusUnauthorized, httpx.CodeUnauthorized, "Unauthorized", nil)
		return
	}

	u, err := h.service.GetByID(r.Context(), userID)
	if err != nil {
		if !errors.Is(err, ErrNotFound) {
			h.logger.Error("load current user", zap.String("user_id", userID), zap.Error(err))
		}
		httpx.JSONError(w, r, http.StatusUnauthorized, httpx.CodeUnauthorized, "Unauthorized", nil)
		return
	}

	httpx.JSONSuccess(w, r, map[string]any{
		"authenticated": true,
		"user":          u.View(),
	}, nil)
}
