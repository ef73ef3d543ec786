package profile

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"

	"go.uber.org/zap"

	"bookreview/internal/httpx"
	"bookreview/internal/platform/objectstore"
	"bookreview/internal/user"
)

// multipartOverhead leaves room for boundaries and part headers around the photo.
const multipartOverhead = 64 << 10

type HTTPHandler struct {
	service       *Service
	maxPhotoBytes int64
	logger        *zap.Logger
}

func NewHTTPHandler(service *Service, maxPhotoBytes int64, logger *zap.Logger) *HTTPHandler {
	return &HTTPHandler{service: service, maxPhotoBytes: maxPhotoBytes, logger: logger}
}

// MaxUploadBytes is the request body limit for the photo route.
func (h *HTTPHandler) MaxUploadBytes() int64 {
	return h.maxPhotoBytes + multipartOverhead
}

// GetOwnProfile handles GET /me/profile
// @Summary Get own profile
// @Description The caller's profile together with library and review stats
// @Tags profiles
// @Produce json
// @Security Bearer
// @Success 200 {object} httpx.SuccessResponse
// @Failure 401 {object} httpx.ErrorResponse
// @Failure 500 {object} httpx.ErrorResponse
// @Router /me/profile [get]
func (h *HTTPHandler) GetOwnProfile(w http.ResponseWriter, r *http.Request) {
	userID := httpx.UserIDFrom(r)
	if userID == "" {
		httpx.JSONError(w, r, http.StatusUnauthorized, httpx.CodeUnauthorized, "Unauthorized", nil)
		return
	}

	p, err := h.service.GetOwnProfile(r.Context(), userID)
	if err != nil {
		h.writeError(w, r, err, "get profile")
		return
	}

	httpx.JSONSuccess(w, r, p, nil)
}

// UpdateProfile handles PATCH /me/profile
// @Summary Update own profile
// @Description Change name and/or surname. Omitted fields are left alone.
// @Tags profiles
// @Accept json
// @Produce json
// @Security Bearer
// @Param request body UpdateCommand true "Profile fields"
// @Success 200 {object} httpx.SuccessResponse
// @Failure 400 {object} httpx.ErrorResponse
// @Failure 401 {object} httpx.ErrorResponse
// @Router /me/profile [patch]
func (h *HTTPHandler) UpdateProfile(w http.ResponseWriter, r *http.Request) {
	userID := httpx.UserIDFrom(r)
	if userID == "" {
		httpx.JSONError(w, r, http.StatusUnauthorized, httpx.CodeUnauthorized, "Unauthorized", nil)
		return
	}

	var cmd UpdateCommand
	if err := json.NewDecoder(r.Body).Decode(&cmd); err != nil {
		httpx.JSONError(w, r, http.StatusBadRequest, httpx.CodeBadRequest, "Invalid request body", nil)
		return
	}
	cmd.Normalize()

	if validationErrors := httpx.ValidateStruct(cmd); len(validationErrors) > 0 {
		httpx.JSONError(w, r, http.StatusBadRequest, httpx.CodeValidation, "Invalid input", validationErrors)
		return
	}

	p, err := h.service.UpdateProfile(r.Context(), userID, cmd)
	if err != nil {
		h.writeError(w, r, err, "update profile")
		return
	}

	httpx.JSONSuccess(w, r, p, nil)
}

// UploadPhoto handles PUT /me/profile/photo
// @Summary Upload profile photo
// @Description Multipart upload in field "photo". JPEG, PNG, GIF or WebP.
// @Tags profiles
// @Accept multipart/form-data
// @Produce json
// @Security Bearer
// @Param photo formData file true "Photo"
// @Success 200 {object} httpx.SuccessResponse
// @Failure 400 {object} httpx.ErrorResponse
// @Failure 413 {object} httpx.ErrorResponse
// @Failure 415 {object} httpx.ErrorResponse
// @Router /me/profile/photo [put]
func (h *HTTPHandler) UploadPhoto(w http.ResponseWriter, r *http.Request) {
	userID := httpx.UserIDFrom(r)
	if userID == "" {
		httpx.JSONError(w, r, http.StatusUnauthorized, httpx.CodeUnauthorized, "Unauthorized", nil)
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, h.MaxUploadBytes())
	file, _, err := r.FormFile("photo")
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			h.tooLarge(w, r)
			return
		}
		httpx.JSONError(w, r, http.StatusBadRequest, httpx.CodeBadRequest, "Missing photo file", nil)
		return
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, h.maxPhotoBytes+1))
	if err != nil {
		httpx.JSONError(w, r, http.StatusBadRequest, httpx.CodeBadRequest, "Could not read photo", nil)
		return
	}
	if int64(len(data)) > h.maxPhotoBytes {
		h.tooLarge(w, r)
		return
	}

	p, err := h.service.UploadPhoto(r.Context(), userID, data)
	if err != nil {
		h.writeError(w, r, err, "upload photo")
		return
	}

	h.logger.Info("profile photo updated", zap.String("user_id", userID), zap.Int("bytes", len(data)))
	httpx.JSONSuccess(w, r, p, nil)
}

// DeletePhoto handles DELETE /me/profile/photo
// @Summary Remove profile photo
// @Tags profiles
// @Produce json
// @Security Bearer
// @Success 200 {object} httpx.SuccessResponse
// @Failure 401 {object} httpx.ErrorResponse
// @Router /me/profile/photo [delete]
func (h *HTTPHandler) DeletePhoto(w http.ResponseWriter, r *http.Request) {
	userID := httpx.UserIDFrom(r)
	if userID == "" {
		httpx.JSONError(w, r, http.StatusUnauthorized, httpx.CodeUnauthorized, "Unauthorized", nil)
		return
	}

	p, err := h.service.DeletePhoto(r.Context(), userID)
	if err != nil {
		h.writeError(w, r, err, "delete photo")
		return
	}

	httpx.JSONSuccess(w, r, p, nil)
}

// ServePhoto handles GET /photos/{path...}
// @Summary Fetch a stored photo
// @Tags profiles
// @Produce image/jpeg,image/png,image/gif,image/webp
// @Param path path string true "Photo path"
// @Success 200 {file} binary
// @Failure 404 {object} httpx.ErrorResponse
// @Router /photos/{path} [get]
func (h *HTTPHandler) ServePhoto(w http.ResponseWriter, r *http.Request) {
	obj, err := h.service.OpenPhoto(r.Context(), r.PathValue("path"))
	if err != nil {
		if errors.Is(err, objectstore.ErrNotFound) {
			httpx.JSONError(w, r, http.StatusNotFound, httpx.CodeNotFound, "Photo not found", nil)
			return
		}
		h.logger.Error("open photo", zap.Error(err))
		httpx.JSONError(w, r, http.StatusInternalServerError, httpx.CodeInternal, "Internal server error", nil)
		return
	}
	defer obj.Close()

	w.Header().Set("Content-Type", obj.ContentType)
	w.Header().Set("Content-Length", strconv.FormatInt(obj.Size, 10))
	w.Header().Set("Cache-Control", "public, max-age=86400")
	if !obj.ModTime.IsZero() {
		w.Header().Set("Last-Modified", obj.ModTime.UTC().Format(http.TimeFormat))
	}
	w.WriteHeader(http.StatusOK)
	if _, err := io.Copy(w, obj); err != nil {
		h.logger.Warn("stream photo", zap.Error(err))
	}
}

func (h *HTTPHandler) tooLarge(w http.ResponseWriter, r *http.Request) {
	httpx.JSONError(w, r, http.StatusRequestEntityTooLarge, httpx.CodePayloadTooLarge,
		"Photo must be at most "+strconv.FormatInt(h.maxPhotoBytes, 10)+" bytes", nil)
}

func (h *HTTPHandler) writeError(w http.ResponseWriter, r *http.Request, err error, op string) {
	switch {
	case errors.Is(err, user.ErrNotFound):
		httpx.JSONError(w, r, http.StatusNotFound, httpx.CodeNotFound, "User not found", nil)
	case errors.Is(err, ErrEmptyPhoto):
		httpx.JSONError(w, r, http.StatusBadRequest, httpx.CodeBadRequest, "Photo is empty", nil)
	case errors.Is(err, ErrUnsupportedPhoto):
		httpx.JSONError(w, r, http.StatusUnsupportedMediaType, httpx.CodeUnsupportedMediaType,
			"Photo must be a JPEG, PNG, GIF or WebP image", nil)
	default:
		h.logger.Error(op, zap.Error(err))
		httpx.JSONError(w, r, http.StatusInternalServerError, httpx.CodeInternal, "Internal server error", nil)
	}
}
