package library

import (
	"errors"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"bookreview/internal/book"
	"bookreview/internal/httpx"
)

type HTTPHandler struct {
	service *Service
	logger  *zap.Logger
}

func NewHTTPHandler(service *Service, logger *zap.Logger) *HTTPHandler {
	return &HTTPHandler{service: service, logger: logger}
}

func (h *HTTPHandler) caller(w http.ResponseWriter, r *http.Request) (userID, bookID string, ok bool) {
	userID = httpx.UserIDFrom(r)
	if userID == "" {
		httpx.JSONError(w, r, http.StatusUnauthorized, httpx.CodeUnauthorized, "Unauthorized", nil)
		return "", "", false
	}
	bookID = strings.TrimSpace(r.PathValue("bookId"))
	if bookID == "" {
		httpx.JSONError(w, r, http.StatusBadRequest, httpx.CodeBadRequest, "Invalid book ID", nil)
		return "", "", false
	}
	return userID, bookID, true
}

// Add handles PUT /me/library/{bookId}
// @Summary Add book to library
// @Description Save a catalog book to the caller's library
// @Tags library
// @Produce json
// @Security Bearer
// @Param bookId path string true "Book ID"
// @Success 200 {object} httpx.SuccessResponse
// @Failure 401 {object} httpx.ErrorResponse
// @Failure 404 {object} httpx.ErrorResponse
// @Failure 502 {object} httpx.ErrorResponse
// @Router /me/library/{bookId} [put]
func (h *HTTPHandler) Add(w http.ResponseWriter, r *http.Request) {
	userID, bookID, ok := h.caller(w, r)
	if !ok {
		return
	}

	entry, err := h.service.Add(r.Context(), userID, bookID)
	if err != nil {
		if !errors.Is(err, book.ErrNotFound) {
			h.logger.Error("add to library", zap.String("book_id", bookID), zap.Error(err))
		}
		book.WriteLookupError(w, r, err)
		return
	}

	httpx.JSONSuccess(w, r, entry, nil)
}

// Remove handles DELETE /me/library/{bookId}
// @Summary Remove book from library
// @Tags library
// @Security Bearer
// @Param bookId path string true "Book ID"
// @Success 204 "No Content"
// @Failure 401 {object} httpx.ErrorResponse
// @Failure 404 {object} httpx.ErrorResponse
// @Router /me/library/{bookId} [delete]
func (h *HTTPHandler) Remove(w http.ResponseWriter, r *http.Request) {
	userID, bookID, ok := h.caller(w, r)
	if !ok {
		return
	}

	if err := h.service.Remove(r.Context(), userID, bookID); err != nil {
		if errors.Is(err, ErrNotFound) {
			httpx.JSONError(w, r, http.StatusNotFound, httpx.CodeNotFound, "Book is not in your library", nil)
			return
		}
		h.logger.Error("remove from library", zap.String("book_id", bookID), zap.Error(err))
		httpx.JSONError(w, r, http.StatusInternalServerError, httpx.CodeInternal, "Internal server error", nil)
		return
	}

	httpx.JSONSuccessNoContent(w)
}

// Check handles GET /me/library/{bookId}
// @Summary Check library membership
// @Tags library
// @Produce json
// @Security Bearer
// @Param bookId path string true "Book ID"
// @Success 200 {object} httpx.SuccessResponse
// @Failure 401 {object} httpx.ErrorResponse
// @Router /me/library/{bookId} [get]
func (h *HTTPHandler) Check(w http.ResponseWriter, r *http.Request) {
	userID, bookID, ok := h.caller(w, r)
	if !ok {
		return
	}

	entry, found, err := h.service.Contains(r.Context(), userID, bookID)
	if err != nil {
		h.logger.Error("check library", zap.String("book_id", bookID), zap.Error(err))
		httpx.JSONError(w, r, http.StatusInternalServerError, httpx.CodeInternal, "Internal server error", nil)
		return
	}

	data := map[string]any{"book_id": bookID, "in_library": found}
	if found {
		data["added_at"] = entry.AddedAt
	}
	httpx.JSONSuccess(w, r, data, nil)
}

// List handles GET /me/library
// @Summary List library
// @Description Saved books, newest first, each joined with its catalog record
// @Tags library
// @Produce json
// @Security Bearer
// @Param limit query int false "Page size (max 100)"
// @Param offset query int false "Offset"
// @Success 200 {object} httpx.SuccessResponse
// @Failure 401 {object} httpx.ErrorResponse
// @Router /me/library [get]
func (h *HTTPHandler) List(w http.ResponseWriter, r *http.Request) {
	userID := httpx.UserIDFrom(r)
	if userID == "" {
		httpx.JSONError(w, r, http.StatusUnauthorized, httpx.CodeUnauthorized, "Unauthorized", nil)
		return
	}

	limit, offset := httpx.Pagination(r, DefaultPageSize, MaxPageSize)
	items, total, err := h.service.List(r.Context(), userID, limit, offset)
	if err != nil {
		h.logger.Error("list library", zap.String("user_id", userID), zap.Error(err))
		httpx.JSONError(w, r, http.StatusInternalServerError, httpx.CodeInternal, "Internal server error", nil)
		return
	}

	httpx.JSONSuccess(w, r, items, map[string]any{
		"total":  total,
		"limit":  limit,
		"offset": offset,
	})
}
