package review

import (
	"encoding/json"
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

type saveReq struct {
	Review string `json:"review" validate:"max=2000"`
	Rating int    `json:"rating" validate:"required,gte=1,lte=5"`
}

func bookIDFrom(w http.ResponseWriter, r *http.Request) (string, bool) {
	id := strings.TrimSpace(r.PathValue("id"))
	if id == "" {
		httpx.JSONError(w, r, http.StatusBadRequest, httpx.CodeBadRequest, "Invalid book ID", nil)
		return "", false
	}
	return id, true
}

// Save handles PUT /books/{id}/review
// @Summary Write a review
// @Description Create or replace the caller's review of a book
// @Tags reviews
// @Accept json
// @Produce json
// @Security Bearer
// @Param id path string true "Book ID"
// @Param request body saveReq true "Review"
// @Success 200 {object} httpx.SuccessResponse
// @Failure 400 {object} httpx.ErrorResponse
// @Failure 401 {object} httpx.ErrorResponse
// @Failure 404 {object} httpx.ErrorResponse
// @Router /books/{id}/review [put]
func (h *HTTPHandler) Save(w http.ResponseWriter, r *http.Request) {
	userID := httpx.UserIDFrom(r)
	if userID == "" {
		httpx.JSONError(w, r, http.StatusUnauthorized, httpx.CodeUnauthorized, "Unauthorized", nil)
		return
	}
	bookID, ok := bookIDFrom(w, r)
	if !ok {
		return
	}

	var req saveReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		httpx.JSONError(w, r, http.StatusBadRequest, httpx.CodeBadRequest, "Invalid request body", nil)
		return
	}
	req.Review = strings.TrimSpace(req.Review)
	if validationErrors := httpx.ValidateStruct(req); len(validationErrors) > 0 {
		httpx.JSONError(w, r, http.StatusBadRequest, httpx.CodeValidation, "Invalid input", validationErrors)
		return
	}

	rv, err := h.service.Save(r.Context(), userID, bookID, req.Review, req.Rating)
	switch {
	case err == nil:
		httpx.JSONSuccess(w, r, rv, nil)
	case errors.Is(err, ErrInvalidRating):
		httpx.JSONError(w, r, http.StatusBadRequest, httpx.CodeValidation, "Invalid input",
			[]httpx.ErrorDetail{{Field: "rating", Message: err.Error()}})
	case errors.Is(err, ErrBodyTooLong):
		httpx.JSONError(w, r, http.StatusBadRequest, httpx.CodeValidation, "Invalid input",
			[]httpx.ErrorDetail{{Field: "review", Message: "review must be at most 2000 characters"}})
	case errors.Is(err, book.ErrNotFound):
		book.WriteLookupError(w, r, err)
	default:
		h.logger.Error("save review", zap.String("book_id", bookID), zap.Error(err))
		book.WriteLookupError(w, r, err)
	}
}

// GetOwn handles GET /books/{id}/review
// @Summary Get own review
// @Tags reviews
// @Produce json
// @Security Bearer
// @Param id path string true "Book ID"
// @Success 200 {object} httpx.SuccessResponse
// @Failure 401 {object} httpx.ErrorResponse
// @Failure 404 {object} httpx.ErrorResponse
// @Router /books/{id}/review [get]
func (h *HTTPHandler) GetOwn(w http.ResponseWriter, r *http.Request) {
	userID := httpx.UserIDFrom(r)
	if userID == "" {
		httpx.JSONError(w, r, http.StatusUnauthorized, httpx.CodeUnauthorized, "Unauthorized", nil)
		return
	}
	bookID, ok := bookIDFrom(w, r)
	if !ok {
		return
	}

	rv, err := h.service.Get(r.Context(), userID, bookID)
	if err != nil {
		h.writeError(w, r, err, "get review")
		return
	}
	httpx.JSONSuccess(w, r, rv, nil)
}

// DeleteOwn handles DELETE /books/{id}/review
// @Summary Delete own review
// @Tags reviews
// @Security Bearer
// @Param id path string true "Book ID"
// @Success 204 "No Content"
// @Failure 401 {object} httpx.ErrorResponse
// @Failure 404 {object} httpx.ErrorResponse
// @Router /books/{id}/review [delete]
func (h *HTTPHandler) DeleteOwn(w http.ResponseWriter, r *http.Request) {
	userID := httpx.UserIDFrom(r)
	if userID == "" {
		httpx.JSONError(w, r, http.StatusUnauthorized, httpx.CodeUnauthorized, "Unauthorized", nil)
		return
	}
	bookID, ok := bookIDFrom(w, r)
	if !ok {
		return
	}

	if err := h.service.Delete(r.Context(), userID, bookID); err != nil {
		h.writeError(w, r, err, "delete review")
		return
	}
	httpx.JSONSuccessNoContent(w)
}

// List handles GET /books/{id}/reviews
// @Summary List reviews of a book
// @Description Newest first. Pass meta.next_cursor back as cursor for the next page.
// @Tags reviews
// @Produce json
// @Param id path string true "Book ID"
// @Param limit query int false "Page size (max 100)"
// @Param cursor query string false "Opaque cursor"
// @Success 200 {object} httpx.SuccessResponse
// @Failure 400 {object} httpx.ErrorResponse
// @Router /books/{id}/reviews [get]
func (h *HTTPHandler) List(w http.ResponseWriter, r *http.Request) {
	bookID, ok := bookIDFrom(w, r)
	if !ok {
		return
	}

	limit, _ := httpx.Pagination(r, DefaultPageSize, MaxPageSize)

	page, err := h.service.List(r.Context(), bookID, limit, r.URL.Query().Get("cursor"))
	if err != nil {
		if errors.Is(err, ErrInvalidCursor) {
			httpx.JSONError(w, r, http.StatusBadRequest, httpx.CodeBadRequest, "Invalid cursor", nil)
			return
		}
		h.logger.Error("list reviews", zap.String("book_id", bookID), zap.Error(err))
		httpx.JSONError(w, r, http.StatusInternalServerError, httpx.CodeInternal, "Internal server error", nil)
		return
	}

	meta := map[string]any{"limit": limit, "count": len(page.Items)}
	if page.NextCursor != "" {
		meta["next_cursor"] = page.NextCursor
	}
	httpx.JSONSuccess(w, r, page.Items, meta)
}

// Rating handles GET /books/{id}/rating
// @Summary Book rating summary
// @Tags reviews
// @Produce json
// @Param id path string true "Book ID"
// @Success 200 {object} httpx.SuccessResponse
// @Router /books/{id}/rating [get]
func (h *HTTPHandler) Rating(w http.ResponseWriter, r *http.Request) {
	bookID, ok := bookIDFrom(w, r)
	if !ok {
		return
	}

	stats, err := h.service.BookStats(r.Context(), bookID)
	if err != nil {
		h.logger.Error("book rating", zap.String("book_id", bookID), zap.Error(err))
		httpx.JSONError(w, r, http.StatusInternalServerError, httpx.CodeInternal, "Internal server error", nil)
		return
	}
	httpx.JSONSuccess(w, r, stats, nil)
}

func (h *HTTPHandler) writeError(w http.ResponseWriter, r *http.Request, err error, op string) {
	if errors.Is(err, ErrNotFound) {
		httpx.JSONError(w, r, http.StatusNotFound, httpx.CodeNotFound, "Review not found", nil)
		return
	}
	h.logger.Error(op, zap.Error(err))
	httpx.JSONError(w, r, http.StatusInternalServerError, httpx.CodeInternal, "Internal server error", nil)
}
