package book

import (
	"errors"
	"net/http"

	"bookreview/internal/httpx"
	"bookreview/internal/platform/booksapi"
)

type HTTPHandler struct {
	service *Service
}

func NewHTTPHandler(service *Service) *HTTPHandler {
	return &HTTPHandler{service: service}
}

// WriteLookupError maps catalog errors onto the response envelope.
func WriteLookupError(w http.ResponseWriter, r *http.Request, err error) {
	var httpErr *booksapi.HTTPError
	switch {
	case errors.Is(err, ErrNotFound):
		httpx.JSONError(w, r, http.StatusNotFound, httpx.CodeNotFound, "Book not found", nil)
	case errors.As(err, &httpErr):
		httpx.JSONError(w, r, http.StatusBadGateway, httpx.CodeUpstream, httpErr.Error(), nil)
	case errors.Is(err, booksapi.ErrUnavailable):
		httpx.JSONError(w, r, http.StatusBadGateway, httpx.CodeUpstream, "Books service unavailable", nil)
	default:
		httpx.JSONError(w, r, http.StatusInternalServerError, httpx.CodeInternal, "Internal server error", nil)
	}
}

// List handles GET /books
// @Summary List books
// @Description List every book in the remote catalog
// @Tags books
// @Produce json
// @Success 200 {object} httpx.SuccessResponse
// @Failure 502 {object} httpx.ErrorResponse
// @Router /books [get]
func (h *HTTPHandler) List(w http.ResponseWriter, r *http.Request) {
	books, err := h.service.List(r.Context())
	if err != nil {
		WriteLookupError(w, r, err)
		return
	}

	httpx.JSONSuccess(w, r, books, map[string]any{"total": len(books)})
}

// Get handles GET /books/{id}
// @Summary Get book
// @Description Get one book by its catalog id
// @Tags books
// @Produce json
// @Param id path string true "Book ID"
// @Success 200 {object} httpx.SuccessResponse
// @Failure 404 {object} httpx.ErrorResponse
// @Failure 502 {object} httpx.ErrorResponse
// @Router /books/{id} [get]
func (h *HTTPHandler) Get(w http.ResponseWriter, r *http.Request) {
	id := r.PathValue("id")
	if id == "" {
		httpx.JSONError(w, r, http.StatusBadRequest, httpx.CodeBadRequest, "Invalid book ID", nil)
		return
	}

	b, err := h.service.Get(r.Context(), id)
	if err != nil {
		WriteLookupError(w, r, err)
		return
	}

	httpx.JSONSuccess(w, r, b, nil)
}

// Search handles GET /books/search?q=
// @Summary Search books
// @Description Free-text search. Short queries list the whole catalog instead.
// @Tags books
// @Produce json
// @Param q query string false "Search query"
// @Success 200 {object} httpx.SuccessResponse
// @Failure 502 {object} httpx.ErrorResponse
// @Router /books/search [get]
func (h *HTTPHandler) Search(w http.ResponseWriter, r *http.Request) {
	res, err := h.service.Search(r.Context(), r.URL.Query().Get("q"))
	if err != nil {
		WriteLookupError(w, r, err)
		return
	}

	httpx.JSONSuccess(w, r, res.Books, map[string]any{
		"query":    res.Query,
		"fallback": res.Fallback,
		"total":    len(res.Books),
	})
}
