package review

import (
	"net/http"
	"strings"

	"bookreview/internal/httpx"
	"bookreview/internal/pagination"
	"bookreview/internal/validation"
)

type HTTPHandler struct {
	service *Service
}

func NewHTTPHandler(service *Service) *HTTPHandler {
	return &HTTPHandler{service: service}
}

// createRequest is the body of POST /reviews, which names the book in the body
// instead of the path.
type createRequest struct {
	Book string `json:"book"`
	Input
}

// List handles GET /reviews
// @Summary List reviews
// @Description Newest first; optionally restricted to one book
// @Tags reviews
// @Produce json
// @Param bookId query string false "Book ID"
// @Param page query int false "Page number" default(1)
// @Param limit query int false "Page size" default(10)
// @Success 200 {object} httpx.SuccessResponse
// @Router /reviews [get]
func (h *HTTPHandler) List(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()
	h.list(w, r, Filter{BookID: strings.TrimSpace(query.Get("bookId"))})
}

// ListForBook handles GET /books/{id}/reviews
// @Summary List a book's reviews
// @Tags reviews
// @Produce json
// @Param id path string true "Book ID"
// @Param page query int false "Page number" default(1)
// @Param limit query int false "Page size" default(10)
// @Success 200 {object} httpx.SuccessResponse
// @Router /books/{id}/reviews [get]
func (h *HTTPHandler) ListForBook(w http.ResponseWriter, r *http.Request) {
	h.list(w, r, Filter{BookID: r.PathValue("id")})
}

func (h *HTTPHandler) list(w http.ResponseWriter, r *http.Request, f Filter) {
	page, err := h.service.List(r.Context(), f, pagination.ParseParams(r.URL.Query()))
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	httpx.JSONPage(w, r, page)
}

// Get handles GET /reviews/{id}
// @Summary Get a review
// @Tags reviews
// @Produce json
// @Param id path string true "Review ID"
// @Success 200 {object} httpx.SuccessResponse
// @Failure 404 {object} httpx.ErrorResponse
// @Router /reviews/{id} [get]
func (h *HTTPHandler) Get(w http.ResponseWriter, r *http.Request) {
	rv, err := h.service.Get(r.Context(), r.PathValue("id"))
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	httpx.JSONSuccess(w, r, rv, nil)
}

// CreateForBook handles POST /books/{id}/reviews
// @Summary Review a book
// @Description One review per user and book
// @Tags reviews
// @Accept json
// @Produce json
// @Security Bearer
// @Param id path string true "Book ID"
// @Param request body Input true "Review"
// @Success 201 {object} httpx.SuccessResponse
// @Failure 400 {object} httpx.ErrorResponse
// @Failure 404 {object} httpx.ErrorResponse
// @Failure 409 {object} httpx.ErrorResponse
// @Router /books/{id}/reviews [post]
func (h *HTTPHandler) CreateForBook(w http.ResponseWriter, r *http.Request) {
	var in Input
	if err := httpx.DecodeJSON(r, &in); err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	h.create(w, r, r.PathValue("id"), in)
}

// Create handles POST /reviews
// @Summary Review a book named in the body
// @Tags reviews
// @Accept json
// @Produce json
// @Security Bearer
// @Param request body createRequest true "Review with book ID"
// @Success 201 {object} httpx.SuccessResponse
// @Failure 400 {object} httpx.ErrorResponse
// @Failure 404 {object} httpx.ErrorResponse
// @Failure 409 {object} httpx.ErrorResponse
// @Router /reviews [post]
func (h *HTTPHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	bookID := strings.TrimSpace(req.Book)
	if bookID == "" {
		httpx.WriteError(w, r, validation.New("book", "book is required"))
		return
	}
	h.create(w, r, bookID, req.Input)
}

func (h *HTTPHandler) create(w http.ResponseWriter, r *http.Request, bookID string, in Input) {
	rv, err := h.service.Create(r.Context(), bookID, httpx.UserIDFrom(r), in)
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	httpx.JSONCreated(w, r, rv)
}

// Update handles PUT /reviews/{id}
// @Summary Update own review
// @Tags reviews
// @Accept json
// @Produce json
// @Security Bearer
// @Param id path string true "Review ID"
// @Param request body Patch true "Fields to change"
// @Success 200 {object} httpx.SuccessResponse
// @Failure 404 {object} httpx.ErrorResponse
// @Router /reviews/{id} [put]
func (h *HTTPHandler) Update(w http.ResponseWriter, r *http.Request) {
	var p Patch
	if err := httpx.DecodeJSON(r, &p); err != nil {
		httpx.WriteError(w, r, err)
		return
	}

	rv, err := h.service.Update(r.Context(), r.PathValue("id"), httpx.UserIDFrom(r), p)
	if err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	httpx.JSONSuccess(w, r, rv, nil)
}

// Delete handles DELETE /reviews/{id}
// @Summary Delete own review
// @Tags reviews
// @Security Bearer
// @Param id path string true "Review ID"
// @Success 204 "No Content"
// @Failure 404 {object} httpx.ErrorResponse
// @Router /reviews/{id} [delete]
func (h *HTTPHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if err := h.service.Delete(r.Context(), r.PathValue("id"), httpx.UserIDFrom(r)); err != nil {
		httpx.WriteError(w, r, err)
		return
	}
	httpx.JSONNoContent(w)
}
