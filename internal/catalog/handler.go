// internal/catalog/handler.go
package catalog

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"shelfwise/internal/apperr"
	"shelfwise/internal/httpx"
)

// Handler serves the /books endpoints.
type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

type bookRequest struct {
	Title    string `json:"title" validate:"required"`
	Author   string `json:"author" validate:"required"`
	ISBN     string `json:"isbn" validate:"required"`
	Category string `json:"category" validate:"required"`
	Quantity int    `json:"quantity" validate:"gte=0"`
}

func (r bookRequest) spec() BookSpec {
	return BookSpec{
		Title:    r.Title,
		Author:   r.Author,
		ISBN:     r.ISBN,
		Category: r.Category,
		Quantity: r.Quantity,
	}
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	filter := Filter{
		Search:        q.Get("search"),
		Category:      q.Get("category"),
		AvailableOnly: q.Get("available") == "true",
	}

	books, err := h.service.List(r.Context(), filter)
	if err != nil {
		httpx.Error(w, r, err)
		return
	}
	if books == nil {
		books = []*Book{}
	}
	httpx.Respond(w, http.StatusOK, books)
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := bookID(r)
	if err != nil {
		httpx.Error(w, r, err)
		return
	}

	book, err := h.service.Get(r.Context(), id)
	if err != nil {
		httpx.Error(w, r, err)
		return
	}
	httpx.Respond(w, http.StatusOK, book)
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req bookRequest
	if err := httpx.Decode(r, &req); err != nil {
		httpx.Error(w, r, err)
		return
	}

	book, err := h.service.Create(r.Context(), req.spec())
	if err != nil {
		httpx.Error(w, r, err)
		return
	}
	httpx.Respond(w, http.StatusCreated, book)
}

func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := bookID(r)
	if err != nil {
		httpx.Error(w, r, err)
		return
	}

	var req bookRequest
	if err := httpx.Decode(r, &req); err != nil {
		httpx.Error(w, r, err)
		return
	}

	book, err := h.service.Update(r.Context(), id, req.spec())
	if err != nil {
		httpx.Error(w, r, err)
		return
	}
	httpx.Respond(w, http.StatusOK, book)
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := bookID(r)
	if err != nil {
		httpx.Error(w, r, err)
		return
	}

	if err := h.service.Delete(r.Context(), id); err != nil {
		httpx.Error(w, r, err)
		return
	}
	httpx.Respond(w, http.StatusOK, map[string]string{"message": "Book deleted successfully"})
}

func bookID(r *http.Request) (uuid.UUID, error) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		return uuid.Nil, apperr.New(apperr.KindValidation, "Invalid book ID")
	}
	return id, nil
}
