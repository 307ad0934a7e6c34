// internal/borrowing/handler.go
package borrowing

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"shelfwise/internal/apperr"
	"shelfwise/internal/httpx"
	"shelfwise/internal/identity"
)

// Handler serves the /borrowings endpoints.
type Handler struct {
	service Service
}

func NewHandler(service Service) *Handler {
	return &Handler{service: service}
}

type borrowRequest struct {
	BookID  uuid.UUID `json:"book_id" validate:"required"`
	DueDate time.Time `json:"due_date" validate:"required"`
}

func (h *Handler) Borrow(w http.ResponseWriter, r *http.Request) {
	user, ok := identity.UserFrom(r.Context())
	if !ok {
		httpx.Error(w, r, apperr.AuthRequired("Authentication required"))
		return
	}

	var req borrowRequest
	if err := httpx.Decode(r, &req); err != nil {
		httpx.Error(w, r, err)
		return
	}

	record, err := h.service.Borrow(r.Context(), req.BookID, user.ID, req.DueDate)
	if err != nil {
		httpx.Error(w, r, err)
		return
	}
	httpx.Respond(w, http.StatusCreated, record)
}

func (h *Handler) Return(w http.ResponseWriter, r *http.Request) {
	user, ok := identity.UserFrom(r.Context())
	if !ok {
		httpx.Error(w, r, apperr.AuthRequired("Authentication required"))
		return
	}

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		httpx.Error(w, r, apperr.New(apperr.KindValidation, "Invalid borrowing ID"))
		return
	}

	record, err := h.service.Return(r.Context(), id, user.ID)
	if err != nil {
		httpx.Error(w, r, err)
		return
	}
	httpx.Respond(w, http.StatusOK, record)
}

func (h *Handler) ListAll(w http.ResponseWriter, r *http.Request) {
	records, err := h.service.ListAll(r.Context())
	if err != nil {
		httpx.Error(w, r, err)
		return
	}
	if records == nil {
		records = []*Record{}
	}
	httpx.Respond(w, http.StatusOK, records)
}

func (h *Handler) ListMine(w http.ResponseWriter, r *http.Request) {
	user, ok := identity.UserFrom(r.Context())
	if !ok {
		httpx.Error(w, r, apperr.AuthRequired("Authentication required"))
		return
	}

	records, err := h.service.ListForBorrower(r.Context(), user.ID)
	if err != nil {
		httpx.Error(w, r, err)
		return
	}
	if records == nil {
		records = []*Record{}
	}
	httpx.Respond(w, http.StatusOK, records)
}
