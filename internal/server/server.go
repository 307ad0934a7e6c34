// Package server wires the services, auth middleware, and routes into one
// http.Handler. cmd/api serves it; the API tests mount it on httptest.
package server

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"shelfwise/internal/borrowing"
	"shelfwise/internal/catalog"
	"shelfwise/internal/httpx"
	"shelfwise/internal/identity"
)

// Deps are the collaborators the router needs.
type Deps struct {
	Logger    *slog.Logger
	Identity  identity.Service
	Tokens    *identity.TokenManager
	Catalog   catalog.Service
	Borrowing borrowing.Service
}

// New builds the HTTP router.
func New(deps Deps) http.Handler {
	authHandler := identity.NewHandler(deps.Identity, deps.Tokens)
	bookHandler := catalog.NewHandler(deps.Catalog)
	borrowHandler := borrowing.NewHandler(deps.Borrowing)
	guard := identity.NewMiddleware(deps.Identity, deps.Tokens)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(httpx.RequestLogger(deps.Logger))
	r.Use(middleware.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, _ *http.Request) {
		httpx.Respond(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Post("/auth/register", authHandler.Register)
	r.Post("/auth/login", authHandler.Login)

	r.Group(func(r chi.Router) {
		r.Use(guard.Authenticate)

		r.Route("/books", func(r chi.Router) {
			r.Get("/", bookHandler.List)
			r.Get("/{id}", bookHandler.Get)

			r.Group(func(r chi.Router) {
				r.Use(guard.RequireAdmin)
				r.Post("/", bookHandler.Create)
				r.Put("/{id}", bookHandler.Update)
				r.Delete("/{id}", bookHandler.Delete)
			})
		})

		r.Route("/borrowings", func(r chi.Router) {
			r.With(guard.RequireAdmin).Get("/", borrowHandler.ListAll)
			r.Get("/my-borrowings", borrowHandler.ListMine)
			r.Post("/", borrowHandler.Borrow)
			r.Put("/{id}/return", borrowHandler.Return)
		})
	})

	return r
}
