// internal/api/router.go
package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"fintrack/internal/api/handler"
)

// Handlers groups the HTTP handlers mounted by NewRouter.
type Handlers struct {
	Auth        *handler.AuthHandler
	Wallet      *handler.WalletHandler
	Transaction *handler.TransactionHandler
	Category    *handler.CategoryHandler
	Report      *handler.ReportHandler
}

// NewRouter sets up and returns a new HTTP router.
func NewRouter(h Handlers, allowedOrigins []string) http.Handler {
	r := chi.NewRouter()

	// Global middlewares
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(handler.DefaultTimeout))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowedMethods:   []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type"},
		ExposedHeaders:   []string{"Content-Disposition"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("OK"))
	})

	r.Post("/auth/sign-up", h.Auth.SignUp)
	r.Post("/auth/sign-in", h.Auth.SignIn)

	r.Group(func(r chi.Router) {
		r.Use(h.Auth.RequireAuth)

		r.Get("/auth/me", h.Auth.Me)
		r.Get("/transaction-types", h.Category.ListTypes)

		r.Route("/transaction-categories", func(r chi.Router) {
			r.Get("/", h.Category.List)
			r.Post("/", h.Category.Create)
			r.Get("/{id}", h.Category.Get)
			r.Patch("/{id}", h.Category.Update)
			r.Delete("/{id}", h.Category.Delete)
		})

		r.Route("/transactions", func(r chi.Router) {
			r.Get("/", h.Transaction.List)
			r.Post("/", h.Transaction.Create)
			r.Get("/{id}", h.Transaction.Get)
			r.Patch("/{id}", h.Transaction.Update)
			r.Delete("/{id}", h.Transaction.Delete)
		})

		r.Route("/wallets", func(r chi.Router) {
			r.Get("/", h.Wallet.List)
			r.Post("/", h.Wallet.Create)
			r.Get("/{id}", h.Wallet.Get)
			r.Patch("/{id}", h.Wallet.Update)
			r.Delete("/{id}", h.Wallet.Delete)
		})

		r.Get("/reports/monthly", h.Report.Monthly)
		r.Get("/reports/monthly/export", h.Report.Export)
	})

	return r
}
