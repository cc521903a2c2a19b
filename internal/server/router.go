package server

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"github.com/diewo77/invoicing-api/internal/handlers"
	"github.com/diewo77/invoicing-api/internal/httpx"
	"github.com/diewo77/invoicing-api/internal/repository"
	"github.com/diewo77/invoicing-api/internal/services"
)

// New constructs the root http.Handler with all routes and middlewares applied.
func New(db *gorm.DB, log zerolog.Logger) http.Handler {
	ref := repository.NewReferenceStore(db)
	repo := repository.NewInvoiceRepository(db)
	svc := services.NewInvoiceService(repo, ref, log)

	r := chi.NewRouter()
	r.Use(withRecover(log))
	r.Use(requestLogger(log))
	r.Use(instrumentHTTP)
	r.NotFound(func(w http.ResponseWriter, _ *http.Request) {
		httpx.JSONError(w, http.StatusNotFound, "not_found", nil)
	})
	r.MethodNotAllowed(func(w http.ResponseWriter, _ *http.Request) {
		httpx.JSONError(w, http.StatusMethodNotAllowed, "method_not_allowed", nil)
	})

	r.Get("/health", handlers.Health)
	r.Get("/healthz", handlers.Healthz(db))
	r.Method(http.MethodGet, "/metrics", metricsHandler())

	ch := handlers.NewClientHandler(ref, log)
	r.Get("/clients", ch.List)
	r.Get("/clients/{id}", ch.Get)

	ph := handlers.NewProductHandler(ref, log)
	r.Get("/products", ph.List)
	r.Get("/products/{id}", ph.Get)

	ih := handlers.NewInvoiceHandler(svc, log)
	r.Get("/invoices", ih.List)
	r.Post("/invoices", ih.Create)
	r.Get("/invoices/{id}", ih.Get)
	r.Put("/invoices/{id}", ih.Update)
	r.Delete("/invoices/{id}", ih.Delete)

	return r
}
