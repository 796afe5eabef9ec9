package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/wolfman30/vitrine/internal/http/handlers"
	httpmiddleware "github.com/wolfman30/vitrine/internal/http/middleware"
	"github.com/wolfman30/vitrine/pkg/logging"
)

// Config holds router configuration
type Config struct {
	Logger             *logging.Logger
	Sessions           *handlers.SessionHandler
	Catalog            *handlers.CatalogHandler
	MetricsHandler     http.Handler
	RateLimiter        *httpmiddleware.RateLimiter
	CORSAllowedOrigins []string
}

// New creates the chi router with every route configured
func New(cfg *Config) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(httpmiddleware.RequestLogger(cfg.Logger))
	r.Use(middleware.Recoverer)
	r.Use(middleware.Compress(5, "application/json"))
	if len(cfg.CORSAllowedOrigins) > 0 {
		r.Use(httpmiddleware.CORS(cfg.CORSAllowedOrigins))
	}

	r.Get("/health", handlers.Health)
	if cfg.MetricsHandler != nil {
		r.Handle("/metrics", cfg.MetricsHandler)
	}
	if cfg.Catalog != nil {
		r.Get("/products", cfg.Catalog.List)
	}

	if cfg.Sessions != nil {
		s := cfg.Sessions
		r.Route("/sessions", func(r chi.Router) {
			if cfg.RateLimiter != nil {
				r.Use(httpmiddleware.RateLimit(cfg.RateLimiter))
			}
			r.Post("/", s.Create)
			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", s.Get)
				r.Post("/buy", s.Buy)
				r.Post("/cta", s.CTA)
				r.Post("/dismiss", s.Dismiss)
				r.Post("/keys", s.Key)
				r.Get("/toasts", s.Toasts)

				r.Route("/purchase", func(r chi.Router) {
					r.Post("/license", s.ChooseLicense)
					r.Post("/method", s.ChooseMethod)
					r.Put("/fields/{field}", s.SetPurchaseField)
					r.Post("/confirm", s.Confirm)
				})
				r.Route("/appointment", func(r chi.Router) {
					r.Put("/fields/{field}", s.SetAppointmentField)
					r.Post("/submit", s.Submit)
				})
			})
		})
	}

	return r
}
