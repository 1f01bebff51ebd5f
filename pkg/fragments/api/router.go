package api

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httplog/v2"
	"github.com/tendant/simple-fragments/pkg/fragments"
)

// RouterConfig holds what NewRouter needs beyond the service
type RouterConfig struct {
	APIURL       string
	MaxBodyBytes int64

	// Auth wraps the /v1 routes; defaults to HeaderAuth
	Auth func(http.Handler) http.Handler

	// RequestLogger is optional; requests are not logged when nil
	RequestLogger *httplog.Logger

	// Metrics is served at /metrics when set
	Metrics http.Handler
}

// NewRouter assembles the HTTP server: health check, metrics and /v1/fragments.
func NewRouter(service fragments.Service, cfg RouterConfig) chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	if cfg.RequestLogger != nil {
		r.Use(httplog.RequestLogger(cfg.RequestLogger, []string{"/"}))
	}
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(60 * time.Second))
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"https://*", "http://*"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", OwnerHeader},
		ExposedHeaders:   []string{"Location"},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	r.Get("/", Health)
	if cfg.Metrics != nil {
		r.Handle("/metrics", cfg.Metrics)
	}

	auth := cfg.Auth
	if auth == nil {
		auth = HeaderAuth()
	}

	handler := NewFragmentHandler(service, WithAPIURL(cfg.APIURL), WithMaxBodyBytes(cfg.MaxBodyBytes))
	r.Route("/v1", func(r chi.Router) {
		r.Use(auth)
		r.Mount("/fragments", handler.Routes())
	})

	return r
}
