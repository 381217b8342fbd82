package graphqlapi

import (
	"fmt"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/render"
	"github.com/tendant/help-center/pkg/helpcenter"
	"github.com/tendant/help-center/pkg/helpcenter/ratelimit"
)

// Config collects the collaborators of the public router
type Config struct {
	Service        helpcenter.Service
	Limiter        *ratelimit.Limiter
	AllowedOrigins []string
	Logger         *slog.Logger
}

// NewRouter assembles the public GraphQL server: a single /graphql
// endpoint plus health. The frontend is a browser app, so CORS is
// configured here rather than at a proxy.
func NewRouter(cfg Config) (chi.Router, error) {
	schema, err := NewSchema(cfg.Service)
	if err != nil {
		return nil, fmt.Errorf("build schema: %w", err)
	}

	origins := cfg.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"*"}
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: origins,
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type"},
		MaxAge:         300,
	}))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		render.JSON(w, r, map[string]string{"status": "ok"})
	})

	r.Handle("/graphql", NewHandler(schema, cfg.Limiter, cfg.Logger))

	return r, nil
}
