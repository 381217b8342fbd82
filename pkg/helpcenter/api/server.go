// Package api is the private REST surface used by the editor frontend.
// Every route sits behind the shared editor key; traffic is limited per
// endpoint class.
package api

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"
	"github.com/tendant/help-center/pkg/helpcenter"
	"github.com/tendant/help-center/pkg/helpcenter/ratelimit"
)

// Config collects the collaborators of the editor router
type Config struct {
	Service   helpcenter.Service
	Limiter   *ratelimit.Limiter
	EditorKey string
	Logger    *slog.Logger
}

// NewRouter assembles the editor API. The health endpoint is open; all
// /api/v1 routes require the editor key.
func NewRouter(cfg Config) chi.Router {
	logger := cfg.Logger
	if logger == nil {
		logger = slog.Default()
	}

	read := ratelimit.Middleware(cfg.Limiter, ratelimit.PrivateRead, ratelimit.EditorPrincipal)
	write := ratelimit.Middleware(cfg.Limiter, ratelimit.PrivateWrite, ratelimit.EditorPrincipal)
	upload := ratelimit.Middleware(cfg.Limiter, ratelimit.PrivateUpload, ratelimit.EditorPrincipal)

	categories := NewCategoryHandler(cfg.Service, logger)
	guides := NewGuideHandler(cfg.Service, logger)
	feedback := NewFeedbackHandler(cfg.Service, logger)

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Recoverer)

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		render.JSON(w, r, map[string]string{"status": "ok"})
	})

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(EditorKeyAuth(cfg.EditorKey))
		r.Mount("/categories", categories.Routes(read, write))
		r.Mount("/guides", guides.Routes(read, write, upload))
		r.Mount("/feedback", feedback.Routes(read, write))
	})

	return r
}
