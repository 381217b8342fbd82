package api

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/google/uuid"
	"github.com/tendant/help-center/pkg/helpcenter"
)

// FeedbackHandler handles editor HTTP requests for reviewing feedback.
// Submission happens on the public surface; the editor only reads and
// moderates.
type FeedbackHandler struct {
	service helpcenter.Service
	logger  *slog.Logger
}

// NewFeedbackHandler creates a new feedback handler
func NewFeedbackHandler(service helpcenter.Service, logger *slog.Logger) *FeedbackHandler {
	return &FeedbackHandler{service: service, logger: logger}
}

// Routes returns the routes for feedback review
func (h *FeedbackHandler) Routes(read, write func(http.Handler) http.Handler) chi.Router {
	r := chi.NewRouter()

	r.Group(func(r chi.Router) {
		r.Use(read)
		r.Get("/", h.ListFeedback)
		r.Get("/{id}", h.GetFeedback)
	})
	r.Group(func(r chi.Router) {
		r.Use(write)
		r.Delete("/{id}", h.DeleteFeedback)
	})

	return r
}

func (h *FeedbackHandler) ListFeedback(w http.ResponseWriter, r *http.Request) {
	feedback, err := h.service.ListFeedback(r.Context())
	if err != nil {
		renderError(w, r, h.logger, err)
		return
	}

	render.JSON(w, r, feedback)
}

func (h *FeedbackHandler) GetFeedback(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		renderBadRequest(w, r, "invalid feedback ID")
		return
	}

	feedback, err := h.service.GetFeedback(r.Context(), id)
	if err != nil {
		renderError(w, r, h.logger, err)
		return
	}

	render.JSON(w, r, feedback)
}

func (h *FeedbackHandler) DeleteFeedback(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		renderBadRequest(w, r, "invalid feedback ID")
		return
	}

	if err := h.service.DeleteFeedback(r.Context(), id); err != nil {
		renderError(w, r, h.logger, err)
		return
	}

	render.NoContent(w, r)
}
