package api

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/google/uuid"
	"github.com/tendant/help-center/pkg/helpcenter"
)

// CategoryHandler handles editor HTTP requests for categories
type CategoryHandler struct {
	service helpcenter.Service
	logger  *slog.Logger
}

// NewCategoryHandler creates a new category handler
func NewCategoryHandler(service helpcenter.Service, logger *slog.Logger) *CategoryHandler {
	return &CategoryHandler{service: service, logger: logger}
}

// Routes returns the routes for categories. read and write wrap the route
// groups with the matching rate-limit class.
func (h *CategoryHandler) Routes(read, write func(http.Handler) http.Handler) chi.Router {
	r := chi.NewRouter()

	r.Group(func(r chi.Router) {
		r.Use(read)
		r.Get("/", h.ListCategories)
		r.Get("/slug/{slug}", h.GetCategoryBySlug)
		r.Get("/{id}", h.GetCategory)
	})
	r.Group(func(r chi.Router) {
		r.Use(write)
		r.Post("/", h.CreateCategory)
		r.Put("/{id}", h.UpdateCategory)
		r.Delete("/{id}", h.DeleteCategory)
	})

	return r
}

// CreateCategoryRequest is the request body for creating a category
type CreateCategoryRequest struct {
	Name     string `json:"name"`
	Slug     string `json:"slug"`
	Position int    `json:"position"`
}

// UpdateCategoryRequest is the request body for a partial category update
type UpdateCategoryRequest struct {
	Name     *string `json:"name"`
	Slug     *string `json:"slug"`
	Position *int    `json:"position"`
}

func (h *CategoryHandler) CreateCategory(w http.ResponseWriter, r *http.Request) {
	var req CreateCategoryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		renderBadRequest(w, r, "invalid request body")
		return
	}

	category, err := h.service.CreateCategory(r.Context(), helpcenter.CreateCategoryRequest{
		Name:     req.Name,
		Slug:     req.Slug,
		Position: req.Position,
	})
	if err != nil {
		renderError(w, r, h.logger, err)
		return
	}

	render.Status(r, http.StatusCreated)
	render.JSON(w, r, category)
}

func (h *CategoryHandler) GetCategory(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		renderBadRequest(w, r, "invalid category ID")
		return
	}

	category, err := h.service.GetCategory(r.Context(), id)
	if err != nil {
		renderError(w, r, h.logger, err)
		return
	}

	render.JSON(w, r, category)
}

func (h *CategoryHandler) GetCategoryBySlug(w http.ResponseWriter, r *http.Request) {
	category, err := h.service.GetCategoryBySlug(r.Context(), chi.URLParam(r, "slug"))
	if err != nil {
		renderError(w, r, h.logger, err)
		return
	}

	render.JSON(w, r, category)
}

func (h *CategoryHandler) ListCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := h.service.ListCategories(r.Context())
	if err != nil {
		renderError(w, r, h.logger, err)
		return
	}

	render.JSON(w, r, categories)
}

func (h *CategoryHandler) UpdateCategory(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		renderBadRequest(w, r, "invalid category ID")
		return
	}

	var req UpdateCategoryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		renderBadRequest(w, r, "invalid request body")
		return
	}

	category, err := h.service.UpdateCategory(r.Context(), id, helpcenter.UpdateCategoryRequest{
		Name:     req.Name,
		Slug:     req.Slug,
		Position: req.Position,
	})
	if err != nil {
		renderError(w, r, h.logger, err)
		return
	}

	render.JSON(w, r, category)
}

func (h *CategoryHandler) DeleteCategory(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		renderBadRequest(w, r, "invalid category ID")
		return
	}

	if err := h.service.DeleteCategory(r.Context(), id); err != nil {
		renderError(w, r, h.logger, err)
		return
	}

	render.NoContent(w, r)
}
