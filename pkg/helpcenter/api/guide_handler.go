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

// maxUploadMemory bounds the multipart form buffer; larger files spill to
// temp files.
const maxUploadMemory = 32 << 20

// GuideHandler handles editor HTTP requests for guides and their media
type GuideHandler struct {
	service helpcenter.Service
	logger  *slog.Logger
}

// NewGuideHandler creates a new guide handler
func NewGuideHandler(service helpcenter.Service, logger *slog.Logger) *GuideHandler {
	return &GuideHandler{service: service, logger: logger}
}

// Routes returns the routes for guides. read, write and upload wrap route
// groups with the matching rate-limit class.
func (h *GuideHandler) Routes(read, write, upload func(http.Handler) http.Handler) chi.Router {
	r := chi.NewRouter()

	r.Group(func(r chi.Router) {
		r.Use(read)
		r.Get("/", h.ListGuides)
		r.Get("/slug/{slug}", h.GetGuideBySlug)
		r.Get("/{id}", h.GetGuide)
		r.Get("/{id}/media", h.ListMedia)
		r.Get("/{id}/media/{mediaID}", h.GetMedia)
	})
	r.Group(func(r chi.Router) {
		r.Use(write)
		r.Post("/", h.CreateGuide)
		r.Put("/{id}", h.UpdateGuide)
		r.Delete("/{id}", h.DeleteGuide)
		r.Delete("/{id}/media/{mediaID}", h.DeleteMedia)
	})
	r.Group(func(r chi.Router) {
		r.Use(upload)
		r.Post("/{id}/media", h.UploadMedia)
	})

	return r
}

// CreateGuideRequest is the request body for creating a guide
type CreateGuideRequest struct {
	Title             string           `json:"title"`
	Slug              string           `json:"slug"`
	Body              helpcenter.Body  `json:"body"`
	EstimatedReadTime int              `json:"estimated_read_time"`
	CategoryID        *uuid.UUID       `json:"category_id"`
	MediaIDs          []uuid.UUID      `json:"media_ids"`
}

// UpdateGuideRequest is the request body for a partial guide update.
// media_ids, when present, is the full desired media set; owned media left
// out of it are deleted. clear_category uncategorizes the guide and wins
// over category_id.
type UpdateGuideRequest struct {
	Title             *string          `json:"title"`
	Slug              *string          `json:"slug"`
	Body              *helpcenter.Body `json:"body"`
	EstimatedReadTime *int             `json:"estimated_read_time"`
	CategoryID        *uuid.UUID       `json:"category_id"`
	ClearCategory     bool             `json:"clear_category"`
	MediaIDs          []uuid.UUID      `json:"media_ids"`
}

func (h *GuideHandler) CreateGuide(w http.ResponseWriter, r *http.Request) {
	var req CreateGuideRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		renderBadRequest(w, r, "invalid request body")
		return
	}

	details, err := h.service.CreateGuide(r.Context(), helpcenter.CreateGuideRequest{
		Title:             req.Title,
		Slug:              req.Slug,
		Body:              req.Body,
		EstimatedReadTime: req.EstimatedReadTime,
		CategoryID:        req.CategoryID,
		MediaIDs:          req.MediaIDs,
	})
	if err != nil {
		renderError(w, r, h.logger, err)
		return
	}

	render.Status(r, http.StatusCreated)
	render.JSON(w, r, details)
}

func (h *GuideHandler) GetGuide(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		renderBadRequest(w, r, "invalid guide ID")
		return
	}

	details, err := h.service.GetGuide(r.Context(), id)
	if err != nil {
		renderError(w, r, h.logger, err)
		return
	}

	render.JSON(w, r, details)
}

func (h *GuideHandler) GetGuideBySlug(w http.ResponseWriter, r *http.Request) {
	details, err := h.service.GetGuideBySlug(r.Context(), chi.URLParam(r, "slug"))
	if err != nil {
		renderError(w, r, h.logger, err)
		return
	}

	render.JSON(w, r, details)
}

func (h *GuideHandler) ListGuides(w http.ResponseWriter, r *http.Request) {
	var categorySlug *string
	if slug := r.URL.Query().Get("category"); slug != "" {
		categorySlug = &slug
	}

	guides, err := h.service.ListGuides(r.Context(), categorySlug)
	if err != nil {
		renderError(w, r, h.logger, err)
		return
	}

	render.JSON(w, r, guides)
}

func (h *GuideHandler) UpdateGuide(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		renderBadRequest(w, r, "invalid guide ID")
		return
	}

	var req UpdateGuideRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		renderBadRequest(w, r, "invalid request body")
		return
	}

	details, err := h.service.UpdateGuide(r.Context(), id, helpcenter.UpdateGuideRequest{
		Title:             req.Title,
		Slug:              req.Slug,
		Body:              req.Body,
		EstimatedReadTime: req.EstimatedReadTime,
		CategoryID:        req.CategoryID,
		ClearCategory:     req.ClearCategory,
		MediaIDs:          req.MediaIDs,
	})
	if err != nil {
		renderError(w, r, h.logger, err)
		return
	}

	render.JSON(w, r, details)
}

func (h *GuideHandler) DeleteGuide(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		renderBadRequest(w, r, "invalid guide ID")
		return
	}

	if err := h.service.DeleteGuide(r.Context(), id); err != nil {
		renderError(w, r, h.logger, err)
		return
	}

	render.NoContent(w, r)
}

// UploadMedia accepts a multipart form with a single "file" field and
// stores it as media owned by the guide.
func (h *GuideHandler) UploadMedia(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		renderBadRequest(w, r, "invalid guide ID")
		return
	}

	if err := r.ParseMultipartForm(maxUploadMemory); err != nil {
		renderBadRequest(w, r, "invalid multipart form")
		return
	}
	file, header, err := r.FormFile("file")
	if err != nil {
		renderBadRequest(w, r, "missing file field")
		return
	}
	defer file.Close()

	media, err := h.service.UploadMedia(r.Context(), helpcenter.UploadMediaRequest{
		GuideID:     id,
		FileName:    header.Filename,
		ContentType: header.Header.Get("Content-Type"),
		SizeBytes:   header.Size,
		Reader:      file,
	})
	if err != nil {
		renderError(w, r, h.logger, err)
		return
	}

	render.Status(r, http.StatusCreated)
	render.JSON(w, r, media)
}

func (h *GuideHandler) ListMedia(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		renderBadRequest(w, r, "invalid guide ID")
		return
	}

	media, err := h.service.ListMedia(r.Context(), id)
	if err != nil {
		renderError(w, r, h.logger, err)
		return
	}

	render.JSON(w, r, media)
}

func (h *GuideHandler) GetMedia(w http.ResponseWriter, r *http.Request) {
	guideID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		renderBadRequest(w, r, "invalid guide ID")
		return
	}
	mediaID, err := uuid.Parse(chi.URLParam(r, "mediaID"))
	if err != nil {
		renderBadRequest(w, r, "invalid media ID")
		return
	}

	media, err := h.service.GetMedia(r.Context(), guideID, mediaID)
	if err != nil {
		renderError(w, r, h.logger, err)
		return
	}

	render.JSON(w, r, media)
}

func (h *GuideHandler) DeleteMedia(w http.ResponseWriter, r *http.Request) {
	guideID, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		renderBadRequest(w, r, "invalid guide ID")
		return
	}
	mediaID, err := uuid.Parse(chi.URLParam(r, "mediaID"))
	if err != nil {
		renderBadRequest(w, r, "invalid media ID")
		return
	}

	if err := h.service.DeleteMedia(r.Context(), guideID, mediaID); err != nil {
		renderError(w, r, h.logger, err)
		return
	}

	render.NoContent(w, r)
}
