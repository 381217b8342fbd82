package api

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/render"
	"github.com/tendant/help-center/pkg/helpcenter"
)

// ErrorResponse is the JSON body for every non-2xx response
type ErrorResponse struct {
	Error string `json:"error"`
}

// renderError maps domain errors onto HTTP statuses. Unrecognized errors
// are logged and answered with an opaque 500 so internals never leak.
func renderError(w http.ResponseWriter, r *http.Request, logger *slog.Logger, err error) {
	status := http.StatusInternalServerError
	message := err.Error()

	var storageErr *helpcenter.StorageError

	switch {
	case errors.Is(err, helpcenter.ErrCategoryNotFound),
		errors.Is(err, helpcenter.ErrGuideNotFound),
		errors.Is(err, helpcenter.ErrMediaNotFound),
		errors.Is(err, helpcenter.ErrFeedbackNotFound):
		status = http.StatusNotFound
	case errors.Is(err, helpcenter.ErrSlugTaken):
		status = http.StatusConflict
	case errors.Is(err, helpcenter.ErrInvalidReference):
		status = http.StatusUnprocessableEntity
	case errors.Is(err, helpcenter.ErrInvalidInput):
		status = http.StatusBadRequest
	case errors.Is(err, helpcenter.ErrRateLimited):
		status = http.StatusTooManyRequests
	case errors.As(err, &storageErr):
		status = http.StatusBadGateway
		message = "blob storage operation failed"
	case errors.Is(err, helpcenter.ErrUnavailable):
		status = http.StatusServiceUnavailable
		message = "storage unavailable"
	default:
		logger.Error("unhandled error", "method", r.Method, "path", r.URL.Path, "error", err)
		message = "internal server error"
	}

	render.Status(r, status)
	render.JSON(w, r, ErrorResponse{Error: message})
}

func renderBadRequest(w http.ResponseWriter, r *http.Request, message string) {
	render.Status(r, http.StatusBadRequest)
	render.JSON(w, r, ErrorResponse{Error: message})
}
