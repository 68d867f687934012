package errors

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/render"
)

// ErrorHandler provides centralized error handling for HTTP responses
type ErrorHandler struct {
	logger       *slog.Logger
	includeCause bool
}

// NewErrorHandler creates a new error handler
func NewErrorHandler(logger *slog.Logger, includeCause bool) *ErrorHandler {
	return &ErrorHandler{
		logger:       logger.With(slog.String("component", "error_handler")),
		includeCause: includeCause,
	}
}

// HandleError converts any error to a structured APIError response
func (h *ErrorHandler) HandleError(w http.ResponseWriter, r *http.Request, err error) {
	if err == nil {
		return
	}

	reqID := middleware.GetReqID(r.Context())

	h.logger.ErrorContext(r.Context(), "request failed",
		slog.String("error", err.Error()),
		slog.String("request_id", reqID),
		slog.String("method", r.Method),
		slog.String("path", r.URL.Path),
	)

	apiErr := h.toAPIError(err)
	if renderErr := render.Render(w, r, apiErr); renderErr != nil {
		http.Error(w, apiErr.Message, apiErr.StatusCode)
	}
}

// toAPIError maps domain errors onto API error responses
func (h *ErrorHandler) toAPIError(err error) *APIError {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr
	}

	switch {
	case errors.Is(err, ErrDataUnavailable):
		if h.includeCause {
			return DataUnavailableError(err)
		}
		return ErrNoDataSource
	case IsType(err, ErrTypeValidation):
		return InvalidRequestWithError(err)
	case errors.Is(err, ErrRecordNotFound):
		return ErrReportNotFound
	case IsType(err, ErrTypeNotFound):
		return ErrNotFound
	default:
		if h.includeCause {
			return ReportGenerationError(err)
		}
		return ErrInternalServer
	}
}
