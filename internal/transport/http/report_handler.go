package http

import (
	"errors"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/go-playground/validator/v10"

	apierrors "tourinsights/internal/errors"
	"tourinsights/internal/services"
)

// GenerateReportRequest is the body of POST /api/reports. All fields
// are optional; zero values fall back to configured defaults.
type GenerateReportRequest struct {
	HorizonDays int `json:"horizon_days" validate:"omitempty,min=7,max=90"`
	DaysBack    int `json:"days_back" validate:"omitempty,min=30,max=3650"`
}

// ReportHandler handles report generation and retrieval requests
type ReportHandler struct {
	service      ReportService
	logger       *slog.Logger
	errorHandler *apierrors.ErrorHandler
	validate     *validator.Validate
}

// NewReportHandler creates a new report handler
func NewReportHandler(service ReportService, logger *slog.Logger) *ReportHandler {
	return &ReportHandler{
		service:      service,
		logger:       logger,
		errorHandler: apierrors.NewErrorHandler(logger, true),
		validate:     validator.New(),
	}
}

// RegisterRoutes registers the report routes
func (h *ReportHandler) RegisterRoutes(r chi.Router) {
	r.Route("/reports", func(r chi.Router) {
		r.Post("/", h.Generate)
		r.Get("/latest", h.Latest)
	})
}

// Generate runs the full reporting pipeline and returns the report
func (h *ReportHandler) Generate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var req GenerateReportRequest
	if err := render.DecodeJSON(r.Body, &req); err != nil && !errors.Is(err, io.EOF) {
		h.errorHandler.HandleError(w, r, apierrors.InvalidRequestWithError(err))
		return
	}

	if err := h.validate.Struct(req); err != nil {
		var vErrs validator.ValidationErrors
		if errors.As(err, &vErrs) && len(vErrs) > 0 {
			field := strings.ToLower(vErrs[0].Field())
			h.errorHandler.HandleError(w, r, apierrors.ErrValidation(field, vErrs[0].Error()))
			return
		}
		h.errorHandler.HandleError(w, r, apierrors.InvalidRequestWithError(err))
		return
	}

	h.logger.InfoContext(ctx, "report generation requested",
		slog.Int("horizon_days", req.HorizonDays),
		slog.Int("days_back", req.DaysBack))

	rpt, err := h.service.GenerateComprehensive(ctx, services.GenerateOptions{
		HorizonDays: req.HorizonDays,
		DaysBack:    req.DaysBack,
	})
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	render.Status(r, http.StatusCreated)
	render.JSON(w, r, rpt)
}

// Latest returns the most recently persisted report
func (h *ReportHandler) Latest(w http.ResponseWriter, r *http.Request) {
	rpt, err := h.service.Latest(r.Context())
	if err != nil {
		h.errorHandler.HandleError(w, r, err)
		return
	}

	render.JSON(w, r, rpt)
}
