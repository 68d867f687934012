package services

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"tourinsights/internal/config"
	"tourinsights/internal/dataset"
	apperrors "tourinsights/internal/errors"
	"tourinsights/internal/forecast"
	"tourinsights/internal/insight"
	"tourinsights/internal/report"
)

// ReportStore persists generated reports and serves the latest one back.
type ReportStore interface {
	SaveReport(ctx context.Context, rpt report.Comprehensive) error
	SaveForecasts(ctx context.Context, reportID string, fx forecast.Bundle, generatedAt time.Time) error
	SaveInsights(ctx context.Context, reportID string, insights map[string]insight.DepartmentInsight, generatedAt time.Time) error
	LatestReport(ctx context.Context) (report.Comprehensive, error)
}

// GenerateOptions controls a single report run. Zero values fall back to
// the configured analytics defaults.
type GenerateOptions struct {
	HorizonDays int
	DaysBack    int
}

// ReportService orchestrates the comprehensive reporting pipeline
type ReportService struct {
	loader    *dataset.Loader
	engine    *forecast.Engine
	generator *insight.Generator
	assembler *report.Assembler
	store     ReportStore
	analytics config.AnalyticsConfig
	logger    *slog.Logger
	now       func() time.Time
}

// ReportServiceOption configures a ReportService
type ReportServiceOption func(*ReportService)

// WithStore attaches a persistence store. Without one, reports are
// generated in memory only.
func WithStore(store ReportStore) ReportServiceOption {
	return func(s *ReportService) { s.store = store }
}

// WithClock overrides the service clock, used by tests
func WithClock(now func() time.Time) ReportServiceOption {
	return func(s *ReportService) { s.now = now }
}

// NewReportService creates a report service with injected dependencies
func NewReportService(
	loader *dataset.Loader,
	engine *forecast.Engine,
	generator *insight.Generator,
	assembler *report.Assembler,
	analytics config.AnalyticsConfig,
	logger *slog.Logger,
	opts ...ReportServiceOption,
) *ReportService {
	if logger == nil {
		logger = slog.Default()
	}
	s := &ReportService{
		loader:    loader,
		engine:    engine,
		generator: generator,
		assembler: assembler,
		analytics: analytics,
		logger:    logger,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// GenerateComprehensive runs the full pipeline: load, forecast, generate
// department insights, assemble. The three forecasts run concurrently,
// then the six departments fan out over the shared forecast bundle and
// merge in canonical order.
func (s *ReportService) GenerateComprehensive(ctx context.Context, opts GenerateOptions) (report.Comprehensive, error) {
	horizon := opts.HorizonDays
	if horizon <= 0 {
		horizon = s.analytics.ForecastHorizonDays
	}
	daysBack := opts.DaysBack
	if daysBack <= 0 {
		daysBack = s.analytics.DaysBack
	}

	start := s.now()
	s.logger.InfoContext(ctx, "report generation started",
		slog.Int("horizon_days", horizon),
		slog.Int("days_back", daysBack))

	data, err := s.loader.Load(ctx, daysBack)
	if err != nil {
		return report.Comprehensive{}, fmt.Errorf("loading datasets: %w", err)
	}

	fx := s.forecastAll(ctx, data, horizon)
	insights, err := s.departmentInsights(ctx, data, fx)
	if err != nil {
		return report.Comprehensive{}, err
	}

	rpt := s.assembler.Assemble(data, fx, insights, horizon, s.now())

	if s.store != nil {
		if err := s.persist(ctx, rpt); err != nil {
			// Persistence is best effort: the caller still gets the report.
			s.logger.ErrorContext(ctx, "report persistence failed",
				slog.String("report_id", rpt.Metadata.ID),
				slog.String("error", err.Error()))
		}
	}

	s.logger.InfoContext(ctx, "report generation completed",
		slog.String("report_id", rpt.Metadata.ID),
		slog.String("overall_status", rpt.ExecutiveSummary.OverallStatus),
		slog.Duration("elapsed", s.now().Sub(start)))
	return rpt, nil
}

// Latest returns the most recently persisted report.
func (s *ReportService) Latest(ctx context.Context) (report.Comprehensive, error) {
	if s.store == nil {
		return report.Comprehensive{}, fmt.Errorf("no report store configured: %w", apperrors.ErrRecordNotFound)
	}
	return s.store.LatestReport(ctx)
}

func (s *ReportService) forecastAll(ctx context.Context, data dataset.Collection, horizon int) forecast.Bundle {
	occupancySource := data.Occupancy
	if occupancySource.IsEmpty() {
		occupancySource = data.Visits
	}

	var fx forecast.Bundle
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		fx.Arrivals = s.engine.ForecastActivity(gctx, data.Arrivals, horizon)
		return nil
	})
	g.Go(func() error {
		fx.Occupancy = s.engine.ForecastOccupancy(gctx, occupancySource, horizon)
		return nil
	})
	g.Go(func() error {
		fx.Revenue = s.engine.ForecastRevenue(gctx, data.Arrivals, horizon)
		return nil
	})
	// Forecast methods report failures inside their results, never as errors.
	_ = g.Wait()
	return fx
}

func (s *ReportService) departmentInsights(ctx context.Context, data dataset.Collection, fx forecast.Bundle) (map[string]insight.DepartmentInsight, error) {
	departments := s.generator.Departments()
	results := make([]insight.DepartmentInsight, len(departments))

	g, gctx := errgroup.WithContext(ctx)
	for i, dept := range departments {
		g.Go(func() error {
			ins, err := s.generator.GenerateDepartment(gctx, dept, data, fx)
			if err != nil {
				return fmt.Errorf("generating %s insight: %w", dept, err)
			}
			results[i] = ins
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}

	insights := make(map[string]insight.DepartmentInsight, len(departments))
	for i, dept := range departments {
		insights[dept] = results[i]
	}
	return insights, nil
}

func (s *ReportService) persist(ctx context.Context, rpt report.Comprehensive) error {
	if err := s.store.SaveReport(ctx, rpt); err != nil {
		return fmt.Errorf("saving report: %w", err)
	}
	if err := s.store.SaveForecasts(ctx, rpt.Metadata.ID, rpt.Forecasts, rpt.Metadata.GeneratedAt); err != nil {
		return fmt.Errorf("saving forecasts: %w", err)
	}
	if err := s.store.SaveInsights(ctx, rpt.Metadata.ID, rpt.Departments, rpt.Metadata.GeneratedAt); err != nil {
		return fmt.Errorf("saving insights: %w", err)
	}
	return nil
}
