package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"

	"tourinsights/internal/config"
	"tourinsights/internal/dataset"
	"tourinsights/internal/exporter"
	"tourinsights/internal/forecast"
	"tourinsights/internal/infrastructure"
	"tourinsights/internal/insight"
	"tourinsights/internal/report"
	"tourinsights/internal/services"
	"tourinsights/internal/store"
	"tourinsights/internal/synthetic"
)

func main() {
	outputDir := flag.String("out", "", "output directory for report artifacts (defaults to configured reports dir)")
	horizon := flag.Int("horizon", 0, "forecast horizon in days (defaults to configured value)")
	daysBack := flag.Int("days-back", 0, "history window in days (defaults to configured value)")
	excel := flag.Bool("excel", true, "also write an Excel workbook")
	flag.Parse()

	// Optional .env, ignored when absent
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load configuration", "error", err)
		os.Exit(1)
	}

	logger, err := infrastructure.InitializeLogger(cfg.Logging)
	if err != nil {
		slog.Error("failed to initialize logger", "error", err)
		os.Exit(1)
	}

	if *outputDir == "" {
		*outputDir = cfg.Paths.ReportsDir
	}

	ctx := context.Background()
	svc, cleanup, err := buildService(ctx, cfg, logger)
	if err != nil {
		logger.Error("failed to wire pipeline", "error", err)
		os.Exit(1)
	}
	defer cleanup()

	rpt, err := svc.GenerateComprehensive(ctx, services.GenerateOptions{
		HorizonDays: *horizon,
		DaysBack:    *daysBack,
	})
	if err != nil {
		logger.Error("report generation failed", "error", err)
		os.Exit(1)
	}

	if err := writeArtifacts(rpt, *outputDir, *excel, logger); err != nil {
		logger.Error("failed to write artifacts", "error", err)
		os.Exit(1)
	}

	logger.Info("report complete",
		"report_id", rpt.Metadata.ID,
		"overall_status", rpt.ExecutiveSummary.OverallStatus,
		"output_dir", *outputDir)
}

func buildService(ctx context.Context, cfg *config.Config, logger *slog.Logger) (*services.ReportService, func(), error) {
	cleanup := func() {}

	loaderOpts := []dataset.LoaderOption{dataset.WithCSVPaths(cfg.Paths.CSVPaths)}
	svcOpts := []services.ReportServiceOption{}
	if cfg.Database.Enabled() {
		st, err := store.Open(ctx, cfg.Database, logger)
		if err != nil {
			return nil, cleanup, fmt.Errorf("opening store: %w", err)
		}
		cleanup = st.Close
		loaderOpts = append(loaderOpts, dataset.WithSource(st))
		svcOpts = append(svcOpts, services.WithStore(st))
	}

	source := synthetic.NewSource(cfg.Analytics.SyntheticSeed)
	loader := dataset.NewLoader(logger, loaderOpts...)
	engine := forecast.NewEngine(forecast.ParamsFromConfig(cfg.Analytics), source, logger)
	generator, err := insight.NewGenerator(engine.Params(), source, logger)
	if err != nil {
		return nil, cleanup, fmt.Errorf("loading department profiles: %w", err)
	}
	assembler := report.NewAssembler(cfg.Analytics, logger)

	return services.NewReportService(loader, engine, generator, assembler, cfg.Analytics, logger, svcOpts...), cleanup, nil
}

func writeArtifacts(rpt report.Comprehensive, outputDir string, excel bool, logger *slog.Logger) error {
	stamp := rpt.Metadata.GeneratedAt.Format("20060102_150405")

	if err := os.MkdirAll(outputDir, 0755); err != nil {
		return fmt.Errorf("creating output directory: %w", err)
	}

	jsonPath := filepath.Join(outputDir, fmt.Sprintf("tourism_report_%s.json", stamp))
	data, err := json.MarshalIndent(rpt, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding report: %w", err)
	}
	if err := os.WriteFile(jsonPath, data, 0644); err != nil {
		return fmt.Errorf("writing report JSON: %w", err)
	}
	logger.Info("report JSON written", "path", jsonPath)

	exp := exporter.NewReportExporter(outputDir, logger)
	if err := exp.ExportSummaryCSV(rpt, fmt.Sprintf("tourism_summary_%s.csv", stamp)); err != nil {
		return fmt.Errorf("writing summary CSV: %w", err)
	}
	if err := exp.ExportForecastCSV(rpt.Forecasts, fmt.Sprintf("tourism_forecasts_%s.csv", stamp)); err != nil {
		return fmt.Errorf("writing forecast CSV: %w", err)
	}
	if excel {
		if err := exp.ExportWorkbook(rpt, fmt.Sprintf("tourism_report_%s.xlsx", stamp)); err != nil {
			return fmt.Errorf("writing workbook: %w", err)
		}
	}

	return nil
}
