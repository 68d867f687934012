package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"tourinsights/internal/config"
	"tourinsights/internal/dataset"
	"tourinsights/internal/forecast"
	"tourinsights/internal/infrastructure"
	"tourinsights/internal/insight"
	"tourinsights/internal/report"
	"tourinsights/internal/services"
	"tourinsights/internal/store"
	"tourinsights/internal/synthetic"
	transport "tourinsights/internal/transport/http"
)

// Version is set at compile time via -ldflags
var Version = "dev"

// Application is the wired server container
type Application struct {
	Config        *config.Config
	Logger        *slog.Logger
	Store         *store.Store
	ReportService *services.ReportService
	Server        *http.Server
}

// NewApplication builds the full dependency graph from configuration
func NewApplication(ctx context.Context) (*Application, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("loading configuration: %w", err)
	}

	logger, err := infrastructure.InitializeLogger(cfg.Logging)
	if err != nil {
		return nil, fmt.Errorf("initializing logger: %w", err)
	}
	slog.SetDefault(logger)

	a := &Application{
		Config: cfg,
		Logger: logger,
	}

	loaderOpts := []dataset.LoaderOption{dataset.WithCSVPaths(cfg.Paths.CSVPaths)}
	if cfg.Database.Enabled() {
		st, err := store.Open(ctx, cfg.Database, logger)
		if err != nil {
			return nil, fmt.Errorf("opening store: %w", err)
		}
		a.Store = st
		loaderOpts = append(loaderOpts, dataset.WithSource(st))
	} else {
		logger.Info("database disabled, using CSV sources only")
	}

	source := synthetic.NewSource(cfg.Analytics.SyntheticSeed)
	loader := dataset.NewLoader(logger, loaderOpts...)
	engine := forecast.NewEngine(forecast.ParamsFromConfig(cfg.Analytics), source, logger)
	generator, err := insight.NewGenerator(engine.Params(), source, logger)
	if err != nil {
		return nil, fmt.Errorf("loading department profiles: %w", err)
	}
	assembler := report.NewAssembler(cfg.Analytics, logger)

	svcOpts := []services.ReportServiceOption{}
	if a.Store != nil {
		svcOpts = append(svcOpts, services.WithStore(a.Store))
	}
	a.ReportService = services.NewReportService(loader, engine, generator, assembler, cfg.Analytics, logger, svcOpts...)

	var database transport.Pinger
	if a.Store != nil {
		database = a.Store
	}
	router := transport.NewRouter(transport.RouterDeps{
		ReportService: a.ReportService,
		Database:      database,
		Version:       Version,
		RateLimit:     cfg.Security.RateLimit,
		Logger:        logger,
	})

	a.Server = &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Server.Port),
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	return a, nil
}

// Start begins serving. The server failing signals shutdown through cancel.
func (a *Application) Start(ctx context.Context, cancel context.CancelFunc) {
	a.Logger.InfoContext(ctx, "starting insights server",
		slog.String("version", Version),
		slog.Int("port", a.Config.Server.Port),
		slog.Bool("database", a.Store != nil))

	go func() {
		if err := a.Server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			a.Logger.ErrorContext(ctx, "server error", slog.String("error", err.Error()))
			cancel()
		}
	}()
}

// Stop gracefully stops the server and releases resources
func (a *Application) Stop(ctx context.Context) error {
	a.Logger.InfoContext(ctx, "shutting down")

	shutdownCtx, cancel := context.WithTimeout(ctx, a.Config.Server.ShutdownTimeout)
	defer cancel()

	if err := a.Server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown error: %w", err)
	}

	if a.Store != nil {
		a.Store.Close()
	}

	a.Logger.InfoContext(ctx, "shutdown complete")
	return nil
}

// Run serves until interrupted, then shuts down gracefully
func (a *Application) Run() error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	a.Start(ctx, cancel)

	select {
	case sig := <-sigChan:
		a.Logger.InfoContext(ctx, "received signal", slog.String("signal", sig.String()))
	case <-ctx.Done():
	}

	return a.Stop(context.Background())
}
