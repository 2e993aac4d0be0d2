package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httplog/v3"
	"github.com/go-chi/render"

	"workpulse/internal/config"
	"workpulse/internal/dataprocessing"
	apierrors "workpulse/internal/errors"
	"workpulse/internal/exporter"
	"workpulse/internal/infrastructure"
	customMiddleware "workpulse/internal/middleware"
	"workpulse/internal/services"
	handlers "workpulse/internal/transport/http"
	"workpulse/pkg/contracts"
)

const AppName = "WorkPulse - Employee Productivity Analysis"

// multipartOverhead is the slack allowed above the upload limit for
// multipart framing. Files slightly over the limit reach the service and get
// a validation error; anything larger is cut off with 413.
const multipartOverhead = 1 << 20

// Application represents the main application container
type Application struct {
	Config        *config.Config
	Router        *chi.Mux
	Server        *http.Server
	Logger        *slog.Logger
	Services      *ServiceContainer
	OTelProviders *infrastructure.OTelProviders
	Metrics       *infrastructure.BusinessMetrics
	ErrorHandler  *apierrors.ErrorHandler
}

// ServiceContainer holds all application services
type ServiceContainer struct {
	Productivity *services.ProductivityService
	Health       *services.HealthService
}

// NewApplication loads configuration from the environment and builds the
// application around the shared infrastructure logger.
func NewApplication() (*Application, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	logger, err := infrastructure.InitializeLogger(cfg.Logging)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	return New(cfg, logger)
}

// New builds an application from an explicit configuration
func New(cfg *config.Config, logger *slog.Logger) (*Application, error) {
	if cfg == nil {
		return nil, errors.New("configuration is required")
	}
	if logger == nil {
		logger = slog.Default()
	}

	logger.Info("Application starting",
		slog.String("name", AppName),
		slog.String("version", contracts.Version),
		slog.String("addr", cfg.Server.Addr()))

	otelProviders, err := infrastructure.InitializeOTel(cfg.Telemetry, contracts.Version, logger)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize OpenTelemetry: %w", err)
	}

	metrics, err := infrastructure.CreateBusinessMetrics(otelProviders.Meter)
	if err != nil {
		return nil, fmt.Errorf("failed to create business metrics: %w", err)
	}

	app := &Application{
		Config:        cfg,
		Logger:        logger,
		OTelProviders: otelProviders,
		Metrics:       metrics,
		ErrorHandler:  apierrors.NewErrorHandler(logger, cfg.Logging.Development),
	}

	if err := app.initializeServices(context.Background()); err != nil {
		return nil, fmt.Errorf("failed to initialize services: %w", err)
	}

	app.setupRouter()
	app.createServer()

	return app, nil
}

// initializeServices wires the analysis pipeline and its optional sources
func (a *Application) initializeServices(ctx context.Context) error {
	deps := services.ProductivityDeps{
		Metrics: a.Metrics,
		Logger:  a.Logger,
	}

	var sheetsErr error
	if a.Config.Sheets.Enabled() {
		source, err := a.newSheetsSource(ctx)
		if err != nil {
			sheetsErr = err
			a.Logger.Warn("Google Sheets source unavailable", slog.String("error", err.Error()))
		} else {
			deps.Sheets = source
		}
	}

	pdf := exporter.NewPDFRenderer(a.Config.Report.ChromePath, a.Config.Report.PDFTimeout, a.Logger)
	if err := pdf.Available(); err != nil {
		a.Logger.Warn("PDF export will fail until Chrome is installed", slog.String("error", err.Error()))
	}
	deps.PDF = pdf

	productivityService, err := services.NewProductivityService(a.Config, deps)
	if err != nil {
		return err
	}

	health := services.NewHealthService(contracts.Build(), a.Logger)
	health.AddCheck("calculator", func(context.Context) error {
		return productivityService.Policy().Validate()
	}, true)
	health.AddCheck("pdf", func(context.Context) error {
		return pdf.Available()
	}, false)
	switch {
	case !a.Config.Sheets.Enabled():
		health.AddDisabled("sheets")
	case sheetsErr != nil:
		health.AddCheck("sheets", func(context.Context) error { return sheetsErr }, false)
	default:
		health.AddCheck("sheets", func(context.Context) error { return nil }, false)
	}

	a.Services = &ServiceContainer{
		Productivity: productivityService,
		Health:       health,
	}

	return nil
}

func (a *Application) newSheetsSource(ctx context.Context) (*dataprocessing.SheetsSource, error) {
	opts, err := dataprocessing.SheetsClientOptions(a.Config.Sheets.CredentialsFile, a.Config.Sheets.APIKey)
	if err != nil {
		return nil, err
	}
	return dataprocessing.NewSheetsSource(ctx, a.Logger, a.Config.Sheets.DefaultRange, opts...)
}

// setupRouter configures the HTTP router with all routes and middleware
func (a *Application) setupRouter() {
	r := chi.NewRouter()

	// Core middleware stack, order matters
	r.Use(customMiddleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(customMiddleware.NewOTelMiddleware(a.OTelProviders, a.Metrics).Handler)
	r.Use(httplog.RequestLogger(a.Logger, &httplog.Options{
		Level:  slog.LevelInfo,
		Schema: httplog.SchemaECS,
	}))
	r.Use(apierrors.RecoveryMiddleware(a.ErrorHandler))
	r.Use(customMiddleware.SecurityHeaders)

	if a.Config.Security.EnableCORS {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins:   a.Config.Security.AllowedOrigins,
			AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
			AllowedHeaders:   []string{"Accept", "Content-Type", "X-Request-ID"},
			ExposedHeaders:   []string{"Content-Disposition", "X-Request-ID"},
			AllowCredentials: false,
			MaxAge:           300,
		}))
	}

	if a.Config.Security.RateLimit.Enabled {
		limiter := customMiddleware.NewRateLimiter(
			a.Config.Security.RateLimit.RPS,
			a.Config.Security.RateLimit.Burst,
			a.Logger,
		)
		r.Use(limiter.Handler)
	}

	r.NotFound(a.ErrorHandler.NotFound)
	r.MethodNotAllowed(a.ErrorHandler.MethodNotAllowed)

	healthHandler := handlers.NewHealthHandler(a.Services.Health, a.Logger)
	r.Get("/health", healthHandler.HealthCheck)
	r.Handle("/metrics", handlers.NewMetricsHandler(a.OTelProviders.PrometheusHTTP, a.ErrorHandler))

	a.setupAPIRoutes(r, healthHandler)

	a.Router = r
}

// setupAPIRoutes configures the /api routes
func (a *Application) setupAPIRoutes(r chi.Router, healthHandler *handlers.HealthHandler) {
	r.Route("/api", func(r chi.Router) {
		r.Use(render.SetContentType(render.ContentTypeJSON))
		r.Use(customMiddleware.Timeout(a.Config.Server.RequestTimeout, a.Logger))

		healthHandler.RegisterRoutes(r)

		r.Group(func(r chi.Router) {
			r.Use(customMiddleware.MaxBodySize(a.Config.Upload.MaxSizeBytes + multipartOverhead))

			productivityHandler := handlers.NewProductivityHandler(a.Services.Productivity, a.Logger, a.ErrorHandler)
			productivityHandler.RegisterRoutes(r)
		})
	})
}

// createServer creates the HTTP server
func (a *Application) createServer() {
	a.Server = &http.Server{
		Addr:           a.Config.Server.Addr(),
		Handler:        a.Router,
		ReadTimeout:    a.Config.Server.ReadTimeout,
		WriteTimeout:   a.Config.Server.WriteTimeout,
		IdleTimeout:    a.Config.Server.IdleTimeout,
		MaxHeaderBytes: a.Config.Server.MaxHeaderBytes,
	}
}

// Start starts the application. A listen failure cancels ctx through cancel.
func (a *Application) Start(ctx context.Context, cancel context.CancelFunc) error {
	a.Logger.InfoContext(ctx, "Starting HTTP server", slog.String("addr", a.Server.Addr))

	go func() {
		if err := a.Server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			a.Logger.ErrorContext(ctx, "HTTP server error", slog.String("error", err.Error()))
			cancel()
		}
	}()

	return nil
}

// Stop gracefully stops the application
func (a *Application) Stop(ctx context.Context) error {
	a.Logger.InfoContext(ctx, "Shutting down application")

	shutdownCtx, cancel := context.WithTimeout(ctx, a.Config.Server.ShutdownTimeout)
	defer cancel()

	var errs []error
	if err := a.Server.Shutdown(shutdownCtx); err != nil {
		errs = append(errs, fmt.Errorf("server shutdown: %w", err))
	}

	if a.OTelProviders != nil {
		if err := a.OTelProviders.Shutdown(shutdownCtx); err != nil {
			errs = append(errs, fmt.Errorf("telemetry shutdown: %w", err))
		}
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}

	a.Logger.InfoContext(ctx, "Application stopped gracefully")
	return nil
}

// Run starts the application and blocks until SIGINT or SIGTERM
func (a *Application) Run() error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := a.Start(ctx, cancel); err != nil {
		return fmt.Errorf("failed to start application: %w", err)
	}

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	select {
	case sig := <-sigChan:
		a.Logger.Info("Received shutdown signal", slog.String("signal", sig.String()))
	case <-ctx.Done():
		a.Logger.Info("Context cancelled, shutting down")
	}

	stopCtx, stopCancel := context.WithTimeout(context.Background(), a.Config.Server.ShutdownTimeout+5*time.Second)
	defer stopCancel()

	return a.Stop(stopCtx)
}
