package app

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	"thrive/internal/config"
	apierrors "thrive/internal/errors"
	"thrive/internal/files"
	"thrive/internal/infrastructure"
	customMiddleware "thrive/internal/middleware"
	"thrive/internal/store"
	handlers "thrive/internal/transport/http"
)

// Application represents the main application container
type Application struct {
	Config  *config.Config
	Router  *chi.Mux
	Server  *http.Server
	Store   *store.Store
	Metrics *infrastructure.Metrics
	Logger  *slog.Logger
}

// NewApplication creates a new application instance with dependency injection
func NewApplication() (*Application, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}

	logger, err := infrastructure.InitializeLogger(cfg.Logging)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize logger: %w", err)
	}

	logger.Info("application starting",
		slog.String("name", config.AppName),
		slog.String("version", config.AppVersion),
		slog.String("inbox", cfg.Paths.InboxDir))

	if err := os.MkdirAll(cfg.Paths.InboxDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create inbox directory: %w", err)
	}

	app := &Application{
		Config:  cfg,
		Logger:  logger,
		Metrics: infrastructure.NewMetrics(),
	}

	app.Store = store.New(files.NewDiscovery(cfg.Paths.InboxDir), logger, app.Metrics)

	app.setupRouter()
	app.createServer()

	return app, nil
}

// setupRouter configures the HTTP router with all routes
func (a *Application) setupRouter() {
	r := chi.NewRouter()

	// Middleware ordering: RequestID -> RealIP -> Logger -> Recoverer
	r.Use(customMiddleware.RequestID)
	r.Use(customMiddleware.RealIP)
	r.Use(customMiddleware.StructuredLogger(a.Logger))
	r.Use(customMiddleware.Recoverer(a.Logger))
	r.Use(customMiddleware.SecurityHeaders)
	r.Use(customMiddleware.Compress(5))

	if a.Config.Security.EnableCORS {
		r.Use(customMiddleware.CORS(customMiddleware.CORSConfig{
			AllowedOrigins: a.Config.Security.AllowedOrigins,
			ExposedHeaders: []string{"X-Request-ID"},
			Logger:         a.Logger,
		}))
	}

	if a.Config.Security.RateLimit.Enabled {
		r.Use(customMiddleware.NewRateLimiter(
			a.Config.Security.RateLimit.RPS,
			a.Config.Security.RateLimit.Burst,
			a.Logger,
		).Handler)
	}

	errorHandler := apierrors.NewErrorHandler(a.Logger, false)

	r.Route("/api", func(r chi.Router) {
		r.Use(render.SetContentType(render.ContentTypeJSON))
		r.Use(customMiddleware.Timeout(a.Config.Server.ReadTimeout, a.Logger))

		healthHandler := handlers.NewHealthHandler(a.Store, a.Logger)
		r.Get("/health", healthHandler.HealthCheck)
		r.Get("/health/ready", healthHandler.ReadinessCheck)

		dataHandler := handlers.NewDataHandler(a.Store, a.Logger, errorHandler)
		r.Mount("/data", dataHandler.Routes())

		datasetHandler := handlers.NewDatasetHandler(a.Store, a.Logger, errorHandler)
		r.Mount("/dataset", datasetHandler.Routes())
	})

	r.NotFound(errorHandler.NotFound)
	r.MethodNotAllowed(errorHandler.MethodNotAllowed)

	// Prometheus metrics outside the API middleware stack
	r.Handle("/metrics", a.Metrics.Handler())

	a.Router = r
}

// createServer creates the HTTP server
func (a *Application) createServer() {
	a.Server = &http.Server{
		Addr:         fmt.Sprintf(":%d", a.Config.Server.Port),
		Handler:      a.Router,
		ReadTimeout:  a.Config.Server.ReadTimeout,
		WriteTimeout: a.Config.Server.WriteTimeout,
		IdleTimeout:  a.Config.Server.IdleTimeout,
	}
}

// Start starts the HTTP server and kicks off the initial dataset load
// in the background. The server answers immediately; queries return
// 503 until the first snapshot is published.
func (a *Application) Start(ctx context.Context, cancel context.CancelFunc) error {
	a.Logger.InfoContext(ctx, "starting server",
		slog.Int("port", a.Config.Server.Port),
		slog.String("level", a.Config.Logging.Level))

	go func() {
		loadCtx := infrastructure.EnsureTraceID(context.Background())
		start := time.Now()
		if err := a.Store.Load(loadCtx); err != nil {
			a.Logger.ErrorContext(loadCtx, "initial dataset load failed",
				slog.String("error", err.Error()))
			return
		}
		status := a.Store.GetStatus()
		a.Logger.InfoContext(loadCtx, "initial dataset load finished",
			slog.Int("rows", status.RowCount),
			slog.Int("files", status.FilesMerged),
			slog.Duration("duration", time.Since(start)))
	}()

	go func() {
		if err := a.Server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			a.Logger.ErrorContext(ctx, "server error", slog.String("error", err.Error()))
			cancel()
		}
	}()

	a.Logger.InfoContext(ctx, "server started",
		slog.String("address", fmt.Sprintf("http://localhost:%d", a.Config.Server.Port)))
	return nil
}

// Stop gracefully stops the application
func (a *Application) Stop(ctx context.Context) error {
	a.Logger.InfoContext(ctx, "shutting down")

	shutdownCtx, cancel := context.WithTimeout(ctx, a.Config.Server.ShutdownTimeout)
	defer cancel()

	if err := a.Server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown error: %w", err)
	}

	if err := infrastructure.CloseLogFile(); err != nil {
		a.Logger.WarnContext(ctx, "failed to close log file", slog.String("error", err.Error()))
	}

	a.Logger.InfoContext(ctx, "shutdown complete")
	return nil
}

// Run runs the application until interrupted
func (a *Application) Run() error {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	if err := a.Start(ctx, cancel); err != nil {
		return err
	}

	select {
	case <-sigChan:
		a.Logger.InfoContext(ctx, "received interrupt signal")
	case <-ctx.Done():
	}

	return a.Stop(context.Background())
}
