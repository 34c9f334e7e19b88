// Package internal provides the main application initialization and runtime logic.
package internal

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/errgroup"

	"github.com/starford/cookhub/internal/analytics"
	"github.com/starford/cookhub/internal/api"
	"github.com/starford/cookhub/internal/hubservice"
	"github.com/starford/cookhub/internal/mcpserver"
	"github.com/starford/cookhub/internal/source"
	"github.com/starford/cookhub/internal/sse"
)

// redisStreamMaxLen caps the access stream length (approximate trimming).
const redisStreamMaxLen = 100_000

// Run starts the HTTP gateway with the given options.
func Run(ctx context.Context, opts ...Option) error {
	app, err := newApplication(opts)
	if err != nil {
		return err
	}
	cfg := app.config

	// Initialize structured JSON logger.
	logger := newLogger(os.Stdout, cfg.App.LogLevel)
	slog.SetDefault(logger)

	logger.Info("Configuration loaded",
		slog.String("http_address", cfg.App.HTTP.Address()),
		slog.String("source_kind", cfg.Source.Kind),
		slog.String("source_repo", cfg.Source.Repo),
		slog.String("catalog_group", cfg.Hub.CatalogGroup),
		slog.String("analytics_driver", cfg.Analytics.Driver),
		slog.String("log_level", cfg.App.LogLevel.String()))

	svc, err := newService(cfg, logger)
	if err != nil {
		return err
	}

	// Analytics backend.
	store, closeStore, err := openSink(ctx, cfg.Analytics)
	if err != nil {
		return fmt.Errorf("init analytics: %w", err)
	}
	defer func() {
		if err := closeStore(); err != nil {
			logger.Warn("analytics close failed", slog.String("error", err.Error()))
		}
	}()

	// Live feed.
	var broker *sse.Broker
	sink := store
	if cfg.Analytics.LiveFeed {
		broker = sse.NewBroker(2 * time.Second)
		defer broker.Close()
		sink = analytics.Multi{store, broker}
	}

	recorder := analytics.NewRecorder(sink, cfg.Analytics.QueueSize, logger)

	httpServer := &http.Server{
		Addr:              cfg.App.HTTP.Address(),
		Handler:           newHTTPHandler(svc, recorder, broker),
		ReadHeaderTimeout: 10 * time.Second,
	}

	logger.Info("Server starting...", slog.String("http_address", cfg.App.HTTP.Address()))

	runCtx, cancel := context.WithCancel(ctx)
	defer cancel()
	g, gCtx := errgroup.WithContext(runCtx)

	// Drain access events until shutdown.
	g.Go(func() error {
		return recorder.Run(gCtx)
	})

	// Start HTTP server.
	g.Go(func() error {
		logger.Info("Starting HTTP server", slog.String("address", cfg.App.HTTP.Address()))
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("HTTP server error: %w", err)
		}
		return nil
	})

	// Handle shutdown signals.
	g.Go(func() error {
		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		defer signal.Stop(quit)

		select {
		case sig := <-quit:
			logger.Info("Received shutdown signal", slog.String("signal", sig.String()))
		case <-gCtx.Done():
			logger.Info("Context cancelled, initiating shutdown")
		}

		logger.Info("Shutting down server...")

		// Open SSE streams end when the broker closes.
		if broker != nil {
			broker.Close()
		}

		shutdownCtx, cancelShutdown := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancelShutdown()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Error("HTTP server shutdown error", slog.String("error", err.Error()))
		}

		// Stops the recorder after in-flight handlers have enqueued.
		cancel()
		return nil
	})

	if err := g.Wait(); err != nil {
		logger.Error("Application error", slog.String("error", err.Error()))
		return err
	}

	if n := recorder.Dropped(); n > 0 {
		logger.Warn("access events dropped", slog.Int64("count", n))
	}
	logger.Info("Server stopped successfully")
	return nil
}

// RunMCP serves the hub tools over stdio. Logs go to stderr since stdout
// carries the protocol.
func RunMCP(_ context.Context, opts ...Option) error {
	app, err := newApplication(opts)
	if err != nil {
		return err
	}
	cfg := app.config

	logger := newLogger(os.Stderr, cfg.App.LogLevel)
	slog.SetDefault(logger)

	svc, err := newService(cfg, logger)
	if err != nil {
		return err
	}

	logger.Info("MCP server starting", slog.String("default_branch", cfg.Hub.DefaultBranch))
	return mcpserver.New(svc, cfg.Hub.DefaultBranch).ServeStdio()
}

func newApplication(opts []Option) (*application, error) {
	app := &application{}
	for _, opt := range opts {
		opt(app)
	}
	if app.config == nil {
		return nil, fmt.Errorf("config is required")
	}
	return app, nil
}

func newLogger(w io.Writer, level slog.Level) *slog.Logger {
	return slog.New(slog.NewJSONHandler(w, &slog.HandlerOptions{
		Level: level,
	}))
}

// newService builds the content source and the hub service on top of it.
func newService(cfg *Config, logger *slog.Logger) (*hubservice.Service, error) {
	src, err := newSource(cfg.Source)
	if err != nil {
		return nil, fmt.Errorf("init source: %w", err)
	}
	return hubservice.NewService(src, hubservice.Options{
		ManifestPath: cfg.Source.ManifestPath,
		ContentDir:   cfg.Source.ContentDir,
		CatalogGroup: cfg.Hub.CatalogGroup,
	}, logger), nil
}

func newSource(cfg SourceConfig) (source.Provider, error) {
	switch cfg.Kind {
	case SourceLocal:
		return source.NewLocal(cfg.LocalRoot)
	case SourceGitHub, "":
		return source.NewGitHub(cfg.BaseURL, cfg.Repo, cfg.Timeout), nil
	default:
		return nil, fmt.Errorf("unknown source kind %q", cfg.Kind)
	}
}

// openSink opens the configured analytics backend and returns its closer.
func openSink(ctx context.Context, cfg AnalyticsConfig) (analytics.Sink, func() error, error) {
	noop := func() error { return nil }

	switch cfg.Driver {
	case DriverSQLite:
		db, err := analytics.OpenSQLite(cfg.DSN)
		if err != nil {
			return nil, nil, err
		}
		return db, db.Close, nil
	case DriverPostgres:
		db, err := analytics.OpenPostgres(ctx, cfg.DSN)
		if err != nil {
			return nil, nil, err
		}
		return db, db.Close, nil
	case DriverRedis:
		client := redis.NewClient(&redis.Options{Addr: cfg.DSN})
		if err := client.Ping(ctx).Err(); err != nil {
			_ = client.Close()
			return nil, nil, fmt.Errorf("redis ping: %w", err)
		}
		return analytics.NewRedisStream(client, cfg.Stream, redisStreamMaxLen), client.Close, nil
	case DriverNone, "":
		return analytics.Nop{}, noop, nil
	default:
		return nil, nil, fmt.Errorf("unknown analytics driver %q", cfg.Driver)
	}
}

// newHTTPHandler assembles middleware, health checks and the API routes.
// broker may be nil when the live feed is disabled.
func newHTTPHandler(svc *hubservice.Service, events api.EventRecorder, broker *sse.Broker) http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)

	r.NotFound(api.NotFound)
	r.MethodNotAllowed(api.NotFound)

	// Health check endpoints.
	r.Get("/health/live", healthOK)
	r.Get("/health/ready", healthReady(broker))

	var feed http.Handler
	if broker != nil {
		feed = broker
	}

	// Mount API routes under /api.
	r.Mount("/api", api.NewRouter(svc, events, feed))

	return r
}

// healthReady reports readiness and, with the live feed on, its client count.
func healthReady(broker *sse.Broker) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		if broker == nil {
			healthOK(w, nil)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = fmt.Fprintf(w, `{"status":"ok","feed_clients":%d}`, broker.ClientCount())
	}
}

func healthOK(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(`{"status":"ok"}`))
}
