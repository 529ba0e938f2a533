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
	"golang.org/x/sync/errgroup"

	"github.com/starford/inkpress/internal/api"
	"github.com/starford/inkpress/internal/blogservice"
	"github.com/starford/inkpress/internal/content"
	"github.com/starford/inkpress/internal/index"
	"github.com/starford/inkpress/internal/render"
	"github.com/starford/inkpress/internal/sse"
	"github.com/starford/inkpress/internal/storage"
	"github.com/starford/inkpress/internal/tokenize"
)

// newApplication applies opts and fills in the logger and output defaults.
// logOut is where the default JSON logger writes.
func newApplication(logOut io.Writer, opts []Option) (*application, error) {
	app := &application{version: "dev", out: os.Stdout}
	for _, opt := range opts {
		opt(app)
	}
	if app.config == nil {
		return nil, fmt.Errorf("config is required")
	}
	if app.logger == nil {
		app.logger = slog.New(slog.NewJSONHandler(logOut, &slog.HandlerOptions{
			Level: app.config.App.LogLevel,
		}))
	}
	slog.SetDefault(app.logger)
	return app, nil
}

// newService wires storage, renderer, tokenizer and loader into a service.
func (a *application) newService() (*blogservice.Service, error) {
	cfg := a.config

	store, err := storage.NewFS(cfg.Content.Path)
	if err != nil {
		return nil, fmt.Errorf("init storage: %w", err)
	}

	tok, err := newTokenizer(cfg.Search)
	if err != nil {
		return nil, fmt.Errorf("init tokenizer: %w", err)
	}

	renderer := render.NewGoldmark(cfg.Render.Options())
	loader := content.NewLoader(store, renderer, a.logger, cfg.Build.Workers)

	svc, err := blogservice.NewService(store, loader, tok, a.logger, blogservice.Options{
		IndexPath:    cfg.Search.IndexPath,
		DefaultLimit: cfg.Search.DefaultLimit,
		CacheSize:    cfg.Search.CacheSize,
	})
	if err != nil {
		return nil, fmt.Errorf("init service: %w", err)
	}
	return svc, nil
}

func newTokenizer(cfg SearchConfig) (*tokenize.Tokenizer, error) {
	if cfg.Segmenter != SegmenterGse {
		return tokenize.New(), nil
	}
	seg, err := tokenize.NewGseSegmenter()
	if err != nil {
		return nil, err
	}
	if cfg.DictionaryPath != "" {
		if err := seg.LoadUserDictionary(cfg.DictionaryPath); err != nil {
			return nil, err
		}
	}
	return tokenize.New(tokenize.WithSegmenter(seg)), nil
}

// Run starts the HTTP server and the content watcher with the given options.
func Run(ctx context.Context, opts ...Option) error {
	app, err := newApplication(os.Stdout, opts)
	if err != nil {
		return err
	}
	cfg := app.config
	logger := app.logger

	logger.Info("Configuration loaded",
		slog.String("http_address", cfg.App.HTTP.Address()),
		slog.String("content_path", cfg.Content.Path),
		slog.String("index_path", cfg.Search.IndexPath),
		slog.Bool("watch", cfg.Watch.Enabled),
		slog.String("log_level", cfg.App.LogLevel.String()))

	// The watcher needs the root to exist.
	if err := os.MkdirAll(cfg.Content.Path, 0o755); err != nil {
		return fmt.Errorf("create content dir: %w", err)
	}

	svc, err := app.newService()
	if err != nil {
		return err
	}

	// Initial build; fall back to the last saved artifact so search keeps
	// working when the content cannot be read.
	if _, err := svc.Rebuild(ctx); err != nil {
		logger.Warn("initial build failed", slog.String("error", err.Error()))
		if loadErr := svc.LoadArtifact(cfg.Search.IndexPath); loadErr != nil {
			logger.Warn("no saved index available", slog.String("error", loadErr.Error()))
		} else {
			logger.Info("serving saved index", slog.String("path", cfg.Search.IndexPath))
		}
	}

	broker := sse.NewBroker(sse.DefaultThrottle)
	defer broker.Close()

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	api.Mount(r, svc, broker)

	httpServer := &http.Server{
		Addr:              cfg.App.HTTP.Address(),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	logger.Info("Server starting...", slog.String("http_address", cfg.App.HTTP.Address()))

	g, gCtx := errgroup.WithContext(ctx)

	if cfg.Watch.Enabled {
		g.Go(func() error {
			return index.Watch(gCtx, cfg.Content.Path, cfg.Watch.Debounce, logger,
				rebuildAndNotify(svc, broker), broker.PublishContentEvent)
		})
	}

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

		// SSE handlers return once their client channels close; Shutdown
		// would otherwise wait for them until the timeout.
		broker.Close()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			logger.Error("HTTP server shutdown error", slog.String("error", err.Error()))
		}
		return errShutdown
	})

	if err := g.Wait(); err != nil && !errors.Is(err, errShutdown) {
		logger.Error("Application error", slog.String("error", err.Error()))
		return err
	}

	logger.Info("Server stopped successfully")
	return nil
}

// errShutdown cancels the run group once the server has been stopped, so the
// watcher exits too.
var errShutdown = errors.New("shutdown")

// rebuildAndNotify returns the watcher's rebuild hook: it rebuilds the
// service and announces new generations on the broker.
func rebuildAndNotify(svc *blogservice.Service, broker *sse.Broker) index.RebuildFunc {
	return func(ctx context.Context) error {
		rebuilt, err := svc.Rebuild(ctx)
		if err != nil {
			return err
		}
		if rebuilt {
			snap := svc.Snapshot()
			broker.PublishRebuilt(sse.Rebuilt{
				Generation: snap.Generation,
				Posts:      snap.Collection.Len(),
			})
		}
		return nil
	}
}
