package main

import (
	"context"
	"errors"
	"html/template"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"
	_ "time/tzdata"
)

const sessionCleanupInterval = time.Hour

type Blog struct {
	store     *Store
	cfg       Config
	logger    *slog.Logger
	templates map[string]*template.Template
}

func NewBlog(store *Store, cfg Config, logger *slog.Logger) *Blog {
	return &Blog{
		store:     store,
		cfg:       cfg,
		logger:    logger,
		templates: loadTemplates(cfg.Location()),
	}
}

// Routes returns the application's handler with middleware applied.
func (b *Blog) Routes() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /{$}", b.requireAuth(b.Index))
	mux.HandleFunc("GET /create", b.requireAuth(b.Create))
	mux.HandleFunc("POST /create", b.requireAuth(b.Create))
	mux.HandleFunc("GET /{id}/update", b.requireAuth(b.Update))
	mux.HandleFunc("POST /{id}/update", b.requireAuth(b.Update))
	mux.HandleFunc("GET /{id}/delete", b.requireAuth(b.Delete))
	mux.HandleFunc("POST /{id}/delete", b.requireAuth(b.Delete))
	mux.HandleFunc("GET /healthz", b.Healthz)

	if b.cfg.AuthEnabled {
		mux.HandleFunc("GET /signup", b.Signup)
		mux.HandleFunc("POST /signup", b.Signup)
		mux.HandleFunc("GET /login", b.Login)
		mux.HandleFunc("POST /login", b.Login)
		mux.HandleFunc("POST /logout", b.requireAuth(b.Logout))
	}

	return recoverer(b.logger, requestLogger(b.logger, mux))
}

func main() {
	if err := run(); err != nil {
		slog.Error("blog stopped", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := LoadConfig()
	if err != nil {
		return err
	}
	logger := newLogger(os.Stderr, cfg)
	slog.SetDefault(logger)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := openDB(cfg.Database)
	if err != nil {
		return err
	}
	defer db.Close()

	if err = initDB(db); err != nil {
		return err
	}

	store := NewStore(db, logger)

	if cfg.Seed {
		if err = seedDB(ctx, store); err != nil {
			return err
		}
	}

	if cfg.AuthEnabled {
		if _, err := store.CleanupExpiredSessions(ctx); err != nil {
			logger.Warn("cleaning up expired sessions", "error", err)
		}
		go cleanupSessionsEvery(ctx, store, sessionCleanupInterval)
	} else {
		logger.Warn("authentication disabled, all routes are public")
	}

	blog := NewBlog(store, cfg, logger)

	srv := &http.Server{
		Addr:              cfg.Addr,
		Handler:           blog.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errc := make(chan error, 1)
	go func() {
		logger.Info("server starting", "addr", cfg.Addr, "database", cfg.Database, "auth", cfg.AuthEnabled)
		errc <- srv.ListenAndServe()
	}()

	select {
	case err := <-errc:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
