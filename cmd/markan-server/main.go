package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/spf13/afero"
	"go.uber.org/zap"

	"markan/pkg/config"
	"markan/pkg/handlers"
	"markan/pkg/logging"
	authmw "markan/pkg/middleware"
	"markan/pkg/services"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, "markan-server:", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	logger, err := logging.New(cfg.Log)
	if err != nil {
		return fmt.Errorf("init logger: %w", err)
	}
	defer logger.Sync()

	core, err := services.NewCore(cfg, afero.NewOsFs(), logger, func(dir string) {
		logger.Info("workspace changed on disk", zap.String("dir", dir))
	})
	if err != nil {
		return err
	}
	defer core.Close()

	token := cfg.Server.Token
	if token == "" {
		token = uuid.NewString()
		// The token is the only credential for the local API.
		fmt.Fprintf(os.Stderr, "%s: %s\n", authmw.TokenHeader, token)
	}

	api := handlers.NewAPIHandlers(core.Gateway, core.Workspace, core.AppPaths, logger)
	core.Opener.MarkReady(func(path string) {
		logger.Info("file opened", zap.String("path", path))
	})
	// Files named on the command line are the only external admissions.
	for _, path := range os.Args[1:] {
		core.Opener.Open(path)
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(authmw.RequestLogger(logger.Named("http")))
	r.Use(middleware.Recoverer)

	r.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	r.Route("/api", func(r chi.Router) {
		r.Use(authmw.RequireToken(token))
		api.Routes(r)
	})

	srv := &http.Server{
		Addr:              cfg.Server.Addr,
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		logger.Info("listening", zap.String("addr", cfg.Server.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
	}

	logger.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	return srv.Shutdown(shutdownCtx)
}
