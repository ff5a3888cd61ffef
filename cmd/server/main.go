package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"golang.org/x/sync/errgroup"

	httpapi "regform/internal/http"
	"regform/internal/platform/config"
	"regform/internal/platform/httpserver"
	"regform/internal/platform/logger"
	"regform/internal/platform/metrics"
	"regform/internal/registration/handler"
	regmetrics "regform/internal/registration/metrics"
	"regform/internal/registration/service"
	"regform/internal/registration/store"
	"regform/internal/registration/web"
)

// main wires dependencies and owns the process lifecycle: the store is opened
// before the listener starts and closed after the server has drained.
func main() {
	cfg := config.FromEnv()
	log := logger.New(cfg.LogLevel, cfg.LogFormat)

	if err := run(cfg, log); err != nil {
		log.Error("server exited", "error", err)
		os.Exit(1)
	}
}

func run(cfg config.Server, log *slog.Logger) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	st, err := store.Open(ctx, store.Config{Driver: cfg.Store, Path: cfg.DBPath, DSN: cfg.DatabaseURL})
	if err != nil {
		return fmt.Errorf("open store: %w", err)
	}
	defer func() {
		if err := st.Close(); err != nil {
			log.Error("error closing database", "error", err)
			return
		}
		log.Info("database connection closed")
	}()

	reg := prometheus.NewRegistry()
	reg.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	svc := service.New(st,
		service.WithLogger(log),
		service.WithMetrics(regmetrics.New(reg)),
	)
	page, err := web.New(log)
	if err != nil {
		return fmt.Errorf("render page: %w", err)
	}

	router := httpapi.NewRouter(httpapi.Deps{
		Logger:         log,
		Metrics:        metrics.New(reg),
		Gatherer:       reg,
		Health:         st,
		AllowedOrigins: cfg.AllowedOrigins,
		RequestTimeout: cfg.RequestTimeout,
		Modules:        []httpapi.Registrar{page, handler.New(svc, log)},
	})
	srv := httpserver.New(cfg.Addr, router)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("starting regform", "addr", cfg.Addr, "store", cfg.Store)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("listen: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		log.Info("shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})
	return g.Wait()
}
