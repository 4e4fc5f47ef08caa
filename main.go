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

	"github.com/gin-gonic/gin"

	_ "queuely/docs"
	"queuely/internal/auth"
	"queuely/internal/config"
	"queuely/internal/handlers"
	"queuely/internal/logger"
	"queuely/internal/queue"
	"queuely/internal/registry"
	"queuely/internal/storage"
	"queuely/internal/tasks"
	"queuely/internal/ws"
)

// @title						Queuely API
// @version					1.0
// @description				Virtual waitlists that pack parties into fixed-capacity blocks
// @BasePath					/
// @securityDefinitions.apikey	BearerAuth
// @in							header
// @name						Authorization
func main() {
	if err := config.LoadEnvFile(); err != nil {
		fmt.Fprintln(os.Stderr, "no .env file, using environment:", err)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "invalid configuration:", err)
		os.Exit(1)
	}

	log := logger.New(cfg.Service.LogLevel, cfg.Service.LogFormat)
	if err := run(cfg, log); err != nil {
		log.Error("server stopped", "error", err)
		os.Exit(1)
	}
}

func run(cfg *config.Config, log *logger.Logger) error {
	if !cfg.IsDevelopment() {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	db, err := storage.ConnectDatabase(cfg, log)
	if err != nil {
		return err
	}
	reg := registry.New(db, log)
	if err := reg.Migrate(); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}

	st, closeStore, err := storage.OpenQueueStore(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer closeStore()

	hub := ws.NewHub(log)
	go hub.Run(ctx)

	svc := queue.NewService(st, reg, log, queue.Options{
		CodeAttempts: cfg.Store.CodeAttempts,
		Publisher:    hub,
	})

	sched, err := tasks.NewScheduler(svc, cfg.Tasks, time.Minute, log)
	if err != nil {
		return err
	}
	sched.Start()

	router := handlers.NewRouter(handlers.Deps{
		Service:        svc,
		Registry:       reg,
		Issuer:         auth.NewIssuer(cfg.Auth.AccessSecret, cfg.Auth.RefreshSecret, cfg.Auth.AccessTTL, cfg.Auth.RefreshTTL),
		Hub:            hub,
		Log:            log,
		RequestTimeout: cfg.Service.RequestTimeout,
	})

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Service.Port),
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("http server listening", "addr", srv.Addr, "store", cfg.Store.Backend)
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

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error("http shutdown", "error", err)
	}
	select {
	case <-sched.Stop().Done():
	case <-shutdownCtx.Done():
		log.Warn("background jobs still running at shutdown")
	}
	return nil
}
