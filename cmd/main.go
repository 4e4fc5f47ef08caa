// Command cmd runs a single maintenance pass against the queue store and the
// provider registry, then exits. Useful after a failed deploy or a manual
// Redis restore.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"queuely/internal/config"
	"queuely/internal/logger"
	"queuely/internal/queue"
	"queuely/internal/registry"
	"queuely/internal/storage"
)

func main() {
	dispatch := flag.Bool("dispatch", false, "also dispatch the oldest full block of every auto-dispatch queue")
	timeout := flag.Duration("timeout", 5*time.Minute, "deadline for the whole pass")
	flag.Parse()

	if err := config.LoadEnvFile(); err != nil {
		fmt.Fprintln(os.Stderr, "no .env file, using environment:", err)
	}
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, "invalid configuration:", err)
		os.Exit(1)
	}
	log := logger.New(cfg.Service.LogLevel, cfg.Service.LogFormat).WithComponent("maintenance")

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	if err := run(ctx, cfg, log, *dispatch); err != nil {
		log.Error("maintenance failed", "error", err)
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, log *logger.Logger, dispatch bool) error {
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

	svc := queue.NewService(st, reg, log, queue.Options{CodeAttempts: cfg.Store.CodeAttempts})

	report, err := svc.Reconcile(ctx)
	if err != nil {
		return fmt.Errorf("reconcile: %w", err)
	}
	log.Info("reconcile done",
		"registered", report.Registered,
		"orphaned", report.Orphaned,
		"pruned", report.Pruned,
	)

	if dispatch {
		n, err := svc.AutoDispatch(ctx)
		if err != nil {
			return fmt.Errorf("auto-dispatch: %w", err)
		}
		log.Info("auto-dispatch done", "dispatched", n)
	}
	return nil
}
