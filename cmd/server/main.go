package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"usermgmt/internal/app"
	"usermgmt/internal/platform/config"
	"usermgmt/internal/platform/logger"
)

// main wires configuration and logging, starts the person service in the
// background and blocks until an interrupt, then shuts down cooperatively.
func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.FromEnv()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	log := logger.New(cfg.LogFormat, cfg.LogLevel)

	a, err := app.New(cfg, log)
	if err != nil {
		return fmt.Errorf("build app: %w", err)
	}
	if err := a.Start(); err != nil {
		return fmt.Errorf("start: %w", err)
	}
	log.Info("usermgmt listening",
		"addr", a.Addr(),
		"metrics_addr", a.MetricsAddr(),
		"strict_validation", cfg.StrictValidation,
	)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	<-ctx.Done()

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()
	if err := a.Stop(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}
	log.Info("usermgmt stopped")
	return nil
}
