package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"presupuesto/internal/backend"
	"presupuesto/internal/cli"
	"presupuesto/internal/config"
	"presupuesto/internal/console"
	applog "presupuesto/internal/log"
	"presupuesto/internal/services"
)

func main() {
	cli.LoadEnvFile()
	cfg := config.Load()

	// Logs go to stderr so they do not interleave with the views.
	l := applog.New(applog.Config{
		Level:     applog.ParseLevel(cfg.LogLevel),
		Component: applog.ComponentConsole,
		Output:    os.Stderr,
	})
	applog.SetDefault(l)
	logger := l.Logger

	if err := cfg.Validate(); err != nil {
		logger.Error("Configuration validation failed", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	go func() {
		// Unblock the pending read so Run can return.
		<-ctx.Done()
		_ = os.Stdin.Close()
	}()

	backendCfg, err := backend.FromAppConfig(cfg)
	if err != nil {
		logger.Error("Invalid backend configuration", "error", err)
		os.Exit(1)
	}
	res, err := backend.NewFactory(logger).Create(ctx, backendCfg)
	if err != nil {
		logger.Error("Failed to initialize backend", "error", err, "backend", cfg.DataBackend)
		os.Exit(1)
	}
	defer res.Close()

	c := console.New(
		services.NewLedgerService(res.Store, res.Publisher),
		services.NewReportService(res.Store, services.ReportConfig{
			FetchTimeout: cfg.FetchTimeout,
			CardsTTL:     cfg.CardsCacheTTL,
			PageSize:     cfg.PageSize,
		}),
		os.Stdin, os.Stdout,
		console.Options{Logger: logger},
	)
	if err := c.Run(ctx); err != nil && ctx.Err() == nil {
		logger.Error("Console stopped", "error", err)
		os.Exit(1)
	}
}
