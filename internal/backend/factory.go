package backend

import (
	"context"
	"fmt"
	"log/slog"

	"presupuesto/internal/amqp"
	"presupuesto/internal/ledger/memory"
	"presupuesto/internal/ledger/sheets"
	"presupuesto/internal/ledger/supabase"
	"presupuesto/internal/storage"
)

// Factory builds backends.
type Factory struct {
	logger *slog.Logger
}

func NewFactory(logger *slog.Logger) *Factory {
	if logger == nil {
		logger = slog.Default()
	}
	return &Factory{logger: logger}
}

// Create opens the backend described by cfg.
func (f *Factory) Create(ctx context.Context, cfg Config) (*Result, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	switch cfg.Type {
	case SQLite:
		return f.createSQLite(cfg)
	case Sheets:
		return f.createSheets(ctx, cfg)
	case Supabase:
		return f.createSupabase(cfg)
	default:
		return f.createMemory(cfg), nil
	}
}

func (f *Factory) createSQLite(cfg Config) (*Result, error) {
	repo, err := storage.NewSQLiteRepository(cfg.SQLiteDBPath)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize SQLite repository: %w", err)
	}

	res := &Result{Type: SQLite, Store: repo, Ready: repo.Ping}
	var client *amqp.Client
	if cfg.AMQPURL != "" {
		client, err = amqp.NewClient(cfg.AMQPURL, cfg.AMQPExchange, cfg.AMQPQueue)
		if err != nil {
			f.logger.Warn("Failed to initialize AMQP client, continuing without events", "error", err)
		} else {
			res.Publisher = client
			f.logger.Info("Initialized AMQP client",
				"exchange", cfg.AMQPExchange,
				"queue", cfg.AMQPQueue)
		}
	}

	res.Cleanup = func() error {
		if client != nil {
			if err := client.Close(); err != nil {
				f.logger.Warn("Failed to close AMQP client", "error", err)
			}
		}
		return repo.Close()
	}

	f.logger.Info("Initialized SQLite backend",
		"db_path", cfg.SQLiteDBPath,
		"amqp_enabled", client != nil)
	return res, nil
}

func (f *Factory) createSheets(ctx context.Context, cfg Config) (*Result, error) {
	cli, err := sheets.New(ctx, cfg.SheetsConfig())
	if err != nil {
		return nil, fmt.Errorf("failed to initialize Google Sheets client: %w", err)
	}
	f.logger.Info("Initialized Google Sheets backend", "tab", cfg.GoogleSheetName)
	return &Result{Type: Sheets, Store: cli}, nil
}

func (f *Factory) createSupabase(cfg Config) (*Result, error) {
	cli, err := supabase.New(cfg.SupabaseURL, cfg.SupabaseKey, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize Supabase client: %w", err)
	}
	f.logger.Info("Initialized Supabase backend", "url", cfg.SupabaseURL)
	return &Result{Type: Supabase, Store: cli}, nil
}

func (f *Factory) createMemory(cfg Config) *Result {
	dir := cfg.SeedDir
	if dir == "" {
		dir = "data"
	}
	store := memory.NewFromFiles(dir)
	f.logger.Info("Initialized memory backend", "seed_dir", dir)
	return &Result{Type: Memory, Store: store}
}
