package services

import (
	"context"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"presupuesto/internal/cache"
	"presupuesto/internal/core"
	"presupuesto/internal/ledger"
	"presupuesto/internal/report"
)

const cardsKey = "cards"

// ReportStore is what the views read from.
type ReportStore interface {
	ledger.TransactionReader
	ledger.CardReader
}

type ReportConfig struct {
	// FetchTimeout bounds every store read (default: 7s)
	FetchTimeout time.Duration
	// CardsTTL is how long the card list stays cached (default: 5m)
	CardsTTL time.Duration
	// PageSize is the ledger page size (default: 20)
	PageSize int
}

func DefaultReportConfig() ReportConfig {
	return ReportConfig{
		FetchTimeout: 7 * time.Second,
		CardsTTL:     5 * time.Minute,
		PageSize:     ledger.DefaultPageSize,
	}
}

// ReportService fetches what each view needs and runs it through the
// aggregation engine. Reads never fail: an unreachable store yields the
// same result as an empty year, and the failure is logged.
type ReportService struct {
	store  ReportStore
	cards  *cache.LRUCache[[]core.Card]
	config ReportConfig
}

func NewReportService(store ReportStore, config ReportConfig) *ReportService {
	def := DefaultReportConfig()
	if config.FetchTimeout <= 0 {
		config.FetchTimeout = def.FetchTimeout
	}
	if config.CardsTTL <= 0 {
		config.CardsTTL = def.CardsTTL
	}
	if config.PageSize <= 0 {
		config.PageSize = def.PageSize
	}
	return &ReportService{
		store:  store,
		cards:  cache.NewLRUCache[[]core.Card](1, config.CardsTTL),
		config: config,
	}
}

// CardCache exposes the card cache so it can be swept periodically.
func (s *ReportService) CardCache() cache.Cleaner {
	return s.cards
}

// InvalidateCards forces the next read to go to the store.
func (s *ReportService) InvalidateCards() {
	s.cards.Delete(cardsKey)
}

func (s *ReportService) yearRows(ctx context.Context, year int) []core.Transaction {
	ctx, cancel := context.WithTimeout(ctx, s.config.FetchTimeout)
	defer cancel()

	rows, err := s.store.ListTransactions(ctx, ledger.Query{Year: year})
	if err != nil {
		slog.ErrorContext(ctx, "Failed to fetch transactions, showing no data", "year", year, "error", err)
		return nil
	}
	return rows
}

func (s *ReportService) cardList(ctx context.Context) []core.Card {
	if cards, ok := s.cards.Get(cardsKey); ok {
		return cards
	}

	ctx, cancel := context.WithTimeout(ctx, s.config.FetchTimeout)
	defer cancel()

	cards, err := s.store.ListCards(ctx)
	if err != nil {
		slog.ErrorContext(ctx, "Failed to fetch cards, showing no data", "error", err)
		return nil
	}
	s.cards.Set(cardsKey, cards)
	return cards
}

// Dashboard returns the dashboard for year with month as the reporting
// month.
func (s *ReportService) Dashboard(ctx context.Context, year, month int) report.Dashboard {
	return report.BuildDashboard(year, month, s.yearRows(ctx, year))
}

// Ledger returns page n of the filtered ledger.
func (s *ReportService) Ledger(ctx context.Context, year int, f ledger.Filter, n int) ledger.Page {
	ctx, cancel := context.WithTimeout(ctx, s.config.FetchTimeout)
	defer cancel()

	page, err := ledger.FetchPage(ctx, s.store, year, f, n, s.config.PageSize)
	if err != nil {
		slog.ErrorContext(ctx, "Failed to fetch ledger page, showing no data",
			"year", year, "page", n, "error", err)
		return ledger.Page{Number: page.Number, Size: page.Size, HasPrev: page.Number > 0}
	}
	return page
}

// Cards reads the year and the card list concurrently.
func (s *ReportService) Cards(ctx context.Context, year int) report.CardReport {
	var (
		rows  []core.Transaction
		cards []core.Card
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		rows = s.yearRows(gctx, year)
		return nil
	})
	g.Go(func() error {
		cards = s.cardList(gctx)
		return nil
	})
	_ = g.Wait()
	return report.CardUtilization(rows, cards)
}

func (s *ReportService) Comparison(ctx context.Context, year int) report.Comparison {
	return report.BuildComparison(s.yearRows(ctx, year))
}

func (s *ReportService) Annual(ctx context.Context, year int) report.Annual {
	return report.BuildAnnual(year, s.yearRows(ctx, year))
}
