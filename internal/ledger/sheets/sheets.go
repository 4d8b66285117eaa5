// Package sheets stores the ledger in a Google spreadsheet: one
// "<year> <base>" tab per year of transactions plus a tab of credit cards.
// Filtering and ordering happen in memory after a range read.
package sheets

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"

	"presupuesto/internal/core"
	"presupuesto/internal/ledger"

	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"
)

type Config struct {
	SpreadsheetID string
	// TransactionsBase is the tab name without the year, e.g. "Transactions".
	TransactionsBase   string
	CardsSheet         string
	ServiceAccountJSON string
	ServiceAccountFile string
}

type Client struct {
	svc           *gsheet.Service
	spreadsheetID string
	txBase        string
	cardsSheet    string
}

var _ ledger.Store = (*Client)(nil)

// New creates a Sheets client authenticated with a service account.
func New(ctx context.Context, cfg Config) (*Client, error) {
	if strings.TrimSpace(cfg.SpreadsheetID) == "" {
		return nil, errors.New("missing GOOGLE_SPREADSHEET_ID")
	}
	svc, err := newSheetsService(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("sheets service: %w", err)
	}
	return NewWithService(svc, cfg), nil
}

// NewWithService wraps an existing service, e.g. one pointed at a test
// endpoint.
func NewWithService(svc *gsheet.Service, cfg Config) *Client {
	base := strings.TrimSpace(cfg.TransactionsBase)
	if base == "" {
		base = "Transactions"
	}
	cards := strings.TrimSpace(cfg.CardsSheet)
	if cards == "" {
		cards = "Tarjetas"
	}
	return &Client{svc: svc, spreadsheetID: cfg.SpreadsheetID, txBase: base, cardsSheet: cards}
}

// newSheetsService initializes a Sheets Service using Service Account credentials.
func newSheetsService(ctx context.Context, cfg Config) (*gsheet.Service, error) {
	var credentialsJSON []byte
	switch {
	case strings.TrimSpace(cfg.ServiceAccountJSON) != "":
		slog.InfoContext(ctx, "Using inline JSON credentials")
		credentialsJSON = []byte(cfg.ServiceAccountJSON)
	case strings.TrimSpace(cfg.ServiceAccountFile) != "":
		slog.InfoContext(ctx, "Reading credentials from file", "path", cfg.ServiceAccountFile)
		b, err := os.ReadFile(cfg.ServiceAccountFile)
		if err != nil {
			return nil, fmt.Errorf("read service account file: %w", err)
		}
		credentialsJSON = b
	default:
		return nil, errors.New("missing service account credentials (set GOOGLE_SERVICE_ACCOUNT_JSON or GOOGLE_SERVICE_ACCOUNT_FILE)")
	}

	service, err := gsheet.NewService(ctx,
		goption.WithCredentialsJSON(credentialsJSON),
		goption.WithScopes(gsheet.SpreadsheetsScope))
	if err != nil {
		return nil, fmt.Errorf("create sheets service: %w", err)
	}
	return service, nil
}

func (c *Client) tab(year int) string { return yearPrefixedName(c.txBase, year) }

func (c *Client) readRows(ctx context.Context, tab string) ([][]any, error) {
	rng := fmt.Sprintf("%s!A2:J", tab)
	resp, err := c.svc.Spreadsheets.Values.Get(c.spreadsheetID, rng).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", rng, err)
	}
	return resp.Values, nil
}

// ListTransactions reads the year's tab and filters it in memory. A year
// without a tab reads as empty.
func (c *Client) ListTransactions(ctx context.Context, q ledger.Query) ([]core.Transaction, error) {
	if c.svc == nil {
		return nil, errors.New("sheets service not initialized")
	}
	tabs, err := c.tabs(ctx)
	if err != nil {
		return nil, err
	}
	tab := c.tab(q.Year)
	if _, ok := tabs[tab]; !ok {
		return []core.Transaction{}, nil
	}
	values, err := c.readRows(ctx, tab)
	if err != nil {
		return nil, err
	}
	rows := make([]core.Transaction, 0, len(values))
	for _, v := range values {
		if t, ok := parseTransactionRow(v); ok {
			rows = append(rows, t)
		}
	}
	return ledger.Apply(rows, q), nil
}

// InsertTransaction appends t to its year's tab, creating the tab when
// needed. A zero ID gets the next free id across all year tabs; a preset ID
// is kept and the append is skipped when that id is already present.
func (c *Client) InsertTransaction(ctx context.Context, t core.Transaction) (int64, error) {
	if err := t.Validate(); err != nil {
		return 0, fmt.Errorf("validation failed: %w", err)
	}
	if c.svc == nil {
		return 0, errors.New("sheets service not initialized")
	}
	tabs, err := c.tabs(ctx)
	if err != nil {
		return 0, err
	}
	tab := c.tab(t.Year)
	if _, ok := tabs[tab]; !ok {
		if err := c.addTab(ctx, tab); err != nil {
			return 0, err
		}
		tabs[tab] = -1
	}

	if t.ID == 0 {
		maxID, err := c.maxID(ctx, tabs)
		if err != nil {
			return 0, err
		}
		t.ID = maxID + 1
	} else if _, row, err := c.find(ctx, tabs, t.ID); err != nil {
		return 0, err
	} else if row >= 0 {
		slog.InfoContext(ctx, "Row already mirrored", "id", t.ID, "sheet", tab)
		return t.ID, nil
	}

	rng := fmt.Sprintf("%s!A:J", tab)
	vr := &gsheet.ValueRange{Values: [][]any{transactionRow(t)}}
	_, err = c.svc.Spreadsheets.Values.Append(c.spreadsheetID, rng, vr).
		ValueInputOption("RAW").InsertDataOption("INSERT_ROWS").Context(ctx).Do()
	if err != nil {
		return 0, fmt.Errorf("append to %s: %w", tab, err)
	}
	return t.ID, nil
}

// DeleteTransaction removes the row carrying id from whichever year tab
// holds it.
func (c *Client) DeleteTransaction(ctx context.Context, id int64) error {
	if c.svc == nil {
		return errors.New("sheets service not initialized")
	}
	tabs, err := c.tabs(ctx)
	if err != nil {
		return err
	}
	tab, row, err := c.find(ctx, tabs, id)
	if err != nil {
		return err
	}
	if row < 0 {
		return ledger.ErrNotFound
	}

	req := &gsheet.BatchUpdateSpreadsheetRequest{Requests: []*gsheet.Request{{
		DeleteDimension: &gsheet.DeleteDimensionRequest{Range: &gsheet.DimensionRange{
			SheetId:    tabs[tab],
			Dimension:  "ROWS",
			StartIndex: row,
			EndIndex:   row + 1,
		}},
	}}}
	if _, err := c.svc.Spreadsheets.BatchUpdate(c.spreadsheetID, req).Context(ctx).Do(); err != nil {
		return fmt.Errorf("delete row %d in %s: %w", row, tab, err)
	}
	return nil
}

func (c *Client) ListCards(ctx context.Context) ([]core.Card, error) {
	if c.svc == nil {
		return nil, errors.New("sheets service not initialized")
	}
	rng := fmt.Sprintf("%s!A2:C", c.cardsSheet)
	resp, err := c.svc.Spreadsheets.Values.Get(c.spreadsheetID, rng).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", rng, err)
	}
	out := make([]core.Card, 0, len(resp.Values))
	for i, v := range resp.Values {
		if card, ok := parseCardRow(v, int64(i+1)); ok {
			out = append(out, card)
		}
	}
	return out, nil
}

// tabs maps every transaction tab title to its sheet id.
func (c *Client) tabs(ctx context.Context) (map[string]int64, error) {
	ss, err := c.svc.Spreadsheets.Get(c.spreadsheetID).Fields("sheets.properties").Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("get spreadsheet: %w", err)
	}
	out := make(map[string]int64, len(ss.Sheets))
	suffix := " " + c.txBase
	for _, s := range ss.Sheets {
		if s.Properties == nil || !strings.HasSuffix(s.Properties.Title, suffix) {
			continue
		}
		out[s.Properties.Title] = s.Properties.SheetId
	}
	return out, nil
}

func (c *Client) addTab(ctx context.Context, tab string) error {
	req := &gsheet.BatchUpdateSpreadsheetRequest{Requests: []*gsheet.Request{{
		AddSheet: &gsheet.AddSheetRequest{Properties: &gsheet.SheetProperties{Title: tab}},
	}}}
	if _, err := c.svc.Spreadsheets.BatchUpdate(c.spreadsheetID, req).Context(ctx).Do(); err != nil {
		return fmt.Errorf("add sheet %s: %w", tab, err)
	}
	header := &gsheet.ValueRange{Values: [][]any{transactionHeader}}
	_, err := c.svc.Spreadsheets.Values.Update(c.spreadsheetID, fmt.Sprintf("%s!A1:J1", tab), header).
		ValueInputOption("RAW").Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("write header of %s: %w", tab, err)
	}
	slog.InfoContext(ctx, "Created transaction sheet", "sheet", tab)
	return nil
}

func (c *Client) idColumn(ctx context.Context, tab string) ([]string, error) {
	rng := fmt.Sprintf("%s!A:A", tab)
	resp, err := c.svc.Spreadsheets.Values.Get(c.spreadsheetID, rng).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", rng, err)
	}
	out := make([]string, len(resp.Values))
	for i, v := range resp.Values {
		out[i] = safeGet(toStrings(v), 0)
	}
	return out, nil
}

func (c *Client) maxID(ctx context.Context, tabs map[string]int64) (int64, error) {
	var max int64
	for tab, sheetID := range tabs {
		if sheetID < 0 {
			continue
		}
		ids, err := c.idColumn(ctx, tab)
		if err != nil {
			return 0, err
		}
		for _, s := range ids {
			if id, err := strconv.ParseInt(s, 10, 64); err == nil && id > max {
				max = id
			}
		}
	}
	return max, nil
}

// find returns the tab and zero-based row index holding id, or row -1.
func (c *Client) find(ctx context.Context, tabs map[string]int64, id int64) (string, int64, error) {
	want := strconv.FormatInt(id, 10)
	for tab, sheetID := range tabs {
		if sheetID < 0 {
			continue
		}
		ids, err := c.idColumn(ctx, tab)
		if err != nil {
			return "", -1, err
		}
		for i, s := range ids {
			if s == want {
				return tab, int64(i), nil
			}
		}
	}
	return "", -1, nil
}
