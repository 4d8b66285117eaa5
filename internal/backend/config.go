package backend

import (
	"fmt"

	"presupuesto/internal/config"
	"presupuesto/internal/ledger/sheets"
)

// FromAppConfig converts the application config to backend config
func FromAppConfig(app *config.Config) (Config, error) {
	if app == nil {
		return Config{}, fmt.Errorf("app config is nil")
	}
	t := Type(app.DataBackend)
	if !t.IsValid() {
		return Config{}, fmt.Errorf("invalid backend type in config: %s", app.DataBackend)
	}
	return Config{
		Type:                     t,
		SeedDir:                  app.SeedDir,
		SQLiteDBPath:             app.SQLiteDBPath,
		AMQPURL:                  app.AMQPURL,
		AMQPExchange:             app.AMQPExchange,
		AMQPQueue:                app.AMQPQueue,
		GoogleSpreadsheetID:      app.GoogleSpreadsheetID,
		GoogleSheetName:          app.GoogleSheetName,
		GoogleCardsSheetName:     app.GoogleCardsSheetName,
		GoogleServiceAccountJSON: app.GoogleServiceAccountJSON,
		GoogleServiceAccountFile: app.GoogleServiceAccountFile,
		SupabaseURL:              app.SupabaseURL,
		SupabaseKey:              app.SupabaseKey,
	}, nil
}

// Validate checks the settings the selected backend needs.
func (c Config) Validate() error {
	switch c.Type {
	case Memory:
		return nil
	case SQLite:
		if c.SQLiteDBPath == "" {
			return fmt.Errorf("SQLite database path is required for sqlite backend")
		}
	case Sheets:
		if c.GoogleSpreadsheetID == "" {
			return fmt.Errorf("Google Spreadsheet ID is required for sheets backend")
		}
		if c.GoogleServiceAccountJSON == "" && c.GoogleServiceAccountFile == "" {
			return fmt.Errorf("service account credentials are required for sheets backend")
		}
	case Supabase:
		if c.SupabaseURL == "" || c.SupabaseKey == "" {
			return fmt.Errorf("SUPABASE_URL and SUPABASE_KEY are required for supabase backend")
		}
	default:
		return fmt.Errorf("invalid backend type: %s", c.Type)
	}
	return nil
}

// SheetsConfig is the Google Sheets part of c, shared with the worker's
// mirror.
func (c Config) SheetsConfig() sheets.Config {
	return sheets.Config{
		SpreadsheetID:      c.GoogleSpreadsheetID,
		TransactionsBase:   c.GoogleSheetName,
		CardsSheet:         c.GoogleCardsSheetName,
		ServiceAccountJSON: c.GoogleServiceAccountJSON,
		ServiceAccountFile: c.GoogleServiceAccountFile,
	}
}
