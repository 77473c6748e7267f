// Package sheets publishes normalized rate rows to a Google Sheets worksheet.
//
// Publication is full replace: the header row is bootstrapped if blank,
// every data row is cleared and the new batch is appended in one request.
package sheets

import (
	"context"
	"log/slog"
	"time"

	"ratesync/internal/pipeline"
	"ratesync/internal/rates"
)

// Header is the canonical first row of the target worksheet.
var Header = []string{
	"group", "code", "name", "price", "change",
	"low", "high", "observed_at", "source", "published_at",
}

// Connector authenticates with credentials and returns a Backend.
type Connector func(ctx context.Context, creds *Credentials) (Backend, error)

// Config configures the Publisher.
type Config struct {
	SpreadsheetID string
	// Title of the worksheet to write. Falls back to the first worksheet.
	Title string
	// Credentials is the base64-encoded service-account JSON.
	Credentials string
	// BaseURL overrides the Sheets API root.
	BaseURL string
	Logger  *slog.Logger
}

// Publisher writes row batches to the configured worksheet.
type Publisher struct {
	cfg     Config
	connect Connector
	now     func() time.Time
}

// Option configures a Publisher.
type Option func(*Publisher)

// WithConnector replaces the REST backend, e.g. with an in-memory one.
func WithConnector(c Connector) Option {
	return func(p *Publisher) { p.connect = c }
}

// NewPublisher creates a Publisher. Credentials are parsed on every
// Publish so a bad secret fails the run, not the process.
func NewPublisher(cfg Config, opts ...Option) *Publisher {
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	p := &Publisher{
		cfg: cfg,
		now: time.Now,
	}
	p.connect = func(ctx context.Context, creds *Credentials) (Backend, error) {
		return NewClient(p.cfg.BaseURL, p.cfg.SpreadsheetID, creds.TokenSource(ctx)), nil
	}
	for _, o := range opts {
		o(p)
	}
	return p
}

// Publish replaces all data rows of the worksheet with rows, stamping each
// with the same publish time.
func (p *Publisher) Publish(ctx context.Context, rows []rates.Row) (rates.Publication, error) {
	if p.cfg.SpreadsheetID == "" {
		return rates.Publication{}, pipeline.NewConfigError("missing spreadsheet ID (SHEET_ID)", nil)
	}

	creds, err := ParseCredentials(p.cfg.Credentials)
	if err != nil {
		return rates.Publication{}, err
	}

	backend, err := p.connect(ctx, creds)
	if err != nil {
		return rates.Publication{}, pipeline.NewPublicationError("sheets: connect", err)
	}

	table, err := p.resolveTable(ctx, backend)
	if err != nil {
		return rates.Publication{}, err
	}

	if err := p.ensureHeader(ctx, backend, table); err != nil {
		return rates.Publication{}, err
	}

	publishedAt := p.now().UTC()

	if err := backend.ClearRows(ctx, table); err != nil {
		return rates.Publication{}, err
	}
	if len(rows) > 0 {
		if err := backend.AppendRows(ctx, table, EncodeRows(rows, publishedAt)); err != nil {
			return rates.Publication{}, err
		}
	}

	p.cfg.Logger.Info("sheets: published", "table", table.Title, "rows", len(rows))
	return rates.Publication{Count: len(rows), PublishedAt: publishedAt}, nil
}

func (p *Publisher) resolveTable(ctx context.Context, backend Backend) (Table, error) {
	tables, err := backend.Tables(ctx)
	if err != nil {
		return Table{}, err
	}
	if len(tables) == 0 {
		return Table{}, pipeline.NewPublicationError("sheets: spreadsheet has no worksheets", nil)
	}
	for _, t := range tables {
		if t.Title == p.cfg.Title {
			return t, nil
		}
	}
	p.cfg.Logger.Warn("sheets: worksheet not found, using first", "title", p.cfg.Title, "using", tables[0].Title)
	return tables[0], nil
}

// ensureHeader writes Header when the first row is blank. An existing
// header is left untouched even if it differs.
func (p *Publisher) ensureHeader(ctx context.Context, backend Backend, table Table) error {
	current, err := backend.Header(ctx, table)
	if err != nil {
		return err
	}
	for _, h := range current {
		if h != "" {
			return nil
		}
	}
	return backend.WriteHeader(ctx, table, Header)
}

// EncodeRows converts rows to worksheet cells in Header order.
func EncodeRows(rows []rates.Row, publishedAt time.Time) [][]any {
	stamp := publishedAt.UTC().Format(time.RFC3339)
	out := make([][]any, 0, len(rows))
	for _, r := range rows {
		out = append(out, []any{
			string(r.Group),
			r.Code,
			r.NameLocalized,
			r.Price,
			r.Change,
			optional(r.Low),
			optional(r.High),
			r.ObservedAt.UTC().Format(time.RFC3339),
			r.Source,
			stamp,
		})
	}
	return out
}

func optional(v *float64) any {
	if v == nil {
		return ""
	}
	return *v
}
