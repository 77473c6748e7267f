// Package extract drives a rendered source page through card parsing and
// normalization.
package extract

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"ratesync/internal/browser"
	"ratesync/internal/rates"
)

// CardSelector matches the links that wrap each rate card on the source page.
const CardSelector = `a[href*="/toman-rate/"]`

// Extractor renders the source page and turns its cards into rows.
type Extractor struct {
	renderer  browser.Renderer
	sourceURL string
	logger    *slog.Logger
	now       func() time.Time
}

// New creates an Extractor for sourceURL.
func New(renderer browser.Renderer, sourceURL string, logger *slog.Logger) *Extractor {
	if logger == nil {
		logger = slog.Default()
	}
	return &Extractor{
		renderer:  renderer,
		sourceURL: sourceURL,
		logger:    logger,
		now:       time.Now,
	}
}

// Extract renders the page, parses every card and normalizes the result.
// The render session is released on every path; a failure to release is
// logged and never replaces the extraction outcome.
func (e *Extractor) Extract(ctx context.Context) ([]rates.Row, error) {
	session, err := e.renderer.Open(ctx, e.sourceURL)
	if err != nil {
		return nil, err
	}
	defer func() {
		if cerr := session.Close(); cerr != nil {
			e.logger.Warn("extract: release render session", "url", e.sourceURL, "error", cerr)
		}
	}()

	elements, err := session.QueryAll(ctx, CardSelector)
	if err != nil {
		return nil, fmt.Errorf("extract: query cards: %w", err)
	}

	observedAt := e.now().UTC()
	cands := make([]rates.Candidate, 0, len(elements))
	for _, el := range elements {
		c, ok := rates.ParseCard(el.Href, el.Text)
		if !ok {
			e.logger.Debug("extract: skipped element", "href", el.Href)
			continue
		}
		cands = append(cands, c)
	}

	e.logger.Debug("extract: parsed cards", "elements", len(elements), "candidates", len(cands))

	return rates.Normalize(cands, observedAt, e.sourceURL)
}
