package rates

import (
	"math"
	"sort"
	"strconv"
	"strings"
	"time"

	"ratesync/internal/pipeline"
)

const defaultChange = "0"

// Normalize validates, classifies, deduplicates and orders the candidates of
// one extraction pass. Candidates with an empty symbol or an unparseable
// price are dropped; the batch fails only when nothing survives.
func Normalize(cands []Candidate, observedAt time.Time, source string) ([]Row, error) {
	if len(cands) == 0 {
		return nil, pipeline.ErrNoCards
	}

	seen := make(map[string]bool, len(cands))
	rows := make([]Row, 0, len(cands))
	for _, c := range cands {
		symbol := strings.ToUpper(strings.TrimSpace(c.Symbol))
		if seen[symbol] {
			continue
		}
		seen[symbol] = true

		row, ok := normalizeOne(symbol, c, observedAt, source)
		if !ok {
			continue
		}
		rows = append(rows, row)
	}

	if len(rows) == 0 {
		return nil, pipeline.ErrNoValidRows
	}

	SortRows(rows)
	return rows, nil
}

func normalizeOne(symbol string, c Candidate, observedAt time.Time, source string) (Row, bool) {
	if symbol == "" {
		return Row{}, false
	}

	price, ok := ParseNumber(c.PriceText)
	if !ok {
		return Row{}, false
	}

	name := strings.TrimSpace(c.NameLocalized)
	if name == "" {
		name = symbol
	}

	change := defaultChange
	if c.ChangeText != nil && *c.ChangeText != "" {
		change = *c.ChangeText
	}

	return Row{
		Group:         Classify(symbol),
		Code:          strings.ToLower(symbol),
		NameLocalized: name,
		Price:         price,
		Change:        change,
		ObservedAt:    observedAt,
		Source:        source,
	}, true
}

// ParseNumber strips thousands separators and whitespace and parses the
// remainder as a finite, non-negative number.
func ParseNumber(text string) (float64, bool) {
	cleaned := strings.TrimSpace(strings.ReplaceAll(text, ",", ""))
	if cleaned == "" {
		return 0, false
	}
	v, err := strconv.ParseFloat(cleaned, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) || v < 0 {
		return 0, false
	}
	return v, true
}

// SortRows orders rows by group rank, then by code. The sort is stable so
// equal keys keep document order.
func SortRows(rows []Row) {
	sort.SliceStable(rows, func(i, j int) bool {
		ri, rj := rows[i].Group.Rank(), rows[j].Group.Rank()
		if ri != rj {
			return ri < rj
		}
		return rows[i].Code < rows[j].Code
	})
}
