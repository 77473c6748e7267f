// Package rates turns the text of rate cards into typed, classified rows.
package rates

import "time"

// Group is the classification bucket of a listed asset.
type Group string

const (
	GroupFiat   Group = "fiat"
	GroupMetal  Group = "metal"
	GroupCrypto Group = "crypto"
)

// Rank orders groups for display: fiat, metal, crypto, then anything else.
func (g Group) Rank() int {
	switch g {
	case GroupFiat:
		return 0
	case GroupMetal:
		return 1
	case GroupCrypto:
		return 2
	default:
		return 3
	}
}

// Candidate is the raw result of parsing one card, before validation.
type Candidate struct {
	Symbol        string
	NameLocalized string
	PriceText     string
	// ChangeText is nil when the card shows no percent change.
	ChangeText *string
}

// Row is one normalized rate listing ready for publication.
type Row struct {
	Group         Group
	Code          string
	NameLocalized string
	Price         float64
	Change        string
	// Low and High are never exposed by the source page.
	Low        *float64
	High       *float64
	ObservedAt time.Time
	Source     string
}

// Publication describes a completed full-replace write to the sink.
type Publication struct {
	Count       int
	PublishedAt time.Time
}
