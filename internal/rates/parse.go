package rates

import (
	"regexp"
	"strings"
	"unicode"
)

var (
	symbolPattern       = regexp.MustCompile(`(?i)/toman-rate/([a-z0-9_-]{2,15})`)
	groupedPricePattern = regexp.MustCompile(`\d{1,3}(?:,\d{3})+(?:\.\d+)?`)
	plainPricePattern   = regexp.MustCompile(`\d+(?:\.\d+)?`)
	namePattern         = regexp.MustCompile(`[\x{0600}-\x{06FF}][\x{0600}-\x{06FF}\s\x{200C}\x{200D}]*`)
	changePattern       = regexp.MustCompile(`[+-]?\s*\d+(?:\.\d+)?\s*%`)
)

const minNameRunes = 3

// ParseCard extracts a Candidate from a card's href and visible text.
// It reports false when the href carries no symbol or the text no price;
// most links on the page are not cards, so this is not an error.
func ParseCard(href, text string) (Candidate, bool) {
	symbol := ParseSymbol(href)
	if symbol == "" {
		return Candidate{}, false
	}

	price := ParsePrice(text)
	if price == "" {
		return Candidate{}, false
	}

	name := ParseName(text)
	if name == "" {
		name = symbol
	}

	return Candidate{
		Symbol:        symbol,
		NameLocalized: name,
		PriceText:     price,
		ChangeText:    ParseChange(text),
	}, true
}

// ParseSymbol returns the uppercased token following /toman-rate/ in href,
// or "" if there is none.
func ParseSymbol(href string) string {
	m := symbolPattern.FindStringSubmatch(href)
	if m == nil {
		return ""
	}
	return strings.ToUpper(m[1])
}

// ParsePrice returns the first thousands-grouped number in text, falling
// back to the first plain number.
func ParsePrice(text string) string {
	if m := groupedPricePattern.FindString(text); m != "" {
		return m
	}
	return plainPricePattern.FindString(text)
}

// ParseName returns the first run of at least three Arabic-script
// characters, allowing whitespace and zero-width (non-)joiners between them.
func ParseName(text string) string {
	for _, m := range namePattern.FindAllString(text, -1) {
		m = strings.TrimRightFunc(m, func(r rune) bool {
			return unicode.IsSpace(r) || r == '\u200c' || r == '\u200d'
		})
		if countScript(m) >= minNameRunes {
			return m
		}
	}
	return ""
}

func countScript(s string) int {
	n := 0
	for _, r := range s {
		if r >= 0x0600 && r <= 0x06FF {
			n++
		}
	}
	return n
}

// ParseChange returns the signed percent change in text with whitespace
// removed, or nil if there is none.
func ParseChange(text string) *string {
	m := changePattern.FindString(text)
	if m == "" {
		return nil
	}
	change := strings.Join(strings.Fields(m), "")
	return &change
}
