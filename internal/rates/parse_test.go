package rates

import "testing"

func TestParseSymbol(t *testing.T) {
	tests := []struct {
		href string
		want string
	}{
		{"https://example.com/toman-rate/usd", "USD"},
		{"/fa/toman-rate/eur?x=1", "EUR"},
		{"/TOMAN-RATE/Btc", "BTC"},
		{"/toman-rate/gold_18", "GOLD_18"},
		{"/toman-rate/x", ""},
		{"/currency/usd", ""},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.href, func(t *testing.T) {
			if got := ParseSymbol(tt.href); got != tt.want {
				t.Errorf("ParseSymbol(%q) = %q, want %q", tt.href, got, tt.want)
			}
		})
	}
}

func TestParsePrice(t *testing.T) {
	tests := []struct {
		name string
		text string
		want string
	}{
		{"grouped", "دلار آمریکا 166,340 تومان", "166,340"},
		{"grouped with decimals", "1,234,567.89", "1,234,567.89"},
		{"plain", "Gold 950", "950"},
		{"plain decimal", "rate 12.5", "12.5"},
		{"grouped preferred over earlier plain", "+1.2% 166,340", "166,340"},
		{"plain price before unrelated grouped number", "950 24h volume 1,200", "1,200"},
		{"no digits", "دلار آمریکا", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ParsePrice(tt.text); got != tt.want {
				t.Errorf("ParsePrice(%q) = %q, want %q", tt.text, got, tt.want)
			}
		})
	}
}

func TestParseName(t *testing.T) {
	tests := []struct {
		name string
		text string
		want string
	}{
		{"single word", "USD دلار 166,340", "دلار"},
		{"with space", "یورو اروپا 180,000", "یورو اروپا"},
		{"with zwnj", "نیم\u200cسکه 50,000,000", "نیم\u200cسکه"},
		{"with zwj", "ربع\u200dسکه 30,000,000", "ربع\u200dسکه"},
		{"trailing joiner trimmed", "سکه\u200d 80,000,000", "سکه"},
		{"too short", "ین 400", ""},
		{"latin only", "US Dollar 166,340", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ParseName(tt.text); got != tt.want {
				t.Errorf("ParseName(%q) = %q, want %q", tt.text, got, tt.want)
			}
		})
	}
}

func TestParseChange(t *testing.T) {
	tests := []struct {
		name string
		text string
		want *string
	}{
		{"positive", "166,340 +0.45%", strPtr("+0.45%")},
		{"negative spaced", "166,340 - 1.2 %", strPtr("-1.2%")},
		{"unsigned", "2%", strPtr("2%")},
		{"absent", "166,340", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParseChange(tt.text)
			switch {
			case tt.want == nil && got != nil:
				t.Errorf("ParseChange(%q) = %q, want nil", tt.text, *got)
			case tt.want != nil && got == nil:
				t.Errorf("ParseChange(%q) = nil, want %q", tt.text, *tt.want)
			case tt.want != nil && *got != *tt.want:
				t.Errorf("ParseChange(%q) = %q, want %q", tt.text, *got, *tt.want)
			}
		})
	}
}

func TestParseCard(t *testing.T) {
	c, ok := ParseCard("/toman-rate/usd", "دلار آمریکا USD 166,340 +0.5%")
	if !ok {
		t.Fatal("ParseCard() returned no candidate")
	}
	if c.Symbol != "USD" {
		t.Errorf("Symbol = %q, want USD", c.Symbol)
	}
	if c.NameLocalized != "دلار آمریکا" {
		t.Errorf("NameLocalized = %q, want دلار آمریکا", c.NameLocalized)
	}
	if c.PriceText != "166,340" {
		t.Errorf("PriceText = %q, want 166,340", c.PriceText)
	}
	if c.ChangeText == nil || *c.ChangeText != "+0.5%" {
		t.Errorf("ChangeText = %v, want +0.5%%", c.ChangeText)
	}
}

func TestParseCard_NameFallsBackToSymbol(t *testing.T) {
	c, ok := ParseCard("/toman-rate/btc", "Bitcoin 6,500,000,000")
	if !ok {
		t.Fatal("ParseCard() returned no candidate")
	}
	if c.NameLocalized != "BTC" {
		t.Errorf("NameLocalized = %q, want BTC", c.NameLocalized)
	}
	if c.ChangeText != nil {
		t.Errorf("ChangeText = %q, want nil", *c.ChangeText)
	}
}

func TestParseCard_NoCandidate(t *testing.T) {
	tests := []struct {
		name string
		href string
		text string
	}{
		{"no symbol", "/about", "166,340"},
		{"no price", "/toman-rate/usd", "دلار آمریکا"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, ok := ParseCard(tt.href, tt.text); ok {
				t.Errorf("ParseCard(%q, %q) returned a candidate, want none", tt.href, tt.text)
			}
		})
	}
}

func strPtr(s string) *string {
	return &s
}
