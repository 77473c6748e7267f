package rates

import "strings"

var cryptoSymbols = map[string]bool{
	"BTC": true, "ETH": true, "USDT": true, "USDC": true, "BNB": true,
	"XRP": true, "ADA": true, "DOGE": true, "SOL": true, "TRX": true,
	"DOT": true, "LTC": true, "TON": true, "SHIB": true, "AVAX": true,
	"MATIC": true, "POL": true, "LINK": true, "BCH": true, "XLM": true,
	"ATOM": true, "ETC": true, "XMR": true, "NOT": true, "DAI": true,
}

var metalSymbols = map[string]bool{
	"XAU": true, "XAG": true, "XPT": true, "XPD": true,
	"GOLD": true, "SILVER": true, "GOLD18": true, "GOLD24": true,
	"MESGHAL": true, "SEKKE": true, "EMAMI": true, "BAHAR": true,
	"NIM": true, "ROB": true, "GERAMI": true, "OUNCE": true,
}

// Classify returns the group of symbol. Crypto is checked before metal;
// anything in neither set is fiat.
func Classify(symbol string) Group {
	symbol = strings.ToUpper(symbol)
	if cryptoSymbols[symbol] {
		return GroupCrypto
	}
	if metalSymbols[symbol] {
		return GroupMetal
	}
	return GroupFiat
}
