package sentiment

import (
	"sort"
	"strings"
)

// assetNames maps ticker symbols to the full asset name used both by the
// mention filter and the public catalog route. Unknown symbols are still
// served, with search-only collection and symbol-only filtering.
var assetNames = map[string]string{
	"BTC":   "bitcoin",
	"ETH":   "ethereum",
	"SOL":   "solana",
	"DOGE":  "dogecoin",
	"XRP":   "ripple",
	"ADA":   "cardano",
	"AVAX":  "avalanche",
	"DOT":   "polkadot",
	"LINK":  "chainlink",
	"MATIC": "polygon",
	"LTC":   "litecoin",
	"SHIB":  "shiba inu",
}

// FullName returns the long-form name for a symbol, or "" when unknown.
func FullName(symbol string) string {
	return assetNames[strings.ToUpper(strings.TrimSpace(symbol))]
}

// KnownAssets lists the catalog symbols in stable order.
func KnownAssets() []string {
	out := make([]string, 0, len(assetNames))
	for sym := range assetNames {
		out = append(out, sym)
	}
	sort.Strings(out)
	return out
}
