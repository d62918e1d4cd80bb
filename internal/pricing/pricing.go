// Package pricing maps model identifiers and token counts to dollar cost.
package pricing

import "strings"

// Price is expressed in dollars per million tokens, input and output priced
// separately.
type Price struct {
	InputPerMTok  float64
	OutputPerMTok float64
}

// Two tiers: a cheap/fast tier for parsing and extraction, an expensive
// high-accuracy tier for classification and deliverable generation.
var tiers = map[string]Price{
	"haiku":  {InputPerMTok: 1.00, OutputPerMTok: 5.00},
	"sonnet": {InputPerMTok: 3.00, OutputPerMTok: 15.00},
}

// defaultPrice covers unknown models; charging at the expensive tier means
// spend is never under-reported.
var defaultPrice = Price{InputPerMTok: 3.00, OutputPerMTok: 15.00}

// Lookup resolves a model identifier (e.g. "claude-haiku-4-5-20251001") to
// its price by tier substring.
func Lookup(model string) Price {
	lower := strings.ToLower(model)
	for tier, price := range tiers {
		if strings.Contains(lower, tier) {
			return price
		}
	}
	return defaultPrice
}

// Cost is the linear token cost of one completion call.
func Cost(model string, inputTokens, outputTokens int) float64 {
	p := Lookup(model)
	return float64(inputTokens)/1_000_000*p.InputPerMTok +
		float64(outputTokens)/1_000_000*p.OutputPerMTok
}
