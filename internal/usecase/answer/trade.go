package answer

import "strings"

// GeneralTrade is reported when no trade keyword matches.
const GeneralTrade = "general"

// tradeKeywords is checked in order; the first trade with a matching
// substring wins.
var tradeKeywords = []struct {
	trade    string
	keywords []string
}{
	{"hvac", []string{"hvac", "airflow", "ahu", "damper", "duct", "vfd", "fan", "cooling", "heating", "ventilation", "cfm", "air"}},
	{"electrical", []string{"electrical", "cable", "mcb", "tripping", "wiring", "db", "breaker", "tray", "circuit"}},
	{"plumbing", []string{"plumbing", "water", "pressure", "pipe", "valve", "prv", "pump", "tap", "fixture", "drainage"}},
	{"concrete", []string{"concrete", "rebar", "cover", "honeycombing", "crack", "formwork", "pour", "cube", "strength", "slab"}},
	{"finishes", []string{"tile", "paint", "debonding", "blistering", "screed", "adhesive", "waterproofing"}},
	{"safety", []string{"hot work", "permit", "fire", "safety", "hse"}},
	{"contracts", []string{"variation", "claim", "design change", "boq", "scope"}},
}

// DetectTrade classifies a query by construction trade.
func DetectTrade(query string) string {
	q := strings.ToLower(query)
	for _, t := range tradeKeywords {
		for _, kw := range t.keywords {
			if strings.Contains(q, kw) {
				return t.trade
			}
		}
	}
	return GeneralTrade
}
