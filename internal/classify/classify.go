// Package classify assigns signal strength and relevance to raw news
// text. It is purely lexical: a conjunction filter gates admission and
// tiered keyword tables grade severity. All matching is on lowercased
// substrings, so multi-word phrases match across the title/body join.
package classify

import "strings"

// Signal grades how strongly an event's wording indicates disruption.
type Signal string

const (
	SignalHigh   Signal = "high"
	SignalMedium Signal = "medium"
	SignalLow    Signal = "low"
)

// Weight maps a signal to its severity multiplier given the configured
// weights for each tier.
func (s Signal) Weight(high, medium, low float64) float64 {
	switch s {
	case SignalHigh:
		return high
	case SignalMedium:
		return medium
	default:
		return low
	}
}

// highSignalKeywords name events that usually halt goods movement
// outright. Checked before the medium table so phrases containing a
// medium keyword ("port strike" contains "strike") grade high.
var highSignalKeywords = []string{
	"port closure", "port closed", "port strike", "dock strike",
	"earthquake", "tsunami", "typhoon", "hurricane", "cyclone",
	"factory fire", "explosion", "factory shutdown", "plant shutdown",
	"sanctions", "export ban", "import ban", "trade blockade",
	"war", "military", "invasion", "blockade",
	"canal blocked", "suez", "panama canal",
	"power outage", "blackout", "energy crisis",
	"flood", "severe flooding", "landslide",
}

var mediumSignalKeywords = []string{
	"strike", "walkout", "protest", "labor dispute",
	"shortage", "supply shortage",
	"delay", "port delay", "shipping delay",
	"disruption", "supply disruption",
	"tariff", "trade war",
	"storm", "typhoon warning", "snowstorm", "blizzard",
}

// Grade returns the signal strength of an event's combined text.
// Unmatched text grades low, never zero: by the time text reaches
// grading it has already passed the relevance filter.
func Grade(title, body string) Signal {
	text := lower(title, body)
	for _, kw := range highSignalKeywords {
		if strings.Contains(text, kw) {
			return SignalHigh
		}
	}
	for _, kw := range mediumSignalKeywords {
		if strings.Contains(text, kw) {
			return SignalMedium
		}
	}
	return SignalLow
}

// disruptionKeywords: at least one must appear for text to be relevant.
var disruptionKeywords = []string{
	"strike", "walkout", "shutdown", "closure", "closed", "blocked",
	"grounded", "halted", "suspended", "delayed", "congested", "disrupted",
	"disruption", "outage", "blackout", "explosion", "fire", "collapsed",
	"seized", "detained", "diverted", "stranded", "impounded",
	"earthquake", "tsunami", "typhoon", "hurricane", "cyclone", "tornado",
	"flood", "flooding", "landslide", "volcanic", "wildfire", "drought",
	"blizzard", "snowstorm", "monsoon", "heatwave",
	"war", "conflict", "military", "invasion", "coup", "sanctions",
	"embargo", "blockade", "tariff", "export ban", "import ban",
	"trade restriction", "trade war", "protest", "riot", "civil unrest",
	"airstrike", "missile strike", "missile attack",
	"bombing", "shelling", "attack", "damaged", "destroyed",
	"shortage", "scarcity", "rationing", "depletion",
	"military buildup", "naval blockade", "strait closure", "ultimatum",
}

// supplyContextKeywords: at least one must also appear. The conjunction
// keeps generic disaster and politics coverage out of the store.
var supplyContextKeywords = []string{
	"port", "shipping", "freight", "cargo", "container", "vessel", "ship",
	"tanker", "dock", "terminal", "harbor", "harbour", "customs",
	"rail freight", "air freight", "trucking", "haulage", "logistics",
	"supply chain", "warehouse", "distribution",
	"canal", "suez", "strait", "shipping lane",
	"import", "export", "trade", "shipment", "manufacturer", "manufacturing",
	"factory", "plant", "production", "assembly line", "industrial",
	"raw material", "inventory", "procurement",
	"semiconductor", "chip", "automotive", "steel", "aluminum", "copper",
	"textile", "garment", "pharmaceutical", "chemical", "oil", "gas",
	"fuel", "energy supply", "power grid", "pipeline", "refinery",
	"agriculture", "grain", "wheat", "commodity",
	"crude oil", "energy market", "lng", "natural gas supply",
}

// blocklistTopics reject recurring false positives: text that carries
// disruption and supply vocabulary but describes an unrelated domain.
var blocklistTopics = []string{
	// medical and health
	"blood supply", "hospital supply", "medical shortage", "drug shortage",
	"medication shortage", "insulin shortage", "vaccine shortage",
	"nurse shortage", "doctor shortage", "healthcare worker",
	"clinical trial", "chemotherapy", "mental health", "psychiatric",
	// sports
	"premier league", "champions league", "world cup", "fifa",
	"player strike", "nba strike", "nfl strike", "nhl lockout",
	"boxing match", "wrestling",
	// entertainment
	"hollywood strike", "writers strike", "actors strike", "sag-aftra",
	"box office", "film festival", "celebrity", "streaming service",
	"oscar", "grammy", "emmy", "golden globe",
	// cyber incidents against non-logistics targets
	"data breach", "phishing campaign", "password leak",
	"social media hack", "credit card breach",
	// housing and finance
	"housing shortage", "housing crisis", "rent increase", "mortgage",
	"property market", "crypto crash", "bitcoin", "ethereum", "nft",
	"hedge fund",
	// general politics
	"abortion rights", "gun control", "election fraud",
	"supreme court ruling", "criminal trial",
}

// Relevant reports whether text describes a plausible supply chain
// disruption. It requires one disruption keyword AND one supply context
// keyword, then rejects blocklisted topics. The returned reason is
// empty when relevant.
func Relevant(title, body string) (bool, string) {
	text := lower(title, body)

	if !containsAny(text, disruptionKeywords) {
		return false, "no disruption keyword"
	}
	if !containsAny(text, supplyContextKeywords) {
		return false, "no supply context keyword"
	}
	for _, term := range blocklistTopics {
		if strings.Contains(text, term) {
			return false, "blocklisted topic: " + term
		}
	}
	return true, ""
}

// disruptionTypeKeywords map keyword groups to a coarse category stored
// with each event. First matching group wins; order puts the most
// specific categories first.
var disruptionTypeKeywords = []struct {
	typ      string
	keywords []string
}{
	{"natural_disaster", []string{
		"earthquake", "tsunami", "typhoon", "hurricane", "cyclone",
		"flood", "landslide", "wildfire", "drought", "blizzard",
		"snowstorm", "volcanic",
	}},
	{"labor_strike", []string{
		"strike", "walkout", "labor dispute", "lockout", "union",
	}},
	{"war_conflict", []string{
		"war", "invasion", "military", "airstrike", "missile",
		"bombing", "shelling", "armed conflict", "coup",
	}},
	{"trade_policy", []string{
		"sanctions", "embargo", "tariff", "export ban", "import ban",
		"trade restriction", "trade war",
	}},
	{"logistics_failure", []string{
		"port closure", "port closed", "canal blocked", "congested",
		"grounded", "blockade", "diverted", "stranded", "port delay",
		"shipping delay",
	}},
	{"infrastructure_damage", []string{
		"explosion", "fire", "collapsed", "power outage", "blackout",
		"pipeline", "power grid",
	}},
	{"shortage", []string{
		"shortage", "scarcity", "rationing", "depletion",
	}},
}

// TypeOf buckets text into a coarse disruption category, or "other".
func TypeOf(title, body string) string {
	text := lower(title, body)
	for _, group := range disruptionTypeKeywords {
		if containsAny(text, group.keywords) {
			return group.typ
		}
	}
	return "other"
}

func containsAny(text string, keywords []string) bool {
	for _, kw := range keywords {
		if strings.Contains(text, kw) {
			return true
		}
	}
	return false
}

func lower(title, body string) string {
	return strings.ToLower(title + " " + body)
}
