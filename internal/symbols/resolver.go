package symbols

import (
	"github.com/wonny/mag7-collector/internal/contracts"
)

// Purpose selects which upstream dataset a symbol is being resolved for.
// The two datasets switched identities on different calendar days.
type Purpose int

const (
	// ForDetails resolves for company-detail lookups
	ForDetails Purpose = iota
	// ForAggregates resolves for daily price-bar lookups
	ForAggregates
)

// Rule maps a current ticker to its legacy symbol for dates on or before a cutover
type Rule struct {
	Ticker            string
	Legacy            string
	DetailsCutover    contracts.TradingDate // inclusive
	AggregatesCutover contracts.TradingDate // inclusive
}

// DefaultRules are the known rename events.
// FB → META took effect 2022-06-09; the reference endpoint only returns META data
// from 2022-06-10, while daily bars switch one day earlier.
var DefaultRules = []Rule{
	{Ticker: "META", Legacy: "FB", DetailsCutover: "2022-06-09", AggregatesCutover: "2022-06-08"},
}

// Resolver maps present-day tickers to the symbol valid on a historical date
// ⭐ SSOT: 과거 티커 변환은 여기서만
type Resolver struct {
	rules map[string]Rule
}

// NewResolver builds a resolver from rules; no rules means DefaultRules
func NewResolver(rules ...Rule) *Resolver {
	if len(rules) == 0 {
		rules = DefaultRules
	}

	r := &Resolver{rules: make(map[string]Rule, len(rules))}
	for _, rule := range rules {
		r.rules[rule.Ticker] = rule
	}
	return r
}

// Resolve returns the identity of ticker on date for the given purpose.
// Total and pure: unknown tickers resolve to themselves.
func (r *Resolver) Resolve(ticker string, date contracts.TradingDate, purpose Purpose) contracts.TickerIdentity {
	identity := contracts.TickerIdentity{
		Current:    ticker,
		Historical: ticker,
		AsOf:       date,
	}

	rule, ok := r.rules[ticker]
	if !ok {
		return identity
	}

	cutover := rule.DetailsCutover
	if purpose == ForAggregates {
		cutover = rule.AggregatesCutover
	}

	// ISO 날짜 문자열은 사전순 비교가 곧 날짜 비교
	if date <= cutover {
		identity.Historical = rule.Legacy
	}
	return identity
}

// ForDetails returns the symbol to query company details with
func (r *Resolver) ForDetails(ticker string, date contracts.TradingDate) string {
	return r.Resolve(ticker, date, ForDetails).Historical
}

// ForAggregates returns the symbol to query daily bars with
func (r *Resolver) ForAggregates(ticker string, date contracts.TradingDate) string {
	return r.Resolve(ticker, date, ForAggregates).Historical
}
