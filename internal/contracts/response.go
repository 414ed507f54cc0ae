package contracts

import "net/http"

// Response is the envelope returned to whatever triggered a run
// (CLI, HTTP trigger, scheduler)
type Response struct {
	StatusCode int         `json:"statusCode"`
	Body       interface{} `json:"body"`
}

// SuccessBody is the body of a 200 response
type SuccessBody struct {
	Message    string  `json:"message"`
	StorageKey string  `json:"storage_key"`
	RunID      string  `json:"run_id"`
	Summary    Summary `json:"summary"`
}

// Summary is the human-oriented digest of a snapshot
type Summary struct {
	TradingDate        TradingDate `json:"trading_date"`
	CompaniesCollected int         `json:"companies_collected"`
	Totals             Totals      `json:"totals"`
	TopCompany         *string     `json:"top_company"`
}

// Totals are preformatted ($X.XXT, X.X%, N/A)
type Totals struct {
	SubgroupMarketCap  string `json:"subgroup_market_cap"`
	IndexMarketCap     string `json:"index_market_cap"`
	SubgroupPctOfIndex string `json:"subgroup_pct_of_index"`
}

// ErrorBody is the body of a 500 response
type ErrorBody struct {
	Error       string       `json:"error"`
	TradingDate *TradingDate `json:"trading_date"`
	RunID       string       `json:"run_id"`
}

// IsSuccess reports whether the run completed
func (r Response) IsSuccess() bool {
	return r.StatusCode == http.StatusOK
}
