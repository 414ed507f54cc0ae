package contracts

// TradingDate is one trading session in ISO 8601 form (YYYY-MM-DD)
// ⭐ SSOT: 수집 기준일은 이 타입으로만 전달
type TradingDate string

// String returns the ISO date
func (d TradingDate) String() string {
	return string(d)
}

// TickerIdentity pairs the symbol in use today with the symbol valid on AsOf
type TickerIdentity struct {
	Current    string      `json:"current"`
	Historical string      `json:"historical"`
	AsOf       TradingDate `json:"as_of"`
}

// Renamed reports whether the historical symbol differs from the current one
func (t TickerIdentity) Renamed() bool {
	return t.Current != t.Historical
}

// StockAggregate is the daily price bar for one ticker on one date
type StockAggregate struct {
	Date      TradingDate `json:"date"`
	Close     float64     `json:"close_price"`
	Open      float64     `json:"open_price"`
	High      float64     `json:"high_price"`
	Low       float64     `json:"low_price"`
	Volume    int64       `json:"volume"`
	VWAP      *float64    `json:"vwap"`      // 제공되지 않으면 null
	Timestamp int64       `json:"timestamp"` // Unix ms, session start
}

// CompanyDetail holds point-in-time company descriptors.
// Every field is optional; presence is resolved once at the fetch boundary.
type CompanyDetail struct {
	Name              *string  `json:"name"`
	MarketCap         *float64 `json:"market_cap"`
	SharesOutstanding *float64 `json:"shares_outstanding"`
	Currency          *string  `json:"currency"`
	Description       *string  `json:"description"`
}

// HasMarketCap reports whether the detail carries a usable market cap.
// A missing or zero value disqualifies the ticker from aggregation.
func (d *CompanyDetail) HasMarketCap() bool {
	return d != nil && d.MarketCap != nil && *d.MarketCap > 0
}

// MarketCapValue returns the market cap or 0 when absent
func (d *CompanyDetail) MarketCapValue() float64 {
	if !d.HasMarketCap() {
		return 0
	}
	return *d.MarketCap
}

// DisplayName returns the company name or "" when absent
func (d *CompanyDetail) DisplayName() string {
	if d == nil || d.Name == nil {
		return ""
	}
	return *d.Name
}

// ProcessedTicker is an index constituent whose market cap was collected
type ProcessedTicker struct {
	Ticker    string  `json:"ticker"`
	MarketCap float64 `json:"market_cap"`
}

// FailedTicker is a ticker that could not contribute to totals
type FailedTicker struct {
	Ticker string `json:"ticker"`
	Reason string `json:"reason"`
}

// SubgroupMember is a subgroup ticker with both detail and price data present
type SubgroupMember struct {
	Ticker        string          `json:"ticker"`
	Detail        *CompanyDetail  `json:"detail"`
	Aggregate     *StockAggregate `json:"aggregate"`
	PctOfSubgroup float64         `json:"pct_of_subgroup"`
	PctOfIndex    *float64        `json:"pct_of_index,omitempty"`
}

// MarketCap returns the member's market cap
func (m SubgroupMember) MarketCap() float64 {
	return m.Detail.MarketCapValue()
}
