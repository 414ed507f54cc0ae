package contracts

// Snapshot is the dated record written to object storage once per run
// ⭐ SSOT: 저장소에 기록되는 JSON 구조는 여기서만 정의
type Snapshot struct {
	TradingDate          TradingDate              `json:"trading_date"`
	CollectionTime       string                   `json:"data_collection_time"`
	Companies            map[string]CompanyRecord `json:"companies"`
	Rankings             Rankings                 `json:"rankings"`
	ConcentrationMetrics ConcentrationMetrics     `json:"concentration_metrics"`
	IndexDetails         IndexDetails             `json:"index_details"`
}

// CompanyRecord is the per-company entry of Snapshot.Companies
type CompanyRecord struct {
	CompanyDetail
	TradingData StockAggregate `json:"trading_data"`
}

// Rankings groups the ordered views of the subgroup
type Rankings struct {
	ByMarketCap []RankedCompany `json:"by_market_cap"`
}

// RankedCompany is one entry of the market-cap ranking
type RankedCompany struct {
	Rank          int      `json:"rank"` // 1-based
	Ticker        string   `json:"ticker"`
	Name          string   `json:"name"`
	MarketCap     float64  `json:"market_cap"`
	PctOfSubgroup float64  `json:"pct_of_subgroup"`
	PctOfIndex    *float64 `json:"pct_of_index,omitempty"`
}

// ConcentrationMetrics expresses the subgroup's weight in the index
type ConcentrationMetrics struct {
	TotalSubgroupMarketCap float64     `json:"total_subgroup_market_cap"`
	IndexTotalMarketCap    float64     `json:"index_total_market_cap"`
	SubgroupPctOfIndex     float64     `json:"subgroup_pct_of_index"`
	CollectionDate         TradingDate `json:"collection_date"`
	SubgroupCompaniesCount int         `json:"subgroup_companies_count"`
}

// IndexDetails summarizes the index pass
type IndexDetails struct {
	TotalMarketCap float64        `json:"total_market_cap"`
	ProcessedCount int            `json:"processed_count"`
	FailedCount    int            `json:"failed_count"`
	FailedTickers  []FailedTicker `json:"failed_tickers"`
}

// TopCompany returns the first-ranked company, or nil when nothing was collected
func (s *Snapshot) TopCompany() *RankedCompany {
	if s == nil || len(s.Rankings.ByMarketCap) == 0 {
		return nil
	}
	return &s.Rankings.ByMarketCap[0]
}
