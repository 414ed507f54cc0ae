package collector

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/wonny/mag7-collector/internal/contracts"
)

// CollectionTimeLayout matches ISO 8601 with microseconds and offset
const CollectionTimeLayout = "2006-01-02T15:04:05.000000-07:00"

// StorageKey returns the object key of a subgroup snapshot for date
func StorageKey(subgroup string, date contracts.TradingDate) string {
	return fmt.Sprintf("raw/%s/trading_date=%s/market_data.json", subgroup, date)
}

// AssembleSnapshot composes the dated record. Pure: no I/O.
func AssembleSnapshot(date contracts.TradingDate, collectedAt time.Time, index IndexResult, subgroup *SubgroupResult) *contracts.Snapshot {
	ranked := make([]contracts.RankedCompany, 0, len(subgroup.Ranked))
	for i, m := range subgroup.Ranked {
		ranked = append(ranked, contracts.RankedCompany{
			Rank:          i + 1,
			Ticker:        m.Ticker,
			Name:          m.Detail.DisplayName(),
			MarketCap:     m.MarketCap(),
			PctOfSubgroup: m.PctOfSubgroup,
			PctOfIndex:    m.PctOfIndex,
		})
	}

	pctOfIndex := 0.0
	if index.TotalMarketCap > 0 {
		pctOfIndex = subgroup.TotalMarketCap / index.TotalMarketCap * 100
	}

	failed := index.Failed
	if failed == nil {
		failed = []contracts.FailedTicker{}
	}

	return &contracts.Snapshot{
		TradingDate:    date,
		CollectionTime: collectedAt.Format(CollectionTimeLayout),
		Companies:      subgroup.Companies(),
		Rankings:       contracts.Rankings{ByMarketCap: ranked},
		ConcentrationMetrics: contracts.ConcentrationMetrics{
			TotalSubgroupMarketCap: subgroup.TotalMarketCap,
			IndexTotalMarketCap:    index.TotalMarketCap,
			SubgroupPctOfIndex:     pctOfIndex,
			CollectionDate:         date,
			SubgroupCompaniesCount: len(ranked),
		},
		IndexDetails: contracts.IndexDetails{
			TotalMarketCap: index.TotalMarketCap,
			ProcessedCount: len(index.Processed),
			FailedCount:    len(index.Failed),
			FailedTickers:  failed,
		},
	}
}

// EncodeSnapshot renders the stored document (two-space indented JSON).
// Map keys are sorted, so equal snapshots encode to equal bytes.
func EncodeSnapshot(s *contracts.Snapshot) ([]byte, error) {
	body, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode snapshot: %w", err)
	}
	return body, nil
}
