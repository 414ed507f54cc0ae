package collector

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/wonny/mag7-collector/internal/contracts"
	"github.com/wonny/mag7-collector/pkg/logger"
)

// ErrEmptySubgroup is returned when there are no subgroup tickers to collect
var ErrEmptySubgroup = errors.New("subgroup ticker list is empty")

// SubgroupResult is the outcome of one subgroup pass
type SubgroupResult struct {
	// Ranked holds included members, descending by market cap
	Ranked         []contracts.SubgroupMember
	TotalMarketCap float64
	// Skipped explains every ticker left out of Ranked
	Skipped []contracts.FailedTicker
}

// Companies returns the included members keyed by ticker
func (r *SubgroupResult) Companies() map[string]contracts.CompanyRecord {
	companies := make(map[string]contracts.CompanyRecord, len(r.Ranked))
	for _, m := range r.Ranked {
		companies[m.Ticker] = contracts.CompanyRecord{
			CompanyDetail: *m.Detail,
			TradingData:   *m.Aggregate,
		}
	}
	return companies
}

// SubgroupCollector merges price and company data for the subgroup and ranks it
// ⭐ SSOT: 순위/비중 계산은 여기서만
type SubgroupCollector struct {
	fetcher *Fetcher
	logger  *logger.Logger
}

// NewSubgroupCollector creates a subgroup collector
func NewSubgroupCollector(fetcher *Fetcher, log *logger.Logger) *SubgroupCollector {
	return &SubgroupCollector{
		fetcher: fetcher,
		logger:  log.WithModule("subgroup"),
	}
}

// Collect fetches details and aggregate per ticker and keeps only tickers with
// both present and a usable market cap. pctOfIndex is set only when indexTotal > 0.
func (s *SubgroupCollector) Collect(ctx context.Context, tickers []string, date contracts.TradingDate, indexTotal float64) (*SubgroupResult, error) {
	if len(tickers) == 0 {
		return nil, ErrEmptySubgroup
	}

	result := &SubgroupResult{
		Ranked:  []contracts.SubgroupMember{},
		Skipped: []contracts.FailedTicker{},
	}

	for _, ticker := range tickers {
		s.logger.WithField("ticker", ticker).Debug("Processing subgroup ticker")

		// 두 조회는 서로 독립: 한쪽이 실패해도 다른 쪽은 시도
		detail, detailErr := s.fetcher.Details(ctx, ticker, date)
		agg, aggErr := s.fetcher.Aggregate(ctx, ticker, date)

		if reason := skipReason(detail, detailErr, agg, aggErr); reason != "" {
			s.logger.WithFields(map[string]interface{}{
				"ticker": ticker,
				"reason": reason,
			}).Warn("Skipping ticker due to missing data")
			result.Skipped = append(result.Skipped, contracts.FailedTicker{Ticker: ticker, Reason: reason})
			continue
		}

		result.TotalMarketCap += detail.MarketCapValue()
		result.Ranked = append(result.Ranked, contracts.SubgroupMember{
			Ticker:    ticker,
			Detail:    detail,
			Aggregate: agg,
		})
	}

	Rank(result.Ranked, result.TotalMarketCap, indexTotal)

	s.logger.WithFields(map[string]interface{}{
		"included": len(result.Ranked),
		"skipped":  len(result.Skipped),
	}).Info("Subgroup collection completed")

	return result, nil
}

// Rank sorts members descending by market cap (stable, so ties keep input
// order) and fills their percentage shares in place
func Rank(members []contracts.SubgroupMember, subgroupTotal, indexTotal float64) {
	sort.SliceStable(members, func(i, j int) bool {
		return members[i].MarketCap() > members[j].MarketCap()
	})

	for i := range members {
		mc := members[i].MarketCap()
		members[i].PctOfSubgroup = 0
		if subgroupTotal > 0 {
			members[i].PctOfSubgroup = mc / subgroupTotal * 100
		}
		members[i].PctOfIndex = nil
		if indexTotal > 0 {
			pct := mc / indexTotal * 100
			members[i].PctOfIndex = &pct
		}
	}
}

func skipReason(detail *contracts.CompanyDetail, detailErr error, agg *contracts.StockAggregate, aggErr error) string {
	switch {
	case detailErr != nil:
		return fmt.Sprintf("details: %v", detailErr)
	case aggErr != nil:
		return fmt.Sprintf("aggregate: %v", aggErr)
	case detail == nil:
		return "no company details"
	case agg == nil:
		return "no aggregate data"
	case !detail.HasMarketCap():
		return ReasonNoMarketCap
	}
	return ""
}
