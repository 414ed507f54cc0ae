package collector

import (
	"context"

	"github.com/wonny/mag7-collector/internal/contracts"
	"github.com/wonny/mag7-collector/pkg/logger"
)

// ReasonNoMarketCap is recorded when details arrive without a usable market cap
const ReasonNoMarketCap = "No market cap data"

// IndexResult is the outcome of one index pass.
// Every input ticker lands in exactly one of Processed or Failed.
type IndexResult struct {
	TotalMarketCap float64
	Processed      []contracts.ProcessedTicker
	Failed         []contracts.FailedTicker
}

// IndexAggregator sums market caps over the index universe
type IndexAggregator struct {
	fetcher *Fetcher
	logger  *logger.Logger
}

// NewIndexAggregator creates an index aggregator
func NewIndexAggregator(fetcher *Fetcher, log *logger.Logger) *IndexAggregator {
	return &IndexAggregator{
		fetcher: fetcher,
		logger:  log.WithModule("index"),
	}
}

// Aggregate walks tickers sequentially and never aborts on a single failure.
// Once ctx is done the remaining tickers are recorded as failed.
func (a *IndexAggregator) Aggregate(ctx context.Context, tickers []string, date contracts.TradingDate) IndexResult {
	result := IndexResult{
		Processed: []contracts.ProcessedTicker{},
		Failed:    []contracts.FailedTicker{},
	}

	a.logger.WithFields(map[string]interface{}{
		"ticker_count": len(tickers),
		"date":         date,
	}).Info("Starting index aggregation")

	for _, ticker := range tickers {
		if err := ctx.Err(); err != nil {
			result.Failed = append(result.Failed, contracts.FailedTicker{Ticker: ticker, Reason: err.Error()})
			continue
		}

		detail, err := a.fetcher.Details(ctx, ticker, date)
		if err != nil {
			result.Failed = append(result.Failed, contracts.FailedTicker{Ticker: ticker, Reason: err.Error()})
			continue
		}
		if !detail.HasMarketCap() {
			a.logger.WithField("ticker", ticker).Warn("No market cap data available")
			result.Failed = append(result.Failed, contracts.FailedTicker{Ticker: ticker, Reason: ReasonNoMarketCap})
			continue
		}

		mc := detail.MarketCapValue()
		result.TotalMarketCap += mc
		result.Processed = append(result.Processed, contracts.ProcessedTicker{Ticker: ticker, MarketCap: mc})

		a.logger.WithFields(map[string]interface{}{
			"ticker":        ticker,
			"market_cap_bn": mc / 1e9,
		}).Debug("Processed index constituent")
	}

	successRate := 0.0
	if len(tickers) > 0 {
		successRate = float64(len(result.Processed)) / float64(len(tickers)) * 100
	}

	a.logger.WithFields(map[string]interface{}{
		"processed":          len(result.Processed),
		"failed":             len(result.Failed),
		"success_rate_pct":   successRate,
		"total_market_cap_t": result.TotalMarketCap / 1e12,
	}).Info("Index aggregation completed")

	return result
}
