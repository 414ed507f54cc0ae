package collector

import (
	"context"

	"github.com/wonny/mag7-collector/internal/contracts"
	"github.com/wonny/mag7-collector/internal/pacing"
	"github.com/wonny/mag7-collector/internal/symbols"
	"github.com/wonny/mag7-collector/pkg/logger"
)

// MarketData is the provider surface the fetcher consumes.
// Implementations return (nil, nil) when there is no data for symbol/date.
type MarketData interface {
	DailyAggregate(ctx context.Context, symbol string, date contracts.TradingDate) (*contracts.StockAggregate, error)
	TickerDetails(ctx context.Context, symbol string, date contracts.TradingDate) (*contracts.CompanyDetail, error)
}

// Fetcher retrieves the two per-ticker facts, each paced and resolved independently
type Fetcher struct {
	provider MarketData
	symbols  *symbols.Resolver
	pacers   pacing.Set
	logger   *logger.Logger
}

// NewFetcher creates a per-ticker fetcher
func NewFetcher(provider MarketData, resolver *symbols.Resolver, pacers pacing.Set, log *logger.Logger) *Fetcher {
	return &Fetcher{
		provider: provider,
		symbols:  resolver,
		pacers:   pacers,
		logger:   log.WithModule("fetcher"),
	}
}

// Aggregate returns the daily bar of ticker on date, queried under its
// historical symbol. No session data yields (nil, nil).
func (f *Fetcher) Aggregate(ctx context.Context, ticker string, date contracts.TradingDate) (*contracts.StockAggregate, error) {
	if err := f.pacers.Aggregate.Wait(ctx); err != nil {
		return nil, err
	}

	symbol := f.symbols.ForAggregates(ticker, date)
	log := f.logger.WithFields(map[string]interface{}{
		"ticker": ticker,
		"symbol": symbol,
		"date":   date,
	})

	agg, err := f.provider.DailyAggregate(ctx, symbol, date)
	if err != nil {
		log.WithError(err).Warn("Failed to fetch aggregate")
		return nil, err
	}
	if agg == nil {
		log.Info("No aggregate data available")
		return nil, nil
	}
	return agg, nil
}

// Details returns point-in-time company descriptors of ticker on date.
// An empty response yields (nil, nil).
func (f *Fetcher) Details(ctx context.Context, ticker string, date contracts.TradingDate) (*contracts.CompanyDetail, error) {
	if err := f.pacers.Details.Wait(ctx); err != nil {
		return nil, err
	}

	symbol := f.symbols.ForDetails(ticker, date)
	log := f.logger.WithFields(map[string]interface{}{
		"ticker": ticker,
		"symbol": symbol,
		"date":   date,
	})

	detail, err := f.provider.TickerDetails(ctx, symbol, date)
	if err != nil {
		log.WithError(err).Warn("Failed to fetch company details")
		return nil, err
	}
	if detail == nil {
		log.Info("No company details available")
		return nil, nil
	}
	return detail, nil
}
