package collector

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/wonny/mag7-collector/internal/contracts"
	"github.com/wonny/mag7-collector/internal/pacing"
	"github.com/wonny/mag7-collector/internal/symbols"
	"github.com/wonny/mag7-collector/internal/universe"
	"github.com/wonny/mag7-collector/pkg/logger"
)

func f64(v float64) *float64 { return &v }
func str(v string) *string   { return &v }

// MockMarketData is a mock provider for testing
type MockMarketData struct {
	mock.Mock
}

func (m *MockMarketData) DailyAggregate(ctx context.Context, symbol string, date contracts.TradingDate) (*contracts.StockAggregate, error) {
	args := m.Called(symbol, date)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*contracts.StockAggregate), args.Error(1)
}

func (m *MockMarketData) TickerDetails(ctx context.Context, symbol string, date contracts.TradingDate) (*contracts.CompanyDetail, error) {
	args := m.Called(symbol, date)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*contracts.CompanyDetail), args.Error(1)
}

// fakeMarket is a deterministic in-memory provider keyed by queried symbol
type fakeMarket struct {
	details    map[string]*contracts.CompanyDetail
	aggs       map[string]*contracts.StockAggregate
	detailErrs map[string]error
	aggErrs    map[string]error
}

func newFakeMarket() *fakeMarket {
	return &fakeMarket{
		details:    map[string]*contracts.CompanyDetail{},
		aggs:       map[string]*contracts.StockAggregate{},
		detailErrs: map[string]error{},
		aggErrs:    map[string]error{},
	}
}

// add registers a company with a market cap and a bar on every date
func (f *fakeMarket) add(symbol, name string, marketCap float64) {
	f.details[symbol] = &contracts.CompanyDetail{
		Name:              str(name),
		MarketCap:         f64(marketCap),
		SharesOutstanding: f64(marketCap / 100),
		Currency:          str("usd"),
	}
	f.aggs[symbol] = &contracts.StockAggregate{
		Close:     100,
		Open:      99,
		High:      101,
		Low:       98,
		Volume:    1_000_000,
		VWAP:      f64(100.25),
		Timestamp: 1704171600000,
	}
}

func (f *fakeMarket) DailyAggregate(ctx context.Context, symbol string, date contracts.TradingDate) (*contracts.StockAggregate, error) {
	if err := f.aggErrs[symbol]; err != nil {
		return nil, err
	}
	agg, ok := f.aggs[symbol]
	if !ok {
		return nil, nil
	}
	out := *agg
	out.Date = date
	return &out, nil
}

func (f *fakeMarket) TickerDetails(ctx context.Context, symbol string, date contracts.TradingDate) (*contracts.CompanyDetail, error) {
	if err := f.detailErrs[symbol]; err != nil {
		return nil, err
	}
	d, ok := f.details[symbol]
	if !ok {
		return nil, nil
	}
	out := *d
	return &out, nil
}

// memStore records every Put
type memStore struct {
	mu      sync.Mutex
	objects map[string][]byte
	puts    int
	err     error
}

func newMemStore() *memStore {
	return &memStore{objects: map[string][]byte{}}
}

func (s *memStore) Put(ctx context.Context, key string, body []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	s.puts++
	s.objects[key] = append([]byte(nil), body...)
	return nil
}

// countingPacer counts waits
type countingPacer struct {
	waits int
}

func (p *countingPacer) Wait(ctx context.Context) error {
	p.waits++
	return ctx.Err()
}

var errUpstream = errors.New("upstream unavailable")

func newTestFetcher(provider MarketData) *Fetcher {
	return NewFetcher(provider, symbols.NewResolver(), pacing.NopSet(), logger.Nop())
}

func testUniverse(subgroup, index []string) *universe.Universe {
	return &universe.Universe{
		Subgroup: universe.Group{Name: "magnificent7", Tickers: subgroup},
		Index:    universe.Group{Name: "sp500", Tickers: index},
	}
}

func fixedClock() func() time.Time {
	ny, _ := time.LoadLocation("America/New_York")
	if ny == nil {
		ny = time.UTC
	}
	t := time.Date(2024, 1, 9, 6, 0, 0, 123456000, ny)
	return func() time.Time { return t }
}
