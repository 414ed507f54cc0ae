package collector

import (
	"context"
	"fmt"
	"time"

	"github.com/wonny/mag7-collector/internal/contracts"
	"github.com/wonny/mag7-collector/internal/universe"
	"github.com/wonny/mag7-collector/pkg/logger"
	"github.com/wonny/mag7-collector/pkg/storage"
)

// IndexSource supplies index membership as of a date (e.g. a database table).
// Without one the universe's static index list is used.
type IndexSource interface {
	Tickers(ctx context.Context, name string, asOf contracts.TradingDate) ([]string, error)
}

// RunResult is what one successful run produced
type RunResult struct {
	TradingDate contracts.TradingDate
	StorageKey  string
	Snapshot    *contracts.Snapshot
}

// Pipeline runs index pass → subgroup pass → assemble → store for one date
// ⭐ SSOT: 수집 파이프라인 순서는 여기서만
type Pipeline struct {
	universe    *universe.Universe
	index       *IndexAggregator
	subgroup    *SubgroupCollector
	store       storage.ObjectStore
	indexSource IndexSource
	clock       func() time.Time
	logger      *logger.Logger
}

// PipelineOption configures a Pipeline
type PipelineOption func(*Pipeline)

// WithClock sets the source of the collection timestamp
func WithClock(clock func() time.Time) PipelineOption {
	return func(p *Pipeline) {
		if clock != nil {
			p.clock = clock
		}
	}
}

// WithIndexSource reads index membership from src instead of the static list
func WithIndexSource(src IndexSource) PipelineOption {
	return func(p *Pipeline) {
		p.indexSource = src
	}
}

// NewPipeline wires the collection stages around one fetcher
func NewPipeline(u *universe.Universe, fetcher *Fetcher, store storage.ObjectStore, log *logger.Logger, opts ...PipelineOption) *Pipeline {
	p := &Pipeline{
		universe: u,
		index:    NewIndexAggregator(fetcher, log),
		subgroup: NewSubgroupCollector(fetcher, log),
		store:    store,
		clock:    time.Now,
		logger:   log.WithModule("pipeline"),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Universe returns the configured universe
func (p *Pipeline) Universe() *universe.Universe {
	return p.universe
}

// Run collects, assembles and stores the snapshot for date.
// Per-ticker problems are recorded in the snapshot; only structural errors are returned.
func (p *Pipeline) Run(ctx context.Context, date contracts.TradingDate) (*RunResult, error) {
	if len(p.universe.Subgroup.Tickers) == 0 {
		return nil, ErrEmptySubgroup
	}

	indexTickers, err := p.indexTickers(ctx, date)
	if err != nil {
		return nil, err
	}

	log := p.logger.WithFields(map[string]interface{}{
		"trading_date": date,
		"subgroup":     p.universe.Subgroup.Name,
		"index":        p.universe.Index.Name,
	})
	log.Info("Collection run started")

	indexResult := p.index.Aggregate(ctx, indexTickers, date)
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("run cancelled during index pass: %w", err)
	}

	subgroupResult, err := p.subgroup.Collect(ctx, p.universe.Subgroup.Tickers, date, indexResult.TotalMarketCap)
	if err != nil {
		return nil, fmt.Errorf("collect subgroup: %w", err)
	}
	if err := ctx.Err(); err != nil {
		return nil, fmt.Errorf("run cancelled during subgroup pass: %w", err)
	}

	snapshot := AssembleSnapshot(date, p.clock(), indexResult, subgroupResult)

	body, err := EncodeSnapshot(snapshot)
	if err != nil {
		return nil, err
	}

	key := StorageKey(p.universe.Subgroup.Name, date)
	if err := p.store.Put(ctx, key, body); err != nil {
		return nil, fmt.Errorf("store snapshot: %w", err)
	}

	log.WithFields(map[string]interface{}{
		"storage_key":           key,
		"companies":             len(snapshot.Companies),
		"subgroup_pct_of_index": snapshot.ConcentrationMetrics.SubgroupPctOfIndex,
	}).Info("Collection run completed")

	return &RunResult{
		TradingDate: date,
		StorageKey:  key,
		Snapshot:    snapshot,
	}, nil
}

func (p *Pipeline) indexTickers(ctx context.Context, date contracts.TradingDate) ([]string, error) {
	if p.indexSource == nil {
		return p.universe.Index.Tickers, nil
	}

	tickers, err := p.indexSource.Tickers(ctx, p.universe.Index.Name, date)
	if err != nil {
		return nil, fmt.Errorf("load index membership: %w", err)
	}
	return tickers, nil
}
