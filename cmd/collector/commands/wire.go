package commands

import (
	"context"
	"fmt"

	"github.com/wonny/mag7-collector/internal/collector"
	"github.com/wonny/mag7-collector/internal/external/polygon"
	"github.com/wonny/mag7-collector/internal/pacing"
	"github.com/wonny/mag7-collector/internal/symbols"
	"github.com/wonny/mag7-collector/internal/tradingday"
	"github.com/wonny/mag7-collector/internal/universe"
	"github.com/wonny/mag7-collector/pkg/config"
	"github.com/wonny/mag7-collector/pkg/database"
	"github.com/wonny/mag7-collector/pkg/httputil"
	"github.com/wonny/mag7-collector/pkg/logger"
	"github.com/wonny/mag7-collector/pkg/redis"
	"github.com/wonny/mag7-collector/pkg/storage"
)

// app holds the wired collection stack shared by the commands
type app struct {
	cfg      *config.Config
	log      *logger.Logger
	db       *database.DB
	rdb      *redis.Client
	resolver *tradingday.Resolver
	pipeline *collector.Pipeline
	handler  *collector.Handler
}

// newApp wires config → clients → pipeline → handler
func newApp(ctx context.Context) (*app, error) {
	// 1. Load config
	cfg, log, err := loadConfig()
	if err != nil {
		return nil, err
	}

	a := &app{cfg: cfg, log: log}

	// 2. Market clock
	a.resolver = tradingday.NewResolver(tradingday.LoadLocation(cfg.MarketTimezone), nil)

	// 3. Optional redis (shared pacing)
	a.rdb, err = redis.New(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("connect to redis: %w", err)
	}

	pacers, err := pacing.NewSet(cfg, a.rdb)
	if err != nil {
		a.close()
		return nil, fmt.Errorf("init pacing: %w", err)
	}

	// 4. Market data client
	httpClient := httputil.New(log, cfg.Polygon.HTTPTimeout)
	provider := polygon.NewClient(httpClient, cfg.Polygon.APIKey, cfg.Polygon.BaseURL, log)
	fetcher := collector.NewFetcher(provider, symbols.NewResolver(), pacers, log)

	// 5. Universe
	u, err := universe.Load(cfg.UniverseFile)
	if err != nil {
		a.close()
		return nil, fmt.Errorf("load universe: %w", err)
	}

	// 6. Storage
	store, err := storage.New(ctx, cfg, log)
	if err != nil {
		a.close()
		return nil, fmt.Errorf("init storage: %w", err)
	}

	opts := []collector.PipelineOption{collector.WithClock(a.resolver.Now)}

	// 7. Optional database membership
	if cfg.Database.URL != "" {
		a.db, err = database.New(ctx, cfg)
		if err != nil {
			a.close()
			return nil, fmt.Errorf("connect to database: %w", err)
		}
		opts = append(opts, collector.WithIndexSource(universe.NewPostgresSource(a.db.Pool)))
		log.Info("Index membership read from database")
	}

	// 8. Pipeline + trigger handler
	a.pipeline = collector.NewPipeline(u, fetcher, store, log, opts...)
	a.handler = collector.NewHandler(a.pipeline, a.resolver, log)

	log.WithFields(map[string]interface{}{
		"subgroup":      u.Subgroup.Name,
		"subgroup_size": len(u.Subgroup.Tickers),
		"index":         u.Index.Name,
		"index_size":    len(u.Index.Tickers),
		"storage":       cfg.Storage.Backend,
		"pacing":        cfg.Pacing.Mode,
	}).Info("Collector initialized")

	return a, nil
}

func (a *app) close() {
	if a.db != nil {
		a.db.Close()
	}
	if a.rdb != nil {
		_ = a.rdb.Close()
	}
}
