package commands

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/wonny/screener/internal/brain"
	"github.com/wonny/screener/internal/contracts"
	"github.com/wonny/screener/internal/external/datasets"
	"github.com/wonny/screener/internal/external/wikipedia"
	"github.com/wonny/screener/internal/external/yahoo"
	"github.com/wonny/screener/internal/progress"
	"github.com/wonny/screener/internal/selection"
	"github.com/wonny/screener/internal/strategyconfig"
	"github.com/wonny/screener/internal/universe"
	"github.com/wonny/screener/pkg/config"
	"github.com/wonny/screener/pkg/httputil"
	"github.com/wonny/screener/pkg/logger"
	"github.com/wonny/screener/pkg/redis"
)

// deps holds everything a command needs, built once from env + strategy file
type deps struct {
	cfg        *config.Config
	log        *logger.Logger
	redis      *redis.Client
	yahoo      *yahoo.Client
	strategy   *strategyconfig.Config
	configHash string
	resolver   *universe.Resolver
	composite  *selection.CompositeScorer
	orch       *brain.Orchestrator
}

// initDeps wires config → logger → HTTP → sources → resolver → scorers → orchestrator
func initDeps() (*deps, error) {
	// 1. Load config
	cfg, err := config.Load()
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	if verbose {
		cfg.LogLevel = "debug"
	}

	// 2. Initialize logger
	log := logger.New(cfg)

	// 3. Strategy file
	path := strategyFile
	if path == "" {
		path = cfg.StrategyFile
	}
	strategy, _, err := strategyconfig.Load(path)
	if err != nil {
		return nil, fmt.Errorf("load strategy: %w", err)
	}
	for _, w := range strategyconfig.Warn(strategy) {
		log.WithField("code", w.Code).Warn(w.Message)
	}
	hash, err := strategyconfig.Hash(strategy)
	if err != nil {
		return nil, fmt.Errorf("hash strategy: %w", err)
	}

	// 4. Optional Redis cache
	rdb, err := redis.New(cfg)
	if err != nil {
		log.WithError(err).Warn("Redis unavailable, continuing without cache")
		rdb = redis.Disabled()
	}
	cache := redis.NewCache(rdb, "screener")

	// 5. HTTP + external clients
	httpClient := httputil.New(cfg, log)
	yahooClient := yahoo.NewClient(httpClient, cfg.Sources.YahooBaseURL, cfg.Sources.YahooScreenerURL, log).
		WithCache(cache, cfg.Redis.CacheTTL)
	wikiClient := wikipedia.NewClient(httpClient, cfg.Sources.WikipediaSP500URL, cfg.Sources.WikipediaNasdaq100, log)
	datasetClient := datasets.NewClient(httpClient, cfg.Sources.DatasetSP500URL, log)

	// 6. Universe resolver
	resolver := universe.NewResolver(log).
		WithSource(universe.NewSource(contracts.SourcePrimary, wikiClient.FetchSP500)).
		WithSource(universe.NewSource(contracts.SourceSecondaryAPI, yahooClient.ScreenerSymbols)).
		WithSource(universe.NewSource(contracts.SourceTertiaryLibrary, datasetClient.FetchSymbols)).
		WithSource(universe.NewSource(contracts.SourceNasdaq100, wikiClient.FetchNasdaq100)).
		WithBands(strategy.Universe.Bands).
		WithRetry(strategy.Universe.Attempts, strategy.Universe.BackoffDuration()).
		WithProfiles(yahooClient).
		WithUniverseFile(cfg.UniverseFile).
		WithCache(cache)

	// 7. Composite scorer
	composite, err := selection.NewCompositeScorer(strategy.Weights, strategy.Ratings, log)
	if err != nil {
		return nil, fmt.Errorf("composite scorer: %w", err)
	}

	// 8. Orchestrator
	orch := brain.NewOrchestrator(resolver, yahooClient, yahooClient, composite, strategy, log).
		WithObserver(progress.NewLogObserver(log))

	return &deps{
		cfg:        cfg,
		log:        log,
		redis:      rdb,
		yahoo:      yahooClient,
		strategy:   strategy,
		configHash: hash,
		resolver:   resolver,
		composite:  composite,
		orch:       orch,
	}, nil
}

// Close releases the Redis connection
func (d *deps) Close() {
	if err := d.redis.Close(); err != nil {
		d.log.WithError(err).Warn("Failed to close redis")
	}
}

// signalContext is cancelled on Ctrl+C or SIGTERM
func signalContext() (context.Context, context.CancelFunc) {
	return signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
}
