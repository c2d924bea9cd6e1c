package yahoo

import (
	"context"
	"fmt"

	"github.com/wonny/screener/internal/contracts"
	"github.com/wonny/screener/pkg/redis"
)

// GetSnapshot fetches price history and quoteSummary for one ticker.
// Either half may be missing, but not both.
// ⭐ SSOT: MarketDataProvider 구현
func (c *Client) GetSnapshot(ctx context.Context, ticker string) (*contracts.StockSnapshot, error) {
	ticker = contracts.NormalizeTicker(ticker)
	now := c.now()
	cacheKey := redis.SnapshotKey(ticker, now)

	if c.cache != nil {
		var cached contracts.StockSnapshot
		hit, err := c.cache.Get(ctx, cacheKey, &cached)
		if err != nil {
			c.logger.WithError(err).WithField("ticker", ticker).Warn("Snapshot cache read failed")
		}
		if hit {
			return &cached, nil
		}
	}

	prices, chartErr := c.FetchHistory(ctx, ticker)
	if chartErr != nil {
		if ctx.Err() != nil {
			return nil, &contracts.SnapshotError{Ticker: ticker, Err: ctx.Err()}
		}
		c.logger.WithFields(map[string]interface{}{
			"ticker": ticker,
			"error":  chartErr.Error(),
		}).Debug("Price history unavailable")
		prices = contracts.PriceSeries{}
	}

	summary, summaryErr := c.fetchSummary(ctx, ticker, snapshotModules)
	if summaryErr != nil && ctx.Err() != nil {
		return nil, &contracts.SnapshotError{Ticker: ticker, Err: ctx.Err()}
	}

	snap := &contracts.StockSnapshot{
		Ticker:       ticker,
		Prices:       prices,
		Fundamentals: contracts.Fundamentals{},
		FetchedAt:    now,
	}
	if summary != nil {
		snap.Fundamentals = summary.fundamentals()
		snap.Meta = summary.metadata(now)
	}

	if prices.Len() == 0 && len(snap.Fundamentals) == 0 {
		err := chartErr
		if err == nil {
			err = summaryErr
		}
		if err == nil {
			err = fmt.Errorf("no price history and no fundamentals")
		}
		return nil, &contracts.SnapshotError{Ticker: ticker, Err: err}
	}

	if c.cache != nil {
		if err := c.cache.Set(ctx, cacheKey, snap, c.cacheTTL); err != nil {
			c.logger.WithError(err).WithField("ticker", ticker).Warn("Snapshot cache write failed")
		}
	}
	return snap, nil
}

// GetProfile fetches the descriptive subset used by sector and liquidity filters
func (c *Client) GetProfile(ctx context.Context, ticker string) (*contracts.StockProfile, error) {
	ticker = contracts.NormalizeTicker(ticker)

	summary, err := c.fetchSummary(ctx, ticker, profileModules)
	if err != nil {
		return nil, &contracts.SnapshotError{Ticker: ticker, Err: err}
	}
	return summary.profile(ticker), nil
}
