package universe

import (
	"context"
	"fmt"
	"strings"

	"github.com/wonny/screener/internal/contracts"
	"github.com/wonny/screener/pkg/logger"
)

// ProfileCheck returns an exclusion reason, or "" to keep the ticker
type ProfileCheck func(p *contracts.StockProfile) string

// LiquidityFilter holds tradability criteria
type LiquidityFilter struct {
	MinMarketCap float64 `json:"min_market_cap" yaml:"min_market_cap"` // USD
	MaxMarketCap float64 `json:"max_market_cap" yaml:"max_market_cap"` // USD, 0 = no cap
	MinPrice     float64 `json:"min_price" yaml:"min_price"`
	MinAvgVolume float64 `json:"min_avg_volume" yaml:"min_avg_volume"` // shares per day
}

// DefaultLiquidityFilter returns mid-to-large caps above $10 trading 500k shares a day
func DefaultLiquidityFilter() LiquidityFilter {
	return LiquidityFilter{
		MinMarketCap: 2e9,
		MaxMarketCap: 200e9,
		MinPrice:     10,
		MinAvgVolume: 500_000,
	}
}

// Check returns the first failed criterion
func (f LiquidityFilter) Check(p *contracts.StockProfile) string {
	// 우선순위 순서로 체크

	// 1. 시가총액
	if p.MarketCap < f.MinMarketCap {
		return fmt.Sprintf("market cap below minimum ($%.1fB)", p.MarketCap/1e9)
	}
	if f.MaxMarketCap > 0 && p.MarketCap > f.MaxMarketCap {
		return fmt.Sprintf("market cap above maximum ($%.1fB)", p.MarketCap/1e9)
	}

	// 2. 저가주
	if p.Price < f.MinPrice {
		return fmt.Sprintf("price below minimum ($%.2f)", p.Price)
	}

	// 3. 거래량
	if p.AverageVolume < f.MinAvgVolume {
		return fmt.Sprintf("average volume below minimum (%.0f)", p.AverageVolume)
	}

	return ""
}

// SectorCheck keeps tickers whose sector is one of sectors
func SectorCheck(sectors []string) ProfileCheck {
	return func(p *contracts.StockProfile) string {
		for _, s := range sectors {
			if strings.EqualFold(p.Sector, s) {
				return ""
			}
		}
		if p.Sector == "" {
			return "sector unknown"
		}
		return fmt.Sprintf("sector %s not in %s", p.Sector, strings.Join(sectors, "/"))
	}
}

// MinMarketCapCheck drops tickers below a market cap
func MinMarketCapCheck(threshold float64) ProfileCheck {
	return func(p *contracts.StockProfile) string {
		if p.MarketCap < threshold {
			return fmt.Sprintf("market cap below minimum ($%.1fB)", p.MarketCap/1e9)
		}
		return ""
	}
}

// FilterResult is the outcome of a profile filter pass
type FilterResult struct {
	Kept     []string
	Excluded map[string]string // ticker → reason
}

// FilterProfiles looks up each ticker's profile in order and keeps those passing every check.
// A profile lookup failure excludes that ticker. It stops once limit tickers are kept
// (limit <= 0 scans everything) or ctx is cancelled.
func FilterProfiles(ctx context.Context, profiles contracts.ProfileProvider, symbols []string, limit int, log *logger.Logger, checks ...ProfileCheck) (*FilterResult, error) {
	result := &FilterResult{
		Kept:     make([]string, 0),
		Excluded: make(map[string]string),
	}

	for _, ticker := range symbols {
		if limit > 0 && len(result.Kept) >= limit {
			break
		}
		if err := ctx.Err(); err != nil {
			return result, err
		}

		profile, err := profiles.GetProfile(ctx, ticker)
		if err != nil {
			if ctx.Err() != nil {
				return result, ctx.Err()
			}
			result.Excluded[ticker] = fmt.Sprintf("profile unavailable: %v", err)
			continue
		}

		if reason := runChecks(profile, checks); reason != "" {
			result.Excluded[ticker] = reason
			continue
		}
		result.Kept = append(result.Kept, ticker)
	}

	log.WithFields(map[string]interface{}{
		"input":    len(symbols),
		"kept":     len(result.Kept),
		"excluded": len(result.Excluded),
	}).Debug("Profile filter applied")
	return result, nil
}

func runChecks(p *contracts.StockProfile, checks []ProfileCheck) string {
	for _, check := range checks {
		if check == nil {
			continue
		}
		if reason := check(p); reason != "" {
			return reason
		}
	}
	return ""
}
