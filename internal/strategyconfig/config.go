package strategyconfig

import (
	"time"

	"github.com/wonny/screener/internal/contracts"
	"github.com/wonny/screener/internal/selection"
	"github.com/wonny/screener/internal/universe"
)

// Config는 스크리닝 전략의 전체 설정
type Config struct {
	Meta      Meta                       `yaml:"meta" json:"meta"`
	Weights   selection.Weights          `yaml:"weights" json:"weights"`
	Ratings   selection.RatingThresholds `yaml:"ratings" json:"ratings"`
	Screening Screening                  `yaml:"screening" json:"screening"`
	Universe  Universe                   `yaml:"universe" json:"universe"`
}

// Meta 메타 정보
type Meta struct {
	StrategyID string `yaml:"strategy_id" json:"strategy_id"`
	Version    string `yaml:"version" json:"version"`
}

// Screening: 통과 기준과 상위 N 선정
type Screening struct {
	MinScore  float64 `yaml:"min_score" json:"min_score"`
	TopN      int     `yaml:"top_n" json:"top_n"`
	SectorCap int     `yaml:"sector_cap" json:"sector_cap"` // 섹터당 최대 종목 수
	MaxStocks int     `yaml:"max_stocks" json:"max_stocks"`
}

// Universe: 소스 검증 밴드, 재시도, 유동성 필터
type Universe struct {
	Bands     universe.Bands           `yaml:"bands" json:"bands"`
	Attempts  int                      `yaml:"attempts" json:"attempts"`
	Backoff   string                   `yaml:"backoff" json:"backoff"` // Go duration, first retry delay
	Liquidity universe.LiquidityFilter `yaml:"liquidity" json:"liquidity"`
}

// BackoffDuration parses Backoff; Validate guarantees it parses
func (u Universe) BackoffDuration() time.Duration {
	d, err := time.ParseDuration(u.Backoff)
	if err != nil {
		return universe.DefaultBackoff
	}
	return d
}

// Default returns the built-in strategy
func Default() *Config {
	return &Config{
		Meta: Meta{
			StrategyID: "us_equity_composite",
			Version:    "1",
		},
		Weights: selection.DefaultWeights(),
		Ratings: selection.DefaultRatingThresholds(),
		Screening: Screening{
			MinScore:  60,
			TopN:      15,
			SectorCap: 3,
			MaxStocks: 500,
		},
		Universe: Universe{
			Bands:     universe.DefaultBands(),
			Attempts:  universe.DefaultAttempts,
			Backoff:   universe.DefaultBackoff.String(),
			Liquidity: universe.DefaultLiquidityFilter(),
		},
	}
}

// Band returns the configured band of a source
func (c *Config) Band(kind contracts.SourceKind) universe.Band {
	return c.Universe.Bands.For(kind)
}
