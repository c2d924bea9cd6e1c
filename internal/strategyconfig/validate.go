package strategyconfig

import (
	"fmt"
	"time"

	"github.com/wonny/screener/internal/contracts"
)

// ValidationError 검증 실패 (프로그램 중단)
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// Unwrap lets errors.Is match contracts.ErrConfiguration
func (e ValidationError) Unwrap() error {
	return contracts.ErrConfiguration
}

// Warning 권장 위반 (경고만)
type Warning struct {
	Code    string
	Message string
}

// Validate checks all required constraints
// 실패 시 error 반환 (프로그램 중단)
func Validate(cfg *Config) error {
	// === Weights / Ratings ===
	if err := cfg.Weights.Validate(); err != nil {
		return err
	}
	if err := cfg.Ratings.Validate(); err != nil {
		return err
	}

	// === Screening ===
	s := cfg.Screening
	if s.MinScore < 0 || s.MinScore > 100 {
		return ValidationError{"screening.min_score", "must be in [0, 100]"}
	}
	if s.TopN < 0 {
		return ValidationError{"screening.top_n", "must be >= 0"}
	}
	if s.SectorCap < 0 {
		return ValidationError{"screening.sector_cap", "must be >= 0"}
	}
	if s.MaxStocks <= 0 {
		return ValidationError{"screening.max_stocks", "must be > 0"}
	}

	// === Universe ===
	for kind, band := range cfg.Universe.Bands {
		if err := band.Validate(); err != nil {
			return ValidationError{fmt.Sprintf("universe.bands.%s", kind), err.Error()}
		}
	}
	if cfg.Universe.Attempts < 1 {
		return ValidationError{"universe.attempts", "must be >= 1"}
	}
	if d, err := time.ParseDuration(cfg.Universe.Backoff); err != nil || d < 0 {
		return ValidationError{"universe.backoff", "must be a non-negative duration (e.g. 1s)"}
	}
	l := cfg.Universe.Liquidity
	if l.MinMarketCap < 0 || l.MinPrice < 0 || l.MinAvgVolume < 0 {
		return ValidationError{"universe.liquidity", "minimums must be >= 0"}
	}
	if l.MaxMarketCap != 0 && l.MaxMarketCap < l.MinMarketCap {
		return ValidationError{"universe.liquidity.max_market_cap", "must be >= min_market_cap"}
	}

	return nil
}

// Warn checks recommended constraints (non-fatal)
func Warn(cfg *Config) []Warning {
	var warnings []Warning

	// 최소 점수가 HOLD 기준보다 낮으면 PASS 등급도 통과
	if cfg.Screening.MinScore < cfg.Ratings.Hold {
		warnings = append(warnings, Warning{
			Code:    "MIN_SCORE_BELOW_HOLD",
			Message: fmt.Sprintf("min_score %.1f admits PASS-rated results (hold threshold %.1f)", cfg.Screening.MinScore, cfg.Ratings.Hold),
		})
	}

	// 섹터 캡 × 섹터 수보다 큰 top_n은 채워지지 않을 수 있음
	if cfg.Screening.SectorCap > 0 && cfg.Screening.TopN > cfg.Screening.SectorCap*11 {
		warnings = append(warnings, Warning{
			Code:    "TOP_N_UNREACHABLE",
			Message: fmt.Sprintf("top_n %d exceeds sector_cap %d × 11 sectors", cfg.Screening.TopN, cfg.Screening.SectorCap),
		})
	}

	// 한 컴포넌트가 절반 이상이면 사실상 단일 팩터
	for _, w := range []float64{cfg.Weights.Fundamental, cfg.Weights.Technical, cfg.Weights.Catalyst, cfg.Weights.Sentiment} {
		if w > 0.5 {
			warnings = append(warnings, Warning{
				Code:    "DOMINANT_WEIGHT",
				Message: fmt.Sprintf("a single component carries %.0f%% of the final score", w*100),
			})
			break
		}
	}

	return warnings
}
