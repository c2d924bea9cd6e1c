package contracts

import (
	"sort"
	"time"
)

// PriceBar is one daily OHLCV record
type PriceBar struct {
	Date   time.Time `json:"date"`
	Open   float64   `json:"open"`
	High   float64   `json:"high"`
	Low    float64   `json:"low"`
	Close  float64   `json:"close"`
	Volume float64   `json:"volume"`
}

// PriceSeries is chronologically increasing with no duplicate dates.
// Build it through NewPriceSeries; never mutate it afterwards.
type PriceSeries []PriceBar

// NewPriceSeries copies bars, sorts them by date and keeps the last bar seen for a repeated date
func NewPriceSeries(bars []PriceBar) PriceSeries {
	if len(bars) == 0 {
		return PriceSeries{}
	}

	sorted := make([]PriceBar, len(bars))
	copy(sorted, bars)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].Date.Before(sorted[j].Date)
	})

	out := make(PriceSeries, 0, len(sorted))
	for _, b := range sorted {
		if n := len(out); n > 0 && sameDay(out[n-1].Date, b.Date) {
			out[n-1] = b
			continue
		}
		out = append(out, b)
	}
	return out
}

func sameDay(a, b time.Time) bool {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	return ay == by && am == bm && ad == bd
}

// Len returns the number of bars
func (p PriceSeries) Len() int { return len(p) }

// Last returns the most recent bar
func (p PriceSeries) Last() (PriceBar, bool) {
	if len(p) == 0 {
		return PriceBar{}, false
	}
	return p[len(p)-1], true
}

// Closes returns the close column
func (p PriceSeries) Closes() []float64 {
	out := make([]float64, len(p))
	for i, b := range p {
		out[i] = b.Close
	}
	return out
}

// Highs returns the high column
func (p PriceSeries) Highs() []float64 {
	out := make([]float64, len(p))
	for i, b := range p {
		out[i] = b.High
	}
	return out
}

// Lows returns the low column
func (p PriceSeries) Lows() []float64 {
	out := make([]float64, len(p))
	for i, b := range p {
		out[i] = b.Low
	}
	return out
}

// Volumes returns the volume column
func (p PriceSeries) Volumes() []float64 {
	out := make([]float64, len(p))
	for i, b := range p {
		out[i] = b.Volume
	}
	return out
}

// Fundamentals metric keys.
// Growth, margin, ROE and ownership values are fractions (0.35 = 35%).
// DebtToEquity is a plain ratio (0.3 = 30% debt per unit of equity).
const (
	MetricRevenueGrowth     = "revenueGrowth"
	MetricEarningsGrowth    = "earningsGrowth"
	MetricDebtToEquity      = "debtToEquity"
	MetricCurrentRatio      = "currentRatio"
	MetricProfitMargin      = "profitMargin"
	MetricOperatingMargin   = "operatingMargin"
	MetricROE               = "roe"
	MetricPEGRatio          = "pegRatio"
	MetricTrailingPE        = "trailingPE"
	MetricForwardPE         = "forwardPE"
	MetricInstitutionalHeld = "heldPercentInstitutions"
	MetricAverageVolume     = "averageVolume"
)

// Fundamentals maps metric keys to values. A missing key means unknown, which is not zero.
type Fundamentals map[string]float64

// Get returns a metric and whether it is known
func (f Fundamentals) Get(key string) (float64, bool) {
	if f == nil {
		return 0, false
	}
	v, ok := f[key]
	return v, ok
}

// GradeChange is one analyst rating action
type GradeChange struct {
	Firm      string    `json:"firm"`
	FromGrade string    `json:"from_grade"`
	ToGrade   string    `json:"to_grade"`
	Action    string    `json:"action"` // up, down, main, init, reit
	Date      time.Time `json:"date"`
}

// StockMetadata holds descriptive data about a listing
type StockMetadata struct {
	Name              string        `json:"name"`
	Sector            string        `json:"sector"`
	Industry          string        `json:"industry"`
	MarketCap         float64       `json:"market_cap"`
	CurrentPrice      float64       `json:"current_price"`
	RecommendationKey string        `json:"recommendation_key"`
	NextEarningsDate  *time.Time    `json:"next_earnings_date,omitempty"`
	GradeChanges      []GradeChange `json:"grade_changes,omitempty"` // newest first
}

// StockSnapshot aggregates everything one scoring pass needs for a ticker
// ⭐ SSOT: MarketDataProvider → ComponentScorer 데이터 전달
type StockSnapshot struct {
	Ticker       string        `json:"ticker"`
	Prices       PriceSeries   `json:"prices"`
	Fundamentals Fundamentals  `json:"fundamentals"`
	Meta         StockMetadata `json:"meta"`
	FetchedAt    time.Time     `json:"fetched_at"`
}

// Price returns the quoted price, falling back to the last close
func (s *StockSnapshot) Price() float64 {
	if s.Meta.CurrentPrice > 0 {
		return s.Meta.CurrentPrice
	}
	if last, ok := s.Prices.Last(); ok {
		return last.Close
	}
	return 0
}

// StockProfile is the lightweight descriptive record used by universe filters
type StockProfile struct {
	Ticker        string  `json:"ticker"`
	Name          string  `json:"name"`
	Sector        string  `json:"sector"`
	Industry      string  `json:"industry"`
	MarketCap     float64 `json:"market_cap"`
	Price         float64 `json:"price"`
	AverageVolume float64 `json:"average_volume"`
}
