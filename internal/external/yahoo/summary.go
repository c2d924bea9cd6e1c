package yahoo

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/wonny/screener/internal/contracts"
)

// maxGradeChanges bounds how much analyst history a snapshot keeps
const maxGradeChanges = 20

// summaryResponse is the v10 quoteSummary payload
type summaryResponse struct {
	QuoteSummary struct {
		Result []quoteSummary `json:"result"`
		Error  *APIError      `json:"error"`
	} `json:"quoteSummary"`
}

type quoteSummary struct {
	Price *struct {
		ShortName          string `json:"shortName"`
		LongName           string `json:"longName"`
		RegularMarketPrice value  `json:"regularMarketPrice"`
		MarketCap          value  `json:"marketCap"`
	} `json:"price"`

	SummaryProfile *struct {
		Sector   string `json:"sector"`
		Industry string `json:"industry"`
	} `json:"summaryProfile"`

	SummaryDetail *struct {
		TrailingPE    value `json:"trailingPE"`
		AverageVolume value `json:"averageVolume"`
		MarketCap     value `json:"marketCap"`
	} `json:"summaryDetail"`

	FinancialData *struct {
		CurrentPrice      value  `json:"currentPrice"`
		RevenueGrowth     value  `json:"revenueGrowth"`
		EarningsGrowth    value  `json:"earningsGrowth"`
		DebtToEquity      value  `json:"debtToEquity"` // percent
		CurrentRatio      value  `json:"currentRatio"`
		ProfitMargins     value  `json:"profitMargins"`
		OperatingMargins  value  `json:"operatingMargins"`
		ReturnOnEquity    value  `json:"returnOnEquity"`
		RecommendationKey string `json:"recommendationKey"`
	} `json:"financialData"`

	DefaultKeyStatistics *struct {
		PegRatio                value `json:"pegRatio"`
		ForwardPE               value `json:"forwardPE"`
		HeldPercentInstitutions value `json:"heldPercentInstitutions"`
	} `json:"defaultKeyStatistics"`

	CalendarEvents *struct {
		Earnings struct {
			EarningsDate []value `json:"earningsDate"`
		} `json:"earnings"`
	} `json:"calendarEvents"`

	UpgradeDowngradeHistory *struct {
		History []struct {
			EpochGradeDate int64  `json:"epochGradeDate"`
			Firm           string `json:"firm"`
			ToGrade        string `json:"toGrade"`
			FromGrade      string `json:"fromGrade"`
			Action         string `json:"action"`
		} `json:"history"`
	} `json:"upgradeDowngradeHistory"`
}

func (c *Client) fetchSummary(ctx context.Context, ticker string, modules []string) (*quoteSummary, error) {
	var resp summaryResponse
	if err := c.getJSON(ctx, c.summaryURL(ticker, modules), &resp); err != nil {
		return nil, fmt.Errorf("quoteSummary request failed: %w", err)
	}
	if resp.QuoteSummary.Error != nil {
		return nil, resp.QuoteSummary.Error
	}
	if len(resp.QuoteSummary.Result) == 0 {
		return nil, fmt.Errorf("quoteSummary: no result")
	}
	return &resp.QuoteSummary.Result[0], nil
}

// fundamentals maps vendor fields to metric keys. Absent values stay absent.
func (q *quoteSummary) fundamentals() contracts.Fundamentals {
	f := contracts.Fundamentals{}
	put := func(key string, v value) {
		if raw, ok := v.get(); ok {
			f[key] = raw
		}
	}

	if fd := q.FinancialData; fd != nil {
		put(contracts.MetricRevenueGrowth, fd.RevenueGrowth)
		put(contracts.MetricEarningsGrowth, fd.EarningsGrowth)
		put(contracts.MetricCurrentRatio, fd.CurrentRatio)
		put(contracts.MetricProfitMargin, fd.ProfitMargins)
		put(contracts.MetricOperatingMargin, fd.OperatingMargins)
		put(contracts.MetricROE, fd.ReturnOnEquity)
		// Yahoo reports D/E in percent (45.2 → 0.452)
		if de, ok := fd.DebtToEquity.get(); ok {
			f[contracts.MetricDebtToEquity] = de / 100
		}
	}
	if ks := q.DefaultKeyStatistics; ks != nil {
		put(contracts.MetricPEGRatio, ks.PegRatio)
		put(contracts.MetricForwardPE, ks.ForwardPE)
		put(contracts.MetricInstitutionalHeld, ks.HeldPercentInstitutions)
	}
	if sd := q.SummaryDetail; sd != nil {
		put(contracts.MetricTrailingPE, sd.TrailingPE)
		put(contracts.MetricAverageVolume, sd.AverageVolume)
	}
	return f
}

// metadata extracts descriptive data. Earnings dates before now are ignored.
func (q *quoteSummary) metadata(now time.Time) contracts.StockMetadata {
	var m contracts.StockMetadata

	if p := q.Price; p != nil {
		m.Name = p.LongName
		if m.Name == "" {
			m.Name = p.ShortName
		}
		m.CurrentPrice, _ = p.RegularMarketPrice.get()
		m.MarketCap, _ = p.MarketCap.get()
	}
	if m.MarketCap == 0 && q.SummaryDetail != nil {
		m.MarketCap, _ = q.SummaryDetail.MarketCap.get()
	}
	if sp := q.SummaryProfile; sp != nil {
		m.Sector = sp.Sector
		m.Industry = sp.Industry
	}
	if fd := q.FinancialData; fd != nil {
		m.RecommendationKey = fd.RecommendationKey
		if m.CurrentPrice == 0 {
			m.CurrentPrice, _ = fd.CurrentPrice.get()
		}
	}

	if ce := q.CalendarEvents; ce != nil {
		for _, d := range ce.Earnings.EarningsDate {
			raw, ok := d.get()
			if !ok {
				continue
			}
			t := time.Unix(int64(raw), 0).UTC()
			if t.Before(now) {
				continue
			}
			if m.NextEarningsDate == nil || t.Before(*m.NextEarningsDate) {
				m.NextEarningsDate = &t
			}
		}
	}

	if h := q.UpgradeDowngradeHistory; h != nil {
		for _, g := range h.History {
			m.GradeChanges = append(m.GradeChanges, contracts.GradeChange{
				Firm:      g.Firm,
				FromGrade: g.FromGrade,
				ToGrade:   g.ToGrade,
				Action:    g.Action,
				Date:      time.Unix(g.EpochGradeDate, 0).UTC(),
			})
		}
		sort.SliceStable(m.GradeChanges, func(i, j int) bool {
			return m.GradeChanges[i].Date.After(m.GradeChanges[j].Date)
		})
		if len(m.GradeChanges) > maxGradeChanges {
			m.GradeChanges = m.GradeChanges[:maxGradeChanges]
		}
	}
	return m
}

func (q *quoteSummary) profile(ticker string) *contracts.StockProfile {
	m := q.metadata(time.Time{})
	p := &contracts.StockProfile{
		Ticker:    ticker,
		Name:      m.Name,
		Sector:    m.Sector,
		Industry:  m.Industry,
		MarketCap: m.MarketCap,
		Price:     m.CurrentPrice,
	}
	if q.SummaryDetail != nil {
		p.AverageVolume, _ = q.SummaryDetail.AverageVolume.get()
	}
	return p
}
