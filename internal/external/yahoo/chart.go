package yahoo

import (
	"context"
	"fmt"
	"time"

	"github.com/wonny/screener/internal/contracts"
)

// chartResponse is the v8 chart payload. Missing bars come back as null.
type chartResponse struct {
	Chart struct {
		Result []struct {
			Timestamp  []int64 `json:"timestamp"`
			Indicators struct {
				Quote []struct {
					Open   []*float64 `json:"open"`
					High   []*float64 `json:"high"`
					Low    []*float64 `json:"low"`
					Close  []*float64 `json:"close"`
					Volume []*float64 `json:"volume"`
				} `json:"quote"`
			} `json:"indicators"`
		} `json:"result"`
		Error *APIError `json:"error"`
	} `json:"chart"`
}

// FetchHistory returns one year of daily bars
func (c *Client) FetchHistory(ctx context.Context, ticker string) (contracts.PriceSeries, error) {
	var resp chartResponse
	if err := c.getJSON(ctx, c.chartURL(ticker), &resp); err != nil {
		return nil, fmt.Errorf("chart request failed: %w", err)
	}
	return parseChart(&resp)
}

func parseChart(resp *chartResponse) (contracts.PriceSeries, error) {
	if resp.Chart.Error != nil {
		return nil, resp.Chart.Error
	}
	if len(resp.Chart.Result) == 0 {
		return nil, fmt.Errorf("chart: no result")
	}

	result := resp.Chart.Result[0]
	if len(result.Indicators.Quote) == 0 {
		return contracts.PriceSeries{}, nil
	}
	q := result.Indicators.Quote[0]

	bars := make([]contracts.PriceBar, 0, len(result.Timestamp))
	for i, ts := range result.Timestamp {
		closePx, ok := at(q.Close, i)
		if !ok {
			continue // 휴장일 등 null bar
		}
		open, _ := at(q.Open, i)
		high, _ := at(q.High, i)
		low, _ := at(q.Low, i)
		vol, _ := at(q.Volume, i)

		bars = append(bars, contracts.PriceBar{
			Date:   time.Unix(ts, 0).UTC(),
			Open:   orDefault(open, closePx),
			High:   orDefault(high, closePx),
			Low:    orDefault(low, closePx),
			Close:  closePx,
			Volume: vol,
		})
	}

	return contracts.NewPriceSeries(bars), nil
}

func at(values []*float64, i int) (float64, bool) {
	if i >= len(values) || values[i] == nil {
		return 0, false
	}
	return *values[i], true
}

func orDefault(v, fallback float64) float64 {
	if v == 0 {
		return fallback
	}
	return v
}
