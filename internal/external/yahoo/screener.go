package yahoo

import (
	"context"
	"encoding/json"
	"fmt"
)

// screenerPageSize asks for more rows than the index holds so one page covers it
const screenerPageSize = 600

type screenerQuery struct {
	Operator string        `json:"operator"`
	Operands []interface{} `json:"operands"`
}

type screenerRequest struct {
	Size       int           `json:"size"`
	Offset     int           `json:"offset"`
	SortField  string        `json:"sortField"`
	SortType   string        `json:"sortType"`
	QuoteType  string        `json:"quoteType"`
	Query      screenerQuery `json:"query"`
	UserID     string        `json:"userId"`
	UserIDType string        `json:"userIdType"`
}

type screenerResponse struct {
	Finance struct {
		Result []struct {
			Quotes []struct {
				Symbol string `json:"symbol"`
			} `json:"quotes"`
		} `json:"result"`
		Error *APIError `json:"error"`
	} `json:"finance"`
}

// sp500ScreenerRequest selects US equities that belong to ^GSPC
func sp500ScreenerRequest() screenerRequest {
	return screenerRequest{
		Size:      screenerPageSize,
		SortField: "ticker",
		SortType:  "ASC",
		QuoteType: "EQUITY",
		Query: screenerQuery{
			Operator: "and",
			Operands: []interface{}{
				screenerQuery{Operator: "eq", Operands: []interface{}{"region", "us"}},
				screenerQuery{Operator: "eq", Operands: []interface{}{"index", "^GSPC"}},
			},
		},
		UserIDType: "guid",
	}
}

// ScreenerSymbols lists S&P 500 members through the vendor screener endpoint
func (c *Client) ScreenerSymbols(ctx context.Context) ([]string, error) {
	resp, err := c.httpClient.PostJSON(ctx, c.screenerURL, sp500ScreenerRequest())
	if err != nil {
		return nil, fmt.Errorf("screener request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("screener: unexpected status %d", resp.StatusCode)
	}

	var payload screenerResponse
	if err := json.NewDecoder(resp.Body).Decode(&payload); err != nil {
		return nil, fmt.Errorf("screener: decode: %w", err)
	}
	if payload.Finance.Error != nil {
		return nil, payload.Finance.Error
	}
	if len(payload.Finance.Result) == 0 {
		return nil, fmt.Errorf("screener: unexpected response structure")
	}

	quotes := payload.Finance.Result[0].Quotes
	symbols := make([]string, 0, len(quotes))
	for _, q := range quotes {
		if q.Symbol != "" {
			symbols = append(symbols, q.Symbol)
		}
	}

	c.logger.WithField("count", len(symbols)).Debug("Fetched screener symbols")
	return symbols, nil
}
