package wikipedia

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/wonny/screener/pkg/httputil"
	"github.com/wonny/screener/pkg/logger"
)

// Client scrapes index constituent tables from Wikipedia
// ⭐ SSOT: Wikipedia 구성종목 스크래핑은 이 클라이언트에서만
type Client struct {
	httpClient   *httputil.Client
	logger       *logger.Logger
	sp500URL     string
	nasdaq100URL string
}

// NewClient creates a new Wikipedia client
func NewClient(httpClient *httputil.Client, sp500URL, nasdaq100URL string, log *logger.Logger) *Client {
	return &Client{
		httpClient:   httpClient,
		logger:       log,
		sp500URL:     sp500URL,
		nasdaq100URL: nasdaq100URL,
	}
}

// FetchSP500 returns the S&P 500 constituents in table order
func (c *Client) FetchSP500(ctx context.Context) ([]string, error) {
	return c.fetchTable(ctx, c.sp500URL, "constituents", "Symbol")
}

// FetchNasdaq100 returns the NASDAQ-100 constituents in table order
func (c *Client) FetchNasdaq100(ctx context.Context) ([]string, error) {
	return c.fetchTable(ctx, c.nasdaq100URL, "constituents", "Ticker", "Symbol")
}

func (c *Client) fetchTable(ctx context.Context, url, tableID string, headers ...string) ([]string, error) {
	body, err := c.httpClient.GetBytes(ctx, url)
	if err != nil {
		return nil, fmt.Errorf("wikipedia request failed: %w", err)
	}

	symbols, err := ParseSymbolTable(bytes.NewReader(body), tableID, headers...)
	if err != nil {
		return nil, fmt.Errorf("wikipedia %s: %w", url, err)
	}

	c.logger.WithFields(map[string]interface{}{
		"url":   url,
		"count": len(symbols),
	}).Debug("Fetched constituent table")
	return symbols, nil
}

// ParseSymbolTable extracts the ticker column from a constituent table.
// The table with id tableID wins; otherwise the first wikitable carrying one of
// the header names is used. A page without such a column is an error, since it
// means the page layout changed.
func ParseSymbolTable(r io.Reader, tableID string, headers ...string) ([]string, error) {
	doc, err := goquery.NewDocumentFromReader(r)
	if err != nil {
		return nil, fmt.Errorf("parse html: %w", err)
	}

	candidates := doc.Find("table#" + tableID)
	candidates = candidates.AddSelection(doc.Find("table.wikitable"))

	var symbols []string
	found := false

	candidates.EachWithBreak(func(_ int, table *goquery.Selection) bool {
		col := headerIndex(table, headers)
		if col < 0 {
			return true
		}
		found = true
		symbols = symbolsInColumn(table, col)
		return false
	})

	if !found {
		return nil, fmt.Errorf("no table with a %s column", strings.Join(headers, "/"))
	}
	return symbols, nil
}

// headerIndex finds the first column whose header matches one of names
func headerIndex(table *goquery.Selection, names []string) int {
	idx := -1
	table.Find("tr").First().Find("th").EachWithBreak(func(i int, th *goquery.Selection) bool {
		text := strings.TrimSpace(th.Text())
		for _, name := range names {
			if strings.EqualFold(text, name) {
				idx = i
				return false
			}
		}
		return true
	})
	return idx
}

func symbolsInColumn(table *goquery.Selection, col int) []string {
	var out []string
	table.Find("tr").Each(func(_ int, row *goquery.Selection) {
		cells := row.Find("td")
		if cells.Length() <= col {
			return
		}
		sym := strings.TrimSpace(cells.Eq(col).Text())
		if sym == "" {
			return
		}
		// BRK.B → BRK-B (시세 API 표기)
		out = append(out, strings.ReplaceAll(sym, ".", "-"))
	})
	return out
}
