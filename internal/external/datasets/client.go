// Package datasets reads packaged constituent lists published as CSV.
package datasets

import (
	"bytes"
	"context"
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"github.com/wonny/screener/pkg/httputil"
	"github.com/wonny/screener/pkg/logger"
)

// Client fetches a constituent dataset
type Client struct {
	httpClient *httputil.Client
	logger     *logger.Logger
	url        string
}

// NewClient creates a new dataset client for one CSV URL
func NewClient(httpClient *httputil.Client, url string, log *logger.Logger) *Client {
	return &Client{
		httpClient: httpClient,
		logger:     log,
		url:        url,
	}
}

// FetchSymbols downloads the dataset and returns its Symbol column
func (c *Client) FetchSymbols(ctx context.Context) ([]string, error) {
	body, err := c.httpClient.GetBytes(ctx, c.url)
	if err != nil {
		return nil, fmt.Errorf("dataset request failed: %w", err)
	}

	symbols, err := ParseSymbols(bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("dataset %s: %w", c.url, err)
	}

	c.logger.WithFields(map[string]interface{}{
		"url":   c.url,
		"count": len(symbols),
	}).Debug("Fetched constituent dataset")
	return symbols, nil
}

// ParseSymbols reads a CSV with a header row and returns the Symbol column
func ParseSymbols(r io.Reader) ([]string, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err != nil {
		return nil, fmt.Errorf("read header: %w", err)
	}

	col := -1
	for i, h := range header {
		if strings.EqualFold(strings.TrimSpace(strings.TrimPrefix(h, "\ufeff")), "symbol") {
			col = i
			break
		}
	}
	if col < 0 {
		return nil, fmt.Errorf("no Symbol column in header %v", header)
	}

	var symbols []string
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read row: %w", err)
		}
		if len(record) <= col {
			continue
		}
		if sym := strings.TrimSpace(record[col]); sym != "" {
			symbols = append(symbols, strings.ReplaceAll(sym, ".", "-"))
		}
	}
	return symbols, nil
}
