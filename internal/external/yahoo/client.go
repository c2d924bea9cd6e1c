package yahoo

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/wonny/screener/pkg/httputil"
	"github.com/wonny/screener/pkg/logger"
	"github.com/wonny/screener/pkg/redis"
)

// snapshotModules are the quoteSummary modules a full snapshot needs
var snapshotModules = []string{
	"price",
	"summaryProfile",
	"summaryDetail",
	"financialData",
	"defaultKeyStatistics",
	"calendarEvents",
	"upgradeDowngradeHistory",
}

// profileModules is the cheaper subset used by universe filters
var profileModules = []string{"price", "summaryProfile", "summaryDetail"}

// Client talks to the Yahoo Finance JSON endpoints
// ⭐ SSOT: Yahoo Finance API 호출은 이 클라이언트에서만
type Client struct {
	httpClient  *httputil.Client
	logger      *logger.Logger
	baseURL     string
	screenerURL string
	cache       *redis.Cache
	cacheTTL    time.Duration
	now         func() time.Time
}

// NewClient creates a new Yahoo Finance client
func NewClient(httpClient *httputil.Client, baseURL, screenerURL string, log *logger.Logger) *Client {
	return &Client{
		httpClient:  httpClient,
		logger:      log,
		baseURL:     strings.TrimRight(baseURL, "/"),
		screenerURL: screenerURL,
		cacheTTL:    redis.TTLSnapshot,
		now:         time.Now,
	}
}

// WithCache enables the read-through snapshot cache
func (c *Client) WithCache(cache *redis.Cache, ttl time.Duration) *Client {
	c.cache = cache
	if ttl > 0 {
		c.cacheTTL = ttl
	}
	return c
}

// APIError is an error object embedded in a 200 response
type APIError struct {
	Code        string `json:"code"`
	Description string `json:"description"`
}

func (e *APIError) Error() string {
	return fmt.Sprintf("yahoo api error %s: %s", e.Code, e.Description)
}

// value is Yahoo's {"raw": 1.23, "fmt": "1.23"} wrapper; an empty object means unknown
type value struct {
	Raw *float64 `json:"raw"`
}

func (v value) get() (float64, bool) {
	if v.Raw == nil {
		return 0, false
	}
	return *v.Raw, true
}

func (c *Client) chartURL(ticker string) string {
	return fmt.Sprintf("%s/v8/finance/chart/%s?interval=1d&range=1y", c.baseURL, url.PathEscape(ticker))
}

func (c *Client) summaryURL(ticker string, modules []string) string {
	return fmt.Sprintf("%s/v10/finance/quoteSummary/%s?modules=%s",
		c.baseURL, url.PathEscape(ticker), url.QueryEscape(strings.Join(modules, ",")))
}

func (c *Client) getJSON(ctx context.Context, u string, dest interface{}) error {
	body, err := c.httpClient.GetBytes(ctx, u)
	if err != nil {
		return err
	}
	if err := json.Unmarshal(body, dest); err != nil {
		return fmt.Errorf("decode %s: %w", u, err)
	}
	return nil
}
