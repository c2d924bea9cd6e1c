package wikipedia

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/screener/pkg/config"
	"github.com/wonny/screener/pkg/httputil"
	"github.com/wonny/screener/pkg/logger"
)

const sp500Page = `
<html><body>
<table class="wikitable"><tr><th>Date</th><th>Added</th></tr><tr><td>2024</td><td>XYZ</td></tr></table>
<table class="wikitable sortable" id="constituents">
  <tr><th>Symbol</th><th>Security</th><th>GICS Sector</th></tr>
  <tr><td><a href="#">MMM</a></td><td>3M</td><td>Industrials</td></tr>
  <tr><td>BRK.B</td><td>Berkshire Hathaway</td><td>Financials</td></tr>
  <tr><td> AAPL </td><td>Apple Inc.</td><td>Information Technology</td></tr>
</table>
</body></html>`

const nasdaqPage = `
<html><body>
<table class="wikitable"><tr><th>Year</th><th>Return</th></tr></table>
<table class="wikitable">
  <tr><th>Company</th><th>Ticker</th><th>GICS Sector</th></tr>
  <tr><td>Adobe Inc.</td><td>ADBE</td><td>Information Technology</td></tr>
  <tr><td>Amgen</td><td>AMGN</td><td>Health Care</td></tr>
</table>
</body></html>`

func TestParseSymbolTable(t *testing.T) {
	tests := []struct {
		name    string
		html    string
		headers []string
		want    []string
		wantErr bool
	}{
		{"id table wins", sp500Page, []string{"Symbol"}, []string{"MMM", "BRK-B", "AAPL"}, false},
		{"first wikitable with header", nasdaqPage, []string{"Ticker", "Symbol"}, []string{"ADBE", "AMGN"}, false},
		{"layout changed", `<table class="wikitable"><tr><th>Name</th></tr><tr><td>x</td></tr></table>`, []string{"Symbol"}, nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseSymbolTable(strings.NewReader(tt.html), "constituents", tt.headers...)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestClient_Fetch(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/sp500", func(w http.ResponseWriter, r *http.Request) { _, _ = w.Write([]byte(sp500Page)) })
	mux.HandleFunc("/ndx", func(w http.ResponseWriter, r *http.Request) { _, _ = w.Write([]byte(nasdaqPage)) })
	mux.HandleFunc("/gone", func(w http.ResponseWriter, r *http.Request) { w.WriteHeader(http.StatusNotFound) })
	srv := httptest.NewServer(mux)
	defer srv.Close()

	log := logger.NewNop()
	hc := httputil.New(&config.Config{HTTP: config.HTTPConfig{Timeout: 5 * time.Second}}, log)

	c := NewClient(hc, srv.URL+"/sp500", srv.URL+"/ndx", log)
	sp, err := c.FetchSP500(context.Background())
	require.NoError(t, err)
	assert.Len(t, sp, 3)

	ndx, err := c.FetchNasdaq100(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"ADBE", "AMGN"}, ndx)

	_, err = NewClient(hc, srv.URL+"/gone", "", log).FetchSP500(context.Background())
	var statusErr *httputil.StatusError
	assert.ErrorAs(t, err, &statusErr)
}
