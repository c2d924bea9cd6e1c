package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/screener/internal/api/handlers"
	"github.com/wonny/screener/internal/brain"
	"github.com/wonny/screener/internal/contracts"
	"github.com/wonny/screener/internal/output"
	"github.com/wonny/screener/internal/selection"
	"github.com/wonny/screener/pkg/logger"
)

// gatedRunner blocks each run until release is closed
type gatedRunner struct {
	started chan brain.RunConfig
	release chan struct{}
	// failOnCancel returns the context error like a run stopped before screening
	failOnCancel bool
}

func newGatedRunner() *gatedRunner {
	return &gatedRunner{started: make(chan brain.RunConfig, 1), release: make(chan struct{})}
}

func (g *gatedRunner) Run(ctx context.Context, cfg brain.RunConfig) (*brain.RunResult, error) {
	g.started <- cfg
	select {
	case <-g.release:
	case <-ctx.Done():
		if g.failOnCancel {
			return nil, fmt.Errorf("%s failed: %w", contracts.StageUniverse, ctx.Err())
		}
	}
	return &brain.RunResult{
		RunID:    cfg.RunID,
		Universe: &contracts.Universe{Source: contracts.SourcePrimary},
		Report: &selection.Report{
			Counts:  contracts.RunCounts{Analyzed: 3, Qualified: 1},
			Stopped: ctx.Err() != nil,
		},
		Top: []contracts.ScreeningResult{{Ticker: "NVDA"}},
	}, nil
}

type testServer struct {
	*httptest.Server
	screen *handlers.ScreenHandler
	runner *gatedRunner
	dir    string
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	log := logger.NewNop()
	dir := t.TempDir()
	runner := newGatedRunner()

	screen := handlers.NewScreenHandler(context.Background(), runner, dir, log)
	results := handlers.NewResultsHandler(dir, log)
	hub := handlers.NewProgressHub(log)

	srv := httptest.NewServer(NewRouter(screen, results, hub, log))
	t.Cleanup(srv.Close)
	return &testServer{Server: srv, screen: screen, runner: runner, dir: dir}
}

func (s *testServer) post(t *testing.T, path, body string) *http.Response {
	t.Helper()
	resp, err := http.Post(s.URL+path, "application/json", bytes.NewBufferString(body))
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func (s *testServer) get(t *testing.T, path string) *http.Response {
	t.Helper()
	resp, err := http.Get(s.URL + path)
	require.NoError(t, err)
	t.Cleanup(func() { resp.Body.Close() })
	return resp
}

func decode(t *testing.T, resp *http.Response, dest interface{}) {
	t.Helper()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(dest))
}

func TestHealth(t *testing.T) {
	s := newTestServer(t)

	resp := s.get(t, "/health")
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var body map[string]string
	decode(t, resp, &body)
	assert.Equal(t, "ok", body["status"])
}

func TestLatestResults(t *testing.T) {
	s := newTestServer(t)

	resp := s.get(t, "/api/results/latest")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	at := time.Date(2024, 3, 15, 17, 30, 0, 0, time.UTC)
	require.NoError(t, output.WriteTopJSON(filepath.Join(s.dir, output.TopJSONName(15, at)), &output.TopReport{
		RunID:         "run-9",
		TotalAnalyzed: 500,
		TopN:          []output.TopRecord{{Rank: 1, Ticker: "NVDA"}},
	}))

	resp = s.get(t, "/api/results/latest")
	require.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, "top15_2024-03-15_173000.json", resp.Header.Get("X-Result-File"))

	var report output.TopReport
	decode(t, resp, &report)
	assert.Equal(t, "run-9", report.RunID)
	require.Len(t, report.TopN, 1)
	assert.Equal(t, "NVDA", report.TopN[0].Ticker)
}

func TestScreen_LifecycleAndConflict(t *testing.T) {
	s := newTestServer(t)

	resp := s.get(t, "/api/screen/status")
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)

	resp = s.post(t, "/api/screen", `{"mode":"SP500","max_stocks":50,"exclude":["AAPL"]}`)
	require.Equal(t, http.StatusAccepted, resp.StatusCode)
	var started map[string]string
	decode(t, resp, &started)
	require.NotEmpty(t, started["run_id"])

	cfg := <-s.runner.started
	assert.Equal(t, started["run_id"], cfg.RunID)
	assert.Equal(t, "sp500", string(cfg.Mode))
	assert.Equal(t, 50, cfg.MaxStocks)
	assert.Equal(t, []string{"AAPL"}, cfg.Exclude)
	assert.Equal(t, s.dir, cfg.OutputDir)

	resp = s.post(t, "/api/screen", `{}`)
	assert.Equal(t, http.StatusConflict, resp.StatusCode)

	resp = s.get(t, "/api/screen/status")
	var running handlers.RunStatus
	decode(t, resp, &running)
	assert.Equal(t, handlers.RunRunning, running.State)

	close(s.runner.release)
	s.screen.Wait()

	resp = s.get(t, "/api/screen/status")
	var done handlers.RunStatus
	decode(t, resp, &done)
	assert.Equal(t, handlers.RunCompleted, done.State)
	assert.Equal(t, contracts.SourcePrimary, done.Source)
	require.NotNil(t, done.Counts)
	assert.Equal(t, 1, done.Counts.Qualified)
	assert.Equal(t, 1, done.Selected)
	assert.NotNil(t, done.FinishedAt)
}

func TestScreen_Cancel(t *testing.T) {
	s := newTestServer(t)

	resp := s.post(t, "/api/screen/cancel", "")
	assert.Equal(t, http.StatusConflict, resp.StatusCode)

	resp = s.post(t, "/api/screen", "")
	require.Equal(t, http.StatusAccepted, resp.StatusCode)
	<-s.runner.started

	resp = s.post(t, "/api/screen/cancel", "")
	assert.Equal(t, http.StatusAccepted, resp.StatusCode)
	s.screen.Wait()

	status := s.screen.Snapshot()
	require.NotNil(t, status)
	assert.Equal(t, handlers.RunCancelled, status.State)
	assert.True(t, status.Stopped)
}

func TestScreen_CancelDuringResolution(t *testing.T) {
	s := newTestServer(t)
	s.runner.failOnCancel = true

	resp := s.post(t, "/api/screen", "")
	require.Equal(t, http.StatusAccepted, resp.StatusCode)
	<-s.runner.started

	resp = s.post(t, "/api/screen/cancel", "")
	assert.Equal(t, http.StatusAccepted, resp.StatusCode)
	s.screen.Wait()

	status := s.screen.Snapshot()
	require.NotNil(t, status)
	assert.Equal(t, handlers.RunCancelled, status.State)
	assert.True(t, status.Stopped)
	assert.Nil(t, status.Counts)
}

func TestScreen_BadRequests(t *testing.T) {
	s := newTestServer(t)

	tests := []struct {
		name string
		body string
	}{
		{"malformed json", `{"mode":`},
		{"unknown mode", `{"mode":"everything"}`},
		{"negative max", `{"max_stocks":-5}`},
		{"min score", `{"min_score":101}`},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := s.post(t, "/api/screen", tt.body)
			assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		})
	}
	assert.Nil(t, s.screen.Snapshot())
}

func TestRecoveryMiddleware(t *testing.T) {
	h := recoveryMiddleware(logger.NewNop())(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {
		panic("boom")
	}))
	rec := httptest.NewRecorder()

	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/x", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), "Internal server error")
}
