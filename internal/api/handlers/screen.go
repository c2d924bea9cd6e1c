package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/wonny/screener/internal/brain"
	"github.com/wonny/screener/internal/contracts"
	"github.com/wonny/screener/internal/universe"
	"github.com/wonny/screener/pkg/logger"
)

// Runner executes one screening run
type Runner interface {
	Run(ctx context.Context, cfg brain.RunConfig) (*brain.RunResult, error)
}

// RunState is the lifecycle of an API-triggered run
type RunState string

const (
	RunRunning   RunState = "running"
	RunCompleted RunState = "completed"
	RunFailed    RunState = "failed"
	RunCancelled RunState = "cancelled"
)

// ScreenRequest is the body of POST /api/screen
type ScreenRequest struct {
	Mode      string   `json:"mode"`
	MaxStocks int      `json:"max_stocks"`
	Exclude   []string `json:"exclude"`
	MinScore  *float64 `json:"min_score"`
	TopN      int      `json:"top_n"`
	SectorCap int      `json:"sector_cap"`
	Liquidity bool     `json:"liquidity"`
}

// RunStatus summarises the active or last run
type RunStatus struct {
	RunID      string               `json:"run_id"`
	State      RunState             `json:"state"`
	Mode       string               `json:"mode"`
	StartedAt  time.Time            `json:"started_at"`
	FinishedAt *time.Time           `json:"finished_at,omitempty"`
	Source     contracts.SourceKind `json:"universe_source,omitempty"`
	Degraded   bool                 `json:"degraded"`
	Counts     *contracts.RunCounts `json:"counts,omitempty"`
	Selected   int                  `json:"selected"`
	Stopped    bool                 `json:"stopped"`
	ResultFile string               `json:"result_file,omitempty"`
	Error      string               `json:"error,omitempty"`
}

// ScreenHandler starts runs in the background, one at a time
// ⭐ SSOT: API 실행 트리거는 여기서만
type ScreenHandler struct {
	baseCtx   context.Context
	runner    Runner
	outputDir string

	mu     sync.Mutex
	status *RunStatus
	cancel context.CancelFunc
	done   chan struct{}

	logger *logger.Logger
}

// NewScreenHandler creates a new screen handler. Runs are cancelled when baseCtx ends.
func NewScreenHandler(baseCtx context.Context, runner Runner, outputDir string, log *logger.Logger) *ScreenHandler {
	return &ScreenHandler{
		baseCtx:   baseCtx,
		runner:    runner,
		outputDir: outputDir,
		logger:    log,
	}
}

// Start triggers a run
// POST /api/screen
func (h *ScreenHandler) Start(w http.ResponseWriter, r *http.Request) {
	var req ScreenRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil && !errors.Is(err, io.EOF) {
		respondError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}

	cfg, err := h.runConfig(req)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	h.mu.Lock()
	if h.status != nil && h.status.State == RunRunning {
		running := h.status.RunID
		h.mu.Unlock()
		respondJSON(w, http.StatusConflict, map[string]string{
			"error":  "a screening run is already in progress",
			"run_id": running,
		})
		return
	}

	ctx, cancel := context.WithCancel(h.baseCtx)
	done := make(chan struct{})
	h.status = &RunStatus{
		RunID:     cfg.RunID,
		State:     RunRunning,
		Mode:      string(cfg.Mode),
		StartedAt: time.Now(),
	}
	h.cancel = cancel
	h.done = done
	h.mu.Unlock()

	go h.execute(ctx, cancel, done, cfg)

	h.logger.WithFields(map[string]interface{}{
		"run_id": cfg.RunID,
		"mode":   string(cfg.Mode),
	}).Info("Screening run triggered via API")

	respondJSON(w, http.StatusAccepted, map[string]string{
		"run_id": cfg.RunID,
		"state":  string(RunRunning),
	})
}

// Status returns the active or last run
// GET /api/screen/status
func (h *ScreenHandler) Status(w http.ResponseWriter, r *http.Request) {
	status := h.Snapshot()
	if status == nil {
		respondError(w, http.StatusNotFound, "no run has been started")
		return
	}
	respondJSON(w, http.StatusOK, status)
}

// Cancel stops the active run; results scored so far are still written
// POST /api/screen/cancel
func (h *ScreenHandler) Cancel(w http.ResponseWriter, r *http.Request) {
	h.mu.Lock()
	if h.status == nil || h.status.State != RunRunning {
		h.mu.Unlock()
		respondError(w, http.StatusConflict, "no run in progress")
		return
	}
	runID := h.status.RunID
	h.cancel()
	h.mu.Unlock()

	respondJSON(w, http.StatusAccepted, map[string]string{
		"run_id": runID,
		"state":  "cancelling",
	})
}

// Snapshot returns a copy of the current status, nil before the first run
func (h *ScreenHandler) Snapshot() *RunStatus {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.status == nil {
		return nil
	}
	s := *h.status
	return &s
}

// Wait blocks until the active run, if any, has finished
func (h *ScreenHandler) Wait() {
	h.mu.Lock()
	done := h.done
	h.mu.Unlock()
	if done != nil {
		<-done
	}
}

func (h *ScreenHandler) runConfig(req ScreenRequest) (brain.RunConfig, error) {
	mode := universe.ModeAuto
	if req.Mode != "" {
		m, err := universe.ParseMode(req.Mode)
		if err != nil {
			return brain.RunConfig{}, err
		}
		mode = m
	}
	if req.MaxStocks < 0 {
		return brain.RunConfig{}, contracts.NewConfigError("max_stocks", "must be positive, got %d", req.MaxStocks)
	}
	if req.MinScore != nil && (*req.MinScore < 0 || *req.MinScore > 100) {
		return brain.RunConfig{}, contracts.NewConfigError("min_score", "must lie within [0,100], got %v", *req.MinScore)
	}

	return brain.RunConfig{
		RunID:     uuid.NewString(),
		Mode:      mode,
		MaxStocks: req.MaxStocks,
		Exclude:   req.Exclude,
		Liquidity: req.Liquidity,
		MinScore:  req.MinScore,
		TopN:      req.TopN,
		SectorCap: req.SectorCap,
		OutputDir: h.outputDir,
	}, nil
}

func (h *ScreenHandler) execute(ctx context.Context, cancel context.CancelFunc, done chan struct{}, cfg brain.RunConfig) {
	defer close(done)
	defer cancel()

	res, err := h.runner.Run(ctx, cfg)

	h.mu.Lock()
	defer h.mu.Unlock()

	finished := time.Now()
	s := h.status
	s.FinishedAt = &finished
	if res != nil {
		if res.Universe != nil {
			s.Source = res.Universe.Source
			s.Degraded = res.Universe.Degraded
		}
		if res.Report != nil {
			counts := res.Report.Counts
			s.Counts = &counts
			s.Stopped = res.Report.Stopped
		}
		s.Selected = len(res.Top)
		s.ResultFile = res.JSONPath
	}

	switch {
	case errors.Is(err, context.Canceled):
		// 유니버스 해석 중 취소: 결과 없이 종료
		s.State = RunCancelled
		s.Stopped = true
		s.Error = err.Error()
	case err != nil:
		s.State = RunFailed
		s.Error = err.Error()
		h.logger.WithError(err).WithField("run_id", cfg.RunID).Error("API screening run failed")
	case s.Stopped:
		s.State = RunCancelled
	default:
		s.State = RunCompleted
	}
}
