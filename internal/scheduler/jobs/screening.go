package jobs

import (
	"context"
	"fmt"
	"sync"

	"github.com/wonny/screener/internal/brain"
	"github.com/wonny/screener/pkg/logger"
)

// Runner executes one screening run
type Runner interface {
	Run(ctx context.Context, cfg brain.RunConfig) (*brain.RunResult, error)
}

// ScreeningJob runs the full screening on a schedule and writes its artefacts
// ⭐ SSOT: 정기 스크리닝 스케줄은 이 Job에서만
type ScreeningJob struct {
	runner   Runner
	template brain.RunConfig
	schedule string

	mu   sync.Mutex
	last string

	logger *logger.Logger
}

// NewScreeningJob creates a screening job. Every run uses template with a fresh run id.
func NewScreeningJob(runner Runner, template brain.RunConfig, schedule string, log *logger.Logger) *ScreeningJob {
	return &ScreeningJob{
		runner:   runner,
		template: template,
		schedule: schedule,
		logger:   log,
	}
}

// Name returns the job name
func (j *ScreeningJob) Name() string {
	return "equity_screening"
}

// Schedule returns the cron schedule (with seconds)
func (j *ScreeningJob) Schedule() string {
	return j.schedule
}

// Run executes one screening
func (j *ScreeningJob) Run(ctx context.Context) error {
	cfg := j.template
	cfg.RunID = brain.GenerateRunID()
	cfg.Exclude = append([]string(nil), j.template.Exclude...)

	j.logger.WithFields(map[string]interface{}{
		"run_id": cfg.RunID,
		"mode":   string(cfg.Mode),
	}).Info("Starting scheduled screening")

	res, err := j.runner.Run(ctx, cfg)
	if err != nil {
		j.setLast(fmt.Sprintf("run %s failed", cfg.RunID))
		return fmt.Errorf("screening run %s: %w", cfg.RunID, err)
	}

	summary := fmt.Sprintf("run %s: analyzed %d, qualified %d, failed %d, selected %d",
		res.RunID,
		res.Report.Counts.Analyzed,
		res.Report.Counts.Qualified,
		res.Report.Counts.Failed,
		len(res.Top),
	)
	if res.Universe != nil && res.Universe.Degraded {
		summary += fmt.Sprintf(" (degraded universe: %s)", res.Universe.Source)
	}
	j.setLast(summary)

	if !res.Qualified() {
		j.logger.WithField("run_id", res.RunID).Warn("Scheduled screening produced no qualifying stocks")
	}
	return nil
}

// Describe returns a summary of the last run
func (j *ScreeningJob) Describe() string {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.last
}

func (j *ScreeningJob) setLast(s string) {
	j.mu.Lock()
	j.last = s
	j.mu.Unlock()
}
