package jobs

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wonny/screener/internal/brain"
	"github.com/wonny/screener/internal/contracts"
	"github.com/wonny/screener/internal/selection"
	"github.com/wonny/screener/pkg/logger"
)

type recordingRunner struct {
	configs []brain.RunConfig
	err     error
}

func (r *recordingRunner) Run(ctx context.Context, cfg brain.RunConfig) (*brain.RunResult, error) {
	r.configs = append(r.configs, cfg)
	if r.err != nil {
		return nil, r.err
	}
	return &brain.RunResult{
		RunID:    cfg.RunID,
		Universe: &contracts.Universe{Source: contracts.SourceHardcoded, Degraded: true},
		Report:   &selection.Report{Counts: contracts.RunCounts{Analyzed: 480, Qualified: 20, Failed: 5}},
		Top:      make([]contracts.ScreeningResult, 15),
	}, nil
}

func TestScreeningJob_Run(t *testing.T) {
	runner := &recordingRunner{}
	template := brain.RunConfig{Mode: "auto", MaxStocks: 500, Exclude: []string{"AAPL"}, OutputDir: "out"}
	job := NewScreeningJob(runner, template, "0 30 17 * * 1-5", logger.NewNop())

	require.NoError(t, job.Run(context.Background()))
	require.NoError(t, job.Run(context.Background()))

	require.Len(t, runner.configs, 2)
	assert.NotEmpty(t, runner.configs[0].RunID)
	assert.NotEqual(t, runner.configs[0].RunID, runner.configs[1].RunID)
	assert.Equal(t, "out", runner.configs[0].OutputDir)
	assert.Equal(t, []string{"AAPL"}, runner.configs[1].Exclude)

	assert.Equal(t, "equity_screening", job.Name())
	assert.Equal(t, "0 30 17 * * 1-5", job.Schedule())
	assert.Contains(t, job.Describe(), "analyzed 480, qualified 20, failed 5, selected 15")
	assert.Contains(t, job.Describe(), "degraded universe: hardcoded")
}

func TestScreeningJob_RunError(t *testing.T) {
	runner := &recordingRunner{err: contracts.ErrUniverseExhausted}
	job := NewScreeningJob(runner, brain.RunConfig{}, "@daily", logger.NewNop())

	err := job.Run(context.Background())
	require.Error(t, err)
	assert.True(t, errors.Is(err, contracts.ErrSourceUnavailable))
	assert.Contains(t, job.Describe(), "failed")
}
