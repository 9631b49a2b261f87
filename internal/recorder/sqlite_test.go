package recorder

import (
	"path/filepath"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"MomentumScreener/internal/model"
)

func TestSQLiteRecorder_RoundTrip(t *testing.T) {
	rec, err := NewSQLiteRecorder(filepath.Join(t.TempDir(), "history.db"), zap.NewNop())
	require.NoError(t, err)
	defer rec.Close()

	runID, ranking, err := rec.LatestRanking()
	require.NoError(t, err)
	assert.Empty(t, runID)
	assert.Empty(t, ranking)

	now := time.Now()
	first := &model.RunSummary{ID: uuid.NewString(), Trigger: model.TriggerStartup, Source: "mock",
		StartedAt: now.Add(-time.Hour), FinishedAt: now.Add(-time.Hour)}
	second := &model.RunSummary{ID: uuid.NewString(), Trigger: model.TriggerSchedule, Source: "mock",
		StartedAt: now, FinishedAt: now, Tickers: 3, BatchesTotal: 2, BatchesFailed: 1,
		FailedTickers: []string{"C"}}

	require.NoError(t, rec.RecordRun(first))
	require.NoError(t, rec.RecordRanking(first.ID, []model.RankedEntry{{Ticker: "OLD", TotalReturn: 1}}))
	require.NoError(t, rec.RecordRun(second))
	require.NoError(t, rec.RecordRanking(second.ID, []model.RankedEntry{
		{Ticker: "A", TotalReturn: 0.16, AverageReturn: 0.05, Increases: 0},
		{Ticker: "B", TotalReturn: 0.03, AverageReturn: 0.01, Increases: 1},
	}))

	// a later run without a ranking is not "latest"
	require.NoError(t, rec.RecordRun(&model.RunSummary{ID: uuid.NewString(), StartedAt: now.Add(time.Hour)}))

	runID, ranking, err = rec.LatestRanking()
	require.NoError(t, err)
	assert.Equal(t, second.ID, runID)
	require.Len(t, ranking, 2)
	assert.Equal(t, "A", ranking[0].Ticker)
	assert.Equal(t, 0.16, ranking[0].TotalReturn)
	assert.Equal(t, 1, ranking[1].Increases)

	// duplicate run IDs are rejected
	assert.Error(t, rec.RecordRun(second))
}

func TestNoopRecorder(t *testing.T) {
	var r Recorder = NewNoopRecorder()
	assert.NoError(t, r.RecordRun(&model.RunSummary{}))
	assert.NoError(t, r.RecordRanking("x", nil))
	assert.NoError(t, r.Close())
}
