package scheduler

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"MomentumScreener/internal/collector"
	"MomentumScreener/internal/model"
	"MomentumScreener/internal/pipeline"
	"MomentumScreener/internal/recorder"
	"MomentumScreener/internal/report"
)

type captureNotifier struct {
	messages []string
}

func (c *captureNotifier) SendWithRetry(_ context.Context, text string, _ int) error {
	c.messages = append(c.messages, text)
	return nil
}

func newTestScheduler(t *testing.T, mock *collector.MockFetcher, symbols string) (*Scheduler, *captureNotifier, string) {
	t.Helper()
	dir := t.TempDir()
	logger := zap.NewNop()

	tickersFile := filepath.Join(dir, "tickers.csv")
	require.NoError(t, os.WriteFile(tickersFile, []byte(symbols), 0644))

	rec, err := recorder.NewSQLiteRecorder(filepath.Join(dir, "history.db"), logger)
	require.NoError(t, err)
	t.Cleanup(func() { rec.Close() })

	outDir := filepath.Join(dir, "out")
	p := pipeline.New(
		collector.NewCollector(mock, 50, 0, logger),
		report.NewWriter(outDir, false, logger),
		pipeline.Options{LookbackDays: 390, SpikeThreshold: 0.05},
		logger,
	)
	p.Now = func() time.Time { return time.Date(2025, 6, 15, 0, 0, 0, 0, time.UTC) }

	n := &captureNotifier{}
	return NewScheduler(context.Background(), p, rec, n, tickersFile, 5, logger), n, outDir
}

func TestRunNow_RecordsAndNotifies(t *testing.T) {
	jan := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)
	mock := &collector.MockFetcher{Data: map[string][]model.Bar{
		"A":     collector.MonthlyBars(jan, 100, 110, 121),
		"BRK-B": collector.MonthlyBars(jan, 400, 404, 408.04),
	}}
	s, n, outDir := newTestScheduler(t, mock, "A\nBRKB\n")

	res, err := s.RunNow(context.Background(), model.TriggerStartup)
	require.NoError(t, err)
	assert.Len(t, res.Ranking, 2)
	assert.Equal(t, [][]string{{"A", "BRK-B"}}, mock.Calls, "alias normalized before fetch")

	_, err = os.Stat(filepath.Join(outDir, report.RankedFile))
	require.NoError(t, err)

	require.Len(t, n.messages, 1)
	assert.Contains(t, n.messages[0], "<b>A</b>")

	reply := s.HandleCommand(context.Background(), "/top")
	assert.Contains(t, reply, "<b>A</b>")
	assert.Contains(t, reply, "<b>BRK-B</b>")
}

func TestRunNow_NoData(t *testing.T) {
	mock := &collector.MockFetcher{Fail: map[string]bool{"A": true}}
	s, n, outDir := newTestScheduler(t, mock, "A\n")

	_, err := s.RunNow(context.Background(), model.TriggerStartup)
	assert.ErrorIs(t, err, pipeline.ErrNoData)

	_, statErr := os.Stat(outDir)
	assert.True(t, os.IsNotExist(statErr), "nothing written")

	require.Len(t, n.messages, 1)
	assert.Contains(t, n.messages[0], "No data was collected")
	assert.Equal(t, "no recorded ranking yet", s.HandleCommand(context.Background(), "/top"))
}

func TestRunNow_MissingTickersFile(t *testing.T) {
	s, _, _ := newTestScheduler(t, &collector.MockFetcher{}, "")
	s.TickersFile = filepath.Join(t.TempDir(), "nope.csv")

	_, err := s.RunNow(context.Background(), model.TriggerStartup)
	assert.Error(t, err)
}

func TestRegister(t *testing.T) {
	s, _, _ := newTestScheduler(t, &collector.MockFetcher{}, "")
	assert.NoError(t, s.Register("0 0 6 1 * *"))
	assert.Error(t, s.Register("not a cron"))
	assert.Len(t, s.Cron.Entries(), 1)
}

func TestHandleCommand_Help(t *testing.T) {
	s, _, _ := newTestScheduler(t, &collector.MockFetcher{}, "")
	assert.Contains(t, s.HandleCommand(context.Background(), "hello"), "/top")
}
