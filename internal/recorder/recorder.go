package recorder

import "MomentumScreener/internal/model"

// Recorder persists run history for later analysis.
type Recorder interface {
	RecordRun(run *model.RunSummary) error
	RecordRanking(runID string, ranking []model.RankedEntry) error
	// LatestRanking returns the most recently recorded run's ranking, best first.
	LatestRanking() (runID string, ranking []model.RankedEntry, err error)
	Close() error
}
