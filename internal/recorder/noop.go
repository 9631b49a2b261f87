package recorder

import "MomentumScreener/internal/model"

// NoopRecorder is a no-op implementation used when SQLite is not configured.
type NoopRecorder struct{}

func NewNoopRecorder() *NoopRecorder { return &NoopRecorder{} }

func (n *NoopRecorder) RecordRun(_ *model.RunSummary) error                    { return nil }
func (n *NoopRecorder) RecordRanking(_ string, _ []model.RankedEntry) error { return nil }
func (n *NoopRecorder) LatestRanking() (string, []model.RankedEntry, error)   { return "", nil, nil }
func (n *NoopRecorder) Close() error                                           { return nil }
