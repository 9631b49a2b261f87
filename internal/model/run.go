package model

import "time"

// TriggerType indicates what started a run.
type TriggerType string

const (
	TriggerStartup  TriggerType = "STARTUP"
	TriggerSchedule TriggerType = "SCHEDULE"
	TriggerManual   TriggerType = "MANUAL"
)

// RunSummary describes one pipeline run.
type RunSummary struct {
	ID            string
	Trigger       TriggerType
	Source        string
	StartedAt     time.Time
	FinishedAt    time.Time
	Tickers       int
	BatchesTotal  int
	BatchesFailed int
	Records       int
	Ranked        int
	FailedTickers []string
}
