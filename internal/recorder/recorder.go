package recorder

import (
	"time"

	"btcchart/internal/model"
)

// CycleStatus is the outcome of a fetch cycle.
type CycleStatus string

const (
	StatusOK     CycleStatus = "OK"
	StatusFailed CycleStatus = "FAILED"
	StatusStale  CycleStatus = "STALE" // succeeded but a newer cycle had already published
)

// CycleEvent holds the diagnostics of one fetch cycle.
type CycleEvent struct {
	Generation uint64           `json:"generation"`
	Currencies []model.Currency `json:"currencies"`
	Range      model.TimeRange  `json:"range"`
	Status     CycleStatus      `json:"status"`
	Error      string           `json:"error,omitempty"`
	Points     int              `json:"points"`
	Duration   time.Duration    `json:"duration_ns"`
	At         time.Time        `json:"at"`
}

// Recorder is the diagnostic channel fetch cycles report to.
type Recorder interface {
	RecordCycle(evt *CycleEvent) error
	RecentCycles(limit int) ([]CycleEvent, error)
	Close() error
}
