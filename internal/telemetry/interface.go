package telemetry

import (
	"context"
	"time"
)

// Collector records power-state snapshots
type Collector interface {
	Record(ctx context.Context, snapshot *Snapshot) error
	Close() error
}

// Repository is the storage backend for snapshots
type Repository interface {
	Record(snapshot *Snapshot) error
	Close() error
}

// Snapshot is one observation of the power-management loop: a comparator
// sample, the LED output, the machine state and the event that produced it.
type Snapshot struct {
	Timestamp time.Time
	Level     string
	LEDOn     bool
	State     string
	Event     string
}
