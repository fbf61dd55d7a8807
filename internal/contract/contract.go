// Package contract provides interfaces and shared utilities for internal architecture.
package contract

import (
	"time"

	"github.com/huangsam/scorecard/schema"
)

// RunManager defines the interface for managing the run store.
// This allows the persistence layer to be mocked for testing.
type RunManager interface {
	GetRunStore() RunStore
}

// RunStore defines the interface for tracking bulk runs and their per-record results.
type RunStore interface {
	// BeginRun creates a new run and returns its unique ID.
	BeginRun(startTime time.Time, batchID, scorecard, version string, configParams map[string]any) (int64, error)

	// EndRun updates the run with completion data taken from the batch summary.
	EndRun(runID int64, endTime time.Time, summary *schema.DistributionSummary) error

	// RecordResults stores per-record outcomes for a run.
	RecordResults(runID int64, results []schema.ResultRecord) error

	// GetStatus returns status information about the run store.
	GetStatus() (schema.RunStoreStatus, error)

	// GetAllRuns retrieves every run, oldest first.
	GetAllRuns() ([]schema.RunRecord, error)

	// GetAllResults retrieves every stored result ordered by run and record index.
	GetAllResults() ([]schema.ResultRecord, error)

	// Close closes the underlying connection.
	Close() error
}
