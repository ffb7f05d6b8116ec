// Package store provides the durable, transactional home for jobs,
// workers, and configuration (spec.md §4.1).
package store

import (
	"time"

	"github.com/queuectl/queuectl/internal/job"
)

// Worker is the supervisory metadata row for one live worker process
// (spec.md §3).
type Worker struct {
	WorkerID      string
	StartedAt     time.Time
	LastHeartbeat time.Time
	Status        WorkerStatus
}

// WorkerStatus is the lifecycle state of a worker row.
type WorkerStatus string

const (
	WorkerRunning WorkerStatus = "running"
	WorkerStopped WorkerStatus = "stopped"
)

// FailOutcome reports what fail_job did to a job: scheduled it for retry
// or moved it to the dead letter queue (spec.md §4.1).
type FailOutcome string

const (
	RetryScheduled FailOutcome = "retry_scheduled"
	MovedToDLQ     FailOutcome = "moved_to_dlq"
)

// Store is the transactional persistence contract required by the queue
// façade and the worker supervisor. A single implementation (SQLiteStore)
// backs it; the interface exists so tests and the façade do not depend on
// the concrete SQLite types.
type Store interface {
	// EnqueueJob inserts a new PENDING row. Returns job.ErrDuplicateID if
	// id already exists. defaultMaxRetries is used when spec.MaxRetries is
	// unset.
	EnqueueJob(spec job.Spec, defaultMaxRetries int, now time.Time) (job.Job, error)

	// LeaseNextDue atomically selects, transitions, and returns one
	// eligible job (spec.md §4.1). Returns (nil, nil) if none is due.
	LeaseNextDue(workerID string, now time.Time, leaseTTL time.Duration) (*job.Job, error)

	// CompleteJob transitions PROCESSING -> COMPLETED if still leased by
	// workerID; otherwise returns job.ErrNotLeased.
	CompleteJob(id, workerID string, now time.Time) error

	// FailJob transitions PROCESSING -> FAILED or DEAD depending on the
	// retry budget, scheduling the next retry via the supplied delay.
	FailJob(id, workerID, errMsg string, now time.Time, delay time.Duration) (FailOutcome, error)

	// ReviveDead transitions DEAD -> PENDING, resetting attempts.
	ReviveDead(id string, now time.Time) error

	// ListJobs returns jobs ordered by created_at ascending, optionally
	// filtered by state and capped at limit (0 = unlimited).
	ListJobs(stateFilter *job.State, limit int) ([]job.Job, error)

	// GetJob retrieves a single job by id, or (nil, nil) if absent.
	GetJob(id string) (*job.Job, error)

	// StatusCounts returns the number of jobs in each state.
	StatusCounts() (map[job.State]int, error)

	// RegisterWorker inserts or replaces a worker row in RUNNING status.
	RegisterWorker(workerID string, now time.Time) error

	// Heartbeat updates a worker's last_heartbeat timestamp.
	Heartbeat(workerID string, now time.Time) error

	// MarkStopped transitions a worker row to STOPPED.
	MarkStopped(workerID string, now time.Time) error

	// ActiveWorkerCount counts RUNNING workers whose last_heartbeat is
	// within heartbeatTTL of now.
	ActiveWorkerCount(now time.Time, heartbeatTTL time.Duration) (int, error)

	// GetConfig returns the stored value for key, or ok=false if unset.
	GetConfig(key string) (value string, ok bool, err error)

	// SetConfig writes key=value to the config table.
	SetConfig(key, value string) error

	// Close releases the underlying database handle.
	Close() error
}
