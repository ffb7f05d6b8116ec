// Package queue is the thin façade external collaborators (a CLI, a future
// HTTP layer, anything else) call into. It carries no scheduling logic and
// no lease state: every operation is a validated, direct delegation to the
// store (spec.md §4.5).
package queue

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/queuectl/queuectl/internal/config"
	"github.com/queuectl/queuectl/internal/job"
	"github.com/queuectl/queuectl/internal/store"
)

// DefaultHeartbeatTTL is the window within which a worker's last_heartbeat
// must fall to count as active in Status(). Matches the 30-second window
// used by original_source/queuectl/database.py's get_active_workers; the
// spec.md data model leaves this value to the implementation.
const DefaultHeartbeatTTL = 30 * time.Second

// Status is the snapshot returned by Queue.Status (spec.md §4.5).
type Status struct {
	Counts        map[job.State]int
	ActiveWorkers int
	Config        config.Values
}

// Queue is the façade over a Store and its Config service.
type Queue struct {
	store  store.Store
	config *config.Config
}

// New builds a Queue façade over the given store.
func New(s store.Store) *Queue {
	return &Queue{store: s, config: config.New(s)}
}

// Enqueue validates and inserts a new job, applying the configured default
// max_retries when the spec doesn't supply one (spec.md §4.5 enqueue).
func (q *Queue) Enqueue(spec job.Spec) (job.Job, error) {
	if err := spec.Validate(); err != nil {
		return job.Job{}, err
	}
	defaultMaxRetries, err := q.config.GetMaxRetries()
	if err != nil {
		return job.Job{}, fmt.Errorf("enqueue: read default max_retries failed: %w", err)
	}
	j, err := q.store.EnqueueJob(spec, defaultMaxRetries, time.Now())
	if err != nil {
		return job.Job{}, err
	}
	slog.Info("queue.Enqueue", "id", j.ID)
	return j, nil
}

// List returns jobs matching the optional state filter, capped at limit (0
// = unlimited), ordered by created_at ascending (spec.md §4.5 list).
func (q *Queue) List(stateFilter *job.State, limit int) ([]job.Job, error) {
	return q.store.ListJobs(stateFilter, limit)
}

// Status reports queue-wide counts, active worker count, and the current
// configuration (spec.md §4.5 status).
func (q *Queue) Status() (Status, error) {
	counts, err := q.store.StatusCounts()
	if err != nil {
		return Status{}, fmt.Errorf("status: counts failed: %w", err)
	}
	activeWorkers, err := q.store.ActiveWorkerCount(time.Now(), DefaultHeartbeatTTL)
	if err != nil {
		return Status{}, fmt.Errorf("status: active workers failed: %w", err)
	}
	cfg, err := q.config.GetAll()
	if err != nil {
		return Status{}, fmt.Errorf("status: config failed: %w", err)
	}
	return Status{Counts: counts, ActiveWorkers: activeWorkers, Config: cfg}, nil
}

// DLQList returns every job currently in the DEAD state (spec.md §4.5
// dlq_list). Per the Open Question decision in DESIGN.md, an unfiltered
// List already includes DEAD jobs; DLQList exists as the explicit,
// discoverable entry point operator tooling is expected to use.
func (q *Queue) DLQList(limit int) ([]job.Job, error) {
	dead := job.StateDead
	return q.store.ListJobs(&dead, limit)
}

// DLQRetry revives a DEAD job back to PENDING (spec.md §4.5 dlq_retry).
func (q *Queue) DLQRetry(id string) error {
	if err := q.store.ReviveDead(id, time.Now()); err != nil {
		return err
	}
	slog.Info("queue.DLQRetry", "id", id)
	return nil
}

// Config exposes the underlying configuration service for CLI commands
// that read/write tunables directly.
func (q *Queue) Config() *config.Config {
	return q.config
}
