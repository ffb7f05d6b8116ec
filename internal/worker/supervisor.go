package worker

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/queuectl/queuectl/internal/backoff"
	"github.com/queuectl/queuectl/internal/config"
	"github.com/queuectl/queuectl/internal/job"
	"github.com/queuectl/queuectl/internal/store"
)

// LeaseTTL is the maximum wall-clock age of a valid lease (spec.md §4.3).
const LeaseTTL = 5 * time.Minute

// IdlePoll is how long the loop sleeps when no job is due (spec.md §4.6).
const IdlePoll = 1 * time.Second

// HeartbeatInterval is how often a running worker refreshes its heartbeat.
// The loop heartbeats once per iteration, so this matches IdlePoll on an
// idle queue; under load it heartbeats once per job, and no heartbeat is
// sent while a job runs, so a job longer than the DefaultHeartbeatTTL
// window in internal/queue leaves the worker uncounted as active until it
// finishes.
const HeartbeatInterval = IdlePoll

// Supervisor owns one worker process's lifecycle: registration, the
// lease/execute/report loop, heartbeats, and graceful shutdown (spec.md
// §4.6). Only one Supervisor runs per OS process.
type Supervisor struct {
	id       string
	store    store.Store
	config   *config.Config
	leaseTTL time.Duration
	idlePoll time.Duration

	shutdown chan struct{}
	once     sync.Once
}

// Option mutates a Supervisor at construction time, following the
// functional-options constructor shape used by internal/store.NewSQLiteStore.
type Option func(*Supervisor)

// WithLeaseTTL overrides the default lease TTL (spec.md §4.3).
func WithLeaseTTL(d time.Duration) Option {
	return func(s *Supervisor) { s.leaseTTL = d }
}

// WithIdlePoll overrides the default idle-poll interval (spec.md §4.6).
func WithIdlePoll(d time.Duration) Option {
	return func(s *Supervisor) { s.idlePoll = d }
}

// NewID generates a worker id unique across the host, following spec.md
// §4.6's "a UUID or {hostname}:{pid}:{monotonic} suffices". This
// implementation uses a hostname:pid:uuid form so ids stay both
// human-legible and globally unique without depending on a monotonic
// counter surviving process restarts.
func NewID() string {
	hostname, err := os.Hostname()
	if err != nil {
		hostname = "unknown-host"
	}
	return fmt.Sprintf("%s:%d:%s", hostname, os.Getpid(), uuid.NewString())
}

// New builds a Supervisor with a fresh worker id and the given overrides.
func New(s store.Store, opts ...Option) *Supervisor {
	sup := &Supervisor{
		id:       NewID(),
		store:    s,
		config:   config.New(s),
		leaseTTL: LeaseTTL,
		idlePoll: IdlePoll,
		shutdown: make(chan struct{}),
	}
	for _, opt := range opts {
		opt(sup)
	}
	return sup
}

// ID returns this supervisor's worker id.
func (sup *Supervisor) ID() string {
	return sup.id
}

// RequestShutdown sets the shutdown flag observed between loop iterations
// (spec.md §4.6 step 3 and §9's "signal-driven control flow modeled
// abstractly as a shutdown flag"). Safe to call more than once or
// concurrently with Run; a second call is a no-op, matching spec.md §6's
// "a second identical signal must still not abort the in-flight job."
func (sup *Supervisor) RequestShutdown() {
	sup.once.Do(func() { close(sup.shutdown) })
}

func (sup *Supervisor) shuttingDown() bool {
	select {
	case <-sup.shutdown:
		return true
	default:
		return false
	}
}

// Run registers the worker and executes the main loop until RequestShutdown
// is called or ctx is canceled, then marks the worker stopped. It returns
// only after any in-flight job has finished (spec.md §4.6: "finish the
// current job (if any), call mark_stopped(worker_id), exit").
func (sup *Supervisor) Run(ctx context.Context) error {
	now := time.Now()
	if err := sup.store.RegisterWorker(sup.id, now); err != nil {
		return fmt.Errorf("register worker failed: %w", err)
	}
	slog.Info("worker registered", "worker_id", sup.id)

	for {
		if sup.shuttingDown() || ctx.Err() != nil {
			break
		}

		if err := sup.store.Heartbeat(sup.id, time.Now()); err != nil {
			slog.Error("heartbeat failed", "worker_id", sup.id, "error", err)
		}

		j, err := sup.store.LeaseNextDue(sup.id, time.Now(), sup.leaseTTL)
		if err != nil {
			slog.Error("lease attempt failed", "worker_id", sup.id, "error", err)
			sleepOrShutdown(sup.shutdown, sup.idlePoll)
			continue
		}
		if j == nil {
			sleepOrShutdown(sup.shutdown, sup.idlePoll)
			continue
		}

		sup.runJob(ctx, *j)
	}

	if err := sup.store.MarkStopped(sup.id, time.Now()); err != nil {
		return fmt.Errorf("mark stopped failed: %w", err)
	}
	slog.Info("worker stopped", "worker_id", sup.id)
	return nil
}

// runJob executes one leased job to completion and reports the outcome.
// It never returns early for shutdown: an in-flight job always runs to
// its own result or its own timeout (spec.md §4.6, §5 cancellation rules).
func (sup *Supervisor) runJob(ctx context.Context, j job.Job) {
	slog.Info("job leased", "worker_id", sup.id, "job_id", j.ID, "attempt", j.Attempts)

	result, err := Execute(ctx, j.Command)
	if err != nil {
		// Tokenization or setup failure, not a subprocess outcome: still
		// drives the retry/DLQ machine via fail_job (spec.md §7:
		// "execution failures ... never crash the worker").
		sup.reportFailure(j.ID, err.Error())
		return
	}

	if result.Succeeded() {
		if completeErr := sup.store.CompleteJob(j.ID, sup.id, time.Now()); completeErr != nil {
			if completeErr == job.ErrNotLeased {
				slog.Warn("lease stolen before completion reported, discarding outcome",
					"worker_id", sup.id, "job_id", j.ID)
				return
			}
			slog.Error("complete_job failed", "worker_id", sup.id, "job_id", j.ID, "error", completeErr)
		}
		slog.Info("job completed", "worker_id", sup.id, "job_id", j.ID)
		return
	}

	sup.reportFailure(j.ID, result.ErrorMessage())
}

func (sup *Supervisor) reportFailure(jobID, errMsg string) {
	base, err := sup.config.GetBackoffBase()
	if err != nil {
		slog.Error("read backoff_base failed, using default", "error", err)
		base = backoff.DefaultBase
	}

	current, err := sup.store.GetJob(jobID)
	if err != nil || current == nil {
		slog.Error("could not load job to compute backoff", "job_id", jobID, "error", err)
		current = &job.Job{Attempts: 1}
	}
	delay := backoff.DelayWithJitter(current.Attempts, base)

	outcome, err := sup.store.FailJob(jobID, sup.id, errMsg, time.Now(), delay)
	if err != nil {
		if err == job.ErrNotLeased {
			slog.Warn("lease stolen before failure reported, discarding outcome",
				"worker_id", sup.id, "job_id", jobID)
			return
		}
		slog.Error("fail_job failed", "worker_id", sup.id, "job_id", jobID, "error", err)
		return
	}

	switch outcome {
	case store.RetryScheduled:
		slog.Warn("job failed, retry scheduled", "worker_id", sup.id, "job_id", jobID, "delay", delay)
	case store.MovedToDLQ:
		slog.Error("job failed, moved to dead letter queue", "worker_id", sup.id, "job_id", jobID)
	}
}

func sleepOrShutdown(shutdown <-chan struct{}, d time.Duration) {
	select {
	case <-time.After(d):
	case <-shutdown:
	}
}
