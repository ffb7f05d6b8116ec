// Package job defines the job entity and its legal state transitions.
package job

import "time"

// State is the lifecycle state of a Job.
type State string

const (
	StatePending    State = "pending"
	StateProcessing State = "processing"
	StateCompleted  State = "completed"
	StateFailed     State = "failed"
	StateDead       State = "dead"
)

// Job is the central entity of the queue: a shell command identified by a
// caller-supplied id, carried through the states above.
type Job struct {
	ID           string
	Command      string
	State        State
	Attempts     int
	MaxRetries   int
	CreatedAt    time.Time
	UpdatedAt    time.Time
	ErrorMessage *string
	NextRetryAt  *time.Time
	LockedBy     *string
	LockedAt     *time.Time
}

// Eligible reports whether the job is a candidate for lease_next_due: either
// PENDING, or FAILED with its backoff window elapsed.
func (j Job) Eligible(now time.Time) bool {
	switch j.State {
	case StatePending:
		return true
	case StateFailed:
		return j.NextRetryAt == nil || !j.NextRetryAt.After(now)
	default:
		return false
	}
}
