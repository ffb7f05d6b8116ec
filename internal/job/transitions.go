package job

import (
	"errors"
	"time"
)

// ErrNotLeased is returned by store completion/failure calls when the
// caller's worker id no longer matches the job's lock: the lease was
// stolen by another worker after TTL expiry (spec.md §4.3).
var ErrNotLeased = errors.New("job is not leased by this worker")

// ErrNotDead is returned when revive is attempted on a job that is not in
// the DEAD state.
var ErrNotDead = errors.New("job is not in the DEAD state")

// ErrDuplicateID is returned by enqueue when the id already exists.
var ErrDuplicateID = errors.New("job id already exists")

// Lease transitions a PENDING or eligible FAILED job into PROCESSING,
// incrementing attempts. It is the pure transformation applied atomically
// by the store under lease_next_due; attempts counts this entry, not the
// eventual outcome, per spec.md §4.2.
func Lease(j Job, workerID string, now time.Time) Job {
	j.State = StateProcessing
	j.Attempts++
	j.LockedBy = &workerID
	j.LockedAt = &now
	j.UpdatedAt = now
	return j
}

// Complete transitions PROCESSING to COMPLETED, clearing the lock and any
// prior error.
func Complete(j Job, now time.Time) Job {
	j.State = StateCompleted
	j.LockedBy = nil
	j.LockedAt = nil
	j.ErrorMessage = nil
	j.NextRetryAt = nil
	j.UpdatedAt = now
	return j
}

// Fail transitions PROCESSING to FAILED (if attempts is still within
// budget) or DEAD (if the retry budget is exhausted), per spec.md §4.2:
// "attempts is incremented on entry into PROCESSING... This is why the DLQ
// check is attempts > max_retries."
func Fail(j Job, errMsg string, now time.Time, delay time.Duration) Job {
	j.LockedBy = nil
	j.LockedAt = nil
	j.ErrorMessage = &errMsg
	j.UpdatedAt = now
	if j.Attempts <= j.MaxRetries {
		j.State = StateFailed
		next := now.Add(delay)
		j.NextRetryAt = &next
	} else {
		j.State = StateDead
		j.NextRetryAt = nil
	}
	return j
}

// Revive transitions DEAD back to PENDING, resetting attempts and clearing
// the failure diagnostics (spec.md §4.2, "Revive idempotence" law).
func Revive(j Job, now time.Time) Job {
	j.State = StatePending
	j.Attempts = 0
	j.ErrorMessage = nil
	j.NextRetryAt = nil
	j.LockedBy = nil
	j.LockedAt = nil
	j.UpdatedAt = now
	return j
}
