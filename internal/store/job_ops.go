package store

import (
	"database/sql"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/queuectl/queuectl/internal/job"
)

var _ Store = (*SQLiteStore)(nil)

// EnqueueJob inserts a new PENDING row, applying defaultMaxRetries when the
// spec didn't supply one (spec.md §4.1 enqueue_job).
func (s *SQLiteStore) EnqueueJob(spec job.Spec, defaultMaxRetries int, now time.Time) (job.Job, error) {
	if err := spec.Validate(); err != nil {
		return job.Job{}, err
	}

	j := job.New(spec, defaultMaxRetries, now)

	_, err := s.db.Exec(
		`INSERT INTO jobs (id, command, state, attempts, max_retries, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		j.ID, j.Command, string(j.State), j.Attempts, j.MaxRetries, j.CreatedAt, j.UpdatedAt,
	)
	if err != nil {
		if isUniqueConstraintErr(err) {
			slog.Debug("SQLiteStore.EnqueueJob: duplicate id", "id", j.ID)
			return job.Job{}, job.ErrDuplicateID
		}
		slog.Error("SQLiteStore.EnqueueJob failed", "error", err, "id", j.ID)
		return job.Job{}, fmt.Errorf("enqueue job failed: %w", err)
	}
	slog.Info("SQLiteStore.EnqueueJob", "id", j.ID, "max_retries", j.MaxRetries)
	return j, nil
}

// LeaseNextDue atomically claims the oldest eligible job, tie-breaking on
// id, and returns it already transitioned to PROCESSING. A PROCESSING job
// whose lease is older than leaseTTL counts as eligible, so a job orphaned
// by a crashed worker is re-leased (incrementing attempts again). Implemented as a
// single UPDATE ... WHERE id = (correlated subquery) ... RETURNING
// statement so the selection and the state transition are one atomic
// SQLite operation, with no separate SELECT-then-UPDATE race window
// (spec.md §4.1's "the contract is atomicity, not the mechanism").
func (s *SQLiteStore) LeaseNextDue(workerID string, now time.Time, leaseTTL time.Duration) (*job.Job, error) {
	staleBefore := now.Add(-leaseTTL)

	row := s.db.QueryRow(`
		UPDATE jobs SET
			state = ?,
			attempts = attempts + 1,
			locked_by = ?,
			locked_at = ?,
			updated_at = ?
		WHERE id = (
			SELECT id FROM jobs
			WHERE ((state = ? OR (state = ? AND (next_retry_at IS NULL OR next_retry_at <= ?)))
			       AND (locked_by IS NULL OR locked_at < ?))
			   OR (state = ? AND locked_at < ?)
			ORDER BY created_at ASC, id ASC
			LIMIT 1
		)
		RETURNING id, command, state, attempts, max_retries, created_at, updated_at,
		          error_message, next_retry_at, locked_by, locked_at`,
		string(job.StateProcessing), workerID, now, now,
		string(job.StatePending), string(job.StateFailed), now,
		staleBefore,
		string(job.StateProcessing), staleBefore,
	)

	j, err := scanJob(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		slog.Error("SQLiteStore.LeaseNextDue failed", "error", err, "worker_id", workerID)
		return nil, fmt.Errorf("lease next due failed: %w", err)
	}
	slog.Info("SQLiteStore.LeaseNextDue", "id", j.ID, "worker_id", workerID, "attempts", j.Attempts)
	return &j, nil
}

// CompleteJob transitions PROCESSING -> COMPLETED if still leased by
// workerID (spec.md §4.1 complete_job).
func (s *SQLiteStore) CompleteJob(id, workerID string, now time.Time) error {
	res, err := s.db.Exec(
		`UPDATE jobs SET state = ?, locked_by = NULL, locked_at = NULL, error_message = NULL, updated_at = ?
		 WHERE id = ? AND locked_by = ?`,
		string(job.StateCompleted), now, id, workerID,
	)
	if err != nil {
		return fmt.Errorf("complete job failed: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("complete job rows affected failed: %w", err)
	}
	if n == 0 {
		slog.Warn("SQLiteStore.CompleteJob: not leased", "id", id, "worker_id", workerID)
		return job.ErrNotLeased
	}
	slog.Info("SQLiteStore.CompleteJob", "id", id, "worker_id", workerID)
	return nil
}

// FailJob transitions PROCESSING -> FAILED or DEAD depending on the retry
// budget (spec.md §4.1 fail_job). It reads attempts/max_retries from the
// row it is about to update within the same call so the decision reflects
// the attempt count set by the lease that is now failing.
func (s *SQLiteStore) FailJob(id, workerID, errMsg string, now time.Time, delay time.Duration) (FailOutcome, error) {
	var attempts, maxRetries int
	var lockedBy sql.NullString
	err := s.db.QueryRow(`SELECT attempts, max_retries, locked_by FROM jobs WHERE id = ?`, id).
		Scan(&attempts, &maxRetries, &lockedBy)
	if err == sql.ErrNoRows {
		return "", job.ErrNotLeased
	}
	if err != nil {
		return "", fmt.Errorf("fail job lookup failed: %w", err)
	}
	if !lockedBy.Valid || lockedBy.String != workerID {
		slog.Warn("SQLiteStore.FailJob: not leased", "id", id, "worker_id", workerID)
		return "", job.ErrNotLeased
	}

	if attempts <= maxRetries {
		nextRetryAt := now.Add(delay)
		res, err := s.db.Exec(
			`UPDATE jobs SET state = ?, error_message = ?, next_retry_at = ?, locked_by = NULL, locked_at = NULL, updated_at = ?
			 WHERE id = ? AND locked_by = ?`,
			string(job.StateFailed), errMsg, nextRetryAt, now, id, workerID,
		)
		if err != nil {
			return "", fmt.Errorf("fail job update (retry) failed: %w", err)
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return "", job.ErrNotLeased
		}
		slog.Info("SQLiteStore.FailJob: retry scheduled", "id", id, "attempts", attempts, "next_retry_at", nextRetryAt)
		return RetryScheduled, nil
	}

	res, err := s.db.Exec(
		`UPDATE jobs SET state = ?, error_message = ?, next_retry_at = NULL, locked_by = NULL, locked_at = NULL, updated_at = ?
		 WHERE id = ? AND locked_by = ?`,
		string(job.StateDead), errMsg, now, id, workerID,
	)
	if err != nil {
		return "", fmt.Errorf("fail job update (dlq) failed: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return "", job.ErrNotLeased
	}
	slog.Warn("SQLiteStore.FailJob: moved to DLQ", "id", id, "attempts", attempts, "max_retries", maxRetries)
	return MovedToDLQ, nil
}

// ReviveDead transitions DEAD -> PENDING, resetting attempts (spec.md §4.1
// revive_dead).
func (s *SQLiteStore) ReviveDead(id string, now time.Time) error {
	res, err := s.db.Exec(
		`UPDATE jobs SET state = ?, attempts = 0, error_message = NULL, next_retry_at = NULL,
		                 locked_by = NULL, locked_at = NULL, updated_at = ?
		 WHERE id = ? AND state = ?`,
		string(job.StatePending), now, id, string(job.StateDead),
	)
	if err != nil {
		return fmt.Errorf("revive dead failed: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("revive dead rows affected failed: %w", err)
	}
	if n == 0 {
		return job.ErrNotDead
	}
	slog.Info("SQLiteStore.ReviveDead", "id", id)
	return nil
}

// ListJobs returns jobs ordered by created_at ascending (spec.md §4.1
// list_jobs). A nil stateFilter returns all jobs, including DEAD ones, per
// the Open Question resolved in DESIGN.md.
func (s *SQLiteStore) ListJobs(stateFilter *job.State, limit int) ([]job.Job, error) {
	query := `SELECT id, command, state, attempts, max_retries, created_at, updated_at,
	                 error_message, next_retry_at, locked_by, locked_at
	          FROM jobs`
	args := []any{}
	if stateFilter != nil {
		query += ` WHERE state = ?`
		args = append(args, string(*stateFilter))
	}
	query += ` ORDER BY created_at ASC`
	if limit > 0 {
		query += ` LIMIT ?`
		args = append(args, limit)
	}

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("list jobs failed: %w", err)
	}
	defer rows.Close()

	var jobs []job.Job
	for rows.Next() {
		j, err := scanJobRows(rows)
		if err != nil {
			return nil, fmt.Errorf("list jobs scan failed: %w", err)
		}
		jobs = append(jobs, j)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list jobs iteration failed: %w", err)
	}
	return jobs, nil
}

// GetJob retrieves a single job by id.
func (s *SQLiteStore) GetJob(id string) (*job.Job, error) {
	row := s.db.QueryRow(
		`SELECT id, command, state, attempts, max_retries, created_at, updated_at,
		        error_message, next_retry_at, locked_by, locked_at
		 FROM jobs WHERE id = ?`, id,
	)
	j, err := scanJob(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get job failed: %w", err)
	}
	return &j, nil
}

// StatusCounts returns the number of jobs in each state (spec.md §4.1
// status_counts).
func (s *SQLiteStore) StatusCounts() (map[job.State]int, error) {
	rows, err := s.db.Query(`SELECT state, COUNT(*) FROM jobs GROUP BY state`)
	if err != nil {
		return nil, fmt.Errorf("status counts failed: %w", err)
	}
	defer rows.Close()

	counts := map[job.State]int{
		job.StatePending:    0,
		job.StateProcessing: 0,
		job.StateCompleted:  0,
		job.StateFailed:     0,
		job.StateDead:       0,
	}
	for rows.Next() {
		var state string
		var count int
		if err := rows.Scan(&state, &count); err != nil {
			return nil, fmt.Errorf("status counts scan failed: %w", err)
		}
		counts[job.State(state)] = count
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("status counts iteration failed: %w", err)
	}
	return counts, nil
}

// mattn/go-sqlite3 reports UNIQUE constraint violations via a message
// containing "UNIQUE constraint failed" rather than a typed error value.
func isUniqueConstraintErr(err error) bool {
	return err != nil && strings.Contains(err.Error(), "UNIQUE constraint failed")
}
