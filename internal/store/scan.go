package store

import (
	"database/sql"

	"github.com/queuectl/queuectl/internal/job"
)

// rowScanner abstracts over *sql.Row and *sql.Rows so scanJob's column
// layout is defined exactly once.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanJob(r rowScanner) (job.Job, error) {
	var j job.Job
	var state string
	var errMsg sql.NullString
	var nextRetryAt sql.NullTime
	var lockedBy sql.NullString
	var lockedAt sql.NullTime

	err := r.Scan(
		&j.ID, &j.Command, &state, &j.Attempts, &j.MaxRetries, &j.CreatedAt, &j.UpdatedAt,
		&errMsg, &nextRetryAt, &lockedBy, &lockedAt,
	)
	if err != nil {
		return job.Job{}, err
	}

	j.State = job.State(state)
	if errMsg.Valid {
		j.ErrorMessage = &errMsg.String
	}
	if nextRetryAt.Valid {
		t := nextRetryAt.Time
		j.NextRetryAt = &t
	}
	if lockedBy.Valid {
		j.LockedBy = &lockedBy.String
	}
	if lockedAt.Valid {
		t := lockedAt.Time
		j.LockedAt = &t
	}
	return j, nil
}

func scanJobRows(rows *sql.Rows) (job.Job, error) {
	return scanJob(rows)
}
