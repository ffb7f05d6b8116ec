package job

import (
	"errors"
	"fmt"
	"time"
)

// ErrInvalid is returned when a job specification fails validation:
// empty command, negative max_retries, or an unknown field at the
// transport boundary (enforced by callers that decode the wire format).
var ErrInvalid = errors.New("invalid job specification")

// Spec is the caller-supplied input to enqueue. MaxRetries is a pointer so
// "not provided" (use the configured default) is distinguishable from an
// explicit zero.
type Spec struct {
	ID         string
	Command    string
	MaxRetries *int
}

// Validate checks the spec against the constraints in spec.md §4.1/§6: a
// non-empty id and command, and a non-negative max_retries when provided.
func (s Spec) Validate() error {
	if s.ID == "" {
		return fmt.Errorf("%w: id must be non-empty", ErrInvalid)
	}
	if s.Command == "" {
		return fmt.Errorf("%w: command must be non-empty", ErrInvalid)
	}
	if s.MaxRetries != nil && *s.MaxRetries < 0 {
		return fmt.Errorf("%w: max_retries must be >= 0", ErrInvalid)
	}
	return nil
}

// New builds the initial PENDING row for a validated spec. defaultMaxRetries
// is used when the spec didn't supply one.
func New(s Spec, defaultMaxRetries int, now time.Time) Job {
	mr := defaultMaxRetries
	if s.MaxRetries != nil {
		mr = *s.MaxRetries
	}
	return Job{
		ID:         s.ID,
		Command:    s.Command,
		State:      StatePending,
		Attempts:   0,
		MaxRetries: mr,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
}
