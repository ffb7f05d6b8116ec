package job

import (
	"testing"
	"time"
)

func TestLeaseIncrementsAttempts(t *testing.T) {
	now := time.Now()
	j := New(Spec{ID: "j1", Command: "echo hi"}, 3, now)

	leased := Lease(j, "worker-1", now)
	if leased.State != StateProcessing {
		t.Fatalf("expected PROCESSING, got %s", leased.State)
	}
	if leased.Attempts != 1 {
		t.Fatalf("expected attempts=1, got %d", leased.Attempts)
	}
	if leased.LockedBy == nil || *leased.LockedBy != "worker-1" {
		t.Fatalf("expected locked_by=worker-1, got %v", leased.LockedBy)
	}
}

func TestFailRetriesUntilBudgetExhausted(t *testing.T) {
	now := time.Now()
	j := New(Spec{ID: "j2", Command: "exit 1"}, 2, now)

	// attempt 1: fails, attempts(1) <= max_retries(2) -> FAILED
	j = Lease(j, "w", now)
	j = Fail(j, "boom", now, time.Second)
	if j.State != StateFailed {
		t.Fatalf("expected FAILED after attempt 1, got %s", j.State)
	}
	if j.NextRetryAt == nil {
		t.Fatal("expected next_retry_at to be set")
	}

	// attempt 2: fails, attempts(2) <= max_retries(2) -> FAILED
	j = Lease(j, "w", now)
	j = Fail(j, "boom", now, 2*time.Second)
	if j.State != StateFailed {
		t.Fatalf("expected FAILED after attempt 2, got %s", j.State)
	}

	// attempt 3: fails, attempts(3) > max_retries(2) -> DEAD
	j = Lease(j, "w", now)
	j = Fail(j, "boom", now, 4*time.Second)
	if j.State != StateDead {
		t.Fatalf("expected DEAD after attempt 3, got %s", j.State)
	}
	if j.Attempts != j.MaxRetries+1 {
		t.Fatalf("expected attempts == max_retries+1, got attempts=%d max_retries=%d", j.Attempts, j.MaxRetries)
	}
	if j.NextRetryAt != nil {
		t.Fatal("expected next_retry_at to be cleared on DEAD")
	}
}

func TestMaxRetriesZeroDemotesOnFirstFailure(t *testing.T) {
	now := time.Now()
	j := New(Spec{ID: "j3", Command: "exit 1"}, 0, now)

	j = Lease(j, "w", now)
	j = Fail(j, "boom", now, time.Second)
	if j.State != StateDead {
		t.Fatalf("expected DEAD on first failure with max_retries=0, got %s", j.State)
	}
	if j.Attempts != 1 {
		t.Fatalf("expected attempts=1, got %d", j.Attempts)
	}
}

func TestReviveResetsAttempts(t *testing.T) {
	now := time.Now()
	j := New(Spec{ID: "j4", Command: "exit 1"}, 0, now)
	j = Lease(j, "w", now)
	j = Fail(j, "boom", now, time.Second)
	if j.State != StateDead {
		t.Fatalf("precondition: expected DEAD, got %s", j.State)
	}

	revived := Revive(j, now)
	if revived.State != StatePending {
		t.Fatalf("expected PENDING after revive, got %s", revived.State)
	}
	if revived.Attempts != 0 {
		t.Fatalf("expected attempts reset to 0, got %d", revived.Attempts)
	}
	if revived.ErrorMessage != nil || revived.NextRetryAt != nil {
		t.Fatal("expected error_message and next_retry_at cleared")
	}
}

func TestEligible(t *testing.T) {
	now := time.Now()
	pending := New(Spec{ID: "p", Command: "echo"}, 3, now)
	if !pending.Eligible(now) {
		t.Fatal("PENDING job should be eligible")
	}

	failedFuture := pending
	failedFuture.State = StateFailed
	future := now.Add(time.Hour)
	failedFuture.NextRetryAt = &future
	if failedFuture.Eligible(now) {
		t.Fatal("FAILED job with future next_retry_at should not be eligible")
	}

	failedDue := failedFuture
	past := now.Add(-time.Second)
	failedDue.NextRetryAt = &past
	if !failedDue.Eligible(now) {
		t.Fatal("FAILED job with past next_retry_at should be eligible")
	}

	completed := pending
	completed.State = StateCompleted
	if completed.Eligible(now) {
		t.Fatal("COMPLETED job should never be eligible")
	}
}
