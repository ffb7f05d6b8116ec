package store

import (
	"fmt"
	"log/slog"
	"time"
)

// RegisterWorker inserts or replaces a worker row in RUNNING status
// (spec.md §3, original_source/queuectl/database.py's worker bookkeeping).
func (s *SQLiteStore) RegisterWorker(workerID string, now time.Time) error {
	_, err := s.db.Exec(
		`INSERT INTO workers (worker_id, started_at, last_heartbeat, status)
		 VALUES (?, ?, ?, ?)
		 ON CONFLICT(worker_id) DO UPDATE SET started_at = excluded.started_at,
		                                       last_heartbeat = excluded.last_heartbeat,
		                                       status = excluded.status`,
		workerID, now, now, string(WorkerRunning),
	)
	if err != nil {
		slog.Error("SQLiteStore.RegisterWorker failed", "error", err, "worker_id", workerID)
		return fmt.Errorf("register worker failed: %w", err)
	}
	slog.Info("SQLiteStore.RegisterWorker", "worker_id", workerID)
	return nil
}

// Heartbeat updates a worker's last_heartbeat timestamp, keeping it inside
// the active window used by ActiveWorkerCount.
func (s *SQLiteStore) Heartbeat(workerID string, now time.Time) error {
	_, err := s.db.Exec(
		`UPDATE workers SET last_heartbeat = ? WHERE worker_id = ?`,
		now, workerID,
	)
	if err != nil {
		return fmt.Errorf("heartbeat failed: %w", err)
	}
	return nil
}

// MarkStopped transitions a worker row to STOPPED, recording a clean
// shutdown (spec.md §4.7, worker supervisor graceful-stop path).
func (s *SQLiteStore) MarkStopped(workerID string, now time.Time) error {
	_, err := s.db.Exec(
		`UPDATE workers SET status = ?, last_heartbeat = ? WHERE worker_id = ?`,
		string(WorkerStopped), now, workerID,
	)
	if err != nil {
		return fmt.Errorf("mark stopped failed: %w", err)
	}
	slog.Info("SQLiteStore.MarkStopped", "worker_id", workerID)
	return nil
}

// ActiveWorkerCount counts RUNNING workers whose last_heartbeat is within
// heartbeatTTL of now, mirroring original_source/queuectl/database.py's
// get_active_workers (30s default window, DefaultHeartbeatTTL in
// SPEC_FULL.md).
func (s *SQLiteStore) ActiveWorkerCount(now time.Time, heartbeatTTL time.Duration) (int, error) {
	cutoff := now.Add(-heartbeatTTL)
	var count int
	err := s.db.QueryRow(
		`SELECT COUNT(*) FROM workers WHERE status = ? AND last_heartbeat >= ?`,
		string(WorkerRunning), cutoff,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("active worker count failed: %w", err)
	}
	return count, nil
}
