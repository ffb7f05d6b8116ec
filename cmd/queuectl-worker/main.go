// Command queuectl-worker runs a single worker supervisor process: it
// leases due jobs from the shared store, executes their commands, and
// reports outcomes until asked to shut down (spec.md §4.6).
package main

import (
	"context"
	"flag"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/queuectl/queuectl/internal/appconfig"
	"github.com/queuectl/queuectl/internal/store"
	"github.com/queuectl/queuectl/internal/worker"
)

func main() {
	dsnFlag := flag.String("db", "", "path to the queuectl SQLite database (overrides QUEUECTL_DB_DSN)")
	logLevelFlag := flag.String("log-level", "", "log level: debug, info, warn, error (overrides QUEUECTL_LOG_LEVEL)")
	flag.Parse()

	cfg := appconfig.Load(*dsnFlag, *logLevelFlag)
	appconfig.InitLogger(cfg.LogLevel)

	slog.Info("starting queuectl-worker", "db_dsn_set", cfg.DBDSN != "")

	s, err := store.NewSQLiteStore(store.WithDSN(cfg.DBDSN))
	if err != nil {
		slog.Error("failed to open store", "error", err)
		os.Exit(1)
	}
	defer s.Close()

	sup := worker.New(s, worker.WithLeaseTTL(cfg.WorkerLeaseTTL), worker.WithIdlePoll(cfg.WorkerIdlePoll))
	slog.Info("worker id assigned", "worker_id", sup.ID())

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		sig := <-sigCh
		slog.Info("shutdown signal received, finishing in-flight job before exit", "signal", sig.String())
		sup.RequestShutdown()
		// A second identical signal must still not abort the in-flight
		// job (spec.md §6); drain further signals without acting on them.
		for range sigCh {
			slog.Info("shutdown already in progress, signal ignored", "signal", sig.String())
		}
	}()

	if err := sup.Run(ctx); err != nil {
		slog.Error("worker exited with error", "worker_id", sup.ID(), "error", err)
		os.Exit(1)
	}
	slog.Info("worker exited cleanly", "worker_id", sup.ID())
}
