// Package appconfig resolves the process-level configuration shared by
// both queuectl binaries: where the database lives and how verbose
// logging should be. It follows an env-file-then-flag-override pattern,
// shared by both of queuectl's entrypoints.
package appconfig

import (
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/joho/godotenv"

	"github.com/queuectl/queuectl/internal/util"
	"github.com/queuectl/queuectl/internal/worker"
)

// DefaultDBFileName is the SQLite filename inside the state directory.
const DefaultDBFileName = "queuectl.db"

// DefaultStateDirName is the directory created under the user's home
// (spec.md §6: "${HOME}/.queuectl/queuectl.db").
const DefaultStateDirName = ".queuectl"

// Config is the resolved process configuration.
type Config struct {
	DBDSN    string
	LogLevel slog.Level

	// WorkerLeaseTTL and WorkerIdlePoll let an operator tune the worker
	// supervisor's timing without touching the queue-wide config table
	// (which governs retry policy, not worker scheduling). Read from
	// QUEUECTL_LEASE_TTL / QUEUECTL_IDLE_POLL; queuectl (the client CLI)
	// loads them through Load but does not use them.
	WorkerLeaseTTL time.Duration
	WorkerIdlePoll time.Duration
}

// Load reads .env (if present) and environment variables, applying
// defaults for anything unset. dsnFlag and logLevelFlag are the values of
// the corresponding command-line flags; an empty string means "not
// passed", letting the flag override the environment when supplied.
func Load(dsnFlag, logLevelFlag string) Config {
	if err := godotenv.Load(); err != nil {
		slog.Debug("no .env file loaded", "error", err)
	} else {
		slog.Debug("loaded .env file")
	}

	dsn := firstNonEmpty(dsnFlag, os.Getenv("QUEUECTL_DB_DSN"), defaultDSN())
	levelStr := firstNonEmpty(logLevelFlag, os.Getenv("QUEUECTL_LOG_LEVEL"), "info")

	return Config{
		DBDSN:          dsn,
		LogLevel:       parseLogLevel(levelStr),
		WorkerLeaseTTL: util.ParseDurationEnv("QUEUECTL_LEASE_TTL", worker.LeaseTTL),
		WorkerIdlePoll: util.ParseDurationEnv("QUEUECTL_IDLE_POLL", worker.IdlePoll),
	}
}

// InitLogger installs a slog default logger at the resolved level.
func InitLogger(level slog.Level) {
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
	slog.SetDefault(logger)
}

func defaultDSN() string {
	home, err := os.UserHomeDir()
	if err != nil {
		slog.Warn("could not determine home directory, using relative state dir", "error", err)
		home = "."
	}
	return filepath.Join(home, DefaultStateDirName, DefaultDBFileName)
}

func parseLogLevel(s string) slog.Level {
	switch s {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
