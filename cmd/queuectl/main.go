// Command queuectl is the minimal client front-end over the queue façade:
// enqueue jobs, inspect status, and manage the dead letter queue. Output
// formatting is intentionally plain (JSON or single-line text); rich
// table rendering is out of scope for the core (spec.md §1).
package main

import (
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/queuectl/queuectl/internal/appconfig"
	"github.com/queuectl/queuectl/internal/config"
	"github.com/queuectl/queuectl/internal/job"
	"github.com/queuectl/queuectl/internal/queue"
	"github.com/queuectl/queuectl/internal/store"
)

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}

	globalFlags := flag.NewFlagSet("queuectl", flag.ExitOnError)
	dsnFlag := globalFlags.String("db", "", "path to the queuectl SQLite database (overrides QUEUECTL_DB_DSN)")
	logLevelFlag := globalFlags.String("log-level", "", "log level: debug, info, warn, error")

	cmd := os.Args[1]
	args := os.Args[2:]

	// Leading -db/-log-level flags are global; a "--" after them leaves the
	// subcommand's own flags for its flag set instead of rejecting them here.
	split := 0
	for split < len(args) && strings.HasPrefix(args[split], "-") &&
		globalFlags.Lookup(strings.TrimLeft(strings.SplitN(args[split], "=", 2)[0], "-")) != nil {
		if strings.Contains(args[split], "=") {
			split--
		}
		split += 2
	}
	parseArgs := args
	if split <= len(args) {
		parseArgs = append(append(append([]string{}, args[:split]...), "--"), args[split:]...)
	}
	if err := globalFlags.Parse(parseArgs); err != nil {
		os.Exit(2)
	}

	cfg := appconfig.Load(*dsnFlag, *logLevelFlag)
	appconfig.InitLogger(cfg.LogLevel)

	s, err := store.NewSQLiteStore(store.WithDSN(cfg.DBDSN))
	if err != nil {
		fatalf("failed to open store: %v", err)
	}
	defer s.Close()

	q := queue.New(s)

	var runErr error
	switch cmd {
	case "enqueue":
		runErr = runEnqueue(q, globalFlags.Args())
	case "list":
		runErr = runList(q, globalFlags.Args())
	case "status":
		runErr = runStatus(q)
	case "dlq":
		runErr = runDLQ(q, globalFlags.Args())
	case "config":
		runErr = runConfig(q.Config(), globalFlags.Args())
	case "cleanup":
		runErr = runCleanup(s, cfg.DBDSN, globalFlags.Args())
	default:
		usage()
		os.Exit(2)
	}

	if runErr != nil {
		fatalf("%v", runErr)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, `usage: queuectl <command> [flags]

commands:
  enqueue -id ID -command CMD [-max-retries N]
  list [-state STATE] [-limit N]
  status
  dlq list [-limit N]
  dlq retry -id ID
  config get -key KEY
  config set -key KEY -value VALUE
  cleanup -force`)
}

func fatalf(format string, args ...any) {
	slog.Error(fmt.Sprintf(format, args...))
	os.Exit(1)
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func runEnqueue(q *queue.Queue, args []string) error {
	fs := flag.NewFlagSet("enqueue", flag.ExitOnError)
	id := fs.String("id", "", "job id (required)")
	command := fs.String("command", "", "shell command line (required)")
	maxRetries := fs.Int("max-retries", -1, "per-job retry override (default: configured max_retries)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	spec := job.Spec{ID: *id, Command: *command}
	if *maxRetries >= 0 {
		spec.MaxRetries = maxRetries
	}

	j, err := q.Enqueue(spec)
	if err != nil {
		if errors.Is(err, job.ErrDuplicateID) {
			return fmt.Errorf("job %q already exists", *id)
		}
		return err
	}
	return printJSON(j)
}

func runList(q *queue.Queue, args []string) error {
	fs := flag.NewFlagSet("list", flag.ExitOnError)
	state := fs.String("state", "", "filter by state (pending, processing, completed, failed, dead)")
	limit := fs.Int("limit", 0, "maximum number of jobs to return (0 = unlimited)")
	if err := fs.Parse(args); err != nil {
		return err
	}

	var filter *job.State
	if *state != "" {
		s := job.State(*state)
		filter = &s
	}

	jobs, err := q.List(filter, *limit)
	if err != nil {
		return err
	}
	return printJSON(jobs)
}

func runStatus(q *queue.Queue) error {
	status, err := q.Status()
	if err != nil {
		return err
	}
	return printJSON(status)
}

func runDLQ(q *queue.Queue, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("dlq requires a subcommand: list, retry")
	}
	switch args[0] {
	case "list":
		fs := flag.NewFlagSet("dlq list", flag.ExitOnError)
		limit := fs.Int("limit", 0, "maximum number of jobs to return (0 = unlimited)")
		if err := fs.Parse(args[1:]); err != nil {
			return err
		}
		jobs, err := q.DLQList(*limit)
		if err != nil {
			return err
		}
		return printJSON(jobs)
	case "retry":
		fs := flag.NewFlagSet("dlq retry", flag.ExitOnError)
		id := fs.String("id", "", "job id to revive (required)")
		if err := fs.Parse(args[1:]); err != nil {
			return err
		}
		if err := q.DLQRetry(*id); err != nil {
			if errors.Is(err, job.ErrNotDead) {
				return fmt.Errorf("job %q is not in the dead letter queue", *id)
			}
			return err
		}
		fmt.Println("ok")
		return nil
	default:
		return fmt.Errorf("unknown dlq subcommand %q", args[0])
	}
}

func runConfig(c *config.Config, args []string) error {
	if len(args) == 0 {
		return fmt.Errorf("config requires a subcommand: get, set")
	}
	switch args[0] {
	case "get":
		fs := flag.NewFlagSet("config get", flag.ExitOnError)
		key := fs.String("key", "", "config key (omit to print all values)")
		if err := fs.Parse(args[1:]); err != nil {
			return err
		}
		if *key == "" {
			values, err := c.GetAll()
			if err != nil {
				return err
			}
			return printJSON(values)
		}
		value, err := c.Get(*key)
		if err != nil {
			return err
		}
		fmt.Println(value)
		return nil
	case "set":
		fs := flag.NewFlagSet("config set", flag.ExitOnError)
		key := fs.String("key", "", "config key (required)")
		value := fs.String("value", "", "config value (required)")
		if err := fs.Parse(args[1:]); err != nil {
			return err
		}
		if err := c.Set(*key, *value); err != nil {
			return err
		}
		fmt.Println("ok")
		return nil
	default:
		return fmt.Errorf("unknown config subcommand %q", args[0])
	}
}

func runCleanup(s *store.SQLiteStore, dsn string, args []string) error {
	fs := flag.NewFlagSet("cleanup", flag.ExitOnError)
	force := fs.Bool("force", false, "confirm deletion of the queue database (required)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if !*force {
		return fmt.Errorf("cleanup deletes %s permanently; pass -force to confirm", dsn)
	}
	if err := s.Wipe(dsn); err != nil {
		return err
	}
	fmt.Println("ok")
	return nil
}
