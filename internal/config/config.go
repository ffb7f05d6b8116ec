// Package config reads and writes the two persisted queue-wide settings:
// max_retries and backoff_base (spec.md §4.7). Values live in the store's
// config table as strings and are parsed on read, mirroring
// original_source/queuectl/config.py's Config class.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/queuectl/queuectl/internal/backoff"
	"github.com/queuectl/queuectl/internal/store"
)

// DefaultMaxRetries is used when no max_retries config value is set.
const DefaultMaxRetries = 3

const (
	keyMaxRetries  = "max_retries"
	keyBackoffBase = "backoff_base"
)

// ErrInvalidConfig is returned when a caller attempts to set an unrecognized
// key, or a value that fails to parse or fails validation for its key.
var ErrInvalidConfig = errors.New("invalid config")

// Values is a snapshot of the current configuration, returned by status()
// (spec.md §4.5) and `config get` (spec.md §4.7).
type Values struct {
	MaxRetries  int
	BackoffBase int
}

// Config wraps a Store's generic key/value config table with the two
// recognized queue settings.
type Config struct {
	store store.Store
}

// New builds a Config backed by the given store.
func New(s store.Store) *Config {
	return &Config{store: s}
}

// GetMaxRetries returns the configured default max_retries, or
// DefaultMaxRetries if unset or unparseable.
func (c *Config) GetMaxRetries() (int, error) {
	raw, ok, err := c.store.GetConfig(keyMaxRetries)
	if err != nil {
		return 0, fmt.Errorf("get max_retries failed: %w", err)
	}
	if !ok {
		return DefaultMaxRetries, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		slog.Warn("config: stored max_retries is not an integer, using default", "value", raw)
		return DefaultMaxRetries, nil
	}
	return n, nil
}

// SetMaxRetries persists max_retries. Values below 0 are rejected, matching
// the enqueue_job validation rule (spec.md §4.1).
func (c *Config) SetMaxRetries(value int) error {
	if value < 0 {
		return fmt.Errorf("%w: max_retries must be >= 0", ErrInvalidConfig)
	}
	if err := c.store.SetConfig(keyMaxRetries, strconv.Itoa(value)); err != nil {
		return fmt.Errorf("set max_retries failed: %w", err)
	}
	slog.Info("config: max_retries updated", "value", value)
	return nil
}

// GetBackoffBase returns the configured backoff_base, or backoff.DefaultBase
// if unset or unparseable.
func (c *Config) GetBackoffBase() (int, error) {
	raw, ok, err := c.store.GetConfig(keyBackoffBase)
	if err != nil {
		return 0, fmt.Errorf("get backoff_base failed: %w", err)
	}
	if !ok {
		return backoff.DefaultBase, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		slog.Warn("config: stored backoff_base is not an integer, using default", "value", raw)
		return backoff.DefaultBase, nil
	}
	return n, nil
}

// SetBackoffBase persists backoff_base. Only values >= 1 are accepted: a
// base of 1 produces constant 1-second delays rather than an error (see
// DESIGN.md for this Open Question decision).
func (c *Config) SetBackoffBase(value int) error {
	if value < 1 {
		return fmt.Errorf("%w: backoff_base must be >= 1", ErrInvalidConfig)
	}
	if err := c.store.SetConfig(keyBackoffBase, strconv.Itoa(value)); err != nil {
		return fmt.Errorf("set backoff_base failed: %w", err)
	}
	slog.Info("config: backoff_base updated", "value", value)
	return nil
}

// GetAll returns the current configuration snapshot.
func (c *Config) GetAll() (Values, error) {
	mr, err := c.GetMaxRetries()
	if err != nil {
		return Values{}, err
	}
	bb, err := c.GetBackoffBase()
	if err != nil {
		return Values{}, err
	}
	return Values{MaxRetries: mr, BackoffBase: bb}, nil
}

// Set dispatches by key name, used by the `config set` CLI command. Unknown
// keys and unparseable values both return ErrInvalidConfig (spec.md §4.7).
func (c *Config) Set(key, rawValue string) error {
	n, err := strconv.Atoi(rawValue)
	if err != nil {
		return fmt.Errorf("%w: value %q is not an integer", ErrInvalidConfig, rawValue)
	}
	switch key {
	case keyMaxRetries:
		return c.SetMaxRetries(n)
	case keyBackoffBase:
		return c.SetBackoffBase(n)
	default:
		return fmt.Errorf("%w: unknown key %q", ErrInvalidConfig, key)
	}
}

// Get dispatches by key name for the `config get` CLI command.
func (c *Config) Get(key string) (int, error) {
	switch key {
	case keyMaxRetries:
		return c.GetMaxRetries()
	case keyBackoffBase:
		return c.GetBackoffBase()
	default:
		return 0, fmt.Errorf("%w: unknown key %q", ErrInvalidConfig, key)
	}
}
