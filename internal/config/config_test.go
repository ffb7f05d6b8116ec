package config

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/queuectl/queuectl/internal/backoff"
	"github.com/queuectl/queuectl/internal/store"
)

func newTestConfig(t *testing.T) *Config {
	t.Helper()
	dsn := filepath.Join(t.TempDir(), "queuectl.db")
	s, err := store.NewSQLiteStore(store.WithDSN(dsn))
	if err != nil {
		t.Fatalf("NewSQLiteStore failed: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return New(s)
}

func TestGetMaxRetriesDefaultsWhenUnset(t *testing.T) {
	c := newTestConfig(t)
	n, err := c.GetMaxRetries()
	if err != nil {
		t.Fatalf("GetMaxRetries failed: %v", err)
	}
	if n != DefaultMaxRetries {
		t.Fatalf("expected default %d, got %d", DefaultMaxRetries, n)
	}
}

func TestGetBackoffBaseDefaultsWhenUnset(t *testing.T) {
	c := newTestConfig(t)
	n, err := c.GetBackoffBase()
	if err != nil {
		t.Fatalf("GetBackoffBase failed: %v", err)
	}
	if n != backoff.DefaultBase {
		t.Fatalf("expected default %d, got %d", backoff.DefaultBase, n)
	}
}

func TestSetAndGetMaxRetries(t *testing.T) {
	c := newTestConfig(t)
	if err := c.SetMaxRetries(5); err != nil {
		t.Fatalf("SetMaxRetries failed: %v", err)
	}
	n, err := c.GetMaxRetries()
	if err != nil {
		t.Fatalf("GetMaxRetries failed: %v", err)
	}
	if n != 5 {
		t.Fatalf("expected 5, got %d", n)
	}
}

func TestSetMaxRetriesRejectsNegative(t *testing.T) {
	c := newTestConfig(t)
	if err := c.SetMaxRetries(-1); !errors.Is(err, ErrInvalidConfig) {
		t.Fatalf("expected ErrInvalidConfig, got %v", err)
	}
}

func TestSetBackoffBaseAcceptsOne(t *testing.T) {
	c := newTestConfig(t)
	if err := c.SetBackoffBase(1); err != nil {
		t.Fatalf("expected backoff_base=1 to be accepted, got %v", err)
	}
}

func TestSetBackoffBaseRejectsZero(t *testing.T) {
	c := newTestConfig(t)
	if err := c.SetBackoffBase(0); !errors.Is(err, ErrInvalidConfig) {
		t.Fatalf("expected ErrInvalidConfig, got %v", err)
	}
}

func TestSetUnknownKeyReturnsErrInvalidConfig(t *testing.T) {
	c := newTestConfig(t)
	if err := c.Set("bogus", "1"); !errors.Is(err, ErrInvalidConfig) {
		t.Fatalf("expected ErrInvalidConfig, got %v", err)
	}
}

func TestSetUnparseableValueReturnsErrInvalidConfig(t *testing.T) {
	c := newTestConfig(t)
	if err := c.Set("max_retries", "not-a-number"); !errors.Is(err, ErrInvalidConfig) {
		t.Fatalf("expected ErrInvalidConfig, got %v", err)
	}
}

func TestGetAll(t *testing.T) {
	c := newTestConfig(t)
	if err := c.SetMaxRetries(7); err != nil {
		t.Fatalf("SetMaxRetries failed: %v", err)
	}
	values, err := c.GetAll()
	if err != nil {
		t.Fatalf("GetAll failed: %v", err)
	}
	if values.MaxRetries != 7 {
		t.Fatalf("expected MaxRetries=7, got %d", values.MaxRetries)
	}
	if values.BackoffBase != backoff.DefaultBase {
		t.Fatalf("expected default BackoffBase, got %d", values.BackoffBase)
	}
}
