package appconfig

import (
	"os"
	"path/filepath"
	"testing"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{"QUEUECTL_DB_DSN", "QUEUECTL_LOG_LEVEL", "QUEUECTL_LEASE_TTL", "QUEUECTL_IDLE_POLL"} {
		old, had := os.LookupEnv(key)
		os.Unsetenv(key)
		t.Cleanup(func() {
			if had {
				os.Setenv(key, old)
			}
		})
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)
	cfg := Load("", "")

	home, _ := os.UserHomeDir()
	expected := filepath.Join(home, DefaultStateDirName, DefaultDBFileName)
	if cfg.DBDSN != expected {
		t.Errorf("expected default DSN %q, got %q", expected, cfg.DBDSN)
	}
}

func TestLoadFlagOverridesEnv(t *testing.T) {
	clearEnv(t)
	os.Setenv("QUEUECTL_DB_DSN", "/from/env/queuectl.db")

	cfg := Load("/from/flag/queuectl.db", "")
	if cfg.DBDSN != "/from/flag/queuectl.db" {
		t.Errorf("expected flag to override env, got %q", cfg.DBDSN)
	}
}

func TestLoadEnvOverridesDefault(t *testing.T) {
	clearEnv(t)
	os.Setenv("QUEUECTL_DB_DSN", "/from/env/queuectl.db")

	cfg := Load("", "")
	if cfg.DBDSN != "/from/env/queuectl.db" {
		t.Errorf("expected env to override default, got %q", cfg.DBDSN)
	}
}

func TestLoadLogLevelParsing(t *testing.T) {
	clearEnv(t)
	cases := map[string]string{
		"debug": "DEBUG",
		"warn":  "WARN",
		"error": "ERROR",
		"info":  "INFO",
		"":      "INFO",
		"bogus": "INFO",
	}
	for input, want := range cases {
		cfg := Load("", input)
		if cfg.LogLevel.String() != want {
			t.Errorf("log level %q: expected %s, got %s", input, want, cfg.LogLevel)
		}
	}
}
