package util

import (
	"os"
	"testing"
	"time"
)

func TestParseBoolEnvDefaults(t *testing.T) {
	os.Unsetenv("QUEUECTL_TEST_BOOL")
	if !ParseBoolEnv("QUEUECTL_TEST_BOOL", true) {
		t.Fatal("expected default true when unset")
	}
}

func TestParseBoolEnvAcceptsVariants(t *testing.T) {
	defer os.Unsetenv("QUEUECTL_TEST_BOOL")
	for _, v := range []string{"true", "1", "yes", "on", "TRUE"} {
		os.Setenv("QUEUECTL_TEST_BOOL", v)
		if !ParseBoolEnv("QUEUECTL_TEST_BOOL", false) {
			t.Errorf("expected %q to parse true", v)
		}
	}
	for _, v := range []string{"false", "0", "no", "off"} {
		os.Setenv("QUEUECTL_TEST_BOOL", v)
		if ParseBoolEnv("QUEUECTL_TEST_BOOL", true) {
			t.Errorf("expected %q to parse false", v)
		}
	}
}

func TestParseBoolEnvInvalidFallsBackToDefault(t *testing.T) {
	defer os.Unsetenv("QUEUECTL_TEST_BOOL")
	os.Setenv("QUEUECTL_TEST_BOOL", "maybe")
	if !ParseBoolEnv("QUEUECTL_TEST_BOOL", true) {
		t.Fatal("expected invalid value to fall back to default")
	}
}

func TestParseIntEnv(t *testing.T) {
	defer os.Unsetenv("QUEUECTL_TEST_INT")
	os.Setenv("QUEUECTL_TEST_INT", "42")
	if n := ParseIntEnv("QUEUECTL_TEST_INT", 7); n != 42 {
		t.Fatalf("expected 42, got %d", n)
	}

	os.Setenv("QUEUECTL_TEST_INT", "not-a-number")
	if n := ParseIntEnv("QUEUECTL_TEST_INT", 7); n != 7 {
		t.Fatalf("expected fallback to default 7, got %d", n)
	}
}

func TestParseDurationEnv(t *testing.T) {
	defer os.Unsetenv("QUEUECTL_TEST_DURATION")
	os.Setenv("QUEUECTL_TEST_DURATION", "30s")
	if d := ParseDurationEnv("QUEUECTL_TEST_DURATION", time.Minute); d != 30*time.Second {
		t.Fatalf("expected 30s, got %v", d)
	}

	os.Setenv("QUEUECTL_TEST_DURATION", "bogus")
	if d := ParseDurationEnv("QUEUECTL_TEST_DURATION", time.Minute); d != time.Minute {
		t.Fatalf("expected fallback to default 1m, got %v", d)
	}
}
