package backoff

import "testing"

func TestDelayMatchesBaseToThePowerOfAttempts(t *testing.T) {
	cases := []struct {
		attempts int
		base     int
		want     int // seconds
	}{
		{1, 2, 2},
		{2, 2, 4},
		{3, 2, 8},
		{1, 3, 3},
		{4, 3, 81},
	}
	for _, c := range cases {
		got := Delay(c.attempts, c.base)
		if got.Seconds() != float64(c.want) {
			t.Errorf("Delay(%d, %d) = %v, want %ds", c.attempts, c.base, got, c.want)
		}
	}
}

func TestDelayMonotonicallyIncreasesForAttemptsAboveOne(t *testing.T) {
	base := 2
	for n := 1; n < 10; n++ {
		if Delay(n+1, base) <= Delay(n, base) {
			t.Fatalf("backoff not monotonic at n=%d: Delay(n)=%v Delay(n+1)=%v", n, Delay(n, base), Delay(n+1, base))
		}
	}
}

func TestDelayInvalidBaseFallsBackToDefault(t *testing.T) {
	if Delay(3, 0) != Delay(3, DefaultBase) {
		t.Fatal("expected base<1 to fall back to DefaultBase")
	}
}
