package application

import (
	"errors"
	"testing"
	"time"
)

func TestElapsed_WholeSeconds(t *testing.T) {
	t.Parallel()

	start := time.Date(2024, 3, 14, 9, 0, 0, 0, time.UTC)
	end := start.Add(90*time.Minute + 700*time.Millisecond)

	elapsed, err := Elapsed(start, end)
	if err != nil {
		t.Fatalf("Elapsed failed: %v", err)
	}
	if elapsed != 5400 {
		t.Fatalf("expected 5400 seconds, got %d", elapsed)
	}
}

func TestElapsed_RejectsEndBeforeStart(t *testing.T) {
	t.Parallel()

	start := time.Date(2024, 3, 14, 9, 0, 0, 0, time.UTC)

	_, err := Elapsed(start, start.Add(-time.Second))

	var vErr *ValidationError
	if !errors.As(err, &vErr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
}

func TestSessionElapsed_RunningSessionUsesNow(t *testing.T) {
	t.Parallel()

	start := time.Date(2024, 3, 14, 9, 0, 0, 0, time.UTC)
	session := Session{ID: "session-1", StartUTC: start}

	elapsed, err := SessionElapsed(session, start.Add(45*time.Minute))
	if err != nil {
		t.Fatalf("SessionElapsed failed: %v", err)
	}
	if elapsed != 2700 {
		t.Fatalf("expected 2700 seconds, got %d", elapsed)
	}
}

func TestSessionElapsed_ClosedSessionIgnoresNow(t *testing.T) {
	t.Parallel()

	start := time.Date(2024, 3, 14, 9, 0, 0, 0, time.UTC)
	end := start.Add(30 * time.Minute)
	session := Session{ID: "session-1", StartUTC: start, EndUTC: &end}

	elapsed, err := SessionElapsed(session, start.Add(8*time.Hour))
	if err != nil {
		t.Fatalf("SessionElapsed failed: %v", err)
	}
	if elapsed != 1800 {
		t.Fatalf("expected 1800 seconds, got %d", elapsed)
	}
}

func TestFormatDuration(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name    string
		seconds int64
		want    string
	}{
		{"zero", 0, "00:00:00"},
		{"ninety minutes", 5400, "01:30:00"},
		{"with seconds", 3725, "01:02:05"},
		{"hours beyond a day", 108000, "30:00:00"},
		{"negative clamps to zero", -5, "00:00:00"},
	}

	for _, tc := range cases {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			if got := FormatDuration(tc.seconds); got != tc.want {
				t.Fatalf("FormatDuration(%d) = %q, want %q", tc.seconds, got, tc.want)
			}
		})
	}
}
