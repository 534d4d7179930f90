package application

import (
	"fmt"
	"time"
)

// Elapsed returns the whole seconds between start and end. It fails when end
// precedes start; the session lifecycle prevents that ordering, so the check is
// defensive.
func Elapsed(start, end time.Time) (int64, error) {
	if end.Before(start) {
		vErr := &ValidationError{}
		vErr.add("end_utc", "end time must be after start time")
		return 0, vErr
	}
	return int64(end.Sub(start) / time.Second), nil
}

// SessionElapsed returns the elapsed seconds for a session: up to its end time
// when closed, up to now when still running.
func SessionElapsed(session Session, now time.Time) (int64, error) {
	end := now
	if session.EndUTC != nil {
		end = *session.EndUTC
	}
	return Elapsed(session.StartUTC, end)
}

// FormatDuration renders whole seconds as zero-padded HH:MM:SS. Hours are not
// wrapped at 24, so a 30 hour span renders as "30:00:00".
func FormatDuration(seconds int64) string {
	if seconds < 0 {
		seconds = 0
	}
	hours := seconds / 3600
	minutes := (seconds % 3600) / 60
	secs := seconds % 60
	return fmt.Sprintf("%02d:%02d:%02d", hours, minutes, secs)
}
