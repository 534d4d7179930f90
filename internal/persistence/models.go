package persistence

import "time"

// Category represents a user-defined label grouping work sessions. Categories are
// never physically removed; IsActive is flipped off instead so historical sessions
// keep resolving their category name.
type Category struct {
	ID        string
	Name      string
	IsActive  bool
	SortOrder int
	CreatedAt time.Time
}

// Session represents one tracked interval of work. A nil EndUTC marks the session
// as running; at most one running session exists store-wide.
type Session struct {
	ID          string
	CategoryID  *string
	Description string
	StartUTC    time.Time
	EndUTC      *time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// Running reports whether the session has no end time yet.
func (s Session) Running() bool {
	return s.EndUTC == nil
}
