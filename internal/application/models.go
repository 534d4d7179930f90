package application

import "time"

// Category represents a session label exposed by the application services.
type Category struct {
	ID        string
	Name      string
	IsActive  bool
	SortOrder int
	CreatedAt time.Time
}

// Session represents one tracked interval of work. A nil EndUTC means the
// session is still running.
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

// CreateCategoryParams wraps the data required to create a category.
type CreateCategoryParams struct {
	Name string
}

// RenameCategoryParams wraps the data required to rename a category.
type RenameCategoryParams struct {
	CategoryID string
	Name       string
}

// StartSessionParams wraps the data required to start a session.
type StartSessionParams struct {
	CategoryID  *string
	Description string
}

// EditSessionParams wraps the data required to edit an existing session.
//
// StartUTC is required. A nil EndUTC re-opens the session; a non-nil EndUTC
// must be strictly after StartUTC.
type EditSessionParams struct {
	SessionID   string
	CategoryID  *string
	Description string
	StartUTC    time.Time
	EndUTC      *time.Time
}
