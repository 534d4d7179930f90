package persistence

import "context"

// CategoryRepository exposes CRUD and soft-delete operations for categories.
type CategoryRepository interface {
	CreateCategory(ctx context.Context, category Category) error
	UpdateCategory(ctx context.Context, category Category) error
	GetCategory(ctx context.Context, id string) (Category, error)
	GetCategoryByName(ctx context.Context, name string) (Category, error)
	// ListCategories returns categories ordered by sort order. When activeOnly is
	// true, soft-deleted categories are excluded.
	ListCategories(ctx context.Context, activeOnly bool) ([]Category, error)
	// NextSortOrder returns the sort order to assign to the next category.
	NextSortOrder(ctx context.Context) (int, error)
}

// SessionRepository stores work session records.
//
// CreateSession and UpdateSession must perform the single-active-session check
// atomically with the write: a create of a running session, or an update that
// clears the end time, fails with ErrActiveSessionExists when another session is
// already running.
type SessionRepository interface {
	CreateSession(ctx context.Context, session Session) error
	UpdateSession(ctx context.Context, session Session) error
	GetSession(ctx context.Context, id string) (Session, error)
	// GetActiveSession returns the session with a null end time, or ErrNotFound.
	GetActiveSession(ctx context.Context) (Session, error)
	// ListSessions returns all sessions ordered by start time descending.
	ListSessions(ctx context.Context) ([]Session, error)
	DeleteSession(ctx context.Context, id string) error
}
