package testfixtures

import (
	"fmt"
	"sync/atomic"
	"time"

	"github.com/example/timetracker/internal/persistence"
)

var (
	categoryCounter uint64
	sessionCounter  uint64
)

var referenceTime = time.Date(2024, time.January, 2, 15, 4, 5, 0, time.UTC)

// ReferenceTime returns the canonical baseline timestamp used by fixtures.
func ReferenceTime() time.Time {
	return referenceTime
}

// --------------------------- Category fixtures ---------------------------

// CategoryFixture represents a deterministic category record that can be
// materialised for application or persistence tests.
type CategoryFixture struct {
	ID        string
	Name      string
	IsActive  bool
	SortOrder int
	CreatedAt time.Time
}

// CategoryOption configures the generated category fixture.
type CategoryOption func(*CategoryFixture)

// NewCategoryFixture returns a deterministic category fixture with optional overrides.
func NewCategoryFixture(opts ...CategoryOption) CategoryFixture {
	idx := atomic.AddUint64(&categoryCounter, 1)
	fixture := CategoryFixture{
		ID:        fmt.Sprintf("category-%03d", idx),
		Name:      fmt.Sprintf("Category %03d", idx),
		IsActive:  true,
		SortOrder: int(idx) * 10,
		CreatedAt: referenceTime.Add(time.Duration(idx) * time.Minute),
	}
	for _, opt := range opts {
		opt(&fixture)
	}
	return fixture
}

// WithCategoryName overrides the category name.
func WithCategoryName(name string) CategoryOption {
	return func(f *CategoryFixture) { f.Name = name }
}

// WithCategoryInactive marks the category as soft-deleted.
func WithCategoryInactive() CategoryOption {
	return func(f *CategoryFixture) { f.IsActive = false }
}

// WithCategorySortOrder overrides the sort order.
func WithCategorySortOrder(order int) CategoryOption {
	return func(f *CategoryFixture) { f.SortOrder = order }
}

// Persistence converts the fixture into a persistence model.
func (f CategoryFixture) Persistence() persistence.Category {
	return persistence.Category{
		ID:        f.ID,
		Name:      f.Name,
		IsActive:  f.IsActive,
		SortOrder: f.SortOrder,
		CreatedAt: f.CreatedAt,
	}
}

// ---------------------------- Session fixtures ----------------------------

// SessionFixture represents a deterministic session record. Sessions are
// generated closed by default so multiple fixtures coexist without violating
// the single-active-session rule.
type SessionFixture struct {
	ID          string
	CategoryID  *string
	Description string
	StartUTC    time.Time
	EndUTC      *time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// SessionOption configures the generated session fixture.
type SessionOption func(*SessionFixture)

// NewSessionFixture returns a deterministic closed session fixture with
// optional overrides.
func NewSessionFixture(opts ...SessionOption) SessionFixture {
	idx := atomic.AddUint64(&sessionCounter, 1)
	start := referenceTime.Add(time.Duration(idx) * time.Hour)
	end := start.Add(30 * time.Minute)
	fixture := SessionFixture{
		ID:          fmt.Sprintf("session-%03d", idx),
		Description: fmt.Sprintf("work item %03d", idx),
		StartUTC:    start,
		EndUTC:      &end,
		CreatedAt:   start,
		UpdatedAt:   end,
	}
	for _, opt := range opts {
		opt(&fixture)
	}
	return fixture
}

// WithSessionCategory attaches a category reference.
func WithSessionCategory(categoryID string) SessionOption {
	return func(f *SessionFixture) { f.CategoryID = &categoryID }
}

// WithSessionDescription overrides the description.
func WithSessionDescription(description string) SessionOption {
	return func(f *SessionFixture) { f.Description = description }
}

// WithSessionStart moves the session start, keeping the 30 minute span.
func WithSessionStart(start time.Time) SessionOption {
	return func(f *SessionFixture) {
		f.StartUTC = start
		if f.EndUTC != nil {
			end := start.Add(30 * time.Minute)
			f.EndUTC = &end
		}
	}
}

// WithSessionRunning clears the end time, marking the session as running.
func WithSessionRunning() SessionOption {
	return func(f *SessionFixture) { f.EndUTC = nil }
}

// WithSessionEnd sets an explicit end time.
func WithSessionEnd(end time.Time) SessionOption {
	return func(f *SessionFixture) { f.EndUTC = &end }
}

// Persistence converts the fixture into a persistence model.
func (f SessionFixture) Persistence() persistence.Session {
	return persistence.Session{
		ID:          f.ID,
		CategoryID:  f.CategoryID,
		Description: f.Description,
		StartUTC:    f.StartUTC,
		EndUTC:      f.EndUTC,
		CreatedAt:   f.CreatedAt,
		UpdatedAt:   f.UpdatedAt,
	}
}
