package application

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/example/timetracker/internal/persistence"
)

type sessionRepoStub struct {
	session   Session
	active    *Session
	created   Session
	updated   Session
	deletedID string
	err       error
	createErr error
	updateErr error
	deleteErr error
	list      []Session
	listErr   error
}

func (s *sessionRepoStub) CreateSession(ctx context.Context, session Session) (Session, error) {
	if s.createErr != nil {
		return Session{}, s.createErr
	}
	if s.err != nil {
		return Session{}, s.err
	}
	s.created = session
	return session, nil
}

func (s *sessionRepoStub) UpdateSession(ctx context.Context, session Session) (Session, error) {
	if s.updateErr != nil {
		return Session{}, s.updateErr
	}
	if s.err != nil {
		return Session{}, s.err
	}
	s.updated = session
	return session, nil
}

func (s *sessionRepoStub) GetSession(ctx context.Context, id string) (Session, error) {
	if s.err != nil {
		return Session{}, s.err
	}
	if s.session.ID == "" || s.session.ID != id {
		return Session{}, ErrNotFound
	}
	return s.session, nil
}

func (s *sessionRepoStub) GetActiveSession(ctx context.Context) (Session, error) {
	if s.err != nil {
		return Session{}, s.err
	}
	if s.active == nil {
		return Session{}, ErrNotFound
	}
	return *s.active, nil
}

func (s *sessionRepoStub) ListSessions(ctx context.Context) ([]Session, error) {
	if s.listErr != nil {
		return nil, s.listErr
	}
	if s.err != nil {
		return nil, s.err
	}
	if len(s.list) == 0 {
		return nil, nil
	}
	out := make([]Session, len(s.list))
	copy(out, s.list)
	return out, nil
}

func (s *sessionRepoStub) DeleteSession(ctx context.Context, id string) error {
	if s.deleteErr != nil {
		return s.deleteErr
	}
	s.deletedID = id
	return nil
}

type categoryDirectoryStub struct {
	exists bool
	err    error
}

func (c *categoryDirectoryStub) CategoryExists(ctx context.Context, id string) (bool, error) {
	if c.err != nil {
		return false, c.err
	}
	return c.exists, nil
}

func mustUTC(t *testing.T, hour, minute int) time.Time {
	t.Helper()
	return time.Date(2024, 3, 14, hour, minute, 0, 0, time.UTC)
}

func newSessionServiceForTest(repo *sessionRepoStub, dir *categoryDirectoryStub, now time.Time) *SessionService {
	return NewSessionService(repo, dir, func() string { return "session-1" }, func() time.Time { return now })
}

func TestSessionService_Start_CreatesRunningSession(t *testing.T) {
	t.Parallel()

	repo := &sessionRepoStub{}
	start := mustUTC(t, 9, 0)
	svc := newSessionServiceForTest(repo, &categoryDirectoryStub{exists: true}, start)

	categoryID := "category-1"
	session, err := svc.Start(context.Background(), StartSessionParams{
		CategoryID:  &categoryID,
		Description: "morning work",
	})
	if err != nil {
		t.Fatalf("Start failed: %v", err)
	}

	if session.ID != "session-1" {
		t.Fatalf("expected generated id, got %q", session.ID)
	}
	if session.EndUTC != nil {
		t.Fatalf("expected running session, got end %v", session.EndUTC)
	}
	if !session.StartUTC.Equal(start) {
		t.Fatalf("expected start %v, got %v", start, session.StartUTC)
	}
	if repo.created.CategoryID == nil || *repo.created.CategoryID != categoryID {
		t.Fatalf("expected category reference, got %#v", repo.created.CategoryID)
	}
	if repo.created.Description != "morning work" {
		t.Fatalf("unexpected description %q", repo.created.Description)
	}
}

func TestSessionService_Start_RejectsWhenSessionRunning(t *testing.T) {
	t.Parallel()

	running := Session{ID: "session-0", StartUTC: mustUTC(t, 8, 0)}
	repo := &sessionRepoStub{active: &running}
	svc := newSessionServiceForTest(repo, &categoryDirectoryStub{exists: true}, mustUTC(t, 9, 0))

	_, err := svc.Start(context.Background(), StartSessionParams{Description: "second"})
	if !errors.Is(err, ErrSessionRunning) {
		t.Fatalf("expected ErrSessionRunning, got %v", err)
	}
	if repo.created.ID != "" {
		t.Fatalf("no session should be created, got %#v", repo.created)
	}
}

func TestSessionService_Start_RejectsUnknownCategory(t *testing.T) {
	t.Parallel()

	repo := &sessionRepoStub{}
	svc := newSessionServiceForTest(repo, &categoryDirectoryStub{exists: false}, mustUTC(t, 9, 0))

	categoryID := "missing"
	_, err := svc.Start(context.Background(), StartSessionParams{CategoryID: &categoryID})

	var vErr *ValidationError
	if !errors.As(err, &vErr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if _, ok := vErr.FieldErrors["category_id"]; !ok {
		t.Fatalf("expected category_id field error, got %#v", vErr.FieldErrors)
	}
}

func TestSessionService_Start_MapsRepositoryActiveGuard(t *testing.T) {
	t.Parallel()

	repo := &sessionRepoStub{createErr: persistence.ErrActiveSessionExists}
	svc := newSessionServiceForTest(repo, &categoryDirectoryStub{exists: true}, mustUTC(t, 9, 0))

	_, err := svc.Start(context.Background(), StartSessionParams{})
	if !errors.Is(err, ErrSessionRunning) {
		t.Fatalf("expected ErrSessionRunning, got %v", err)
	}
}

func TestSessionService_Stop_StampsEndTimeFromClock(t *testing.T) {
	t.Parallel()

	running := Session{ID: "session-1", StartUTC: mustUTC(t, 9, 0)}
	repo := &sessionRepoStub{active: &running}
	svc := newSessionServiceForTest(repo, nil, mustUTC(t, 10, 30))

	session, err := svc.Stop(context.Background())
	if err != nil {
		t.Fatalf("Stop failed: %v", err)
	}

	if session.EndUTC == nil || !session.EndUTC.Equal(mustUTC(t, 10, 30)) {
		t.Fatalf("unexpected end time: %#v", session.EndUTC)
	}

	elapsed, err := SessionElapsed(session, mustUTC(t, 23, 0))
	if err != nil {
		t.Fatalf("SessionElapsed failed: %v", err)
	}
	if got := FormatDuration(elapsed); got != "01:30:00" {
		t.Fatalf("expected duration 01:30:00, got %q", got)
	}
}

func TestSessionService_Stop_WithoutRunningSession(t *testing.T) {
	t.Parallel()

	repo := &sessionRepoStub{}
	svc := newSessionServiceForTest(repo, nil, mustUTC(t, 10, 0))

	_, err := svc.Stop(context.Background())
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestSessionService_Edit_RejectsEndNotAfterStart(t *testing.T) {
	t.Parallel()

	closedEnd := mustUTC(t, 10, 0)
	repo := &sessionRepoStub{session: Session{ID: "session-1", StartUTC: mustUTC(t, 9, 0), EndUTC: &closedEnd}}
	svc := newSessionServiceForTest(repo, nil, mustUTC(t, 12, 0))

	start := mustUTC(t, 9, 0)
	end := mustUTC(t, 9, 0)
	_, err := svc.Edit(context.Background(), EditSessionParams{
		SessionID: "session-1",
		StartUTC:  start,
		EndUTC:    &end,
	})

	var vErr *ValidationError
	if !errors.As(err, &vErr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if _, ok := vErr.FieldErrors["end_utc"]; !ok {
		t.Fatalf("expected end_utc field error, got %#v", vErr.FieldErrors)
	}
	if repo.updated.ID != "" {
		t.Fatalf("no update should be issued, got %#v", repo.updated)
	}
}

func TestSessionService_Edit_RequiresStartTime(t *testing.T) {
	t.Parallel()

	repo := &sessionRepoStub{session: Session{ID: "session-1", StartUTC: mustUTC(t, 9, 0)}}
	svc := newSessionServiceForTest(repo, nil, mustUTC(t, 12, 0))

	_, err := svc.Edit(context.Background(), EditSessionParams{SessionID: "session-1"})

	var vErr *ValidationError
	if !errors.As(err, &vErr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if _, ok := vErr.FieldErrors["start_utc"]; !ok {
		t.Fatalf("expected start_utc field error, got %#v", vErr.FieldErrors)
	}
}

func TestSessionService_Edit_UnknownSession(t *testing.T) {
	t.Parallel()

	repo := &sessionRepoStub{}
	svc := newSessionServiceForTest(repo, nil, mustUTC(t, 12, 0))

	_, err := svc.Edit(context.Background(), EditSessionParams{
		SessionID: "ghost",
		StartUTC:  mustUTC(t, 9, 0),
	})
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestSessionService_Edit_UnknownCategory(t *testing.T) {
	t.Parallel()

	repo := &sessionRepoStub{session: Session{ID: "session-1", StartUTC: mustUTC(t, 9, 0)}}
	svc := newSessionServiceForTest(repo, &categoryDirectoryStub{exists: false}, mustUTC(t, 12, 0))

	categoryID := "missing"
	_, err := svc.Edit(context.Background(), EditSessionParams{
		SessionID:  "session-1",
		CategoryID: &categoryID,
		StartUTC:   mustUTC(t, 9, 0),
	})

	var vErr *ValidationError
	if !errors.As(err, &vErr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if _, ok := vErr.FieldErrors["category_id"]; !ok {
		t.Fatalf("expected category_id field error, got %#v", vErr.FieldErrors)
	}
}

func TestSessionService_Edit_ReopensClosedSession(t *testing.T) {
	t.Parallel()

	closedEnd := mustUTC(t, 10, 0)
	repo := &sessionRepoStub{session: Session{
		ID:          "session-1",
		Description: "old",
		StartUTC:    mustUTC(t, 9, 0),
		EndUTC:      &closedEnd,
	}}
	svc := newSessionServiceForTest(repo, nil, mustUTC(t, 12, 0))

	session, err := svc.Edit(context.Background(), EditSessionParams{
		SessionID:   "session-1",
		Description: "resumed",
		StartUTC:    mustUTC(t, 9, 0),
	})
	if err != nil {
		t.Fatalf("Edit failed: %v", err)
	}

	if session.EndUTC != nil {
		t.Fatalf("expected reopened session, got end %v", session.EndUTC)
	}
	if repo.updated.Description != "resumed" {
		t.Fatalf("unexpected description %q", repo.updated.Description)
	}
	if !repo.updated.UpdatedAt.Equal(mustUTC(t, 12, 0)) {
		t.Fatalf("expected update stamp from clock, got %v", repo.updated.UpdatedAt)
	}
}

func TestSessionService_Edit_ReopenBlockedWhileAnotherRuns(t *testing.T) {
	t.Parallel()

	closedEnd := mustUTC(t, 10, 0)
	repo := &sessionRepoStub{
		session:   Session{ID: "session-1", StartUTC: mustUTC(t, 9, 0), EndUTC: &closedEnd},
		updateErr: persistence.ErrActiveSessionExists,
	}
	svc := newSessionServiceForTest(repo, nil, mustUTC(t, 12, 0))

	_, err := svc.Edit(context.Background(), EditSessionParams{
		SessionID: "session-1",
		StartUTC:  mustUTC(t, 9, 0),
	})
	if !errors.Is(err, ErrSessionRunning) {
		t.Fatalf("expected ErrSessionRunning, got %v", err)
	}
}

func TestSessionService_Delete_RejectsRunningSession(t *testing.T) {
	t.Parallel()

	repo := &sessionRepoStub{session: Session{ID: "session-1", StartUTC: mustUTC(t, 9, 0)}}
	svc := newSessionServiceForTest(repo, nil, mustUTC(t, 12, 0))

	err := svc.Delete(context.Background(), "session-1")
	if !errors.Is(err, ErrSessionRunning) {
		t.Fatalf("expected ErrSessionRunning, got %v", err)
	}
	if repo.deletedID != "" {
		t.Fatalf("running session must not be deleted, got %q", repo.deletedID)
	}
}

func TestSessionService_Delete_RemovesClosedSession(t *testing.T) {
	t.Parallel()

	closedEnd := mustUTC(t, 10, 0)
	repo := &sessionRepoStub{session: Session{ID: "session-1", StartUTC: mustUTC(t, 9, 0), EndUTC: &closedEnd}}
	svc := newSessionServiceForTest(repo, nil, mustUTC(t, 12, 0))

	if err := svc.Delete(context.Background(), "session-1"); err != nil {
		t.Fatalf("Delete failed: %v", err)
	}
	if repo.deletedID != "session-1" {
		t.Fatalf("expected delete of session-1, got %q", repo.deletedID)
	}
}

func TestSessionService_Current_ReturnsNilWhenIdle(t *testing.T) {
	t.Parallel()

	svc := newSessionServiceForTest(&sessionRepoStub{}, nil, mustUTC(t, 12, 0))

	session, err := svc.Current(context.Background())
	if err != nil {
		t.Fatalf("Current failed: %v", err)
	}
	if session != nil {
		t.Fatalf("expected nil session, got %#v", session)
	}
}

func TestSessionService_Current_ReturnsRunningSession(t *testing.T) {
	t.Parallel()

	running := Session{ID: "session-1", StartUTC: mustUTC(t, 9, 0)}
	svc := newSessionServiceForTest(&sessionRepoStub{active: &running}, nil, mustUTC(t, 12, 0))

	session, err := svc.Current(context.Background())
	if err != nil {
		t.Fatalf("Current failed: %v", err)
	}
	if session == nil || session.ID != "session-1" {
		t.Fatalf("expected running session, got %#v", session)
	}
}

func TestSessionService_List_PassesThroughRepository(t *testing.T) {
	t.Parallel()

	repo := &sessionRepoStub{list: []Session{
		{ID: "session-2", StartUTC: mustUTC(t, 11, 0)},
		{ID: "session-1", StartUTC: mustUTC(t, 9, 0)},
	}}
	svc := newSessionServiceForTest(repo, nil, mustUTC(t, 12, 0))

	sessions, err := svc.List(context.Background())
	if err != nil {
		t.Fatalf("List failed: %v", err)
	}
	if len(sessions) != 2 || sessions[0].ID != "session-2" {
		t.Fatalf("unexpected listing: %#v", sessions)
	}
}
