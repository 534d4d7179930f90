package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/example/timetracker/internal/persistence"
)

// SessionRepository captures the persistence operations needed by the service.
type SessionRepository interface {
	CreateSession(ctx context.Context, session Session) (Session, error)
	UpdateSession(ctx context.Context, session Session) (Session, error)
	GetSession(ctx context.Context, id string) (Session, error)
	GetActiveSession(ctx context.Context) (Session, error)
	ListSessions(ctx context.Context) ([]Session, error)
	DeleteSession(ctx context.Context, id string) error
}

// CategoryDirectory resolves category references supplied on session writes.
type CategoryDirectory interface {
	CategoryExists(ctx context.Context, id string) (bool, error)
}

// SessionService is the only place the single-active-session and time-ordering
// rules are enforced. Mutating calls are serialized behind a mutex so the
// check-then-write sequence stays atomic even when the repository offers no
// transactional guard of its own.
type SessionService struct {
	mu          sync.Mutex
	sessions    SessionRepository
	categories  CategoryDirectory
	idGenerator func() string
	now         func() time.Time
	logger      *slog.Logger
}

// NewSessionService constructs a session service with the provided dependencies.
func NewSessionService(sessions SessionRepository, categories CategoryDirectory, idGenerator func() string, now func() time.Time) *SessionService {
	return NewSessionServiceWithLogger(sessions, categories, idGenerator, now, nil)
}

// NewSessionServiceWithLogger constructs a session service with a specified logger.
func NewSessionServiceWithLogger(sessions SessionRepository, categories CategoryDirectory, idGenerator func() string, now func() time.Time, logger *slog.Logger) *SessionService {
	if idGenerator == nil {
		idGenerator = func() string { return "" }
	}
	if now == nil {
		now = time.Now
	}
	return &SessionService{
		sessions:    sessions,
		categories:  categories,
		idGenerator: idGenerator,
		now:         now,
		logger:      defaultLogger(logger),
	}
}

func (s *SessionService) loggerWith(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return serviceLogger(ctx, s.logger, "SessionService", operation, attrs...)
}

// Start creates a new running session. It fails with ErrSessionRunning when a
// session is already open. The optional category must exist; soft-deleted
// categories are accepted, they are only filtered from selection lists.
func (s *SessionService) Start(ctx context.Context, params StartSessionParams) (session Session, err error) {
	if s == nil {
		err = fmt.Errorf("SessionService is nil")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	logger := s.loggerWith(ctx, "Start")
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to start session", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.With("session_id", session.ID).InfoContext(ctx, "session started")
	}()

	if _, activeErr := s.sessions.GetActiveSession(ctx); activeErr == nil {
		err = ErrSessionRunning
		return
	} else if !isNotFound(activeErr) {
		err = activeErr
		return
	}

	if err = s.validateCategoryRef(ctx, params.CategoryID); err != nil {
		return
	}

	now := s.now().UTC()
	session = Session{
		ID:          s.idGenerator(),
		CategoryID:  cloneStringPtr(params.CategoryID),
		Description: params.Description,
		StartUTC:    now,
		EndUTC:      nil,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	session, err = s.sessions.CreateSession(ctx, session)
	if err != nil {
		err = mapSessionRepoError(err)
		return
	}

	return
}

// Stop closes the running session, stamping its end time from the clock. It
// fails with ErrNotFound when nothing is running.
func (s *SessionService) Stop(ctx context.Context) (session Session, err error) {
	if s == nil {
		err = fmt.Errorf("SessionService is nil")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	logger := s.loggerWith(ctx, "Stop")
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to stop session", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.With("session_id", session.ID).InfoContext(ctx, "session stopped")
	}()

	active, err := s.sessions.GetActiveSession(ctx)
	if err != nil {
		err = mapSessionRepoError(err)
		return
	}

	now := s.now().UTC()
	active.EndUTC = &now
	active.UpdatedAt = now

	session, err = s.sessions.UpdateSession(ctx, active)
	if err != nil {
		err = mapSessionRepoError(err)
		return
	}

	return
}

// Edit overwrites the mutable fields of a session. Validation order: the
// session must exist, a supplied category must exist, a supplied end time must
// be strictly after the start time, and the start time is required. Clearing
// the end time re-opens a closed session, which is permitted only while no
// other session is running.
func (s *SessionService) Edit(ctx context.Context, params EditSessionParams) (session Session, err error) {
	if s == nil {
		err = fmt.Errorf("SessionService is nil")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	logger := s.loggerWith(ctx, "Edit", "session_id", params.SessionID)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to edit session", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.InfoContext(ctx, "session edited")
	}()

	var existing Session
	existing, err = s.sessions.GetSession(ctx, params.SessionID)
	if err != nil {
		err = mapSessionRepoError(err)
		return
	}

	if err = s.validateCategoryRef(ctx, params.CategoryID); err != nil {
		return
	}

	if params.EndUTC != nil && !params.EndUTC.After(params.StartUTC) {
		vErr := &ValidationError{}
		vErr.add("end_utc", "end time must be after start time")
		err = vErr
		return
	}

	if params.StartUTC.IsZero() {
		vErr := &ValidationError{}
		vErr.add("start_utc", "start time is required")
		err = vErr
		return
	}

	updated := existing
	updated.CategoryID = cloneStringPtr(params.CategoryID)
	updated.Description = params.Description
	updated.StartUTC = params.StartUTC.UTC()
	updated.EndUTC = cloneTimePtr(params.EndUTC)
	updated.UpdatedAt = s.now().UTC()

	session, err = s.sessions.UpdateSession(ctx, updated)
	if err != nil {
		err = mapSessionRepoError(err)
		return
	}

	return
}

// Delete permanently removes a closed session. The running session cannot be
// deleted; it must be stopped first.
func (s *SessionService) Delete(ctx context.Context, sessionID string) error {
	if s == nil {
		return fmt.Errorf("SessionService is nil")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	logger := s.loggerWith(ctx, "Delete", "session_id", sessionID)

	existing, err := s.sessions.GetSession(ctx, sessionID)
	if err != nil {
		err = mapSessionRepoError(err)
		logger.ErrorContext(ctx, "failed to delete session", "error", err, "error_kind", ErrorKind(err))
		return err
	}

	if existing.Running() {
		logger.ErrorContext(ctx, "failed to delete session", "error", ErrSessionRunning, "error_kind", ErrorKind(ErrSessionRunning))
		return ErrSessionRunning
	}

	if err := s.sessions.DeleteSession(ctx, sessionID); err != nil {
		err = mapSessionRepoError(err)
		logger.ErrorContext(ctx, "failed to delete session", "error", err, "error_kind", ErrorKind(err))
		return err
	}

	logger.InfoContext(ctx, "session deleted")
	return nil
}

// Current returns the running session, or nil when nothing is running. The
// result is always derived from the store, never cached.
func (s *SessionService) Current(ctx context.Context) (*Session, error) {
	if s == nil {
		return nil, fmt.Errorf("SessionService is nil")
	}

	active, err := s.sessions.GetActiveSession(ctx)
	if err != nil {
		if isNotFound(err) {
			return nil, nil
		}
		return nil, err
	}
	return &active, nil
}

// List returns all sessions, most recent start first.
func (s *SessionService) List(ctx context.Context) ([]Session, error) {
	if s == nil {
		return nil, fmt.Errorf("SessionService is nil")
	}
	sessions, err := s.sessions.ListSessions(ctx)
	if err != nil {
		return nil, mapSessionRepoError(err)
	}
	return sessions, nil
}

// validateCategoryRef checks that a supplied category id references an existing
// category. Active state is deliberately not checked.
func (s *SessionService) validateCategoryRef(ctx context.Context, categoryID *string) error {
	if categoryID == nil || s.categories == nil {
		return nil
	}
	exists, err := s.categories.CategoryExists(ctx, *categoryID)
	if err != nil {
		return err
	}
	if !exists {
		vErr := &ValidationError{}
		vErr.add("category_id", "category does not exist")
		return vErr
	}
	return nil
}

func isNotFound(err error) bool {
	return errors.Is(err, ErrNotFound) || errors.Is(err, persistence.ErrNotFound)
}

func mapSessionRepoError(err error) error {
	if err == nil {
		return nil
	}
	if isNotFound(err) {
		return ErrNotFound
	}
	if errors.Is(err, persistence.ErrActiveSessionExists) {
		return ErrSessionRunning
	}
	if errors.Is(err, persistence.ErrForeignKeyViolation) {
		vErr := &ValidationError{}
		vErr.add("category_id", "category does not exist")
		return vErr
	}
	return err
}

func cloneStringPtr(value *string) *string {
	if value == nil {
		return nil
	}
	clone := *value
	return &clone
}

func cloneTimePtr(value *time.Time) *time.Time {
	if value == nil {
		return nil
	}
	clone := value.UTC()
	return &clone
}
