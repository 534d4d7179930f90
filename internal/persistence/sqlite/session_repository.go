package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/example/timetracker/internal/persistence"
)

// SessionRepository implements persistence.SessionRepository using SQLite.
//
// Writes that could produce a second running session perform the active-session
// check inside the same transaction as the write, so concurrent callers observe
// the single-active-session rule even without service-level locking.
type SessionRepository struct {
	pool   *ConnectionPool
	helper *QueryHelper
	mapper *ErrorMapper
}

// NewSessionRepository creates a new SQLite session repository.
func NewSessionRepository(pool *ConnectionPool) *SessionRepository {
	return &SessionRepository{
		pool:   pool,
		helper: NewQueryHelper(pool),
		mapper: NewErrorMapper(),
	}
}

// CreateSession stores a new session. Creating a running session fails with
// persistence.ErrActiveSessionExists when another running session is present.
func (r *SessionRepository) CreateSession(ctx context.Context, session persistence.Session) error {
	if session.ID == "" || session.StartUTC.IsZero() {
		return persistence.ErrConstraintViolation
	}

	return r.pool.WithTransaction(ctx, func(tx *sql.Tx) error {
		if session.EndUTC == nil {
			if err := r.ensureNoOtherActiveTx(tx, ""); err != nil {
				return err
			}
		}

		query := `
			INSERT INTO sessions (id, category_id, description, start_utc, end_utc, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?, ?, ?)
		`
		_, err := r.helper.ExecTx(tx, query,
			session.ID,
			nullableString(session.CategoryID),
			session.Description,
			session.StartUTC.UTC().Format(time.RFC3339),
			nullableTime(session.EndUTC),
			session.CreatedAt.UTC().Format(time.RFC3339),
			session.UpdatedAt.UTC().Format(time.RFC3339),
		)
		if err != nil {
			return r.mapper.MapError(err)
		}
		return nil
	})
}

// UpdateSession overwrites the mutable fields of an existing session. Clearing
// the end time re-opens the session and is rejected with
// persistence.ErrActiveSessionExists while another session is running.
func (r *SessionRepository) UpdateSession(ctx context.Context, session persistence.Session) error {
	if session.ID == "" || session.StartUTC.IsZero() {
		return persistence.ErrConstraintViolation
	}

	return r.pool.WithTransaction(ctx, func(tx *sql.Tx) error {
		if session.EndUTC == nil {
			if err := r.ensureNoOtherActiveTx(tx, session.ID); err != nil {
				return err
			}
		}

		query := `
			UPDATE sessions
			SET category_id = ?, description = ?, start_utc = ?, end_utc = ?, updated_at = ?
			WHERE id = ?
		`
		result, err := r.helper.ExecTx(tx, query,
			nullableString(session.CategoryID),
			session.Description,
			session.StartUTC.UTC().Format(time.RFC3339),
			nullableTime(session.EndUTC),
			session.UpdatedAt.UTC().Format(time.RFC3339),
			session.ID,
		)
		if err != nil {
			return r.mapper.MapError(err)
		}

		rowsAffected, err := result.RowsAffected()
		if err != nil {
			return fmt.Errorf("failed to get rows affected: %w", err)
		}
		if rowsAffected == 0 {
			return persistence.ErrNotFound
		}
		return nil
	})
}

// GetSession retrieves a session by ID.
func (r *SessionRepository) GetSession(ctx context.Context, id string) (persistence.Session, error) {
	query := sessionSelect + ` WHERE id = ?`
	return scanSession(r.helper.QueryRow(ctx, query, id))
}

// GetActiveSession returns the running session, or persistence.ErrNotFound when
// nothing is running. The running session is always a derived query rather than
// cached state, so restarts and concurrent writers stay consistent.
func (r *SessionRepository) GetActiveSession(ctx context.Context) (persistence.Session, error) {
	query := sessionSelect + ` WHERE end_utc IS NULL`
	return scanSession(r.helper.QueryRow(ctx, query))
}

// ListSessions returns all sessions ordered by start time descending.
func (r *SessionRepository) ListSessions(ctx context.Context) ([]persistence.Session, error) {
	query := sessionSelect + ` ORDER BY start_utc DESC, id DESC`

	rows, err := r.helper.Query(ctx, query)
	if err != nil {
		return nil, r.mapper.MapError(err)
	}
	defer rows.Close()

	var sessions []persistence.Session
	for rows.Next() {
		session, err := scanSessionRow(rows)
		if err != nil {
			return nil, err
		}
		sessions = append(sessions, session)
	}
	if err := rows.Err(); err != nil {
		return nil, r.mapper.MapError(err)
	}

	return sessions, nil
}

// DeleteSession permanently removes a session record.
func (r *SessionRepository) DeleteSession(ctx context.Context, id string) error {
	result, err := r.helper.Exec(ctx, `DELETE FROM sessions WHERE id = ?`, id)
	if err != nil {
		return r.mapper.MapError(err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return persistence.ErrNotFound
	}

	return nil
}

// ensureNoOtherActiveTx fails when a running session other than excludeID exists.
func (r *SessionRepository) ensureNoOtherActiveTx(tx *sql.Tx, excludeID string) error {
	var count int
	err := r.helper.QueryRowTx(tx,
		`SELECT COUNT(*) FROM sessions WHERE end_utc IS NULL AND id != ?`, excludeID,
	).Scan(&count)
	if err != nil {
		return r.mapper.MapError(err)
	}
	if count > 0 {
		return persistence.ErrActiveSessionExists
	}
	return nil
}

const sessionSelect = `
	SELECT id, category_id, description, start_utc, end_utc, created_at, updated_at
	FROM sessions`

func scanSession(row *sql.Row) (persistence.Session, error) {
	return scanSessionRow(row)
}

func scanSessionRow(row rowScanner) (persistence.Session, error) {
	var session persistence.Session
	var categoryID sql.NullString
	var startStr, createdAtStr, updatedAtStr string
	var endStr sql.NullString

	err := row.Scan(
		&session.ID,
		&categoryID,
		&session.Description,
		&startStr,
		&endStr,
		&createdAtStr,
		&updatedAtStr,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return persistence.Session{}, persistence.ErrNotFound
		}
		return persistence.Session{}, err
	}

	if categoryID.Valid {
		value := categoryID.String
		session.CategoryID = &value
	}
	if session.StartUTC, err = time.Parse(time.RFC3339, startStr); err != nil {
		return persistence.Session{}, fmt.Errorf("failed to parse start_utc: %w", err)
	}
	if endStr.Valid {
		end, err := time.Parse(time.RFC3339, endStr.String)
		if err != nil {
			return persistence.Session{}, fmt.Errorf("failed to parse end_utc: %w", err)
		}
		session.EndUTC = &end
	}
	if session.CreatedAt, err = time.Parse(time.RFC3339, createdAtStr); err != nil {
		return persistence.Session{}, fmt.Errorf("failed to parse created_at: %w", err)
	}
	if session.UpdatedAt, err = time.Parse(time.RFC3339, updatedAtStr); err != nil {
		return persistence.Session{}, fmt.Errorf("failed to parse updated_at: %w", err)
	}

	return session, nil
}

func nullableString(value *string) sql.NullString {
	if value == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *value, Valid: true}
}

func nullableTime(value *time.Time) sql.NullString {
	if value == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: value.UTC().Format(time.RFC3339), Valid: true}
}
