package http

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/example/timetracker/internal/application"
)

type sessionService interface {
	Start(ctx context.Context, params application.StartSessionParams) (application.Session, error)
	Stop(ctx context.Context) (application.Session, error)
	Edit(ctx context.Context, params application.EditSessionParams) (application.Session, error)
	Delete(ctx context.Context, sessionID string) error
	Current(ctx context.Context) (*application.Session, error)
	List(ctx context.Context) ([]application.Session, error)
}

// SessionHandler exposes the session lifecycle over JSON endpoints.
type SessionHandler struct {
	service   sessionService
	now       func() time.Time
	responder responder
	logger    *slog.Logger
}

// NewSessionHandler constructs a session handler. The clock feeds live duration
// fields on listings; when nil, time.Now is used.
func NewSessionHandler(service sessionService, now func() time.Time, logger *slog.Logger) *SessionHandler {
	base := defaultLogger(logger)
	if now == nil {
		now = time.Now
	}
	return &SessionHandler{service: service, now: now, responder: newResponder(base), logger: base}
}

func (h *SessionHandler) log(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	if h == nil {
		return slog.Default()
	}
	return handlerLogger(ctx, h.logger, "SessionHandler", operation, attrs...)
}

// Start begins a new work session.
func (h *SessionHandler) Start(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	var req startSessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.log(r.Context(), "Start", "error_kind", "bad_request").ErrorContext(r.Context(), "failed to decode start request", "error", err)
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	logger := h.log(r.Context(), "Start")

	session, err := h.service.Start(r.Context(), application.StartSessionParams{
		CategoryID:  normalizeOptionalID(req.CategoryID),
		Description: req.Description,
	})
	if err != nil {
		logger.ErrorContext(r.Context(), "session start failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.With("session_id", session.ID).InfoContext(r.Context(), "session started")
	h.responder.writeJSON(r.Context(), w, http.StatusCreated, sessionResponse{Session: h.toSessionDTO(session)})
}

// Stop closes the running session.
func (h *SessionHandler) Stop(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	logger := h.log(r.Context(), "Stop")

	session, err := h.service.Stop(r.Context())
	if err != nil {
		logger.ErrorContext(r.Context(), "session stop failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.With("session_id", session.ID).InfoContext(r.Context(), "session stopped")
	h.responder.writeJSON(r.Context(), w, http.StatusOK, sessionResponse{Session: h.toSessionDTO(session)})
}

// Current returns the running session, if any.
func (h *SessionHandler) Current(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	logger := h.log(r.Context(), "Current")

	session, err := h.service.Current(r.Context())
	if err != nil {
		logger.ErrorContext(r.Context(), "current session lookup failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	if session == nil {
		h.responder.writeJSON(r.Context(), w, http.StatusOK, currentSessionResponse{Session: nil})
		return
	}

	dto := h.toSessionDTO(*session)
	h.responder.writeJSON(r.Context(), w, http.StatusOK, currentSessionResponse{Session: &dto})
}

// List returns all sessions, most recent start first.
func (h *SessionHandler) List(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	logger := h.log(r.Context(), "List")

	sessions, err := h.service.List(r.Context())
	if err != nil {
		logger.ErrorContext(r.Context(), "session list failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.With("result_count", len(sessions)).InfoContext(r.Context(), "sessions listed")
	h.responder.writeJSON(r.Context(), w, http.StatusOK, listSessionsResponse{Sessions: h.toSessionDTOs(sessions)})
}

// Edit overwrites the mutable fields of a session.
func (h *SessionHandler) Edit(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	sessionID, ok := SessionIDFromContext(r.Context())
	if !ok || strings.TrimSpace(sessionID) == "" {
		h.log(r.Context(), "Edit", "error_kind", "bad_request").ErrorContext(r.Context(), "missing session id for edit")
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidSessionID)
		return
	}

	var req editSessionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.log(r.Context(), "Edit", "session_id", sessionID, "error_kind", "bad_request").ErrorContext(r.Context(), "failed to decode edit request", "error", err)
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	logger := h.log(r.Context(), "Edit", "session_id", sessionID)

	params, vErr := req.toParams(sessionID)
	if vErr != nil {
		logger.ErrorContext(r.Context(), "session edit rejected", "error", vErr, "error_kind", application.ErrorKind(vErr))
		h.responder.handleServiceError(r.Context(), w, vErr)
		return
	}

	session, err := h.service.Edit(r.Context(), params)
	if err != nil {
		logger.ErrorContext(r.Context(), "session edit failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.InfoContext(r.Context(), "session edited")
	h.responder.writeJSON(r.Context(), w, http.StatusOK, sessionResponse{Session: h.toSessionDTO(session)})
}

// Delete removes a closed session.
func (h *SessionHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	sessionID, ok := SessionIDFromContext(r.Context())
	if !ok || strings.TrimSpace(sessionID) == "" {
		h.log(r.Context(), "Delete", "error_kind", "bad_request").ErrorContext(r.Context(), "missing session id for delete")
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidSessionID)
		return
	}

	logger := h.log(r.Context(), "Delete", "session_id", sessionID)
	if err := h.service.Delete(r.Context(), sessionID); err != nil {
		logger.ErrorContext(r.Context(), "session delete failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.InfoContext(r.Context(), "session deleted")
	h.responder.writeJSON(r.Context(), w, http.StatusNoContent, nil)
}

type startSessionRequest struct {
	CategoryID  *string `json:"category_id"`
	Description string  `json:"description"`
}

type editSessionRequest struct {
	CategoryID  *string `json:"category_id"`
	Description string  `json:"description"`
	StartUTC    string  `json:"start_utc"`
	EndUTC      *string `json:"end_utc"`
}

func (r editSessionRequest) toParams(sessionID string) (application.EditSessionParams, *application.ValidationError) {
	params := application.EditSessionParams{
		SessionID:   sessionID,
		CategoryID:  normalizeOptionalID(r.CategoryID),
		Description: r.Description,
	}

	start, err := time.Parse(time.RFC3339, strings.TrimSpace(r.StartUTC))
	if err != nil {
		vErr := &application.ValidationError{FieldErrors: map[string]string{"start_utc": "start time must be a valid RFC 3339 timestamp"}}
		return application.EditSessionParams{}, vErr
	}
	params.StartUTC = start.UTC()

	if r.EndUTC != nil && strings.TrimSpace(*r.EndUTC) != "" {
		end, err := time.Parse(time.RFC3339, strings.TrimSpace(*r.EndUTC))
		if err != nil {
			vErr := &application.ValidationError{FieldErrors: map[string]string{"end_utc": "end time must be a valid RFC 3339 timestamp"}}
			return application.EditSessionParams{}, vErr
		}
		endUTC := end.UTC()
		params.EndUTC = &endUTC
	}

	return params, nil
}

func normalizeOptionalID(value *string) *string {
	if value == nil {
		return nil
	}
	trimmed := strings.TrimSpace(*value)
	if trimmed == "" {
		return nil
	}
	return &trimmed
}

type sessionResponse struct {
	Session sessionDTO `json:"session"`
}

type currentSessionResponse struct {
	Session *sessionDTO `json:"session"`
}

type listSessionsResponse struct {
	Sessions []sessionDTO `json:"sessions"`
}

type sessionDTO struct {
	ID          string  `json:"id"`
	CategoryID  *string `json:"category_id,omitempty"`
	Description string  `json:"description"`
	StartUTC    string  `json:"start_utc"`
	EndUTC      *string `json:"end_utc,omitempty"`
	Running     bool    `json:"running"`
	Duration    string  `json:"duration"`
	CreatedAt   string  `json:"created_at"`
	UpdatedAt   string  `json:"updated_at"`
}

func (h *SessionHandler) toSessionDTO(session application.Session) sessionDTO {
	dto := sessionDTO{
		ID:          session.ID,
		CategoryID:  session.CategoryID,
		Description: session.Description,
		StartUTC:    session.StartUTC.UTC().Format(time.RFC3339),
		Running:     session.Running(),
		CreatedAt:   session.CreatedAt.UTC().Format(time.RFC3339),
		UpdatedAt:   session.UpdatedAt.UTC().Format(time.RFC3339),
	}
	if session.EndUTC != nil {
		end := session.EndUTC.UTC().Format(time.RFC3339)
		dto.EndUTC = &end
	}
	if elapsed, err := application.SessionElapsed(session, h.now().UTC()); err == nil {
		dto.Duration = application.FormatDuration(elapsed)
	}
	return dto
}

func (h *SessionHandler) toSessionDTOs(sessions []application.Session) []sessionDTO {
	if len(sessions) == 0 {
		return nil
	}
	out := make([]sessionDTO, 0, len(sessions))
	for _, session := range sessions {
		out = append(out, h.toSessionDTO(session))
	}
	return out
}
