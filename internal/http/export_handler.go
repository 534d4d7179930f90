package http

import (
	"log/slog"
	"net/http"
	"time"

	"github.com/example/timetracker/internal/application"
)

// ExportHandler streams the full session history as a CSV attachment.
type ExportHandler struct {
	sessions   sessionService
	categories categoryService
	now        func() time.Time
	responder  responder
	logger     *slog.Logger
}

// NewExportHandler constructs an export handler. Running sessions compute their
// duration up to the injected clock's current time.
func NewExportHandler(sessions sessionService, categories categoryService, now func() time.Time, logger *slog.Logger) *ExportHandler {
	base := defaultLogger(logger)
	if now == nil {
		now = time.Now
	}
	return &ExportHandler{
		sessions:   sessions,
		categories: categories,
		now:        now,
		responder:  newResponder(base),
		logger:     base,
	}
}

// Export writes the CSV document.
func (h *ExportHandler) Export(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.sessions == nil || h.categories == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	logger := handlerLogger(r.Context(), h.logger, "ExportHandler", "Export")

	sessions, err := h.sessions.List(r.Context())
	if err != nil {
		logger.ErrorContext(r.Context(), "session list failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	categories, err := h.categories.ListAll(r.Context())
	if err != nil {
		logger.ErrorContext(r.Context(), "category list failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	w.Header().Set("Content-Disposition", `attachment; filename="sessions.csv"`)
	w.WriteHeader(http.StatusOK)

	if err := application.ExportCSV(w, sessions, application.CategoriesByID(categories), h.now().UTC()); err != nil {
		// Headers are already flushed; the best we can do is log.
		logger.ErrorContext(r.Context(), "csv export failed", "error", err)
		return
	}

	logger.With("result_count", len(sessions)).InfoContext(r.Context(), "sessions exported")
}
