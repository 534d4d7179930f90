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

type categoryService interface {
	Create(ctx context.Context, params application.CreateCategoryParams) (application.Category, error)
	Rename(ctx context.Context, params application.RenameCategoryParams) (application.Category, error)
	Deactivate(ctx context.Context, categoryID string) error
	ListActive(ctx context.Context) ([]application.Category, error)
	ListAll(ctx context.Context) ([]application.Category, error)
}

// CategoryHandler exposes category management over JSON endpoints.
type CategoryHandler struct {
	service   categoryService
	responder responder
	logger    *slog.Logger
}

// NewCategoryHandler constructs a category handler.
func NewCategoryHandler(service categoryService, logger *slog.Logger) *CategoryHandler {
	base := defaultLogger(logger)
	return &CategoryHandler{service: service, responder: newResponder(base), logger: base}
}

func (h *CategoryHandler) log(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	if h == nil {
		return slog.Default()
	}
	return handlerLogger(ctx, h.logger, "CategoryHandler", operation, attrs...)
}

// Create adds a new category.
func (h *CategoryHandler) Create(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	var req categoryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.log(r.Context(), "Create", "error_kind", "bad_request").ErrorContext(r.Context(), "failed to decode category request", "error", err)
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	logger := h.log(r.Context(), "Create")

	category, err := h.service.Create(r.Context(), application.CreateCategoryParams{Name: req.Name})
	if err != nil {
		logger.ErrorContext(r.Context(), "category creation failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.With("category_id", category.ID).InfoContext(r.Context(), "category created")
	h.responder.writeJSON(r.Context(), w, http.StatusCreated, categoryResponse{Category: toCategoryDTO(category)})
}

// Rename updates the name of an existing category.
func (h *CategoryHandler) Rename(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	categoryID, ok := CategoryIDFromContext(r.Context())
	if !ok || strings.TrimSpace(categoryID) == "" {
		h.log(r.Context(), "Rename", "error_kind", "bad_request").ErrorContext(r.Context(), "missing category id for rename")
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidCategoryID)
		return
	}

	var req categoryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.log(r.Context(), "Rename", "category_id", categoryID, "error_kind", "bad_request").ErrorContext(r.Context(), "failed to decode category rename", "error", err)
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errBadRequestBody)
		return
	}

	logger := h.log(r.Context(), "Rename", "category_id", categoryID)

	category, err := h.service.Rename(r.Context(), application.RenameCategoryParams{
		CategoryID: categoryID,
		Name:       req.Name,
	})
	if err != nil {
		logger.ErrorContext(r.Context(), "category rename failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.InfoContext(r.Context(), "category renamed")
	h.responder.writeJSON(r.Context(), w, http.StatusOK, categoryResponse{Category: toCategoryDTO(category)})
}

// Deactivate soft-deletes a category.
func (h *CategoryHandler) Deactivate(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	categoryID, ok := CategoryIDFromContext(r.Context())
	if !ok || strings.TrimSpace(categoryID) == "" {
		h.log(r.Context(), "Deactivate", "error_kind", "bad_request").ErrorContext(r.Context(), "missing category id for deactivate")
		h.responder.writeError(r.Context(), w, http.StatusBadRequest, errInvalidCategoryID)
		return
	}

	logger := h.log(r.Context(), "Deactivate", "category_id", categoryID)
	if err := h.service.Deactivate(r.Context(), categoryID); err != nil {
		logger.ErrorContext(r.Context(), "category deactivate failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.InfoContext(r.Context(), "category deactivated")
	h.responder.writeJSON(r.Context(), w, http.StatusNoContent, nil)
}

// List returns categories; ?active=true restricts the result to active ones.
func (h *CategoryHandler) List(w http.ResponseWriter, r *http.Request) {
	if h == nil || h.service == nil {
		http.Error(w, http.StatusText(http.StatusInternalServerError), http.StatusInternalServerError)
		return
	}

	activeOnly := strings.EqualFold(r.URL.Query().Get("active"), "true")

	logger := h.log(r.Context(), "List", "active_only", activeOnly)

	var categories []application.Category
	var err error
	if activeOnly {
		categories, err = h.service.ListActive(r.Context())
	} else {
		categories, err = h.service.ListAll(r.Context())
	}
	if err != nil {
		logger.ErrorContext(r.Context(), "category list failed", "error", err, "error_kind", application.ErrorKind(err))
		h.responder.handleServiceError(r.Context(), w, err)
		return
	}

	logger.With("result_count", len(categories)).InfoContext(r.Context(), "categories listed")
	h.responder.writeJSON(r.Context(), w, http.StatusOK, listCategoriesResponse{Categories: toCategoryDTOs(categories)})
}

type categoryRequest struct {
	Name string `json:"name"`
}

type categoryResponse struct {
	Category categoryDTO `json:"category"`
}

type listCategoriesResponse struct {
	Categories []categoryDTO `json:"categories"`
}

type categoryDTO struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	IsActive  bool   `json:"is_active"`
	SortOrder int    `json:"sort_order"`
	CreatedAt string `json:"created_at"`
}

func toCategoryDTO(category application.Category) categoryDTO {
	return categoryDTO{
		ID:        category.ID,
		Name:      category.Name,
		IsActive:  category.IsActive,
		SortOrder: category.SortOrder,
		CreatedAt: category.CreatedAt.UTC().Format(time.RFC3339),
	}
}

func toCategoryDTOs(categories []application.Category) []categoryDTO {
	if len(categories) == 0 {
		return nil
	}
	out := make([]categoryDTO, 0, len(categories))
	for _, category := range categories {
		out = append(out, toCategoryDTO(category))
	}
	return out
}
