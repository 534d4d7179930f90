package application

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/example/timetracker/internal/persistence"
)

// CategoryRepository captures the persistence operations needed by the service.
type CategoryRepository interface {
	CreateCategory(ctx context.Context, category Category) (Category, error)
	UpdateCategory(ctx context.Context, category Category) (Category, error)
	GetCategory(ctx context.Context, id string) (Category, error)
	GetCategoryByName(ctx context.Context, name string) (Category, error)
	ListCategories(ctx context.Context, activeOnly bool) ([]Category, error)
	NextSortOrder(ctx context.Context) (int, error)
}

// CategoryService orchestrates validation and persistence for categories.
// Deletion is always a soft delete: sessions keep a weak reference to their
// category, so the record itself is never removed.
type CategoryService struct {
	categories  CategoryRepository
	idGenerator func() string
	now         func() time.Time
	logger      *slog.Logger
}

// NewCategoryService constructs a category service with the provided dependencies.
func NewCategoryService(categories CategoryRepository, idGenerator func() string, now func() time.Time) *CategoryService {
	return NewCategoryServiceWithLogger(categories, idGenerator, now, nil)
}

// NewCategoryServiceWithLogger constructs a category service with a specified logger.
func NewCategoryServiceWithLogger(categories CategoryRepository, idGenerator func() string, now func() time.Time, logger *slog.Logger) *CategoryService {
	if idGenerator == nil {
		idGenerator = func() string { return "" }
	}
	if now == nil {
		now = time.Now
	}
	return &CategoryService{categories: categories, idGenerator: idGenerator, now: now, logger: defaultLogger(logger)}
}

func (s *CategoryService) loggerWith(ctx context.Context, operation string, attrs ...any) *slog.Logger {
	return serviceLogger(ctx, s.logger, "CategoryService", operation, attrs...)
}

// Create validates input and persists a new category. The name must not collide
// with any existing category, active or soft-deleted.
func (s *CategoryService) Create(ctx context.Context, params CreateCategoryParams) (category Category, err error) {
	if s == nil {
		err = fmt.Errorf("CategoryService is nil")
		return
	}

	logger := s.loggerWith(ctx, "Create")
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to create category", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.With("category_id", category.ID).InfoContext(ctx, "category created")
	}()

	name := strings.TrimSpace(params.Name)
	if name == "" {
		vErr := &ValidationError{}
		vErr.add("name", "name is required")
		err = vErr
		return
	}

	if err = s.ensureNameAvailable(ctx, name, ""); err != nil {
		return
	}

	sortOrder, err := s.categories.NextSortOrder(ctx)
	if err != nil {
		err = mapCategoryRepoError(err)
		return
	}

	category = Category{
		ID:        s.idGenerator(),
		Name:      name,
		IsActive:  true,
		SortOrder: sortOrder,
		CreatedAt: s.now().UTC(),
	}

	category, err = s.categories.CreateCategory(ctx, category)
	if err != nil {
		err = mapCategoryRepoError(err)
		return
	}

	return
}

// Rename updates the name of an existing category. The new name must not
// collide with a different category, regardless of active state.
func (s *CategoryService) Rename(ctx context.Context, params RenameCategoryParams) (category Category, err error) {
	if s == nil {
		err = fmt.Errorf("CategoryService is nil")
		return
	}

	logger := s.loggerWith(ctx, "Rename", "category_id", params.CategoryID)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to rename category", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.InfoContext(ctx, "category renamed")
	}()

	var existing Category
	existing, err = s.categories.GetCategory(ctx, params.CategoryID)
	if err != nil {
		err = mapCategoryRepoError(err)
		return
	}

	name := strings.TrimSpace(params.Name)
	if name == "" {
		vErr := &ValidationError{}
		vErr.add("name", "name is required")
		err = vErr
		return
	}

	if err = s.ensureNameAvailable(ctx, name, existing.ID); err != nil {
		return
	}

	updated := existing
	updated.Name = name

	category, err = s.categories.UpdateCategory(ctx, updated)
	if err != nil {
		err = mapCategoryRepoError(err)
		return
	}

	return
}

// Deactivate soft-deletes a category. Sessions referencing it are left intact;
// the category merely disappears from the active selection list.
func (s *CategoryService) Deactivate(ctx context.Context, categoryID string) error {
	if s == nil {
		return fmt.Errorf("CategoryService is nil")
	}

	logger := s.loggerWith(ctx, "Deactivate", "category_id", categoryID)

	existing, err := s.categories.GetCategory(ctx, categoryID)
	if err != nil {
		err = mapCategoryRepoError(err)
		logger.ErrorContext(ctx, "failed to deactivate category", "error", err, "error_kind", ErrorKind(err))
		return err
	}

	updated := existing
	updated.IsActive = false

	if _, err := s.categories.UpdateCategory(ctx, updated); err != nil {
		err = mapCategoryRepoError(err)
		logger.ErrorContext(ctx, "failed to deactivate category", "error", err, "error_kind", ErrorKind(err))
		return err
	}

	logger.InfoContext(ctx, "category deactivated")
	return nil
}

// ListActive returns active categories ordered by sort order.
func (s *CategoryService) ListActive(ctx context.Context) ([]Category, error) {
	return s.list(ctx, "ListActive", true)
}

// ListAll returns every category, soft-deleted ones included, ordered by sort
// order. Historical sessions resolve their category names through this view.
func (s *CategoryService) ListAll(ctx context.Context) ([]Category, error) {
	return s.list(ctx, "ListAll", false)
}

func (s *CategoryService) list(ctx context.Context, operation string, activeOnly bool) (categories []Category, err error) {
	if s == nil {
		err = fmt.Errorf("CategoryService is nil")
		return
	}

	logger := s.loggerWith(ctx, operation)
	defer func() {
		if err != nil {
			logger.ErrorContext(ctx, "failed to list categories", "error", err, "error_kind", ErrorKind(err))
			return
		}
		logger.With("result_count", len(categories)).InfoContext(ctx, "categories listed")
	}()

	categories, err = s.categories.ListCategories(ctx, activeOnly)
	if err != nil {
		err = mapCategoryRepoError(err)
		return
	}

	return
}

// ensureNameAvailable fails with ErrAlreadyExists when name belongs to a
// category other than excludeID. The comparison is case-sensitive, matching the
// stored uniqueness constraint.
func (s *CategoryService) ensureNameAvailable(ctx context.Context, name, excludeID string) error {
	existing, err := s.categories.GetCategoryByName(ctx, name)
	if err != nil {
		if errors.Is(err, ErrNotFound) || errors.Is(err, persistence.ErrNotFound) {
			return nil
		}
		return mapCategoryRepoError(err)
	}
	if existing.ID != excludeID {
		return ErrAlreadyExists
	}
	return nil
}

func mapCategoryRepoError(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, ErrNotFound) || errors.Is(err, persistence.ErrNotFound) {
		return ErrNotFound
	}
	if errors.Is(err, persistence.ErrDuplicate) {
		return ErrAlreadyExists
	}
	if errors.Is(err, persistence.ErrConstraintViolation) {
		vErr := &ValidationError{}
		vErr.add("name", "name is required")
		return vErr
	}
	return err
}
