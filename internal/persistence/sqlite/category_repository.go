package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/example/timetracker/internal/persistence"
)

// CategoryRepository implements persistence.CategoryRepository using SQLite.
type CategoryRepository struct {
	pool   *ConnectionPool
	helper *QueryHelper
	mapper *ErrorMapper
}

// NewCategoryRepository creates a new SQLite category repository.
func NewCategoryRepository(pool *ConnectionPool) *CategoryRepository {
	return &CategoryRepository{
		pool:   pool,
		helper: NewQueryHelper(pool),
		mapper: NewErrorMapper(),
	}
}

// CreateCategory stores a new category. Name uniqueness is enforced by the
// schema across active and soft-deleted rows alike.
func (r *CategoryRepository) CreateCategory(ctx context.Context, category persistence.Category) error {
	if category.ID == "" || strings.TrimSpace(category.Name) == "" {
		return persistence.ErrConstraintViolation
	}

	query := `
		INSERT INTO categories (id, name, is_active, sort_order, created_at)
		VALUES (?, ?, ?, ?, ?)
	`

	_, err := r.helper.Exec(ctx, query,
		category.ID,
		category.Name,
		boolToInt(category.IsActive),
		category.SortOrder,
		category.CreatedAt.UTC().Format(time.RFC3339),
	)
	if err != nil {
		return r.mapper.MapError(err)
	}

	return nil
}

// UpdateCategory updates the mutable fields of an existing category.
func (r *CategoryRepository) UpdateCategory(ctx context.Context, category persistence.Category) error {
	if category.ID == "" || strings.TrimSpace(category.Name) == "" {
		return persistence.ErrConstraintViolation
	}

	query := `
		UPDATE categories
		SET name = ?, is_active = ?, sort_order = ?
		WHERE id = ?
	`

	result, err := r.helper.Exec(ctx, query,
		category.Name,
		boolToInt(category.IsActive),
		category.SortOrder,
		category.ID,
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
}

// GetCategory retrieves a category by ID.
func (r *CategoryRepository) GetCategory(ctx context.Context, id string) (persistence.Category, error) {
	query := `
		SELECT id, name, is_active, sort_order, created_at
		FROM categories
		WHERE id = ?
	`
	return r.scanCategory(r.helper.QueryRow(ctx, query, id))
}

// GetCategoryByName retrieves a category by its exact name, regardless of
// active state.
func (r *CategoryRepository) GetCategoryByName(ctx context.Context, name string) (persistence.Category, error) {
	query := `
		SELECT id, name, is_active, sort_order, created_at
		FROM categories
		WHERE name = ?
	`
	return r.scanCategory(r.helper.QueryRow(ctx, query, name))
}

// ListCategories returns categories ordered by sort order, then ID.
func (r *CategoryRepository) ListCategories(ctx context.Context, activeOnly bool) ([]persistence.Category, error) {
	query := `
		SELECT id, name, is_active, sort_order, created_at
		FROM categories
	`
	if activeOnly {
		query += ` WHERE is_active = 1`
	}
	query += ` ORDER BY sort_order ASC, id ASC`

	rows, err := r.helper.Query(ctx, query)
	if err != nil {
		return nil, r.mapper.MapError(err)
	}
	defer rows.Close()

	var categories []persistence.Category
	for rows.Next() {
		category, err := r.scanCategoryRow(rows)
		if err != nil {
			return nil, err
		}
		categories = append(categories, category)
	}
	if err := rows.Err(); err != nil {
		return nil, r.mapper.MapError(err)
	}

	return categories, nil
}

// NextSortOrder returns the sort order for the next category: the current
// maximum plus ten, or ten for an empty table.
func (r *CategoryRepository) NextSortOrder(ctx context.Context) (int, error) {
	var max sql.NullInt64
	err := r.helper.QueryRow(ctx, `SELECT MAX(sort_order) FROM categories`).Scan(&max)
	if err != nil {
		return 0, r.mapper.MapError(err)
	}
	if !max.Valid {
		return 10, nil
	}
	return int(max.Int64) + 10, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func (r *CategoryRepository) scanCategory(row *sql.Row) (persistence.Category, error) {
	return r.scanCategoryRow(row)
}

func (r *CategoryRepository) scanCategoryRow(row rowScanner) (persistence.Category, error) {
	var category persistence.Category
	var isActive int
	var createdAtStr string

	err := row.Scan(
		&category.ID,
		&category.Name,
		&isActive,
		&category.SortOrder,
		&createdAtStr,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return persistence.Category{}, persistence.ErrNotFound
		}
		return persistence.Category{}, r.mapper.MapError(err)
	}

	category.IsActive = isActive != 0
	if category.CreatedAt, err = time.Parse(time.RFC3339, createdAtStr); err != nil {
		return persistence.Category{}, fmt.Errorf("failed to parse created_at: %w", err)
	}

	return category, nil
}

func boolToInt(value bool) int {
	if value {
		return 1
	}
	return 0
}
