package main

import (
	"context"
	"errors"
	"time"

	"github.com/example/timetracker/internal/application"
	"github.com/example/timetracker/internal/persistence"
)

type categoryRepositoryAdapter struct {
	repo persistence.CategoryRepository
}

func newCategoryRepositoryAdapter(repo persistence.CategoryRepository) *categoryRepositoryAdapter {
	return &categoryRepositoryAdapter{repo: repo}
}

func (a *categoryRepositoryAdapter) CreateCategory(ctx context.Context, category application.Category) (application.Category, error) {
	if err := a.repo.CreateCategory(ctx, toPersistenceCategory(category)); err != nil {
		return application.Category{}, err
	}
	stored, err := a.repo.GetCategory(ctx, category.ID)
	if err != nil {
		return application.Category{}, err
	}
	return toApplicationCategory(stored), nil
}

func (a *categoryRepositoryAdapter) UpdateCategory(ctx context.Context, category application.Category) (application.Category, error) {
	if err := a.repo.UpdateCategory(ctx, toPersistenceCategory(category)); err != nil {
		return application.Category{}, err
	}
	stored, err := a.repo.GetCategory(ctx, category.ID)
	if err != nil {
		return application.Category{}, err
	}
	return toApplicationCategory(stored), nil
}

func (a *categoryRepositoryAdapter) GetCategory(ctx context.Context, id string) (application.Category, error) {
	stored, err := a.repo.GetCategory(ctx, id)
	if err != nil {
		return application.Category{}, err
	}
	return toApplicationCategory(stored), nil
}

func (a *categoryRepositoryAdapter) GetCategoryByName(ctx context.Context, name string) (application.Category, error) {
	stored, err := a.repo.GetCategoryByName(ctx, name)
	if err != nil {
		return application.Category{}, err
	}
	return toApplicationCategory(stored), nil
}

func (a *categoryRepositoryAdapter) ListCategories(ctx context.Context, activeOnly bool) ([]application.Category, error) {
	models, err := a.repo.ListCategories(ctx, activeOnly)
	if err != nil {
		return nil, err
	}
	if len(models) == 0 {
		return nil, nil
	}
	categories := make([]application.Category, 0, len(models))
	for _, model := range models {
		categories = append(categories, toApplicationCategory(model))
	}
	return categories, nil
}

func (a *categoryRepositoryAdapter) NextSortOrder(ctx context.Context) (int, error) {
	return a.repo.NextSortOrder(ctx)
}

type sessionRepositoryAdapter struct {
	repo persistence.SessionRepository
}

func newSessionRepositoryAdapter(repo persistence.SessionRepository) *sessionRepositoryAdapter {
	return &sessionRepositoryAdapter{repo: repo}
}

func (a *sessionRepositoryAdapter) CreateSession(ctx context.Context, session application.Session) (application.Session, error) {
	if err := a.repo.CreateSession(ctx, toPersistenceSession(session)); err != nil {
		return application.Session{}, err
	}
	stored, err := a.repo.GetSession(ctx, session.ID)
	if err != nil {
		return application.Session{}, err
	}
	return toApplicationSession(stored), nil
}

func (a *sessionRepositoryAdapter) UpdateSession(ctx context.Context, session application.Session) (application.Session, error) {
	if err := a.repo.UpdateSession(ctx, toPersistenceSession(session)); err != nil {
		return application.Session{}, err
	}
	stored, err := a.repo.GetSession(ctx, session.ID)
	if err != nil {
		return application.Session{}, err
	}
	return toApplicationSession(stored), nil
}

func (a *sessionRepositoryAdapter) GetSession(ctx context.Context, id string) (application.Session, error) {
	stored, err := a.repo.GetSession(ctx, id)
	if err != nil {
		return application.Session{}, err
	}
	return toApplicationSession(stored), nil
}

func (a *sessionRepositoryAdapter) GetActiveSession(ctx context.Context) (application.Session, error) {
	stored, err := a.repo.GetActiveSession(ctx)
	if err != nil {
		return application.Session{}, err
	}
	return toApplicationSession(stored), nil
}

func (a *sessionRepositoryAdapter) ListSessions(ctx context.Context) ([]application.Session, error) {
	models, err := a.repo.ListSessions(ctx)
	if err != nil {
		return nil, err
	}
	if len(models) == 0 {
		return nil, nil
	}
	sessions := make([]application.Session, 0, len(models))
	for _, model := range models {
		sessions = append(sessions, toApplicationSession(model))
	}
	return sessions, nil
}

func (a *sessionRepositoryAdapter) DeleteSession(ctx context.Context, id string) error {
	return a.repo.DeleteSession(ctx, id)
}

type categoryDirectoryAdapter struct {
	repo persistence.CategoryRepository
}

func newCategoryDirectoryAdapter(repo persistence.CategoryRepository) *categoryDirectoryAdapter {
	return &categoryDirectoryAdapter{repo: repo}
}

func (a *categoryDirectoryAdapter) CategoryExists(ctx context.Context, id string) (bool, error) {
	if _, err := a.repo.GetCategory(ctx, id); err != nil {
		if errors.Is(err, persistence.ErrNotFound) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

func toApplicationCategory(model persistence.Category) application.Category {
	return application.Category{
		ID:        model.ID,
		Name:      model.Name,
		IsActive:  model.IsActive,
		SortOrder: model.SortOrder,
		CreatedAt: model.CreatedAt,
	}
}

func toPersistenceCategory(category application.Category) persistence.Category {
	return persistence.Category{
		ID:        category.ID,
		Name:      category.Name,
		IsActive:  category.IsActive,
		SortOrder: category.SortOrder,
		CreatedAt: category.CreatedAt,
	}
}

func toApplicationSession(model persistence.Session) application.Session {
	return application.Session{
		ID:          model.ID,
		CategoryID:  cloneString(model.CategoryID),
		Description: model.Description,
		StartUTC:    model.StartUTC,
		EndUTC:      cloneTime(model.EndUTC),
		CreatedAt:   model.CreatedAt,
		UpdatedAt:   model.UpdatedAt,
	}
}

func toPersistenceSession(session application.Session) persistence.Session {
	return persistence.Session{
		ID:          session.ID,
		CategoryID:  cloneString(session.CategoryID),
		Description: session.Description,
		StartUTC:    session.StartUTC,
		EndUTC:      cloneTime(session.EndUTC),
		CreatedAt:   session.CreatedAt,
		UpdatedAt:   session.UpdatedAt,
	}
}

func cloneString(value *string) *string {
	if value == nil {
		return nil
	}
	clone := *value
	return &clone
}

func cloneTime(value *time.Time) *time.Time {
	if value == nil {
		return nil
	}
	clone := *value
	return &clone
}
