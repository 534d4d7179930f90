package application

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/example/timetracker/internal/persistence"
)

type categoryRepoStub struct {
	category      Category
	byName        Category
	created       Category
	updated       Category
	err           error
	createErr     error
	updateErr     error
	list          []Category
	listErr       error
	lastActive    bool
	nextSortOrder int
}

func (c *categoryRepoStub) CreateCategory(ctx context.Context, category Category) (Category, error) {
	if c.createErr != nil {
		return Category{}, c.createErr
	}
	if c.err != nil {
		return Category{}, c.err
	}
	c.created = category
	return category, nil
}

func (c *categoryRepoStub) UpdateCategory(ctx context.Context, category Category) (Category, error) {
	if c.updateErr != nil {
		return Category{}, c.updateErr
	}
	if c.err != nil {
		return Category{}, c.err
	}
	c.updated = category
	return category, nil
}

func (c *categoryRepoStub) GetCategory(ctx context.Context, id string) (Category, error) {
	if c.err != nil {
		return Category{}, c.err
	}
	if c.category.ID == "" || c.category.ID != id {
		return Category{}, ErrNotFound
	}
	return c.category, nil
}

func (c *categoryRepoStub) GetCategoryByName(ctx context.Context, name string) (Category, error) {
	if c.err != nil {
		return Category{}, c.err
	}
	if c.byName.Name == "" || c.byName.Name != name {
		return Category{}, ErrNotFound
	}
	return c.byName, nil
}

func (c *categoryRepoStub) ListCategories(ctx context.Context, activeOnly bool) ([]Category, error) {
	c.lastActive = activeOnly
	if c.listErr != nil {
		return nil, c.listErr
	}
	if c.err != nil {
		return nil, c.err
	}
	if len(c.list) == 0 {
		return nil, nil
	}
	out := make([]Category, len(c.list))
	copy(out, c.list)
	return out, nil
}

func (c *categoryRepoStub) NextSortOrder(ctx context.Context) (int, error) {
	if c.err != nil {
		return 0, c.err
	}
	if c.nextSortOrder == 0 {
		return 10, nil
	}
	return c.nextSortOrder, nil
}

func newCategoryServiceForTest(repo *categoryRepoStub, now time.Time) *CategoryService {
	return NewCategoryService(repo, func() string { return "category-1" }, func() time.Time { return now })
}

func TestCategoryService_Create_PersistsTrimmedName(t *testing.T) {
	t.Parallel()

	repo := &categoryRepoStub{nextSortOrder: 60}
	now := time.Date(2024, 3, 14, 9, 0, 0, 0, time.UTC)
	svc := newCategoryServiceForTest(repo, now)

	category, err := svc.Create(context.Background(), CreateCategoryParams{Name: "  Research  "})
	if err != nil {
		t.Fatalf("Create failed: %v", err)
	}

	if category.Name != "Research" {
		t.Fatalf("expected trimmed name, got %q", category.Name)
	}
	if !category.IsActive {
		t.Fatalf("new category must be active")
	}
	if category.SortOrder != 60 {
		t.Fatalf("expected sort order 60, got %d", category.SortOrder)
	}
	if !repo.created.CreatedAt.Equal(now) {
		t.Fatalf("expected creation stamp from clock, got %v", repo.created.CreatedAt)
	}
}

func TestCategoryService_Create_RequiresName(t *testing.T) {
	t.Parallel()

	svc := newCategoryServiceForTest(&categoryRepoStub{}, time.Now())

	_, err := svc.Create(context.Background(), CreateCategoryParams{Name: "   "})

	var vErr *ValidationError
	if !errors.As(err, &vErr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if _, ok := vErr.FieldErrors["name"]; !ok {
		t.Fatalf("expected name field error, got %#v", vErr.FieldErrors)
	}
}

func TestCategoryService_Create_RejectsDuplicateName(t *testing.T) {
	t.Parallel()

	repo := &categoryRepoStub{byName: Category{ID: "category-9", Name: "Coding"}}
	svc := newCategoryServiceForTest(repo, time.Now())

	_, err := svc.Create(context.Background(), CreateCategoryParams{Name: "Coding"})
	if !errors.Is(err, ErrAlreadyExists) {
		t.Fatalf("expected ErrAlreadyExists, got %v", err)
	}
	if repo.created.ID != "" {
		t.Fatalf("no category should be created, got %#v", repo.created)
	}
}

func TestCategoryService_Create_MapsDuplicateConstraintRace(t *testing.T) {
	t.Parallel()

	repo := &categoryRepoStub{createErr: persistence.ErrDuplicate}
	svc := newCategoryServiceForTest(repo, time.Now())

	_, err := svc.Create(context.Background(), CreateCategoryParams{Name: "Coding"})
	if !errors.Is(err, ErrAlreadyExists) {
		t.Fatalf("expected ErrAlreadyExists, got %v", err)
	}
}

func TestCategoryService_Rename_UpdatesName(t *testing.T) {
	t.Parallel()

	repo := &categoryRepoStub{category: Category{ID: "category-1", Name: "Coding", IsActive: true, SortOrder: 10}}
	svc := newCategoryServiceForTest(repo, time.Now())

	category, err := svc.Rename(context.Background(), RenameCategoryParams{CategoryID: "category-1", Name: "Deep Work"})
	if err != nil {
		t.Fatalf("Rename failed: %v", err)
	}
	if category.Name != "Deep Work" {
		t.Fatalf("expected renamed category, got %q", category.Name)
	}
	if repo.updated.SortOrder != 10 || !repo.updated.IsActive {
		t.Fatalf("rename must not touch other fields: %#v", repo.updated)
	}
}

func TestCategoryService_Rename_AllowsKeepingOwnName(t *testing.T) {
	t.Parallel()

	repo := &categoryRepoStub{
		category: Category{ID: "category-1", Name: "Coding", IsActive: true},
		byName:   Category{ID: "category-1", Name: "Coding"},
	}
	svc := newCategoryServiceForTest(repo, time.Now())

	if _, err := svc.Rename(context.Background(), RenameCategoryParams{CategoryID: "category-1", Name: "Coding"}); err != nil {
		t.Fatalf("renaming to own name should succeed, got %v", err)
	}
}

func TestCategoryService_Rename_RejectsCollision(t *testing.T) {
	t.Parallel()

	repo := &categoryRepoStub{
		category: Category{ID: "category-1", Name: "Coding", IsActive: true},
		byName:   Category{ID: "category-2", Name: "Meetings"},
	}
	svc := newCategoryServiceForTest(repo, time.Now())

	_, err := svc.Rename(context.Background(), RenameCategoryParams{CategoryID: "category-1", Name: "Meetings"})
	if !errors.Is(err, ErrAlreadyExists) {
		t.Fatalf("expected ErrAlreadyExists, got %v", err)
	}
}

func TestCategoryService_Rename_UnknownCategory(t *testing.T) {
	t.Parallel()

	svc := newCategoryServiceForTest(&categoryRepoStub{}, time.Now())

	_, err := svc.Rename(context.Background(), RenameCategoryParams{CategoryID: "ghost", Name: "Anything"})
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestCategoryService_Deactivate_SoftDeletes(t *testing.T) {
	t.Parallel()

	repo := &categoryRepoStub{category: Category{ID: "category-1", Name: "Coding", IsActive: true, SortOrder: 10}}
	svc := newCategoryServiceForTest(repo, time.Now())

	if err := svc.Deactivate(context.Background(), "category-1"); err != nil {
		t.Fatalf("Deactivate failed: %v", err)
	}
	if repo.updated.IsActive {
		t.Fatalf("category should be inactive after deactivate: %#v", repo.updated)
	}
	if repo.updated.Name != "Coding" || repo.updated.SortOrder != 10 {
		t.Fatalf("deactivate must keep the record intact: %#v", repo.updated)
	}
}

func TestCategoryService_Deactivate_UnknownCategory(t *testing.T) {
	t.Parallel()

	svc := newCategoryServiceForTest(&categoryRepoStub{}, time.Now())

	if err := svc.Deactivate(context.Background(), "ghost"); !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestCategoryService_List_FiltersByActiveFlag(t *testing.T) {
	t.Parallel()

	repo := &categoryRepoStub{list: []Category{
		{ID: "category-1", Name: "Coding", IsActive: true, SortOrder: 10},
		{ID: "category-2", Name: "Meetings", IsActive: true, SortOrder: 20},
	}}
	svc := newCategoryServiceForTest(repo, time.Now())

	if _, err := svc.ListActive(context.Background()); err != nil {
		t.Fatalf("ListActive failed: %v", err)
	}
	if !repo.lastActive {
		t.Fatalf("ListActive must request active categories only")
	}

	categories, err := svc.ListAll(context.Background())
	if err != nil {
		t.Fatalf("ListAll failed: %v", err)
	}
	if repo.lastActive {
		t.Fatalf("ListAll must request every category")
	}
	if len(categories) != 2 {
		t.Fatalf("unexpected listing: %#v", categories)
	}
}
