package service

import (
	"context"

	"github.com/alukyanov/MarketDesk/internal/models"
)

// CategoryRepository defines the persistence operations required by the
// category service.
type CategoryRepository interface {
	// List returns all categories in creation order.
	List(ctx context.Context) ([]models.Category, error)
	// Add inserts a new category with the given attribute template.
	Add(ctx context.Context, name string, attributes []string) error
	// Update replaces the attribute template of the named category.
	Update(ctx context.Context, name string, attributes []string) error
	// Delete removes the named category if no items reference it.
	Delete(ctx context.Context, name string) error
	// AttributesFor returns the attribute template of the named category,
	// empty if the category does not exist.
	AttributesFor(ctx context.Context, name string) ([]string, error)
}

// CategoryService manages the category registry and its attribute
// templates.
type CategoryService struct {
	// repo performs the data-layer operations.
	repo CategoryRepository
}

// NewCategoryService constructs a CategoryService with the provided
// repository.
func NewCategoryService(repo CategoryRepository) *CategoryService {
	return &CategoryService{repo: repo}
}

// List returns all categories.
func (s *CategoryService) List(ctx context.Context) ([]models.Category, error) {
	return s.repo.List(ctx)
}

// Add creates a category. Returns repository.ErrDuplicateCategory if the
// name is taken.
func (s *CategoryService) Add(ctx context.Context, name string, attributes []string) error {
	return s.repo.Add(ctx, name, attributes)
}

// Update replaces the named category's attribute template in place.
// Existing items keep the attribute keys they were created with.
func (s *CategoryService) Update(ctx context.Context, name string, attributes []string) error {
	return s.repo.Update(ctx, name, attributes)
}

// Delete removes the named category. Returns repository.ErrCategoryInUse
// while items still reference it.
func (s *CategoryService) Delete(ctx context.Context, name string) error {
	return s.repo.Delete(ctx, name)
}

// AttributesFor returns the attribute template for the named category,
// empty if the category is absent.
func (s *CategoryService) AttributesFor(ctx context.Context, name string) ([]string, error) {
	return s.repo.AttributesFor(ctx, name)
}
