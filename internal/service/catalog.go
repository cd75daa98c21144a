package service

import (
	"context"

	"github.com/alukyanov/MarketDesk/internal/models"
)

// ItemRepository defines the persistence operations required by the
// catalog service.
type ItemRepository interface {
	// Create resolves category and owner by name and inserts the item in
	// one transaction, returning the new ID.
	Create(ctx context.Context, in models.NewItem) (int64, error)
	// GetByID returns the item with the given ID, or (nil, nil) if absent.
	GetByID(ctx context.Context, id int64) (*models.Item, error)
	// ListAll returns every item regardless of status.
	ListAll(ctx context.Context) ([]models.Item, error)
	// ListByOwner returns every item owned by the given user.
	ListByOwner(ctx context.Context, ownerID int64) ([]models.Item, error)
	// Search returns items in the category matching the keyword.
	Search(ctx context.Context, category, keyword string) ([]models.Item, error)
	// Update applies the non-nil fields of patch to the item.
	Update(ctx context.Context, id int64, patch models.ItemPatch) error
	// Delete removes the item row; intents and messages cascade.
	Delete(ctx context.Context, id int64) error
	// MarkSold transitions an active item to sold with the given buyer and
	// reports whether the transition happened.
	MarkSold(ctx context.Context, id, buyerID int64) (bool, error)
}

// CatalogService implements item CRUD and search. Authorization (ownership,
// the lock rule) is enforced at the boundary before these are called.
type CatalogService struct {
	// repo performs the data-layer operations.
	repo ItemRepository
}

// NewCatalogService constructs a CatalogService with the provided
// repository.
func NewCatalogService(repo ItemRepository) *CatalogService {
	return &CatalogService{repo: repo}
}

// Create inserts a new active item. Returns an error wrapping
// repository.ErrNotFound if the category or owner cannot be resolved.
func (s *CatalogService) Create(ctx context.Context, in models.NewItem) (int64, error) {
	return s.repo.Create(ctx, in)
}

// FindByID returns the item with the given ID, or (nil, nil) if absent.
func (s *CatalogService) FindByID(ctx context.Context, id int64) (*models.Item, error) {
	return s.repo.GetByID(ctx, id)
}

// ListAll returns every item, sold ones included.
func (s *CatalogService) ListAll(ctx context.Context) ([]models.Item, error) {
	return s.repo.ListAll(ctx)
}

// ListMine returns the caller's own listings.
func (s *CatalogService) ListMine(ctx context.Context, ownerID int64) ([]models.Item, error) {
	return s.repo.ListByOwner(ctx, ownerID)
}

// Search returns items in the named category whose name, description or
// owner login contains the keyword, case-insensitively. The category filter
// is mandatory.
func (s *CatalogService) Search(ctx context.Context, category, keyword string) ([]models.Item, error) {
	return s.repo.Search(ctx, category, keyword)
}

// Revise applies the supplied fields only; everything else is left as is.
func (s *CatalogService) Revise(ctx context.Context, id int64, patch models.ItemPatch) error {
	return s.repo.Update(ctx, id, patch)
}

// Delete removes the item and, through cascading, its intents and messages.
func (s *CatalogService) Delete(ctx context.Context, id int64) error {
	return s.repo.Delete(ctx, id)
}
