package service

import (
	"context"
	"errors"

	"github.com/alukyanov/MarketDesk/internal/models"
	"github.com/alukyanov/MarketDesk/internal/repository"
)

// Sale resolution errors.
var (
	// ErrAlreadySold reports a sale confirmation on an item that is no
	// longer active. Sales are final: a sold item is never re-confirmed or
	// reverted.
	ErrAlreadySold = errors.New("item already sold")
	// ErrNotAWanter reports a sale confirmation naming a buyer without a
	// recorded intent for the item.
	ErrNotAWanter = errors.New("buyer has no recorded intent for this item")
)

// WantRepository defines the persistence operations required by the intent
// ledger.
type WantRepository interface {
	// Add records a purchase intent for the (item, user) pair.
	Add(ctx context.Context, itemID, userID int64, offerPrice float64) error
	// Exists reports whether the user has a recorded intent for the item.
	Exists(ctx context.Context, itemID, userID int64) (bool, error)
	// WantersFor returns every user with a recorded intent for the item.
	WantersFor(ctx context.Context, itemID int64) ([]models.User, error)
	// ItemsWantedBy returns every item the user has an intent for.
	ItemsWantedBy(ctx context.Context, userID int64) ([]models.Item, error)
	// ReceivedFor returns every intent against the owner's items.
	ReceivedFor(ctx context.Context, ownerID int64) ([]models.ReceivedWant, error)
}

// WantService implements the intent ledger and sale resolution. Boundary
// rules (no self-want, active items only) are checked by the caller; the
// sale transition is re-validated here.
type WantService struct {
	// repo performs the intent-ledger data operations.
	repo WantRepository
	// items is used to validate and apply the sale transition.
	items ItemRepository
}

// NewWantService constructs a WantService with the provided repositories.
func NewWantService(repo WantRepository, items ItemRepository) *WantService {
	return &WantService{repo: repo, items: items}
}

// AddWant records a purchase intent with an optional bargain offer; offer 0
// means the listed price is accepted. It returns true on insert and false
// when the (user, item) pair already has one, leaving the ledger unchanged.
func (s *WantService) AddWant(ctx context.Context, itemID, userID int64, offerPrice float64) (bool, error) {
	err := s.repo.Add(ctx, itemID, userID, offerPrice)
	if errors.Is(err, repository.ErrDuplicateWant) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// WantersFor returns the users interested in the item, for the seller to
// pick a buyer from.
func (s *WantService) WantersFor(ctx context.Context, itemID int64) ([]models.User, error) {
	return s.repo.WantersFor(ctx, itemID)
}

// ItemsWantedBy returns the items the user has expressed interest in.
func (s *WantService) ItemsWantedBy(ctx context.Context, userID int64) ([]models.Item, error) {
	return s.repo.ItemsWantedBy(ctx, userID)
}

// ReceivedFor returns every intent recorded against the owner's items.
func (s *WantService) ReceivedFor(ctx context.Context, ownerID int64) ([]models.ReceivedWant, error) {
	return s.repo.ReceivedFor(ctx, ownerID)
}

// ConfirmSold finalizes the sale of an item to one of its recorded wanters.
// The item must exist, still be active, and the buyer must have an intent
// on record; otherwise repository.ErrNotFound, ErrAlreadySold or
// ErrNotAWanter is returned. The transition is terminal. Stale intents on
// the item are retained as history.
func (s *WantService) ConfirmSold(ctx context.Context, itemID, buyerID int64) error {
	item, err := s.items.GetByID(ctx, itemID)
	if err != nil {
		return err
	}
	if item == nil {
		return repository.ErrNotFound
	}
	if item.Status == models.ItemSold {
		return ErrAlreadySold
	}

	wants, err := s.repo.Exists(ctx, itemID, buyerID)
	if err != nil {
		return err
	}
	if !wants {
		return ErrNotAWanter
	}

	// The update is conditional on status, so a racing confirmation loses
	// here rather than overwriting the recorded buyer.
	sold, err := s.items.MarkSold(ctx, itemID, buyerID)
	if err != nil {
		return err
	}
	if !sold {
		return ErrAlreadySold
	}
	return nil
}
