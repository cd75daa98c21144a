package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/alukyanov/MarketDesk/internal/middleware"
	"github.com/alukyanov/MarketDesk/internal/models"
	"github.com/alukyanov/MarketDesk/internal/repository"
	"github.com/alukyanov/MarketDesk/internal/service"
)

// WantService defines the interface for intent-ledger and sale-resolution
// operations required by the HTTP handlers.
type WantService interface {
	AddWant(ctx context.Context, itemID, userID int64, offerPrice float64) (bool, error)
	WantersFor(ctx context.Context, itemID int64) ([]models.User, error)
	ItemsWantedBy(ctx context.Context, userID int64) ([]models.Item, error)
	ReceivedFor(ctx context.Context, ownerID int64) ([]models.ReceivedWant, error)
	ConfirmSold(ctx context.Context, itemID, buyerID int64) error
}

// WantHandler handles purchase intents and sale confirmation. It rejects
// self-wants and intents on non-active items before the ledger is touched.
type WantHandler struct {
	// Wants performs the underlying ledger operations.
	Wants WantService
	// Catalog resolves items for the boundary checks.
	Catalog CatalogService
}

// WantRequest represents the JSON payload for expressing a purchase intent.
type WantRequest struct {
	// OfferPrice is the bargain offer; 0 accepts the listed price.
	OfferPrice float64 `json:"offer_price"`
}

// ConfirmSoldRequest represents the JSON payload for confirming a sale.
type ConfirmSoldRequest struct {
	BuyerID int64 `json:"buyer_id"`
}

// Add records the caller's purchase intent for an item. Recording the same
// intent twice is reported, not an error.
func (h *WantHandler) Add(w http.ResponseWriter, r *http.Request) {
	id, ok := urlID(w, r)
	if !ok {
		return
	}
	caller := middleware.GetUserFromContext(r.Context())

	var req WantRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request", http.StatusBadRequest)
		return
	}
	if req.OfferPrice < 0 {
		http.Error(w, "offer must be non-negative", http.StatusBadRequest)
		return
	}

	item, err := h.Catalog.FindByID(r.Context(), id)
	if err != nil {
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	if item == nil {
		http.Error(w, "item does not exist", http.StatusNotFound)
		return
	}
	if item.OwnerID == caller.ID {
		http.Error(w, "you cannot want your own item", http.StatusBadRequest)
		return
	}
	if item.Status != models.ItemActive {
		http.Error(w, "item is no longer available", http.StatusConflict)
		return
	}
	if !item.CanBargain && req.OfferPrice > 0 {
		http.Error(w, "seller does not accept bargain offers", http.StatusBadRequest)
		return
	}

	added, err := h.Wants.AddWant(r.Context(), id, caller.ID, req.OfferPrice)
	if err != nil {
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, map[string]bool{"added": added})
}

// Wanters returns the users interested in an item, so the owner can pick a
// buyer. Owner or admin only.
func (h *WantHandler) Wanters(w http.ResponseWriter, r *http.Request) {
	id, ok := urlID(w, r)
	if !ok {
		return
	}
	caller := middleware.GetUserFromContext(r.Context())

	item, err := h.Catalog.FindByID(r.Context(), id)
	if err != nil {
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	if item == nil {
		http.Error(w, "item does not exist", http.StatusNotFound)
		return
	}
	if item.OwnerID != caller.ID && caller.Role != models.RoleAdmin {
		http.Error(w, "you do not own this item", http.StatusForbidden)
		return
	}

	wanters, err := h.Wants.WantersFor(r.Context(), id)
	if err != nil {
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, wanters)
}

// Mine returns the items the caller has expressed interest in.
func (h *WantHandler) Mine(w http.ResponseWriter, r *http.Request) {
	caller := middleware.GetUserFromContext(r.Context())
	items, err := h.Wants.ItemsWantedBy(r.Context(), caller.ID)
	if err != nil {
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, items)
}

// Received returns every intent recorded against the caller's items.
func (h *WantHandler) Received(w http.ResponseWriter, r *http.Request) {
	caller := middleware.GetUserFromContext(r.Context())
	received, err := h.Wants.ReceivedFor(r.Context(), caller.ID)
	if err != nil {
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, received)
}

// ConfirmSold finalizes the sale of the caller's item to one of its
// recorded wanters. Only the owner confirms a sale; the transition is
// terminal.
func (h *WantHandler) ConfirmSold(w http.ResponseWriter, r *http.Request) {
	id, ok := urlID(w, r)
	if !ok {
		return
	}
	caller := middleware.GetUserFromContext(r.Context())

	var req ConfirmSoldRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.BuyerID == 0 {
		http.Error(w, "invalid request", http.StatusBadRequest)
		return
	}

	item, err := h.Catalog.FindByID(r.Context(), id)
	if err != nil {
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	if item == nil {
		http.Error(w, "item does not exist", http.StatusNotFound)
		return
	}
	if item.OwnerID != caller.ID {
		http.Error(w, "only the owner can confirm a sale", http.StatusForbidden)
		return
	}

	err = h.Wants.ConfirmSold(r.Context(), id, req.BuyerID)
	switch {
	case errors.Is(err, service.ErrAlreadySold):
		http.Error(w, "item already sold", http.StatusConflict)
	case errors.Is(err, service.ErrNotAWanter):
		http.Error(w, "buyer has no recorded intent for this item", http.StatusConflict)
	case errors.Is(err, repository.ErrNotFound):
		http.Error(w, "item does not exist", http.StatusNotFound)
	case err != nil:
		http.Error(w, "internal error", http.StatusInternalServerError)
	default:
		writeJSON(w, http.StatusOK, map[string]string{"status": "sold"})
	}
}
