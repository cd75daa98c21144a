package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/alukyanov/MarketDesk/internal/middleware"
	"github.com/alukyanov/MarketDesk/internal/models"
	"github.com/alukyanov/MarketDesk/internal/repository"
)

// CatalogService defines the interface for item catalog operations required
// by the HTTP handlers.
type CatalogService interface {
	Create(ctx context.Context, in models.NewItem) (int64, error)
	FindByID(ctx context.Context, id int64) (*models.Item, error)
	ListAll(ctx context.Context) ([]models.Item, error)
	ListMine(ctx context.Context, ownerID int64) ([]models.Item, error)
	Search(ctx context.Context, category, keyword string) ([]models.Item, error)
	Revise(ctx context.Context, id int64, patch models.ItemPatch) error
	Delete(ctx context.Context, id int64) error
}

// ItemHandler handles the item catalog endpoints. It enforces the lock
// rule: an item that is sold or has recorded intents may only be revised
// or deleted by an admin.
type ItemHandler struct {
	// Catalog performs the underlying catalog operations.
	Catalog CatalogService
}

// CreateItemRequest represents the JSON payload for publishing an item.
type CreateItemRequest struct {
	Name               string            `json:"name"`
	Description        string            `json:"description"`
	Price              float64           `json:"price"`
	CanBargain         bool              `json:"can_bargain"`
	Address            string            `json:"address"`
	Category           string            `json:"category"`
	SpecificAttributes map[string]string `json:"specific_attributes"`
	ImagePaths         []string          `json:"image_paths"`
}

// Create publishes a new item owned by the caller. Only approved regular
// users publish; admins manage the marketplace but do not sell on it.
func (h *ItemHandler) Create(w http.ResponseWriter, r *http.Request) {
	caller := middleware.GetUserFromContext(r.Context())
	if caller == nil || caller.Role == models.RoleAdmin {
		http.Error(w, "only regular users can publish items", http.StatusForbidden)
		return
	}

	var req CreateItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil ||
		strings.TrimSpace(req.Name) == "" || req.Category == "" {
		http.Error(w, "invalid request", http.StatusBadRequest)
		return
	}
	if req.Price < 0 {
		http.Error(w, "price must be non-negative", http.StatusBadRequest)
		return
	}

	id, err := h.Catalog.Create(r.Context(), models.NewItem{
		Name:               strings.TrimSpace(req.Name),
		Description:        req.Description,
		Price:              req.Price,
		CanBargain:         req.CanBargain,
		Address:            req.Address,
		Category:           req.Category,
		OwnerUsername:      caller.Username,
		SpecificAttributes: req.SpecificAttributes,
		ImagePaths:         req.ImagePaths,
	})
	if errors.Is(err, repository.ErrNotFound) {
		http.Error(w, err.Error(), http.StatusNotFound)
		return
	}
	if err != nil {
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]int64{"id": id})
}

// List returns every item, sold ones included.
func (h *ItemHandler) List(w http.ResponseWriter, r *http.Request) {
	items, err := h.Catalog.ListAll(r.Context())
	if err != nil {
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, items)
}

// ListMine returns the caller's own listings.
func (h *ItemHandler) ListMine(w http.ResponseWriter, r *http.Request) {
	caller := middleware.GetUserFromContext(r.Context())
	items, err := h.Catalog.ListMine(r.Context(), caller.ID)
	if err != nil {
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, items)
}

// Search filters items by category (required) and an optional keyword
// matched case-insensitively against name, description and owner login.
func (h *ItemHandler) Search(w http.ResponseWriter, r *http.Request) {
	category := r.URL.Query().Get("category")
	if category == "" {
		http.Error(w, "category is required", http.StatusBadRequest)
		return
	}
	items, err := h.Catalog.Search(r.Context(), category, r.URL.Query().Get("q"))
	if err != nil {
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, items)
}

// Get returns one item by ID.
func (h *ItemHandler) Get(w http.ResponseWriter, r *http.Request) {
	id, ok := urlID(w, r)
	if !ok {
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
	writeJSON(w, http.StatusOK, item)
}

// Revise applies a partial update to an item, subject to ownership and the
// lock rule.
func (h *ItemHandler) Revise(w http.ResponseWriter, r *http.Request) {
	id, ok := urlID(w, r)
	if !ok {
		return
	}

	var patch models.ItemPatch
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		http.Error(w, "invalid request", http.StatusBadRequest)
		return
	}
	if patch.Price != nil && *patch.Price < 0 {
		http.Error(w, "price must be non-negative", http.StatusBadRequest)
		return
	}

	if !h.authorizeMutation(w, r, id) {
		return
	}

	if err := h.Catalog.Revise(r.Context(), id, patch); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			http.Error(w, "item does not exist", http.StatusNotFound)
			return
		}
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// Delete removes an item, subject to the same ownership and lock rule
// checks as Revise. Intents and messages on the item go with it.
func (h *ItemHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, ok := urlID(w, r)
	if !ok {
		return
	}

	if !h.authorizeMutation(w, r, id) {
		return
	}

	if err := h.Catalog.Delete(r.Context(), id); err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			http.Error(w, "item does not exist", http.StatusNotFound)
			return
		}
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// authorizeMutation enforces the boundary rules for revise and delete:
// the caller must own the item or be an admin, and a non-admin may not
// touch an item that is sold or has recorded intents (the lock rule).
// A false return means the response has already been written.
func (h *ItemHandler) authorizeMutation(w http.ResponseWriter, r *http.Request, id int64) bool {
	caller := middleware.GetUserFromContext(r.Context())

	item, err := h.Catalog.FindByID(r.Context(), id)
	if err != nil {
		http.Error(w, "internal error", http.StatusInternalServerError)
		return false
	}
	if item == nil {
		http.Error(w, "item does not exist", http.StatusNotFound)
		return false
	}

	if caller.Role == models.RoleAdmin {
		return true
	}
	if item.OwnerID != caller.ID {
		http.Error(w, "you do not own this item", http.StatusForbidden)
		return false
	}
	if item.Status == models.ItemSold || item.WantCount > 0 {
		http.Error(w, "item is sold or wanted and cannot be changed", http.StatusForbidden)
		return false
	}
	return true
}
