package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/alukyanov/MarketDesk/internal/models"
	"github.com/alukyanov/MarketDesk/internal/repository"
	"github.com/go-chi/chi/v5"
)

// CategoryService defines the interface for category registry operations
// required by the HTTP handlers.
type CategoryService interface {
	List(ctx context.Context) ([]models.Category, error)
	Add(ctx context.Context, name string, attributes []string) error
	Update(ctx context.Context, name string, attributes []string) error
	Delete(ctx context.Context, name string) error
	AttributesFor(ctx context.Context, name string) ([]string, error)
}

// CategoryHandler handles the category registry endpoints. Mutations are
// admin only; listing is open to any logged-in user so the publish and
// search forms can be rendered.
type CategoryHandler struct {
	// Categories performs the underlying registry operations.
	Categories CategoryService
}

// CategoryRequest represents the JSON payload for creating or updating a
// category.
type CategoryRequest struct {
	Name       string   `json:"name"`
	Attributes []string `json:"attributes"`
}

// List returns all categories with their attribute templates.
func (h *CategoryHandler) List(w http.ResponseWriter, r *http.Request) {
	categories, err := h.Categories.List(r.Context())
	if err != nil {
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, categories)
}

// Add creates a category. Admin only.
func (h *CategoryHandler) Add(w http.ResponseWriter, r *http.Request) {
	if !requireAdmin(w, r) {
		return
	}

	var req CategoryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil ||
		strings.TrimSpace(req.Name) == "" {
		http.Error(w, "invalid request", http.StatusBadRequest)
		return
	}

	err := h.Categories.Add(r.Context(), strings.TrimSpace(req.Name), req.Attributes)
	if errors.Is(err, repository.ErrDuplicateCategory) {
		http.Error(w, "category already exists", http.StatusConflict)
		return
	}
	if err != nil {
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"status": "ok"})
}

// Update replaces the named category's attribute template. Admin only.
func (h *CategoryHandler) Update(w http.ResponseWriter, r *http.Request) {
	if !requireAdmin(w, r) {
		return
	}

	var req CategoryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request", http.StatusBadRequest)
		return
	}

	name := chi.URLParam(r, "name")
	err := h.Categories.Update(r.Context(), name, req.Attributes)
	if errors.Is(err, repository.ErrNotFound) {
		http.Error(w, "category does not exist", http.StatusNotFound)
		return
	}
	if err != nil {
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// Delete removes the named category. Admin only. Deletion is blocked while
// items still reference the category.
func (h *CategoryHandler) Delete(w http.ResponseWriter, r *http.Request) {
	if !requireAdmin(w, r) {
		return
	}

	name := chi.URLParam(r, "name")
	err := h.Categories.Delete(r.Context(), name)
	switch {
	case errors.Is(err, repository.ErrCategoryInUse):
		http.Error(w, "category still has items", http.StatusConflict)
	case errors.Is(err, repository.ErrNotFound):
		http.Error(w, "category does not exist", http.StatusNotFound)
	case err != nil:
		http.Error(w, "internal error", http.StatusInternalServerError)
	default:
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}
}

// Attributes returns the named category's attribute template, empty if the
// category is absent.
func (h *CategoryHandler) Attributes(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	attributes, err := h.Categories.AttributesFor(r.Context(), name)
	if err != nil {
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, attributes)
}
