package http

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/alukyanov/MarketDesk/internal/middleware"
	"github.com/alukyanov/MarketDesk/internal/models"
	"github.com/alukyanov/MarketDesk/internal/service"
)

// MessageService defines the interface for message-board operations
// required by the HTTP handlers.
type MessageService interface {
	Add(ctx context.Context, itemID, senderID int64, content string, replyTo *int64) error
	ListFor(ctx context.Context, itemID int64) ([]models.Message, error)
}

// MessageHandler handles the per-item message board.
type MessageHandler struct {
	// Messages performs the underlying board operations.
	Messages MessageService
	// Catalog resolves items for the existence check.
	Catalog CatalogService
}

// PostMessageRequest represents the JSON payload for posting a message.
type PostMessageRequest struct {
	Content string `json:"content"`
	ReplyTo *int64 `json:"reply_to,omitempty"`
}

// Post appends a message to an item's board. Content must be non-empty and
// a reply must target a message on the same item.
func (h *MessageHandler) Post(w http.ResponseWriter, r *http.Request) {
	id, ok := urlID(w, r)
	if !ok {
		return
	}
	caller := middleware.GetUserFromContext(r.Context())

	var req PostMessageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil ||
		strings.TrimSpace(req.Content) == "" {
		http.Error(w, "message content must not be empty", http.StatusBadRequest)
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

	err = h.Messages.Add(r.Context(), id, caller.ID, req.Content, req.ReplyTo)
	if errors.Is(err, service.ErrReplyWrongItem) {
		http.Error(w, "reply target is not on this item", http.StatusBadRequest)
		return
	}
	if err != nil {
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"status": "ok"})
}

// List returns an item's messages oldest first.
func (h *MessageHandler) List(w http.ResponseWriter, r *http.Request) {
	id, ok := urlID(w, r)
	if !ok {
		return
	}
	messages, err := h.Messages.ListFor(r.Context(), id)
	if err != nil {
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, messages)
}
