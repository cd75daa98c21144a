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
	"github.com/alukyanov/MarketDesk/internal/service"
	"github.com/go-chi/chi/v5"
)

// AuthService defines the interface for credential operations required by
// the HTTP handlers.
type AuthService interface {
	// Register creates a pending regular user.
	Register(ctx context.Context, username, password string, contact models.ContactInfo) error
	// Authenticate returns the user on an exact password match, (nil, nil)
	// otherwise.
	Authenticate(ctx context.Context, username, password string) (*models.User, error)
	// GetUser returns the user with the given login, or (nil, nil).
	GetUser(ctx context.Context, username string) (*models.User, error)
	// Approve moves a pending account to approved.
	Approve(ctx context.Context, username string) error
	// ListPending returns all users awaiting approval.
	ListPending(ctx context.Context) ([]models.User, error)
	// ListAll returns every user.
	ListAll(ctx context.Context) ([]models.User, error)
}

// SessionStore mints and revokes session tokens.
type SessionStore interface {
	// Create registers a session for user and returns its token.
	Create(user *models.User) string
	// Delete removes the session for token.
	Delete(token string)
}

// AuthHandler handles registration, login, logout and the admin user
// management endpoints.
type AuthHandler struct {
	// Auth performs the underlying credential operations.
	Auth AuthService
	// Sessions is the live session store.
	Sessions SessionStore
}

// RegisterRequest represents the JSON payload for user registration.
type RegisterRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
	Address  string `json:"address"`
	Phone    string `json:"phone"`
	Email    string `json:"email"`
}

// LoginRequest represents the JSON payload for login.
type LoginRequest struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

// Register handles user registration requests. New accounts start pending
// and cannot log in until an admin approves them.
func (h *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	var req RegisterRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil ||
		strings.TrimSpace(req.Username) == "" || req.Password == "" {
		http.Error(w, "invalid request", http.StatusBadRequest)
		return
	}

	contact := models.ContactInfo{Address: req.Address, Phone: req.Phone, Email: req.Email}
	err := h.Auth.Register(r.Context(), strings.TrimSpace(req.Username), req.Password, contact)
	if errors.Is(err, repository.ErrDuplicateUsername) {
		http.Error(w, "username already exists", http.StatusConflict)
		return
	}
	if err != nil {
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusCreated, map[string]string{
		"status":  "ok",
		"message": "registered, awaiting admin approval",
	})
}

// Login verifies credentials and mints a session token. The three failure
// modes are distinct: unknown user, wrong password and pending approval.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.Username == "" {
		http.Error(w, "invalid request", http.StatusBadRequest)
		return
	}

	known, err := h.Auth.GetUser(r.Context(), req.Username)
	if err != nil {
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	if known == nil {
		http.Error(w, "user does not exist", http.StatusNotFound)
		return
	}

	user, err := h.Auth.Authenticate(r.Context(), req.Username, req.Password)
	if err != nil {
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	if user == nil {
		http.Error(w, "wrong password", http.StatusUnauthorized)
		return
	}
	if user.Status != models.StatusApproved {
		http.Error(w, "account awaiting admin approval", http.StatusForbidden)
		return
	}

	token := h.Sessions.Create(user)
	writeJSON(w, http.StatusOK, map[string]any{
		"token": token,
		"user":  user,
	})
}

// Logout revokes the caller's session token.
func (h *AuthHandler) Logout(w http.ResponseWriter, r *http.Request) {
	header := r.Header.Get("Authorization")
	if token, ok := strings.CutPrefix(header, "Bearer "); ok {
		h.Sessions.Delete(token)
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// Approve handles admin approval of a pending registration. Approving an
// already-approved account is reported but not an error.
func (h *AuthHandler) Approve(w http.ResponseWriter, r *http.Request) {
	if !requireAdmin(w, r) {
		return
	}

	username := chi.URLParam(r, "username")
	err := h.Auth.Approve(r.Context(), username)
	switch {
	case errors.Is(err, service.ErrAlreadyApproved):
		writeJSON(w, http.StatusOK, map[string]string{"status": "already approved"})
	case errors.Is(err, repository.ErrNotFound):
		http.Error(w, "user does not exist", http.StatusNotFound)
	case err != nil:
		http.Error(w, "internal error", http.StatusInternalServerError)
	default:
		writeJSON(w, http.StatusOK, map[string]string{"status": "approved"})
	}
}

// ListUsers returns every account. Admin only.
func (h *AuthHandler) ListUsers(w http.ResponseWriter, r *http.Request) {
	if !requireAdmin(w, r) {
		return
	}
	users, err := h.Auth.ListAll(r.Context())
	if err != nil {
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, users)
}

// ListPending returns the accounts awaiting approval. Admin only.
func (h *AuthHandler) ListPending(w http.ResponseWriter, r *http.Request) {
	if !requireAdmin(w, r) {
		return
	}
	users, err := h.Auth.ListPending(r.Context())
	if err != nil {
		http.Error(w, "internal error", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, users)
}

// requireAdmin writes a 403 and returns false unless the caller is an
// admin.
func requireAdmin(w http.ResponseWriter, r *http.Request) bool {
	caller := middleware.GetUserFromContext(r.Context())
	if caller == nil || caller.Role != models.RoleAdmin {
		http.Error(w, "admin privileges required", http.StatusForbidden)
		return false
	}
	return true
}
