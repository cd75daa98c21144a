package http

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/alukyanov/MarketDesk/internal/models"
	"github.com/alukyanov/MarketDesk/internal/repository"
	"github.com/alukyanov/MarketDesk/internal/service"
)

// fakeAuthService implements AuthService for testing.
type fakeAuthService struct {
	registerErr error
	getUser     *models.User
	getUserErr  error
	authUser    *models.User
	authErr     error
	approveErr  error
	pending     []models.User
	all         []models.User
}

func (f *fakeAuthService) Register(ctx context.Context, username, password string, contact models.ContactInfo) error {
	return f.registerErr
}
func (f *fakeAuthService) Authenticate(ctx context.Context, username, password string) (*models.User, error) {
	return f.authUser, f.authErr
}
func (f *fakeAuthService) GetUser(ctx context.Context, username string) (*models.User, error) {
	return f.getUser, f.getUserErr
}
func (f *fakeAuthService) Approve(ctx context.Context, username string) error { return f.approveErr }
func (f *fakeAuthService) ListPending(ctx context.Context) ([]models.User, error) {
	return f.pending, nil
}
func (f *fakeAuthService) ListAll(ctx context.Context) ([]models.User, error) { return f.all, nil }

// fakeSessions implements SessionStore for testing.
type fakeSessions struct {
	created []string
	deleted []string
}

func (f *fakeSessions) Create(user *models.User) string {
	f.created = append(f.created, user.Username)
	return "token-" + user.Username
}
func (f *fakeSessions) Delete(token string) { f.deleted = append(f.deleted, token) }

func TestAuthHandler_Register(t *testing.T) {
	tests := []struct {
		name           string
		body           string
		service        *fakeAuthService
		expectedCode   int
		expectedSubstr string
	}{
		{
			name:           "invalid JSON",
			body:           `not a json`,
			service:        &fakeAuthService{},
			expectedCode:   http.StatusBadRequest,
			expectedSubstr: "invalid request",
		},
		{
			name:           "empty username",
			body:           `{"username":"  ","password":"pw"}`,
			service:        &fakeAuthService{},
			expectedCode:   http.StatusBadRequest,
			expectedSubstr: "invalid request",
		},
		{
			name:           "empty password",
			body:           `{"username":"alice","password":""}`,
			service:        &fakeAuthService{},
			expectedCode:   http.StatusBadRequest,
			expectedSubstr: "invalid request",
		},
		{
			name:           "duplicate username",
			body:           `{"username":"alice","password":"pw"}`,
			service:        &fakeAuthService{registerErr: repository.ErrDuplicateUsername},
			expectedCode:   http.StatusConflict,
			expectedSubstr: "username already exists",
		},
		{
			name:           "success",
			body:           `{"username":"alice","password":"pw","address":"dorm","phone":"555"}`,
			service:        &fakeAuthService{},
			expectedCode:   http.StatusCreated,
			expectedSubstr: "awaiting admin approval",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			req := httptest.NewRequest("POST", "/api/register", bytes.NewBufferString(tt.body))
			h := &AuthHandler{Auth: tt.service, Sessions: &fakeSessions{}}
			h.Register(rec, req)
			res := rec.Result()
			defer res.Body.Close()

			if res.StatusCode != tt.expectedCode {
				t.Fatalf("expected status %d, got %d", tt.expectedCode, res.StatusCode)
			}
			buf := new(bytes.Buffer)
			if _, err := buf.ReadFrom(res.Body); err != nil {
				t.Fatalf("failed to read body: %v", err)
			}
			if !bytes.Contains(buf.Bytes(), []byte(tt.expectedSubstr)) {
				t.Errorf("expected body to contain %q, got %q", tt.expectedSubstr, buf.String())
			}
		})
	}
}

func TestAuthHandler_Login_ThreeFailureModes(t *testing.T) {
	pendingBob := &models.User{ID: 3, Username: "bob", Role: models.RoleUser, Status: models.StatusPending}

	tests := []struct {
		name           string
		service        *fakeAuthService
		expectedCode   int
		expectedSubstr string
	}{
		{
			name:           "no such user",
			service:        &fakeAuthService{getUser: nil},
			expectedCode:   http.StatusNotFound,
			expectedSubstr: "user does not exist",
		},
		{
			name:           "wrong password",
			service:        &fakeAuthService{getUser: alice, authUser: nil},
			expectedCode:   http.StatusUnauthorized,
			expectedSubstr: "wrong password",
		},
		{
			name:           "pending approval",
			service:        &fakeAuthService{getUser: pendingBob, authUser: pendingBob},
			expectedCode:   http.StatusForbidden,
			expectedSubstr: "awaiting admin approval",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			req := httptest.NewRequest("POST", "/api/login",
				bytes.NewBufferString(`{"username":"x","password":"y"}`))
			h := &AuthHandler{Auth: tt.service, Sessions: &fakeSessions{}}
			h.Login(rec, req)

			if rec.Code != tt.expectedCode {
				t.Fatalf("expected status %d, got %d", tt.expectedCode, rec.Code)
			}
			if !bytes.Contains(rec.Body.Bytes(), []byte(tt.expectedSubstr)) {
				t.Errorf("expected body to contain %q, got %q", tt.expectedSubstr, rec.Body.String())
			}
		})
	}
}

func TestAuthHandler_Login_Success(t *testing.T) {
	sessions := &fakeSessions{}
	h := &AuthHandler{
		Auth:     &fakeAuthService{getUser: alice, authUser: alice},
		Sessions: sessions,
	}

	rec := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/api/login",
		bytes.NewBufferString(`{"username":"alice","password":"pw"}`))
	h.Login(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	var resp struct {
		Token string       `json:"token"`
		User  *models.User `json:"user"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp.Token != "token-alice" {
		t.Errorf("expected minted token, got %q", resp.Token)
	}
	if resp.User == nil || resp.User.Username != "alice" {
		t.Errorf("expected user in response, got %+v", resp.User)
	}
	if len(sessions.created) != 1 {
		t.Errorf("expected one session created, got %d", len(sessions.created))
	}
}

func TestAuthHandler_Approve(t *testing.T) {
	tests := []struct {
		name         string
		caller       *models.User
		approveErr   error
		expectedCode int
	}{
		{"non-admin rejected", alice, nil, http.StatusForbidden},
		{"admin approves", admin, nil, http.StatusOK},
		{"already approved reported", admin, service.ErrAlreadyApproved, http.StatusOK},
		{"unknown user", admin, repository.ErrNotFound, http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			req := httptest.NewRequest("POST", "/api/users/bob/approve", bytes.NewBufferString(`{}`))
			req = asUser(withURLParam(req, "username", "bob"), tt.caller)

			h := &AuthHandler{Auth: &fakeAuthService{approveErr: tt.approveErr}, Sessions: &fakeSessions{}}
			h.Approve(rec, req)

			if rec.Code != tt.expectedCode {
				t.Fatalf("expected status %d, got %d: %s", tt.expectedCode, rec.Code, rec.Body.String())
			}
		})
	}
}

func TestAuthHandler_ListUsers_AdminOnly(t *testing.T) {
	h := &AuthHandler{
		Auth:     &fakeAuthService{all: []models.User{*alice, *bob}},
		Sessions: &fakeSessions{},
	}

	rec := httptest.NewRecorder()
	req := asUser(httptest.NewRequest("GET", "/api/users", nil), alice)
	h.ListUsers(rec, req)
	if rec.Code != http.StatusForbidden {
		t.Fatalf("expected 403 for non-admin, got %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	req = asUser(httptest.NewRequest("GET", "/api/users", nil), admin)
	h.ListUsers(rec, req)
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200 for admin, got %d", rec.Code)
	}
	var users []models.User
	if err := json.NewDecoder(rec.Body).Decode(&users); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(users) != 2 {
		t.Errorf("expected 2 users, got %d", len(users))
	}
}

func TestAuthHandler_Login_InternalError(t *testing.T) {
	h := &AuthHandler{
		Auth:     &fakeAuthService{getUserErr: errors.New("db down")},
		Sessions: &fakeSessions{},
	}
	rec := httptest.NewRecorder()
	req := httptest.NewRequest("POST", "/api/login",
		bytes.NewBufferString(`{"username":"alice","password":"pw"}`))
	h.Login(rec, req)
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("expected 500, got %d", rec.Code)
	}
}
