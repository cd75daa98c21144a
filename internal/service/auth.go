// Package service provides the marketplace business logic, delegating
// persistence to repository interfaces.
package service

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"errors"
	"fmt"

	"github.com/alukyanov/MarketDesk/internal/models"
	"golang.org/x/crypto/pbkdf2"
)

// Password hashing parameters. The iteration count is deliberately high to
// slow down offline guessing.
const (
	hashIterations = 100_000
	saltLength     = 16
	keyLength      = 32
)

// ErrAlreadyApproved reports an approval of an account that is not pending.
var ErrAlreadyApproved = errors.New("user already approved")

// UserRepository defines the persistence operations required by the
// authentication service.
type UserRepository interface {
	// Create inserts a new user row with the given credential material.
	Create(ctx context.Context, u *models.User, hash, salt []byte) error
	// GetByUsername returns the user with the given login, or (nil, nil)
	// if no such user exists.
	GetByUsername(ctx context.Context, username string) (*models.User, error)
	// Credentials returns the user along with its stored hash and salt,
	// or all nils if no such user exists.
	Credentials(ctx context.Context, username string) (*models.User, []byte, []byte, error)
	// Approve sets the user's status to approved and reports whether the
	// row changed.
	Approve(ctx context.Context, username string) (bool, error)
	// HasAdmin reports whether an admin account exists.
	HasAdmin(ctx context.Context) (bool, error)
	// ListPending returns all users awaiting approval.
	ListPending(ctx context.Context) ([]models.User, error)
	// ListAll returns every user.
	ListAll(ctx context.Context) ([]models.User, error)
}

// AuthService implements registration, login verification, approval and
// admin bootstrap.
type AuthService struct {
	// repo performs the data-layer operations.
	repo UserRepository
}

// NewAuthService constructs a new AuthService using the provided repository.
func NewAuthService(repo UserRepository) *AuthService {
	return &AuthService{repo: repo}
}

// Register creates a pending regular user. The password is stored as a
// PBKDF2-SHA256 hash keyed by a fresh random salt. Returns
// repository.ErrDuplicateUsername if the login is taken.
func (s *AuthService) Register(ctx context.Context, username, password string, contact models.ContactInfo) error {
	salt, err := newSalt()
	if err != nil {
		return err
	}
	hash := hashPassword(password, salt)

	u := &models.User{
		Username: username,
		Role:     models.RoleUser,
		Status:   models.StatusPending,
		Contact:  contact,
	}
	return s.repo.Create(ctx, u, hash, salt)
}

// Authenticate verifies the password against the stored hash and returns
// the matching user. It returns (nil, nil) both when the user does not
// exist and when the password is wrong; callers that need to tell those
// apart check GetUser first.
func (s *AuthService) Authenticate(ctx context.Context, username, password string) (*models.User, error) {
	user, hash, salt, err := s.repo.Credentials(ctx, username)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, nil
	}

	derived := hashPassword(password, salt)
	if subtle.ConstantTimeCompare(derived, hash) != 1 {
		return nil, nil
	}
	return user, nil
}

// GetUser returns the user with the given login, or (nil, nil) if absent.
func (s *AuthService) GetUser(ctx context.Context, username string) (*models.User, error) {
	return s.repo.GetByUsername(ctx, username)
}

// Approve moves a pending account to approved. Approving an
// already-approved account returns ErrAlreadyApproved; the state is
// unchanged either way.
func (s *AuthService) Approve(ctx context.Context, username string) error {
	changed, err := s.repo.Approve(ctx, username)
	if err != nil {
		return err
	}
	if !changed {
		return ErrAlreadyApproved
	}
	return nil
}

// HasAdmin reports whether an admin account exists. Used to gate first-run
// bootstrap.
func (s *AuthService) HasAdmin(ctx context.Context) (bool, error) {
	return s.repo.HasAdmin(ctx)
}

// CreateAdmin creates an admin account with the same hashing discipline as
// Register. Admins are created pre-approved; no approval gate applies.
func (s *AuthService) CreateAdmin(ctx context.Context, username, password string) error {
	salt, err := newSalt()
	if err != nil {
		return err
	}
	hash := hashPassword(password, salt)

	u := &models.User{
		Username: username,
		Role:     models.RoleAdmin,
		Status:   models.StatusApproved,
		Contact:  models.ContactInfo{Address: "System"},
	}
	return s.repo.Create(ctx, u, hash, salt)
}

// ListPending returns all users awaiting approval.
func (s *AuthService) ListPending(ctx context.Context) ([]models.User, error) {
	return s.repo.ListPending(ctx)
}

// ListAll returns every user.
func (s *AuthService) ListAll(ctx context.Context) ([]models.User, error) {
	return s.repo.ListAll(ctx)
}

func newSalt() ([]byte, error) {
	salt := make([]byte, saltLength)
	if _, err := rand.Read(salt); err != nil {
		return nil, fmt.Errorf("generate salt: %w", err)
	}
	return salt, nil
}

func hashPassword(password string, salt []byte) []byte {
	return pbkdf2.Key([]byte(password), salt, hashIterations, keyLength, sha256.New)
}
