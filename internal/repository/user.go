package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/alukyanov/MarketDesk/internal/models"
)

// PostgresUserRepository implements user persistence against a PostgreSQL
// database.
type PostgresUserRepository struct {
	// DB is the database handle for executing queries.
	DB *sql.DB
}

// NewPostgresUserRepository creates a new PostgresUserRepository with the
// given database connection.
func NewPostgresUserRepository(db *sql.DB) *PostgresUserRepository {
	return &PostgresUserRepository{DB: db}
}

// Create inserts a new user row with the given credential material.
// Returns ErrDuplicateUsername if the username is already taken.
func (r *PostgresUserRepository) Create(ctx context.Context, u *models.User, hash, salt []byte) error {
	contact, err := json.Marshal(u.Contact)
	if err != nil {
		return fmt.Errorf("marshal contact: %w", err)
	}

	err = r.DB.QueryRowContext(ctx, `
		INSERT INTO users (username, password_hash, salt, role, status, contact_info)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id
	`, u.Username, hash, salt, u.Role, u.Status, contact).Scan(&u.ID)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicateUsername
		}
		return fmt.Errorf("insert user: %w", err)
	}
	return nil
}

// GetByUsername returns the user with the given login, or (nil, nil) if no
// such user exists.
func (r *PostgresUserRepository) GetByUsername(ctx context.Context, username string) (*models.User, error) {
	row := r.DB.QueryRowContext(ctx, `
		SELECT id, username, role, status, contact_info FROM users WHERE username = $1
	`, username)
	u, err := scanUser(row)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get user: %w", err)
	}
	return u, nil
}

// Credentials returns the user with the given login along with the stored
// password hash and salt. Returns (nil, nil, nil, nil) if no such user
// exists.
func (r *PostgresUserRepository) Credentials(ctx context.Context, username string) (*models.User, []byte, []byte, error) {
	var (
		u       models.User
		hash    []byte
		salt    []byte
		contact []byte
	)
	err := r.DB.QueryRowContext(ctx, `
		SELECT id, username, role, status, contact_info, password_hash, salt
		FROM users WHERE username = $1
	`, username).Scan(&u.ID, &u.Username, &u.Role, &u.Status, &contact, &hash, &salt)
	if err == sql.ErrNoRows {
		return nil, nil, nil, nil
	}
	if err != nil {
		return nil, nil, nil, fmt.Errorf("get credentials: %w", err)
	}
	if err := json.Unmarshal(contact, &u.Contact); err != nil {
		return nil, nil, nil, fmt.Errorf("unmarshal contact: %w", err)
	}
	return &u, hash, salt, nil
}

// Approve sets the user's status to approved. It reports whether the row
// changed, so callers can tell a fresh approval from an already-approved
// account. Returns ErrNotFound if the username does not exist.
func (r *PostgresUserRepository) Approve(ctx context.Context, username string) (bool, error) {
	res, err := r.DB.ExecContext(ctx, `
		UPDATE users SET status = 'approved' WHERE username = $1 AND status = 'pending'
	`, username)
	if err != nil {
		return false, fmt.Errorf("approve user: %w", err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("approve user: %w", err)
	}
	if rows > 0 {
		return true, nil
	}

	// Nothing changed: either already approved or missing entirely.
	u, err := r.GetByUsername(ctx, username)
	if err != nil {
		return false, err
	}
	if u == nil {
		return false, ErrNotFound
	}
	return false, nil
}

// HasAdmin reports whether an admin account exists. Used to gate first-run
// admin bootstrap.
func (r *PostgresUserRepository) HasAdmin(ctx context.Context) (bool, error) {
	var exists bool
	err := r.DB.QueryRowContext(ctx,
		`SELECT EXISTS(SELECT 1 FROM users WHERE role = 'admin')`,
	).Scan(&exists)
	return exists, err
}

// ListPending returns all users awaiting approval.
func (r *PostgresUserRepository) ListPending(ctx context.Context) ([]models.User, error) {
	return r.list(ctx, `
		SELECT id, username, role, status, contact_info FROM users
		WHERE status = 'pending' ORDER BY id
	`)
}

// ListAll returns every user.
func (r *PostgresUserRepository) ListAll(ctx context.Context) ([]models.User, error) {
	return r.list(ctx, `
		SELECT id, username, role, status, contact_info FROM users ORDER BY id
	`)
}

func (r *PostgresUserRepository) list(ctx context.Context, query string) ([]models.User, error) {
	rows, err := r.DB.QueryContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("list users: %w", err)
	}
	defer rows.Close()

	var users []models.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("scan user: %w", err)
		}
		users = append(users, *u)
	}
	return users, rows.Err()
}

// rowScanner is satisfied by both *sql.Row and *sql.Rows.
type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner) (*models.User, error) {
	var (
		u       models.User
		contact []byte
	)
	if err := row.Scan(&u.ID, &u.Username, &u.Role, &u.Status, &contact); err != nil {
		return nil, err
	}
	if err := json.Unmarshal(contact, &u.Contact); err != nil {
		return nil, err
	}
	return &u, nil
}
