package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/alukyanov/MarketDesk/internal/models"
)

// PostgresCategoryRepository implements category persistence against a
// PostgreSQL database.
type PostgresCategoryRepository struct {
	// DB is the database handle for executing queries.
	DB *sql.DB
}

// NewPostgresCategoryRepository creates a new PostgresCategoryRepository
// with the given database connection.
func NewPostgresCategoryRepository(db *sql.DB) *PostgresCategoryRepository {
	return &PostgresCategoryRepository{DB: db}
}

// List returns all categories in creation order.
func (r *PostgresCategoryRepository) List(ctx context.Context) ([]models.Category, error) {
	rows, err := r.DB.QueryContext(ctx, `
		SELECT id, name, attributes_template FROM categories ORDER BY id
	`)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	defer rows.Close()

	var categories []models.Category
	for rows.Next() {
		var (
			c     models.Category
			attrs []byte
		)
		if err := rows.Scan(&c.ID, &c.Name, &attrs); err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		if err := json.Unmarshal(attrs, &c.Attributes); err != nil {
			return nil, fmt.Errorf("unmarshal attributes: %w", err)
		}
		categories = append(categories, c)
	}
	return categories, rows.Err()
}

// Add inserts a new category with the given attribute template.
// Returns ErrDuplicateCategory if the name is already taken.
func (r *PostgresCategoryRepository) Add(ctx context.Context, name string, attributes []string) error {
	attrs, err := json.Marshal(attributes)
	if err != nil {
		return fmt.Errorf("marshal attributes: %w", err)
	}
	_, err = r.DB.ExecContext(ctx, `
		INSERT INTO categories (name, attributes_template) VALUES ($1, $2)
	`, name, attrs)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicateCategory
		}
		return fmt.Errorf("insert category: %w", err)
	}
	return nil
}

// Update replaces the attribute template of the named category. Existing
// items keep their stored attribute keys untouched. Returns ErrNotFound if
// the category does not exist.
func (r *PostgresCategoryRepository) Update(ctx context.Context, name string, attributes []string) error {
	attrs, err := json.Marshal(attributes)
	if err != nil {
		return fmt.Errorf("marshal attributes: %w", err)
	}
	res, err := r.DB.ExecContext(ctx, `
		UPDATE categories SET attributes_template = $1 WHERE name = $2
	`, attrs, name)
	if err != nil {
		return fmt.Errorf("update category: %w", err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update category: %w", err)
	}
	if rows == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes the named category. Deletion is blocked while items still
// reference the category: the foreign key restricts it and the violation is
// surfaced as ErrCategoryInUse. Returns ErrNotFound if the category does
// not exist.
func (r *PostgresCategoryRepository) Delete(ctx context.Context, name string) error {
	res, err := r.DB.ExecContext(ctx, `DELETE FROM categories WHERE name = $1`, name)
	if err != nil {
		if isForeignKeyViolation(err) {
			return ErrCategoryInUse
		}
		return fmt.Errorf("delete category: %w", err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete category: %w", err)
	}
	if rows == 0 {
		return ErrNotFound
	}
	return nil
}

// AttributesFor returns the attribute template of the named category, or an
// empty slice if the category does not exist.
func (r *PostgresCategoryRepository) AttributesFor(ctx context.Context, name string) ([]string, error) {
	var attrs []byte
	err := r.DB.QueryRowContext(ctx, `
		SELECT attributes_template FROM categories WHERE name = $1
	`, name).Scan(&attrs)
	if err == sql.ErrNoRows {
		return []string{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get attributes: %w", err)
	}

	var attributes []string
	if err := json.Unmarshal(attrs, &attributes); err != nil {
		return nil, fmt.Errorf("unmarshal attributes: %w", err)
	}
	return attributes, nil
}
