package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/alukyanov/MarketDesk/internal/models"
)

// itemColumns is the shared select list for item queries: the item row
// joined with its category name, owner login and contact bundle, and the
// derived intent count.
const itemColumns = `
	SELECT i.id, i.name, i.description, i.category_id, i.owner_id, i.buyer_id,
	       i.status, i.price, i.can_bargain, i.address, i.specific_attributes,
	       i.image_paths, i.created_at,
	       c.name AS category_name, u.username AS owner_username, u.contact_info,
	       (SELECT COUNT(*) FROM item_wants w WHERE w.item_id = i.id) AS want_count
	FROM items i
	JOIN categories c ON c.id = i.category_id
	JOIN users u ON u.id = i.owner_id`

// PostgresItemRepository implements item persistence against a PostgreSQL
// database.
type PostgresItemRepository struct {
	// DB is the database handle for executing queries and transactions.
	DB *sql.DB
}

// NewPostgresItemRepository creates a new PostgresItemRepository with the
// given database connection.
func NewPostgresItemRepository(db *sql.DB) *PostgresItemRepository {
	return &PostgresItemRepository{DB: db}
}

// Create resolves the category and owner names to internal keys and inserts
// the item, all in one transaction so a failed lookup leaves no partial
// state. The item starts active with no buyer. Returns the new item ID, or
// an error wrapping ErrNotFound if the category or owner is missing.
func (r *PostgresItemRepository) Create(ctx context.Context, in models.NewItem) (int64, error) {
	tx, err := r.DB.BeginTx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback()

	var categoryID int64
	err = tx.QueryRowContext(ctx,
		`SELECT id FROM categories WHERE name = $1`, in.Category,
	).Scan(&categoryID)
	if err == sql.ErrNoRows {
		return 0, fmt.Errorf("category %q: %w", in.Category, ErrNotFound)
	}
	if err != nil {
		return 0, fmt.Errorf("resolve category: %w", err)
	}

	var ownerID int64
	err = tx.QueryRowContext(ctx,
		`SELECT id FROM users WHERE username = $1`, in.OwnerUsername,
	).Scan(&ownerID)
	if err == sql.ErrNoRows {
		return 0, fmt.Errorf("user %q: %w", in.OwnerUsername, ErrNotFound)
	}
	if err != nil {
		return 0, fmt.Errorf("resolve owner: %w", err)
	}

	attrs, err := json.Marshal(orEmptyMap(in.SpecificAttributes))
	if err != nil {
		return 0, fmt.Errorf("marshal attributes: %w", err)
	}
	images, err := json.Marshal(orEmptySlice(in.ImagePaths))
	if err != nil {
		return 0, fmt.Errorf("marshal images: %w", err)
	}

	var id int64
	err = tx.QueryRowContext(ctx, `
		INSERT INTO items (name, description, category_id, owner_id, price,
		                   can_bargain, address, specific_attributes, image_paths)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
		RETURNING id
	`, in.Name, in.Description, categoryID, ownerID, in.Price,
		in.CanBargain, in.Address, attrs, images).Scan(&id)
	if err != nil {
		return 0, fmt.Errorf("insert item: %w", err)
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit: %w", err)
	}
	return id, nil
}

// GetByID returns the item with the given ID, or (nil, nil) if no such item
// exists.
func (r *PostgresItemRepository) GetByID(ctx context.Context, id int64) (*models.Item, error) {
	items, err := r.fetch(ctx, itemColumns+` WHERE i.id = $1`, id)
	if err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, nil
	}
	return &items[0], nil
}

// ListAll returns every item regardless of status.
func (r *PostgresItemRepository) ListAll(ctx context.Context) ([]models.Item, error) {
	return r.fetch(ctx, itemColumns+` ORDER BY i.id`)
}

// ListByOwner returns every item owned by the given user.
func (r *PostgresItemRepository) ListByOwner(ctx context.Context, ownerID int64) ([]models.Item, error) {
	return r.fetch(ctx, itemColumns+` WHERE i.owner_id = $1 ORDER BY i.id`, ownerID)
}

// Search returns items in the named category whose name, description or
// owner login contains keyword, matched case-insensitively. An empty
// keyword matches everything in the category; an unknown category yields
// an empty result.
func (r *PostgresItemRepository) Search(ctx context.Context, category, keyword string) ([]models.Item, error) {
	var categoryID int64
	err := r.DB.QueryRowContext(ctx,
		`SELECT id FROM categories WHERE name = $1`, category,
	).Scan(&categoryID)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("resolve category: %w", err)
	}

	if keyword == "" {
		return r.fetch(ctx, itemColumns+` WHERE i.category_id = $1 ORDER BY i.id`, categoryID)
	}
	pattern := "%" + keyword + "%"
	return r.fetch(ctx, itemColumns+`
		WHERE i.category_id = $1
		  AND (i.name ILIKE $2 OR i.description ILIKE $2 OR u.username ILIKE $2)
		ORDER BY i.id`, categoryID, pattern)
}

// Update applies the non-nil fields of patch to the item. A patch with no
// fields set is a no-op. Returns ErrNotFound if the item does not exist.
func (r *PostgresItemRepository) Update(ctx context.Context, id int64, patch models.ItemPatch) error {
	var (
		sets []string
		args []any
	)
	add := func(column string, value any) {
		args = append(args, value)
		sets = append(sets, fmt.Sprintf("%s = $%d", column, len(args)))
	}

	if patch.Name != nil {
		add("name", *patch.Name)
	}
	if patch.Description != nil {
		add("description", *patch.Description)
	}
	if patch.Price != nil {
		add("price", *patch.Price)
	}
	if patch.CanBargain != nil {
		add("can_bargain", *patch.CanBargain)
	}
	if patch.Address != nil {
		add("address", *patch.Address)
	}
	if patch.SpecificAttributes != nil {
		attrs, err := json.Marshal(patch.SpecificAttributes)
		if err != nil {
			return fmt.Errorf("marshal attributes: %w", err)
		}
		add("specific_attributes", attrs)
	}
	if patch.ImagePaths != nil {
		images, err := json.Marshal(patch.ImagePaths)
		if err != nil {
			return fmt.Errorf("marshal images: %w", err)
		}
		add("image_paths", images)
	}

	if len(sets) == 0 {
		return nil
	}

	args = append(args, id)
	query := fmt.Sprintf("UPDATE items SET %s WHERE id = $%d", joinSets(sets), len(args))
	res, err := r.DB.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("update item: %w", err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update item: %w", err)
	}
	if rows == 0 {
		return ErrNotFound
	}
	return nil
}

// Delete removes the item row. Intents and messages referencing it cascade.
// Returns ErrNotFound if the item does not exist.
func (r *PostgresItemRepository) Delete(ctx context.Context, id int64) error {
	res, err := r.DB.ExecContext(ctx, `DELETE FROM items WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete item: %w", err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete item: %w", err)
	}
	if rows == 0 {
		return ErrNotFound
	}
	return nil
}

// MarkSold records the sale: status becomes sold and the buyer is set. The
// update is conditional on the item still being active, so a second
// confirmation cannot overwrite a finished sale. It reports whether the
// transition happened.
func (r *PostgresItemRepository) MarkSold(ctx context.Context, id, buyerID int64) (bool, error) {
	res, err := r.DB.ExecContext(ctx, `
		UPDATE items SET status = 'sold', buyer_id = $1
		WHERE id = $2 AND status = 'active'
	`, buyerID, id)
	if err != nil {
		return false, fmt.Errorf("mark sold: %w", err)
	}
	rows, err := res.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("mark sold: %w", err)
	}
	return rows > 0, nil
}

func (r *PostgresItemRepository) fetch(ctx context.Context, query string, args ...any) ([]models.Item, error) {
	rows, err := r.DB.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("query items: %w", err)
	}
	defer rows.Close()

	var items []models.Item
	for rows.Next() {
		it, err := scanItem(rows)
		if err != nil {
			return nil, fmt.Errorf("scan item: %w", err)
		}
		items = append(items, *it)
	}
	return items, rows.Err()
}

func scanItem(row rowScanner) (*models.Item, error) {
	var (
		it      models.Item
		buyerID sql.NullInt64
		attrs   []byte
		images  []byte
		contact []byte
	)
	err := row.Scan(
		&it.ID, &it.Name, &it.Description, &it.CategoryID, &it.OwnerID, &buyerID,
		&it.Status, &it.Price, &it.CanBargain, &it.Address, &attrs,
		&images, &it.CreatedAt,
		&it.CategoryName, &it.OwnerUsername, &contact,
		&it.WantCount,
	)
	if err != nil {
		return nil, err
	}
	if buyerID.Valid {
		it.BuyerID = &buyerID.Int64
	}
	if err := json.Unmarshal(attrs, &it.SpecificAttributes); err != nil {
		return nil, fmt.Errorf("unmarshal attributes: %w", err)
	}
	if err := json.Unmarshal(images, &it.ImagePaths); err != nil {
		return nil, fmt.Errorf("unmarshal images: %w", err)
	}
	if err := json.Unmarshal(contact, &it.OwnerContact); err != nil {
		return nil, fmt.Errorf("unmarshal contact: %w", err)
	}
	return &it, nil
}

func joinSets(sets []string) string {
	out := sets[0]
	for _, s := range sets[1:] {
		out += ", " + s
	}
	return out
}

func orEmptyMap(m map[string]string) map[string]string {
	if m == nil {
		return map[string]string{}
	}
	return m
}

func orEmptySlice(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
