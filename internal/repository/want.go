package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	"github.com/alukyanov/MarketDesk/internal/models"
)

// PostgresWantRepository implements the purchase-intent ledger against a
// PostgreSQL database.
type PostgresWantRepository struct {
	// DB is the database handle for executing queries.
	DB *sql.DB
}

// NewPostgresWantRepository creates a new PostgresWantRepository with the
// given database connection.
func NewPostgresWantRepository(db *sql.DB) *PostgresWantRepository {
	return &PostgresWantRepository{DB: db}
}

// Add records a purchase intent. The unique constraint on (user, item)
// makes a second intent for the same pair surface as ErrDuplicateWant.
func (r *PostgresWantRepository) Add(ctx context.Context, itemID, userID int64, offerPrice float64) error {
	_, err := r.DB.ExecContext(ctx, `
		INSERT INTO item_wants (item_id, user_id, offer_price) VALUES ($1, $2, $3)
	`, itemID, userID, offerPrice)
	if err != nil {
		if isUniqueViolation(err) {
			return ErrDuplicateWant
		}
		return fmt.Errorf("insert want: %w", err)
	}
	return nil
}

// Exists reports whether the given user has recorded an intent for the item.
func (r *PostgresWantRepository) Exists(ctx context.Context, itemID, userID int64) (bool, error) {
	var exists bool
	err := r.DB.QueryRowContext(ctx, `
		SELECT EXISTS(SELECT 1 FROM item_wants WHERE item_id = $1 AND user_id = $2)
	`, itemID, userID).Scan(&exists)
	return exists, err
}

// WantersFor returns every user with a recorded intent for the item.
func (r *PostgresWantRepository) WantersFor(ctx context.Context, itemID int64) ([]models.User, error) {
	rows, err := r.DB.QueryContext(ctx, `
		SELECT u.id, u.username, u.role, u.status, u.contact_info
		FROM users u
		JOIN item_wants w ON w.user_id = u.id
		WHERE w.item_id = $1
		ORDER BY w.id
	`, itemID)
	if err != nil {
		return nil, fmt.Errorf("list wanters: %w", err)
	}
	defer rows.Close()

	var users []models.User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, fmt.Errorf("scan wanter: %w", err)
		}
		users = append(users, *u)
	}
	return users, rows.Err()
}

// ItemsWantedBy returns every item the given user has recorded an intent
// for, including sold ones: intents are kept as history after a sale.
func (r *PostgresWantRepository) ItemsWantedBy(ctx context.Context, userID int64) ([]models.Item, error) {
	rows, err := r.DB.QueryContext(ctx, `
		SELECT i.id, i.name, i.description, i.category_id, i.owner_id, i.buyer_id,
		       i.status, i.price, i.can_bargain, i.address, i.specific_attributes,
		       i.image_paths, i.created_at,
		       c.name AS category_name, u.username AS owner_username, u.contact_info,
		       (SELECT COUNT(*) FROM item_wants w2 WHERE w2.item_id = i.id) AS want_count
		FROM items i
		JOIN item_wants w ON w.item_id = i.id
		JOIN categories c ON c.id = i.category_id
		JOIN users u ON u.id = i.owner_id
		WHERE w.user_id = $1
		ORDER BY w.id
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("list wanted items: %w", err)
	}
	defer rows.Close()

	var items []models.Item
	for rows.Next() {
		it, err := scanItem(rows)
		if err != nil {
			return nil, fmt.Errorf("scan wanted item: %w", err)
		}
		items = append(items, *it)
	}
	return items, rows.Err()
}

// ReceivedFor returns every intent recorded against items owned by the
// given user, with the buyer's name and contact bundle.
func (r *PostgresWantRepository) ReceivedFor(ctx context.Context, ownerID int64) ([]models.ReceivedWant, error) {
	rows, err := r.DB.QueryContext(ctx, `
		SELECT i.name AS item_name, u.username AS buyer_name, u.contact_info, w.offer_price
		FROM item_wants w
		JOIN items i ON i.id = w.item_id
		JOIN users u ON u.id = w.user_id
		WHERE i.owner_id = $1
		ORDER BY w.id
	`, ownerID)
	if err != nil {
		return nil, fmt.Errorf("list received wants: %w", err)
	}
	defer rows.Close()

	var received []models.ReceivedWant
	for rows.Next() {
		var (
			rw      models.ReceivedWant
			contact []byte
		)
		if err := rows.Scan(&rw.ItemName, &rw.BuyerName, &contact, &rw.OfferPrice); err != nil {
			return nil, fmt.Errorf("scan received want: %w", err)
		}
		if err := json.Unmarshal(contact, &rw.Contact); err != nil {
			return nil, fmt.Errorf("unmarshal contact: %w", err)
		}
		received = append(received, rw)
	}
	return received, rows.Err()
}
