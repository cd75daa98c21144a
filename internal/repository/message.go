package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/alukyanov/MarketDesk/internal/models"
)

// PostgresMessageRepository implements message-board persistence against a
// PostgreSQL database.
type PostgresMessageRepository struct {
	// DB is the database handle for executing queries.
	DB *sql.DB
}

// NewPostgresMessageRepository creates a new PostgresMessageRepository with
// the given database connection.
func NewPostgresMessageRepository(db *sql.DB) *PostgresMessageRepository {
	return &PostgresMessageRepository{DB: db}
}

// Add appends a message to the item's board. replyTo may be nil.
func (r *PostgresMessageRepository) Add(ctx context.Context, itemID, senderID int64, content string, replyTo *int64) error {
	_, err := r.DB.ExecContext(ctx, `
		INSERT INTO messages (item_id, sender_id, content, reply_to_id)
		VALUES ($1, $2, $3, $4)
	`, itemID, senderID, content, replyTo)
	if err != nil {
		return fmt.Errorf("insert message: %w", err)
	}
	return nil
}

// GetByID returns the message with the given ID, or (nil, nil) if no such
// message exists.
func (r *PostgresMessageRepository) GetByID(ctx context.Context, id int64) (*models.Message, error) {
	var (
		m       models.Message
		replyTo sql.NullInt64
	)
	err := r.DB.QueryRowContext(ctx, `
		SELECT id, item_id, sender_id, content, reply_to_id, created_at
		FROM messages WHERE id = $1
	`, id).Scan(&m.ID, &m.ItemID, &m.SenderID, &m.Content, &replyTo, &m.CreatedAt)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get message: %w", err)
	}
	if replyTo.Valid {
		m.ReplyToID = &replyTo.Int64
	}
	return &m, nil
}

// ListFor returns the item's messages in creation order, oldest first, with
// sender logins resolved.
func (r *PostgresMessageRepository) ListFor(ctx context.Context, itemID int64) ([]models.Message, error) {
	rows, err := r.DB.QueryContext(ctx, `
		SELECT m.id, m.item_id, m.sender_id, u.username AS sender_name,
		       m.content, m.reply_to_id, m.created_at
		FROM messages m
		JOIN users u ON u.id = m.sender_id
		WHERE m.item_id = $1
		ORDER BY m.created_at ASC, m.id ASC
	`, itemID)
	if err != nil {
		return nil, fmt.Errorf("list messages: %w", err)
	}
	defer rows.Close()

	var messages []models.Message
	for rows.Next() {
		var (
			m       models.Message
			replyTo sql.NullInt64
		)
		if err := rows.Scan(&m.ID, &m.ItemID, &m.SenderID, &m.SenderName,
			&m.Content, &replyTo, &m.CreatedAt); err != nil {
			return nil, fmt.Errorf("scan message: %w", err)
		}
		if replyTo.Valid {
			m.ReplyToID = &replyTo.Int64
		}
		messages = append(messages, m)
	}
	return messages, rows.Err()
}
