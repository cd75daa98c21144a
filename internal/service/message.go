package service

import (
	"context"
	"errors"

	"github.com/alukyanov/MarketDesk/internal/models"
)

// ErrReplyWrongItem reports a reply referencing a message on a different
// item, or one that does not exist.
var ErrReplyWrongItem = errors.New("reply target is not on this item")

// MessageRepository defines the persistence operations required by the
// message service.
type MessageRepository interface {
	// Add appends a message to the item's board; replyTo may be nil.
	Add(ctx context.Context, itemID, senderID int64, content string, replyTo *int64) error
	// GetByID returns the message with the given ID, or (nil, nil) if
	// absent.
	GetByID(ctx context.Context, id int64) (*models.Message, error)
	// ListFor returns the item's messages oldest first.
	ListFor(ctx context.Context, itemID int64) ([]models.Message, error)
}

// MessageService implements the append-only, optionally-threaded message
// board attached to each item.
type MessageService struct {
	// repo performs the data-layer operations.
	repo MessageRepository
}

// NewMessageService constructs a MessageService with the provided
// repository.
func NewMessageService(repo MessageRepository) *MessageService {
	return &MessageService{repo: repo}
}

// Add appends a message. Non-empty content is enforced by the caller. When
// replyTo is set, the referenced message must exist on the same item;
// otherwise ErrReplyWrongItem is returned.
func (s *MessageService) Add(ctx context.Context, itemID, senderID int64, content string, replyTo *int64) error {
	if replyTo != nil {
		target, err := s.repo.GetByID(ctx, *replyTo)
		if err != nil {
			return err
		}
		if target == nil || target.ItemID != itemID {
			return ErrReplyWrongItem
		}
	}
	return s.repo.Add(ctx, itemID, senderID, content, replyTo)
}

// ListFor returns the item's messages in creation order, oldest first.
func (s *MessageService) ListFor(ctx context.Context, itemID int64) ([]models.Message, error) {
	return s.repo.ListFor(ctx, itemID)
}
