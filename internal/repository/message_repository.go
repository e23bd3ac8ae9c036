package repository

import (
	"fmt"

	"gorm.io/gorm"

	"kodechat/internal/model"
)

type MessageRepository struct {
	db *gorm.DB
}

func NewMessageRepository(db *gorm.DB) *MessageRepository {
	return &MessageRepository{db: db}
}

func (r *MessageRepository) Create(message *model.Message) error {
	if err := r.db.Create(message).Error; err != nil {
		return fmt.Errorf("create message failed: %w", err)
	}
	return nil
}

// ListByRoomID returns every message of the room with its author preloaded,
// oldest first. Unknown rooms yield an empty slice, not an error.
func (r *MessageRepository) ListByRoomID(roomID uint) ([]model.Message, error) {
	messages := make([]model.Message, 0)
	if err := r.db.Where("room_id = ?", roomID).
		Preload("Author").
		Order("created_at ASC, id ASC").
		Find(&messages).Error; err != nil {
		return nil, fmt.Errorf("list messages failed: %w", err)
	}
	return messages, nil
}

func (r *MessageRepository) CountByRoomID(roomID uint) (int64, error) {
	var count int64
	if err := r.db.Model(&model.Message{}).Where("room_id = ?", roomID).Count(&count).Error; err != nil {
		return 0, fmt.Errorf("count messages failed: %w", err)
	}
	return count, nil
}
