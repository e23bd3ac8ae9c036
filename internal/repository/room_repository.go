package repository

import (
	"errors"
	"fmt"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"kodechat/internal/model"
)

type RoomRepository struct {
	db *gorm.DB
}

func NewRoomRepository(db *gorm.DB) *RoomRepository {
	return &RoomRepository{db: db}
}

func (r *RoomRepository) GetByID(id uint) (*model.Room, error) {
	var room model.Room
	if err := r.db.First(&room, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("query room by id failed: %w", err)
	}
	return &room, nil
}

// GetOrCreate implements the connect-or-create room semantics: posting to an
// unknown room id creates that room with a generated default name. The insert
// uses the store's upsert primitive so concurrent first writers to the same
// new id race safely.
func (r *RoomRepository) GetOrCreate(id uint) (*model.Room, error) {
	room := model.Room{ID: id, Name: fmt.Sprintf("Room %d", id)}
	if err := r.db.Clauses(clause.OnConflict{DoNothing: true}).Create(&room).Error; err != nil {
		return nil, fmt.Errorf("upsert room failed: %w", err)
	}
	var stored model.Room
	if err := r.db.First(&stored, id).Error; err != nil {
		return nil, fmt.Errorf("load upserted room failed: %w", err)
	}
	return &stored, nil
}

// RecordActivity bumps the denormalized message counter and last-activity
// timestamp. Called by the room activity worker, never by the request path.
func (r *RoomRepository) RecordActivity(id uint, at time.Time) error {
	result := r.db.Model(&model.Room{}).Where("id = ?", id).Updates(map[string]interface{}{
		"message_count":    gorm.Expr("message_count + 1"),
		"last_activity_at": at,
	})
	if result.Error != nil {
		return fmt.Errorf("record room activity failed: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return fmt.Errorf("record room activity failed: room %d not found", id)
	}
	return nil
}
