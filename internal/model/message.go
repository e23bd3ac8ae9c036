package model

import "time"

// Message is a single chat utterance. Immutable once created; id and CreatedAt
// are assigned by the store at write time.
type Message struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	RoomID    uint      `gorm:"not null;index" json:"-"`
	AuthorID  uint      `gorm:"not null;index" json:"-"`
	Content   string    `gorm:"type:text;not null" json:"content"`
	Author    User      `gorm:"foreignKey:AuthorID" json:"author"`
	CreatedAt time.Time `json:"createdAt"`
}
