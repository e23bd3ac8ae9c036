package model

import "time"

// User is the identity issued by the external provider. A record is created on
// first sign-in (upsert by email) and never mutated by the chat core. When a user
// appears as a message author only email and name are serialized.
type User struct {
	ID        uint      `gorm:"primaryKey" json:"-"`
	Email     string    `gorm:"size:128;not null;uniqueIndex" json:"email"`
	Name      string    `gorm:"size:128" json:"name,omitempty"`
	CreatedAt time.Time `json:"-"`
	UpdatedAt time.Time `json:"-"`
}
