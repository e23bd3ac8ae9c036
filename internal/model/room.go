package model

import "time"

// Room is a chat channel addressed by its numeric id in the URL path. Rooms are
// created implicitly on the first post to an unknown id and never deleted.
// MessageCount and LastActivityAt are denormalized stats maintained by the
// room activity worker, not by the request path.
type Room struct {
	ID             uint       `gorm:"primaryKey" json:"id"`
	Name           string     `gorm:"size:128;not null" json:"name"`
	MessageCount   int64      `gorm:"not null;default:0" json:"messageCount"`
	LastActivityAt *time.Time `json:"lastActivityAt,omitempty"`
	CreatedAt      time.Time  `json:"-"`
	UpdatedAt      time.Time  `json:"-"`
}
