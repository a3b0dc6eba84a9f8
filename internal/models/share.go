package models

import (
	"time"
)

// Share records a user sharing a post outward, identified by a link token
type Share struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	PostID    string    `json:"post_id" gorm:"index"`
	UserID    uint      `json:"user_id" gorm:"index"`
	Token     string    `json:"token" gorm:"uniqueIndex;size:36"`
	CreatedAt time.Time `json:"created_at"`
}
