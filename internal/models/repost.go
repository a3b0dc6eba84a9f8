package models

import "gorm.io/gorm"

// Repost represents a repost of a post to the reposter's followers
type Repost struct {
	gorm.Model
	PostID string `json:"post_id" gorm:"index;uniqueIndex:idx_repost_post_user"` // MongoDB ObjectID as string
	UserID uint   `json:"user_id" gorm:"index;uniqueIndex:idx_repost_post_user"`
}
