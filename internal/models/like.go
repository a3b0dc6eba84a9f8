package models

import "gorm.io/gorm"

// Like represents a like on a post
type Like struct {
	gorm.Model
	PostID string `json:"post_id" gorm:"index;uniqueIndex:idx_like_post_user"` // MongoDB ObjectID as string
	UserID uint   `json:"user_id" gorm:"index;uniqueIndex:idx_like_post_user"`
}
