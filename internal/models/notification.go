package models

import "time"

// NotificationType discriminates notification payloads
type NotificationType string

const (
	NotificationLike            NotificationType = "like"
	NotificationComment         NotificationType = "comment"
	NotificationFollow          NotificationType = "follow"
	NotificationMention         NotificationType = "mention"
	NotificationRepost          NotificationType = "repost"
	NotificationShare           NotificationType = "share"
	NotificationFriendListening NotificationType = "friend_listening"
	NotificationNetworkTrending NotificationType = "network_trending"
	NotificationSystemUpdate    NotificationType = "system_update"
)

// Notification represents a user notification (PostgreSQL).
// At most one live row exists per (recipient, group key) pair: a
// repeat event sharing the key mutates the row in place instead of
// inserting a duplicate.
type Notification struct {
	ID          uint             `json:"id" gorm:"primaryKey"`
	RecipientID uint             `json:"recipient_id" gorm:"index;index:idx_recipient_group"`
	ActorID     uint             `json:"actor_id,omitempty" gorm:"index"` // zero when there is no actor
	Type        NotificationType `json:"type" gorm:"size:30;index"`
	PostID      string           `json:"post_id,omitempty"`
	CommentID   uint             `json:"comment_id,omitempty"`
	Message     string           `json:"message"`
	GroupKey    string           `json:"group_key,omitempty" gorm:"size:255;index:idx_recipient_group"`
	IsRead      bool             `json:"is_read" gorm:"default:false;index"`
	CreatedAt   time.Time        `json:"created_at" gorm:"index"`
}
