package models

import "time"

// PushSubscription is one browser's web push registration for a user.
// The endpoint is globally unique: re-registering an existing endpoint
// under another user reassigns ownership instead of duplicating it.
type PushSubscription struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	UserID    uint      `json:"user_id" gorm:"index"`
	Endpoint  string    `json:"endpoint" gorm:"uniqueIndex;size:1024"`
	P256dh    string    `json:"p256dh"` // Public key for payload encryption
	Auth      string    `json:"auth"`   // Auth secret
	CreatedAt time.Time `json:"created_at"`
}

// SubscribePushRequest defines the request body for registering a
// browser push subscription
type SubscribePushRequest struct {
	Endpoint string `json:"endpoint" validate:"required,url"`
	P256dh   string `json:"p256dh" validate:"required"`
	Auth     string `json:"auth" validate:"required"`
}
