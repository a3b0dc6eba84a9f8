package models

import "time"

// Presence tracks a user's self-reported "currently listening" state.
// IsActive is a stored hint only: staleness is recomputed against
// LastSeenAt on every read, so a stale row is served as inactive
// without being rewritten.
type Presence struct {
	ID         uint      `json:"-" gorm:"primaryKey"`
	UserID     uint      `json:"user_id" gorm:"uniqueIndex"`
	TrackURL   string    `json:"track_url,omitempty"`
	TrackTitle string    `json:"track_title,omitempty"`
	StartedAt  time.Time `json:"started_at"`
	LastSeenAt time.Time `json:"last_seen_at"`
	IsActive   bool      `json:"is_active"`
}
