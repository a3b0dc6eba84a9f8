package models

import "time"

// PlaybackState persists a user's last known player state so the UI
// can resume where it left off.
type PlaybackState struct {
	ID           uint      `json:"-" gorm:"primaryKey"`
	UserID       uint      `json:"user_id" gorm:"uniqueIndex"`
	TrackURL     string    `json:"track_url,omitempty"`
	TrackTitle   string    `json:"track_title,omitempty"`
	ThumbnailURL string    `json:"thumbnail_url,omitempty"`
	Elapsed      float64   `json:"elapsed"`
	Duration     float64   `json:"duration"`
	IsPlaying    bool      `json:"is_playing"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// SavePlaybackRequest defines the request body for saving player state
type SavePlaybackRequest struct {
	TrackURL     string  `json:"track_url,omitempty" validate:"omitempty,url"`
	TrackTitle   string  `json:"track_title,omitempty" validate:"omitempty,max=200"`
	ThumbnailURL string  `json:"thumbnail_url,omitempty" validate:"omitempty,url"`
	Elapsed      float64 `json:"elapsed" validate:"min=0"`
	Duration     float64 `json:"duration" validate:"min=0"`
	IsPlaying    bool    `json:"is_playing"`
}
