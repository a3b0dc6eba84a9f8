package repositories

import (
	"errors"

	"github.com/profitboysub0-max/social-music-app/internal/models"
	"gorm.io/gorm"
)

// PlaybackRepository defines the interface for playback state persistence
type PlaybackRepository interface {
	GetByUserID(userID uint) (*models.PlaybackState, error)
	Save(state *models.PlaybackState) error
}

// PostgresPlaybackRepository implements PlaybackRepository for PostgreSQL
type PostgresPlaybackRepository struct {
	db *gorm.DB
}

// NewPostgresPlaybackRepository creates a new PostgresPlaybackRepository
func NewPostgresPlaybackRepository(db *gorm.DB) *PostgresPlaybackRepository {
	return &PostgresPlaybackRepository{db: db}
}

// GetByUserID returns the user's saved player state, or nil if none
func (r *PostgresPlaybackRepository) GetByUserID(userID uint) (*models.PlaybackState, error) {
	var state models.PlaybackState
	err := r.db.Where("user_id = ?", userID).First(&state).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &state, nil
}

// Save inserts or updates the single playback row for a user
func (r *PostgresPlaybackRepository) Save(state *models.PlaybackState) error {
	existing, err := r.GetByUserID(state.UserID)
	if err != nil {
		return err
	}
	if existing != nil {
		state.ID = existing.ID
		return r.db.Save(state).Error
	}
	return r.db.Create(state).Error
}
