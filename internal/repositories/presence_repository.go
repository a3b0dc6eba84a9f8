package repositories

import (
	"errors"

	"github.com/profitboysub0-max/social-music-app/internal/models"
	"gorm.io/gorm"
)

// PresenceRepository defines the interface for presence data operations
type PresenceRepository interface {
	GetByUserID(userID uint) (*models.Presence, error)
	Save(presence *models.Presence) error
}

// PostgresPresenceRepository implements PresenceRepository for PostgreSQL
type PostgresPresenceRepository struct {
	db *gorm.DB
}

// NewPostgresPresenceRepository creates a new PostgresPresenceRepository
func NewPostgresPresenceRepository(db *gorm.DB) *PostgresPresenceRepository {
	return &PostgresPresenceRepository{db: db}
}

// GetByUserID returns the user's presence record, or nil when the user
// has never reported playback
func (r *PostgresPresenceRepository) GetByUserID(userID uint) (*models.Presence, error) {
	var presence models.Presence
	err := r.db.Where("user_id = ?", userID).First(&presence).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &presence, nil
}

// Save inserts or updates the single presence row for a user
func (r *PostgresPresenceRepository) Save(presence *models.Presence) error {
	if presence.ID != 0 {
		return r.db.Save(presence).Error
	}
	return r.db.Create(presence).Error
}
