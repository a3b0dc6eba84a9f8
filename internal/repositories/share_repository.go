package repositories

import (
	"github.com/profitboysub0-max/social-music-app/internal/models"
	"gorm.io/gorm"
)

// ShareRepository defines the interface for share data operations
type ShareRepository interface {
	CreateShare(share *models.Share) error
	GetShareByToken(token string) (*models.Share, error)
}

// PostgresShareRepository implements ShareRepository for PostgreSQL
type PostgresShareRepository struct {
	db *gorm.DB
}

// NewPostgresShareRepository creates a new PostgresShareRepository
func NewPostgresShareRepository(db *gorm.DB) *PostgresShareRepository {
	return &PostgresShareRepository{db: db}
}

// CreateShare creates a new share record
func (r *PostgresShareRepository) CreateShare(share *models.Share) error {
	return r.db.Create(share).Error
}

// GetShareByToken resolves a share link token
func (r *PostgresShareRepository) GetShareByToken(token string) (*models.Share, error) {
	var share models.Share
	if err := r.db.Where("token = ?", token).First(&share).Error; err != nil {
		return nil, err
	}
	return &share, nil
}
