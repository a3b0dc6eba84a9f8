package repositories

import (
	"errors"

	"github.com/profitboysub0-max/social-music-app/internal/models"
	"gorm.io/gorm"
)

// PushSubscriptionRepository defines the interface for browser push
// subscription storage
type PushSubscriptionRepository interface {
	Upsert(sub *models.PushSubscription) error
	GetByUserID(userID uint) ([]models.PushSubscription, error)
	DeleteByID(id uint) error
	DeleteByEndpoint(userID uint, endpoint string) error
}

// PostgresPushSubscriptionRepository implements
// PushSubscriptionRepository for PostgreSQL
type PostgresPushSubscriptionRepository struct {
	db *gorm.DB
}

// NewPostgresPushSubscriptionRepository creates a new
// PostgresPushSubscriptionRepository
func NewPostgresPushSubscriptionRepository(db *gorm.DB) *PostgresPushSubscriptionRepository {
	return &PostgresPushSubscriptionRepository{db: db}
}

// Upsert registers a subscription. An endpoint has exactly one owner:
// registering an endpoint that already exists reassigns it to the new
// user instead of inserting a duplicate.
func (r *PostgresPushSubscriptionRepository) Upsert(sub *models.PushSubscription) error {
	var existing models.PushSubscription
	err := r.db.Where("endpoint = ?", sub.Endpoint).First(&existing).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return r.db.Create(sub).Error
		}
		return err
	}

	existing.UserID = sub.UserID
	existing.P256dh = sub.P256dh
	existing.Auth = sub.Auth
	if err := r.db.Save(&existing).Error; err != nil {
		return err
	}
	*sub = existing
	return nil
}

// GetByUserID returns every subscription registered for a user
func (r *PostgresPushSubscriptionRepository) GetByUserID(userID uint) ([]models.PushSubscription, error) {
	var subs []models.PushSubscription
	err := r.db.Where("user_id = ?", userID).Find(&subs).Error
	return subs, err
}

// DeleteByID removes a single subscription, used when the push service
// reports the endpoint as gone
func (r *PostgresPushSubscriptionRepository) DeleteByID(id uint) error {
	return r.db.Delete(&models.PushSubscription{}, id).Error
}

// DeleteByEndpoint removes a user's own subscription by endpoint
func (r *PostgresPushSubscriptionRepository) DeleteByEndpoint(userID uint, endpoint string) error {
	res := r.db.Where("user_id = ? AND endpoint = ?", userID, endpoint).Delete(&models.PushSubscription{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
