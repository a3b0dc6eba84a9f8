package repositories

import (
	"fmt"

	"github.com/profitboysub0-max/social-music-app/internal/models"
	"gorm.io/gorm"
)

// ErrRepostNotFound is returned when deleting a repost that does not exist
var ErrRepostNotFound = fmt.Errorf("repost not found")

// RepostRepository defines the interface for repost data operations
type RepostRepository interface {
	CreateRepost(repost *models.Repost) error
	DeleteRepost(postID string, userID uint) error
	HasUserReposted(postID string, userID uint) (bool, error)
	GetRepostedPostIDs(userID uint, postIDs []string) (map[string]bool, error)
}

// PostgresRepostRepository implements RepostRepository for PostgreSQL
type PostgresRepostRepository struct {
	db *gorm.DB
}

// NewPostgresRepostRepository creates a new PostgresRepostRepository
func NewPostgresRepostRepository(db *gorm.DB) *PostgresRepostRepository {
	return &PostgresRepostRepository{db: db}
}

// CreateRepost creates a new repost
func (r *PostgresRepostRepository) CreateRepost(repost *models.Repost) error {
	return r.db.Create(repost).Error
}

// DeleteRepost deletes a repost. Unscoped for the same reason as
// DeleteLike: a soft-deleted row would block a later re-repost.
func (r *PostgresRepostRepository) DeleteRepost(postID string, userID uint) error {
	res := r.db.Unscoped().Where("post_id = ? AND user_id = ?", postID, userID).Delete(&models.Repost{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return ErrRepostNotFound
	}
	return nil
}

// HasUserReposted checks if a user has reposted a specific post
func (r *PostgresRepostRepository) HasUserReposted(postID string, userID uint) (bool, error) {
	var count int64
	if err := r.db.Model(&models.Repost{}).Where("post_id = ? AND user_id = ?", postID, userID).Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

// GetRepostedPostIDs returns which of the given posts the user has reposted
func (r *PostgresRepostRepository) GetRepostedPostIDs(userID uint, postIDs []string) (map[string]bool, error) {
	reposted := make(map[string]bool)
	if len(postIDs) == 0 {
		return reposted, nil
	}
	var rows []models.Repost
	if err := r.db.Where("user_id = ? AND post_id IN ?", userID, postIDs).Find(&rows).Error; err != nil {
		return nil, err
	}
	for _, row := range rows {
		reposted[row.PostID] = true
	}
	return reposted, nil
}
