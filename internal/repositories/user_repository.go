package repositories

import (
	"github.com/profitboysub0-max/social-music-app/internal/models"
	"gorm.io/gorm"
)

// UserRepository defines the interface for user data operations
type UserRepository interface {
	CreateUser(user *models.User) error
	GetUserByID(id uint) (*models.User, error)
	GetUserByEmail(email string) (*models.User, error)
	GetUserByFirebaseUID(firebaseUID string) (*models.User, error)
	GetUserByDisplayName(displayName string) (*models.User, error)
	GetAllUserIDs() ([]uint, error)
	UpdateUser(user *models.User) error
	SearchUsers(query string) ([]models.User, error)
}

// PostgresUserRepository implements UserRepository for PostgreSQL
type PostgresUserRepository struct {
	db *gorm.DB
}

// NewPostgresUserRepository creates a new PostgresUserRepository
func NewPostgresUserRepository(db *gorm.DB) *PostgresUserRepository {
	return &PostgresUserRepository{db: db}
}

// CreateUser creates a new user in PostgreSQL
func (r *PostgresUserRepository) CreateUser(user *models.User) error {
	return r.db.Create(user).Error
}

// GetUserByID retrieves a user by ID from PostgreSQL
func (r *PostgresUserRepository) GetUserByID(id uint) (*models.User, error) {
	var user models.User
	if err := r.db.First(&user, id).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// GetUserByEmail retrieves a user by email
func (r *PostgresUserRepository) GetUserByEmail(email string) (*models.User, error) {
	var user models.User
	if err := r.db.Where("email = ?", email).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// GetUserByFirebaseUID retrieves a user by Firebase UID
func (r *PostgresUserRepository) GetUserByFirebaseUID(firebaseUID string) (*models.User, error) {
	var user models.User
	if err := r.db.Where("firebase_uid = ?", firebaseUID).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// GetUserByDisplayName retrieves a user by display name,
// case-insensitively. Used by mention resolution, which matches
// against the current display name only.
func (r *PostgresUserRepository) GetUserByDisplayName(displayName string) (*models.User, error) {
	var user models.User
	if err := r.db.Where("LOWER(display_name) = LOWER(?)", displayName).First(&user).Error; err != nil {
		return nil, err
	}
	return &user, nil
}

// GetAllUserIDs retrieves every user ID, used by system broadcasts
func (r *PostgresUserRepository) GetAllUserIDs() ([]uint, error) {
	var ids []uint
	err := r.db.Model(&models.User{}).Pluck("id", &ids).Error
	return ids, err
}

// UpdateUser updates an existing user
func (r *PostgresUserRepository) UpdateUser(user *models.User) error {
	return r.db.Save(user).Error
}

// SearchUsers searches for users by name, display name or email
func (r *PostgresUserRepository) SearchUsers(query string) ([]models.User, error) {
	var users []models.User
	pattern := "%" + query + "%"
	err := r.db.Where("name ILIKE ? OR display_name ILIKE ? OR email ILIKE ?", pattern, pattern, pattern).
		Limit(20).Find(&users).Error
	return users, err
}
