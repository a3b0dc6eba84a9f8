package repositories

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"

	"github.com/profitboysub0-max/social-music-app/internal/models"
)

func newUserTestRepo(t *testing.T) *PostgresUserRepository {
	t.Helper()
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: gormlogger.Default.LogMode(gormlogger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.User{}))
	return NewPostgresUserRepository(db)
}

func TestCreateMultipleLocalUsers(t *testing.T) {
	repo := newUserTestRepo(t)

	// Local accounts carry no Firebase UID; the unique index must not
	// treat them as duplicates of each other.
	require.NoError(t, repo.CreateUser(&models.User{
		Name:  "Alice",
		Email: "alice@example.com",
	}))
	require.NoError(t, repo.CreateUser(&models.User{
		Name:  "Bob",
		Email: "bob@example.com",
	}))

	user, err := repo.GetUserByEmail("bob@example.com")
	require.NoError(t, err)
	assert.Nil(t, user.FirebaseUID)
}

func TestFirebaseUIDStaysUnique(t *testing.T) {
	repo := newUserTestRepo(t)

	uid := "firebase-uid-1"
	require.NoError(t, repo.CreateUser(&models.User{
		Name:        "Alice",
		Email:       "alice@example.com",
		FirebaseUID: &uid,
	}))

	found, err := repo.GetUserByFirebaseUID(uid)
	require.NoError(t, err)
	assert.Equal(t, "alice@example.com", found.Email)

	// The same Firebase identity cannot back a second account.
	dup := uid
	assert.Error(t, repo.CreateUser(&models.User{
		Name:        "Imposter",
		Email:       "imposter@example.com",
		FirebaseUID: &dup,
	}))
}
