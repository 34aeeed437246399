package users

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/warrantyvault/backend/pkg/db/models"
)

func setupUsersTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{})
	require.NoError(t, err)

	schema := `
CREATE TABLE IF NOT EXISTS users (
  id TEXT PRIMARY KEY,
  email TEXT NOT NULL UNIQUE,
  password_hash TEXT NOT NULL,
  name TEXT NOT NULL,
  notification_email TEXT NOT NULL,
  is_active INTEGER NOT NULL DEFAULT 1,
  last_login_at DATETIME,
  created_at DATETIME,
  updated_at DATETIME
);`
	require.NoError(t, db.Exec(schema).Error)
	require.NoError(t, db.Exec("DELETE FROM users").Error)
	return db
}

func seedUser(t *testing.T, db *gorm.DB, email string) *models.User {
	t.Helper()

	user := &models.User{
		ID:                uuid.New(),
		Email:             email,
		PasswordHash:      "argon2id$hash",
		Name:              "Priya",
		NotificationEmail: email,
		IsActive:          true,
	}
	require.NoError(t, db.Create(user).Error)
	return user
}

func TestUserRepoCreateDefaultsNotificationEmail(t *testing.T) {
	db := setupUsersTestDB(t)
	repo := NewRepository(db)

	created, err := repo.Create(context.Background(), CreateUserDTO{
		Email:        "priya@example.com",
		PasswordHash: "argon2id$hash",
		Name:         "Priya",
	})
	require.NoError(t, err)
	assert.Equal(t, "priya@example.com", created.NotificationEmail)
	assert.True(t, created.IsActive)
}

func TestUserRepoFindByEmail(t *testing.T) {
	db := setupUsersTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	seeded := seedUser(t, db, "priya@example.com")

	found, err := repo.FindByEmail(ctx, "priya@example.com")
	require.NoError(t, err)
	assert.Equal(t, seeded.ID, found.ID)

	_, err = repo.FindByEmail(ctx, "nobody@example.com")
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestUserRepoUpdateLastLogin(t *testing.T) {
	db := setupUsersTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	seeded := seedUser(t, db, "priya@example.com")
	at := time.Date(2026, 8, 28, 10, 0, 0, 0, time.UTC)
	require.NoError(t, repo.UpdateLastLogin(ctx, seeded.ID, at))

	fresh, err := repo.FindByID(ctx, seeded.ID)
	require.NoError(t, err)
	require.NotNil(t, fresh.LastLoginAt)
	assert.True(t, fresh.LastLoginAt.Equal(at))
}

func TestUserRepoUpdateProfilePartial(t *testing.T) {
	db := setupUsersTestDB(t)
	repo := NewRepository(db)
	ctx := context.Background()

	seeded := seedUser(t, db, "priya@example.com")

	name := "Priya S"
	updated, err := repo.UpdateProfile(ctx, seeded.ID, UpdateProfileDTO{Name: &name})
	require.NoError(t, err)
	assert.Equal(t, "Priya S", updated.Name)
	assert.Equal(t, "priya@example.com", updated.NotificationEmail)

	alt := "alerts@example.com"
	updated, err = repo.UpdateProfile(ctx, seeded.ID, UpdateProfileDTO{NotificationEmail: &alt})
	require.NoError(t, err)
	assert.Equal(t, "Priya S", updated.Name)
	assert.Equal(t, "alerts@example.com", updated.NotificationEmail)
}
