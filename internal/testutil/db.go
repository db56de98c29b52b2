// Package testutil provides shared fixtures for backend tests.
package testutil

import (
	"fmt"
	"sync/atomic"
	"testing"

	"github.com/Gentlecoder1/social-app/internal/database"
	"github.com/Gentlecoder1/social-app/internal/models"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var seq atomic.Uint64

// NewTestDB opens a fresh in-memory SQLite database with the full schema.
// A single connection keeps every query on the same in-memory database.
func NewTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:testdb_%d?mode=memory&cache=shared", seq.Add(1))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:         logger.Default.LogMode(logger.Silent),
		TranslateError: true,
	})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	require.NoError(t, db.AutoMigrate(database.PersistentModels()...))
	require.NoError(t, database.EnsureIndexes(db))
	return db
}

// CreateUser inserts a user with a profile and returns it.
func CreateUser(t *testing.T, db *gorm.DB, username string) *models.User {
	t.Helper()

	user := &models.User{
		Username: username,
		Email:    username + "@example.com",
		Password: "x",
	}
	require.NoError(t, db.Omit("Profile").Create(user).Error)

	profile := &models.Profile{UserID: user.ID, ProfilePic: models.DefaultProfilePic}
	require.NoError(t, db.Omit("SavedPosts").Create(profile).Error)
	user.Profile = profile
	return user
}

// CreatePost inserts a text post owned by userID.
func CreatePost(t *testing.T, db *gorm.DB, userID uint, caption string) *models.Post {
	t.Helper()

	post := &models.Post{UserID: userID, Caption: caption}
	require.NoError(t, db.Omit("User").Create(post).Error)
	return post
}
