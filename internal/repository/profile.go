package repository

import (
	"context"

	"github.com/Gentlecoder1/social-app/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const savedPostsTable = "profile_saved_posts"

// ProfileRepository defines persistence operations for profiles.
type ProfileRepository interface {
	// GetOrCreate returns the user's profile, inserting one with defaultPic
	// when none exists. Concurrent callers converge on the same row.
	GetOrCreate(ctx context.Context, userID uint, defaultPic string) (*models.Profile, error)
	GetByUserID(ctx context.Context, userID uint) (*models.Profile, error)
	Update(ctx context.Context, profileID uint, fields map[string]interface{}) error
	// ToggleSaved adds the post to the profile's saved set, or removes it if
	// present, and reports whether it is saved afterwards.
	ToggleSaved(ctx context.Context, profileID uint, postID uuid.UUID) (bool, error)
	SavedPosts(ctx context.Context, profileID uint) ([]models.Post, error)
}

type profileRepository struct {
	db *gorm.DB
}

// NewProfileRepository returns a new ProfileRepository implementation.
func NewProfileRepository(db *gorm.DB) ProfileRepository {
	return &profileRepository{db: db}
}

func (r *profileRepository) GetOrCreate(ctx context.Context, userID uint, defaultPic string) (*models.Profile, error) {
	profile := models.Profile{UserID: userID, ProfilePic: defaultPic}
	if err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{Columns: []clause.Column{{Name: "user_id"}}, DoNothing: true}).
		Omit("SavedPosts").
		Create(&profile).Error; err != nil {
		return nil, models.NewInternalError(err)
	}
	return r.GetByUserID(ctx, userID)
}

func (r *profileRepository) GetByUserID(ctx context.Context, userID uint) (*models.Profile, error) {
	var profile models.Profile
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&profile).Error; err != nil {
		return nil, mapError(err, "Profile", userID)
	}
	return &profile, nil
}

func (r *profileRepository) Update(ctx context.Context, profileID uint, fields map[string]interface{}) error {
	if len(fields) == 0 {
		return nil
	}
	result := r.db.WithContext(ctx).Model(&models.Profile{}).Where("id = ?", profileID).Updates(fields)
	if result.Error != nil {
		return models.NewInternalError(result.Error)
	}
	if result.RowsAffected == 0 {
		return models.NewNotFoundError("Profile", profileID)
	}
	return nil
}

func (r *profileRepository) ToggleSaved(ctx context.Context, profileID uint, postID uuid.UUID) (bool, error) {
	db := r.db.WithContext(ctx)
	removed := db.Exec("DELETE FROM "+savedPostsTable+" WHERE profile_id = ? AND post_id = ?", profileID, postID)
	if removed.Error != nil {
		return false, models.NewInternalError(removed.Error)
	}
	if removed.RowsAffected > 0 {
		return false, nil
	}

	if err := db.Exec(
		"INSERT INTO "+savedPostsTable+" (profile_id, post_id) VALUES (?, ?) ON CONFLICT DO NOTHING",
		profileID, postID,
	).Error; err != nil {
		return false, models.NewInternalError(err)
	}
	return true, nil
}

func (r *profileRepository) SavedPosts(ctx context.Context, profileID uint) ([]models.Post, error) {
	var posts []models.Post
	// Computed columns are selected explicitly; Joins would otherwise list
	// every Post field, including the read-only ones.
	err := r.db.WithContext(ctx).
		Model(&models.Post{}).
		Select(
			"posts.*, "+
				"(SELECT COUNT(*) FROM comments WHERE comments.post_id = posts.id) AS comment_count, "+
				"EXISTS (SELECT 1 FROM likes JOIN profiles pr ON pr.user_id = likes.user_id "+
				"WHERE likes.post_id = posts.id AND pr.id = sp.profile_id) AS liked",
		).
		Joins("JOIN "+savedPostsTable+" sp ON sp.post_id = posts.id").
		Where("sp.profile_id = ?", profileID).
		Preload("User.Profile").
		Order("posts.created_at DESC").
		Find(&posts).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return posts, nil
}
