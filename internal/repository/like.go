package repository

import (
	"context"

	"github.com/Gentlecoder1/social-app/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// LikeRepository defines persistence operations for likes. Callers keep the
// post's like counter in step inside the same transaction.
type LikeRepository interface {
	// Insert adds the like and reports false if it already existed.
	Insert(ctx context.Context, postID uuid.UUID, userID uint) (bool, error)
	// Delete removes the like and reports false if there was none.
	Delete(ctx context.Context, postID uuid.UUID, userID uint) (bool, error)
	Exists(ctx context.Context, postID uuid.UUID, userID uint) (bool, error)
	Count(ctx context.Context, postID uuid.UUID) (int64, error)
	// LikedPostIDs returns the posts among postIDs that userID likes.
	LikedPostIDs(ctx context.Context, userID uint, postIDs []uuid.UUID) ([]uuid.UUID, error)
}

type likeRepository struct {
	db *gorm.DB
}

// NewLikeRepository returns a new LikeRepository implementation.
func NewLikeRepository(db *gorm.DB) LikeRepository {
	return &likeRepository{db: db}
}

func (r *likeRepository) Insert(ctx context.Context, postID uuid.UUID, userID uint) (bool, error) {
	like := models.Like{PostID: postID, UserID: userID}
	result := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "post_id"}, {Name: "user_id"}},
			DoNothing: true,
		}).
		Create(&like)
	if result.Error != nil {
		return false, models.NewInternalError(result.Error)
	}
	return result.RowsAffected > 0, nil
}

func (r *likeRepository) Delete(ctx context.Context, postID uuid.UUID, userID uint) (bool, error) {
	result := r.db.WithContext(ctx).
		Where("post_id = ? AND user_id = ?", postID, userID).
		Delete(&models.Like{})
	if result.Error != nil {
		return false, models.NewInternalError(result.Error)
	}
	return result.RowsAffected > 0, nil
}

func (r *likeRepository) Exists(ctx context.Context, postID uuid.UUID, userID uint) (bool, error) {
	var n int64
	err := r.db.WithContext(ctx).
		Model(&models.Like{}).
		Where("post_id = ? AND user_id = ?", postID, userID).
		Count(&n).Error
	if err != nil {
		return false, models.NewInternalError(err)
	}
	return n > 0, nil
}

func (r *likeRepository) Count(ctx context.Context, postID uuid.UUID) (int64, error) {
	var n int64
	if err := r.db.WithContext(ctx).Model(&models.Like{}).Where("post_id = ?", postID).Count(&n).Error; err != nil {
		return 0, models.NewInternalError(err)
	}
	return n, nil
}

func (r *likeRepository) LikedPostIDs(ctx context.Context, userID uint, postIDs []uuid.UUID) ([]uuid.UUID, error) {
	liked := []uuid.UUID{}
	if len(postIDs) == 0 {
		return liked, nil
	}
	err := r.db.WithContext(ctx).
		Model(&models.Like{}).
		Where("user_id = ? AND post_id IN ?", userID, postIDs).
		Pluck("post_id", &liked).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return liked, nil
}
