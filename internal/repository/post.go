package repository

import (
	"context"

	"github.com/Gentlecoder1/social-app/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// PostRepository defines persistence operations for posts.
type PostRepository interface {
	Create(ctx context.Context, post *models.Post) error
	GetByID(ctx context.Context, id uuid.UUID, viewerID uint) (*models.Post, error)
	// LockByID loads the post with a row lock held until the transaction ends.
	LockByID(ctx context.Context, id uuid.UUID) (*models.Post, error)
	// Delete removes the post and everything that references it.
	Delete(ctx context.Context, id uuid.UUID) error
	// Feed lists posts by everyone except viewerID, newest first.
	Feed(ctx context.Context, viewerID uint, limit, offset int) ([]models.Post, error)
	ListByUser(ctx context.Context, ownerID, viewerID uint, limit, offset int) ([]models.Post, error)
	CountByUser(ctx context.Context, userID uint) (int64, error)
	IncrementLikeCount(ctx context.Context, id uuid.UUID) error
	// DecrementLikeCount lowers the counter by one, never below zero.
	DecrementLikeCount(ctx context.Context, id uuid.UUID) error
	LikeCount(ctx context.Context, id uuid.UUID) (int, error)
}

type postRepository struct {
	db *gorm.DB
}

// NewPostRepository returns a new PostRepository implementation.
func NewPostRepository(db *gorm.DB) PostRepository {
	return &postRepository{db: db}
}

func (r *postRepository) Create(ctx context.Context, post *models.Post) error {
	if err := r.db.WithContext(ctx).Omit("User").Create(post).Error; err != nil {
		return models.NewInternalError(err)
	}
	return nil
}

// withDetails selects the per-viewer computed columns.
func (r *postRepository) withDetails(ctx context.Context, viewerID uint) *gorm.DB {
	return r.db.WithContext(ctx).
		Model(&models.Post{}).
		Select(
			"posts.*, "+
				"(SELECT COUNT(*) FROM comments WHERE comments.post_id = posts.id) AS comment_count, "+
				"EXISTS (SELECT 1 FROM likes WHERE likes.post_id = posts.id AND likes.user_id = ?) AS liked",
			viewerID,
		).
		Preload("User.Profile")
}

func (r *postRepository) GetByID(ctx context.Context, id uuid.UUID, viewerID uint) (*models.Post, error) {
	var post models.Post
	if err := r.withDetails(ctx, viewerID).Where("posts.id = ?", id).First(&post).Error; err != nil {
		return nil, mapError(err, "Post", id)
	}
	return &post, nil
}

func (r *postRepository) LockByID(ctx context.Context, id uuid.UUID) (*models.Post, error) {
	var post models.Post
	err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", id).
		First(&post).Error
	if err != nil {
		return nil, mapError(err, "Post", id)
	}
	return &post, nil
}

func (r *postRepository) Delete(ctx context.Context, id uuid.UUID) error {
	db := r.db.WithContext(ctx)
	cascade := []string{
		"DELETE FROM notifications WHERE post_id = ?",
		"DELETE FROM notifications WHERE comment_id IN (SELECT id FROM comments WHERE post_id = ?)",
		"DELETE FROM likes WHERE post_id = ?",
		"DELETE FROM comments WHERE post_id = ?",
		"DELETE FROM " + savedPostsTable + " WHERE post_id = ?",
	}
	for _, stmt := range cascade {
		if err := db.Exec(stmt, id).Error; err != nil {
			return models.NewInternalError(err)
		}
	}

	result := db.Where("id = ?", id).Delete(&models.Post{})
	if result.Error != nil {
		return models.NewInternalError(result.Error)
	}
	if result.RowsAffected == 0 {
		return models.NewNotFoundError("Post", id)
	}
	return nil
}

func (r *postRepository) Feed(ctx context.Context, viewerID uint, limit, offset int) ([]models.Post, error) {
	var posts []models.Post
	err := r.withDetails(ctx, viewerID).
		Where("posts.user_id <> ?", viewerID).
		Order("posts.created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&posts).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return posts, nil
}

func (r *postRepository) ListByUser(ctx context.Context, ownerID, viewerID uint, limit, offset int) ([]models.Post, error) {
	var posts []models.Post
	err := r.withDetails(ctx, viewerID).
		Where("posts.user_id = ?", ownerID).
		Order("posts.created_at DESC").
		Limit(limit).
		Offset(offset).
		Find(&posts).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return posts, nil
}

func (r *postRepository) CountByUser(ctx context.Context, userID uint) (int64, error) {
	var n int64
	if err := r.db.WithContext(ctx).Model(&models.Post{}).Where("user_id = ?", userID).Count(&n).Error; err != nil {
		return 0, models.NewInternalError(err)
	}
	return n, nil
}

func (r *postRepository) IncrementLikeCount(ctx context.Context, id uuid.UUID) error {
	return r.updateLikeCount(ctx, id, gorm.Expr("like_count + 1"))
}

func (r *postRepository) DecrementLikeCount(ctx context.Context, id uuid.UUID) error {
	return r.updateLikeCount(ctx, id, gorm.Expr("CASE WHEN like_count > 0 THEN like_count - 1 ELSE 0 END"))
}

func (r *postRepository) updateLikeCount(ctx context.Context, id uuid.UUID, expr clause.Expr) error {
	result := r.db.WithContext(ctx).
		Model(&models.Post{}).
		Where("id = ?", id).
		UpdateColumn("like_count", expr)
	if result.Error != nil {
		return models.NewInternalError(result.Error)
	}
	if result.RowsAffected == 0 {
		return models.NewNotFoundError("Post", id)
	}
	return nil
}

func (r *postRepository) LikeCount(ctx context.Context, id uuid.UUID) (int, error) {
	var count int
	err := r.db.WithContext(ctx).
		Model(&models.Post{}).
		Select("like_count").
		Where("id = ?", id).
		Scan(&count).Error
	if err != nil {
		return 0, models.NewInternalError(err)
	}
	return count, nil
}
