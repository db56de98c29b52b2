package service

import (
	"context"
	"strings"

	"github.com/Gentlecoder1/social-app/internal/middleware"
	"github.com/Gentlecoder1/social-app/internal/models"
	"github.com/Gentlecoder1/social-app/internal/repository"
	"github.com/Gentlecoder1/social-app/internal/storage"

	"github.com/google/uuid"
)

type CreatePostInput struct {
	UserID  uint
	Caption string
	Media   *MediaFile
}

type PostService struct {
	store          repository.Store
	notifications  *NotificationService
	profiles       *ProfileService
	uploader       storage.Uploader
	maxUploadBytes int64
}

func NewPostService(
	store repository.Store,
	notifications *NotificationService,
	profiles *ProfileService,
	uploader storage.Uploader,
	maxUploadBytes int64,
) *PostService {
	return &PostService{
		store:          store,
		notifications:  notifications,
		profiles:       profiles,
		uploader:       uploader,
		maxUploadBytes: maxUploadBytes,
	}
}

// CreatePost uploads the media, if any, and then stores the post and its
// follower notifications in one transaction. A failed upload leaves nothing
// behind.
func (s *PostService) CreatePost(ctx context.Context, in CreatePostInput) (*models.Post, error) {
	caption := strings.TrimSpace(in.Caption)
	if caption == "" && in.Media == nil {
		return nil, models.NewValidationError("Please provide a caption or media")
	}

	post := &models.Post{UserID: in.UserID, Caption: caption}
	if in.Media != nil {
		kind, err := checkMedia(in.Media, s.maxUploadBytes)
		if err != nil {
			return nil, err
		}
		url, err := s.uploader.Upload(ctx, in.Media.Content, in.Media.Filename, storage.CategoryPost)
		if err != nil {
			return nil, err
		}
		post.MediaURL = url
		post.MediaType = kind
	}

	out := &Outbox{}
	err := s.store.WithTx(ctx, func(tx repository.Store) error {
		if err := tx.Posts().Create(ctx, post); err != nil {
			return err
		}
		return s.notifications.CreatePostNotification(ctx, tx, out, post)
	})
	if err != nil {
		if post.MediaURL != "" {
			middleware.Logger.WarnContext(ctx, "post insert failed after upload", "media_url", post.MediaURL, "error", err)
		}
		return nil, err
	}
	s.notifications.Deliver(ctx, out)

	return s.store.Posts().GetByID(ctx, post.ID, in.UserID)
}

func (s *PostService) GetPost(ctx context.Context, viewerID uint, postID uuid.UUID) (*models.Post, error) {
	post, err := s.store.Posts().GetByID(ctx, postID, viewerID)
	if models.IsCode(err, models.CodeNotFound) {
		return nil, postNotFound()
	}
	return post, err
}

// DeletePost removes the post with its likes, comments, notifications and
// saved links. Only the owner may delete.
func (s *PostService) DeletePost(ctx context.Context, userID uint, postID uuid.UUID) error {
	return s.store.WithTx(ctx, func(tx repository.Store) error {
		post, err := tx.Posts().LockByID(ctx, postID)
		if err != nil {
			if models.IsCode(err, models.CodeNotFound) {
				return postNotFound()
			}
			return err
		}
		if post.UserID != userID {
			return models.NewForbiddenError("You can only delete your own posts")
		}
		return tx.Posts().Delete(ctx, postID)
	})
}

// Feed lists everyone else's posts, newest first.
func (s *PostService) Feed(ctx context.Context, viewerID uint, limit, offset int) ([]models.Post, error) {
	return s.store.Posts().Feed(ctx, viewerID, limit, offset)
}

func (s *PostService) UserPosts(ctx context.Context, ownerID, viewerID uint, limit, offset int) ([]models.Post, error) {
	return s.store.Posts().ListByUser(ctx, ownerID, viewerID, limit, offset)
}

// ToggleSave adds the post to the user's saved posts or removes it, and
// reports whether it is saved afterwards.
func (s *PostService) ToggleSave(ctx context.Context, userID uint, postID uuid.UUID) (bool, error) {
	if _, err := s.GetPost(ctx, userID, postID); err != nil {
		return false, err
	}
	profile, err := s.profiles.GetOrCreate(ctx, userID)
	if err != nil {
		return false, err
	}
	return s.store.Profiles().ToggleSaved(ctx, profile.ID, postID)
}

func (s *PostService) SavedPosts(ctx context.Context, userID uint) ([]models.Post, error) {
	profile, err := s.profiles.GetOrCreate(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.store.Profiles().SavedPosts(ctx, profile.ID)
}
