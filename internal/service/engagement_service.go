package service

import (
	"context"
	"strings"
	"unicode/utf8"

	"github.com/Gentlecoder1/social-app/internal/models"
	"github.com/Gentlecoder1/social-app/internal/observability"
	"github.com/Gentlecoder1/social-app/internal/repository"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
)

// CommentTimeLayout formats comment timestamps in API responses.
const CommentTimeLayout = "2006-01-02 15:04:05"

// LikeResult is the state of a like after a toggle.
type LikeResult struct {
	Liked     bool `json:"liked"`
	LikeCount int  `json:"like_count"`
}

type CreateCommentInput struct {
	UserID  uint
	PostID  uuid.UUID
	Content string
}

// CommentView is a comment as rendered to clients.
type CommentView struct {
	ID         uint   `json:"id"`
	Username   string `json:"username"`
	Comment    string `json:"comment"`
	CreatedAt  string `json:"created_at"`
	ProfilePic string `json:"profile_pic"`
}

// EngagementService owns likes and comments and keeps Post.LikeCount equal to
// the number of like rows.
type EngagementService struct {
	store         repository.Store
	notifications *NotificationService
}

func NewEngagementService(store repository.Store, notifications *NotificationService) *EngagementService {
	return &EngagementService{store: store, notifications: notifications}
}

func postNotFound() error {
	return &models.AppError{Code: models.CodeNotFound, Message: "Post not found"}
}

// ToggleLike likes the post for actorID, or removes the like if present.
// The post row stays locked for the whole toggle so concurrent toggles on one
// post apply one after another.
func (s *EngagementService) ToggleLike(ctx context.Context, actorID uint, postID uuid.UUID) (result *LikeResult, err error) {
	ctx, span := observability.StartSpan(ctx, "engagement.ToggleLike",
		attribute.String("post.id", postID.String()),
		attribute.Int64("actor.id", int64(actorID)),
	)
	defer func() { observability.EndSpan(span, err) }()

	res := &LikeResult{}
	out := &Outbox{}
	err = s.store.WithTx(ctx, func(tx repository.Store) error {
		post, err := tx.Posts().LockByID(ctx, postID)
		if err != nil {
			if models.IsCode(err, models.CodeNotFound) {
				return postNotFound()
			}
			return err
		}

		removed, err := tx.Likes().Delete(ctx, postID, actorID)
		if err != nil {
			return err
		}

		kind := models.NotificationLike
		if removed {
			if err := tx.Posts().DecrementLikeCount(ctx, postID); err != nil {
				return err
			}
			kind = models.NotificationUnlike
		} else {
			inserted, err := tx.Likes().Insert(ctx, postID, actorID)
			if err != nil {
				return err
			}
			if inserted {
				if err := tx.Posts().IncrementLikeCount(ctx, postID); err != nil {
					return err
				}
			}
			res.Liked = true
		}

		if err := s.notifications.Notify(ctx, tx, out, NotifyInput{
			RecipientID: post.UserID,
			SenderID:    actorID,
			Type:        kind,
			PostID:      &postID,
		}); err != nil {
			return err
		}

		res.LikeCount, err = tx.Posts().LikeCount(ctx, postID)
		return err
	})
	if err != nil {
		return nil, err
	}

	action := "unlike"
	if res.Liked {
		action = "like"
	}
	observability.LikesToggled.WithLabelValues(action).Inc()
	s.notifications.Deliver(ctx, out)
	return res, nil
}

// AddComment stores a comment and notifies the post owner in one transaction.
func (s *EngagementService) AddComment(ctx context.Context, in CreateCommentInput) (*CommentView, error) {
	content := strings.TrimSpace(in.Content)
	if content == "" {
		return nil, models.NewValidationError("Comment cannot be empty")
	}
	if utf8.RuneCountInString(content) > models.CommentMaxLen {
		return nil, models.NewValidationError("Comment too long (max 10000 characters)")
	}

	var (
		comment *models.Comment
		author  *models.User
	)
	out := &Outbox{}
	err := s.store.WithTx(ctx, func(tx repository.Store) error {
		post, err := tx.Posts().LockByID(ctx, in.PostID)
		if err != nil {
			if models.IsCode(err, models.CodeNotFound) {
				return postNotFound()
			}
			return err
		}

		author, err = tx.Users().GetByID(ctx, in.UserID)
		if err != nil {
			return err
		}

		comment = &models.Comment{PostID: post.ID, UserID: in.UserID, Body: content}
		if err := tx.Comments().Create(ctx, comment); err != nil {
			return err
		}

		postID := post.ID
		commentID := comment.ID
		return s.notifications.Notify(ctx, tx, out, NotifyInput{
			RecipientID: post.UserID,
			SenderID:    in.UserID,
			Type:        models.NotificationComment,
			PostID:      &postID,
			CommentID:   &commentID,
		})
	})
	if err != nil {
		return nil, err
	}

	observability.CommentsCreated.Inc()
	s.notifications.Deliver(ctx, out)

	comment.User = *author
	view := commentView(comment)
	return &view, nil
}

// ListComments returns the post's comments oldest first.
func (s *EngagementService) ListComments(ctx context.Context, postID uuid.UUID) ([]CommentView, error) {
	if _, err := s.store.Posts().GetByID(ctx, postID, 0); err != nil {
		if models.IsCode(err, models.CodeNotFound) {
			return nil, postNotFound()
		}
		return nil, err
	}
	comments, err := s.store.Comments().ListByPost(ctx, postID)
	if err != nil {
		return nil, err
	}
	views := make([]CommentView, 0, len(comments))
	for i := range comments {
		views = append(views, commentView(&comments[i]))
	}
	return views, nil
}

func commentView(c *models.Comment) CommentView {
	return CommentView{
		ID:         c.ID,
		Username:   c.User.Username,
		Comment:    c.Body,
		CreatedAt:  c.CreatedAt.Format(CommentTimeLayout),
		ProfilePic: c.User.Profile.PictureOrBlank(),
	}
}
