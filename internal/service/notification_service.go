package service

import (
	"context"

	"github.com/Gentlecoder1/social-app/internal/models"
	"github.com/Gentlecoder1/social-app/internal/observability"
	"github.com/Gentlecoder1/social-app/internal/repository"

	"github.com/google/uuid"
)

// NotifyInput describes one notification. PostID and CommentID are optional.
type NotifyInput struct {
	RecipientID uint
	SenderID    uint
	Type        models.NotificationType
	PostID      *uuid.UUID
	CommentID   *uint
}

type NotificationService struct {
	store     repository.Store
	publisher EventPublisher
}

func NewNotificationService(store repository.Store, publisher EventPublisher) *NotificationService {
	return &NotificationService{store: store, publisher: publisher}
}

// Notify replaces any notification with the same (recipient, sender, type,
// post) tuple using tx, so it commits or rolls back with the caller's work.
// Notifications to oneself are dropped. The created row is queued on out for
// delivery after commit.
func (s *NotificationService) Notify(ctx context.Context, tx repository.Store, out *Outbox, in NotifyInput) error {
	if !in.Type.Valid() {
		return models.NewValidationError("Unknown notification type")
	}
	if in.RecipientID == in.SenderID {
		observability.NotificationsSuppressed.WithLabelValues(string(in.Type)).Inc()
		return nil
	}

	n := &models.Notification{
		RecipientID: in.RecipientID,
		SenderID:    in.SenderID,
		Type:        in.Type,
		PostID:      in.PostID,
		CommentID:   in.CommentID,
	}
	created, err := tx.Notifications().Replace(ctx, n)
	if err != nil {
		return err
	}
	if !created {
		return nil
	}
	observability.NotificationsWritten.WithLabelValues(string(in.Type)).Inc()
	out.add(n.RecipientID, EventNotificationCreated, notificationPayload(n))
	return nil
}

// CreatePostNotification tells every follower of the post's author about it.
func (s *NotificationService) CreatePostNotification(ctx context.Context, tx repository.Store, out *Outbox, post *models.Post) error {
	followers, err := tx.Follows().FollowerIDs(ctx, post.UserID)
	if err != nil {
		return err
	}
	postID := post.ID
	for _, followerID := range followers {
		if err := s.Notify(ctx, tx, out, NotifyInput{
			RecipientID: followerID,
			SenderID:    post.UserID,
			Type:        models.NotificationPost,
			PostID:      &postID,
		}); err != nil {
			return err
		}
	}
	return nil
}

// Deliver publishes everything queued on out. Delivery is best effort.
func (s *NotificationService) Deliver(ctx context.Context, out *Outbox) {
	if out == nil {
		return
	}
	for _, ev := range out.events {
		publishUserEvent(ctx, s.publisher, ev.userID, ev.eventType, ev.payload)
	}
	out.events = nil
}

func (s *NotificationService) List(ctx context.Context, recipientID uint, limit, offset int) ([]models.Notification, error) {
	return s.store.Notifications().List(ctx, recipientID, limit, offset)
}

func (s *NotificationService) UnreadCount(ctx context.Context, recipientID uint) (int64, error) {
	return s.store.Notifications().CountUnread(ctx, recipientID)
}

func (s *NotificationService) MarkRead(ctx context.Context, recipientID, id uint) error {
	ok, err := s.store.Notifications().MarkRead(ctx, recipientID, id)
	if err != nil {
		return err
	}
	if !ok {
		return models.NewNotFoundError("Notification", id)
	}
	return nil
}

func (s *NotificationService) MarkAllRead(ctx context.Context, recipientID uint) (int64, error) {
	return s.store.Notifications().MarkAllRead(ctx, recipientID)
}

// Delete removes a notification owned by recipientID. Someone else's
// notification is reported as not found.
func (s *NotificationService) Delete(ctx context.Context, recipientID, id uint) error {
	ok, err := s.store.Notifications().DeleteOwned(ctx, recipientID, id)
	if err != nil {
		return err
	}
	if !ok {
		return models.NewNotFoundError("Notification", id)
	}
	return nil
}

func notificationPayload(n *models.Notification) map[string]interface{} {
	payload := map[string]interface{}{
		"id":         n.ID,
		"type":       n.Type,
		"sender_id":  n.SenderID,
		"created_at": n.CreatedAt,
	}
	if n.PostID != nil {
		payload["post_id"] = n.PostID.String()
	}
	if n.CommentID != nil {
		payload["comment_id"] = *n.CommentID
	}
	return payload
}
