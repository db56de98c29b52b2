package repository

import (
	"context"

	"github.com/Gentlecoder1/social-app/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// NotificationRepository defines persistence operations for notifications.
type NotificationRepository interface {
	// Replace deletes any notification with the same (recipient, sender,
	// type, post) and inserts n. It reports false when a concurrent writer
	// won the race for the same tuple.
	Replace(ctx context.Context, n *models.Notification) (bool, error)
	// DeleteOwned removes the notification only if recipientID owns it.
	DeleteOwned(ctx context.Context, recipientID, id uint) (bool, error)
	List(ctx context.Context, recipientID uint, limit, offset int) ([]models.Notification, error)
	MarkRead(ctx context.Context, recipientID, id uint) (bool, error)
	MarkAllRead(ctx context.Context, recipientID uint) (int64, error)
	CountUnread(ctx context.Context, recipientID uint) (int64, error)
}

type notificationRepository struct {
	db *gorm.DB
}

// NewNotificationRepository returns a new NotificationRepository implementation.
func NewNotificationRepository(db *gorm.DB) NotificationRepository {
	return &notificationRepository{db: db}
}

func (r *notificationRepository) Replace(ctx context.Context, n *models.Notification) (bool, error) {
	del := r.db.WithContext(ctx).
		Where("recipient_id = ? AND sender_id = ? AND type = ?", n.RecipientID, n.SenderID, n.Type)
	if n.PostID == nil {
		del = del.Where("post_id IS NULL")
	} else {
		del = del.Where("post_id = ?", *n.PostID)
	}
	if err := del.Delete(&models.Notification{}).Error; err != nil {
		return false, models.NewInternalError(err)
	}

	result := r.db.WithContext(ctx).
		Omit("Sender").
		Clauses(clause.OnConflict{DoNothing: true}).
		Create(n)
	if result.Error != nil {
		return false, models.NewInternalError(result.Error)
	}
	return result.RowsAffected > 0, nil
}

func (r *notificationRepository) DeleteOwned(ctx context.Context, recipientID, id uint) (bool, error) {
	result := r.db.WithContext(ctx).
		Where("id = ? AND recipient_id = ?", id, recipientID).
		Delete(&models.Notification{})
	if result.Error != nil {
		return false, models.NewInternalError(result.Error)
	}
	return result.RowsAffected > 0, nil
}

func (r *notificationRepository) List(ctx context.Context, recipientID uint, limit, offset int) ([]models.Notification, error) {
	var items []models.Notification
	err := r.db.WithContext(ctx).
		Preload("Sender.Profile").
		Where("recipient_id = ?", recipientID).
		Order("created_at DESC").
		Order("id DESC").
		Limit(limit).
		Offset(offset).
		Find(&items).Error
	if err != nil {
		return nil, models.NewInternalError(err)
	}
	return items, nil
}

func (r *notificationRepository) MarkRead(ctx context.Context, recipientID, id uint) (bool, error) {
	result := r.db.WithContext(ctx).
		Model(&models.Notification{}).
		Where("id = ? AND recipient_id = ?", id, recipientID).
		Update("is_read", true)
	if result.Error != nil {
		return false, models.NewInternalError(result.Error)
	}
	return result.RowsAffected > 0, nil
}

func (r *notificationRepository) MarkAllRead(ctx context.Context, recipientID uint) (int64, error) {
	result := r.db.WithContext(ctx).
		Model(&models.Notification{}).
		Where("recipient_id = ? AND is_read = ?", recipientID, false).
		Update("is_read", true)
	if result.Error != nil {
		return 0, models.NewInternalError(result.Error)
	}
	return result.RowsAffected, nil
}

func (r *notificationRepository) CountUnread(ctx context.Context, recipientID uint) (int64, error) {
	var n int64
	err := r.db.WithContext(ctx).
		Model(&models.Notification{}).
		Where("recipient_id = ? AND is_read = ?", recipientID, false).
		Count(&n).Error
	if err != nil {
		return 0, models.NewInternalError(err)
	}
	return n, nil
}
