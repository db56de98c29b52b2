package models

import (
	"time"

	"github.com/google/uuid"
)

// NotificationType enumerates the events a notification can describe.
type NotificationType string

const (
	NotificationLike     NotificationType = "like"
	NotificationUnlike   NotificationType = "unlike"
	NotificationComment  NotificationType = "comment"
	NotificationFollow   NotificationType = "follow"
	NotificationUnfollow NotificationType = "unfollow"
	NotificationPost     NotificationType = "post"
)

// Valid reports whether t is a known notification type.
func (t NotificationType) Valid() bool {
	switch t {
	case NotificationLike, NotificationUnlike, NotificationComment,
		NotificationFollow, NotificationUnfollow, NotificationPost:
		return true
	}
	return false
}

// Notification is addressed to RecipientID. At most one row exists per
// (recipient, sender, type, post), with a nil post counted as a key value.
type Notification struct {
	ID          uint             `gorm:"primaryKey" json:"id"`
	RecipientID uint             `gorm:"not null;index:idx_notifications_recipient_created,priority:1" json:"recipient_id"`
	SenderID    uint             `gorm:"not null;index" json:"sender_id"`
	Sender      User             `gorm:"foreignKey:SenderID;constraint:OnDelete:CASCADE" json:"sender"`
	Type        NotificationType `gorm:"size:16;not null" json:"type"`
	PostID      *uuid.UUID       `gorm:"type:uuid;index" json:"post_id,omitempty"`
	CommentID   *uint            `gorm:"index" json:"comment_id,omitempty"`
	IsRead      bool             `gorm:"not null;default:false" json:"is_read"`
	CreatedAt   time.Time        `gorm:"index:idx_notifications_recipient_created,priority:2,sort:desc" json:"created_at"`
}
