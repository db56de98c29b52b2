package models

import (
	"time"

	"github.com/google/uuid"
)

// CommentMaxLen bounds the trimmed comment body.
const CommentMaxLen = 10000

// Comment is a text reply on a post, listed oldest first.
type Comment struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	PostID    uuid.UUID `gorm:"type:uuid;not null;index:idx_comments_post_created,priority:1" json:"post_id"`
	UserID    uint      `gorm:"not null;index" json:"user_id"`
	User      User      `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"user"`
	Body      string    `gorm:"type:text;not null" json:"comment"`
	CreatedAt time.Time `gorm:"index:idx_comments_post_created,priority:2" json:"created_at"`
}
