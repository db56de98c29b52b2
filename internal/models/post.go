package models

import (
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// MediaType is the kind of media attached to a post.
type MediaType string

const (
	MediaNone  MediaType = ""
	MediaImage MediaType = "image"
	MediaVideo MediaType = "video"
)

var (
	imageExtensions = map[string]struct{}{
		".jpg": {}, ".jpeg": {}, ".png": {}, ".gif": {}, ".bmp": {}, ".webp": {},
	}
	videoExtensions = map[string]struct{}{
		".mp4": {}, ".avi": {}, ".mov": {}, ".wmv": {}, ".flv": {}, ".webm": {}, ".mkv": {},
	}
)

// DetectMediaType classifies filename by its extension. ok is false for any
// extension outside the image and video allow-lists.
func DetectMediaType(filename string) (MediaType, bool) {
	ext := strings.ToLower(filepath.Ext(filename))
	if _, found := imageExtensions[ext]; found {
		return MediaImage, true
	}
	if _, found := videoExtensions[ext]; found {
		return MediaVideo, true
	}
	return MediaNone, false
}

// Post is a piece of user content. LikeCount is kept equal to the number of
// Like rows referencing the post by the engagement repository.
type Post struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	UserID    uint      `gorm:"not null;index;index:idx_posts_user_created,priority:1" json:"user_id"`
	User      User      `gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE" json:"user"`
	Caption   string    `gorm:"type:text" json:"caption"`
	MediaURL  string    `json:"media_url"`
	MediaType MediaType `gorm:"size:10;not null;default:''" json:"media_type"`
	LikeCount int       `gorm:"not null;default:0" json:"like_count"`
	CreatedAt time.Time `gorm:"index;index:idx_posts_user_created,priority:2,sort:desc" json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	// Liked is computed for the requesting user.
	Liked bool `gorm:"->;-:migration" json:"liked"`
	// CommentCount is computed at query time.
	CommentCount int `gorm:"->;-:migration" json:"comment_count"`
}

// BeforeCreate assigns a random identifier to new posts.
func (p *Post) BeforeCreate(_ *gorm.DB) error {
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	return nil
}
