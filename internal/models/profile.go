package models

import "time"

const (
	// DefaultProfilePic is assigned to every new profile.
	DefaultProfilePic = "https://res.cloudinary.com/dou9magab/image/upload/v1756479692/user2_pd3xii.jpg"
	// BlankProfilePic is shown when a profile has no picture at all.
	BlankProfilePic = "/media/profile_pics/blank-profile-picture.png"

	ProfileTextMaxLen = 100
)

// Profile extends a User one to one with display attributes.
type Profile struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	UserID     uint      `gorm:"uniqueIndex;not null" json:"user_id"`
	WorksAt    string    `gorm:"size:100" json:"works_at"`
	Occupation string    `gorm:"size:100" json:"occupation"`
	Bio        string    `gorm:"type:text" json:"bio"`
	Location   string    `gorm:"size:100" json:"location"`
	ProfilePic string    `json:"profile_pic"`
	CoverPhoto string    `json:"cover_photo"`
	SavedPosts []Post    `gorm:"many2many:profile_saved_posts;constraint:OnDelete:CASCADE" json:"saved_posts,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
	UpdatedAt  time.Time `json:"updated_at"`
}

// PictureOrBlank returns the profile picture, or the blank placeholder when
// the profile is missing or has none.
func (p *Profile) PictureOrBlank() string {
	if p == nil || p.ProfilePic == "" {
		return BlankProfilePic
	}
	return p.ProfilePic
}
