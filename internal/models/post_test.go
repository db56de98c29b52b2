package models

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDetectMediaType(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		filename string
		want     MediaType
		ok       bool
	}{
		{name: "jpeg", filename: "photo.jpeg", want: MediaImage, ok: true},
		{name: "upper case png", filename: "SHOT.PNG", want: MediaImage, ok: true},
		{name: "webp", filename: "x.webp", want: MediaImage, ok: true},
		{name: "mkv", filename: "clip.mkv", want: MediaVideo, ok: true},
		{name: "mov", filename: "a.b.MOV", want: MediaVideo, ok: true},
		{name: "pdf", filename: "doc.pdf", want: MediaNone, ok: false},
		{name: "no extension", filename: "README", want: MediaNone, ok: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got, ok := DetectMediaType(tt.filename)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.ok, ok)
		})
	}
}

func TestPostBeforeCreateAssignsID(t *testing.T) {
	t.Parallel()

	p := &Post{}
	require.NoError(t, p.BeforeCreate(nil))
	assert.NotEqual(t, uuid.Nil, p.ID)

	fixed := uuid.New()
	p2 := &Post{ID: fixed}
	require.NoError(t, p2.BeforeCreate(nil))
	assert.Equal(t, fixed, p2.ID)
}

func TestNotificationTypeValid(t *testing.T) {
	t.Parallel()

	for _, nt := range []NotificationType{
		NotificationLike, NotificationUnlike, NotificationComment,
		NotificationFollow, NotificationUnfollow, NotificationPost,
	} {
		assert.True(t, nt.Valid(), nt)
	}
	assert.False(t, NotificationType("poke").Valid())
}

func TestProfilePictureOrBlank(t *testing.T) {
	t.Parallel()

	var nilProfile *Profile
	assert.Equal(t, BlankProfilePic, nilProfile.PictureOrBlank())
	assert.Equal(t, BlankProfilePic, (&Profile{}).PictureOrBlank())
	assert.Equal(t, "https://cdn/x.webp", (&Profile{ProfilePic: "https://cdn/x.webp"}).PictureOrBlank())
}
