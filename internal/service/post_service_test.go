package service

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/Gentlecoder1/social-app/internal/models"
	"github.com/Gentlecoder1/social-app/internal/storage"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func media(name string, size int) *MediaFile {
	return &MediaFile{Filename: name, Size: int64(size), Content: bytes.NewReader(make([]byte, size))}
}

func TestCreatePost_MediaKinds(t *testing.T) {
	h := newHarness(t)
	alice := h.user(t, "alice")

	tests := []struct {
		file string
		want models.MediaType
	}{
		{"clip.mkv", models.MediaVideo},
		{"movie.MOV", models.MediaVideo},
		{"photo.JPEG", models.MediaImage},
		{"anim.webp", models.MediaImage},
	}
	for _, tt := range tests {
		t.Run(tt.file, func(t *testing.T) {
			post, err := h.posts.CreatePost(context.Background(), CreatePostInput{UserID: alice.ID, Media: media(tt.file, 64)})
			require.NoError(t, err)
			assert.Equal(t, tt.want, post.MediaType)
			assert.True(t, strings.HasPrefix(post.MediaURL, "https://cdn.example.com/post_media/"))
			assert.Equal(t, alice.ID, post.UserID)
		})
	}
	for _, call := range h.uploader.calls {
		assert.Equal(t, storage.CategoryPost, call.Category)
	}
}

func TestCreatePost_RejectsBeforeUpload(t *testing.T) {
	h := newHarness(t)
	alice := h.user(t, "alice")

	tests := []struct {
		name string
		in   CreatePostInput
	}{
		{"nothing", CreatePostInput{UserID: alice.ID, Caption: "  "}},
		{"pdf", CreatePostInput{UserID: alice.ID, Caption: "doc", Media: media("doc.pdf", 10)}},
		{"no extension", CreatePostInput{UserID: alice.ID, Media: media("README", 10)}},
		{"13 MiB", CreatePostInput{UserID: alice.ID, Media: &MediaFile{Filename: "big.mp4", Size: 13 << 20, Content: strings.NewReader("")}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := h.posts.CreatePost(context.Background(), tt.in)
			assert.True(t, models.IsCode(err, models.CodeValidation), "got %v", err)
		})
	}
	assert.Empty(t, h.uploader.calls)
	assert.Zero(t, h.count(t, &models.Post{}, ""))
}

func TestCreatePost_UploadFailureLeavesNoPost(t *testing.T) {
	h := newHarness(t)
	alice := h.user(t, "alice")
	fan := h.user(t, "fan")
	_, err := h.graph.ToggleFollow(context.Background(), fan.ID, FollowInput{Follower: "fan", Following: "alice"})
	require.NoError(t, err)
	h.uploader.err = errBucketDown

	_, err = h.posts.CreatePost(context.Background(), CreatePostInput{UserID: alice.ID, Caption: "hi", Media: media("a.png", 10)})
	var appErr *models.AppError
	require.ErrorAs(t, err, &appErr)
	assert.Equal(t, models.CodeUpstream, appErr.Code)
	assert.Equal(t, storage.UploadFailedMessage, appErr.Message)

	assert.Zero(t, h.count(t, &models.Post{}, ""))
	assert.Zero(t, h.count(t, &models.Notification{}, "type = ?", models.NotificationPost))
}

func TestCreatePost_CaptionOnly(t *testing.T) {
	h := newHarness(t)
	alice := h.user(t, "alice")

	post, err := h.posts.CreatePost(context.Background(), CreatePostInput{UserID: alice.ID, Caption: "  just words "})
	require.NoError(t, err)
	assert.Equal(t, "just words", post.Caption)
	assert.Equal(t, models.MediaNone, post.MediaType)
	assert.NotEqual(t, uuid.Nil, post.ID)
	assert.Equal(t, 0, post.LikeCount)
	assert.Empty(t, h.uploader.calls)
}

func TestDeletePost(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	alice := h.user(t, "alice")
	bob := h.user(t, "bob")
	post := h.post(t, alice)

	_, err := h.engagement.ToggleLike(ctx, bob.ID, post.ID)
	require.NoError(t, err)
	_, err = h.engagement.AddComment(ctx, CreateCommentInput{UserID: bob.ID, PostID: post.ID, Content: "hey"})
	require.NoError(t, err)

	assert.True(t, models.IsCode(h.posts.DeletePost(ctx, bob.ID, post.ID), models.CodeForbidden))
	assert.True(t, models.IsCode(h.posts.DeletePost(ctx, alice.ID, uuid.New()), models.CodeNotFound))

	require.NoError(t, h.posts.DeletePost(ctx, alice.ID, post.ID))
	assert.Zero(t, h.count(t, &models.Like{}, ""))
	assert.Zero(t, h.count(t, &models.Comment{}, ""))
	assert.Zero(t, h.count(t, &models.Notification{}, ""))

	_, err = h.posts.GetPost(ctx, alice.ID, post.ID)
	assert.True(t, models.IsCode(err, models.CodeNotFound))
}

func TestFeedAndSave(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	alice := h.user(t, "alice")
	bob := h.user(t, "bob")
	mine := h.post(t, alice)
	theirs := h.post(t, bob)

	_, err := h.engagement.ToggleLike(ctx, alice.ID, theirs.ID)
	require.NoError(t, err)

	feed, err := h.posts.Feed(ctx, alice.ID, 20, 0)
	require.NoError(t, err)
	require.Len(t, feed, 1)
	assert.Equal(t, theirs.ID, feed[0].ID)
	assert.True(t, feed[0].Liked)
	assert.Equal(t, 1, feed[0].LikeCount)

	saved, err := h.posts.ToggleSave(ctx, alice.ID, theirs.ID)
	require.NoError(t, err)
	assert.True(t, saved)

	list, err := h.posts.SavedPosts(ctx, alice.ID)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, theirs.ID, list[0].ID)

	saved, err = h.posts.ToggleSave(ctx, alice.ID, theirs.ID)
	require.NoError(t, err)
	assert.False(t, saved)

	_, err = h.posts.ToggleSave(ctx, alice.ID, uuid.New())
	assert.True(t, models.IsCode(err, models.CodeNotFound))

	own, err := h.posts.UserPosts(ctx, alice.ID, bob.ID, 20, 0)
	require.NoError(t, err)
	require.Len(t, own, 1)
	assert.Equal(t, mine.ID, own[0].ID)
}
