package service

import (
	"context"
	"errors"
	"testing"

	"github.com/Gentlecoder1/social-app/internal/models"
	"github.com/Gentlecoder1/social-app/internal/repository"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNotify_SelfIsSuppressed(t *testing.T) {
	h := newHarness(t)
	alice := h.user(t, "alice")
	out := &Outbox{}

	err := h.notifications.Notify(context.Background(), h.store, out, NotifyInput{
		RecipientID: alice.ID, SenderID: alice.ID, Type: models.NotificationFollow,
	})
	require.NoError(t, err)
	assert.Zero(t, out.Len())
	assert.Zero(t, h.count(t, &models.Notification{}, ""))
}

func TestNotify_ReplacesSameTuple(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	alice := h.user(t, "alice")
	bob := h.user(t, "bob")
	post := h.post(t, alice)
	postID := post.ID

	out := &Outbox{}
	for i := 0; i < 3; i++ {
		require.NoError(t, h.notifications.Notify(ctx, h.store, out, NotifyInput{
			RecipientID: alice.ID, SenderID: bob.ID, Type: models.NotificationLike, PostID: &postID,
		}))
	}
	// Different type, same pair: a separate row.
	require.NoError(t, h.notifications.Notify(ctx, h.store, out, NotifyInput{
		RecipientID: alice.ID, SenderID: bob.ID, Type: models.NotificationComment, PostID: &postID,
	}))

	items, err := h.notifications.List(ctx, alice.ID, 20, 0)
	require.NoError(t, err)
	assert.Len(t, items, 2)
	assert.Equal(t, 4, out.Len())

	err = h.notifications.Notify(ctx, h.store, out, NotifyInput{RecipientID: alice.ID, SenderID: bob.ID, Type: "poke"})
	assert.True(t, models.IsCode(err, models.CodeValidation))
}

func TestNotify_RolledBackWithCaller(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	alice := h.user(t, "alice")
	bob := h.user(t, "bob")

	abort := errors.New("abort")
	out := &Outbox{}
	err := h.store.WithTx(ctx, func(tx repository.Store) error {
		if err := h.notifications.Notify(ctx, tx, out, NotifyInput{
			RecipientID: alice.ID, SenderID: bob.ID, Type: models.NotificationFollow,
		}); err != nil {
			return err
		}
		return abort
	})
	require.ErrorIs(t, err, abort)
	assert.Zero(t, h.count(t, &models.Notification{}, ""))
	assert.Empty(t, h.publisher.For(alice.ID), "nothing is published before commit")
}

func TestNotificationLifecycle(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	alice := h.user(t, "alice")
	bob := h.user(t, "bob")

	_, err := h.graph.ToggleFollow(ctx, bob.ID, FollowInput{Follower: "bob", Following: "alice"})
	require.NoError(t, err)

	items, err := h.notifications.List(ctx, alice.ID, 20, 0)
	require.NoError(t, err)
	require.Len(t, items, 1)
	n := items[0]
	assert.Equal(t, "bob", n.Sender.Username)

	unread, err := h.notifications.UnreadCount(ctx, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), unread)

	require.NoError(t, h.notifications.MarkRead(ctx, alice.ID, n.ID))
	assert.True(t, models.IsCode(h.notifications.MarkRead(ctx, bob.ID, n.ID), models.CodeNotFound))

	assert.True(t, models.IsCode(h.notifications.Delete(ctx, bob.ID, n.ID), models.CodeNotFound),
		"someone else's notification is not found")
	require.NoError(t, h.notifications.Delete(ctx, alice.ID, n.ID))
	assert.True(t, models.IsCode(h.notifications.Delete(ctx, alice.ID, n.ID), models.CodeNotFound))
}

func TestCreatePostNotification_FansOutToFollowers(t *testing.T) {
	h := newHarness(t)
	ctx := context.Background()
	author := h.user(t, "author")
	fans := []string{"fan1", "fan2", "fan3"}
	for _, name := range fans {
		fan := h.user(t, name)
		_, err := h.graph.ToggleFollow(ctx, fan.ID, FollowInput{Follower: name, Following: "author"})
		require.NoError(t, err)
	}
	outsider := h.user(t, "outsider")

	post, err := h.posts.CreatePost(ctx, CreatePostInput{UserID: author.ID, Caption: "new drop"})
	require.NoError(t, err)

	assert.Equal(t, int64(len(fans)), h.count(t, &models.Notification{},
		"type = ? AND post_id = ? AND sender_id = ?", models.NotificationPost, post.ID, author.ID))
	assert.Zero(t, h.count(t, &models.Notification{}, "recipient_id = ?", outsider.ID))
}
