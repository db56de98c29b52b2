package server

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/Gentlecoder1/social-app/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type notificationList struct {
	Notifications []models.Notification `json:"notifications"`
	UnreadCount   int64                 `json:"unread_count"`
}

func TestNotificationHandlers(t *testing.T) {
	env := newTestEnv(t, false)
	owner, ownerToken := env.user(t, "owner")
	_, fanToken := env.user(t, "fan")
	post := env.post(t, owner)

	like := env.do(t, request{method: http.MethodPost, path: "/api/posts/" + post.ID.String() + "/like", token: fanToken})
	require.Equal(t, http.StatusOK, like.StatusCode)

	list := env.do(t, request{method: http.MethodGet, path: "/api/notifications", token: ownerToken})
	require.Equal(t, http.StatusOK, list.StatusCode)
	var got notificationList
	decode(t, list, &got)
	require.Len(t, got.Notifications, 1)
	assert.Equal(t, int64(1), got.UnreadCount)
	n := got.Notifications[0]
	assert.Equal(t, models.NotificationLike, n.Type)
	assert.False(t, n.IsRead)
	assert.Equal(t, "fan", n.Sender.Username)

	readPath := fmt.Sprintf("/api/notifications/%d/read", n.ID)
	deletePath := fmt.Sprintf("/api/notifications/%d", n.ID)

	notMine := env.do(t, request{method: http.MethodPost, path: readPath, token: fanToken})
	assert.Equal(t, http.StatusNotFound, notMine.StatusCode)
	notMineDelete := env.do(t, request{method: http.MethodDelete, path: deletePath, token: fanToken})
	assert.Equal(t, http.StatusNotFound, notMineDelete.StatusCode)

	read := env.do(t, request{method: http.MethodPost, path: readPath, token: ownerToken})
	assert.Equal(t, http.StatusOK, read.StatusCode)

	after := env.do(t, request{method: http.MethodGet, path: "/api/notifications", token: ownerToken})
	var afterRead notificationList
	decode(t, after, &afterRead)
	assert.Zero(t, afterRead.UnreadCount)
	require.Len(t, afterRead.Notifications, 1)
	assert.True(t, afterRead.Notifications[0].IsRead)

	bad := env.do(t, request{method: http.MethodPost, path: "/api/notifications/abc/read", token: ownerToken})
	assert.Equal(t, http.StatusBadRequest, bad.StatusCode)

	del := env.do(t, request{method: http.MethodDelete, path: deletePath, token: ownerToken})
	assert.Equal(t, http.StatusOK, del.StatusCode)

	again := env.do(t, request{method: http.MethodDelete, path: deletePath, token: ownerToken})
	assert.Equal(t, http.StatusNotFound, again.StatusCode)
}

func TestMarkAllNotificationsRead(t *testing.T) {
	env := newTestEnv(t, false)
	owner, ownerToken := env.user(t, "owner")
	_, a := env.user(t, "fan_a")
	_, b := env.user(t, "fan_b")
	post := env.post(t, owner)

	for _, token := range []string{a, b} {
		resp := env.do(t, request{method: http.MethodPost, path: "/api/posts/" + post.ID.String() + "/like", token: token})
		require.Equal(t, http.StatusOK, resp.StatusCode)
	}

	resp := env.do(t, request{method: http.MethodPost, path: "/api/notifications/read-all", token: ownerToken})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var out struct {
		Updated int64 `json:"updated"`
	}
	decode(t, resp, &out)
	assert.Equal(t, int64(2), out.Updated)

	// The POST alias deletes too.
	list := env.do(t, request{method: http.MethodGet, path: "/api/notifications", token: ownerToken})
	var got notificationList
	decode(t, list, &got)
	require.Len(t, got.Notifications, 2)
	del := env.do(t, request{method: http.MethodPost,
		path: fmt.Sprintf("/api/notifications/%d/delete", got.Notifications[0].ID), token: ownerToken})
	assert.Equal(t, http.StatusOK, del.StatusCode)
}
