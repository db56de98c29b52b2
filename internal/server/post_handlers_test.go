package server

import (
	"net/http"
	"strings"
	"testing"

	"github.com/Gentlecoder1/social-app/internal/models"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestToggleLikeHandler(t *testing.T) {
	env := newTestEnv(t, false)
	owner, _ := env.user(t, "owner")
	_, token := env.user(t, "fan")
	post := env.post(t, owner)
	path := "/api/posts/" + post.ID.String() + "/like"

	type likeBody struct {
		Success   bool `json:"success"`
		Liked     bool `json:"liked"`
		LikeCount int  `json:"like_count"`
	}

	resp := env.do(t, request{method: http.MethodPost, path: path, token: token})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var first likeBody
	decode(t, resp, &first)
	assert.Equal(t, likeBody{Success: true, Liked: true, LikeCount: 1}, first)

	resp = env.do(t, request{method: http.MethodPost, path: path, token: token})
	var second likeBody
	decode(t, resp, &second)
	assert.Equal(t, likeBody{Success: true, Liked: false, LikeCount: 0}, second)

	bad := env.do(t, request{method: http.MethodPost, path: "/api/posts/not-a-uuid/like", token: token})
	assert.Equal(t, http.StatusBadRequest, bad.StatusCode)

	missing := env.do(t, request{method: http.MethodPost, path: "/api/posts/" + uuid.NewString() + "/like", token: token})
	assert.Equal(t, http.StatusNotFound, missing.StatusCode)
}

func TestCommentHandlers(t *testing.T) {
	env := newTestEnv(t, false)
	owner, _ := env.user(t, "author")
	_, token := env.user(t, "reader")
	post := env.post(t, owner)
	path := "/api/posts/" + post.ID.String() + "/comments"

	empty := env.do(t, request{method: http.MethodPost, path: path, token: token,
		contentType: "application/json", body: jsonBody(t, map[string]string{"comment": "   "})})
	assert.Equal(t, http.StatusBadRequest, empty.StatusCode)

	resp := env.do(t, request{method: http.MethodPost, path: path, token: token,
		contentType: "application/json", body: jsonBody(t, map[string]string{"comment": "nice shot"})})
	require.Equal(t, http.StatusOK, resp.StatusCode)
	var created struct {
		Success bool `json:"success"`
		Comment struct {
			Username   string `json:"username"`
			Comment    string `json:"comment"`
			CreatedAt  string `json:"created_at"`
			ProfilePic string `json:"profile_pic"`
		} `json:"comment"`
	}
	decode(t, resp, &created)
	assert.True(t, created.Success)
	assert.Equal(t, "reader", created.Comment.Username)
	assert.Equal(t, "nice shot", created.Comment.Comment)
	assert.Regexp(t, `^\d{4}-\d{2}-\d{2} \d{2}:\d{2}:\d{2}$`, created.Comment.CreatedAt)

	list := env.do(t, request{method: http.MethodGet, path: path, token: token})
	var listed struct {
		Comments []struct {
			Comment string `json:"comment"`
		} `json:"comments"`
	}
	decode(t, list, &listed)
	require.Len(t, listed.Comments, 1)
}

func TestCreatePostHandler(t *testing.T) {
	env := newTestEnv(t, false)
	_, token := env.user(t, "poster")

	t.Run("json client gets 201", func(t *testing.T) {
		body, ct := multipartBody(t, map[string]string{"caption": "sunset"},
			formFile{field: "image_upload", name: "sunset.JPG", content: []byte("img")})
		resp := env.do(t, request{method: http.MethodPost, path: "/api/posts", token: token,
			body: body, contentType: ct, json: true})
		require.Equal(t, http.StatusCreated, resp.StatusCode)
		var post models.Post
		decode(t, resp, &post)
		assert.Equal(t, "sunset", post.Caption)
		assert.Equal(t, models.MediaImage, post.MediaType)
		assert.True(t, strings.HasPrefix(post.MediaURL, "https://cdn.test/post_media/"))
	})

	t.Run("form post redirects to feed", func(t *testing.T) {
		body, ct := multipartBody(t, map[string]string{"caption": "text only"})
		resp := env.do(t, request{method: http.MethodPost, path: "/api/posts", token: token, body: body, contentType: ct})
		assert.Equal(t, http.StatusSeeOther, resp.StatusCode)
		assert.Equal(t, "/api/feed", resp.Header.Get("Location"))
	})

	t.Run("video field", func(t *testing.T) {
		body, ct := multipartBody(t, nil, formFile{field: "video_upload", name: "clip.mp4", content: []byte("vid")})
		resp := env.do(t, request{method: http.MethodPost, path: "/api/posts", token: token,
			body: body, contentType: ct, json: true})
		require.Equal(t, http.StatusCreated, resp.StatusCode)
		var post models.Post
		decode(t, resp, &post)
		assert.Equal(t, models.MediaVideo, post.MediaType)
	})

	t.Run("unsupported type is rejected before upload", func(t *testing.T) {
		calls := env.uploader.calls
		body, ct := multipartBody(t, nil, formFile{field: "image_upload", name: "doc.pdf", content: []byte("pdf")})
		resp := env.do(t, request{method: http.MethodPost, path: "/api/posts", token: token,
			body: body, contentType: ct, json: true})
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
		assert.Equal(t, calls, env.uploader.calls)
	})

	t.Run("nothing to post", func(t *testing.T) {
		body, ct := multipartBody(t, map[string]string{"caption": "  "})
		resp := env.do(t, request{method: http.MethodPost, path: "/api/posts", token: token,
			body: body, contentType: ct, json: true})
		assert.Equal(t, http.StatusBadRequest, resp.StatusCode)
	})

	t.Run("storage failure is 502", func(t *testing.T) {
		env.uploader.err = errStorageDown
		defer func() { env.uploader.err = nil }()

		var before int64
		require.NoError(t, env.db.Model(&models.Post{}).Count(&before).Error)

		body, ct := multipartBody(t, nil, formFile{field: "image_upload", name: "a.png", content: []byte("img")})
		resp := env.do(t, request{method: http.MethodPost, path: "/api/posts", token: token,
			body: body, contentType: ct, json: true})
		assert.Equal(t, http.StatusBadGateway, resp.StatusCode)
		var errBody models.ErrorResponse
		decode(t, resp, &errBody)
		assert.Equal(t, "Upload failed, please try again", errBody.Error)

		var after int64
		require.NoError(t, env.db.Model(&models.Post{}).Count(&after).Error)
		assert.Equal(t, before, after)
	})
}

func TestCreatePostHandler_RepeatedUploads(t *testing.T) {
	env := newTestEnv(t, false)
	_, token := env.user(t, "prolific")

	for i := 0; i < 8; i++ {
		body, ct := multipartBody(t, nil, formFile{field: "image_upload", name: "shot.png", content: []byte("img")})
		resp := env.do(t, request{method: http.MethodPost, path: "/api/posts", token: token,
			body: body, contentType: ct, json: true})
		require.Equal(t, http.StatusCreated, resp.StatusCode, "upload %d", i)
		_ = resp.Body.Close()
	}
	assert.Equal(t, 8, env.uploader.calls)
}

func TestDeletePostHandler(t *testing.T) {
	env := newTestEnv(t, false)
	owner, ownerToken := env.user(t, "keeper")
	_, otherToken := env.user(t, "intruder")
	post := env.post(t, owner)
	path := "/api/posts/" + post.ID.String()

	forbidden := env.do(t, request{method: http.MethodDelete, path: path, token: otherToken})
	assert.Equal(t, http.StatusForbidden, forbidden.StatusCode)

	ok := env.do(t, request{method: http.MethodDelete, path: path, token: ownerToken})
	assert.Equal(t, http.StatusOK, ok.StatusCode)

	gone := env.do(t, request{method: http.MethodGet, path: path, token: ownerToken})
	assert.Equal(t, http.StatusNotFound, gone.StatusCode)
}

func TestFeedAndSaveHandlers(t *testing.T) {
	env := newTestEnv(t, false)
	viewer, token := env.user(t, "viewer")
	other, _ := env.user(t, "other")
	env.post(t, viewer)
	theirs := env.post(t, other)

	resp := env.do(t, request{method: http.MethodGet, path: "/api/feed", token: token})
	var feed []models.Post
	decode(t, resp, &feed)
	require.Len(t, feed, 1)
	assert.Equal(t, theirs.ID, feed[0].ID)

	save := env.do(t, request{method: http.MethodPost, path: "/api/posts/" + theirs.ID.String() + "/save", token: token})
	var saved struct {
		Saved bool `json:"saved"`
	}
	decode(t, save, &saved)
	assert.True(t, saved.Saved)

	list := env.do(t, request{method: http.MethodGet, path: "/api/posts/saved", token: token})
	var savedPosts []models.Post
	decode(t, list, &savedPosts)
	require.Len(t, savedPosts, 1)
	assert.Equal(t, theirs.ID, savedPosts[0].ID)
}
