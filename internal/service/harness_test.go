package service

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"sync"
	"testing"

	"github.com/Gentlecoder1/social-app/internal/cache"
	"github.com/Gentlecoder1/social-app/internal/models"
	"github.com/Gentlecoder1/social-app/internal/repository"
	"github.com/Gentlecoder1/social-app/internal/storage"
	"github.com/Gentlecoder1/social-app/internal/testutil"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type publishedEvent struct {
	UserID  uint
	Type    string                 `json:"type"`
	Payload map[string]interface{} `json:"payload"`
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []publishedEvent
}

func (p *recordingPublisher) PublishUser(_ context.Context, userID uint, payload string) error {
	var ev publishedEvent
	if err := json.Unmarshal([]byte(payload), &ev); err != nil {
		return err
	}
	ev.UserID = userID
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, ev)
	return nil
}

func (p *recordingPublisher) For(userID uint) []publishedEvent {
	p.mu.Lock()
	defer p.mu.Unlock()
	var out []publishedEvent
	for _, ev := range p.events {
		if ev.UserID == userID {
			out = append(out, ev)
		}
	}
	return out
}

type uploadCall struct {
	Filename string
	Category storage.Category
	Body     []byte
}

type fakeUploader struct {
	mu    sync.Mutex
	err   error
	calls []uploadCall

	// failCategory fails only uploads of that category.
	failCategory storage.Category
}

func (u *fakeUploader) Upload(_ context.Context, r io.Reader, filename string, category storage.Category) (string, error) {
	body, _ := io.ReadAll(r)
	u.mu.Lock()
	u.calls = append(u.calls, uploadCall{Filename: filename, Category: category, Body: body})
	u.mu.Unlock()
	if u.err != nil || (u.failCategory != "" && u.failCategory == category) {
		return "", models.NewUpstreamError(storage.UploadFailedMessage, errBucketDown)
	}
	return "https://cdn.example.com/" + storage.ObjectKey(category, filename), nil
}

var errBucketDown = errors.New("bucket down")

type harness struct {
	db            *gorm.DB
	store         repository.Store
	redis         *miniredis.Miniredis
	cache         *cache.Store
	publisher     *recordingPublisher
	uploader      *fakeUploader
	notifications *NotificationService
	engagement    *EngagementService
	graph         *GraphService
	profiles      *ProfileService
	posts         *PostService
	auth          *AuthService
}

func newHarness(t *testing.T) *harness {
	t.Helper()

	db := testutil.NewTestDB(t)
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	h := &harness{
		db:        db,
		store:     repository.NewStore(db),
		redis:     mr,
		cache:     cache.NewStore(rdb),
		publisher: &recordingPublisher{},
		uploader:  &fakeUploader{},
	}
	h.notifications = NewNotificationService(h.store, h.publisher)
	h.engagement = NewEngagementService(h.store, h.notifications)
	h.graph = NewGraphService(h.store, h.notifications, h.cache)
	h.profiles = NewProfileService(h.store, h.graph, h.uploader, "", DefaultMaxUploadBytes)
	h.posts = NewPostService(h.store, h.notifications, h.profiles, h.uploader, DefaultMaxUploadBytes)
	h.auth = NewAuthService(h.store, h.cache, "test-secret-with-enough-length-000", "")
	return h
}

func (h *harness) user(t *testing.T, username string) *models.User {
	t.Helper()
	return testutil.CreateUser(t, h.db, username)
}

func (h *harness) post(t *testing.T, owner *models.User) *models.Post {
	t.Helper()
	return testutil.CreatePost(t, h.db, owner.ID, "post by "+owner.Username)
}

func (h *harness) count(t *testing.T, model interface{}, where string, args ...interface{}) int64 {
	t.Helper()
	var n int64
	q := h.db.Model(model)
	if where != "" {
		q = q.Where(where, args...)
	}
	require.NoError(t, q.Count(&n).Error)
	return n
}

func (h *harness) likeCount(t *testing.T, post *models.Post) int {
	t.Helper()
	n, err := h.store.Posts().LikeCount(context.Background(), post.ID)
	require.NoError(t, err)
	return n
}
