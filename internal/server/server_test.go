package server

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/Gentlecoder1/social-app/internal/config"
	"github.com/Gentlecoder1/social-app/internal/middleware"
	"github.com/Gentlecoder1/social-app/internal/models"
	"github.com/Gentlecoder1/social-app/internal/storage"
	"github.com/Gentlecoder1/social-app/internal/testutil"

	"github.com/alicebob/miniredis/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

const testJWTSecret = "server-test-secret-0123456789abcdef"

type stubUploader struct {
	mu    sync.Mutex
	err   error
	calls int
}

func (u *stubUploader) Upload(_ context.Context, r io.Reader, filename string, category storage.Category) (string, error) {
	u.mu.Lock()
	defer u.mu.Unlock()
	u.calls++
	if _, err := io.Copy(io.Discard, r); err != nil {
		return "", err
	}
	if u.err != nil {
		return "", models.NewUpstreamError(storage.UploadFailedMessage, u.err)
	}
	return "https://cdn.test/" + storage.ObjectKey(category, filename), nil
}

type testEnv struct {
	server   *Server
	app      *fiber.App
	db       *gorm.DB
	redis    *miniredis.Miniredis
	uploader *stubUploader
}

func testConfig() *config.Config {
	return &config.Config{
		JWTSecret:            testJWTSecret,
		Port:                 "0",
		Env:                  "test",
		AllowedOrigins:       "http://localhost:5173",
		MediaMaxUploadSizeMB: 12,
		UploadRatePerMinute:  1000,
		StorageBackend:       "s3",
	}
}

// newTestEnv wires a full server over sqlite and miniredis.
func newTestEnv(t *testing.T, withRedis bool) *testEnv {
	t.Helper()
	t.Setenv("APP_ENV", "test")

	db := testutil.NewTestDB(t)
	env := &testEnv{db: db, uploader: &stubUploader{}}

	var rdb *redis.Client
	if withRedis {
		env.redis = miniredis.RunT(t)
		rdb = redis.NewClient(&redis.Options{Addr: env.redis.Addr()})
		t.Cleanup(func() { _ = rdb.Close() })
	}

	srv, err := NewServerWithDeps(testConfig(), db, rdb, env.uploader)
	require.NoError(t, err)
	app := srv.NewApp()
	srv.SetupMiddleware(app)
	srv.SetupRoutes(app)

	env.server = srv
	env.app = app
	return env
}

func (e *testEnv) user(t *testing.T, username string) (*models.User, string) {
	t.Helper()
	u := testutil.CreateUser(t, e.db, username)
	token, _, err := middleware.IssueToken(testJWTSecret, u.ID, u.Username, time.Now())
	require.NoError(t, err)
	return u, token
}

func (e *testEnv) post(t *testing.T, owner *models.User) *models.Post {
	t.Helper()
	return testutil.CreatePost(t, e.db, owner.ID, "hello from "+owner.Username)
}

type request struct {
	method      string
	path        string
	token       string
	body        io.Reader
	contentType string
	json        bool
}

func (e *testEnv) do(t *testing.T, r request) *http.Response {
	t.Helper()
	req := httptest.NewRequest(r.method, r.path, r.body)
	if r.token != "" {
		req.Header.Set("Authorization", "Bearer "+r.token)
	}
	if r.contentType != "" {
		req.Header.Set("Content-Type", r.contentType)
	}
	if r.json {
		req.Header.Set("Accept", "application/json")
	}
	resp, err := e.app.Test(req, 10_000)
	require.NoError(t, err)
	t.Cleanup(func() { _ = resp.Body.Close() })
	return resp
}

func jsonBody(t *testing.T, v interface{}) io.Reader {
	t.Helper()
	b, err := json.Marshal(v)
	require.NoError(t, err)
	return bytes.NewReader(b)
}

func decode(t *testing.T, resp *http.Response, dest interface{}) {
	t.Helper()
	require.NoError(t, json.NewDecoder(resp.Body).Decode(dest))
}

type formFile struct {
	field, name string
	content     []byte
}

func multipartBody(t *testing.T, fields map[string]string, files ...formFile) (io.Reader, string) {
	t.Helper()
	var buf bytes.Buffer
	w := multipart.NewWriter(&buf)
	for k, v := range fields {
		require.NoError(t, w.WriteField(k, v))
	}
	for _, f := range files {
		part, err := w.CreateFormFile(f.field, f.name)
		require.NoError(t, err)
		_, err = part.Write(f.content)
		require.NoError(t, err)
	}
	require.NoError(t, w.Close())
	return &buf, w.FormDataContentType()
}

var errStorageDown = errors.New("storage unavailable")
