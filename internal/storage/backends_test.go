package storage

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/service/s3/s3manager"
	"github.com/aws/aws-sdk-go/service/s3/s3manager/s3manageriface"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func stagedFile(t *testing.T, content string) *os.File {
	t.Helper()
	path := filepath.Join(t.TempDir(), "staged")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	f, err := os.Open(path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = f.Close() })
	return f
}

type fakeS3Uploader struct {
	s3manageriface.UploaderAPI
	input *s3manager.UploadInput
	body  []byte
	err   error
}

func (u *fakeS3Uploader) UploadWithContext(_ aws.Context, in *s3manager.UploadInput, _ ...func(*s3manager.Uploader)) (*s3manager.UploadOutput, error) {
	u.input = in
	u.body, _ = io.ReadAll(in.Body)
	if u.err != nil {
		return nil, u.err
	}
	return &s3manager.UploadOutput{Location: "https://bucket.s3.amazonaws.com/" + aws.StringValue(in.Key)}, nil
}

func TestS3Backend_Put(t *testing.T) {
	t.Run("bucket location", func(t *testing.T) {
		fake := &fakeS3Uploader{}
		backend := NewS3BackendWithUploader("media-bucket", "", fake)

		url, err := backend.Put(context.Background(), "post_media/abc.mp4", stagedFile(t, "video"), "video/mp4")
		require.NoError(t, err)
		assert.Equal(t, "https://bucket.s3.amazonaws.com/post_media/abc.mp4", url)
		assert.Equal(t, "public-read", aws.StringValue(fake.input.ACL))
		assert.Equal(t, "media-bucket", aws.StringValue(fake.input.Bucket))
		assert.Equal(t, "video/mp4", aws.StringValue(fake.input.ContentType))
		assert.Equal(t, "video", string(fake.body))
	})

	t.Run("cdn base url", func(t *testing.T) {
		backend := NewS3BackendWithUploader("media-bucket", "https://cdn.example.com/", &fakeS3Uploader{})
		url, err := backend.Put(context.Background(), "profile_pics/a.webp", stagedFile(t, "x"), "image/webp")
		require.NoError(t, err)
		assert.Equal(t, "https://cdn.example.com/profile_pics/a.webp", url)
	})

	t.Run("error", func(t *testing.T) {
		backend := NewS3BackendWithUploader("b", "", &fakeS3Uploader{err: errors.New("access denied")})
		_, err := backend.Put(context.Background(), "k", stagedFile(t, "x"), "image/png")
		assert.Error(t, err)
	})
}

func TestSupabaseBackend_Put(t *testing.T) {
	var gotPath, gotAuth, gotUpsert, gotType, gotBody string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAuth = r.Header.Get("Authorization")
		gotUpsert = r.Header.Get("x-upsert")
		gotType = r.Header.Get("Content-Type")
		body, _ := io.ReadAll(r.Body)
		gotBody = string(body)
		if r.URL.Path == "/storage/v1/object/media/post_media/dup.png" {
			w.WriteHeader(http.StatusConflict)
			_, _ = w.Write([]byte(`{"error":"Duplicate"}`))
			return
		}
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"Key":"media/post_media/a.png"}`))
	}))
	t.Cleanup(srv.Close)

	backend := NewSupabaseBackend(srv.URL+"/", "service-key", "media")

	url, err := backend.Put(context.Background(), "post_media/a.png", stagedFile(t, "png-bytes"), "image/png")
	require.NoError(t, err)
	assert.Equal(t, srv.URL+"/storage/v1/object/public/media/post_media/a.png", url)
	assert.Equal(t, "/storage/v1/object/media/post_media/a.png", gotPath)
	assert.Equal(t, "Bearer service-key", gotAuth)
	assert.Equal(t, "false", gotUpsert)
	assert.Equal(t, "image/png", gotType)
	assert.Equal(t, "png-bytes", gotBody)

	_, err = backend.Put(context.Background(), "post_media/dup.png", stagedFile(t, "x"), "image/png")
	assert.ErrorContains(t, err, "409")
}
