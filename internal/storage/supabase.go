package storage

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/go-resty/resty/v2"
)

// SupabaseBackend uploads through the Supabase storage REST API.
type SupabaseBackend struct {
	baseURL    string
	serviceKey string
	bucket     string
	client     *resty.Client
}

// NewSupabaseBackend targets bucket on the project at baseURL.
func NewSupabaseBackend(baseURL, serviceKey, bucket string) *SupabaseBackend {
	return &SupabaseBackend{
		baseURL:    strings.TrimRight(baseURL, "/"),
		serviceKey: serviceKey,
		bucket:     bucket,
		client:     resty.New(),
	}
}

func (b *SupabaseBackend) Name() string { return "supabase" }

func (b *SupabaseBackend) Put(ctx context.Context, key string, f *os.File, contentType string) (string, error) {
	resp, err := b.client.R().
		SetContext(ctx).
		SetHeader("Authorization", "Bearer "+b.serviceKey).
		SetHeader("apikey", b.serviceKey).
		SetHeader("Content-Type", contentType).
		SetHeader("x-upsert", "false").
		SetBody(f).
		Post(fmt.Sprintf("%s/storage/v1/object/%s/%s", b.baseURL, b.bucket, key))
	if err != nil {
		return "", err
	}
	if resp.IsError() {
		return "", fmt.Errorf("supabase storage returned %d: %s", resp.StatusCode(), strings.TrimSpace(resp.String()))
	}
	return b.PublicURL(key), nil
}

// PublicURL is where a stored key is served from.
func (b *SupabaseBackend) PublicURL(key string) string {
	return fmt.Sprintf("%s/storage/v1/object/public/%s/%s", b.baseURL, b.bucket, key)
}
