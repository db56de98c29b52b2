package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
)

// LocalBackend writes objects below a directory served at baseURL.
type LocalBackend struct {
	root    string
	baseURL string
}

// NewLocalBackend creates root if needed.
func NewLocalBackend(root, baseURL string) (*LocalBackend, error) {
	if root == "" {
		root = "uploads"
	}
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("create upload dir: %w", err)
	}
	return &LocalBackend{root: root, baseURL: strings.TrimRight(baseURL, "/")}, nil
}

func (b *LocalBackend) Name() string { return "local" }

// Root is the directory objects are written under.
func (b *LocalBackend) Root() string { return b.root }

func (b *LocalBackend) Put(ctx context.Context, key string, f *os.File, _ string) (string, error) {
	dst := filepath.Join(b.root, filepath.FromSlash(key))
	if err := os.MkdirAll(filepath.Dir(dst), 0o755); err != nil {
		return "", err
	}
	out, err := os.OpenFile(dst, os.O_CREATE|os.O_EXCL|os.O_WRONLY, 0o644)
	if err != nil {
		return "", err
	}
	if _, err := io.Copy(out, f); err != nil {
		_ = out.Close()
		_ = os.Remove(dst)
		return "", err
	}
	if err := out.Close(); err != nil {
		return "", err
	}
	if err := ctx.Err(); err != nil {
		_ = os.Remove(dst)
		return "", err
	}
	return b.baseURL + "/" + key, nil
}
