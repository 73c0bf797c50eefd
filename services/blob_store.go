package services

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"

	"github.com/Ramprakash852/AI-storyteller/internal/config"
)

// BlobStore persists uploaded and generated binary files and hands back
// a public URL plus a stable key for later deletion.
type BlobStore interface {
	Put(ctx context.Context, folder, filename string, r io.Reader) (url string, key string, err error)
	Delete(ctx context.Context, key string) error
}

// LocalBlobStore writes blobs under a root directory served as static
// files by the HTTP layer.
type LocalBlobStore struct {
	rootDir string
	baseURL string
}

func NewLocalBlobStore(cfg *config.Config) (*LocalBlobStore, error) {
	if err := os.MkdirAll(cfg.FileStorageDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create storage directory: %w", err)
	}
	return &LocalBlobStore{
		rootDir: cfg.FileStorageDir,
		baseURL: strings.TrimRight(cfg.PublicBaseURL, "/"),
	}, nil
}

func (s *LocalBlobStore) Put(ctx context.Context, folder, filename string, r io.Reader) (string, string, error) {
	ext := filepath.Ext(filename)
	key := filepath.Join(folder, uuid.New().String()+ext)

	fullPath := filepath.Join(s.rootDir, key)
	if err := os.MkdirAll(filepath.Dir(fullPath), 0o755); err != nil {
		return "", "", fmt.Errorf("failed to create blob folder: %w", err)
	}

	f, err := os.Create(fullPath)
	if err != nil {
		return "", "", fmt.Errorf("failed to create blob file: %w", err)
	}
	defer f.Close()

	if _, err := io.Copy(f, r); err != nil {
		os.Remove(fullPath)
		return "", "", fmt.Errorf("failed to write blob: %w", err)
	}

	url := s.baseURL + "/storage/" + filepath.ToSlash(key)
	return url, key, nil
}

func (s *LocalBlobStore) Delete(ctx context.Context, key string) error {
	if key == "" {
		return nil
	}
	fullPath := filepath.Join(s.rootDir, filepath.Clean(key))
	if !strings.HasPrefix(fullPath, filepath.Clean(s.rootDir)) {
		return fmt.Errorf("invalid blob key: %s", key)
	}
	if err := os.Remove(fullPath); err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to delete blob: %w", err)
	}
	return nil
}
