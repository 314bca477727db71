package storage

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	appconfig "github.com/odvhub/odvhub-backend/config"
)

// ArtifactStorage persists generated application PDFs. Save overwrites any
// object already stored under the key, which is what makes regeneration
// replace instead of accumulate.
type ArtifactStorage interface {
	Save(ctx context.Context, key string, data []byte) error
	Open(ctx context.Context, key string) (io.ReadCloser, error)
	Delete(ctx context.Context, key string) error
}

// New builds the storage backend selected by configuration.
func New(cfg appconfig.ArtifactsConfig) (ArtifactStorage, error) {
	switch cfg.Driver {
	case "s3":
		return NewS3Storage(cfg.Region, cfg.Bucket, cfg.AccessKeyID, cfg.SecretAccessKey), nil
	case "local", "":
		return NewLocalStorage(cfg.LocalDir)
	default:
		return nil, fmt.Errorf("unknown artifact storage driver %q", cfg.Driver)
	}
}

// LocalStorage keeps artifacts on the local filesystem.
type LocalStorage struct {
	dir string
}

func NewLocalStorage(dir string) (*LocalStorage, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create artifact directory: %w", err)
	}
	return &LocalStorage{dir: dir}, nil
}

func (s *LocalStorage) path(key string) string {
	// keys are generated internally, but keep path traversal out anyway
	return filepath.Join(s.dir, filepath.Base(key))
}

func (s *LocalStorage) Save(ctx context.Context, key string, data []byte) error {
	return os.WriteFile(s.path(key), data, 0o644)
}

func (s *LocalStorage) Open(ctx context.Context, key string) (io.ReadCloser, error) {
	return os.Open(s.path(key))
}

func (s *LocalStorage) Delete(ctx context.Context, key string) error {
	err := os.Remove(s.path(key))
	if os.IsNotExist(err) {
		return nil
	}
	return err
}
