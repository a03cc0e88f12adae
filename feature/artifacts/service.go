package artifacts

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/asdfjk123/renode/core/storage"

	"github.com/minio/minio-go/v7"
	"go.uber.org/zap"
)

var (
	// ErrInvalidObject is returned for object names that would escape the cache.
	ErrInvalidObject = errors.New("invalid object name")
	// ErrBucketMissing is returned when the configured bucket does not exist.
	ErrBucketMissing = errors.New("bucket does not exist")
)

// Service fetches artifacts into the cache directory.
type Service struct {
	client   storage.Client
	bucket   string
	cacheDir string
	logger   *zap.Logger
}

// NewService creates a new artifact service.
func NewService(client storage.Client, bucket, cacheDir string, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		client:   client,
		bucket:   bucket,
		cacheDir: cacheDir,
		logger:   logger.Named("artifacts"),
	}
}

// CacheDir returns the directory artifacts are stored in.
func (s *Service) CacheDir() string {
	return s.cacheDir
}

// Check verifies the bucket exists.
func (s *Service) Check(ctx context.Context) error {
	exists, err := s.client.BucketExists(ctx, s.bucket)
	if err != nil {
		return fmt.Errorf("check bucket %s: %w", s.bucket, err)
	}
	if !exists {
		return fmt.Errorf("%w: %s", ErrBucketMissing, s.bucket)
	}
	return nil
}

// List returns object names under prefix.
func (s *Service) List(ctx context.Context, prefix string) ([]string, error) {
	var names []string
	for obj := range s.client.ListObjects(ctx, s.bucket, minio.ListObjectsOptions{Prefix: prefix, Recursive: true}) {
		if obj.Err != nil {
			return nil, obj.Err
		}
		if strings.HasSuffix(obj.Key, "/") {
			continue
		}
		names = append(names, obj.Key)
	}
	return names, nil
}

// Fetch downloads object into the cache and returns the local path. An
// already cached object is not downloaded again.
func (s *Service) Fetch(ctx context.Context, object string) (string, error) {
	clean, err := cleanObject(object)
	if err != nil {
		return "", err
	}
	dest := filepath.Join(s.cacheDir, filepath.FromSlash(clean))

	if _, err := os.Stat(dest); err == nil {
		s.logger.Debug("Artifact cache hit", zap.String("object", clean))
		return dest, nil
	}

	s.logger.Info("Fetching artifact", zap.String("bucket", s.bucket), zap.String("object", clean))
	r, err := s.client.GetObject(ctx, s.bucket, clean, minio.GetObjectOptions{})
	if err != nil {
		return "", fmt.Errorf("get %s: %w", clean, err)
	}
	defer r.Close()

	if err := os.MkdirAll(filepath.Dir(dest), 0o755); err != nil {
		return "", err
	}
	tmp, err := os.CreateTemp(filepath.Dir(dest), ".fetch-*")
	if err != nil {
		return "", err
	}
	n, err := io.Copy(tmp, r)
	if cerr := tmp.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		os.Remove(tmp.Name())
		return "", fmt.Errorf("download %s: %w", clean, err)
	}
	if err := os.Rename(tmp.Name(), dest); err != nil {
		os.Remove(tmp.Name())
		return "", err
	}

	s.logger.Info("Artifact cached", zap.String("path", dest), zap.Int64("bytes", n))
	return dest, nil
}

func cleanObject(object string) (string, error) {
	object = strings.TrimPrefix(strings.TrimSpace(object), "/")
	if object == "" || strings.HasSuffix(object, "/") {
		return "", fmt.Errorf("%w: %q", ErrInvalidObject, object)
	}
	clean := path.Clean(object)
	if clean == ".." || strings.HasPrefix(clean, "../") {
		return "", fmt.Errorf("%w: %q", ErrInvalidObject, object)
	}
	return clean, nil
}
