package storage

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"
)

// ErrNotFound is returned by Get when the key does not exist.
var ErrNotFound = errors.New("object not found")

// ErrInvalidKey is returned for keys that would resolve outside the store.
var ErrInvalidKey = errors.New("invalid object key")

// BlobStore defines the interface for abstract storage backends.
type BlobStore interface {
	Put(ctx context.Context, key string, data []byte) error
	Get(ctx context.Context, key string) ([]byte, error)
	List(ctx context.Context, prefix string) ([]string, error)
}

// Open returns an S3Store for s3://bucket/prefix targets and a LocalStore
// rooted at target otherwise. The returned prefix is the key prefix inside
// the bucket, empty for local stores.
func Open(ctx context.Context, target string) (BlobStore, string, error) {
	if !strings.HasPrefix(target, "s3://") {
		return NewLocalStore(target), "", nil
	}

	u, err := url.Parse(target)
	if err != nil || u.Host == "" {
		return nil, "", fmt.Errorf("invalid s3 target %q", target)
	}

	cfg, err := config.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, "", fmt.Errorf("failed to load aws config: %w", err)
	}
	return NewS3Store(s3.NewFromConfig(cfg), u.Host), strings.Trim(u.Path, "/"), nil
}

// JoinKey joins key segments with forward slashes, skipping empty ones.
func JoinKey(parts ...string) string {
	var kept []string
	for _, p := range parts {
		p = strings.Trim(strings.ReplaceAll(p, "\\", "/"), "/")
		if p != "" {
			kept = append(kept, p)
		}
	}
	return strings.Join(kept, "/")
}
