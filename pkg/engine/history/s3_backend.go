package history

import (
	"bufio"
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/service/s3"

	"github.com/DrSkyle/cargoload/pkg/storage"
)

// S3Backend keeps the ledger as a single JSON-lines object.
type S3Backend struct {
	Key   string
	Store *storage.S3Store
}

// NewS3Backend parses s3://bucket/key and loads the default AWS config.
func NewS3Backend(ctx context.Context, s3URL string) (*S3Backend, error) {
	u, err := url.Parse(s3URL)
	if err != nil || u.Scheme != "s3" || u.Host == "" {
		return nil, fmt.Errorf("invalid s3 url %q", s3URL)
	}
	key := strings.TrimPrefix(u.Path, "/")
	if key == "" {
		key = "history.jsonl"
	}

	cfg, err := config.LoadDefaultConfig(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load aws config: %w", err)
	}

	return &S3Backend{
		Key:   key,
		Store: storage.NewS3Store(s3.NewFromConfig(cfg), u.Host),
	}, nil
}

// Append rewrites the object with s added. S3 has no append, so this is a
// read-modify-write and concurrent writers can lose snapshots.
func (b *S3Backend) Append(ctx context.Context, s Snapshot) error {
	existing, err := b.readAll(ctx)
	if err != nil {
		return err
	}
	existing = append(existing, s)

	var buf bytes.Buffer
	for _, snap := range existing {
		data, err := json.Marshal(snap)
		if err != nil {
			return err
		}
		buf.Write(data)
		buf.WriteByte('\n')
	}
	return b.Store.Put(ctx, b.Key, buf.Bytes())
}

func (b *S3Backend) Load(ctx context.Context, n int) ([]Snapshot, error) {
	history, err := b.readAll(ctx)
	if err != nil {
		return nil, err
	}
	return tail(history, n), nil
}

func (b *S3Backend) readAll(ctx context.Context) ([]Snapshot, error) {
	data, err := b.Store.Get(ctx, b.Key)
	if errors.Is(err, storage.ErrNotFound) {
		return []Snapshot{}, nil
	}
	if err != nil {
		return nil, err
	}
	return decode(bufio.NewScanner(bytes.NewReader(data)))
}

// Bucket returns the bucket holding the ledger.
func (b *S3Backend) Bucket() string {
	return b.Store.Bucket
}

var (
	_ Backend = (*S3Backend)(nil)
	_ Backend = (*FileBackend)(nil)
)
