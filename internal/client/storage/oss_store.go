// Package storage keeps identity documents in a private object storage bucket.
package storage

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/aliyun/aliyun-oss-go-sdk/oss"
	"github.com/chrisdamba/tacticalbooking/pkg/config"
)

var ErrEmptyKey = errors.New("empty object key")

// Bucket is the subset of *oss.Bucket used by Store.
type Bucket interface {
	PutObject(objectKey string, reader io.Reader, options ...oss.Option) error
	SignURL(objectKey string, method oss.HTTPMethod, expiredInSec int64, options ...oss.Option) (string, error)
}

type Store struct {
	bucket Bucket
}

func NewStore(bucket Bucket) *Store {
	return &Store{bucket: bucket}
}

func NewStoreFromConfig(cfg config.StorageConfig) (*Store, error) {
	if cfg.Endpoint == "" || cfg.AccessKeyID == "" || cfg.AccessKeySecret == "" || cfg.Bucket == "" {
		return nil, fmt.Errorf("missing storage settings: OSS_ENDPOINT/OSS_ACCESS_KEY_ID/OSS_ACCESS_KEY_SECRET/OSS_BUCKET")
	}

	client, err := oss.New(cfg.Endpoint, cfg.AccessKeyID, cfg.AccessKeySecret)
	if err != nil {
		return nil, fmt.Errorf("oss.New: %w", err)
	}

	bkt, err := client.Bucket(cfg.Bucket)
	if err != nil {
		return nil, fmt.Errorf("client.Bucket: %w", err)
	}
	return NewStore(bkt), nil
}

// Upload writes the object as private; it is only ever read through signed URLs.
func (s *Store) Upload(ctx context.Context, key, contentType string, r io.Reader) error {
	if key == "" {
		return ErrEmptyKey
	}
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	opts := []oss.Option{
		oss.WithContext(ctx),
		oss.ContentType(contentType),
		oss.ObjectACL(oss.ACLPrivate),
		oss.ContentDisposition("inline"),
	}
	if err := s.bucket.PutObject(key, r, opts...); err != nil {
		return fmt.Errorf("putting object %s: %w", key, err)
	}
	return nil
}

func (s *Store) SignedURL(ctx context.Context, key string, ttl time.Duration) (string, error) {
	if key == "" {
		return "", ErrEmptyKey
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}

	secs := int64(ttl / time.Second)
	if secs < 1 {
		secs = 1
	}
	u, err := s.bucket.SignURL(key, oss.HTTPGet, secs)
	if err != nil {
		return "", fmt.Errorf("signing url for %s: %w", key, err)
	}
	return u, nil
}
