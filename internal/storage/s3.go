// Package storage wraps the study's object store. Photos live in a
// single bucket keyed by profile id prefix, so no two participants'
// objects can collide and per-profile listing stays a prefix scan.
// Retrieval always goes through short-lived presigned URLs; objects
// are never public.
package storage

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/google/uuid"

	"github.com/velora/study-portal/internal/config"
)

// Store holds the S3 client pair for the photo bucket. It is
// constructed once at startup and passed explicitly to the handlers
// that need it; nothing caches a client at package level.
type Store struct {
	client  *s3.Client
	presign *s3.PresignClient
	bucket  string
	urlTTL  time.Duration
}

// New builds a Store from configuration. A non-empty base endpoint
// switches to path-style addressing for minio-compatible stores.
func New(ctx context.Context, cfg config.Config) (*Store, error) {
	awsCfg, err := awsconfig.LoadDefaultConfig(ctx,
		awsconfig.WithRegion(cfg.S3Region),
		awsconfig.WithCredentialsProvider(credentials.NewStaticCredentialsProvider(
			cfg.S3AccessKey,
			cfg.S3SecretKey,
			"",
		)))
	if err != nil {
		return nil, fmt.Errorf("load aws config: %w", err)
	}

	client := s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.S3BaseEndpoint != "" {
			o.BaseEndpoint = aws.String(cfg.S3BaseEndpoint)
			o.UsePathStyle = true
		}
	})

	return &Store{
		client:  client,
		presign: s3.NewPresignClient(client),
		bucket:  cfg.S3Bucket,
		urlTTL:  time.Duration(cfg.SignedURLTTLMin) * time.Minute,
	}, nil
}

// ObjectKey produces the storage key for one sanitized photo:
// {profile_id}/week-<n>-<unixnano>-<uuid>.jpg. The uuid component
// makes repeated uploads within the same week collision-free
// without any locking.
func ObjectKey(profileID uint64, week int) string {
	return fmt.Sprintf("%d/week-%d-%d-%s.jpg", profileID, week, time.Now().UTC().UnixNano(), uuid.New())
}

// Put writes sanitized bytes under key.
func (s *Store) Put(ctx context.Context, key string, body []byte, contentType string) error {
	_, err := s.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      &s.bucket,
		Key:         &key,
		Body:        bytes.NewReader(body),
		ContentType: &contentType,
	})
	if err != nil {
		return fmt.Errorf("put object %s: %w", key, err)
	}
	return nil
}

// PresignGet mints a time-limited retrieval URL for key. The TTL is
// configured at startup (an hour by default); callers that fail to
// mint a URL fall back to exposing the raw key, never a permanent
// public URL.
func (s *Store) PresignGet(ctx context.Context, key string) (string, error) {
	req, err := s.presign.PresignGetObject(ctx, &s3.GetObjectInput{
		Bucket: &s.bucket,
		Key:    &key,
	}, s3.WithPresignExpires(s.urlTTL))
	if err != nil {
		return "", fmt.Errorf("presign get %s: %w", key, err)
	}
	return req.URL, nil
}
