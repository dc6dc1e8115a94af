// Package filestore wraps the external object store that holds lesson-plan
// attachments and profile pictures. The store is an external collaborator:
// create/delete only, no transactional guarantees. Deletes are idempotent
// against the bucket, so callers may retry them safely.
package filestore

import (
	"bytes"
	"context"
	"fmt"
	"log"
	"net/url"
	"strings"
	"time"

	"github.com/aliyun/aliyun-oss-go-sdk/oss"
	"github.com/google/uuid"
)

type Store interface {
	UploadBytes(ctx context.Context, dir, filename, contentType string, data []byte) (publicURL string, err error)
	DeleteByURL(ctx context.Context, publicURL string) error
}

// =======================
// OSS-backed store
// =======================

type OSSStore struct {
	bucket     *oss.Bucket
	endpoint   string
	bucketName string
	prefix     string
}

func NewOSSStoreFromEnv(getenv func(string) string, prefix string) (*OSSStore, error) {
	endpoint := strings.TrimSpace(getenv("ALI_OSS_ENDPOINT"))
	ak := strings.TrimSpace(getenv("ALI_OSS_ACCESS_KEY"))
	sk := strings.TrimSpace(getenv("ALI_OSS_SECRET_KEY"))
	bucketName := strings.TrimSpace(getenv("ALI_OSS_BUCKET"))
	if endpoint == "" || ak == "" || sk == "" || bucketName == "" {
		return nil, fmt.Errorf("missing env: ALI_OSS_ENDPOINT/ACCESS_KEY/SECRET_KEY/BUCKET")
	}
	cli, err := oss.New(endpoint, ak, sk)
	if err != nil {
		return nil, fmt.Errorf("oss client: %w", err)
	}
	bucket, err := cli.Bucket(bucketName)
	if err != nil {
		return nil, fmt.Errorf("oss bucket: %w", err)
	}
	return &OSSStore{bucket: bucket, endpoint: endpoint, bucketName: bucketName, prefix: prefix}, nil
}

func (s *OSSStore) UploadBytes(ctx context.Context, dir, filename, contentType string, data []byte) (string, error) {
	key := s.buildObjectKey(dir, filename)
	opts := []oss.Option{
		oss.WithContext(ctx),
		oss.ContentType(contentType),
		oss.ContentDisposition("inline"),
	}
	if err := s.bucket.PutObject(key, bytes.NewReader(data), opts...); err != nil {
		return "", fmt.Errorf("oss put %q: %w", key, err)
	}
	return s.publicURL(key), nil
}

func (s *OSSStore) DeleteByURL(ctx context.Context, publicURL string) error {
	key, err := KeyFromPublicURL(publicURL)
	if err != nil {
		return err
	}
	if err := s.bucket.DeleteObject(key, oss.WithContext(ctx)); err != nil {
		return fmt.Errorf("oss delete %q: %w", key, err)
	}
	return nil
}

func (s *OSSStore) buildObjectKey(dir, filename string) string {
	safe := sanitizeFilename(filename)
	ts := time.Now().Format("20060102")
	return strings.TrimSuffix(s.prefix, "/") + "/" + strings.Trim(dir, "/") + "/" +
		fmt.Sprintf("%s-%s-%s", ts, uuid.New().String(), safe)
}

func (s *OSSStore) publicURL(key string) string {
	host := s.endpoint
	host = strings.TrimPrefix(host, "https://")
	host = strings.TrimPrefix(host, "http://")
	return fmt.Sprintf("https://%s.%s/%s", s.bucketName, host, key)
}

func KeyFromPublicURL(publicURL string) (string, error) {
	u, err := url.Parse(publicURL)
	if err != nil {
		return "", fmt.Errorf("parse url: %w", err)
	}
	key := strings.TrimPrefix(u.Path, "/")
	if key == "" {
		return "", fmt.Errorf("empty key from URL")
	}
	return key, nil
}

func sanitizeFilename(filename string) string {
	var b strings.Builder
	for _, r := range filename {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9',
			r == '.', r == '-', r == '_':
			b.WriteRune(r)
		default:
			b.WriteRune('_')
		}
	}
	return b.String()
}

// =======================
// Disabled store
// =======================

// Disabled is the fallback when the ALI_OSS_* env is incomplete: uploads fail
// loudly, deletes are logged and skipped so absence deletion still works.
type Disabled struct{}

func (Disabled) UploadBytes(ctx context.Context, dir, filename, contentType string, data []byte) (string, error) {
	return "", fmt.Errorf("file store is not configured")
}

func (Disabled) DeleteByURL(ctx context.Context, publicURL string) error {
	log.Printf("[FILESTORE] disabled — skipping delete of %s", publicURL)
	return nil
}

func NewFromEnv(getenv func(string) string) Store {
	s, err := NewOSSStoreFromEnv(getenv, "uploads/")
	if err != nil {
		log.Printf("[FILESTORE] %v — falling back to disabled store", err)
		return Disabled{}
	}
	return s
}
