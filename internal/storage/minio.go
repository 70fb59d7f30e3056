package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"time"

	"github.com/docregistry/docregistry/internal/config"
	"github.com/docregistry/docregistry/internal/document"
	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
)

// MinIOStorage is a thin wrapper around the minio client used as the
// publication archive.
type MinIOStorage struct {
	client *minio.Client
	bucket string
}

// NewMinIOStorage creates a new MinIO storage client and ensures the bucket exists.
func NewMinIOStorage(ctx context.Context, cfg config.MinIOConfig) (*MinIOStorage, error) {
	if cfg.Endpoint == "" {
		return nil, fmt.Errorf("minio config missing")
	}
	mc, err := minio.New(cfg.Endpoint, &minio.Options{
		Creds:  credentials.NewStaticV4(cfg.AccessKey, cfg.SecretKey, ""),
		Secure: cfg.UseSSL,
	})
	if err != nil {
		return nil, fmt.Errorf("minio new: %w", err)
	}
	s := &MinIOStorage{client: mc, bucket: cfg.Bucket}
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := mc.MakeBucket(ctx, s.bucket, minio.MakeBucketOptions{}); err != nil {
		// ignore "already exists" style errors
		exist, xerr := mc.BucketExists(ctx, s.bucket)
		if xerr != nil || !exist {
			return nil, fmt.Errorf("minio bucket ensure: %w", err)
		}
	}
	return s, nil
}

// UploadFile uploads data from reader to the configured bucket using the provided key.
func (s *MinIOStorage) UploadFile(ctx context.Context, key string, reader io.Reader, size int64, contentType string) error {
	_, err := s.client.PutObject(ctx, s.bucket, key, reader, size, minio.PutObjectOptions{ContentType: contentType})
	return err
}

// ArchiveDocument stores the JSON snapshot of a published document under ObjectKey(d).
func (s *MinIOStorage) ArchiveDocument(ctx context.Context, d *document.Document) error {
	body, err := Snapshot(d)
	if err != nil {
		return err
	}
	key := ObjectKey(d)
	if err := s.UploadFile(ctx, key, bytes.NewReader(body), int64(len(body)), "application/json"); err != nil {
		return fmt.Errorf("archive %s: %w", key, err)
	}
	return nil
}

// ObjectKey is documents/<id>/<publication date>.json; undated documents use "undated".
func ObjectKey(d *document.Document) string {
	date := "undated"
	if d.PublicationDate != nil && *d.PublicationDate != "" {
		date = *d.PublicationDate
	}
	return fmt.Sprintf("documents/%d/%s.json", d.ID, date)
}

// Snapshot encodes d as stored in the archive.
func Snapshot(d *document.Document) ([]byte, error) {
	b, err := json.MarshalIndent(d, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode document %d: %w", d.ID, err)
	}
	return b, nil
}
