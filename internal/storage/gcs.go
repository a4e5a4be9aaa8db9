package storage

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"cloud.google.com/go/storage"
)

// maxTemplateSize bounds how much of an object is read into memory.
const maxTemplateSize = 1 << 20

type GCSStorage struct {
	client *storage.Client
	bucket string
	object string
}

func NewGCSStorage(ctx context.Context, bucket, object string) (*GCSStorage, error) {
	client, err := storage.NewClient(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to create GCS client: %w", err)
	}

	return &GCSStorage{
		client: client,
		bucket: bucket,
		object: object,
	}, nil
}

func (s *GCSStorage) Close() error {
	return s.client.Close()
}

func (s *GCSStorage) ReadTemplates(ctx context.Context) ([]byte, error) {
	r, err := s.client.Bucket(s.bucket).Object(s.object).NewReader(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to open gs://%s/%s: %w", s.bucket, s.object, err)
	}
	defer func() { _ = r.Close() }()

	if r.Attrs.Size > maxTemplateSize {
		return nil, fmt.Errorf("gs://%s/%s is %d bytes, limit is %d", s.bucket, s.object, r.Attrs.Size, maxTemplateSize)
	}

	data, err := io.ReadAll(io.LimitReader(r, maxTemplateSize))
	if err != nil {
		return nil, fmt.Errorf("failed to download templates: %w", err)
	}

	slog.Debug("Loaded templates from GCS", "bucket", s.bucket, "object", s.object, "bytes", len(data))
	return data, nil
}
