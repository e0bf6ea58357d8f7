package storage

import (
	"context"
	"fmt"
	"io"
	"path"

	"cloud.google.com/go/storage"
	"google.golang.org/api/option"

	"image-steganography/imaging"
)

// GCSStorage implements Storage using Google Cloud Storage. Paths are full
// gs://bucket/object URLs.
type GCSStorage struct {
	client *storage.Client
}

// NewGCSStorage creates a client from application default credentials unless
// opts say otherwise.
func NewGCSStorage(ctx context.Context, opts ...option.ClientOption) (*GCSStorage, error) {
	client, err := storage.NewClient(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create GCS client: %w", err)
	}
	return &GCSStorage{client: client}, nil
}

// Read reads data from GCS
func (s *GCSStorage) Read(ctx context.Context, p string) ([]byte, error) {
	bucket, object, err := ParseGCSPath(p)
	if err != nil {
		return nil, err
	}

	r, err := s.client.Bucket(bucket).Object(object).NewReader(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to read from GCS: %w", err)
	}
	defer r.Close()

	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read data: %w", err)
	}
	return data, nil
}

// Write writes data to GCS
func (s *GCSStorage) Write(ctx context.Context, p string, data []byte) error {
	bucket, object, err := ParseGCSPath(p)
	if err != nil {
		return err
	}

	w := s.client.Bucket(bucket).Object(object).NewWriter(ctx)
	w.ContentType = contentType(object)

	if _, err := w.Write(data); err != nil {
		w.Close()
		return fmt.Errorf("failed to write to GCS: %w", err)
	}

	if err := w.Close(); err != nil {
		return fmt.Errorf("failed to close GCS writer: %w", err)
	}
	return nil
}

func (s *GCSStorage) Close() error {
	return s.client.Close()
}

func contentType(object string) string {
	format, err := imaging.FormatFromPath(path.Base(object))
	if err != nil {
		return "application/octet-stream"
	}
	return imaging.ContentType(format)
}
