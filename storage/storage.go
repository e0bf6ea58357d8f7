// Package storage reads carrier images and payloads from, and writes results
// to, the local filesystem or Google Cloud Storage.
package storage

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

const gcsScheme = "gs://"

// Storage interface for reading inputs and writing outputs
type Storage interface {
	// Read reads the whole object at path
	Read(ctx context.Context, path string) ([]byte, error)

	// Write replaces the object at path with data
	Write(ctx context.Context, path string, data []byte) error
}

// LocalStorage implements Storage using local filesystem
type LocalStorage struct {
	baseDir string
}

// NewLocalStorage creates a local storage rooted at baseDir. An empty baseDir
// resolves paths as given.
func NewLocalStorage(baseDir string) *LocalStorage {
	return &LocalStorage{baseDir: baseDir}
}

func (s *LocalStorage) fullPath(path string) string {
	if s.baseDir == "" || filepath.IsAbs(path) {
		return path
	}
	return filepath.Join(s.baseDir, path)
}

// Read reads data from a file
func (s *LocalStorage) Read(_ context.Context, path string) ([]byte, error) {
	data, err := os.ReadFile(s.fullPath(path))
	if err != nil {
		return nil, fmt.Errorf("failed to read file: %w", err)
	}
	return data, nil
}

// Write writes data to a file, creating parent directories
func (s *LocalStorage) Write(_ context.Context, path string, data []byte) error {
	fullPath := s.fullPath(path)

	if dir := filepath.Dir(fullPath); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory: %w", err)
		}
	}

	if err := os.WriteFile(fullPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write file: %w", err)
	}
	return nil
}

// Resolver picks a backend per path: gs://bucket/object goes to GCS,
// everything else to the local filesystem. The GCS client is created on
// first use.
type Resolver struct {
	local  *LocalStorage
	gcs    *GCSStorage
	newGCS func(ctx context.Context) (*GCSStorage, error)
}

func NewResolver() *Resolver {
	return &Resolver{
		local:  NewLocalStorage(""),
		newGCS: func(ctx context.Context) (*GCSStorage, error) { return NewGCSStorage(ctx) },
	}
}

func (r *Resolver) Read(ctx context.Context, path string) ([]byte, error) {
	if !IsGCSPath(path) {
		return r.local.Read(ctx, path)
	}
	gcs, err := r.gcsStorage(ctx)
	if err != nil {
		return nil, err
	}
	return gcs.Read(ctx, path)
}

func (r *Resolver) Write(ctx context.Context, path string, data []byte) error {
	if !IsGCSPath(path) {
		return r.local.Write(ctx, path, data)
	}
	gcs, err := r.gcsStorage(ctx)
	if err != nil {
		return err
	}
	return gcs.Write(ctx, path, data)
}

// Close releases the GCS client if one was opened.
func (r *Resolver) Close() error {
	if r.gcs == nil {
		return nil
	}
	return r.gcs.Close()
}

func (r *Resolver) gcsStorage(ctx context.Context) (*GCSStorage, error) {
	if r.gcs == nil {
		gcs, err := r.newGCS(ctx)
		if err != nil {
			return nil, err
		}
		r.gcs = gcs
	}
	return r.gcs, nil
}

func IsGCSPath(path string) bool {
	return strings.HasPrefix(path, gcsScheme)
}

// ParseGCSPath splits gs://bucket/object into its bucket and object names.
func ParseGCSPath(path string) (bucket, object string, err error) {
	if !IsGCSPath(path) {
		return "", "", fmt.Errorf("not a gcs path: %q", path)
	}
	bucket, object, ok := strings.Cut(strings.TrimPrefix(path, gcsScheme), "/")
	if !ok || bucket == "" || object == "" {
		return "", "", fmt.Errorf("gcs path must look like gs://bucket/object: %q", path)
	}
	return bucket, object, nil
}
