package storage

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalStorageWriteRead(t *testing.T) {
	ctx := context.Background()
	s := NewLocalStorage(t.TempDir())

	require.NoError(t, s.Write(ctx, "nested/dir/payload.bin", []byte{0, 1, 2}))

	data, err := s.Read(ctx, "nested/dir/payload.bin")
	require.NoError(t, err)
	assert.Equal(t, []byte{0, 1, 2}, data)
}

func TestLocalStorageMissingFile(t *testing.T) {
	_, err := NewLocalStorage(t.TempDir()).Read(context.Background(), "missing.png")
	assert.Error(t, err)
}

func TestResolverUsesLocalForPlainPaths(t *testing.T) {
	ctx := context.Background()
	r := NewResolver()
	r.newGCS = func(context.Context) (*GCSStorage, error) {
		t.Fatal("gcs client must not be created for local paths")
		return nil, nil
	}

	path := filepath.Join(t.TempDir(), "out.png")
	require.NoError(t, r.Write(ctx, path, []byte("png")))

	data, err := r.Read(ctx, path)
	require.NoError(t, err)
	assert.Equal(t, []byte("png"), data)
	assert.NoError(t, r.Close())
}

func TestResolverSurfacesGCSClientError(t *testing.T) {
	boom := errors.New("no credentials")
	r := NewResolver()
	r.newGCS = func(context.Context) (*GCSStorage, error) { return nil, boom }

	_, err := r.Read(context.Background(), "gs://bucket/cover.png")
	assert.ErrorIs(t, err, boom)

	err = r.Write(context.Background(), "gs://bucket/out.png", nil)
	assert.ErrorIs(t, err, boom)
}

func TestParseGCSPath(t *testing.T) {
	tests := []struct {
		path   string
		bucket string
		object string
		ok     bool
	}{
		{"gs://bucket/cover.png", "bucket", "cover.png", true},
		{"gs://bucket/a/b/c.qoi", "bucket", "a/b/c.qoi", true},
		{"gs://bucket", "", "", false},
		{"gs://bucket/", "", "", false},
		{"gs:///object", "", "", false},
		{"/tmp/cover.png", "", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.path, func(t *testing.T) {
			bucket, object, err := ParseGCSPath(tt.path)
			if !tt.ok {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.bucket, bucket)
			assert.Equal(t, tt.object, object)
		})
	}
}

func TestContentType(t *testing.T) {
	assert.Equal(t, "image/png", contentType("dir/out.png"))
	assert.Equal(t, "application/octet-stream", contentType("secret.txt"))
}
