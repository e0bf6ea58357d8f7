package compression

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestZstdRoundTrip(t *testing.T) {
	codec, err := NewZstdCodec()
	require.NoError(t, err)
	defer codec.Close()

	tests := [][]byte{
		{},
		[]byte("Hello world!"),
		bytes.Repeat([]byte("A"), 10000),
	}

	for _, payload := range tests {
		packed := codec.Compress(payload)
		unpacked, err := codec.Decompress(packed)
		require.NoError(t, err)
		assert.Equal(t, payload, unpacked)
	}
}

func TestZstdShrinksRepetitivePayload(t *testing.T) {
	codec, err := NewZstdCodec()
	require.NoError(t, err)
	defer codec.Close()

	payload := bytes.Repeat([]byte("steganography "), 500)
	assert.Less(t, len(codec.Compress(payload)), len(payload)/10)
}

func TestZstdRejectsGarbage(t *testing.T) {
	codec, err := NewZstdCodec()
	require.NoError(t, err)
	defer codec.Close()

	_, err = codec.Decompress([]byte("not a zstd frame"))
	assert.Error(t, err)
}
