// Package compression shrinks payloads before they are framed, so more fits
// in a given carrier.
package compression

import (
	"fmt"

	"github.com/klauspost/compress/zstd"
)

// DefaultMaxDecodedSize bounds Decompress so a forged frame cannot expand
// into an arbitrarily large allocation.
const DefaultMaxDecodedSize = 512 << 20

type ZstdCodec struct {
	enc *zstd.Encoder
	dec *zstd.Decoder
}

func NewZstdCodec() (*ZstdCodec, error) {
	enc, err := zstd.NewWriter(
		nil,
		zstd.WithEncoderConcurrency(1),
		zstd.WithEncoderLevel(zstd.SpeedBetterCompression),
		zstd.WithLowerEncoderMem(true),
	)
	if err != nil {
		return nil, fmt.Errorf("zstd encoder: %w", err)
	}

	dec, err := zstd.NewReader(
		nil,
		zstd.WithDecoderConcurrency(1),
		zstd.WithDecoderLowmem(true),
		zstd.WithDecoderMaxMemory(DefaultMaxDecodedSize),
	)
	if err != nil {
		enc.Close()
		return nil, fmt.Errorf("zstd decoder: %w", err)
	}

	return &ZstdCodec{enc: enc, dec: dec}, nil
}

func (c *ZstdCodec) Compress(payload []byte) []byte {
	return c.enc.EncodeAll(payload, make([]byte, 0, len(payload)))
}

func (c *ZstdCodec) Decompress(data []byte) ([]byte, error) {
	out, err := c.dec.DecodeAll(data, nil)
	if err != nil {
		return nil, fmt.Errorf("zstd decode: %w", err)
	}
	if out == nil {
		out = []byte{}
	}
	return out, nil
}

func (c *ZstdCodec) Close() error {
	c.dec.Close()
	return c.enc.Close()
}
