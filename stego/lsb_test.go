package stego

import (
	"bytes"
	"math/rand"
	"testing"

	"image-steganography/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newLSB(t *testing.T, width HeaderWidth) *LSBSteganography {
	t.Helper()
	lsb, err := NewLSBSteganography(&models.StegoConfig{HeaderWidth: int(width)}, nil)
	require.NoError(t, err)
	return lsb
}

func randomCarrier(seed int64, n int) []byte {
	buf := make([]byte, n)
	rand.New(rand.NewSource(seed)).Read(buf)
	return buf
}

func TestNewLSBSteganographyDefaultsTo32(t *testing.T) {
	lsb, err := NewLSBSteganography(nil, nil)
	require.NoError(t, err)
	assert.Equal(t, HeaderWidth32, lsb.HeaderWidth())

	_, err = NewLSBSteganography(&models.StegoConfig{HeaderWidth: 12}, nil)
	assert.ErrorIs(t, err, ErrInvalidHeaderWidth)
}

func TestEmbedSingleByteIntoZeroCarrier(t *testing.T) {
	lsb := newLSB(t, HeaderWidth32)
	carrier := make([]byte, 200)

	stego, err := lsb.Embed(carrier, []byte{0x41})
	require.NoError(t, err)
	require.Len(t, stego, 200)

	want := make([]byte, 200)
	want[28] = 1 // header value 8
	want[33] = 1 // 0x41 = 01000001
	want[39] = 1
	assert.Equal(t, want, stego)

	payload, err := lsb.Extract(stego)
	require.NoError(t, err)
	assert.Equal(t, []byte{0x41}, payload)
}

func TestEmbedExtractRoundTrip(t *testing.T) {
	tests := []struct {
		name    string
		width   HeaderWidth
		payload []byte
		carrier int
	}{
		{"empty payload", HeaderWidth32, []byte{}, 32},
		{"text", HeaderWidth32, []byte("Hello world!"), 4096},
		{"exact fit", HeaderWidth32, []byte{0xff, 0x00, 0x7f}, 32 + 24},
		{"binary", HeaderWidth32, randomCarrier(3, 500), 10000},
		{"legacy header", HeaderWidth8, []byte("short"), 64},
		{"legacy header max", HeaderWidth8, bytes.Repeat([]byte{0xaa}, 31), 8 + 248},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lsb := newLSB(t, tt.width)
			carrier := randomCarrier(int64(len(tt.name)), tt.carrier)

			stego, err := lsb.Embed(carrier, tt.payload)
			require.NoError(t, err)

			payload, err := lsb.Extract(stego)
			require.NoError(t, err)
			assert.Equal(t, tt.payload, payload)
		})
	}
}

func TestEmbedMinimalPerturbation(t *testing.T) {
	lsb := newLSB(t, HeaderWidth32)
	carrier := randomCarrier(11, 2048)
	original := bytes.Clone(carrier)
	payload := []byte("minimal perturbation")

	stego, err := lsb.Embed(carrier, payload)
	require.NoError(t, err)

	assert.Equal(t, original, carrier, "input buffer must not be modified")

	frame, err := BuildFrame(payload, HeaderWidth32)
	require.NoError(t, err)

	for i := range stego {
		diff := int(stego[i]) - int(carrier[i])
		if i < len(frame) {
			assert.LessOrEqual(t, diff*diff, 1, "byte %d", i)
			assert.Equal(t, frame[i], stego[i]%2, "parity of byte %d", i)
		} else {
			assert.Equal(t, carrier[i], stego[i], "byte %d outside frame", i)
		}
	}
}

func TestEmbedNeverWraps(t *testing.T) {
	lsb := newLSB(t, HeaderWidth8)
	carrier := append(bytes.Repeat([]byte{0xff}, 8), bytes.Repeat([]byte{0x00}, 16)...)

	// header 00001000 over 0xff, payload 11111111 over 0x00
	stego, err := lsb.Embed(carrier, []byte{0xff})
	require.NoError(t, err)
	assert.Equal(t, []byte{0xfe, 0xfe, 0xfe, 0xfe, 0xff, 0xfe, 0xfe, 0xfe}, stego[:8])
	assert.Equal(t, bytes.Repeat([]byte{0x01}, 8), stego[8:16])
	assert.Equal(t, make([]byte, 8), stego[16:])
}

func TestEmbedCapacityRejection(t *testing.T) {
	lsb := newLSB(t, HeaderWidth32)
	carrier := randomCarrier(5, 32+8*4-1)
	original := bytes.Clone(carrier)

	stego, err := lsb.Embed(carrier, []byte("four"))
	assert.Nil(t, stego)

	var capacityErr *CapacityError
	require.ErrorAs(t, err, &capacityErr)
	assert.Equal(t, 64, capacityErr.Required)
	assert.Equal(t, 63, capacityErr.Available)
	assert.Equal(t, original, carrier)
}

func TestExtractClaimedLengthTooLong(t *testing.T) {
	lsb := newLSB(t, HeaderWidth32)
	carrier := make([]byte, 100)
	for i, bit := range LengthHeaderBits(1000, HeaderWidth32) {
		carrier[i] = bit
	}

	_, err := lsb.Extract(carrier)

	var extractionErr *ExtractionError
	require.ErrorAs(t, err, &extractionErr)
	assert.Equal(t, uint64(1000), extractionErr.Claimed)
	assert.Equal(t, 68, extractionErr.Available)
}

func TestExtractForeignBufferDropsPartialByte(t *testing.T) {
	lsb := newLSB(t, HeaderWidth8)
	carrier := make([]byte, 8+11)
	for i, bit := range LengthHeaderBits(11, HeaderWidth8) {
		carrier[i] = bit
	}
	copy(carrier[8:], []byte{0, 1, 0, 0, 0, 0, 0, 1, 1, 1, 1})

	payload, err := lsb.Extract(carrier)
	require.NoError(t, err)
	assert.Equal(t, []byte{0x41}, payload)
}

func TestHeaderWidthsAreNotInterchangeable(t *testing.T) {
	stego, err := newLSB(t, HeaderWidth32).Embed(make([]byte, 256), []byte("hi"))
	require.NoError(t, err)

	// the first 8 header bits of a 32-bit frame are zero, so the legacy
	// reader sees an empty payload
	payload, err := newLSB(t, HeaderWidth8).Extract(stego)
	require.NoError(t, err)
	assert.Empty(t, payload)
}

func TestCalculateCapacity(t *testing.T) {
	lsb32 := newLSB(t, HeaderWidth32)
	assert.Equal(t, 0, lsb32.CalculateCapacity(make([]byte, 10)))
	assert.Equal(t, 0, lsb32.CalculateCapacity(make([]byte, 39)))
	assert.Equal(t, 1, lsb32.CalculateCapacity(make([]byte, 40)))
	assert.Equal(t, 121, lsb32.CalculateCapacity(make([]byte, 1000)))

	lsb8 := newLSB(t, HeaderWidth8)
	assert.Equal(t, 31, lsb8.CalculateCapacity(make([]byte, 4096)))
}
