// Package stego to implement LSB framing over raw sample buffers.
//
// A frame is a fixed-width big-endian length header (the payload size in
// bits) followed by the payload bits, most significant bit first. Each frame
// bit is stored in the parity of one carrier byte, in buffer order, starting
// at offset 0.
package stego

import (
	"io"

	"image-steganography/models"

	"github.com/sirupsen/logrus"
)

type LSBSteganography struct {
	width  HeaderWidth
	logger logrus.FieldLogger
}

// NewLSBSteganography validates the header width from config. A nil logger
// discards all events.
func NewLSBSteganography(config *models.StegoConfig, logger logrus.FieldLogger) (*LSBSteganography, error) {
	width := HeaderWidth32
	if config != nil && config.HeaderWidth != 0 {
		width = HeaderWidth(config.HeaderWidth)
	}
	if err := width.Validate(); err != nil {
		return nil, err
	}

	if logger == nil {
		discard := logrus.New()
		discard.SetOutput(io.Discard)
		logger = discard
	}

	return &LSBSteganography{
		width:  width,
		logger: logger.WithField("header_width", int(width)),
	}, nil
}

func (lsb *LSBSteganography) HeaderWidth() HeaderWidth {
	return lsb.width
}

// CalculateCapacity returns the largest payload, in bytes, that fits in pixels.
func (lsb *LSBSteganography) CalculateCapacity(pixels []byte) int {
	free := len(pixels) - int(lsb.width)
	if free <= 0 {
		return 0
	}
	capacity := uint64(free / 8)
	if limit := lsb.width.maxBits() / 8; capacity > limit {
		capacity = limit
	}
	return int(capacity)
}

// Embed writes payload into a copy of pixels. Every touched byte moves by at
// most one so that its parity matches the frame bit; bytes past the frame keep
// their value. pixels itself is never modified.
func (lsb *LSBSteganography) Embed(pixels []byte, payload []byte) ([]byte, error) {
	frame, err := BuildFrame(payload, lsb.width)
	if err != nil {
		return nil, err
	}

	if len(frame) > len(pixels) {
		lsb.logger.WithFields(logrus.Fields{
			"frame_bits":    len(frame),
			"capacity_bits": len(pixels),
		}).Warn("payload does not fit carrier")
		return nil, &CapacityError{Required: len(frame), Available: len(pixels)}
	}

	stegoPixels := make([]byte, len(pixels))
	copy(stegoPixels, pixels)

	changed := 0
	for i, bit := range frame {
		switch {
		case bit == 1 && stegoPixels[i]%2 == 0:
			stegoPixels[i]++
			changed++
		case bit == 0 && stegoPixels[i]%2 == 1:
			stegoPixels[i]--
			changed++
		}
	}

	lsb.logger.WithFields(logrus.Fields{
		"payload_bytes": len(payload),
		"frame_bits":    len(frame),
		"capacity_bits": len(pixels),
		"changed_bytes": changed,
	}).Debug("payload embedded")

	return stegoPixels, nil
}

// Extract reads the header from the start of pixels and returns the payload
// it describes. There is no checksum: a buffer that was never embedded into
// but happens to carry a plausible length yields garbage, not an error.
func (lsb *LSBSteganography) Extract(pixels []byte) ([]byte, error) {
	payloadBits, remainder, err := ParseHeader(pixels, lsb.width)
	if err != nil {
		return nil, err
	}

	if payloadBits > uint64(len(remainder)) {
		lsb.logger.WithFields(logrus.Fields{
			"claimed_bits":  payloadBits,
			"capacity_bits": len(remainder),
		}).Warn("header claims more bits than carrier holds")
		return nil, &ExtractionError{Claimed: payloadBits, Available: len(remainder)}
	}

	payload := BitsToBytes(ExtractLSB(remainder[:payloadBits]))

	lsb.logger.WithFields(logrus.Fields{
		"payload_bits":  payloadBits,
		"payload_bytes": len(payload),
	}).Debug("payload extracted")

	return payload, nil
}
