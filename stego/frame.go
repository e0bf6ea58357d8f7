package stego

import "fmt"

// HeaderWidth is the number of carrier bytes holding the payload bit length.
type HeaderWidth int

const (
	// HeaderWidth8 is the legacy short header, frames up to 255 payload bits.
	HeaderWidth8 HeaderWidth = 8
	// HeaderWidth32 is the canonical header.
	HeaderWidth32 HeaderWidth = 32
)

// Validate reports whether w is one of the supported protocol versions.
// The two widths are not interchangeable: a buffer written with one cannot be
// read with the other.
func (w HeaderWidth) Validate() error {
	switch w {
	case HeaderWidth8, HeaderWidth32:
		return nil
	default:
		return fmt.Errorf("%w: %d", ErrInvalidHeaderWidth, int(w))
	}
}

// maxBits is the largest payload bit length the header can express.
func (w HeaderWidth) maxBits() uint64 {
	return (uint64(1) << uint(w)) - 1
}

// BuildFrame prefixes the payload bits with their length.
func BuildFrame(payload []byte, width HeaderWidth) ([]uint8, error) {
	if err := width.Validate(); err != nil {
		return nil, err
	}

	payloadBits := uint64(len(payload)) * 8
	if payloadBits > width.maxBits() {
		return nil, fmt.Errorf("%w: %d bits, %d-bit header holds at most %d",
			ErrHeaderOverflow, payloadBits, int(width), width.maxBits())
	}

	frame := make([]uint8, 0, int(width)+len(payload)*8)
	frame = append(frame, LengthHeaderBits(payloadBits, width)...)
	frame = append(frame, BytesToBits(payload)...)
	return frame, nil
}

// ParseHeader decodes the payload bit length from the first width carrier
// bytes and returns the rest of the buffer.
func ParseHeader(buffer []byte, width HeaderWidth) (uint64, []byte, error) {
	if err := width.Validate(); err != nil {
		return 0, nil, err
	}
	if len(buffer) < int(width) {
		return 0, nil, &ExtractionError{Claimed: uint64(width), Available: len(buffer)}
	}

	header, remainder := buffer[:width], buffer[width:]
	return headerValue(ExtractLSB(header)), remainder, nil
}
