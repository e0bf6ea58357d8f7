package stego

import (
	"errors"
	"fmt"
)

var (
	ErrInvalidHeaderWidth = errors.New("unsupported header width")
	ErrHeaderOverflow     = errors.New("payload too long for length header")
)

// CapacityError is returned when a frame needs more carrier bytes than the
// buffer has. Both counts are in bits, one bit per carrier byte.
type CapacityError struct {
	Required  int
	Available int
}

func (e *CapacityError) Error() string {
	return fmt.Sprintf("carrier too small: frame needs %d bits, carrier holds %d", e.Required, e.Available)
}

// ExtractionError is returned when the header claims more payload bits than
// remain in the buffer.
type ExtractionError struct {
	Claimed   uint64
	Available int
}

func (e *ExtractionError) Error() string {
	return fmt.Sprintf("no valid payload: need %d bits, only %d carrier bytes available", e.Claimed, e.Available)
}
