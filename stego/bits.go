package stego

// ByteToBits returns the 8 bits of b, most significant bit first.
func ByteToBits(b byte) []uint8 {
	bits := make([]uint8, 8)
	for i := range 8 {
		bits[i] = (b >> (7 - i)) & 1
	}
	return bits
}

// BitsToByte folds exactly 8 bits, most significant first, back into a byte.
// Any other length is a programming error.
func BitsToByte(bits []uint8) byte {
	if len(bits) != 8 {
		panic("stego: BitsToByte needs exactly 8 bits")
	}
	var b byte
	for i := range 8 {
		b = (b << 1) | (bits[i] & 1)
	}
	return b
}

func BytesToBits(data []byte) []uint8 {
	bits := make([]uint8, 0, len(data)*8)
	for _, b := range data {
		for i := 7; i >= 0; i-- {
			bits = append(bits, (b>>i)&1)
		}
	}
	return bits
}

// BitsToBytes regroups bits into bytes. A trailing group shorter than 8 bits
// is dropped.
func BitsToBytes(bits []uint8) []byte {
	out := make([]byte, 0, len(bits)/8)
	for i := 0; i+8 <= len(bits); i += 8 {
		out = append(out, BitsToByte(bits[i:i+8]))
	}
	return out
}

// ExtractLSB reads the parity of every carrier byte.
func ExtractLSB(buffer []byte) []uint8 {
	bits := make([]uint8, len(buffer))
	for i, b := range buffer {
		bits[i] = b % 2
	}
	return bits
}

// LengthHeaderBits encodes n big-endian into width bits. n must be below
// 2^width; BuildFrame checks that before calling.
func LengthHeaderBits(n uint64, width HeaderWidth) []uint8 {
	w := int(width)
	bits := make([]uint8, w)
	for i := range w {
		bits[i] = uint8((n >> (w - 1 - i)) & 1)
	}
	return bits
}

func headerValue(bits []uint8) uint64 {
	var n uint64
	for _, bit := range bits {
		n = (n << 1) | uint64(bit&1)
	}
	return n
}
