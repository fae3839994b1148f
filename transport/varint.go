package transport

// QUIC variable-length integer encoding (VLIE).
// The two most significant bits of the first byte encode the length of the
// value: 00 = 1 byte, 01 = 2 bytes, 10 = 4 bytes, 11 = 8 bytes. The
// remaining 6, 14, 30 or 62 bits hold the value itself, big-endian.

const maxVarint = (uint64(1) << 62) - 1

// varintLen returns the number of bytes encode(n) would occupy.
func varintLen(n uint64) int {
	switch {
	case n <= 63:
		return 1
	case n <= 16383:
		return 2
	case n <= 1073741823:
		return 4
	default:
		return 8
	}
}

// putVarint appends the VLIE encoding of n to b and returns the extended
// slice. It panics if n exceeds the 62-bit range; callers must not build
// values outside that range.
func putVarint(b []byte, n uint64) []byte {
	if n > maxVarint {
		panic("varint value too large")
	}
	switch {
	case n <= 63:
		return append(b, byte(n))
	case n <= 16383:
		return append(b, byte(n>>8)|0x40, byte(n))
	case n <= 1073741823:
		return append(b, byte(n>>24)|0x80, byte(n>>16), byte(n>>8), byte(n))
	default:
		return append(b, byte(n>>56)|0xc0, byte(n>>48), byte(n>>40), byte(n>>32),
			byte(n>>24), byte(n>>16), byte(n>>8), byte(n))
	}
}

// getVarint decodes a VLIE integer from the start of b into *out and
// returns the number of bytes consumed, or 0 if b is too short.
func getVarint(b []byte, out *uint64) int {
	if len(b) == 0 {
		return 0
	}
	ln := 1 << (b[0] >> 6)
	if len(b) < ln {
		return 0
	}
	v := uint64(b[0] & 0x3f)
	for i := 1; i < ln; i++ {
		v = v<<8 | uint64(b[i])
	}
	*out = v
	return ln
}
