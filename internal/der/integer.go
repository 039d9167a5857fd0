package der

// DecodeUint31 decodes an INTEGER's content bytes as an unsigned value in
// 0..2^31-1: concatenate up to 4 bytes big-endian and mask off the sign
// bit. Longer encodings are rejected as malformed; this mirrors the
// wire's messageID, which is constrained to 1..2^31-1.
func DecodeUint31(content Cursor) (uint32, error) {
	b := content.Bytes()
	if len(b) == 0 || len(b) > 4 {
		return 0, ErrInvalidInteger
	}
	var v uint32
	for _, c := range b {
		v = v<<8 | uint32(c)
	}
	return v &^ (1 << 31), nil
}

// EncodeMinimalInt appends the minimal big-endian two's-complement INTEGER
// content bytes for a non-negative value (the library encodes messageIDs,
// which are always non-negative on the wire once the endpoint-local high
// bit has been stripped, and the synthesized resultCode 0). Appends directly into dst
// rather than allocating a fresh buffer.
func EncodeMinimalInt(dst []byte, v uint32) []byte {
	switch {
	case v == 0:
		return append(dst, 0x00)
	case v < 0x80:
		return append(dst, byte(v))
	case v < 0x8000:
		return append(dst, byte(v>>8), byte(v))
	case v < 0x800000:
		return append(dst, byte(v>>16), byte(v>>8), byte(v))
	case v < 0x80000000:
		return append(dst, byte(v>>24), byte(v>>16), byte(v>>8), byte(v))
	default:
		return append(dst, 0x00, byte(v>>24), byte(v>>16), byte(v>>8), byte(v))
	}
}

// MinimalIntLen returns len(EncodeMinimalInt(nil, v)) without allocating.
// DefaultEncoder does not call it: it has no sizing pass and builds each
// frame by appending.
func MinimalIntLen(v uint32) int {
	switch {
	case v < 0x80:
		return 1
	case v < 0x8000:
		return 2
	case v < 0x800000:
		return 3
	case v < 0x80000000:
		return 4
	default:
		return 5
	}
}

// AppendLength appends the DER length-prefix encoding of n: short form for
// n < 0x80, long form (0x80|k followed by k big-endian octets, k in 1..4)
// otherwise.
func AppendLength(dst []byte, n int) []byte {
	if n < 0x80 {
		return append(dst, byte(n))
	}
	k := lengthOctets(n)
	dst = append(dst, 0x80|byte(k))
	for i := k - 1; i >= 0; i-- {
		dst = append(dst, byte(n>>(8*i)))
	}
	return dst
}

// LengthPrefixLen returns the number of bytes AppendLength would emit for
// n, as a dry run. DefaultEncoder does not call it: it has no sizing pass
// and builds each frame by appending.
func LengthPrefixLen(n int) int {
	if n < 0x80 {
		return 1
	}
	return 1 + lengthOctets(n)
}

func lengthOctets(n int) int {
	k := 1
	for v := n >> 8; v > 0; v >>= 8 {
		k++
	}
	return k
}
