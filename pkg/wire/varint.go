package wire

import "errors"

// MaxVarintLen bounds the encoded size of a uint64: seven payload bits
// per byte, so ten bytes cover all sixty-four.
const MaxVarintLen = 10

// Varint decode failures.
var (
	ErrVarintTruncated = errors.New("wire: varint truncated")
	ErrVarintOverflow  = errors.New("wire: varint overflow")
)

// EncodeUvarint writes v into buf as a base-128 varint, least
// significant group first, high bit marking continuation. buf must
// have MaxVarintLen bytes of room. Returns the encoded width.
func EncodeUvarint(buf []byte, v uint64) int {
	i := 0
	for v >= 0x80 {
		buf[i] = byte(v) | 0x80
		v >>= 7
		i++
	}
	buf[i] = byte(v)
	return i + 1
}

// DecodeUvarint reads one varint from the front of buf and reports the
// width it consumed. A buffer that ends mid-varint yields
// ErrVarintTruncated; a varint wider than MaxVarintLen yields
// ErrVarintOverflow.
func DecodeUvarint(buf []byte) (uint64, int, error) {
	var v uint64
	var shift uint

	for i, b := range buf {
		if i >= MaxVarintLen {
			return 0, 0, ErrVarintOverflow
		}
		v |= uint64(b&0x7F) << shift
		if b < 0x80 {
			return v, i + 1, nil
		}
		shift += 7
	}
	return 0, 0, ErrVarintTruncated
}

// UvarintLen reports the encoded width of v.
func UvarintLen(v uint64) int {
	n := 1
	for v >= 0x80 {
		n++
		v >>= 7
	}
	return n
}
