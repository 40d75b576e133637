package wire

import (
	"bytes"
	"errors"
	"math"
	"testing"
)

func TestEncodeDecodeUvarint(t *testing.T) {
	tests := []struct {
		name  string
		value uint64
		bytes int // expected encoded length
	}{
		{"zero", 0, 1},
		{"one", 1, 1},
		{"max_1byte", 127, 1},
		{"min_2byte", 128, 2},
		{"max_2byte", 16383, 2},
		{"min_3byte", 16384, 3},
		{"medium", 1000000, 3},
		{"large", 1 << 28, 5},
		{"max_uint32", math.MaxUint32, 5},
		{"max_uint64", math.MaxUint64, 10},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			buf := make([]byte, MaxVarintLen)
			n := EncodeUvarint(buf, tc.value)

			if n != tc.bytes {
				t.Errorf("EncodeUvarint(%d) = %d bytes, want %d", tc.value, n, tc.bytes)
			}

			decoded, read, err := DecodeUvarint(buf[:n])
			if err != nil {
				t.Fatalf("DecodeUvarint: %v", err)
			}
			if read != n {
				t.Errorf("DecodeUvarint read %d bytes, want %d", read, n)
			}
			if decoded != tc.value {
				t.Errorf("DecodeUvarint = %d, want %d", decoded, tc.value)
			}
		})
	}
}

func TestUvarintLen(t *testing.T) {
	tests := []struct {
		value    uint64
		expected int
	}{
		{0, 1},
		{127, 1},
		{128, 2},
		{16383, 2},
		{16384, 3},
		{math.MaxUint32, 5},
		{math.MaxUint64, 10},
	}

	for _, tc := range tests {
		got := UvarintLen(tc.value)
		if got != tc.expected {
			t.Errorf("UvarintLen(%d) = %d, want %d", tc.value, got, tc.expected)
		}

		// Verify against actual encoding
		buf := make([]byte, MaxVarintLen)
		actual := EncodeUvarint(buf, tc.value)
		if got != actual {
			t.Errorf("UvarintLen(%d) = %d, but EncodeUvarint wrote %d bytes", tc.value, got, actual)
		}
	}
}

func TestDecodeUvarintErrors(t *testing.T) {
	tests := []struct {
		name string
		data []byte
		want error
	}{
		{"empty", []byte{}, ErrVarintTruncated},
		{"incomplete", []byte{0x80, 0x80, 0x80}, ErrVarintTruncated},
		{"overflow", bytes.Repeat([]byte{0x80}, 11), ErrVarintOverflow},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, _, err := DecodeUvarint(tc.data)
			if !errors.Is(err, tc.want) {
				t.Errorf("DecodeUvarint(% x) error = %v, want %v", tc.data, err, tc.want)
			}
		})
	}
}

func TestDecodeUvarintIgnoresTrailing(t *testing.T) {
	// A varint followed by more data decodes the varint and reports its width.
	buf := []byte{0x96, 0x01, 0xFF, 0xFF}
	v, n, err := DecodeUvarint(buf)
	if err != nil {
		t.Fatalf("DecodeUvarint: %v", err)
	}
	if v != 150 || n != 2 {
		t.Errorf("DecodeUvarint = (%d, %d), want (150, 2)", v, n)
	}
}

func BenchmarkEncodeUvarint(b *testing.B) {
	buf := make([]byte, MaxVarintLen)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		EncodeUvarint(buf, uint64(i))
	}
}

func BenchmarkDecodeUvarint(b *testing.B) {
	buf := make([]byte, MaxVarintLen)
	EncodeUvarint(buf, 12345678)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		DecodeUvarint(buf)
	}
}
