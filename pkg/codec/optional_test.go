package codec

import (
	"bytes"
	"errors"
	"testing"
)

func TestPointerAbsent(t *testing.T) {
	opt := Pointer(String)

	data, err := opt.Encode(nil)
	if err != nil {
		t.Fatalf("Encode(nil): %v", err)
	}
	if !bytes.Equal(data, []byte{0x00}) {
		t.Errorf("Encode(nil) = % x, want 00", data)
	}

	got, err := opt.Decode(data)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if got != nil {
		t.Errorf("Decode(absent) = %v, want nil", got)
	}
}

func TestPointerPresent(t *testing.T) {
	opt := Pointer(String)

	v := "hello"
	data, err := opt.Encode(&v)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}
	if data[0] != 0x01 {
		t.Errorf("discriminator = %#02x, want 01", data[0])
	}

	got, err := opt.Decode(data)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if got == nil || *got != v {
		t.Errorf("Decode = %v, want %q", got, v)
	}
}

func TestPointerDecodeErrors(t *testing.T) {
	opt := Pointer(String)

	tests := []struct {
		name string
		in   []byte
	}{
		{"empty_input", nil},
		{"bad_discriminator", []byte{0x02}},
		{"high_discriminator", []byte{0xFF, 'x'}},
		{"trailing_after_absent", []byte{0x00, 'x'}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := opt.Decode(tc.in)
			if err == nil {
				t.Fatal("Decode succeeded, want error")
			}
			var de *DecodeError
			if !errors.As(err, &de) {
				t.Errorf("error %T, want *DecodeError", err)
			}
		})
	}
}

func TestPointerInnerErrorPropagates(t *testing.T) {
	// Unit rejects non-empty payloads; the wrapper must surface that.
	opt := Pointer(Unit)

	if _, err := opt.Decode([]byte{0x01, 0xAA}); err == nil {
		t.Error("Decode(present + junk) succeeded, want inner decode error")
	}
}

func TestPointerNested(t *testing.T) {
	// An optional optional: both layers of discriminators round-trip.
	opt := Pointer(Pointer(String))

	v := "deep"
	inner := &v
	data, err := opt.Encode(&inner)
	if err != nil {
		t.Fatalf("Encode: %v", err)
	}

	got, err := opt.Decode(data)
	if err != nil {
		t.Fatalf("Decode: %v", err)
	}
	if got == nil || *got == nil || **got != v {
		t.Errorf("Decode = %v, want %q two levels down", got, v)
	}
}
