package wire

import (
	"bytes"
	"errors"
	"math"
	"testing"
)

func TestFrameEncodeDecode(t *testing.T) {
	tests := []struct {
		name  string
		frame Frame
	}{
		{"request_empty_payload", Frame{ID: 0x01, Token: 1}},
		{"request_small_token", Frame{ID: 0x02, Token: 42, Payload: []byte("ping")}},
		{"request_two_byte_token", Frame{ID: 0x03, Token: 300, Payload: []byte{0xDE, 0xAD}}},
		{"response", Frame{ID: 0x02, Flags: FlagResponse, Token: 42, Payload: []byte("pong")}},
		{"error_response", Frame{ID: 0x02, Flags: FlagResponse | FlagError, Token: 7, Payload: []byte("boom")}},
		{"max_token", Frame{ID: 0xFF, Flags: FlagResponse, Token: math.MaxUint64, Payload: []byte("x")}},
		{"zero_id", Frame{ID: 0x00, Token: 9}},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			data := tc.frame.Encode()

			got, err := DecodeFrame(data)
			if err != nil {
				t.Fatalf("DecodeFrame: %v", err)
			}
			if got.ID != tc.frame.ID {
				t.Errorf("ID = %#x, want %#x", got.ID, tc.frame.ID)
			}
			if got.Flags != tc.frame.Flags {
				t.Errorf("Flags = %#x, want %#x", got.Flags, tc.frame.Flags)
			}
			if got.Token != tc.frame.Token {
				t.Errorf("Token = %d, want %d", got.Token, tc.frame.Token)
			}
			if !bytes.Equal(got.Payload, tc.frame.Payload) {
				t.Errorf("Payload = %v, want %v", got.Payload, tc.frame.Payload)
			}
		})
	}
}

func TestFrameEncodeLayout(t *testing.T) {
	// Fixed frame, fixed bytes: the layout is a compatibility contract.
	f := Frame{ID: 0x07, Flags: FlagResponse | FlagError, Token: 300, Payload: []byte("no")}
	want := []byte{0x07, 0x03, 0xAC, 0x02, 'n', 'o'}

	if got := f.Encode(); !bytes.Equal(got, want) {
		t.Errorf("Encode() = % x, want % x", got, want)
	}
}

func TestDecodeFrameErrors(t *testing.T) {
	tests := []struct {
		name string
		data []byte
		want error
	}{
		{"nil", nil, ErrShortFrame},
		{"empty", []byte{}, ErrShortFrame},
		{"id_only", []byte{0x01}, ErrShortFrame},
		{"missing_token", []byte{0x01, 0x00}, ErrTokenTruncated},
		{"truncated_token", []byte{0x01, 0x00, 0x80, 0x80}, ErrTokenTruncated},
		{
			"token_overflow",
			append([]byte{0x01, 0x00}, bytes.Repeat([]byte{0x80}, 11)...),
			ErrTokenOverflow,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := DecodeFrame(tc.data)
			if !errors.Is(err, tc.want) {
				t.Errorf("DecodeFrame(% x) error = %v, want %v", tc.data, err, tc.want)
			}
		})
	}
}

func TestDecodeHeader(t *testing.T) {
	f := Frame{ID: 0x2A, Flags: FlagResponse, Token: 99, Payload: []byte("abc")}
	data := f.Encode()

	id, flags, err := DecodeHeader(data)
	if err != nil {
		t.Fatalf("DecodeHeader: %v", err)
	}
	if id != f.ID || flags != f.Flags {
		t.Errorf("DecodeHeader = (%#x, %#x), want (%#x, %#x)", id, flags, f.ID, f.Flags)
	}

	// Header peek must agree with the full decode.
	full, err := DecodeFrame(data)
	if err != nil {
		t.Fatalf("DecodeFrame: %v", err)
	}
	if full.ID != id || full.Flags != flags {
		t.Errorf("DecodeFrame header (%#x, %#x) disagrees with DecodeHeader (%#x, %#x)",
			full.ID, full.Flags, id, flags)
	}

	if _, _, err := DecodeHeader([]byte{0x01}); !errors.Is(err, ErrShortFrame) {
		t.Errorf("DecodeHeader(short) error = %v, want ErrShortFrame", err)
	}
}

func TestDecodeFrameCopiesPayload(t *testing.T) {
	orig := Frame{ID: 0x01, Token: 1, Payload: []byte("stay")}
	data := orig.Encode()

	f, err := DecodeFrame(data)
	if err != nil {
		t.Fatalf("DecodeFrame: %v", err)
	}

	for i := range data {
		data[i] = 0xFF
	}
	if string(f.Payload) != "stay" {
		t.Errorf("payload changed after input reuse: %q", f.Payload)
	}
}

func TestFrameConstructors(t *testing.T) {
	req := Request(0x05, 11, []byte("in"))
	if req.IsResponse() || req.IsError() {
		t.Errorf("Request frame flags = %#x, want none set", req.Flags)
	}

	rep := Response(0x05, 11, []byte("out"))
	if !rep.IsResponse() || rep.IsError() {
		t.Errorf("Response frame flags = %#x, want response only", rep.Flags)
	}

	fail := ErrorResponse(0x05, 11, "handler failed")
	if !fail.IsResponse() || !fail.IsError() {
		t.Errorf("ErrorResponse frame flags = %#x, want response|error", fail.Flags)
	}
	if string(fail.Payload) != "handler failed" {
		t.Errorf("ErrorResponse payload = %q", fail.Payload)
	}
}

func TestFlagsHas(t *testing.T) {
	fl := FlagResponse | FlagError
	if !fl.Has(FlagResponse) || !fl.Has(FlagError) {
		t.Error("Has should report set bits")
	}
	if Flags(0).Has(FlagResponse) {
		t.Error("Has on zero flags should be false")
	}
}

func BenchmarkFrameEncode(b *testing.B) {
	f := Frame{ID: 0x02, Flags: FlagResponse, Token: 123456, Payload: make([]byte, 128)}
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = f.Encode()
	}
}

func BenchmarkDecodeFrame(b *testing.B) {
	f := Frame{ID: 0x02, Flags: FlagResponse, Token: 123456, Payload: make([]byte, 128)}
	data := f.Encode()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_, _ = DecodeFrame(data)
	}
}
