package wire

import (
	"bytes"
	"testing"
)

// FuzzDecodeUvarint tests that decoding arbitrary bytes doesn't panic.
func FuzzDecodeUvarint(f *testing.F) {
	// Seed with valid varints
	f.Add([]byte{0x00})
	f.Add([]byte{0x7F})
	f.Add([]byte{0x80, 0x01})
	f.Add([]byte{0xFF, 0x7F})
	f.Add([]byte{0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0xFF, 0x01})

	f.Fuzz(func(t *testing.T, data []byte) {
		v, n, err := DecodeUvarint(data)
		if err == nil {
			// Whatever decoded must re-encode into the bytes consumed,
			// unless the input used a non-minimal encoding.
			if UvarintLen(v) > n {
				t.Errorf("UvarintLen(%d) = %d > consumed %d", v, UvarintLen(v), n)
			}
		}
	})
}

// FuzzDecodeFrame tests that decoding arbitrary bytes doesn't panic.
func FuzzDecodeFrame(f *testing.F) {
	// Seed with valid frames
	ping := Request(0x01, 1, nil)
	f.Add(ping.Encode())

	reply := Response(0x02, 42, []byte("pong"))
	f.Add(reply.Encode())

	fail := ErrorResponse(0x02, 300, "bad input")
	f.Add(fail.Encode())

	f.Fuzz(func(t *testing.T, data []byte) {
		// Should not panic
		_, _ = DecodeFrame(data)
	})
}

// FuzzFrameRoundTrip tests that every constructible frame survives
// encode/decode unchanged.
func FuzzFrameRoundTrip(f *testing.F) {
	f.Add(uint8(0x01), uint8(0), uint64(1), []byte(nil))
	f.Add(uint8(0x02), uint8(FlagResponse), uint64(42), []byte("pong"))
	f.Add(uint8(0xFF), uint8(FlagResponse|FlagError), uint64(1)<<63, []byte("text"))

	f.Fuzz(func(t *testing.T, id uint8, flags uint8, token uint64, payload []byte) {
		in := Frame{ID: ID(id), Flags: Flags(flags), Token: Token(token), Payload: payload}

		out, err := DecodeFrame(in.Encode())
		if err != nil {
			t.Fatalf("DecodeFrame(Encode()): %v", err)
		}
		if out.ID != in.ID || out.Flags != in.Flags || out.Token != in.Token {
			t.Errorf("header mismatch: got (%#x %#x %d), want (%#x %#x %d)",
				out.ID, out.Flags, out.Token, in.ID, in.Flags, in.Token)
		}
		if !bytes.Equal(out.Payload, in.Payload) {
			t.Errorf("payload mismatch: got %v, want %v", out.Payload, in.Payload)
		}
	})
}

// FuzzRoundTrip tests that encoding and decoding produces the same result.
func FuzzRoundTrip(f *testing.F) {
	f.Add("hello world", uint64(42), []byte{0x01, 0x02})

	f.Fuzz(func(t *testing.T, s string, u uint64, b []byte) {
		e := NewEncoder()
		e.WriteString(s)
		e.WriteUvarint(u)
		e.WriteLenBytes(b)

		d := NewDecoder(e.Bytes())
		gotS, err := d.ReadString()
		if err != nil {
			return // Invalid input, that's fine
		}
		gotU, err := d.ReadUvarint()
		if err != nil {
			return
		}
		gotB, err := d.ReadLenBytes()
		if err != nil {
			return
		}

		if gotS != s {
			t.Errorf("String: got %q, want %q", gotS, s)
		}
		if gotU != u {
			t.Errorf("Uvarint: got %d, want %d", gotU, u)
		}
		if !bytes.Equal(gotB, b) {
			t.Errorf("LenBytes: got %v, want %v", gotB, b)
		}
	})
}
