package wire

import "errors"

// HeaderSize is the fixed prefix of every frame: identifier and flags.
// The token that follows is variable length.
const HeaderSize = 2

// ID identifies a message kind. It is only meaningful relative to the
// catalog both peers agreed on out of band.
type ID uint8

// Flags qualify how a frame is interpreted.
type Flags uint8

const (
	// FlagResponse marks a frame that resolves an earlier request. Frames
	// without it are requests.
	FlagResponse Flags = 0x01

	// FlagError marks a response whose payload is UTF-8 failure text
	// instead of an encoded reply value. Only meaningful together with
	// FlagResponse.
	FlagError Flags = 0x02
)

// Has returns true if the flags contain the specified flag.
func (fl Flags) Has(flag Flags) bool {
	return fl&flag != 0
}

// Token correlates a response with the request that caused it. Zero is
// reserved and never appears on the wire.
type Token uint64

// Frame decoding errors.
var (
	ErrShortFrame     = errors.New("wire: frame shorter than header")
	ErrTokenTruncated = errors.New("wire: token varint truncated")
	ErrTokenOverflow  = errors.New("wire: token varint overflow")
)

// Frame is the envelope carried by one transport message.
//
// Wire format (2 fixed bytes + varint token + payload):
//
//	┌────────────┬────────────┬─────────────────────┬──────────────────┐
//	│ ID         │ Flags      │ Token               │ Payload          │
//	│ (1 byte)   │ (1 byte)   │ (uvarint, 1-10 B)   │ (rest of frame)  │
//	└────────────┴────────────┴─────────────────────┴──────────────────┘
type Frame struct {
	ID      ID
	Flags   Flags
	Token   Token
	Payload []byte
}

// Request builds a request frame for the given message kind.
func Request(id ID, token Token, payload []byte) *Frame {
	return &Frame{ID: id, Token: token, Payload: payload}
}

// Response builds the frame that resolves the request carrying token.
func Response(id ID, token Token, payload []byte) *Frame {
	return &Frame{ID: id, Flags: FlagResponse, Token: token, Payload: payload}
}

// ErrorResponse builds the frame that fails the request carrying token.
// The text travels as the payload, UTF-8 encoded.
func ErrorResponse(id ID, token Token, text string) *Frame {
	return &Frame{ID: id, Flags: FlagResponse | FlagError, Token: token, Payload: []byte(text)}
}

// IsResponse reports whether the frame resolves an earlier request.
func (f *Frame) IsResponse() bool {
	return f.Flags.Has(FlagResponse)
}

// IsError reports whether the frame carries failure text as its payload.
func (f *Frame) IsError() bool {
	return f.Flags.Has(FlagError)
}

// Encode encodes the frame to bytes including the header and token.
func (f *Frame) Encode() []byte {
	buf := make([]byte, HeaderSize+UvarintLen(uint64(f.Token))+len(f.Payload))
	buf[0] = byte(f.ID)
	buf[1] = byte(f.Flags)
	n := EncodeUvarint(buf[HeaderSize:], uint64(f.Token))
	copy(buf[HeaderSize+n:], f.Payload)
	return buf
}

// DecodeFrame decodes a frame from one transport message. The payload is
// copied, so the frame stays valid after the input buffer is reused.
func DecodeFrame(data []byte) (*Frame, error) {
	if len(data) < HeaderSize {
		return nil, ErrShortFrame
	}

	token, n, err := DecodeUvarint(data[HeaderSize:])
	if err != nil {
		if errors.Is(err, ErrVarintOverflow) {
			return nil, ErrTokenOverflow
		}
		return nil, ErrTokenTruncated
	}

	payload := make([]byte, len(data)-HeaderSize-n)
	copy(payload, data[HeaderSize+n:])

	return &Frame{
		ID:      ID(data[0]),
		Flags:   Flags(data[1]),
		Token:   Token(token),
		Payload: payload,
	}, nil
}

// DecodeHeader decodes just the identifier and flags, leaving the token
// unparsed. Dispatchers use it to vet the identifier against the catalog
// before spending any further decode work on the frame.
func DecodeHeader(data []byte) (ID, Flags, error) {
	if len(data) < HeaderSize {
		return 0, 0, ErrShortFrame
	}
	return ID(data[0]), Flags(data[1]), nil
}
