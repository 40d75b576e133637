package codec

import "errors"

var errNotEmpty = errors.New("unit payload must be empty")

// Unit is the codec for messages that transmit no information. The payload
// is always empty; a non-empty payload fails to decode.
var Unit = Codec[struct{}]{
	Encode: func(struct{}) ([]byte, error) {
		return nil, nil
	},
	Decode: func(data []byte) (struct{}, error) {
		if len(data) != 0 {
			return decodeErr[struct{}](errNotEmpty)
		}
		return struct{}{}, nil
	},
}

// Raw passes payload bytes through untouched, for messages whose payload is
// already wire-shaped. Encode and Decode share the input's underlying
// array; callers that reuse buffers should copy first.
var Raw = Codec[[]byte]{
	Encode: func(b []byte) ([]byte, error) {
		return b, nil
	},
	Decode: func(data []byte) ([]byte, error) {
		return data, nil
	},
}

// String treats the whole payload as UTF-8 text.
var String = Codec[string]{
	Encode: func(s string) ([]byte, error) {
		return []byte(s), nil
	},
	Decode: func(data []byte) (string, error) {
		return string(data), nil
	},
}
