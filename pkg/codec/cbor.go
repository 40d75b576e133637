package codec

import "github.com/fxamacker/cbor/v2"

// CBOR encodes T as a CBOR document. Unmarshal rejects trailing bytes, so
// the whole-payload discipline holds without extra checks.
func CBOR[T any]() Codec[T] {
	return Codec[T]{
		Encode: func(v T) ([]byte, error) {
			return cbor.Marshal(v)
		},
		Decode: func(data []byte) (T, error) {
			var v T
			if err := cbor.Unmarshal(data, &v); err != nil {
				return decodeErr[T](err)
			}
			return v, nil
		},
	}
}
