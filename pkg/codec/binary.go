package codec

import "encoding"

// unmarshalerPtr constrains PT to be *T implementing BinaryUnmarshaler, so
// Binary can decode into a fresh T without reflection.
type unmarshalerPtr[T any] interface {
	*T
	encoding.BinaryUnmarshaler
}

// Binary adapts any type with MarshalBinary/UnmarshalBinary. The type
// parameter PT is inferred; call it as Binary[MyType]().
//
// UnmarshalBinary owns validation: it must reject truncated input and
// trailing bytes, typically by finishing its wire.Decoder explicitly.
func Binary[T encoding.BinaryMarshaler, PT unmarshalerPtr[T]]() Codec[T] {
	return Codec[T]{
		Encode: func(v T) ([]byte, error) {
			return v.MarshalBinary()
		},
		Decode: func(data []byte) (T, error) {
			var v T
			if err := PT(&v).UnmarshalBinary(data); err != nil {
				return decodeErr[T](err)
			}
			return v, nil
		},
	}
}
