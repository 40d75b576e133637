package codec

import "fmt"

// Optional wrapper discriminators.
const (
	absent  = 0x00
	present = 0x01
)

// Pointer wraps inner so that a nil pointer travels as a one-byte absence
// marker and a non-nil pointer as a presence marker followed by the inner
// encoding.
//
// Wire format: [0x00] for nil, [0x01] + inner bytes otherwise. An empty
// payload, a foreign discriminator, or bytes after the absence marker all
// fail to decode.
func Pointer[T any](inner Codec[T]) Codec[*T] {
	return Codec[*T]{
		Encode: func(v *T) ([]byte, error) {
			if v == nil {
				return []byte{absent}, nil
			}
			b, err := inner.Encode(*v)
			if err != nil {
				return nil, err
			}
			out := make([]byte, 1+len(b))
			out[0] = present
			copy(out[1:], b)
			return out, nil
		},
		Decode: func(data []byte) (*T, error) {
			if len(data) == 0 {
				return decodeErr[*T](fmt.Errorf("missing optional discriminator"))
			}
			switch data[0] {
			case absent:
				if len(data) > 1 {
					return decodeErr[*T](fmt.Errorf("%d trailing bytes after absence marker", len(data)-1))
				}
				return nil, nil
			case present:
				v, err := inner.Decode(data[1:])
				if err != nil {
					return nil, err
				}
				return &v, nil
			default:
				return decodeErr[*T](fmt.Errorf("invalid optional discriminator %#02x", data[0]))
			}
		},
	}
}
