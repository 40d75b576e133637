package codec

import "google.golang.org/protobuf/proto"

// messagePtr constrains PT to be *T implementing proto.Message.
type messagePtr[T any] interface {
	*T
	proto.Message
}

// Proto encodes generated protobuf messages. The codec's value type is the
// pointer form, as protobuf APIs expect: Proto[pb.Thing]() yields a
// Codec[*pb.Thing].
func Proto[T any, PT messagePtr[T]]() Codec[PT] {
	return Codec[PT]{
		Encode: func(m PT) ([]byte, error) {
			return proto.Marshal(m)
		},
		Decode: func(data []byte) (PT, error) {
			m := PT(new(T))
			if err := proto.Unmarshal(data, m); err != nil {
				return decodeErr[PT](err)
			}
			return m, nil
		},
	}
}
