// Package codec defines how typed message values become payload bytes and
// come back again.
//
// A Codec pairs an Encode and a Decode function for one Go type. Peers never
// interpret payloads themselves; every request and reply type registered in
// a catalog brings its own codec, and the two sides must agree on it the
// same way they agree on message identifiers.
//
// Built-ins cover the common shapes: Unit for messages that carry nothing,
// Raw and String for opaque bytes and text, Pointer for optional values,
// Binary for types that marshal themselves, and CBOR and Proto for
// structured payloads.
//
// Decode must account for hostile input: every built-in returns an error for
// bytes it cannot interpret and never panics.
package codec

import "fmt"

// Codec converts values of type T to and from payload bytes.
//
// Encode and Decode must be inverses: any value Encode accepts must come
// back equal from Decode. Both may fail; neither may panic on adversarial
// input.
type Codec[T any] struct {
	Encode func(T) ([]byte, error)
	Decode func([]byte) (T, error)
}

// DecodeError reports a payload that does not decode as the expected type.
type DecodeError struct {
	Type string // Go type or shape that was expected
	Err  error  // underlying cause
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("codec: decode %s: %v", e.Type, e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

func decodeErr[T any](err error) (T, error) {
	var zero T
	return zero, &DecodeError{Type: fmt.Sprintf("%T", zero), Err: err}
}
