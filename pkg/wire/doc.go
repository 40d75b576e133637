// Package wire defines the byte-level envelope that carries every message
// exchanged between two tandem peers, plus the binary primitives payload
// codecs build on.
//
// # Envelope Layout
//
// A frame is a single transport message. The transport owns message
// boundaries and encryption; the envelope owns routing and correlation:
//
//	┌────────────┬────────────┬─────────────────────┬──────────────────┐
//	│ ID         │ Flags      │ Token               │ Payload          │
//	│ (1 byte)   │ (1 byte)   │ (uvarint, 1-10 B)   │ (rest of frame)  │
//	└────────────┴────────────┴─────────────────────┴──────────────────┘
//
// ID names the message kind and is only meaningful against a catalog both
// peers share. Flags carry two bits: FlagResponse marks a frame that
// resolves an earlier request, and FlagError marks a response whose payload
// is UTF-8 failure text rather than an encoded reply value. The token is a
// base-128 varint (7 data bits per byte, high bit set on continuation
// bytes, least significant group first); token zero is reserved and never
// emitted. Everything after the token is the payload, opaque at this layer.
//
// # Decoding Discipline
//
// DecodeHeader reads only the first two bytes so a dispatcher can vet the
// identifier before paying for token parsing; DecodeFrame parses the whole
// envelope. Both fail with sentinel errors (ErrShortFrame,
// ErrTokenTruncated, ErrTokenOverflow) and never panic, whatever the input.
//
// # Payload Primitives
//
// Encoder and Decoder provide the append-based writer and bounds-checked
// reader used by structured payload types. Length-prefixed reads are capped
// at DefaultMaxAllocation so a hostile length prefix cannot force a huge
// allocation.
package wire
