package wire

// Encoder appends wire primitives to a growable buffer. A zero-value
// Encoder is not usable; construct one with NewEncoder.
type Encoder struct {
	buf []byte
}

// NewEncoder returns an encoder with a small default capacity.
func NewEncoder() *Encoder {
	return &Encoder{buf: make([]byte, 0, 256)}
}

// NewEncoderWithCap returns an encoder pre-sized for payloads whose
// length is known up front.
func NewEncoderWithCap(cap int) *Encoder {
	return &Encoder{buf: make([]byte, 0, cap)}
}

// Reset empties the encoder, keeping the underlying buffer for reuse.
func (e *Encoder) Reset() {
	e.buf = e.buf[:0]
}

// Bytes returns the accumulated encoding. The slice aliases the
// encoder's buffer and is invalidated by the next write or Reset.
func (e *Encoder) Bytes() []byte {
	return e.buf
}

// Len returns the number of bytes written so far.
func (e *Encoder) Len() int {
	return len(e.buf)
}

// WriteByte appends one byte. The buffer grows as needed, so there is
// no error to return.
func (e *Encoder) WriteByte(b byte) {
	e.buf = append(e.buf, b)
}

// WriteBytes appends b verbatim, with no length prefix.
func (e *Encoder) WriteBytes(b []byte) {
	e.buf = append(e.buf, b...)
}

// WriteUvarint appends v as a base-128 varint, the same encoding the
// frame token uses.
func (e *Encoder) WriteUvarint(v uint64) {
	var scratch [MaxVarintLen]byte
	n := EncodeUvarint(scratch[:], v)
	e.buf = append(e.buf, scratch[:n]...)
}

// WriteString appends a varint length prefix followed by the string
// bytes.
func (e *Encoder) WriteString(s string) {
	e.WriteUvarint(uint64(len(s)))
	e.buf = append(e.buf, s...)
}

// WriteLenBytes appends a varint length prefix followed by b.
func (e *Encoder) WriteLenBytes(b []byte) {
	e.WriteUvarint(uint64(len(b)))
	e.buf = append(e.buf, b...)
}

// WriteBool appends 0x01 for true, 0x00 for false. The decoder accepts
// nothing else.
func (e *Encoder) WriteBool(b bool) {
	if b {
		e.buf = append(e.buf, 0x01)
	} else {
		e.buf = append(e.buf, 0x00)
	}
}

// WriteUint16 appends v big-endian.
func (e *Encoder) WriteUint16(v uint16) {
	e.buf = append(e.buf, byte(v>>8), byte(v))
}

// WriteUint32 appends v big-endian.
func (e *Encoder) WriteUint32(v uint32) {
	e.buf = append(e.buf, byte(v>>24), byte(v>>16), byte(v>>8), byte(v))
}

// WriteUint64 appends v big-endian.
func (e *Encoder) WriteUint64(v uint64) {
	e.buf = append(e.buf,
		byte(v>>56), byte(v>>48), byte(v>>40), byte(v>>32),
		byte(v>>24), byte(v>>16), byte(v>>8), byte(v))
}
