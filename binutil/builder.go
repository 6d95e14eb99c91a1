package binutil

// Builder is a scoped, fluent byte-buffer builder. It accumulates writes
// and yields a finalized Buffer; there is no separate release step beyond
// letting the Builder go out of scope.
type Builder struct {
	buf []byte
}

// NewBuilder returns an empty Builder.
func NewBuilder() *Builder {
	return &Builder{}
}

// NewBuilderCap returns an empty Builder with capacity pre-reserved.
func NewBuilderCap(capacity int) *Builder {
	return &Builder{buf: make([]byte, 0, capacity)}
}

// Len returns the number of bytes written so far.
func (w *Builder) Len() int { return len(w.buf) }

// WriteByte appends a single byte.
func (w *Builder) WriteByte(v byte) *Builder {
	w.buf = append(w.buf, v)
	return w
}

// WriteBytes appends a raw byte slice.
func (w *Builder) WriteBytes(b []byte) *Builder {
	w.buf = append(w.buf, b...)
	return w
}

// WriteBuffer appends the contents of a Buffer.
func (w *Builder) WriteBuffer(b Buffer) *Builder {
	w.buf = append(w.buf, b.Bytes()...)
	return w
}

// WriteString appends the bytes of s verbatim (no encoding applied).
func (w *Builder) WriteString(s string) *Builder {
	w.buf = append(w.buf, s...)
	return w
}

// WriteUint16BE appends v as big-endian.
func (w *Builder) WriteUint16BE(v uint16) *Builder {
	return w.WriteBytes([]byte{byte(v >> 8), byte(v)})
}

// WriteUint16LE appends v as little-endian.
func (w *Builder) WriteUint16LE(v uint16) *Builder {
	return w.WriteBytes([]byte{byte(v), byte(v >> 8)})
}

// WriteUint24BE appends the low 24 bits of v as big-endian.
func (w *Builder) WriteUint24BE(v uint32) *Builder {
	return w.WriteBytes([]byte{byte(v >> 16), byte(v >> 8), byte(v)})
}

// WriteUint24LE appends the low 24 bits of v as little-endian.
func (w *Builder) WriteUint24LE(v uint32) *Builder {
	return w.WriteBytes([]byte{byte(v), byte(v >> 8), byte(v >> 16)})
}

// WriteUint32BE appends v as big-endian.
func (w *Builder) WriteUint32BE(v uint32) *Builder {
	return w.WriteBytes([]byte{byte(v >> 24), byte(v >> 16), byte(v >> 8), byte(v)})
}

// WriteUint32LE appends v as little-endian.
func (w *Builder) WriteUint32LE(v uint32) *Builder {
	return w.WriteBytes([]byte{byte(v), byte(v >> 8), byte(v >> 16), byte(v >> 24)})
}

// WriteUint64BE appends v as big-endian.
func (w *Builder) WriteUint64BE(v uint64) *Builder {
	b := make([]byte, 8)
	for i := 7; i >= 0; i-- {
		b[i] = byte(v)
		v >>= 8
	}
	return w.WriteBytes(b)
}

// WriteSyncsafe28 appends v (must be < 1<<28) as a 28-bit syncsafe
// big-endian integer.
func (w *Builder) WriteSyncsafe28(v uint32) *Builder {
	return w.WriteBytes([]byte{
		byte((v >> 21) & 0x7F),
		byte((v >> 14) & 0x7F),
		byte((v >> 7) & 0x7F),
		byte(v & 0x7F),
	})
}

// Bytes finalizes the builder into a Buffer. The Builder may continue to
// be used afterwards; the returned Buffer is a snapshot copy.
func (w *Builder) Bytes() Buffer {
	out := make([]byte, len(w.buf))
	copy(out, w.buf)
	return New(out)
}
