package cedar

import (
	"encoding/binary"
	"io"
)

func ensureCapacity(buf []byte, minCap int) []byte {
	c := cap(buf)
	if minCap > c {
		if c < 16 {
			c = 16
		}
		for minCap > c {
			c <<= 1
		}
		old := buf
		buf = make([]byte, len(old), c)
		copy(buf, old)
	}
	return buf
}

func grow(buf []byte, n int) (int, []byte) {
	off := len(buf)
	newLen := off + n
	buf = ensureCapacity(buf, newLen)
	return off, buf[:newLen]
}

func appendRaw(buf []byte, chunk []byte) []byte {
	n := len(chunk)
	off, buf := grow(buf, n)
	copy(buf[off:], chunk)
	return buf
}

type bytesBuilder struct {
	Buf []byte
}

var _ io.Writer = (*bytesBuilder)(nil)

func newBytesBuilder(capacity int) *bytesBuilder {
	return &bytesBuilder{Buf: make([]byte, 0, capacity)}
}

func (bb *bytesBuilder) Grow(n int) (off int) {
	off, bb.Buf = grow(bb.Buf, n)
	return
}

func (bb *bytesBuilder) Write(b []byte) (int, error) {
	bb.Buf = appendRaw(bb.Buf, b)
	return len(b), nil
}

func (bb *bytesBuilder) AppendRaw(b []byte) {
	bb.Buf = appendRaw(bb.Buf, b)
}

func (bb *bytesBuilder) AppendByte(v byte) {
	off := bb.Grow(1)
	bb.Buf[off] = v
}

func (bb *bytesBuilder) AppendFixedUint32(v uint32) {
	off := bb.Grow(4)
	binary.BigEndian.PutUint32(bb.Buf[off:], v)
}

func (bb *bytesBuilder) AppendFixedUint64(v uint64) {
	off := bb.Grow(8)
	binary.BigEndian.PutUint64(bb.Buf[off:], v)
}

type byteDecoder struct {
	Orig []byte
	Buf  []byte
}

func makeByteDecoder(buf []byte) byteDecoder {
	return byteDecoder{buf, buf}
}

func (d *byteDecoder) Off() int {
	return len(d.Orig) - len(d.Buf)
}

func (d *byteDecoder) Len() int {
	return len(d.Buf)
}

func (d *byteDecoder) Raw(n int) ([]byte, error) {
	if len(d.Buf) < n {
		return nil, dataErrf(d.Orig, d.Off(), ErrCorruptMetadata, "not enough data: %d bytes remaining, %d wanted", len(d.Buf), n)
	}
	v := d.Buf[:n]
	d.Buf = d.Buf[n:]
	return v, nil
}

func (d *byteDecoder) Byte() (byte, error) {
	v, err := d.Raw(1)
	if err != nil {
		return 0, err
	}
	return v[0], nil
}

func (d *byteDecoder) FixedUint32() (uint32, error) {
	v, err := d.Raw(4)
	if err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint32(v), nil
}

func (d *byteDecoder) FixedUint64() (uint64, error) {
	v, err := d.Raw(8)
	if err != nil {
		return 0, err
	}
	return binary.BigEndian.Uint64(v), nil
}

// Rest consumes and returns whatever is left.
func (d *byteDecoder) Rest() []byte {
	v := d.Buf
	d.Buf = d.Buf[len(d.Buf):]
	return v
}
