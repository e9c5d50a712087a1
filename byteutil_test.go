package cedar

import (
	"errors"
	"reflect"
	"testing"
)

func TestBytesBuilder_Basics(t *testing.T) {
	bb := newBytesBuilder(0)
	bb.AppendByte(4)
	bb.AppendFixedUint32(0x01020304)
	bb.AppendFixedUint64(0x0102030405060708)
	bb.AppendRaw([]byte{0xAA})
	_, _ = bb.Write([]byte{0xBB, 0xCC})

	want := x("04 01020304 0102030405060708 aa bbcc")
	if !reflect.DeepEqual(bb.Buf, want) {
		t.Fatalf("bb.Buf = %x, wanted %x", bb.Buf, want)
	}
}

func TestEnsureCapacity(t *testing.T) {
	buf := ensureCapacity([]byte{1, 2}, 40)
	if cap(buf) < 40 || !reflect.DeepEqual(buf, []byte{1, 2}) {
		t.Fatalf("ensureCapacity = %x (cap %d), wanted 0102 with cap >= 40", buf, cap(buf))
	}
}

func TestByteDecoder(t *testing.T) {
	d := makeByteDecoder(x("04 01020304 0102030405060708 aabb"))
	if v, err := d.Byte(); err != nil || v != 4 {
		t.Fatalf("Byte = %d, %v, wanted 4", v, err)
	}
	if v, err := d.FixedUint32(); err != nil || v != 0x01020304 {
		t.Fatalf("FixedUint32 = %x, %v", v, err)
	}
	if v, err := d.FixedUint64(); err != nil || v != 0x0102030405060708 {
		t.Fatalf("FixedUint64 = %x, %v", v, err)
	}
	deepEqual(t, d.Off(), 13)
	deepEqual(t, d.Len(), 2)

	_, err := d.FixedUint32()
	var de *DataError
	if !errors.As(err, &de) || de.Off != 13 {
		t.Fatalf("FixedUint32 past end err = %v, wanted DataError at 13", err)
	}
	deepEqual(t, d.Rest(), x("aabb"))
	deepEqual(t, d.Len(), 0)
}
