package cedar

import (
	"log/slog"
	"testing"
)

func TestRpad(t *testing.T) {
	if got := rpad("abc", 5, '.'); got != "abc.." {
		t.Fatalf("rpad = %q, wanted %q", got, "abc..")
	}
	if got := rpad("abc", 1, '.'); got != "abc" {
		t.Fatalf("rpad = %q, wanted %q", got, "abc")
	}
}

func TestIncDec(t *testing.T) {
	b := []byte{0x00, 0x00}
	if !inc(b) || b[0] != 0x00 || b[1] != 0x01 {
		t.Fatalf("inc = %x, wanted 0001", b)
	}
	if !dec(b) || b[0] != 0x00 || b[1] != 0x00 {
		t.Fatalf("dec = %x, wanted 0000", b)
	}
	b = []byte{0x01, 0xFF}
	if !inc(b) || b[0] != 0x02 || b[1] != 0x00 {
		t.Fatalf("inc(01FF) = %x, wanted 0200", b)
	}
	if dec([]byte{0x00}) {
		t.Fatalf("dec(00) = true, wanted false")
	}
	if inc([]byte{0xFF}) {
		t.Fatalf("inc(FF) = true, wanted false")
	}
	if inc(nil) || dec(nil) {
		t.Fatalf("inc/dec(nil) = true, wanted false")
	}
}

func TestHexHelpers(t *testing.T) {
	if got := hexstr(nil); got != "<nil>" {
		t.Fatalf("hexstr(nil) = %q, wanted <nil>", got)
	}
	if got := hexstr([]byte{}); got != "<empty>" {
		t.Fatalf("hexstr(empty) = %q, wanted <empty>", got)
	}
	if got := hexstr([]byte{0xAA, 0xBB}); got != "aabb" {
		t.Fatalf("hexstr = %q, wanted aabb", got)
	}
	a := hexAttr("k", []byte{0xAA})
	if a.Key != "k" || a.Value.Kind() != slog.KindString {
		t.Fatalf("hexAttr returned unexpected attr: %+v", a)
	}
}

func TestPrintable(t *testing.T) {
	if got := printable([]byte("user:1")); got != "user:1" {
		t.Fatalf("printable = %q, wanted user:1", got)
	}
	if got := printable([]byte{0x00, 0x41}); got != "0x0041" {
		t.Fatalf("printable = %q, wanted 0x0041", got)
	}
}
