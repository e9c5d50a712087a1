package cedar

import (
	"encoding/hex"
	"log/slog"
	"strings"
)

func must[T any](v T, err error) T {
	if err != nil {
		panic(err)
	}
	return v
}

func ensure(err error) {
	if err != nil {
		panic(err)
	}
}

func rpad(s string, n int, pad rune) string {
	rem := n - len(s)
	if rem <= 0 {
		return s
	}
	return s + strings.Repeat(string(pad), rem)
}

// inc turns data into the smallest byte string of the same length that is
// greater than every string prefixed by the original. Trailing 0xFF bytes
// wrap to 0x00. Returns false if data is all 0xFF (or empty).
func inc(data []byte) bool {
	n := len(data)
	for i := n - 1; i >= 0; i-- {
		if data[i] != 0xFF {
			for j := i; j < n; j++ {
				data[j]++
			}
			return true
		}
	}
	return false
}

// dec is the inverse of inc. Returns false if data is all 0x00 (or empty).
func dec(data []byte) bool {
	n := len(data)
	for i := n - 1; i >= 0; i-- {
		if data[i] != 0 {
			for j := i; j < n; j++ {
				data[j]--
			}
			return true
		}
	}
	return false
}

func hexstr(b []byte) string {
	if b == nil {
		return "<nil>"
	}
	if len(b) == 0 {
		return "<empty>"
	}
	return hex.EncodeToString(b)
}

func hexAttr(key string, b []byte) slog.Attr {
	return slog.String(key, hexstr(b))
}

// printable renders a user key as text when it is plain ASCII and as hex
// otherwise.
func printable(b []byte) string {
	for _, c := range b {
		if c < 0x20 || c > 0x7E {
			return "0x" + hexstr(b)
		}
	}
	return string(b)
}
