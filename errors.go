package cedar

import (
	"errors"
	"fmt"
	"strings"
)

var (
	// ErrTypeMismatch is matched by errors returned when a user key already
	// holds a collection of another type.
	ErrTypeMismatch = errors.New("cedar: collection type mismatch")

	// ErrCorruptMetadata is matched by errors returned when a stored meta
	// record cannot be decoded.
	ErrCorruptMetadata = errors.New("cedar: corrupt metadata")

	// ErrEngineUnavailable is matched by every failure reported by the
	// underlying storage engine.
	ErrEngineUnavailable = errors.New("cedar: storage engine unavailable")

	// ErrClosed is returned by operations on a closed DB.
	ErrClosed = errors.New("cedar: database closed")
)

type DataError struct {
	Data []byte
	Off  int
	Err  error
	Msg  string
}

func dataErrf(data []byte, off int, err error, format string, args ...any) error {
	return &DataError{data, off, err, fmt.Sprintf(format, args...)}
}

func (e *DataError) Unwrap() error {
	return e.Err
}

func (e *DataError) Error() string {
	const prefixLen = 64
	const suffixLen = 32
	n := len(e.Data)
	if n <= prefixLen+suffixLen {
		if e.Err != nil {
			return fmt.Sprintf("%s: %v: (%d) %x", e.Msg, e.Err, n, e.Data)
		} else {
			return fmt.Sprintf("%s: (%d) %x", e.Msg, n, e.Data)
		}
	} else {
		p, s := e.Data[:prefixLen], e.Data[n-suffixLen:]
		if e.Err != nil {
			return fmt.Sprintf("%s: %v: (%d) %x...%x", e.Msg, e.Err, n, p, s)
		} else {
			return fmt.Sprintf("%s: (%d) %x...%x", e.Msg, n, p, s)
		}
	}
}

type TypeMismatchError struct {
	Key      []byte
	Expected Type
	Actual   Type
}

func (e *TypeMismatchError) Error() string {
	return fmt.Sprintf("cedar: %s holds a %v, wanted %v", printable(e.Key), e.Actual, e.Expected)
}

func (e *TypeMismatchError) Is(target error) bool {
	return target == ErrTypeMismatch
}

// EngineError wraps a failure reported by the storage engine.
type EngineError struct {
	Op  string
	Key []byte
	Err error
}

func engineErr(op string, key []byte, err error) error {
	if err == nil {
		return nil
	}
	var ee *EngineError
	if errors.As(err, &ee) {
		return err
	}
	return &EngineError{Op: op, Key: key, Err: err}
}

func (e *EngineError) Unwrap() []error {
	return []error{ErrEngineUnavailable, e.Err}
}

func (e *EngineError) Error() string {
	var buf strings.Builder
	buf.WriteString("cedar: ")
	buf.WriteString(e.Op)
	if e.Key != nil {
		buf.WriteByte(' ')
		buf.WriteString(hexstr(e.Key))
	}
	if e.Err != nil {
		buf.WriteString(": ")
		buf.WriteString(e.Err.Error())
	}
	return buf.String()
}
