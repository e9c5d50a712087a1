package cedar

import (
	"bytes"
	"fmt"

	"github.com/vmihailenco/msgpack/v5"
)

func msgpackEncode(buf []byte, v any) []byte {
	bb := bytesBuilder{buf}
	enc := msgpack.GetEncoder()
	enc.ResetDict(&bb, nil)
	enc.SetSortMapKeys(true)
	err := enc.Encode(v)
	msgpack.PutEncoder(enc)
	if err != nil {
		panic(fmt.Errorf("failed to encode %T using MsgPack: %w", v, err))
	}
	return bb.Buf
}

func msgpackDecode(buf []byte, ptr any) error {
	var r bytes.Reader
	r.Reset(buf)
	dec := msgpack.GetDecoder()
	dec.ResetDict(&r, nil)
	err := dec.Decode(ptr)
	msgpack.PutDecoder(dec)
	if err != nil {
		return dataErrf(buf, 0, err, "failed to decode msgpack into %T", ptr)
	}
	return nil
}
