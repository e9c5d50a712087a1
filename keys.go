package cedar

import (
	"bytes"
	"encoding/binary"
)

// Key space layout. Every key starts with a one-byte namespace tag:
//
//	'm' | userKey                         meta record of a collection
//	'd' | objectId:8 | suffix             collection data entry
//	's' | name                            database-wide bookkeeping
const (
	metaNamespace   byte = 'm'
	dataNamespace   byte = 'd'
	systemNamespace byte = 's'

	objectIDLen     = 8
	dataPrefixLen   = 1 + objectIDLen
	listPositionLen = 9
	sequenceLen     = 8
)

var nextObjectIDKey = []byte{systemNamespace, 'n', 'e', 'x', 't', '_', 'o', 'b', 'j', 'e', 'c', 't', '_', 'i', 'd'}

// EncodeMetaKey returns the meta key of userKey.
func EncodeMetaKey(userKey []byte) []byte {
	k := make([]byte, 1+len(userKey))
	k[0] = metaNamespace
	copy(k[1:], userKey)
	return k
}

// DecodeMetaKey returns the user key embedded in a meta key.
func DecodeMetaKey(key []byte) ([]byte, bool) {
	if len(key) == 0 || key[0] != metaNamespace {
		return nil, false
	}
	return key[1:], true
}

// encodeDataPrefix returns 'd' | id, the prefix shared by every data entry
// of one collection.
func encodeDataPrefix(id uint64) []byte {
	k := make([]byte, dataPrefixLen, dataPrefixLen+32)
	k[0] = dataNamespace
	binary.BigEndian.PutUint64(k[1:], id)
	return k
}

func encodeDataKey(id uint64, suffix []byte) []byte {
	return append(encodeDataPrefix(id), suffix...)
}

// dataSuffix strips 'd' | id from a data key.
func dataSuffix(key []byte) []byte {
	return key[dataPrefixLen:]
}

// HasPrefix reports whether key starts with prefix.
func HasPrefix(prefix, key []byte) bool {
	return bytes.HasPrefix(key, prefix)
}

// EncodeListPosition encodes v so that byte order matches numeric order over
// the whole int64 range: a sign byte (0 for negative, 1 otherwise) followed
// by the two's complement value, big-endian.
func EncodeListPosition(v int64) []byte {
	var b [listPositionLen]byte
	if v >= 0 {
		b[0] = 1
	}
	binary.BigEndian.PutUint64(b[1:], uint64(v))
	return b[:]
}

func DecodeListPosition(b []byte) (int64, error) {
	if len(b) != listPositionLen || b[0] > 1 {
		return 0, dataErrf(b, 0, nil, "invalid list position")
	}
	v := int64(binary.BigEndian.Uint64(b[1:]))
	if (v >= 0) != (b[0] == 1) {
		return 0, dataErrf(b, 0, nil, "list position sign mismatch")
	}
	return v, nil
}

func encodeListKey(id uint64, pos int64) []byte {
	return encodeDataKey(id, EncodeListPosition(pos))
}

// encodeScoredKey returns 'd' | id | score | seq, the key of a sorted list
// entry.
func encodeScoredKey(id uint64, score []byte, seq uint64) []byte {
	k := make([]byte, dataPrefixLen, dataPrefixLen+len(score)+sequenceLen)
	k[0] = dataNamespace
	binary.BigEndian.PutUint64(k[1:], id)
	k = append(k, score...)
	return binary.BigEndian.AppendUint64(k, seq)
}

// decodeScoredKey splits a sorted list data key into score and sequence.
func decodeScoredKey(key []byte) (score []byte, seq uint64, err error) {
	if len(key) < dataPrefixLen+sequenceLen {
		return nil, 0, dataErrf(key, 0, nil, "sorted list key too short")
	}
	n := len(key) - sequenceLen
	return key[dataPrefixLen:n], binary.BigEndian.Uint64(key[n:]), nil
}

// PrefixUpperBound returns the smallest byte string of the same length that
// sorts after every key starting with prefix. ok is false when prefix is
// empty or all 0xFF.
func PrefixUpperBound(prefix []byte) (bound []byte, ok bool) {
	b := bytes.Clone(prefix)
	if !inc(b) {
		return nil, false
	}
	return b, true
}

// PrefixLowerBound returns the largest byte string of the same length that
// sorts before prefix. ok is false when prefix is empty or all 0x00.
func PrefixLowerBound(prefix []byte) (bound []byte, ok bool) {
	b := bytes.Clone(prefix)
	if !dec(b) {
		return nil, false
	}
	return b, true
}

// CompareScores compares two scores as unsigned big-endian numbers. Scores
// of different lengths are not comparable and compare as equal.
func CompareScores(a, b []byte) int {
	if len(a) != len(b) {
		return 0
	}
	return bytes.Compare(a, b)
}
