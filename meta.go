package cedar

import (
	"bytes"
	"fmt"
)

// Type identifies the kind of collection stored under a user key.
type Type byte

const (
	TypeMap           Type = 1
	TypeSet           Type = 2
	TypeList          Type = 3
	TypeSortedList    Type = 4
	TypeAscSortedList Type = 5
)

func (t Type) String() string {
	switch t {
	case TypeMap:
		return "map"
	case TypeSet:
		return "set"
	case TypeList:
		return "list"
	case TypeSortedList:
		return "sortedlist"
	case TypeAscSortedList:
		return "ascsortedlist"
	default:
		return fmt.Sprintf("type(%d)", byte(t))
	}
}

func (t Type) valid() bool {
	return t >= TypeMap && t <= TypeAscSortedList
}

// ParseType is the inverse of Type.String.
func ParseType(s string) (Type, bool) {
	for t := TypeMap; t <= TypeAscSortedList; t++ {
		if t.String() == s {
			return t, true
		}
	}
	return 0, false
}

// Extra is the type-specific part of a meta record: ListExtra,
// SortedListExtra or AscSortedListExtra.
type Extra interface {
	extraType() Type
	appendTo(bb *bytesBuilder)
	clone() Extra
}

// ListExtra holds the next free position on each end of a list.
type ListExtra struct {
	Left  int64
	Right int64
}

const listExtraLen = 16

func (ListExtra) extraType() Type { return TypeList }

func (e ListExtra) appendTo(bb *bytesBuilder) {
	bb.AppendFixedUint64(uint64(e.Left))
	bb.AppendFixedUint64(uint64(e.Right))
}

func (e ListExtra) clone() Extra { return e }

// SortedListExtra holds the tie-breaking sequence and the pop counters that
// drive compaction.
type SortedListExtra struct {
	Sequence     uint64
	LeftDeletes  uint32
	RightDeletes uint32
}

const sortedListExtraLen = 16

func (SortedListExtra) extraType() Type { return TypeSortedList }

func (e SortedListExtra) appendTo(bb *bytesBuilder) {
	bb.AppendFixedUint64(e.Sequence)
	bb.AppendFixedUint32(e.LeftDeletes)
	bb.AppendFixedUint32(e.RightDeletes)
}

func (e SortedListExtra) clone() Extra { return e }

// AscSortedListExtra holds the tie-breaking sequence, the pop counter and the
// soft-delete boundary. Data keys below MinKey are dead. A nil MinKey means
// no entry has been popped yet.
type AscSortedListExtra struct {
	Sequence uint64
	Deletes  uint32
	MinKey   []byte
}

const ascSortedListExtraMinLen = 12

func (AscSortedListExtra) extraType() Type { return TypeAscSortedList }

func (e AscSortedListExtra) appendTo(bb *bytesBuilder) {
	bb.AppendFixedUint64(e.Sequence)
	bb.AppendFixedUint32(e.Deletes)
	bb.AppendRaw(e.MinKey)
}

func (e AscSortedListExtra) clone() Extra {
	e.MinKey = bytes.Clone(e.MinKey)
	return e
}

// MetaRecord describes one collection. Encoded as
// objectId:8 | type:1 | count:8 | extra.
type MetaRecord struct {
	ObjectID uint64
	Type     Type
	Count    uint64
	Extra    Extra // nil when absent
}

const metaHeaderLen = 8 + 1 + 8

func (m *MetaRecord) Encode() []byte {
	bb := newBytesBuilder(metaHeaderLen + 16)
	bb.AppendFixedUint64(m.ObjectID)
	bb.AppendByte(byte(m.Type))
	bb.AppendFixedUint64(m.Count)
	if m.Extra != nil {
		m.Extra.appendTo(bb)
	}
	return bb.Buf
}

func DecodeMetaRecord(data []byte) (*MetaRecord, error) {
	d := makeByteDecoder(data)
	id, err := d.FixedUint64()
	if err != nil {
		return nil, err
	}
	t, err := d.Byte()
	if err != nil {
		return nil, err
	}
	count, err := d.FixedUint64()
	if err != nil {
		return nil, err
	}
	m := &MetaRecord{ObjectID: id, Type: Type(t), Count: count}
	if !m.Type.valid() {
		return nil, dataErrf(data, 8, ErrCorruptMetadata, "unknown collection type %d", t)
	}
	if d.Len() == 0 {
		return m, nil
	}

	off := d.Off()
	switch m.Type {
	case TypeList:
		if d.Len() != listExtraLen {
			return nil, dataErrf(data, off, ErrCorruptMetadata, "list extra is %d bytes, wanted %d", d.Len(), listExtraLen)
		}
		left, _ := d.FixedUint64()
		right, _ := d.FixedUint64()
		m.Extra = ListExtra{Left: int64(left), Right: int64(right)}
	case TypeSortedList:
		if d.Len() != sortedListExtraLen {
			return nil, dataErrf(data, off, ErrCorruptMetadata, "sorted list extra is %d bytes, wanted %d", d.Len(), sortedListExtraLen)
		}
		seq, _ := d.FixedUint64()
		ld, _ := d.FixedUint32()
		rd, _ := d.FixedUint32()
		m.Extra = SortedListExtra{Sequence: seq, LeftDeletes: ld, RightDeletes: rd}
	case TypeAscSortedList:
		if d.Len() < ascSortedListExtraMinLen {
			return nil, dataErrf(data, off, ErrCorruptMetadata, "asc sorted list extra is %d bytes, wanted at least %d", d.Len(), ascSortedListExtraMinLen)
		}
		seq, _ := d.FixedUint64()
		dels, _ := d.FixedUint32()
		e := AscSortedListExtra{Sequence: seq, Deletes: dels}
		if rest := d.Rest(); len(rest) > 0 {
			e.MinKey = bytes.Clone(rest)
		}
		m.Extra = e
	default:
		return nil, dataErrf(data, off, ErrCorruptMetadata, "unexpected extra on %v", m.Type)
	}
	return m, nil
}

func (m *MetaRecord) Clone() *MetaRecord {
	c := *m
	if m.Extra != nil {
		c.Extra = m.Extra.clone()
	}
	return &c
}

// List returns the list cursors, defaulting to an empty list's.
func (m *MetaRecord) List() ListExtra {
	if e, ok := m.Extra.(ListExtra); ok {
		return e
	}
	return ListExtra{Left: 0, Right: 1}
}

func (m *MetaRecord) SortedList() SortedListExtra {
	if e, ok := m.Extra.(SortedListExtra); ok {
		return e
	}
	return SortedListExtra{Sequence: 1}
}

func (m *MetaRecord) AscSortedList() AscSortedListExtra {
	if e, ok := m.Extra.(AscSortedListExtra); ok {
		return e
	}
	return AscSortedListExtra{Sequence: 1}
}

func (m *MetaRecord) String() string {
	switch e := m.Extra.(type) {
	case ListExtra:
		return fmt.Sprintf("%v#%d count=%d left=%d right=%d", m.Type, m.ObjectID, m.Count, e.Left, e.Right)
	case SortedListExtra:
		return fmt.Sprintf("%v#%d count=%d seq=%d ldel=%d rdel=%d", m.Type, m.ObjectID, m.Count, e.Sequence, e.LeftDeletes, e.RightDeletes)
	case AscSortedListExtra:
		return fmt.Sprintf("%v#%d count=%d seq=%d del=%d min=%s", m.Type, m.ObjectID, m.Count, e.Sequence, e.Deletes, hexstr(e.MinKey))
	default:
		return fmt.Sprintf("%v#%d count=%d", m.Type, m.ObjectID, m.Count)
	}
}
