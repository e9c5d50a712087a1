package cedar

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"github.com/cespare/xxhash/v2"
	"github.com/vmihailenco/msgpack/v5"
)

// An export stream is a sequence of msgpack-encoded frames, one per
// collection. Each frame carries the msgpack body of an exportRecord and
// its xxhash64 checksum.
type exportFrame struct {
	Body []byte `msgpack:"b"`
	Sum  uint64 `msgpack:"s"`
}

type exportRecord struct {
	Key  []byte `msgpack:"k"`
	Type Type   `msgpack:"t"`

	// Fields holds map fields, set members or sorted list scores.
	Fields [][]byte `msgpack:"f,omitempty"`
	// Values holds map, list or sorted list values.
	Values [][]byte `msgpack:"v,omitempty"`
}

type exportedMeta struct {
	userKey []byte
	meta    *MetaRecord
}

// Export writes every collection to w from a single snapshot and returns the
// number of collections written. Ascending sorted lists contribute only
// their live entries.
func (db *DB) Export(w io.Writer) (n int, err error) {
	enc := msgpack.NewEncoder(w)
	err = db.read(func(tx *txn) error {
		var metas []exportedMeta
		err := tx.forEachMeta(nil, func(userKey []byte, m *MetaRecord) bool {
			metas = append(metas, exportedMeta{bytes.Clone(userKey), m})
			return true
		})
		if err != nil {
			return err
		}

		for _, em := range metas {
			rec, err := tx.exportRecord(em.userKey, em.meta)
			if err != nil {
				return err
			}
			body := msgpackEncode(nil, rec)
			if err := enc.Encode(&exportFrame{Body: body, Sum: xxhash.Sum64(body)}); err != nil {
				return fmt.Errorf("cedar: export %s: %w", printable(em.userKey), err)
			}
			n++
		}
		return nil
	})
	return
}

func (tx *txn) exportRecord(userKey []byte, m *MetaRecord) (*exportRecord, error) {
	rec := &exportRecord{Key: userKey, Type: m.Type}
	var from []byte
	if m.Type == TypeAscSortedList {
		from = m.AscSortedList().MinKey
	}
	err := tx.scan(encodeDataPrefix(m.ObjectID), from, func(k, v []byte) (bool, error) {
		switch m.Type {
		case TypeMap:
			rec.Fields = append(rec.Fields, bytes.Clone(dataSuffix(k)))
			rec.Values = append(rec.Values, bytes.Clone(v))
		case TypeSet:
			rec.Fields = append(rec.Fields, bytes.Clone(dataSuffix(k)))
		case TypeList:
			rec.Values = append(rec.Values, bytes.Clone(v))
		case TypeSortedList, TypeAscSortedList:
			score, _, err := decodeScoredKey(k)
			if err != nil {
				return false, err
			}
			rec.Fields = append(rec.Fields, bytes.Clone(score))
			rec.Values = append(rec.Values, bytes.Clone(v))
		}
		return true, nil
	})
	return rec, err
}

// Import reads a stream produced by Export and replays it through the
// regular mutating operations, so imported collections get fresh object ids
// and merge into existing ones of the same type. It returns the number of
// collections read.
func (db *DB) Import(r io.Reader) (n int, err error) {
	dec := msgpack.NewDecoder(r)
	for {
		var frame exportFrame
		err := dec.Decode(&frame)
		if errors.Is(err, io.EOF) {
			return n, nil
		} else if err != nil {
			return n, fmt.Errorf("cedar: import frame %d: %w", n, err)
		}
		if sum := xxhash.Sum64(frame.Body); sum != frame.Sum {
			return n, dataErrf(frame.Body, 0, nil, "import frame %d: checksum %016x, wanted %016x", n, sum, frame.Sum)
		}
		var rec exportRecord
		if err := msgpackDecode(frame.Body, &rec); err != nil {
			return n, err
		}
		if err := db.importRecord(&rec); err != nil {
			return n, fmt.Errorf("cedar: import %s: %w", printable(rec.Key), err)
		}
		n++
	}
}

func (db *DB) importRecord(rec *exportRecord) error {
	if (rec.Type == TypeMap || rec.Type == TypeSortedList || rec.Type == TypeAscSortedList) && len(rec.Fields) != len(rec.Values) {
		return fmt.Errorf("%d fields but %d values", len(rec.Fields), len(rec.Values))
	}
	var err error
	switch rec.Type {
	case TypeMap:
		items := make([]MapItem, len(rec.Fields))
		for i := range items {
			items[i] = MapItem{rec.Fields[i], rec.Values[i]}
		}
		_, err = db.MapPut(rec.Key, items...)
	case TypeSet:
		_, err = db.SetAdd(rec.Key, rec.Fields...)
	case TypeList:
		_, err = db.ListRightPush(rec.Key, rec.Values...)
	case TypeSortedList:
		_, err = db.SortedListAdd(rec.Key, sortedItems(rec)...)
	case TypeAscSortedList:
		_, err = db.AscSortedListAdd(rec.Key, sortedItems(rec)...)
	default:
		err = fmt.Errorf("unknown collection type %v", rec.Type)
	}
	return err
}

func sortedItems(rec *exportRecord) []SortedListItem {
	items := make([]SortedListItem, len(rec.Fields))
	for i := range items {
		items[i] = SortedListItem{rec.Fields[i], rec.Values[i]}
	}
	return items
}
