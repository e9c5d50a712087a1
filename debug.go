package cedar

import (
	"bytes"
	"fmt"
	"strings"
)

var (
	dumpSep1 = strings.Repeat("=", 80)
	dumpSep2 = strings.Repeat("-", 60)
)

// Dump renders every collection and its raw data entries in key order.
// Entries of an ascending sorted list below its boundary are marked dead.
func (db *DB) Dump() (string, error) {
	var buf strings.Builder
	err := db.read(func(tx *txn) error {
		var metas []exportedMeta
		err := tx.forEachMeta(nil, func(userKey []byte, m *MetaRecord) bool {
			metas = append(metas, exportedMeta{bytes.Clone(userKey), m})
			return true
		})
		if err != nil {
			return err
		}
		for _, em := range metas {
			if err := tx.dumpCollection(&buf, em.userKey, em.meta); err != nil {
				return err
			}
		}
		if raw, found, err := tx.get(nextObjectIDKey); err != nil {
			return err
		} else if found {
			fmt.Fprintln(&buf, dumpSep1)
			fmt.Fprintf(&buf, "next_object_id = %s\n", hexstr(raw))
		}
		return nil
	})
	return buf.String(), err
}

func (tx *txn) dumpCollection(w *strings.Builder, userKey []byte, m *MetaRecord) error {
	fmt.Fprintln(w, dumpSep1)
	fmt.Fprintf(w, "%s = %v\n", printable(userKey), m)
	fmt.Fprintln(w, dumpSep2)

	var minKey []byte
	if m.Type == TypeAscSortedList {
		minKey = m.AscSortedList().MinKey
	}
	var pos int
	return tx.scan(encodeDataPrefix(m.ObjectID), nil, func(k, v []byte) (bool, error) {
		pos++
		suffix := dataSuffix(k)
		var desc string
		switch m.Type {
		case TypeList:
			if p, err := DecodeListPosition(suffix); err == nil {
				desc = fmt.Sprintf("@%d", p)
			} else {
				desc = "** ERROR: " + err.Error()
			}
		case TypeSortedList, TypeAscSortedList:
			if score, seq, err := decodeScoredKey(k); err == nil {
				desc = fmt.Sprintf("score=%s seq=%d", hexstr(score), seq)
			} else {
				desc = "** ERROR: " + err.Error()
			}
		default:
			desc = printable(suffix)
		}
		if minKey != nil && bytes.Compare(k, minKey) < 0 {
			desc += " (dead)"
		}
		fmt.Fprintf(w, "%s.%d: %s => %s\n", printable(userKey), pos, desc, hexstr(v))
		return true, nil
	})
}
