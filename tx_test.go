package cedar

import (
	"errors"
	"strings"
	"testing"
)

func TestVisitorPanicBecomesError(t *testing.T) {
	eachEngine(t, func(t *testing.T, db *DB) {
		must(db.MapPut(b("m"), MapItem{b("a"), b("1")}))

		_, err := db.MapForEach(b("m"), func(field, value []byte) bool {
			panic("boom")
		})
		var p panicked
		if !errors.As(err, &p) {
			t.Fatalf("MapForEach err = %v, wanted panicked", err)
		}
		if !strings.Contains(err.Error(), "panic: boom") {
			t.Fatalf("err.Error() = %q, wanted panic: boom", err.Error())
		}

		// The DB stays usable afterwards.
		deepEqual(t, must(db.MapSize(b("m"))), uint64(1))
		deepEqual(t, must(db.MapPut(b("m"), MapItem{b("b"), b("2")})), 1)
	})
}

func TestFailedWriteRollsBack(t *testing.T) {
	eachEngine(t, func(t *testing.T, db *DB) {
		must(db.SetAdd(b("s"), b("a")))
		nextID := db.nextID
		wantErr := errors.New("nope")

		err := db.write(func(tx *txn) error {
			m, err := tx.getOrCreate(b("fresh"), TypeMap)
			if err != nil {
				return err
			}
			if err := tx.put(encodeDataKey(m.ObjectID, b("f")), b("v")); err != nil {
				return err
			}
			m.Count++
			if err := tx.persist(b("fresh"), m); err != nil {
				return err
			}
			return wantErr
		})
		if err != wantErr {
			t.Fatalf("write err = %v, wanted %v", err, wantErr)
		}

		if hasMeta(t, db, "fresh") {
			t.Errorf("meta record of fresh survived a rolled back write")
		}
		if _, ok := db.cache.Get(b("fresh")); ok {
			t.Errorf("meta cache picked up a rolled back record")
		}
		deepEqual(t, db.nextID, nextID)
		deepEqual(t, db.Stats().NextObjectID, nextID)

		// The next allocation reuses the id the failed write never committed.
		must(db.MapPut(b("fresh"), MapItem{b("f"), b("v")}))
		m, ok, err := db.Meta(b("fresh"))
		if err != nil || !ok {
			t.Fatalf("Meta(fresh) = %v, %v, %v", m, ok, err)
		}
		deepEqual(t, m.ObjectID, nextID)
	})
}

func TestPanicInWriteRollsBack(t *testing.T) {
	eachEngine(t, func(t *testing.T, db *DB) {
		err := db.write(func(tx *txn) error {
			if _, err := tx.allocateObjectID(); err != nil {
				return err
			}
			panic("mid-write")
		})
		var p panicked
		if !errors.As(err, &p) {
			t.Fatalf("write err = %v, wanted panicked", err)
		}
		deepEqual(t, db.Stats().Mutations, uint64(0))
		deepEqual(t, must(db.Keys(nil)), [][]byte(nil))
	})
}

func TestScanStopsEarly(t *testing.T) {
	eachEngine(t, func(t *testing.T, db *DB) {
		must(db.SetAdd(b("s"), b("a"), b("b"), b("c")))
		var seen []string
		n := must(db.SetForEach(b("s"), func(member []byte) bool {
			seen = append(seen, string(member))
			return len(seen) < 2
		}))
		deepEqual(t, n, 2)
		deepEqual(t, seen, []string{"a", "b"})
	})
}
