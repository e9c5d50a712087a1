package cedar

import (
	"testing"
)

func TestSet(t *testing.T) {
	eachEngine(t, func(t *testing.T, db *DB) {
		k := b("s")
		deepEqual(t, must(db.SetAdd(k, b("a"), b("b"))), 2)
		deepEqual(t, must(db.SetAdd(k, b("a"), b("b"), b("c"))), 1)
		deepEqual(t, must(db.SetSize(k)), uint64(3))

		deepEqual(t, must(db.SetIsMember(k)), false)
		deepEqual(t, must(db.SetIsMember(k, b("a"))), true)
		deepEqual(t, must(db.SetIsMember(k, b("a"), b("c"))), true)
		deepEqual(t, must(db.SetIsMember(k, b("a"), b("x"))), false)
		deepEqual(t, must(db.SetIsMember(b("nope"), b("a"))), false)

		deepEqual(t, must(db.SetMembers(k)), bs("a", "b", "c"))

		deepEqual(t, must(db.SetRemove(k, b("a"), b("x"))), 1)
		deepEqual(t, must(db.SetSize(k)), uint64(2))
		deepEqual(t, must(db.SetRemove(k, b("b"), b("c"))), 2)
		deepEqual(t, must(db.SetSize(k)), uint64(0))
		if hasMeta(t, db, "s") {
			t.Fatalf("meta record of emptied set still stored")
		}
		isempty(t, must(db.SetMembers(k)))
	})
}

func TestSetAddDuplicatesInOneCall(t *testing.T) {
	eachEngine(t, func(t *testing.T, db *DB) {
		deepEqual(t, must(db.SetAdd(b("s"), b("a"), b("a"))), 1)
		deepEqual(t, must(db.SetSize(b("s"))), uint64(1))
	})
}

func TestSetAddNothing(t *testing.T) {
	eachEngine(t, func(t *testing.T, db *DB) {
		deepEqual(t, must(db.SetAdd(b("s"))), 0)
		if hasMeta(t, db, "s") {
			t.Fatalf("empty SetAdd created a collection")
		}
	})
}
