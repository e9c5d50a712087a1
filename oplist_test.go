package cedar

import (
	"testing"
)

func TestList(t *testing.T) {
	eachEngine(t, func(t *testing.T, db *DB) {
		k := b("l")
		deepEqual(t, must(db.ListLeftPush(k, b("a"), b("b"))), 2)
		deepEqual(t, must(db.ListItems(k)), bs("b", "a"))

		deepEqual(t, must(db.ListRightPush(k, b("c"), b("d"))), 2)
		deepEqual(t, must(db.ListItems(k)), bs("b", "a", "c", "d"))
		deepEqual(t, must(db.ListSize(k)), uint64(4))

		var idx []int64
		must(db.ListForEach(k, func(index int64, _ []byte) bool {
			idx = append(idx, index)
			return true
		}))
		deepEqual(t, idx, []int64{0, 1, 2, 3})

		popLeft(t, db, "l", "b")
		popRight(t, db, "l", "d")
		popRight(t, db, "l", "c")
		popRight(t, db, "l", "a")
		deepEqual(t, must(db.ListSize(k)), uint64(0))
		if hasMeta(t, db, "l") {
			t.Fatalf("meta record of emptied list still stored")
		}

		_, found := must2(db.ListLeftPop(k))
		deepEqual(t, found, false)
		_, found = must2(db.ListRightPop(k))
		deepEqual(t, found, false)

		must(db.ListRightPush(k, b("x")))
		popLeft(t, db, "l", "x")
	})
}

func TestListLeftPushReusesPoppedSlot(t *testing.T) {
	eachEngine(t, func(t *testing.T, db *DB) {
		k := b("l")
		must(db.ListRightPush(k, b("a"), b("b"), b("c")))
		popLeft(t, db, "l", "a")

		m, _ := must2(db.Meta(k))
		before := m.List()

		// The left push lands in the slot the pop just freed.
		must(db.ListLeftPush(k, b("z")))
		popLeft(t, db, "l", "z")
		popLeft(t, db, "l", "b")
		m, _ = must2(db.Meta(k))
		if m.List().Right != before.Right {
			t.Fatalf("right cursor = %d, wanted %d", m.List().Right, before.Right)
		}
		deepEqual(t, must(db.ListItems(k)), bs("c"))
	})
}

func TestListInterleaved(t *testing.T) {
	eachEngine(t, func(t *testing.T, db *DB) {
		k := b("l")
		for i := 0; i < 3; i++ {
			must(db.ListLeftPush(k, b("l")))
			must(db.ListRightPush(k, b("r")))
		}
		deepEqual(t, must(db.ListItems(k)), bs("l", "l", "l", "r", "r", "r"))
		for i := 0; i < 3; i++ {
			popRight(t, db, "l", "r")
		}
		for i := 0; i < 3; i++ {
			popRight(t, db, "l", "l")
		}
		_, found := must2(db.ListLeftPop(k))
		deepEqual(t, found, false)
	})
}

func TestListPositionsCrossZero(t *testing.T) {
	eachEngine(t, func(t *testing.T, db *DB) {
		k := b("l")
		for i := 0; i < 300; i++ {
			must(db.ListLeftPush(k, []byte{byte(i)}))
		}
		items := must(db.ListItems(k))
		deepEqual(t, len(items), 300)
		for i, v := range items {
			if v[0] != byte(299-i) {
				t.Fatalf("items[%d] = %d, wanted %d", i, v[0], 299-i)
			}
		}
	})
}

func popLeft(t testing.TB, db *DB, key, want string) {
	t.Helper()
	v, found := must2(db.ListLeftPop(b(key)))
	if !found || string(v) != want {
		t.Fatalf("ListLeftPop = %q, %v, wanted %q", v, found, want)
	}
}

func popRight(t testing.TB, db *DB, key, want string) {
	t.Helper()
	v, found := must2(db.ListRightPop(b(key)))
	if !found || string(v) != want {
		t.Fatalf("ListRightPop = %q, %v, wanted %q", v, found, want)
	}
}
