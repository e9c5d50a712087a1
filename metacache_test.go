package cedar

import (
	"testing"
)

func TestMetaCache(t *testing.T) {
	mc := must(newMetaCache(2))
	mc.Put(b("a"), &MetaRecord{ObjectID: 1, Type: TypeMap})
	mc.Put(b("b"), &MetaRecord{ObjectID: 2, Type: TypeSet})

	if m, ok := mc.Get(b("a")); !ok || m.ObjectID != 1 {
		t.Fatalf("Get(a) = %v, %v, wanted #1", m, ok)
	}
	// "b" is now least recently used.
	mc.Put(b("c"), &MetaRecord{ObjectID: 3, Type: TypeList})
	if _, ok := mc.Get(b("b")); ok {
		t.Fatalf("Get(b) hit after eviction")
	}
	deepEqual(t, mc.Len(), 2)

	mc.Remove(b("a"))
	if _, ok := mc.Get(b("a")); ok {
		t.Fatalf("Get(a) hit after Remove")
	}
	mc.Clear()
	deepEqual(t, mc.Len(), 0)
}

func TestMetaCacheIsolation(t *testing.T) {
	mc := must(newMetaCache(0))
	orig := &MetaRecord{ObjectID: 1, Type: TypeList, Count: 1}
	mc.Put(b("a"), orig)
	orig.Count = 100

	m, _ := mc.Get(b("a"))
	deepEqual(t, m.Count, uint64(1))
	m.Count = 50

	m, _ = mc.Get(b("a"))
	deepEqual(t, m.Count, uint64(1))
}

func TestMetaCacheFollowsCommits(t *testing.T) {
	db := setup(t, EngineMemory)
	must(db.SetAdd(b("s"), b("1")))
	deepEqual(t, db.Stats().CachedRecords, 1)
	must(db.SetAdd(b("s"), b("2")))
	deepEqual(t, db.Stats().CacheHits, uint64(1))

	must(db.SetRemove(b("s"), b("1"), b("2")))
	deepEqual(t, db.Stats().CachedRecords, 0)

	// A failed mutation leaves the cache alone.
	must(db.MapPut(b("m"), MapItem{b("f"), b("v")}))
	if _, err := db.SetAdd(b("m"), b("x")); err == nil {
		t.Fatalf("SetAdd on a map succeeded")
	}
	m, ok := db.cache.Get(b("m"))
	if !ok || m.Type != TypeMap || m.Count != 1 {
		t.Fatalf("cached m = %v, %v, wanted map count=1", m, ok)
	}
}
