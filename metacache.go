package cedar

import (
	lru "github.com/hashicorp/golang-lru"
)

const defaultMetaCacheSize = 1000

// metaCache is a bounded LRU map from user key to its meta record. Records
// are cloned on the way in and out so callers can mutate what they get.
type metaCache struct {
	c *lru.Cache
}

func newMetaCache(size int) (*metaCache, error) {
	if size <= 0 {
		size = defaultMetaCacheSize
	}
	c, err := lru.New(size)
	if err != nil {
		return nil, err
	}
	return &metaCache{c: c}, nil
}

func (mc *metaCache) Get(userKey []byte) (*MetaRecord, bool) {
	v, ok := mc.c.Get(string(userKey))
	if !ok {
		return nil, false
	}
	return v.(*MetaRecord).Clone(), true
}

func (mc *metaCache) Put(userKey []byte, m *MetaRecord) {
	mc.c.Add(string(userKey), m.Clone())
}

func (mc *metaCache) Remove(userKey []byte) {
	mc.c.Remove(string(userKey))
}

func (mc *metaCache) Clear() {
	mc.c.Purge()
}

func (mc *metaCache) Len() int {
	return mc.c.Len()
}
