package cedar

import (
	"bytes"
	"fmt"
	"runtime/debug"
)

// txn is one engine transaction plus the bookkeeping that must only become
// visible once it commits.
type txn struct {
	db  *DB
	stx storageTx

	nextID       uint64
	cacheUpdates []cacheUpdate
	compact      bool
}

type cacheUpdate struct {
	userKey []byte
	meta    *MetaRecord // nil evicts
}

// write runs f in a write transaction under the DB write lock. Nothing f
// does is visible (to readers, the meta cache or the id allocator) unless it
// returns nil and the commit succeeds.
func (db *DB) write(f func(tx *txn) error) error {
	db.writeLock.Lock()
	defer db.writeLock.Unlock()
	if db.closed.Load() {
		return ErrClosed
	}

	stx, err := db.st.BeginTx(true)
	if err != nil {
		return engineErr("begin", nil, err)
	}
	tx := &txn{db: db, stx: stx, nextID: db.nextID}

	err = safelyCall(f, tx)
	if err != nil {
		stx.Rollback()
		return err
	}
	if err := stx.Commit(); err != nil {
		stx.Rollback()
		return engineErr("commit", nil, err)
	}
	db.metrics.mutations.Inc()

	if n := tx.nextID - db.nextID; n > 0 {
		db.metrics.allocations.Add(int(n))
	}
	db.nextID = tx.nextID
	for _, u := range tx.cacheUpdates {
		if u.meta == nil {
			db.cache.Remove(u.userKey)
		} else {
			db.cache.Put(u.userKey, u.meta)
		}
	}

	if tx.compact {
		// The mutation is already durable; a failed compaction only means
		// space is reclaimed later.
		if err := db.compactLocked(); err != nil {
			db.logger.Warn("cedar: compaction failed", "err", err)
		}
	}
	return nil
}

// read runs f against a read-only snapshot without taking the write lock.
func (db *DB) read(f func(tx *txn) error) error {
	if db.closed.Load() {
		return ErrClosed
	}
	stx, err := db.st.BeginTx(false)
	if err != nil {
		if db.closed.Load() {
			return ErrClosed
		}
		return engineErr("begin", nil, err)
	}
	defer stx.Rollback()
	return safelyCall(f, &txn{db: db, stx: stx})
}

type panicked struct {
	reason interface{}
	stack  string
}

func (p panicked) Error() string {
	return fmt.Sprintf("panic: %v\n\n%s", p.reason, p.stack)
}

func safelyCall(fn func(*txn) error, tx *txn) (err error) {
	defer func() {
		if p := recover(); p != nil {
			err = panicked{p, string(debug.Stack())}
		}
	}()
	return fn(tx)
}

func (tx *txn) get(key []byte) ([]byte, bool, error) {
	v, found, err := tx.stx.Get(key)
	if err != nil {
		return nil, false, engineErr("get", key, err)
	}
	return v, found, nil
}

func (tx *txn) put(key, value []byte) error {
	return engineErr("put", key, tx.stx.Put(key, value))
}

func (tx *txn) delete(key []byte) error {
	return engineErr("delete", key, tx.stx.Delete(key))
}

func (tx *txn) deleteRange(lower, upper []byte) error {
	return engineErr("delete range", lower, tx.stx.DeleteRange(lower, upper))
}

// scan calls f for every entry with the given prefix, in key order,
// starting at from (which must not sort before prefix; nil means prefix).
// f returns false to stop.
func (tx *txn) scan(prefix, from []byte, f func(k, v []byte) (bool, error)) error {
	if from == nil {
		from = prefix
	}
	c := tx.stx.Cursor()
	defer c.Close()
	for k, v := c.Seek(from); k != nil && bytes.HasPrefix(k, prefix); k, v = c.Next() {
		more, err := f(k, v)
		if err != nil {
			return err
		}
		if !more {
			return nil
		}
	}
	return engineErr("scan", prefix, c.Err())
}

// first returns the first entry with the given prefix at or after from.
// The returned slices are owned by the caller.
func (tx *txn) first(prefix, from []byte) (k, v []byte, err error) {
	err = tx.scan(prefix, from, func(ck, cv []byte) (bool, error) {
		k, v = bytes.Clone(ck), bytes.Clone(cv)
		return false, nil
	})
	return k, v, err
}

// last returns the last entry with the given prefix. The returned slices are
// owned by the caller.
func (tx *txn) last(prefix []byte) (k, v []byte, err error) {
	c := tx.stx.Cursor()
	defer c.Close()
	ck, cv := c.SeekLast(prefix)
	if err := c.Err(); err != nil {
		return nil, nil, engineErr("seek last", prefix, err)
	}
	if ck == nil || !bytes.HasPrefix(ck, prefix) {
		return nil, nil, nil
	}
	return bytes.Clone(ck), bytes.Clone(cv), nil
}

// loadMeta reads a meta record straight from the engine.
func (tx *txn) loadMeta(userKey []byte) (*MetaRecord, error) {
	mk := EncodeMetaKey(userKey)
	raw, found, err := tx.get(mk)
	if err != nil || !found {
		return nil, err
	}
	m, err := DecodeMetaRecord(raw)
	if err != nil {
		return nil, fmt.Errorf("cedar: meta record of %s: %w", printable(userKey), err)
	}
	return m, nil
}

func checkType(userKey []byte, m *MetaRecord, t Type) error {
	if m.Type != t {
		return &TypeMismatchError{Key: bytes.Clone(userKey), Expected: t, Actual: m.Type}
	}
	return nil
}

// getIfExists returns the meta record of userKey, or nil if there is none.
// It never consults the cache and never allocates.
func (tx *txn) getIfExists(userKey []byte, t Type) (*MetaRecord, error) {
	m, err := tx.loadMeta(userKey)
	if err != nil || m == nil {
		return nil, err
	}
	if err := checkType(userKey, m, t); err != nil {
		return nil, err
	}
	return m, nil
}

// getOrCreate returns the meta record of userKey, allocating a fresh empty
// one if there is none. The caller must persist the result.
func (tx *txn) getOrCreate(userKey []byte, t Type) (*MetaRecord, error) {
	db := tx.db
	if m, ok := db.cache.Get(userKey); ok {
		db.metrics.cacheHits.Inc()
		if err := checkType(userKey, m, t); err != nil {
			return nil, err
		}
		return m, nil
	}
	db.metrics.cacheMisses.Inc()

	m, err := tx.loadMeta(userKey)
	if err != nil {
		return nil, err
	}
	if m != nil {
		if err := checkType(userKey, m, t); err != nil {
			return nil, err
		}
		tx.cacheUpdates = append(tx.cacheUpdates, cacheUpdate{bytes.Clone(userKey), m.Clone()})
		return m, nil
	}

	id, err := tx.allocateObjectID()
	if err != nil {
		return nil, err
	}
	if db.verbose {
		db.logger.Debug("cedar: new collection", "key", printable(userKey), "type", t, "id", id)
	}
	return &MetaRecord{ObjectID: id, Type: t}, nil
}

// persist writes m back, deleting the meta key once a collection is empty.
// Ascending sorted lists keep their record since the soft-delete boundary
// must survive.
func (tx *txn) persist(userKey []byte, m *MetaRecord) error {
	mk := EncodeMetaKey(userKey)
	if m.Count == 0 && m.Type != TypeAscSortedList {
		if err := tx.delete(mk); err != nil {
			return err
		}
		tx.cacheUpdates = append(tx.cacheUpdates, cacheUpdate{bytes.Clone(userKey), nil})
		return nil
	}
	if err := tx.put(mk, m.Encode()); err != nil {
		return err
	}
	tx.cacheUpdates = append(tx.cacheUpdates, cacheUpdate{bytes.Clone(userKey), m.Clone()})
	return nil
}

func (tx *txn) requestCompaction() {
	tx.compact = true
}
