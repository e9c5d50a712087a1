package cedar

import (
	"bytes"
)

// ListLeftPush prepends values one at a time, so the last value ends up
// first. It returns the number of values pushed.
func (db *DB) ListLeftPush(key []byte, values ...[]byte) (int, error) {
	return db.listPush(key, values, true)
}

// ListRightPush appends values in order.
func (db *DB) ListRightPush(key []byte, values ...[]byte) (int, error) {
	return db.listPush(key, values, false)
}

func (db *DB) listPush(key []byte, values [][]byte, left bool) (int, error) {
	if len(values) == 0 {
		return 0, nil
	}
	err := db.write(func(tx *txn) error {
		m, err := tx.getOrCreate(key, TypeList)
		if err != nil {
			return err
		}
		e := m.List()
		for _, v := range values {
			var pos int64
			if left {
				pos = e.Left
				e.Left--
			} else {
				pos = e.Right
				e.Right++
			}
			if err := tx.put(encodeListKey(m.ObjectID, pos), v); err != nil {
				return err
			}
		}
		m.Count += uint64(len(values))
		m.Extra = e
		return tx.persist(key, m)
	})
	if err != nil {
		return 0, err
	}
	return len(values), nil
}

func (db *DB) ListLeftPop(key []byte) ([]byte, bool, error) {
	return db.listPop(key, true)
}

func (db *DB) ListRightPop(key []byte) ([]byte, bool, error) {
	return db.listPop(key, false)
}

func (db *DB) listPop(key []byte, left bool) (value []byte, found bool, err error) {
	err = db.write(func(tx *txn) error {
		m, err := tx.getIfExists(key, TypeList)
		if err != nil || m == nil {
			return err
		}
		e := m.List()
		var pos int64
		if left {
			e.Left++
			pos = e.Left
		} else {
			e.Right--
			pos = e.Right
		}
		dk := encodeListKey(m.ObjectID, pos)
		v, ok, err := tx.get(dk)
		if err != nil || !ok {
			// Cursors stay put when there is nothing to pop.
			return err
		}
		value, found = bytes.Clone(v), true
		if err := tx.delete(dk); err != nil {
			return err
		}
		m.Count--
		m.Extra = e
		return tx.persist(key, m)
	})
	if err != nil {
		return nil, false, err
	}
	return
}

// ListForEach calls f with zero-based indices, head to tail, until f
// returns false.
func (db *DB) ListForEach(key []byte, f func(index int64, value []byte) bool) (visited int, err error) {
	err = db.read(func(tx *txn) error {
		m, err := tx.getIfExists(key, TypeList)
		if err != nil || m == nil {
			return err
		}
		return tx.scan(encodeDataPrefix(m.ObjectID), nil, func(_, v []byte) (bool, error) {
			idx := int64(visited)
			visited++
			return f(idx, v), nil
		})
	})
	return
}

func (db *DB) ListSize(key []byte) (uint64, error) {
	return db.size(key, TypeList)
}

// ListItems returns a copy of the list's values, head to tail.
func (db *DB) ListItems(key []byte) ([][]byte, error) {
	var values [][]byte
	_, err := db.ListForEach(key, func(_ int64, value []byte) bool {
		values = append(values, bytes.Clone(value))
		return true
	})
	return values, err
}
