package cedar

import (
	"bytes"
)

type MapItem struct {
	Field []byte
	Value []byte
}

// MapGet returns the value of field in the map stored at key.
func (db *DB) MapGet(key, field []byte) (value []byte, found bool, err error) {
	err = db.read(func(tx *txn) error {
		m, err := tx.getIfExists(key, TypeMap)
		if err != nil || m == nil {
			return err
		}
		v, ok, err := tx.get(encodeDataKey(m.ObjectID, field))
		if err != nil || !ok {
			return err
		}
		value, found = bytes.Clone(v), true
		return nil
	})
	return
}

// MapPut stores the given fields and returns how many of them were not
// present before. Overwriting an existing field updates its value only.
func (db *DB) MapPut(key []byte, items ...MapItem) (added int, err error) {
	if len(items) == 0 {
		return 0, nil
	}
	err = db.write(func(tx *txn) error {
		added = 0
		m, err := tx.getOrCreate(key, TypeMap)
		if err != nil {
			return err
		}
		for _, item := range items {
			dk := encodeDataKey(m.ObjectID, item.Field)
			_, exists, err := tx.get(dk)
			if err != nil {
				return err
			}
			if err := tx.put(dk, item.Value); err != nil {
				return err
			}
			if !exists {
				added++
			}
		}
		if added == 0 {
			return nil
		}
		m.Count += uint64(added)
		return tx.persist(key, m)
	})
	return
}

// MapRemove deletes field and returns its previous value.
func (db *DB) MapRemove(key, field []byte) (old []byte, found bool, err error) {
	err = db.write(func(tx *txn) error {
		m, err := tx.getIfExists(key, TypeMap)
		if err != nil || m == nil {
			return err
		}
		dk := encodeDataKey(m.ObjectID, field)
		v, ok, err := tx.get(dk)
		if err != nil || !ok {
			return err
		}
		old, found = bytes.Clone(v), true
		if err := tx.delete(dk); err != nil {
			return err
		}
		m.Count--
		return tx.persist(key, m)
	})
	if err != nil {
		return nil, false, err
	}
	return
}

// MapForEach calls f for every field in field order until f returns false,
// and returns the number of calls made. The slices passed to f are only
// valid during the call.
func (db *DB) MapForEach(key []byte, f func(field, value []byte) bool) (visited int, err error) {
	err = db.read(func(tx *txn) error {
		m, err := tx.getIfExists(key, TypeMap)
		if err != nil || m == nil {
			return err
		}
		return tx.scan(encodeDataPrefix(m.ObjectID), nil, func(k, v []byte) (bool, error) {
			visited++
			return f(dataSuffix(k), v), nil
		})
	})
	return
}

func (db *DB) MapSize(key []byte) (uint64, error) {
	return db.size(key, TypeMap)
}

// MapItems returns a copy of every field of the map at key.
func (db *DB) MapItems(key []byte) ([]MapItem, error) {
	var items []MapItem
	_, err := db.MapForEach(key, func(field, value []byte) bool {
		items = append(items, MapItem{bytes.Clone(field), bytes.Clone(value)})
		return true
	})
	return items, err
}

func (db *DB) size(key []byte, t Type) (n uint64, err error) {
	err = db.read(func(tx *txn) error {
		m, err := tx.getIfExists(key, t)
		if err != nil || m == nil {
			return err
		}
		n = m.Count
		return nil
	})
	return
}
