package cedar

import (
	"bytes"
)

var setMarker = []byte{}

// SetAdd adds members to the set at key and returns how many were new.
func (db *DB) SetAdd(key []byte, members ...[]byte) (added int, err error) {
	if len(members) == 0 {
		return 0, nil
	}
	err = db.write(func(tx *txn) error {
		added = 0
		m, err := tx.getOrCreate(key, TypeSet)
		if err != nil {
			return err
		}
		for _, member := range members {
			dk := encodeDataKey(m.ObjectID, member)
			_, exists, err := tx.get(dk)
			if err != nil {
				return err
			}
			if exists {
				continue
			}
			if err := tx.put(dk, setMarker); err != nil {
				return err
			}
			added++
		}
		if added == 0 {
			return nil
		}
		m.Count += uint64(added)
		return tx.persist(key, m)
	})
	return
}

// SetIsMember reports whether every one of members is in the set. It is
// false when no members are given.
func (db *DB) SetIsMember(key []byte, members ...[]byte) (ok bool, err error) {
	if len(members) == 0 {
		return false, nil
	}
	err = db.read(func(tx *txn) error {
		m, err := tx.getIfExists(key, TypeSet)
		if err != nil || m == nil {
			return err
		}
		for _, member := range members {
			_, exists, err := tx.get(encodeDataKey(m.ObjectID, member))
			if err != nil || !exists {
				return err
			}
		}
		ok = true
		return nil
	})
	return
}

// SetRemove removes members from the set and returns how many were present.
func (db *DB) SetRemove(key []byte, members ...[]byte) (removed int, err error) {
	if len(members) == 0 {
		return 0, nil
	}
	err = db.write(func(tx *txn) error {
		removed = 0
		m, err := tx.getIfExists(key, TypeSet)
		if err != nil || m == nil {
			return err
		}
		for _, member := range members {
			dk := encodeDataKey(m.ObjectID, member)
			_, exists, err := tx.get(dk)
			if err != nil {
				return err
			}
			if !exists {
				continue
			}
			if err := tx.delete(dk); err != nil {
				return err
			}
			removed++
		}
		if removed == 0 {
			return nil
		}
		m.Count -= uint64(removed)
		return tx.persist(key, m)
	})
	return
}

// SetForEach calls f for every member in byte order until f returns false.
func (db *DB) SetForEach(key []byte, f func(member []byte) bool) (visited int, err error) {
	err = db.read(func(tx *txn) error {
		m, err := tx.getIfExists(key, TypeSet)
		if err != nil || m == nil {
			return err
		}
		return tx.scan(encodeDataPrefix(m.ObjectID), nil, func(k, _ []byte) (bool, error) {
			visited++
			return f(dataSuffix(k)), nil
		})
	})
	return
}

func (db *DB) SetSize(key []byte) (uint64, error) {
	return db.size(key, TypeSet)
}

func (db *DB) SetMembers(key []byte) ([][]byte, error) {
	var members [][]byte
	_, err := db.SetForEach(key, func(member []byte) bool {
		members = append(members, bytes.Clone(member))
		return true
	})
	return members, err
}
