package cedar

import (
	"bytes"
)

// AscSortedListAdd inserts items into an ascending sorted list. Items whose
// key would fall below the list's soft-delete boundary (that is, into the
// already popped range) are dropped and not counted.
func (db *DB) AscSortedListAdd(key []byte, items ...SortedListItem) (added int, err error) {
	if len(items) == 0 {
		return 0, nil
	}
	err = db.write(func(tx *txn) error {
		added = 0
		m, err := tx.getOrCreate(key, TypeAscSortedList)
		if err != nil {
			return err
		}
		e := m.AscSortedList()
		for _, item := range items {
			dk := encodeScoredKey(m.ObjectID, item.Score, e.Sequence)
			e.Sequence++
			if e.MinKey != nil && bytes.Compare(dk, e.MinKey) < 0 {
				tx.db.metrics.rejectedAdds.Inc()
				if tx.db.verbose {
					tx.db.logger.Debug("cedar: add below boundary dropped", "key", printable(key), hexAttr("score", item.Score))
				}
				continue
			}
			if err := tx.put(dk, item.Value); err != nil {
				return err
			}
			added++
		}
		m.Count += uint64(added)
		m.Extra = e
		return tx.persist(key, m)
	})
	return
}

// AscSortedListPop removes and returns the live entry with the smallest
// score. If maxScore is non-nil and that score is greater, nothing is popped.
//
// The entry is not deleted; instead the boundary moves past it. Dead entries
// are range-deleted once the list runs empty or enough pops accumulate.
func (db *DB) AscSortedListPop(key, maxScore []byte) (item SortedListItem, found bool, err error) {
	err = db.write(func(tx *txn) error {
		m, err := tx.getIfExists(key, TypeAscSortedList)
		if err != nil || m == nil {
			return err
		}
		e := m.AscSortedList()
		prefix := encodeDataPrefix(m.ObjectID)
		k, v, err := tx.first(prefix, e.MinKey)
		if err != nil || k == nil {
			return err
		}
		score, _, err := decodeScoredKey(k)
		if err != nil {
			return err
		}
		if maxScore != nil && CompareScores(score, maxScore) > 0 {
			return nil
		}
		item, found = SortedListItem{Score: score, Value: v}, true

		minKey, ok := PrefixUpperBound(k)
		if !ok {
			return dataErrf(k, 0, nil, "no key sorts after popped entry")
		}
		e.MinKey = minKey
		e.Deletes++
		if m.Count > 0 {
			m.Count--
		}
		if m.Count == 0 || e.Deletes >= tx.db.compactionThreshold {
			e.Deletes = 0
			if err := tx.prune(key, prefix, e.MinKey); err != nil {
				return err
			}
		}
		m.Extra = e
		return tx.persist(key, m)
	})
	if err != nil {
		return SortedListItem{}, false, err
	}
	return
}

// AscSortedListPrune physically deletes the entries below the soft-delete
// boundary. It never changes the live contents or the count.
func (db *DB) AscSortedListPrune(key []byte) error {
	return db.write(func(tx *txn) error {
		m, err := tx.getIfExists(key, TypeAscSortedList)
		if err != nil || m == nil {
			return err
		}
		e := m.AscSortedList()
		if e.MinKey == nil {
			return nil
		}
		return tx.prune(key, encodeDataPrefix(m.ObjectID), e.MinKey)
	})
}

func (tx *txn) prune(userKey, prefix, minKey []byte) error {
	upper := minKey
	if end, ok := PrefixUpperBound(prefix); ok && bytes.Compare(end, upper) < 0 {
		upper = end
	}
	if err := tx.deleteRange(prefix, upper); err != nil {
		return err
	}
	tx.db.metrics.prunes.Inc()
	if tx.db.verbose {
		tx.db.logger.Debug("cedar: pruned", "key", printable(userKey), hexAttr("min_key", minKey))
	}
	return nil
}

// AscSortedListForEach calls f for the live entries in ascending order until
// f returns false.
func (db *DB) AscSortedListForEach(key []byte, f func(score, value []byte) bool) (visited int, err error) {
	err = db.read(func(tx *txn) error {
		m, err := tx.getIfExists(key, TypeAscSortedList)
		if err != nil || m == nil {
			return err
		}
		e := m.AscSortedList()
		return tx.scan(encodeDataPrefix(m.ObjectID), e.MinKey, func(k, v []byte) (bool, error) {
			score, _, err := decodeScoredKey(k)
			if err != nil {
				return false, err
			}
			visited++
			return f(score, v), nil
		})
	})
	return
}

func (db *DB) AscSortedListSize(key []byte) (uint64, error) {
	return db.size(key, TypeAscSortedList)
}

func (db *DB) AscSortedListItems(key []byte) ([]SortedListItem, error) {
	var items []SortedListItem
	_, err := db.AscSortedListForEach(key, func(score, value []byte) bool {
		items = append(items, SortedListItem{bytes.Clone(score), bytes.Clone(value)})
		return true
	})
	return items, err
}
