package cedar

import (
	"bytes"
)

// SortedListItem is one scored entry. Scores are compared as unsigned
// big-endian numbers and must all have the same length within a list.
type SortedListItem struct {
	Score []byte
	Value []byte
}

// SortedListAdd inserts items. Items with equal scores keep insertion order.
func (db *DB) SortedListAdd(key []byte, items ...SortedListItem) (int, error) {
	if len(items) == 0 {
		return 0, nil
	}
	err := db.write(func(tx *txn) error {
		m, err := tx.getOrCreate(key, TypeSortedList)
		if err != nil {
			return err
		}
		e := m.SortedList()
		for _, item := range items {
			if err := tx.put(encodeScoredKey(m.ObjectID, item.Score, e.Sequence), item.Value); err != nil {
				return err
			}
			e.Sequence++
		}
		m.Count += uint64(len(items))
		m.Extra = e
		return tx.persist(key, m)
	})
	if err != nil {
		return 0, err
	}
	return len(items), nil
}

// SortedListLeftPop removes and returns the entry with the smallest score.
// If maxScore is non-nil and the smallest score is greater, nothing is
// popped.
func (db *DB) SortedListLeftPop(key, maxScore []byte) (SortedListItem, bool, error) {
	return db.sortedListPop(key, maxScore, true)
}

// SortedListRightPop removes and returns the entry with the largest score.
// If minScore is non-nil and the largest score is smaller, nothing is
// popped.
func (db *DB) SortedListRightPop(key, minScore []byte) (SortedListItem, bool, error) {
	return db.sortedListPop(key, minScore, false)
}

func (db *DB) sortedListPop(key, limit []byte, left bool) (item SortedListItem, found bool, err error) {
	err = db.write(func(tx *txn) error {
		m, err := tx.getIfExists(key, TypeSortedList)
		if err != nil || m == nil {
			return err
		}
		prefix := encodeDataPrefix(m.ObjectID)
		var k, v []byte
		if left {
			k, v, err = tx.first(prefix, nil)
		} else {
			k, v, err = tx.last(prefix)
		}
		if err != nil || k == nil {
			return err
		}
		score, _, err := decodeScoredKey(k)
		if err != nil {
			return err
		}
		if limit != nil {
			c := CompareScores(score, limit)
			if (left && c > 0) || (!left && c < 0) {
				return nil
			}
		}
		if err := tx.delete(k); err != nil {
			return err
		}
		item, found = SortedListItem{Score: score, Value: v}, true

		e := m.SortedList()
		var deletes *uint32
		if left {
			deletes = &e.LeftDeletes
		} else {
			deletes = &e.RightDeletes
		}
		*deletes++
		if *deletes >= tx.db.compactionThreshold {
			*deletes = 0
			tx.requestCompaction()
		}
		m.Count--
		m.Extra = e
		return tx.persist(key, m)
	})
	if err != nil {
		return SortedListItem{}, false, err
	}
	return
}

// SortedListForEach calls f in ascending (score, insertion) order until f
// returns false.
func (db *DB) SortedListForEach(key []byte, f func(score, value []byte) bool) (visited int, err error) {
	err = db.read(func(tx *txn) error {
		m, err := tx.getIfExists(key, TypeSortedList)
		if err != nil || m == nil {
			return err
		}
		return tx.scan(encodeDataPrefix(m.ObjectID), nil, func(k, v []byte) (bool, error) {
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

func (db *DB) SortedListSize(key []byte) (uint64, error) {
	return db.size(key, TypeSortedList)
}

func (db *DB) SortedListItems(key []byte) ([]SortedListItem, error) {
	var items []SortedListItem
	_, err := db.SortedListForEach(key, func(score, value []byte) bool {
		items = append(items, SortedListItem{bytes.Clone(score), bytes.Clone(value)})
		return true
	})
	return items, err
}
