package cedar

import (
	"encoding/binary"
)

// recoverNextObjectID scans every meta record once and returns the first
// object id that is safe to hand out. The persisted high-water mark covers
// ids whose collections have since been deleted.
func recoverNextObjectID(tx *txn) (uint64, error) {
	var maxID uint64
	var records int
	prefix := []byte{metaNamespace}
	err := tx.scan(prefix, nil, func(k, v []byte) (bool, error) {
		m, err := DecodeMetaRecord(v)
		if err != nil {
			return false, err
		}
		records++
		maxID = max(maxID, m.ObjectID)
		return true, nil
	})
	if err != nil {
		return 0, err
	}

	next := maxID + 1
	raw, found, err := tx.get(nextObjectIDKey)
	if err != nil {
		return 0, err
	}
	if found {
		if len(raw) != 8 {
			return 0, dataErrf(raw, 0, ErrCorruptMetadata, "invalid object id high-water mark")
		}
		next = max(next, binary.BigEndian.Uint64(raw))
	}
	if tx.db.verbose {
		tx.db.logger.Debug("cedar: recovered object ids", "records", records, "max_id", maxID, "next", next)
	}
	return next, nil
}

// allocateObjectID hands out the next object id and persists the new
// high-water mark in the same transaction.
func (tx *txn) allocateObjectID() (uint64, error) {
	id := tx.nextID
	tx.nextID++
	if err := tx.put(nextObjectIDKey, binary.BigEndian.AppendUint64(nil, tx.nextID)); err != nil {
		return 0, err
	}
	return id, nil
}
