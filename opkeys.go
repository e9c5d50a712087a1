package cedar

// ForEachKeys calls f for every collection whose user key starts with
// prefix (all collections if prefix is empty), in user key order, until f
// returns false. Ascending sorted lists are reported even when empty.
func (db *DB) ForEachKeys(prefix []byte, f func(userKey []byte, m *MetaRecord) bool) (visited int, err error) {
	err = db.read(func(tx *txn) error {
		return tx.forEachMeta(prefix, func(userKey []byte, m *MetaRecord) bool {
			visited++
			return f(userKey, m)
		})
	})
	return
}

func (tx *txn) forEachMeta(prefix []byte, f func(userKey []byte, m *MetaRecord) bool) error {
	return tx.scan(EncodeMetaKey(prefix), nil, func(k, v []byte) (bool, error) {
		userKey, _ := DecodeMetaKey(k)
		m, err := DecodeMetaRecord(v)
		if err != nil {
			return false, err
		}
		return f(userKey, m), nil
	})
}

// Keys returns the user keys of every collection starting with prefix.
func (db *DB) Keys(prefix []byte) ([][]byte, error) {
	var keys [][]byte
	_, err := db.ForEachKeys(prefix, func(userKey []byte, _ *MetaRecord) bool {
		keys = append(keys, append([]byte(nil), userKey...))
		return true
	})
	return keys, err
}

// Meta returns the meta record stored for key.
func (db *DB) Meta(key []byte) (m *MetaRecord, found bool, err error) {
	err = db.read(func(tx *txn) error {
		m, err = tx.loadMeta(key)
		return err
	})
	return m, m != nil, err
}
