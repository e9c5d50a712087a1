package cedar

// storage represents an ordered key-value engine (Bolt, Badger, in-memory).
// Keys are compared as unsigned byte strings.
type storage interface {
	// BeginTx starts a new transaction.
	BeginTx(writable bool) (storageTx, error)
	// Compact asks the engine to reclaim space held by deleted entries.
	// Engines that reclaim space in place may treat this as a no-op.
	Compact() error
	// Close closes the storage.
	Close() error
}

// storageTx represents a storage transaction over the whole key space.
type storageTx interface {
	// Writable returns true if this is a writable transaction.
	Writable() bool

	// Get retrieves a value by key. found is false if the key is absent;
	// a present key with an empty value returns a non-nil empty slice.
	Get(key []byte) (value []byte, found bool, err error)

	// Put stores a key-value pair.
	Put(key, value []byte) error

	// Delete removes a key. Deleting a missing key is not an error.
	Delete(key []byte) error

	// DeleteRange removes every key k with lower <= k < upper.
	DeleteRange(lower, upper []byte) error

	// Cursor returns a cursor for iteration. It must be closed before
	// the transaction ends.
	Cursor() storageCursor

	// Commit commits the transaction.
	Commit() error

	// Rollback aborts the transaction. It should be safe to call multiple times.
	Rollback() error

	// Size returns the database size in bytes (0 if unknown / not applicable).
	Size() int64
}

// storageCursor iterates over the sorted key space.
//
// Returned slices are only valid until the next cursor call.
type storageCursor interface {
	// First moves to the first key-value pair.
	First() (key, value []byte)

	// Last moves to the last key-value pair.
	Last() (key, value []byte)

	// Seek moves to the first key >= seek.
	Seek(seek []byte) (key, value []byte)

	// SeekLast moves to the last key that has the given prefix, or to the
	// last key before where such keys would be.
	SeekLast(prefix []byte) (key, value []byte)

	// Next moves to the next key-value pair.
	Next() (key, value []byte)

	// Prev moves to the previous key-value pair.
	Prev() (key, value []byte)

	// Err reports an engine error that ended iteration early.
	Err() error

	// Close releases the cursor.
	Close()
}
