package cedar

import (
	"bytes"
	"errors"
	"fmt"
	"os"

	"github.com/dgraph-io/badger/v2"
)

// badgerGCDiscardRatio is the value-log rewrite threshold used by Compact.
const badgerGCDiscardRatio = 0.5

type badgerStorage struct {
	bdb *badger.DB
}

func openBadgerStorage(path string, opt Options) (*badgerStorage, error) {
	bopt := badger.DefaultOptions(path).WithLogger(nil)
	if opt.IsTesting {
		bopt = bopt.WithSyncWrites(false).WithValueLogFileSize(16 << 20).WithMaxTableSize(4 << 20)
	}
	// badger v2 does not create missing parent directories.
	if err := os.MkdirAll(path, 0755); err != nil {
		return nil, fmt.Errorf("badger: failed to create db dir: %w", err)
	}
	bdb, err := badger.Open(bopt)
	if err != nil {
		return nil, fmt.Errorf("badger: %w", err)
	}
	return &badgerStorage{bdb: bdb}, nil
}

func (s *badgerStorage) BeginTx(writable bool) (storageTx, error) {
	if s.bdb.IsClosed() {
		return nil, badger.ErrDBClosed
	}
	return &badgerStorageTx{txn: s.bdb.NewTransaction(writable), db: s.bdb, writable: writable}, nil
}

// Compact flattens the LSM tree so deletion markers are merged away, then
// rewrites value-log files until badger reports nothing left to reclaim.
func (s *badgerStorage) Compact() error {
	if err := s.bdb.Flatten(1); err != nil {
		return err
	}
	for {
		err := s.bdb.RunValueLogGC(badgerGCDiscardRatio)
		if errors.Is(err, badger.ErrNoRewrite) || errors.Is(err, badger.ErrRejected) {
			return nil
		} else if err != nil {
			return err
		}
	}
}

func (s *badgerStorage) Close() error {
	if s.bdb.IsClosed() {
		return nil
	}
	return s.bdb.Close()
}

type badgerStorageTx struct {
	db       *badger.DB
	txn      *badger.Txn
	writable bool
}

func (tx *badgerStorageTx) Writable() bool { return tx.writable }

func (tx *badgerStorageTx) Get(key []byte) ([]byte, bool, error) {
	item, err := tx.txn.Get(key)
	if errors.Is(err, badger.ErrKeyNotFound) {
		return nil, false, nil
	} else if err != nil {
		return nil, false, err
	}
	v, err := item.ValueCopy(nil)
	if err != nil {
		return nil, false, err
	}
	if v == nil {
		v = []byte{}
	}
	return v, true, nil
}

func (tx *badgerStorageTx) Put(key, value []byte) error {
	return tx.txn.Set(key, value)
}

func (tx *badgerStorageTx) Delete(key []byte) error {
	return tx.txn.Delete(key)
}

func (tx *badgerStorageTx) DeleteRange(lower, upper []byte) error {
	// A read-write txn allows a single live iterator, so collect the keys
	// and close it before deleting.
	var doomed [][]byte
	opts := badger.DefaultIteratorOptions
	opts.PrefetchValues = false
	it := tx.txn.NewIterator(opts)
	for it.Seek(lower); it.Valid(); it.Next() {
		k := it.Item().KeyCopy(nil)
		if bytes.Compare(k, upper) >= 0 {
			break
		}
		doomed = append(doomed, k)
	}
	it.Close()

	for _, k := range doomed {
		if err := tx.txn.Delete(k); err != nil {
			return err
		}
	}
	return nil
}

func (tx *badgerStorageTx) Cursor() storageCursor {
	return &badgerCursor{txn: tx.txn}
}

func (tx *badgerStorageTx) Commit() error {
	return tx.txn.Commit()
}

func (tx *badgerStorageTx) Rollback() error {
	tx.txn.Discard()
	return nil
}

func (tx *badgerStorageTx) Size() int64 {
	lsm, vlog := tx.db.Size()
	return lsm + vlog
}

// badgerCursor emulates a bidirectional cursor on top of badger's
// one-directional iterators, re-seeking whenever the direction changes.
type badgerCursor struct {
	txn     *badger.Txn
	it      *badger.Iterator
	reverse bool
	key     []byte
	err     error
}

func (c *badgerCursor) iter(reverse bool) *badger.Iterator {
	if c.it != nil && c.reverse == reverse {
		return c.it
	}
	if c.it != nil {
		c.it.Close()
	}
	opts := badger.DefaultIteratorOptions
	opts.PrefetchValues = false
	opts.Reverse = reverse
	c.it = c.txn.NewIterator(opts)
	c.reverse = reverse
	return c.it
}

func (c *badgerCursor) current() ([]byte, []byte) {
	if c.it == nil || !c.it.Valid() {
		c.key = nil
		return nil, nil
	}
	item := c.it.Item()
	v, err := item.ValueCopy(nil)
	if err != nil {
		c.err = err
		c.key = nil
		return nil, nil
	}
	if v == nil {
		v = []byte{}
	}
	c.key = item.KeyCopy(nil)
	return c.key, v
}

func (c *badgerCursor) First() ([]byte, []byte) {
	c.iter(false).Rewind()
	return c.current()
}

func (c *badgerCursor) Last() ([]byte, []byte) {
	c.iter(true).Rewind()
	return c.current()
}

func (c *badgerCursor) Seek(seek []byte) ([]byte, []byte) {
	c.iter(false).Seek(seek)
	return c.current()
}

func (c *badgerCursor) SeekLast(prefix []byte) ([]byte, []byte) {
	if len(prefix) == 0 {
		return c.Last()
	}
	limit := append([]byte(nil), prefix...)
	if !inc(limit) {
		return c.Last()
	}
	// A reverse Seek lands on the largest key <= limit; limit itself is
	// outside the prefix.
	it := c.iter(true)
	it.Seek(limit)
	if it.Valid() && bytes.Equal(it.Item().Key(), limit) {
		it.Next()
	}
	return c.current()
}

func (c *badgerCursor) Next() ([]byte, []byte) {
	return c.step(false)
}

func (c *badgerCursor) Prev() ([]byte, []byte) {
	return c.step(true)
}

func (c *badgerCursor) step(reverse bool) ([]byte, []byte) {
	if c.key == nil {
		return nil, nil
	}
	if c.reverse == reverse {
		c.it.Next()
		return c.current()
	}
	from := c.key
	it := c.iter(reverse)
	it.Seek(from)
	if it.Valid() && bytes.Equal(it.Item().Key(), from) {
		it.Next()
	}
	return c.current()
}

func (c *badgerCursor) Err() error { return c.err }

func (c *badgerCursor) Close() {
	if c.it != nil {
		c.it.Close()
		c.it = nil
	}
}
