package cedar

import (
	"bytes"
	"fmt"
	"time"
	"unsafe"

	"go.etcd.io/bbolt"
)

// All cedar keys live in one root bucket; the meta/data/system namespaces
// are key prefixes, not nested buckets.
const boltBucketName = "cedar"

type boltStorage struct {
	bdb *bbolt.DB
}

func openBoltStorage(path string, opt Options) (*boltStorage, error) {
	bopt := *bbolt.DefaultOptions
	bopt.Timeout = 10 * time.Second
	if opt.IsTesting {
		bopt.NoSync = true
		bopt.NoFreelistSync = true
		bopt.InitialMmapSize = 1024 * 1024 * 5
	} else {
		bopt.InitialMmapSize = 1024 * 1024 * 1024
		bopt.FreelistType = bbolt.FreelistMapType
	}
	if opt.MmapSize != 0 {
		bopt.InitialMmapSize = opt.MmapSize
	}

	bdb, err := bbolt.Open(path, 0666, &bopt)
	if err != nil {
		return nil, fmt.Errorf("bolt: %w", err)
	}
	err = bdb.Update(func(btx *bbolt.Tx) error {
		_, err := btx.CreateBucketIfNotExists(unsafeBytesFromString(boltBucketName))
		return err
	})
	if err != nil {
		bdb.Close()
		return nil, fmt.Errorf("bolt: creating root bucket: %w", err)
	}
	return &boltStorage{bdb: bdb}, nil
}

func (s *boltStorage) BeginTx(writable bool) (storageTx, error) {
	btx, err := s.bdb.Begin(writable)
	if err != nil {
		return nil, err
	}
	b := btx.Bucket(unsafeBytesFromString(boltBucketName))
	if b == nil {
		btx.Rollback()
		return nil, fmt.Errorf("bolt: root bucket %q missing", boltBucketName)
	}
	return &boltStorageTx{btx: btx, b: b}, nil
}

// Compact is a no-op: Bolt returns freed pages to its freelist on commit,
// so deletions do not leave tombstones behind.
func (s *boltStorage) Compact() error {
	return nil
}

func (s *boltStorage) Close() error {
	return s.bdb.Close()
}

type boltStorageTx struct {
	btx *bbolt.Tx
	b   *bbolt.Bucket
}

func (tx *boltStorageTx) Writable() bool { return tx.btx.Writable() }

func (tx *boltStorageTx) Get(key []byte) ([]byte, bool, error) {
	// Bucket.Get cannot tell an empty value from a missing key, so seek instead.
	k, v := tx.b.Cursor().Seek(key)
	if k == nil || !bytes.Equal(k, key) {
		return nil, false, nil
	}
	if v == nil {
		v = []byte{}
	}
	return v, true, nil
}

func (tx *boltStorageTx) Put(key, value []byte) error { return tx.b.Put(key, value) }

func (tx *boltStorageTx) Delete(key []byte) error { return tx.b.Delete(key) }

func (tx *boltStorageTx) DeleteRange(lower, upper []byte) error {
	// Deleting through the cursor while walking it skips entries in bbolt,
	// so collect first.
	var doomed [][]byte
	c := tx.b.Cursor()
	for k, _ := c.Seek(lower); k != nil && bytes.Compare(k, upper) < 0; k, _ = c.Next() {
		doomed = append(doomed, append([]byte(nil), k...))
	}
	for _, k := range doomed {
		if err := tx.b.Delete(k); err != nil {
			return err
		}
	}
	return nil
}

func (tx *boltStorageTx) Cursor() storageCursor { return boltCursor{c: tx.b.Cursor()} }

func (tx *boltStorageTx) Commit() error { return tx.btx.Commit() }

func (tx *boltStorageTx) Rollback() error {
	err := tx.btx.Rollback()
	if err == bbolt.ErrTxClosed {
		return nil
	}
	return err
}

func (tx *boltStorageTx) Size() int64 { return tx.btx.Size() }

type boltCursor struct {
	c *bbolt.Cursor
}

func (c boltCursor) First() ([]byte, []byte) { return c.c.First() }

func (c boltCursor) Last() ([]byte, []byte) { return c.c.Last() }

func (c boltCursor) Seek(seek []byte) ([]byte, []byte) { return c.c.Seek(seek) }

func (c boltCursor) SeekLast(prefix []byte) ([]byte, []byte) {
	if len(prefix) == 0 {
		return c.c.Last()
	}

	limit := append([]byte(nil), prefix...)
	if inc(limit) {
		k, _ := c.c.Seek(limit)
		if k == nil {
			return c.c.Last()
		}
		return c.c.Prev()
	}

	// All-0xFF prefix: nothing sorts after its keys.
	return c.c.Last()
}

func (c boltCursor) Next() ([]byte, []byte) { return c.c.Next() }

func (c boltCursor) Prev() ([]byte, []byte) { return c.c.Prev() }

func (c boltCursor) Err() error { return nil }

func (c boltCursor) Close() {}

func unsafeBytesFromString(s string) []byte {
	return unsafe.Slice(unsafe.StringData(s), len(s))
}
