package cedar

import (
	"bytes"
	"fmt"
	"slices"
	"sort"
	"sync"
)

var errMemClosed = fmt.Errorf("storage closed")

type memStorage struct {
	mu     sync.Mutex
	cond   *sync.Cond
	items  []memKV // sorted by key, never mutated in place once published
	closed bool
	writer bool

	compactions int
}

// newMemStorage returns a transient in-memory storage intended for tests.
func newMemStorage() *memStorage {
	s := &memStorage{}
	s.cond = sync.NewCond(&s.mu)
	return s
}

func (s *memStorage) BeginTx(writable bool) (storageTx, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil, errMemClosed
	}
	if !writable {
		// Committed item slices are immutable, so readers share them.
		return &memTx{base: s, items: s.items}, nil
	}
	for s.writer && !s.closed {
		s.cond.Wait()
	}
	if s.closed {
		return nil, errMemClosed
	}
	s.writer = true

	snap := make([]memKV, len(s.items))
	copy(snap, s.items)
	return &memTx{base: s, writable: true, items: snap}, nil
}

func (s *memStorage) Compact() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return errMemClosed
	}
	s.compactions++
	return nil
}

func (s *memStorage) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	s.items = nil
	s.cond.Broadcast()
	return nil
}

type memKV struct {
	key   []byte
	value []byte
}

type memTx struct {
	base     *memStorage
	writable bool
	items    []memKV
	closed   bool
}

func (tx *memTx) Writable() bool { return tx.writable }

func (tx *memTx) closeLocked() {
	if tx.closed {
		return
	}
	tx.closed = true
	if tx.writable {
		tx.base.writer = false
		tx.base.cond.Broadcast()
	}
}

func (tx *memTx) find(key []byte) (idx int, ok bool) {
	items := tx.items
	i := sort.Search(len(items), func(i int) bool {
		return bytes.Compare(items[i].key, key) >= 0
	})
	return i, i < len(items) && bytes.Equal(items[i].key, key)
}

func (tx *memTx) Get(key []byte) ([]byte, bool, error) {
	if tx.closed {
		return nil, false, fmt.Errorf("tx is closed")
	}
	i, ok := tx.find(key)
	if !ok {
		return nil, false, nil
	}
	return tx.items[i].value, true, nil
}

func (tx *memTx) Put(key, value []byte) error {
	if !tx.writable {
		return fmt.Errorf("tx not writable")
	}
	kv := memKV{key: slices.Clone(key), value: append([]byte{}, value...)}
	i, ok := tx.find(key)
	if ok {
		tx.items[i] = kv
		return nil
	}
	tx.items = slices.Insert(tx.items, i, kv)
	return nil
}

func (tx *memTx) Delete(key []byte) error {
	if !tx.writable {
		return fmt.Errorf("tx not writable")
	}
	i, ok := tx.find(key)
	if !ok {
		return nil
	}
	tx.items = slices.Delete(tx.items, i, i+1)
	return nil
}

func (tx *memTx) DeleteRange(lower, upper []byte) error {
	if !tx.writable {
		return fmt.Errorf("tx not writable")
	}
	lo, _ := tx.find(lower)
	hi, _ := tx.find(upper)
	if lo < hi {
		tx.items = slices.Delete(tx.items, lo, hi)
	}
	return nil
}

func (tx *memTx) Cursor() storageCursor {
	return &memCursor{tx: tx, pos: -1}
}

func (tx *memTx) Commit() error {
	if tx.closed {
		return nil
	}
	if !tx.writable {
		return fmt.Errorf("tx not writable")
	}
	tx.base.mu.Lock()
	defer tx.base.mu.Unlock()
	if tx.base.closed {
		tx.closeLocked()
		return errMemClosed
	}
	tx.base.items = tx.items
	tx.closeLocked()
	return nil
}

func (tx *memTx) Rollback() error {
	tx.base.mu.Lock()
	defer tx.base.mu.Unlock()
	tx.closeLocked()
	return nil
}

func (tx *memTx) Size() int64 {
	var n int64
	for _, kv := range tx.items {
		n += int64(len(kv.key) + len(kv.value))
	}
	return n
}

type memCursor struct {
	tx  *memTx
	pos int
}

func (c *memCursor) at(i int) ([]byte, []byte) {
	c.pos = i
	if i < 0 || i >= len(c.tx.items) {
		return nil, nil
	}
	kv := c.tx.items[i]
	return kv.key, kv.value
}

func (c *memCursor) First() ([]byte, []byte) {
	return c.at(0)
}

func (c *memCursor) Last() ([]byte, []byte) {
	return c.at(len(c.tx.items) - 1)
}

func (c *memCursor) Seek(seek []byte) ([]byte, []byte) {
	i, _ := c.tx.find(seek)
	return c.at(i)
}

func (c *memCursor) SeekLast(prefix []byte) ([]byte, []byte) {
	if len(prefix) == 0 {
		return c.Last()
	}
	limit := append([]byte(nil), prefix...)
	if !inc(limit) {
		return c.Last()
	}
	i, _ := c.tx.find(limit)
	return c.at(i - 1)
}

func (c *memCursor) Next() ([]byte, []byte) {
	if c.pos >= len(c.tx.items) {
		return nil, nil
	}
	return c.at(c.pos + 1)
}

func (c *memCursor) Prev() ([]byte, []byte) {
	if c.pos < 0 {
		return nil, nil
	}
	return c.at(c.pos - 1)
}

func (c *memCursor) Err() error { return nil }

func (c *memCursor) Close() {}
