package cedar

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func openTestStorage(t *testing.T, engine Engine) storage {
	t.Helper()
	opt := Options{IsTesting: true}
	var st storage
	switch engine {
	case EngineMemory:
		st = newMemStorage()
	case EngineBolt:
		st = must(openBoltStorage(filepath.Join(t.TempDir(), "test.db"), opt))
	case EngineBadger:
		st = must(openBadgerStorage(filepath.Join(t.TempDir(), "badger"), opt))
	default:
		t.Fatalf("unknown engine %q", engine)
	}
	t.Cleanup(func() { st.Close() })
	return st
}

// eachStorage runs f against a fresh engine holding a=1 b=2 c=3 d=<empty>.
func eachStorage(t *testing.T, f func(t *testing.T, st storage)) {
	for _, engine := range testEngines {
		t.Run(string(engine), func(t *testing.T) {
			st := openTestStorage(t, engine)
			tx, err := st.BeginTx(true)
			require.NoError(t, err)
			require.NoError(t, tx.Put(b("a"), b("1")))
			require.NoError(t, tx.Put(b("b"), b("2")))
			require.NoError(t, tx.Put(b("c"), b("3")))
			require.NoError(t, tx.Put(b("d"), []byte{}))
			require.NoError(t, tx.Commit())
			f(t, st)
		})
	}
}

func readTx(t *testing.T, st storage, f func(tx storageTx)) {
	t.Helper()
	tx, err := st.BeginTx(false)
	require.NoError(t, err)
	defer tx.Rollback()
	require.False(t, tx.Writable())
	f(tx)
}

func TestStorageGet(t *testing.T) {
	eachStorage(t, func(t *testing.T, st storage) {
		readTx(t, st, func(tx storageTx) {
			v, found, err := tx.Get(b("b"))
			require.NoError(t, err)
			require.True(t, found)
			require.Equal(t, b("2"), v)

			v, found, err = tx.Get(b("d"))
			require.NoError(t, err)
			require.True(t, found, "empty value must be found")
			require.NotNil(t, v)
			require.Empty(t, v)

			v, found, err = tx.Get(b("bb"))
			require.NoError(t, err)
			require.False(t, found)
			require.Nil(t, v)
		})
	})
}

func TestStorageCursor(t *testing.T) {
	eachStorage(t, func(t *testing.T, st storage) {
		readTx(t, st, func(tx storageTx) {
			c := tx.Cursor()
			defer c.Close()

			k, v := c.First()
			require.Equal(t, "a", string(k))
			require.Equal(t, "1", string(v))
			k, _ = c.Last()
			require.Equal(t, "d", string(k))

			k, _ = c.Seek(b("bb"))
			require.Equal(t, "c", string(k))
			k, _ = c.Seek(b("z"))
			require.Nil(t, k)

			k, _ = c.SeekLast(b("b"))
			require.Equal(t, "b", string(k))
			k, _ = c.SeekLast(b("bz"))
			require.Equal(t, "b", string(k), "last key before the prefix")
			k, _ = c.SeekLast(nil)
			require.Equal(t, "d", string(k))
			k, _ = c.SeekLast([]byte{0xFF})
			require.Equal(t, "d", string(k))

			require.NoError(t, c.Err())
		})
	})
}

func TestStorageCursorChangesDirection(t *testing.T) {
	eachStorage(t, func(t *testing.T, st storage) {
		readTx(t, st, func(tx storageTx) {
			c := tx.Cursor()
			defer c.Close()

			var got []string
			k, _ := c.Seek(b("b"))
			got = append(got, string(k))
			k, _ = c.Next()
			got = append(got, string(k))
			k, _ = c.Prev()
			got = append(got, string(k))
			k, _ = c.Prev()
			got = append(got, string(k))
			k, _ = c.Next()
			got = append(got, string(k))
			require.Equal(t, []string{"b", "c", "b", "a", "b"}, got)

			k, _ = c.Last()
			require.Equal(t, "d", string(k))
			k, _ = c.Prev()
			require.Equal(t, "c", string(k))
			k, _ = c.Next()
			require.Equal(t, "d", string(k))
			k, _ = c.Next()
			require.Nil(t, k)
		})
	})
}

func TestStorageDeleteRange(t *testing.T) {
	eachStorage(t, func(t *testing.T, st storage) {
		tx, err := st.BeginTx(true)
		require.NoError(t, err)
		require.True(t, tx.Writable())
		require.NoError(t, tx.DeleteRange(b("b"), b("d")))
		require.NoError(t, tx.Delete(b("missing")))
		require.NoError(t, tx.Commit())

		readTx(t, st, func(tx storageTx) {
			c := tx.Cursor()
			defer c.Close()
			var keys []string
			for k, _ := c.First(); k != nil; k, _ = c.Next() {
				keys = append(keys, string(k))
			}
			require.Equal(t, []string{"a", "d"}, keys)
		})
	})
}

func TestStorageRollback(t *testing.T) {
	eachStorage(t, func(t *testing.T, st storage) {
		tx, err := st.BeginTx(true)
		require.NoError(t, err)
		require.NoError(t, tx.Put(b("x"), b("9")))
		require.NoError(t, tx.Delete(b("a")))

		// Uncommitted writes are visible inside the transaction.
		v, found, err := tx.Get(b("x"))
		require.NoError(t, err)
		require.True(t, found)
		require.Equal(t, b("9"), v)

		require.NoError(t, tx.Rollback())
		require.NoError(t, tx.Rollback())

		readTx(t, st, func(tx storageTx) {
			_, found, err := tx.Get(b("x"))
			require.NoError(t, err)
			require.False(t, found)
			_, found, err = tx.Get(b("a"))
			require.NoError(t, err)
			require.True(t, found)
		})
	})
}

func TestStorageSnapshot(t *testing.T) {
	eachStorage(t, func(t *testing.T, st storage) {
		rtx, err := st.BeginTx(false)
		require.NoError(t, err)
		defer rtx.Rollback()

		wtx, err := st.BeginTx(true)
		require.NoError(t, err)
		require.NoError(t, wtx.Put(b("x"), b("9")))
		require.NoError(t, wtx.Commit())

		_, found, err := rtx.Get(b("x"))
		require.NoError(t, err)
		require.False(t, found, "reader saw a write committed after it started")

		readTx(t, st, func(tx storageTx) {
			_, found, err := tx.Get(b("x"))
			require.NoError(t, err)
			require.True(t, found)
		})
	})
}

func TestStorageCompactAndClose(t *testing.T) {
	for _, engine := range testEngines {
		t.Run(string(engine), func(t *testing.T) {
			st := openTestStorage(t, engine)
			require.NoError(t, st.Compact())
			require.NoError(t, st.Close())
			_, err := st.BeginTx(false)
			require.Error(t, err)
		})
	}
}
