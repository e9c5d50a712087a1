package cedar

import (
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
)

// InMemory as the path opens a transient in-memory database.
const InMemory = ":memory:"

const defaultCompactionThreshold = 300

// Engine selects the storage engine backing a DB.
type Engine string

const (
	EngineBolt   Engine = "bolt"
	EngineBadger Engine = "badger"
	EngineMemory Engine = "memory"
)

func ParseEngine(s string) (Engine, error) {
	switch e := Engine(s); e {
	case "", EngineBolt:
		return EngineBolt, nil
	case EngineBadger, EngineMemory:
		return e, nil
	default:
		return "", fmt.Errorf("cedar: unknown engine %q", s)
	}
}

type Options struct {
	Logger    *slog.Logger
	Verbose   bool
	IsTesting bool
	MmapSize  int

	// Engine defaults to EngineBolt.
	Engine Engine

	// MetaCacheSize bounds the number of cached meta records (default 1000).
	MetaCacheSize int

	// CompactionThreshold is the number of pops from one end of a sorted
	// list, or from an ascending sorted list, after which space is
	// reclaimed (default 300).
	CompactionThreshold int
}

// DB is a collection store. All methods are safe for concurrent use.
// Mutating methods serialize on a single lock; readers run against an
// engine snapshot and never block.
type DB struct {
	st      storage
	engine  Engine
	logger  *slog.Logger
	verbose bool

	compactionThreshold uint32

	cache   *metaCache
	metrics *dbMetrics

	writeLock sync.Mutex
	nextID    uint64 // guarded by writeLock
	closed    atomic.Bool
}

func Open(path string, opt Options) (*DB, error) {
	engine := opt.Engine
	if engine == "" {
		engine = EngineBolt
	}
	if path == InMemory {
		engine = EngineMemory
	}

	var st storage
	var err error
	switch engine {
	case EngineBolt:
		st, err = openBoltStorage(path, opt)
	case EngineBadger:
		st, err = openBadgerStorage(path, opt)
	case EngineMemory:
		st = newMemStorage()
	default:
		err = fmt.Errorf("unknown engine %q", engine)
	}
	if err != nil {
		return nil, fmt.Errorf("cedar: %w", err)
	}
	return openStorage(st, engine, opt)
}

func openStorage(st storage, engine Engine, opt Options) (*DB, error) {
	cache, err := newMetaCache(opt.MetaCacheSize)
	if err != nil {
		st.Close()
		return nil, fmt.Errorf("cedar: %w", err)
	}

	db := &DB{
		st:                  st,
		engine:              engine,
		logger:              opt.Logger,
		verbose:             opt.Verbose,
		compactionThreshold: defaultCompactionThreshold,
		cache:               cache,
		metrics:             newDBMetrics(),
	}
	if db.logger == nil {
		db.logger = slog.Default()
	}
	if opt.CompactionThreshold > 0 {
		db.compactionThreshold = uint32(opt.CompactionThreshold)
	}

	err = db.read(func(tx *txn) error {
		var err error
		db.nextID, err = recoverNextObjectID(tx)
		return err
	})
	if err != nil {
		st.Close()
		return nil, err
	}
	if db.verbose {
		db.logger.Debug("cedar: opened", "engine", engine, "next_object_id", db.nextID)
	}
	return db, nil
}

func (db *DB) Engine() Engine {
	return db.engine
}

// Close waits for in-flight mutations, then releases the engine. Further
// calls fail with ErrClosed.
func (db *DB) Close() error {
	db.writeLock.Lock()
	defer db.writeLock.Unlock()
	if db.closed.Swap(true) {
		return nil
	}
	db.cache.Clear()
	if err := db.st.Close(); err != nil {
		return engineErr("close", nil, err)
	}
	return nil
}

// Compact asks the engine to reclaim space held by deleted entries.
func (db *DB) Compact() error {
	db.writeLock.Lock()
	defer db.writeLock.Unlock()
	if db.closed.Load() {
		return ErrClosed
	}
	return db.compactLocked()
}

func (db *DB) compactLocked() error {
	db.metrics.compactions.Inc()
	err := db.st.Compact()
	if err != nil {
		db.metrics.compactionErrors.Inc()
		return engineErr("compact", nil, err)
	}
	if db.verbose {
		db.logger.Debug("cedar: compacted", "engine", db.engine)
	}
	return nil
}

// Size returns the engine's on-disk size in bytes, or 0 if unknown.
func (db *DB) Size() (int64, error) {
	var size int64
	err := db.read(func(tx *txn) error {
		size = tx.stx.Size()
		return nil
	})
	return size, err
}
