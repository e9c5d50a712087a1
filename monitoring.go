package cedar

import (
	"io"

	"github.com/VictoriaMetrics/metrics"
)

// dbMetrics holds the counters of one DB. Each DB owns its own set, so
// several databases in one process do not clash.
type dbMetrics struct {
	set *metrics.Set

	mutations        *metrics.Counter
	compactions      *metrics.Counter
	compactionErrors *metrics.Counter
	prunes           *metrics.Counter
	rejectedAdds     *metrics.Counter
	cacheHits        *metrics.Counter
	cacheMisses      *metrics.Counter
	allocations      *metrics.Counter
}

func newDBMetrics() *dbMetrics {
	s := metrics.NewSet()
	return &dbMetrics{
		set:              s,
		mutations:        s.NewCounter("cedar_mutations_total"),
		compactions:      s.NewCounter("cedar_compactions_total"),
		compactionErrors: s.NewCounter("cedar_compaction_errors_total"),
		prunes:           s.NewCounter("cedar_prunes_total"),
		rejectedAdds:     s.NewCounter("cedar_rejected_adds_total"),
		cacheHits:        s.NewCounter("cedar_meta_cache_hits_total"),
		cacheMisses:      s.NewCounter("cedar_meta_cache_misses_total"),
		allocations:      s.NewCounter("cedar_object_ids_allocated_total"),
	}
}

type Stats struct {
	Mutations        uint64
	Compactions      uint64
	CompactionErrors uint64
	Prunes           uint64
	RejectedAdds     uint64
	CacheHits        uint64
	CacheMisses      uint64
	CachedRecords    int
	AllocatedIDs     uint64
	NextObjectID     uint64
}

// Stats returns a snapshot of the DB counters.
func (db *DB) Stats() Stats {
	m := db.metrics
	db.writeLock.Lock()
	next := db.nextID
	db.writeLock.Unlock()
	return Stats{
		Mutations:        m.mutations.Get(),
		Compactions:      m.compactions.Get(),
		CompactionErrors: m.compactionErrors.Get(),
		Prunes:           m.prunes.Get(),
		RejectedAdds:     m.rejectedAdds.Get(),
		CacheHits:        m.cacheHits.Get(),
		CacheMisses:      m.cacheMisses.Get(),
		CachedRecords:    db.cache.Len(),
		AllocatedIDs:     m.allocations.Get(),
		NextObjectID:     next,
	}
}

// WriteMetrics writes the DB counters in Prometheus text exposition format.
func (db *DB) WriteMetrics(w io.Writer) {
	db.metrics.set.WritePrometheus(w)
}
