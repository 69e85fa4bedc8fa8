// Package perf keeps an in-memory ring of timing samples for HTTP
// requests, SQL queries, and outbound email sends. The ring is written
// on the hot path and aggregated only when the admin dashboard asks.
package perf

import (
	"sort"
	"sync"
	"sync/atomic"
	"time"
)

// DefaultRingSize is the sample capacity used when none is configured.
const DefaultRingSize = 10000

// EntryKind labels what a sample measured.
type EntryKind uint8

const (
	KindRequest EntryKind = iota
	KindQuery
	KindEmail
)

// Entry is one timing sample.
type Entry struct {
	Kind       EntryKind
	Path       string // "POST /api/register/team", a SQL verb label, or an email kind
	StatusCode int    // HTTP status; zero for queries and emails
	DurationMs float64
	Timestamp  time.Time
}

// Collector stores samples in a fixed ring. Recording never blocks on
// aggregation; once the ring is full the oldest sample is replaced.
type Collector struct {
	mu       sync.Mutex
	ring     []Entry
	next     int
	recorded int64 // lifetime sample count across all kinds, read atomically
	requests int64 // lifetime KindRequest count, read atomically
}

// NewCollector allocates a collector holding at most size samples.
// PRE: size > 0, else DefaultRingSize is used
// POST: the ring is pre-allocated; Record never allocates
func NewCollector(size int) *Collector {
	if size <= 0 {
		size = DefaultRingSize
	}
	return &Collector{ring: make([]Entry, size)}
}

// Record stores one sample, replacing the oldest when the ring is full.
// The lock covers a single slot write.
func (c *Collector) Record(e Entry) {
	c.mu.Lock()
	c.ring[c.next] = e
	c.next = (c.next + 1) % len(c.ring)
	c.mu.Unlock()
	atomic.AddInt64(&c.recorded, 1)
	if e.Kind == KindRequest {
		atomic.AddInt64(&c.requests, 1)
	}
}

// TotalRecorded reports how many samples were written over the
// collector's lifetime, including ones the ring has since dropped.
func (c *Collector) TotalRecorded() int64 {
	return atomic.LoadInt64(&c.recorded)
}

// TotalRequests reports lifetime KindRequest samples only; query and
// email samples do not count toward it.
func (c *Collector) TotalRequests() int64 {
	return atomic.LoadInt64(&c.requests)
}

// PathStat aggregates the samples that share one label.
type PathStat struct {
	Path    string
	AvgMs   float64
	MaxMs   float64
	Count   int
	TotalMs float64
}

// Snapshot is the aggregate view served at /api/admin/perf.
type Snapshot struct {
	TotalRequests  int64
	ErrorCount     int // 5xx responses inside the window
	RequestP50Ms   float64
	RequestP95Ms   float64
	RequestP99Ms   float64
	SlowestPaths   []PathStat
	SlowestQueries []PathStat
	SlowestEmails  []PathStat
}

// Snapshot aggregates samples recorded at or after since. Sorting makes
// this the expensive call; it runs on dashboard load, not per request.
// PRE: topN >= 0
// POST: per-kind slowest lists are capped at topN and sorted by AvgMs
func (c *Collector) Snapshot(since time.Time, topN int) Snapshot {
	c.mu.Lock()
	buf := make([]Entry, len(c.ring))
	copy(buf, c.ring)
	c.mu.Unlock()

	byKind := map[EntryKind]map[string]*PathStat{
		KindRequest: {},
		KindQuery:   {},
		KindEmail:   {},
	}
	var requestDurations []float64
	errorCount := 0

	for _, e := range buf {
		if e.Timestamp.IsZero() || e.Timestamp.Before(since) {
			continue
		}
		stats, ok := byKind[e.Kind]
		if !ok {
			continue
		}
		s := stats[e.Path]
		if s == nil {
			s = &PathStat{Path: e.Path}
			stats[e.Path] = s
		}
		s.Count++
		s.TotalMs += e.DurationMs
		if e.DurationMs > s.MaxMs {
			s.MaxMs = e.DurationMs
		}
		if e.Kind == KindRequest {
			requestDurations = append(requestDurations, e.DurationMs)
			if e.StatusCode >= 500 {
				errorCount++
			}
		}
	}

	snap := Snapshot{
		TotalRequests:  c.TotalRequests(),
		ErrorCount:     errorCount,
		SlowestPaths:   slowest(byKind[KindRequest], topN),
		SlowestQueries: slowest(byKind[KindQuery], topN),
		SlowestEmails:  slowest(byKind[KindEmail], topN),
	}

	if len(requestDurations) > 0 {
		sort.Float64s(requestDurations)
		snap.RequestP50Ms = percentile(requestDurations, 50)
		snap.RequestP95Ms = percentile(requestDurations, 95)
		snap.RequestP99Ms = percentile(requestDurations, 99)
	}
	return snap
}

// percentile reads the nearest-rank percentile from a sorted slice.
func percentile(sorted []float64, p int) float64 {
	if len(sorted) == 0 {
		return 0
	}
	rank := (p*len(sorted) + 99) / 100
	if rank < 1 {
		rank = 1
	}
	return sorted[rank-1]
}

// slowest finalizes averages and returns up to n stats, slowest first.
func slowest(stats map[string]*PathStat, n int) []PathStat {
	list := make([]PathStat, 0, len(stats))
	for _, s := range stats {
		s.AvgMs = s.TotalMs / float64(s.Count)
		list = append(list, *s)
	}
	sort.Slice(list, func(i, j int) bool { return list[i].AvgMs > list[j].AvgMs })
	if len(list) > n {
		list = list[:n]
	}
	return list
}
