package perf

import (
	"sync"
	"testing"
	"time"
)

func sample(kind EntryKind, path string, ms float64) Entry {
	return Entry{Kind: kind, Path: path, DurationMs: ms, Timestamp: time.Now()}
}

func TestSnapshotGroupsByKind(t *testing.T) {
	c := NewCollector(64)
	c.Record(sample(KindRequest, "POST /api/register/team", 12))
	c.Record(sample(KindRequest, "POST /api/register/team", 18))
	c.Record(sample(KindQuery, "INSERT", 3))
	c.Record(sample(KindEmail, "team_confirmation", 140))

	snap := c.Snapshot(time.Time{}, 10)

	// Query and email samples must not inflate the request total.
	if snap.TotalRequests != 2 {
		t.Errorf("TotalRequests = %d, want 2", snap.TotalRequests)
	}
	if c.TotalRecorded() != 4 {
		t.Errorf("TotalRecorded = %d, want 4", c.TotalRecorded())
	}
	if len(snap.SlowestPaths) != 1 {
		t.Fatalf("SlowestPaths = %d entries, want 1", len(snap.SlowestPaths))
	}
	p := snap.SlowestPaths[0]
	if p.Count != 2 || p.AvgMs != 15 || p.MaxMs != 18 {
		t.Errorf("path stat = %+v, want count 2 avg 15 max 18", p)
	}
	if len(snap.SlowestQueries) != 1 || snap.SlowestQueries[0].Path != "INSERT" {
		t.Errorf("SlowestQueries = %+v", snap.SlowestQueries)
	}
	if len(snap.SlowestEmails) != 1 || snap.SlowestEmails[0].Path != "team_confirmation" {
		t.Errorf("SlowestEmails = %+v", snap.SlowestEmails)
	}
}

func TestSnapshotCountsServerErrors(t *testing.T) {
	c := NewCollector(16)
	c.Record(Entry{Kind: KindRequest, Path: "GET /api/tiers", StatusCode: 200, DurationMs: 1, Timestamp: time.Now()})
	c.Record(Entry{Kind: KindRequest, Path: "POST /api/register/team", StatusCode: 503, DurationMs: 2, Timestamp: time.Now()})
	c.Record(Entry{Kind: KindRequest, Path: "POST /api/contact", StatusCode: 400, DurationMs: 2, Timestamp: time.Now()})

	snap := c.Snapshot(time.Time{}, 5)
	if snap.ErrorCount != 1 {
		t.Errorf("ErrorCount = %d, want 1 (only the 503)", snap.ErrorCount)
	}
}

func TestRingReplacesOldest(t *testing.T) {
	c := NewCollector(3)
	for i := 0; i < 5; i++ {
		c.Record(sample(KindQuery, "SELECT", float64(i)))
	}

	snap := c.Snapshot(time.Time{}, 5)
	if c.TotalRecorded() != 5 {
		t.Errorf("TotalRecorded = %d, want 5", c.TotalRecorded())
	}
	if got := snap.SlowestQueries[0].Count; got != 3 {
		t.Errorf("ring retained %d samples, want 3", got)
	}
	// Samples 0 and 1 were overwritten; 2+3+4 remain.
	if got := snap.SlowestQueries[0].TotalMs; got != 9 {
		t.Errorf("TotalMs = %v, want 9", got)
	}
}

func TestSnapshotPercentiles(t *testing.T) {
	c := NewCollector(200)
	for i := 1; i <= 100; i++ {
		c.Record(sample(KindRequest, "GET /", float64(i)))
	}

	snap := c.Snapshot(time.Time{}, 1)
	if snap.RequestP50Ms != 50 {
		t.Errorf("p50 = %v, want 50", snap.RequestP50Ms)
	}
	if snap.RequestP95Ms != 95 {
		t.Errorf("p95 = %v, want 95", snap.RequestP95Ms)
	}
	if snap.RequestP99Ms != 99 {
		t.Errorf("p99 = %v, want 99", snap.RequestP99Ms)
	}
}

func TestSnapshotWindowExcludesOldSamples(t *testing.T) {
	c := NewCollector(16)
	old := sample(KindRequest, "GET /pages/:slug", 5)
	old.Timestamp = time.Now().Add(-2 * time.Hour)
	c.Record(old)
	c.Record(sample(KindRequest, "GET /pages/:slug", 7))

	snap := c.Snapshot(time.Now().Add(-time.Hour), 5)
	if len(snap.SlowestPaths) != 1 || snap.SlowestPaths[0].Count != 1 {
		t.Fatalf("window kept %+v, want one sample", snap.SlowestPaths)
	}
	if snap.SlowestPaths[0].AvgMs != 7 {
		t.Errorf("AvgMs = %v, want 7", snap.SlowestPaths[0].AvgMs)
	}
}

func TestSnapshotTopNCap(t *testing.T) {
	c := NewCollector(64)
	labels := []string{"SELECT", "INSERT", "UPDATE", "DELETE"}
	for i, l := range labels {
		c.Record(sample(KindQuery, l, float64(i+1)))
	}

	snap := c.Snapshot(time.Time{}, 2)
	if len(snap.SlowestQueries) != 2 {
		t.Fatalf("got %d query stats, want 2", len(snap.SlowestQueries))
	}
	if snap.SlowestQueries[0].Path != "DELETE" || snap.SlowestQueries[1].Path != "UPDATE" {
		t.Errorf("top queries = %s, %s; want DELETE, UPDATE",
			snap.SlowestQueries[0].Path, snap.SlowestQueries[1].Path)
	}
}

func TestConcurrentRecord(t *testing.T) {
	c := NewCollector(128)
	var wg sync.WaitGroup
	for g := 0; g < 8; g++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < 100; i++ {
				c.Record(sample(KindRequest, "GET /api/health", 1))
			}
		}()
	}
	wg.Wait()

	if c.TotalRecorded() != 800 {
		t.Errorf("TotalRecorded = %d, want 800", c.TotalRecorded())
	}
	// Snapshot must not race with writers.
	done := make(chan struct{})
	go func() {
		for i := 0; i < 50; i++ {
			c.Record(sample(KindQuery, "SELECT", 1))
		}
		close(done)
	}()
	c.Snapshot(time.Time{}, 10)
	<-done
}

func BenchmarkRecord(b *testing.B) {
	c := NewCollector(DefaultRingSize)
	e := sample(KindRequest, "GET /api/tiers", 1.5)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		c.Record(e)
	}
}

func BenchmarkSnapshot(b *testing.B) {
	c := NewCollector(DefaultRingSize)
	for i := 0; i < DefaultRingSize; i++ {
		c.Record(sample(KindRequest, "GET /api/tiers", float64(i%40)))
	}
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		c.Snapshot(time.Time{}, 20)
	}
}
