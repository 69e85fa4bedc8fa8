package storage

import (
	"context"
	"database/sql"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"spark/internal/adapters/http/perf"
)

// SQLDB is the narrow database surface the stores depend on. Both
// *sql.DB and *TimedDB satisfy it, so instrumentation is opt-in.
type SQLDB interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
	BeginTx(ctx context.Context, opts *sql.TxOptions) (*sql.Tx, error)
}

var (
	_ SQLDB = (*sql.DB)(nil)
	_ SQLDB = (*TimedDB)(nil)
)

// DefaultSlowQueryMs is the slow-query warning threshold when
// SPARK_SLOW_QUERY_MS is unset.
const DefaultSlowQueryMs = 50

var (
	slowQueryOnce      sync.Once
	slowQueryThreshold float64
)

func slowQueryMs() float64 {
	slowQueryOnce.Do(func() {
		slowQueryThreshold = DefaultSlowQueryMs
		if v := os.Getenv("SPARK_SLOW_QUERY_MS"); v != "" {
			if n, err := strconv.Atoi(v); err == nil && n > 0 {
				slowQueryThreshold = float64(n)
			}
		}
	})
	return slowQueryThreshold
}

// TimedDB decorates a *sql.DB: every statement is timed, slow ones are
// logged with a snippet of the SQL, and samples feed the perf collector.
type TimedDB struct {
	db        *sql.DB
	collector *perf.Collector
	threshold float64
}

// NewTimedDB wraps db. A nil collector disables sampling but keeps the
// slow-query log.
func NewTimedDB(db *sql.DB, collector *perf.Collector) *TimedDB {
	return &TimedDB{db: db, collector: collector, threshold: slowQueryMs()}
}

// RawDB exposes the wrapped *sql.DB for migrations and pool tuning.
func (t *TimedDB) RawDB() *sql.DB {
	return t.db
}

// queryLabel reduces a SQL statement to its leading verb so the perf
// dashboard groups by statement shape, not by literal text.
func queryLabel(query string) string {
	fields := strings.Fields(query)
	if len(fields) == 0 {
		return "EMPTY"
	}
	return strings.ToUpper(fields[0])
}

// snippet returns the start of a statement for slow-query logs.
func snippet(query string) string {
	s := strings.Join(strings.Fields(query), " ")
	if len(s) > 80 {
		s = s[:80] + "..."
	}
	return s
}

func (t *TimedDB) observe(label, query string, start time.Time) {
	durationMs := float64(time.Since(start).Microseconds()) / 1000.0

	if durationMs >= t.threshold {
		slog.Warn("slow_query",
			"label", label,
			"sql", snippet(query),
			"duration_ms", durationMs,
		)
	} else {
		slog.Debug("query", "label", label, "duration_ms", durationMs)
	}

	if t.collector != nil {
		t.collector.Record(perf.Entry{
			Kind:       perf.KindQuery,
			Path:       label,
			DurationMs: durationMs,
			Timestamp:  start,
		})
	}
}

func (t *TimedDB) ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error) {
	start := time.Now()
	result, err := t.db.ExecContext(ctx, query, args...)
	t.observe(queryLabel(query), query, start)
	return result, err
}

func (t *TimedDB) QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	start := time.Now()
	rows, err := t.db.QueryContext(ctx, query, args...)
	t.observe(queryLabel(query), query, start)
	return rows, err
}

func (t *TimedDB) QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row {
	start := time.Now()
	row := t.db.QueryRowContext(ctx, query, args...)
	t.observe(queryLabel(query), query, start)
	return row
}

func (t *TimedDB) BeginTx(ctx context.Context, opts *sql.TxOptions) (*sql.Tx, error) {
	start := time.Now()
	tx, err := t.db.BeginTx(ctx, opts)
	t.observe("BEGIN", "BEGIN", start)
	return tx, err
}

// Close closes the wrapped connection pool.
func (t *TimedDB) Close() error {
	return t.db.Close()
}

// Ping reports whether the wrapped connection is alive.
func (t *TimedDB) Ping() error {
	return t.db.Ping()
}

func (t *TimedDB) SetMaxOpenConns(n int) {
	t.db.SetMaxOpenConns(n)
}

func (t *TimedDB) SetMaxIdleConns(n int) {
	t.db.SetMaxIdleConns(n)
}
