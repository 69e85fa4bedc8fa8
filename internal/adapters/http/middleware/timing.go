package middleware

import (
	"log/slog"
	"net/http"
	"os"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"spark/internal/adapters/http/perf"
)

// DefaultSlowRequestMs is the slow-request warning threshold when
// SPARK_SLOW_REQUEST_MS is unset.
const DefaultSlowRequestMs = 200

var (
	slowRequestOnce      sync.Once
	slowRequestThreshold float64
)

func slowRequestMs() float64 {
	slowRequestOnce.Do(func() {
		slowRequestThreshold = DefaultSlowRequestMs
		if v := os.Getenv("SPARK_SLOW_REQUEST_MS"); v != "" {
			if n, err := strconv.Atoi(v); err == nil && n > 0 {
				slowRequestThreshold = float64(n)
			}
		}
	})
	return slowRequestThreshold
}

var requestSeq uint64

// statusWriter captures the response status and body size.
type statusWriter struct {
	http.ResponseWriter
	status int
	bytes  int
}

func (sw *statusWriter) WriteHeader(code int) {
	sw.status = code
	sw.ResponseWriter.WriteHeader(code)
}

func (sw *statusWriter) Write(p []byte) (int, error) {
	n, err := sw.ResponseWriter.Write(p)
	sw.bytes += n
	return n, err
}

var statusWriterPool = sync.Pool{
	New: func() any { return &statusWriter{} },
}

// routeLabel collapses per-entity path segments so the perf ring groups
// by route shape. Without this every page slug and outbox entry ID
// would get its own bucket.
func routeLabel(method, path string) string {
	switch {
	case strings.HasPrefix(path, "/pages/"):
		path = "/pages/:slug"
	case strings.HasPrefix(path, "/api/admin/outbox/"):
		path = "/api/admin/outbox/:id/:action"
	}
	return method + " " + path
}

// Timing logs every request and feeds the perf collector. Asset serving
// under /static/ and /uploads/ is not sampled. Requests above the
// threshold log at WARN, the rest at DEBUG.
func Timing(collector *perf.Collector) func(http.Handler) http.Handler {
	threshold := slowRequestMs()

	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			path := r.URL.Path
			if strings.HasPrefix(path, "/static/") || strings.HasPrefix(path, "/uploads/") {
				next.ServeHTTP(w, r)
				return
			}

			start := time.Now()
			seq := atomic.AddUint64(&requestSeq, 1)

			sw := statusWriterPool.Get().(*statusWriter)
			sw.ResponseWriter = w
			sw.status = http.StatusOK
			sw.bytes = 0
			defer func() {
				durationMs := float64(time.Since(start).Microseconds()) / 1000.0

				if durationMs >= threshold {
					slog.Warn("slow_request",
						"request_id", seq,
						"method", r.Method,
						"path", path,
						"status", sw.status,
						"bytes", sw.bytes,
						"duration_ms", durationMs,
					)
				} else {
					slog.Debug("request",
						"request_id", seq,
						"method", r.Method,
						"path", path,
						"status", sw.status,
						"bytes", sw.bytes,
						"duration_ms", durationMs,
					)
				}

				if collector != nil {
					collector.Record(perf.Entry{
						Kind:       perf.KindRequest,
						Path:       routeLabel(r.Method, path),
						StatusCode: sw.status,
						DurationMs: durationMs,
						Timestamp:  start,
					})
				}

				sw.ResponseWriter = nil
				statusWriterPool.Put(sw)
			}()

			next.ServeHTTP(sw, r)
		})
	}
}
