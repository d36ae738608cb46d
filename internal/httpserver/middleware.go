package httpserver

import (
	"context"
	"net/http"
	"runtime/debug"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
)

const (
	requestIDHeader   = "X-Request-ID"
	maxQueryLogLength = 2048
)

type ctxKey int

const requestIDKey ctxKey = iota

var (
	httpReqs = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "cookbook_http_requests_total",
			Help: "Total number of HTTP requests.",
		},
		[]string{"method", "path", "status"},
	)

	httpLat = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "cookbook_http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds.",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "path"},
	)

	httpInflight = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Name: "cookbook_http_requests_inflight",
			Help: "Current number of in-flight HTTP requests.",
		},
	)
)

func init() {
	prometheus.MustRegister(httpReqs, httpLat, httpInflight)
}

// statusRecorder remembers the status code and body size written.
type statusRecorder struct {
	http.ResponseWriter
	status int
	bytes  int
}

func (r *statusRecorder) WriteHeader(code int) {
	if r.status == 0 {
		r.status = code
	}
	r.ResponseWriter.WriteHeader(code)
}

func (r *statusRecorder) Write(b []byte) (int, error) {
	if r.status == 0 {
		r.status = http.StatusOK
	}
	n, err := r.ResponseWriter.Write(b)
	r.bytes += n
	return n, err
}

func (r *statusRecorder) Status() int {
	if r.status == 0 {
		return http.StatusOK
	}
	return r.status
}

// RequestIDFrom returns the correlation ID stored by AccessLogMiddleware.
func RequestIDFrom(ctx context.Context) string {
	rid, _ := ctx.Value(requestIDKey).(string)
	return rid
}

// AccessLogMiddleware propagates X-Request-ID, recovers panics into a JSON
// 500 and writes one access log line per request. The request-scoped logger
// is reachable via zerolog.Ctx.
func AccessLogMiddleware(logger zerolog.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		rid := r.Header.Get(requestIDHeader)
		if rid == "" {
			rid = uuid.NewString()
		}
		w.Header().Set(requestIDHeader, rid)

		l := logger.With().
			Str("request_id", rid).
			Str("method", r.Method).
			Str("remote_ip", extractIP(r)).
			Logger()

		ctx := context.WithValue(r.Context(), requestIDKey, rid)
		r = r.WithContext(l.WithContext(ctx))
		rec := &statusRecorder{ResponseWriter: w}

		defer func() {
			if p := recover(); p != nil {
				l.Error().
					Interface("panic", p).
					Bytes("stack", debug.Stack()).
					Msg("panic recovered")
				if rec.status == 0 {
					writeError(rec, http.StatusInternalServerError, "internal_error", "Internal server error")
				}
			}

			ev := l.Info()
			switch status := rec.Status(); {
			case status >= 500:
				ev = l.Error()
			case status >= 400:
				ev = l.Warn()
			}
			ev.Str("path", routeOf(r)).
				Str("query", truncate(r.URL.RawQuery, maxQueryLogLength)).
				Int("status", rec.Status()).
				Int("bytes_out", rec.bytes).
				Dur("latency", time.Since(start)).
				Msg("request")
		}()

		next.ServeHTTP(rec, r)
	})
}

// MetricsMiddleware must sit directly above the mux so r.Pattern is set
// on the same request value it observes.
func MetricsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		httpInflight.Inc()
		defer httpInflight.Dec()

		rec := &statusRecorder{ResponseWriter: w}
		next.ServeHTTP(rec, r)

		path := routeOf(r)
		httpReqs.WithLabelValues(r.Method, path, strconv.Itoa(rec.Status())).Inc()
		httpLat.WithLabelValues(r.Method, path).Observe(time.Since(start).Seconds())
	})
}

// routeOf returns the matched mux pattern; unmatched requests share one
// label to keep cardinality bounded.
func routeOf(r *http.Request) string {
	if r.Pattern != "" {
		return r.Pattern
	}
	return "unmatched"
}

func truncate(s string, max int) string {
	if max <= 0 || len(s) <= max {
		return s
	}
	return s[:max] + "…"
}
