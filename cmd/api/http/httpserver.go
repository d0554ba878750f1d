package http

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/VictoriaMetrics/metrics"
	"github.com/google/uuid"
)

const requestIDHeader = "X-Request-ID"

type ServerConfig struct {
	Port           int
	RequestTimeout time.Duration
}

func NewServer(config ServerConfig, h *BookHandler) *http.Server {
	mux := http.NewServeMux()
	mux.HandleFunc("/ping", ping)
	mux.HandleFunc("/metrics", metricsHandler)
	mux.HandleFunc("/books", h.books)
	mux.HandleFunc("/books/", h.bookById)

	server := http.Server{
		Addr:              fmt.Sprintf(":%d", config.Port),
		Handler:           withRequestScope(mux, config.RequestTimeout),
		ReadHeaderTimeout: 10 * time.Second,
	}
	return &server
}

/* Tests the http server connection.  */
func ping(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

/* Exposes the process and bookshelf metrics in Prometheus text format. */
func metricsHandler(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}
	w.Header().Set("content-type", "text/plain; version=0.0.4")
	metrics.WritePrometheus(w, true)
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (sr *statusRecorder) WriteHeader(status int) {
	sr.status = status
	sr.ResponseWriter.WriteHeader(status)
}

/* Tags the request with an id, bounds it with the request timeout, then logs and measures it. */
func withRequestScope(next http.Handler, timeout time.Duration) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		id := r.Header.Get(requestIDHeader)
		if id == "" {
			id = uuid.NewString()
		}
		w.Header().Set(requestIDHeader, id)

		var ctx context.Context
		var cancel context.CancelFunc
		if timeout > 0 {
			ctx, cancel = context.WithTimeout(r.Context(), timeout)
		} else {
			ctx, cancel = context.WithCancel(r.Context())
		}
		defer cancel()

		start := time.Now()
		sr := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(sr, r.WithContext(ctx))

		route := routeOf(r.URL.Path)
		metrics.GetOrCreateCounter(fmt.Sprintf(`bookshelf_http_requests_total{method=%q,route=%q,code="%d"}`, r.Method, route, sr.status)).Inc()
		metrics.GetOrCreateHistogram(fmt.Sprintf(`bookshelf_http_request_duration_seconds{method=%q,route=%q}`, r.Method, route)).UpdateDuration(start)
		log.Printf("[REQ] id=%s %s %s status=%d dur=%s", id, r.Method, r.URL.Path, sr.status, time.Since(start))
	})
}

/* Collapses paths into a bounded set of metric labels. */
func routeOf(path string) string {
	switch {
	case path == "/books":
		return "/books"
	case strings.HasPrefix(path, "/books/"):
		return "/books/:bookId"
	case path == "/ping", path == "/metrics":
		return path
	default:
		return "other"
	}
}
