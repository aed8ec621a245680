package metrics

import (
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	MessagesSent = promauto.NewCounter(prometheus.CounterOpts{
		Name: "clinichat_messages_sent_total",
		Help: "Messages appended through the composer pipeline.",
	})
	MessagesEdited = promauto.NewCounter(prometheus.CounterOpts{
		Name: "clinichat_messages_edited_total",
		Help: "In-place message edits.",
	})
	MessagesDeleted = promauto.NewCounter(prometheus.CounterOpts{
		Name: "clinichat_messages_deleted_total",
		Help: "Messages removed after confirmation.",
	})
	ConversationsCleared = promauto.NewCounter(prometheus.CounterOpts{
		Name: "clinichat_conversations_cleared_total",
		Help: "Conversations emptied after confirmation.",
	})
	DirectoryRebuilds = promauto.NewCounter(prometheus.CounterOpts{
		Name: "clinichat_directory_rebuilds_total",
		Help: "Full contact directory rebuilds.",
	})

	httpRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "clinichat_http_requests_total",
		Help: "HTTP requests by method, path and status.",
	}, []string{"method", "path", "status"})
	httpDuration = promauto.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "clinichat_http_request_duration_seconds",
		Help:    "HTTP request latency.",
		Buckets: prometheus.DefBuckets,
	}, []string{"method", "path"})
)

// Middleware records request counts and latency per route.
func Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		srw := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(srw, r)
		httpRequests.WithLabelValues(r.Method, r.URL.Path, strconv.Itoa(srw.status)).Inc()
		httpDuration.WithLabelValues(r.Method, r.URL.Path).Observe(time.Since(start).Seconds())
	})
}

// statusRecorder captures the response status code.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	r.status = code
	r.ResponseWriter.WriteHeader(code)
}
