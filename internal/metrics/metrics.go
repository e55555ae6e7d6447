// Package metrics holds the Prometheus collectors for HTTP traffic, logins
// and the chat transport.
package metrics

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Login results.
const (
	LoginSuccess     = "success"
	LoginFailed      = "failed"
	LoginError       = "error"
	LoginRateLimited = "rate_limited"
)

var (
	// HTTPRequests counts handled requests by route template, method and status code.
	HTTPRequests = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "boardchat_http_requests_total",
		Help: "Total number of HTTP requests handled",
	}, []string{"route", "method", "status"})

	// HTTPDuration records request latency in seconds.
	HTTPDuration = prometheus.NewHistogramVec(prometheus.HistogramOpts{
		Name:    "boardchat_http_request_duration_seconds",
		Help:    "HTTP request latency in seconds",
		Buckets: prometheus.DefBuckets,
	}, []string{"route", "method"})

	// LoginAttempts counts login outcomes.
	LoginAttempts = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "boardchat_auth_login_attempts_total",
		Help: "Total number of login attempts by result",
	}, []string{"result"})

	// ChatSessions tracks open WebSocket chat sessions.
	ChatSessions = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "boardchat_chat_sessions",
		Help: "Current number of open chat sessions",
	})

	// ChatMessages counts routed chat events by type.
	ChatMessages = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "boardchat_chat_messages_total",
		Help: "Total number of chat events routed",
	}, []string{"type"})

	// ChatDropped counts sessions closed because their send queue was full.
	ChatDropped = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "boardchat_chat_slow_sessions_closed_total",
		Help: "Total number of chat sessions closed for a full send queue",
	})
)

// Register adds every collector to reg. Call once at startup.
func Register(reg prometheus.Registerer) {
	reg.MustRegister(
		HTTPRequests,
		HTTPDuration,
		LoginAttempts,
		ChatSessions,
		ChatMessages,
		ChatDropped,
	)
}

// Handler returns the Prometheus metrics HTTP handler for the default gatherer.
func Handler() http.Handler {
	return promhttp.Handler()
}
