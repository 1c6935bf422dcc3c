package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Webhook boundary metrics
	WebhookRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chatbot_webhook_requests_total",
			Help: "Total number of webhook requests received",
		},
		[]string{"status"},
	)

	SignatureFailuresTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "chatbot_signature_failures_total",
			Help: "Total number of webhook requests rejected for a bad signature",
		},
	)

	// Not labeled by client key: the keyspace is raw IPs, which would be
	// unbounded label cardinality. The rejected IP goes to the log line.
	RateLimitHits = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "chatbot_rate_limit_hits_total",
			Help: "Total number of webhook requests rejected by rate limiting",
		},
	)

	// Event dispatch metrics
	EventsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chatbot_events_total",
			Help: "Total number of webhook events processed",
		},
		[]string{"kind", "outcome"},
	)

	RepliesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chatbot_replies_total",
			Help: "Total number of reply messages sent",
		},
		[]string{"status"},
	)

	// Attendance API metrics
	AttendanceCallDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "chatbot_attendance_call_duration_seconds",
			Help:    "Duration of attendance API calls in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation"},
	)

	AttendanceCallErrors = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "chatbot_attendance_call_errors_total",
			Help: "Total number of failed attendance API calls",
		},
		[]string{"operation"},
	)
)
