package server

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/pharmatch/chatbot/internal/handlers"
	"github.com/pharmatch/chatbot/internal/middleware"
)

// NewRouter constructs a ServeMux with the chatbot API routes registered.
func NewRouter(wh *handlers.WebhookHandler, ah *handlers.AdminHandler) http.Handler {
	mux := http.NewServeMux()

	// Platform webhook
	mux.HandleFunc("/webhook/messaging", wh.HandleWebhook)

	// Management API
	mux.HandleFunc("/api/v1/admin/push", ah.HandlePush)

	// Health endpoints
	mux.HandleFunc("/healthz", wh.Health)
	mux.HandleFunc("/readyz", wh.Ready)

	// Prometheus metrics
	mux.Handle("/metrics", promhttp.Handler())

	return middleware.RequestID(mux)
}
