package handlers

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"

	"github.com/pharmatch/chatbot/internal/logging"
	"github.com/pharmatch/chatbot/internal/metrics"
	"github.com/pharmatch/chatbot/internal/models"
	"github.com/pharmatch/chatbot/internal/ratelimit"
	"github.com/pharmatch/chatbot/internal/signature"
)

// SignatureHeader carries the webhook signature: "SHA256=<base64 digest>".
const SignatureHeader = "X-Bot-Signature"

// Batcher processes a verified webhook batch.
type Batcher interface {
	Dispatch(ctx context.Context, events []models.Event)
}

// WebhookHandler is the inbound boundary for platform webhook deliveries.
type WebhookHandler struct {
	verifier   *signature.Verifier
	dispatcher Batcher
	limiter    ratelimit.Limiter
	logger     *logging.Logger
}

func NewWebhookHandler(verifier *signature.Verifier, dispatcher Batcher, limiter ratelimit.Limiter, logger *logging.Logger) *WebhookHandler {
	return &WebhookHandler{
		verifier:   verifier,
		dispatcher: dispatcher,
		limiter:    limiter,
		logger:     logger,
	}
}

// HandleWebhook verifies and dispatches one webhook delivery. The platform
// retries on non-2xx, so verified requests are always acknowledged with
// 200 regardless of per-event outcomes.
func (h *WebhookHandler) HandleWebhook(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		metrics.WebhookRequestsTotal.WithLabelValues("method_not_allowed").Inc()
		w.WriteHeader(http.StatusMethodNotAllowed)
		return
	}

	allowed, err := h.limiter.Allow(r.Context(), getClientIP(r))
	if err != nil {
		// Rate limiter trouble must not drop verified webhook traffic.
		h.logger.WarnContext(r.Context(), "rate limiter unavailable", logging.Error(err))
	} else if !allowed {
		metrics.WebhookRequestsTotal.WithLabelValues("rate_limited").Inc()
		h.logger.WarnContext(r.Context(), "webhook rate limited", logging.IP(getClientIP(r)))
		w.WriteHeader(http.StatusTooManyRequests)
		return
	}

	// The raw bytes must be captured before any parsing: the signature is
	// computed over the body verbatim.
	rawBody, err := io.ReadAll(r.Body)
	if err != nil {
		metrics.WebhookRequestsTotal.WithLabelValues("bad_request").Inc()
		w.WriteHeader(http.StatusBadRequest)
		return
	}
	defer r.Body.Close()

	if !h.verifier.BypassEnabled() {
		if !h.verifier.Verify(rawBody, r.Header.Get(SignatureHeader)) {
			metrics.SignatureFailuresTotal.Inc()
			metrics.WebhookRequestsTotal.WithLabelValues("unauthorized").Inc()
			h.logger.WarnContext(r.Context(), "webhook signature verification failed",
				logging.IP(getClientIP(r)),
			)
			w.WriteHeader(http.StatusUnauthorized)
			return
		}
	}

	var req models.WebhookRequest
	if err := json.Unmarshal(rawBody, &req); err != nil {
		metrics.WebhookRequestsTotal.WithLabelValues("bad_request").Inc()
		h.logger.WarnContext(r.Context(), "failed to parse webhook body", logging.Error(err))
		w.WriteHeader(http.StatusBadRequest)
		return
	}

	h.dispatcher.Dispatch(r.Context(), req.Events)

	metrics.WebhookRequestsTotal.WithLabelValues("ok").Inc()
	w.WriteHeader(http.StatusOK)
}

func (h *WebhookHandler) Health(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{
		"status": "healthy",
	})
}

func (h *WebhookHandler) Ready(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]string{
		"status": "ready",
	})
}

func getClientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		parts := strings.Split(xff, ",")
		return strings.TrimSpace(parts[0])
	}
	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return xri
	}
	return r.RemoteAddr
}
