package handlers

import (
	"crypto/subtle"
	"encoding/json"
	"net/http"

	"github.com/pharmatch/chatbot/internal/logging"
	"github.com/pharmatch/chatbot/internal/messenger"
)

// AdminHandler serves privileged management actions. Unlike the webhook
// path, push failures propagate to the caller as error responses.
type AdminHandler struct {
	sender     messenger.Sender
	adminToken string
	logger     *logging.Logger
}

type pushRequest struct {
	To   string `json:"to"`
	Text string `json:"text"`
}

type errorBody struct {
	Error string `json:"error"`
}

func NewAdminHandler(sender messenger.Sender, adminToken string, logger *logging.Logger) *AdminHandler {
	return &AdminHandler{
		sender:     sender,
		adminToken: adminToken,
		logger:     logger,
	}
}

// HandlePush sends an unsolicited text message to a platform user.
func (h *AdminHandler) HandlePush(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		h.sendError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	if !h.authorized(r) {
		h.sendError(w, http.StatusUnauthorized, "invalid admin token")
		return
	}

	var req pushRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		h.sendError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.To == "" || req.Text == "" {
		h.sendError(w, http.StatusBadRequest, "to and text are required")
		return
	}

	if err := h.sender.Push(r.Context(), req.To, messenger.NewText(req.Text)); err != nil {
		h.logger.ErrorContext(r.Context(), "admin push failed", logging.Error(err))
		h.sendError(w, http.StatusBadGateway, "failed to deliver message")
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusAccepted)
	json.NewEncoder(w).Encode(map[string]string{"status": "sent"})
}

func (h *AdminHandler) authorized(r *http.Request) bool {
	if h.adminToken == "" {
		return false
	}
	provided := r.Header.Get("X-Admin-Token")
	return subtle.ConstantTimeCompare([]byte(provided), []byte(h.adminToken)) == 1
}

func (h *AdminHandler) sendError(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(errorBody{Error: msg})
}
