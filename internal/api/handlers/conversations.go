package handlers

import (
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/verdantlabs/voicerelay/internal/convlog"
)

type ConversationsHandler struct {
	logs *convlog.Service
}

func NewConversationsHandler(logs *convlog.Service) *ConversationsHandler {
	return &ConversationsHandler{logs: logs}
}

// List returns the latest conversations for one device, newest first.
func (h *ConversationsHandler) List(w http.ResponseWriter, r *http.Request) {
	if h.logs == nil {
		writeError(w, http.StatusServiceUnavailable, "conversation store not configured")
		return
	}

	deviceID := chi.URLParam(r, "deviceID")
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))

	conversations, err := h.logs.Recent(r.Context(), deviceID, limit)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "query failed")
		return
	}
	if conversations == nil {
		conversations = []convlog.Conversation{}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"deviceId":      deviceID,
		"conversations": conversations,
	})
}
