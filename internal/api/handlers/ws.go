package handlers

import (
	"context"
	"log/slog"
	"net/http"
	"strings"

	"github.com/gorilla/websocket"

	"github.com/verdantlabs/voicerelay/internal/auth"
	"github.com/verdantlabs/voicerelay/internal/session"
)

// WSHandler upgrades device connections and hands them to the session
// router. One goroutine per device.
type WSHandler struct {
	router   *session.Router
	verifier *auth.DeviceVerifier
	upgrader websocket.Upgrader
}

func NewWSHandler(router *session.Router, verifier *auth.DeviceVerifier) *WSHandler {
	return &WSHandler{
		router:   router,
		verifier: verifier,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  4096,
			WriteBufferSize: 4096,
			// Devices connect from firmware, not browsers.
			CheckOrigin: func(r *http.Request) bool { return true },
		},
	}
}

func (h *WSHandler) Serve(w http.ResponseWriter, r *http.Request) {
	if h.verifier != nil && h.verifier.Enabled() {
		token := bearerOrQueryToken(r)
		if token == "" {
			writeError(w, http.StatusUnauthorized, "missing device token")
			return
		}
		deviceID, err := h.verifier.Verify(token)
		if err != nil {
			slog.Warn("rejected device connection", "remote", r.RemoteAddr, "error", err)
			writeError(w, http.StatusUnauthorized, "invalid device token")
			return
		}
		slog.Debug("device token verified", "device_id", deviceID)
	}

	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade already wrote the HTTP error.
		slog.Warn("websocket upgrade failed", "remote", r.RemoteAddr, "error", err)
		return
	}

	// The handler goroutine is already per-connection; run the session
	// loop on it so the request context stays alive.
	h.router.HandleConn(context.Background(), conn)
}

func bearerOrQueryToken(r *http.Request) string {
	if h := r.Header.Get("Authorization"); strings.HasPrefix(h, "Bearer ") {
		return strings.TrimPrefix(h, "Bearer ")
	}
	return r.URL.Query().Get("token")
}
