package session

import (
	"log/slog"
	"sync"
	"time"
)

// Conn is the transport handle a session owns. gorilla's *websocket.Conn
// satisfies it; tests use an in-memory fake.
type Conn interface {
	ReadJSON(v any) error
	WriteJSON(v any) error
	Close() error
}

// Session binds a device identity to its live transport handle.
type Session struct {
	DeviceID        string
	DeviceType      string
	FirmwareVersion string
	Conn            Conn

	mu           sync.Mutex
	lastActivity time.Time
}

func (s *Session) Touch() {
	s.mu.Lock()
	s.lastActivity = time.Now()
	s.mu.Unlock()
}

func (s *Session) LastActivity() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastActivity
}

// Registry maps device ids to live sessions. At most one live handle
// per device id: a new registration closes and replaces the prior one.
type Registry struct {
	mu       sync.RWMutex
	sessions map[string]*Session
}

func NewRegistry() *Registry {
	return &Registry{sessions: make(map[string]*Session)}
}

func (r *Registry) Register(deviceID, deviceType, firmwareVersion string, conn Conn) *Session {
	r.mu.Lock()
	defer r.mu.Unlock()

	if prev, ok := r.sessions[deviceID]; ok && prev.Conn != conn {
		slog.Info("superseding existing session", "device_id", deviceID)
		_ = prev.Conn.Close()
	}

	s := &Session{
		DeviceID:        deviceID,
		DeviceType:      deviceType,
		FirmwareVersion: firmwareVersion,
		Conn:            conn,
		lastActivity:    time.Now(),
	}
	r.sessions[deviceID] = s
	return s
}

// Remove drops the entry only if it still belongs to conn, so a
// superseded connection's teardown cannot evict its replacement.
func (r *Registry) Remove(deviceID string, conn Conn) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if cur, ok := r.sessions[deviceID]; ok && cur.Conn == conn {
		delete(r.sessions, deviceID)
	}
}

func (r *Registry) Get(deviceID string) (*Session, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s, ok := r.sessions[deviceID]
	return s, ok
}

func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}

// Snapshot lists all connected devices.
func (r *Registry) Snapshot() []DeviceInfo {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]DeviceInfo, 0, len(r.sessions))
	for _, s := range r.sessions {
		out = append(out, DeviceInfo{
			DeviceID:        s.DeviceID,
			DeviceType:      s.DeviceType,
			FirmwareVersion: s.FirmwareVersion,
			LastActivity:    s.LastActivity(),
		})
	}
	return out
}
