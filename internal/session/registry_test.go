package session

import (
	"sync"
	"testing"
)

type stubConn struct {
	mu     sync.Mutex
	closed bool
}

func (c *stubConn) ReadJSON(v any) error  { return nil }
func (c *stubConn) WriteJSON(v any) error { return nil }

func (c *stubConn) Close() error {
	c.mu.Lock()
	c.closed = true
	c.mu.Unlock()
	return nil
}

func (c *stubConn) isClosed() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.closed
}

func TestRegistrySupersede(t *testing.T) {
	r := NewRegistry()
	first := &stubConn{}
	second := &stubConn{}

	r.Register("dev-1", "esp32", "1.0.0", first)
	r.Register("dev-1", "esp32", "1.0.1", second)

	if !first.isClosed() {
		t.Error("superseded connection not closed")
	}
	if second.isClosed() {
		t.Error("replacement connection closed")
	}
	if r.Len() != 1 {
		t.Errorf("registry has %d sessions, want 1", r.Len())
	}
	s, ok := r.Get("dev-1")
	if !ok || s.Conn != second {
		t.Error("registry does not point at the replacement")
	}
}

func TestRegistryRemoveOnlyOwnConn(t *testing.T) {
	r := NewRegistry()
	first := &stubConn{}
	second := &stubConn{}

	r.Register("dev-1", "esp32", "1.0.0", first)
	r.Register("dev-1", "esp32", "1.0.0", second)

	// Teardown of the superseded connection must not evict the new one.
	r.Remove("dev-1", first)
	if _, ok := r.Get("dev-1"); !ok {
		t.Fatal("stale teardown evicted the live session")
	}

	r.Remove("dev-1", second)
	if _, ok := r.Get("dev-1"); ok {
		t.Fatal("session still present after its own teardown")
	}
}

func TestRegistrySnapshot(t *testing.T) {
	r := NewRegistry()
	r.Register("dev-1", "esp32", "1.0.0", &stubConn{})
	r.Register("dev-2", "mic-array", "2.3.1", &stubConn{})

	devices := r.Snapshot()
	if len(devices) != 2 {
		t.Fatalf("snapshot has %d devices, want 2", len(devices))
	}
	seen := map[string]bool{}
	for _, d := range devices {
		seen[d.DeviceID] = true
		if d.LastActivity.IsZero() {
			t.Errorf("device %s has zero last activity", d.DeviceID)
		}
	}
	if !seen["dev-1"] || !seen["dev-2"] {
		t.Errorf("snapshot missing devices: %v", seen)
	}
}

func TestRegistryConcurrent(t *testing.T) {
	r := NewRegistry()
	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			c := &stubConn{}
			s := r.Register("dev-1", "esp32", "1.0.0", c)
			s.Touch()
			r.Snapshot()
			r.Remove("dev-1", c)
		}()
	}
	wg.Wait()
}
