package esb

import (
	"context"
	"sync"
)

// ConnNotifier is called when the link connection state changes.
type ConnNotifier interface {
	ConnStateChanged(context.Context, bool)
}

// ConnStateChangedFunc is func type of ConnNotifier.
type ConnStateChangedFunc func(context.Context, bool)

// ConnStateChanged implements ConnNotifier.
func (f ConnStateChangedFunc) ConnStateChanged(ctx context.Context, connected bool) {
	f(ctx, connected)
}

// connState is the single connection flag shared by the receive path
// (handshake) and the send path (optimistic strategy).
type connState struct {
	lock      sync.RWMutex
	connected bool
}

func (s *connState) get() bool {
	s.lock.RLock()
	defer s.lock.RUnlock()
	return s.connected
}

// set updates the flag and reports whether the value changed. Idempotent:
// writing the current value changes nothing and must not notify.
func (s *connState) set(connected bool) bool {
	s.lock.Lock()
	defer s.lock.Unlock()
	if s.connected == connected {
		return false
	}
	s.connected = connected
	return true
}
