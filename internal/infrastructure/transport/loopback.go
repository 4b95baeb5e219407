// Package transport provides a reference in-process Transport: every
// "send" is a direct function call to the peer's OnMessage, useful for
// tests and the cmd/echo demo where a real socket would only add noise.
package transport

import (
	"fmt"
	"sync"

	pebbleerrors "github.com/FishShrimp/Pebble/internal/domain/shared/errors"
	domaintransport "github.com/FishShrimp/Pebble/internal/domain/transport"
)

// OnMessageFunc matches Engine.OnMessage's signature, letting Loopback
// stay free of any direct dependency on the rpc package.
type OnMessageFunc func(handle domaintransport.Handle, data []byte, overloadHint int32) pebbleerrors.Kind

// Loopback is a shared switchboard: engines register a handle (and,
// optionally, a broadcast name) against their OnMessage entry point, and
// any other registrant can address them by that handle.
type Loopback struct {
	mu       sync.Mutex
	peers    map[domaintransport.Handle]OnMessageFunc
	byName   map[string][]domaintransport.Handle
	overload map[domaintransport.Handle]int32
}

// NewLoopback returns an empty switchboard.
func NewLoopback() *Loopback {
	return &Loopback{
		peers:    make(map[domaintransport.Handle]OnMessageFunc),
		byName:   make(map[string][]domaintransport.Handle),
		overload: make(map[domaintransport.Handle]int32),
	}
}

// Register binds handle to onMessage, optionally joining the broadcast
// group identified by name (pass "" to skip broadcast membership).
func (l *Loopback) Register(handle domaintransport.Handle, name string, onMessage OnMessageFunc) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.peers[handle] = onMessage
	if name != "" {
		l.byName[name] = append(l.byName[name], handle)
	}
}

// SetOverloadHint makes every subsequent Send/SendV to handle arrive at
// its peer's OnMessage carrying this hint, simulating a transport that
// has decided the destination is overloaded.
func (l *Loopback) SetOverloadHint(handle domaintransport.Handle, hint int32) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.overload[handle] = hint
}

func (l *Loopback) peerFor(handle domaintransport.Handle) (OnMessageFunc, int32, bool) {
	l.mu.Lock()
	defer l.mu.Unlock()
	fn, ok := l.peers[handle]
	return fn, l.overload[handle], ok
}

// Send implements transport.Transport.
func (l *Loopback) Send(handle domaintransport.Handle, data []byte) error {
	return l.SendV(handle, [][]byte{data})
}

// SendV implements transport.Transport.
func (l *Loopback) SendV(handle domaintransport.Handle, frags [][]byte) error {
	fn, hint, ok := l.peerFor(handle)
	if !ok {
		return fmt.Errorf("loopback: no peer registered for handle %d", handle)
	}
	fn(handle, concat(frags), hint)
	return nil
}

// Broadcast implements transport.Transport.
func (l *Loopback) Broadcast(name string, data []byte) int {
	return l.BroadcastV(name, [][]byte{data})
}

// BroadcastV implements transport.Transport.
func (l *Loopback) BroadcastV(name string, frags [][]byte) int {
	l.mu.Lock()
	handles := append([]domaintransport.Handle(nil), l.byName[name]...)
	l.mu.Unlock()

	data := concat(frags)
	delivered := 0
	for _, h := range handles {
		fn, hint, ok := l.peerFor(h)
		if !ok {
			continue
		}
		fn(h, data, hint)
		delivered++
	}
	return delivered
}

func concat(frags [][]byte) []byte {
	total := 0
	for _, f := range frags {
		total += len(f)
	}
	out := make([]byte, 0, total)
	for _, f := range frags {
		out = append(out, f...)
	}
	return out
}

var _ domaintransport.Transport = (*Loopback)(nil)
