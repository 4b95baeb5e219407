package rpc

import (
	pebbleerrors "github.com/FishShrimp/Pebble/internal/domain/shared/errors"
	"github.com/FishShrimp/Pebble/internal/domain/transport"
)

// ResponseContinuation is the client-side callable installed on a call; it
// is invoked with a reply, an exception, or a timeout outcome. For a reply
// or an exception, its own return value overrides the status reported to
// the application and to metrics (spec.md §4.F.5, §9) — this is
// intentional, not a bug: it lets a continuation upgrade or downgrade the
// observed status, e.g. mapping a decode error onto a domain-specific code.
// On timeout its return value is ignored and RPCRequestTimeout is reported.
type ResponseContinuation func(resultCode pebbleerrors.Kind, payload []byte) pebbleerrors.Kind

// session is the central per-outstanding-call record (spec.md §3): it ties
// together a handle, a timer, a snapshot of the request head, and either a
// client-side continuation or server-side bookkeeping.
type session struct {
	sessionID   uint64
	handle      transport.Handle
	timerID     int64
	startTimeMS int64
	head        transport.Head
	serverSide  bool
	onResponse  ResponseContinuation // client-side only; unused server-side
}

// sessionTable is the engine-private session_id -> session map (spec.md
// §4.C). It holds no lock of its own: the engine's concurrency model is
// single-threaded cooperative (spec.md §5), so every table access happens
// on the one execution context that owns the engine.
type sessionTable struct {
	sessions map[uint64]*session
}

func newSessionTable() *sessionTable {
	return &sessionTable{sessions: make(map[uint64]*session)}
}

func (t *sessionTable) insert(s *session) {
	t.sessions[s.sessionID] = s
}

func (t *sessionTable) get(id uint64) (*session, bool) {
	s, ok := t.sessions[id]
	return s, ok
}

func (t *sessionTable) erase(id uint64) {
	delete(t.sessions, id)
}

func (t *sessionTable) len() int {
	return len(t.sessions)
}
