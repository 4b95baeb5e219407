package rpc

import (
	"sync/atomic"

	pebbleerrors "github.com/FishShrimp/Pebble/internal/domain/shared/errors"
)

// ReplySink is handed to a RequestHandler in place of a raw session
// reference. It must be invoked at most once: the first call to Reply wins,
// every later call is rejected with RPCSystemError (spec.md §4.F.3, §9).
// On a ONEWAY request, Reply is a deliberate no-op — there is no caller
// waiting on the other end.
type ReplySink struct {
	engine    *Engine
	sessionID uint64
	oneway    bool
	used      atomic.Bool
}

func newReplySink(engine *Engine, sessionID uint64, oneway bool) *ReplySink {
	return &ReplySink{engine: engine, sessionID: sessionID, oneway: oneway}
}

// Reply delivers the handler's result. status is the application-level
// outcome the engine reports to the event handler; body is the response
// payload when status is success, and is sent through ResponseException as
// the exception's message when status is non-success.
func (s *ReplySink) Reply(status pebbleerrors.Kind, body []byte) pebbleerrors.Kind {
	if s.oneway {
		return pebbleerrors.Success
	}
	if !s.used.CompareAndSwap(false, true) {
		return pebbleerrors.RPCSystemError
	}
	return s.engine.sendResponse(s.sessionID, status, body)
}
