// Package rpc implements the transport-independent request/response engine:
// session bookkeeping, timeout scheduling, service dispatch, and the
// in-band exception channel. The engine does no locking of its own; every
// exported method runs to completion on the single execution context that
// owns it (spec.md §5).
package rpc

import (
	"time"

	"github.com/google/uuid"

	pebbleerrors "github.com/FishShrimp/Pebble/internal/domain/shared/errors"
	"github.com/FishShrimp/Pebble/internal/domain/transport"
	"github.com/FishShrimp/Pebble/internal/infrastructure/logging"
)

// beRemoved is returned by OnTimeout to signal the caller (typically the
// scheduler's own Update loop) that the session backing the timer is gone
// and nothing further should be done with it. It is a sentinel distinct
// from the Kind error-catalog range, deliberately chosen as a small
// positive value so it can never collide with a catalog Kind, which are
// all zero or negative.
const beRemoved pebbleerrors.Kind = 1

// Config holds construction-time settings for an Engine.
type Config struct {
	InstanceID       string
	DefaultTimeoutMS int64
	ReqProcTimeoutMS int64
}

// DefaultConfig returns the engine's baseline timing configuration. The
// instance id defaults to a fresh UUID so that two engines sharing a
// process (and a Prometheus registry) never collide on their metric
// labels or GetResourceUsed keys.
func DefaultConfig() Config {
	return Config{
		InstanceID:       uuid.NewString(),
		DefaultTimeoutMS: 10000,
		ReqProcTimeoutMS: 10000,
	}
}

// Option configures an Engine at construction time.
type Option func(*Engine)

// WithEventHandler installs the completion-event sink (spec.md §6).
func WithEventHandler(h transport.EventHandler) Option {
	return func(e *Engine) { e.eventHandler = h }
}

// WithMetricsSink installs the handle-health metrics sink (spec.md §7).
func WithMetricsSink(m transport.MetricsSink) Option {
	return func(e *Engine) { e.metrics = m }
}

// WithScheduler overrides the default heap-based Scheduler, e.g. for tests
// that need to control time.
func WithScheduler(s Scheduler) Option {
	return func(e *Engine) { e.scheduler = s }
}

// WithLogger overrides the engine's logger. Defaults to logging.Default().
func WithLogger(l *logging.Logger) Option {
	return func(e *Engine) { e.logger = l }
}

// Engine ties the session table, dispatch table, and scheduler to a
// transport and codec pair, implementing the request/response/exception
// lifecycle described in spec.md §4.F.
type Engine struct {
	transport transport.Transport
	codec     transport.Codec

	eventHandler transport.EventHandler
	metrics      transport.MetricsSink
	scheduler    Scheduler
	logger       *logging.Logger

	sessions *sessionTable
	dispatch *dispatchTable

	nextSessionID uint64
	taskNum       int64
	latestHandle  transport.Handle

	instanceID       string
	defaultTimeoutMS int64
	reqProcTimeoutMS int64
}

// NewEngine constructs an Engine bound to the given transport and codec.
func NewEngine(tr transport.Transport, codec transport.Codec, cfg Config, opts ...Option) *Engine {
	e := &Engine{
		transport:        tr,
		codec:            codec,
		scheduler:        NewScheduler(),
		logger:           logging.Default(),
		sessions:         newSessionTable(),
		dispatch:         newDispatchTable(),
		instanceID:       cfg.InstanceID,
		defaultTimeoutMS: cfg.DefaultTimeoutMS,
		reqProcTimeoutMS: cfg.ReqProcTimeoutMS,
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// GenSessionId returns a fresh, engine-scoped session identifier. It never
// returns 0, so 0 stays available as a caller-facing "no session" value.
func (e *Engine) GenSessionId() uint64 {
	e.nextSessionID++
	return e.nextSessionID
}

// AddOnRequestFunction registers a service function under name.
func (e *Engine) AddOnRequestFunction(name string, handler RequestHandler) pebbleerrors.Kind {
	return e.dispatch.add(name, handler)
}

// RemoveOnRequestFunction unregisters a previously added service function.
func (e *Engine) RemoveOnRequestFunction(name string) pebbleerrors.Kind {
	return e.dispatch.remove(name)
}

// OnMessage is the transport's single entry point for inbound bytes
// (spec.md §4.F.1). overloadHint, when non-zero, is passed straight to the
// dispatch path for CALL messages and mapped onto an overload-range Kind
// without ever going through the handler.
func (e *Engine) OnMessage(handle transport.Handle, data []byte, overloadHint int32) pebbleerrors.Kind {
	if len(data) == 0 {
		return pebbleerrors.RPCInvalidParam
	}
	head, n, err := e.codec.HeadDecode(data)
	if err != nil || n > len(data) {
		return pebbleerrors.RPCDecodeFailed
	}
	body := data[n:]

	switch head.MessageType {
	case transport.Call:
		if overloadHint != 0 {
			kind := pebbleerrors.OverloadKind(overloadHint)
			ret := e.ResponseException(handle, head, kind, nil)
			e.fireRequestComplete(head.FunctionName, int32(kind), 0)
			return ret
		}
		e.latestHandle = handle
		return e.processRequest(handle, head, body)
	case transport.Oneway:
		e.latestHandle = handle
		return e.processRequest(handle, head, body)
	case transport.Reply, transport.Exception:
		return e.processResponse(head, body)
	default:
		return pebbleerrors.RPCUnknownType
	}
}

// LatestHandle returns the handle of the most recently dispatched CALL or
// ONEWAY message, so a handler invoked synchronously from OnMessage can
// learn its caller without the engine threading call-stack context through
// it.
func (e *Engine) LatestHandle() transport.Handle {
	return e.latestHandle
}

// SendRequest issues an outbound call. head.SessionID must already be set
// by the caller (typically via GenSessionId) — unlike server-side
// sessions, the engine never mints a client-side session id on its own,
// so the caller can correlate it before the request is even sent.
func (e *Engine) SendRequest(handle transport.Handle, head transport.Head, body []byte, timeoutMS int64, onResponse ResponseContinuation) pebbleerrors.Kind {
	ret := e.send(handle, head, body)
	if ret != pebbleerrors.Success {
		e.fireResponseComplete(head.FunctionName, int32(ret), 0)
		return ret
	}
	if onResponse == nil {
		e.fireResponseComplete(head.FunctionName, int32(pebbleerrors.Success), 0)
		return pebbleerrors.Success
	}
	if timeoutMS <= 0 {
		timeoutMS = e.defaultTimeoutMS
	}

	sessionID := head.SessionID
	s := &session{
		sessionID:   sessionID,
		handle:      handle,
		startTimeMS: nowMS(),
		head:        head,
		serverSide:  false,
		onResponse:  onResponse,
	}
	s.timerID = e.scheduler.StartTimer(timeoutMS, func() bool {
		e.onTimeout(sessionID)
		return true
	})
	e.sessions.insert(s)
	e.taskNum++
	return pebbleerrors.Success
}

// processRequest dispatches an inbound CALL or ONEWAY to its registered
// handler (spec.md §4.F.3). The missing-handler case is checked before the
// message type is consulted: even a ONEWAY call to an unknown function
// produces an exception and a completion event.
func (e *Engine) processRequest(handle transport.Handle, head transport.Head, body []byte) pebbleerrors.Kind {
	handler, ok := e.dispatch.lookup(head.FunctionName)
	if !ok {
		e.ResponseException(handle, head, pebbleerrors.RPCUnsupportFunctionName, nil)
		e.fireRequestComplete(head.FunctionName, int32(pebbleerrors.RPCUnsupportFunctionName), 0)
		return pebbleerrors.RPCUnsupportFunctionName
	}

	if head.MessageType == transport.Oneway {
		sink := newReplySink(e, 0, true)
		status := handler(body, sink)
		e.fireRequestComplete(head.FunctionName, int32(status), 0)
		return status
	}

	sessionID := e.GenSessionId()
	start := nowMS()
	s := &session{
		sessionID:   sessionID,
		handle:      handle,
		startTimeMS: start,
		head:        head,
		serverSide:  true,
	}
	s.timerID = e.scheduler.StartTimer(e.reqProcTimeoutMS, func() bool {
		e.onTimeout(sessionID)
		return true
	})
	e.sessions.insert(s)
	e.taskNum++

	sink := newReplySink(e, sessionID, false)
	return handler(body, sink)
}

// SendResponse delivers a handler's outcome for sessionID back over the
// transport, either as a REPLY or, for non-success status, as an
// exception (spec.md §4.F.4).
func (e *Engine) SendResponse(sessionID uint64, status pebbleerrors.Kind, body []byte) pebbleerrors.Kind {
	return e.sendResponse(sessionID, status, body)
}

func (e *Engine) sendResponse(sessionID uint64, status pebbleerrors.Kind, body []byte) pebbleerrors.Kind {
	s, ok := e.sessions.get(sessionID)
	if !ok {
		return pebbleerrors.RPCSessionNotFound
	}
	e.scheduler.StopTimer(s.timerID)

	head := s.head
	var sendRet pebbleerrors.Kind
	if status == pebbleerrors.Success {
		head.MessageType = transport.Reply
		sendRet = e.send(s.handle, head, body)
	} else {
		sendRet = e.ResponseException(s.handle, head, status, body)
	}

	elapsed := nowMS() - s.startTimeMS
	e.fireRequestComplete(head.FunctionName, int32(status), elapsed)
	e.sessions.erase(sessionID)
	e.taskNum--

	if sendRet != pebbleerrors.Success || status != pebbleerrors.Success {
		return pebbleerrors.RPCSendFailed
	}
	return pebbleerrors.Success
}

// processResponse completes the client side of a call: it decodes an
// exception payload when present, invokes the installed continuation, and
// reports the outcome to metrics and the event handler (spec.md §4.F.5).
func (e *Engine) processResponse(head transport.Head, body []byte) pebbleerrors.Kind {
	s, ok := e.sessions.get(head.SessionID)
	if !ok {
		return pebbleerrors.RPCSessionNotFound
	}
	e.scheduler.StopTimer(s.timerID)

	ret := pebbleerrors.Success
	payload := body
	if head.MessageType == transport.Exception {
		exc, _, err := e.codec.ExceptionDecode(body)
		if err != nil {
			ret = pebbleerrors.RPCRecvExceptionMsg
			payload = nil
		} else {
			ret = pebbleerrors.Kind(exc.ErrorCode)
			payload = exc.Message
		}
	}

	if s.onResponse != nil {
		ret = s.onResponse(ret, payload)
	}

	elapsed := nowMS() - s.startTimeMS
	if e.metrics != nil {
		reported := ret
		if reported == pebbleerrors.RPCMessageExpired {
			reported = pebbleerrors.Success
		}
		e.metrics.ReportHandleResult(s.handle, int32(reported), elapsed)
	}
	e.fireResponseComplete(head.FunctionName, int32(ret), elapsed)
	e.sessions.erase(head.SessionID)

	return ret
}

// onTimeout fires when a session's timer expires with no response having
// arrived. It distinguishes the already-completed case (session no longer
// present — nothing to do) from the two live cases: a server-side request
// that never got a reply, and a client-side call that never got answered
// (spec.md §4.F.6).
func (e *Engine) onTimeout(sessionID uint64) pebbleerrors.Kind {
	s, ok := e.sessions.get(sessionID)
	if !ok {
		return pebbleerrors.RPCSessionNotFound
	}

	elapsed := nowMS() - s.startTimeMS
	if s.serverSide {
		e.fireRequestComplete(s.head.FunctionName, int32(pebbleerrors.RPCProcessTimeout), elapsed)
		e.taskNum--
	} else {
		if s.onResponse != nil {
			s.onResponse(pebbleerrors.RPCRequestTimeout, nil)
		}
		if e.metrics != nil {
			e.metrics.ReportHandleResult(s.handle, int32(pebbleerrors.RPCRequestTimeout), 0)
		}
		e.fireResponseComplete(s.head.FunctionName, int32(pebbleerrors.RPCRequestTimeout), elapsed)
	}

	e.sessions.erase(sessionID)
	return beRemoved
}

// BroadcastRequest fans a ONEWAY-shaped message out to every handle
// registered under name at the transport layer (spec.md §4.F.7).
func (e *Engine) BroadcastRequest(name string, head transport.Head, body []byte) pebbleerrors.Kind {
	head.MessageType = transport.Oneway
	encodedHead, err := e.codec.HeadEncode(head)
	if err != nil {
		return pebbleerrors.RPCEncodeFailed
	}
	n := e.transport.BroadcastV(name, [][]byte{encodedHead, body})
	if n < 0 {
		return pebbleerrors.RPCBroadcastFailed
	}
	return pebbleerrors.Success
}

// ResponseException sends an EXCEPTION frame carrying kind and an optional
// detail message. If the exception payload itself fails to encode, the
// frame is still sent, with a zero-length body, rather than dropped
// entirely (spec.md §4.F.8, §9).
func (e *Engine) ResponseException(handle transport.Handle, head transport.Head, kind pebbleerrors.Kind, message []byte) pebbleerrors.Kind {
	head.MessageType = transport.Exception
	excBody, err := e.codec.ExceptionEncode(transport.Exception{
		ErrorCode: int32(kind),
		Message:   message,
	})
	if err != nil {
		excBody = nil
	}
	return e.send(handle, head, excBody)
}

// Update advances the timeout scheduler, firing any timers whose deadline
// has passed, and returns how many fired.
func (e *Engine) Update() int {
	return e.scheduler.Update()
}

// GetResourceUsed reports the engine's live resource counts for
// introspection (spec.md §7), keyed by instance so a process hosting
// multiple engines can distinguish them.
func (e *Engine) GetResourceUsed() map[string]int64 {
	return map[string]int64{
		e.instanceID + ".timers":   int64(e.scheduler.TimerNum()),
		e.instanceID + ".sessions": int64(e.sessions.len()),
		e.instanceID + ".tasks":    e.taskNum,
	}
}

func (e *Engine) send(handle transport.Handle, head transport.Head, body []byte) pebbleerrors.Kind {
	encodedHead, err := e.codec.HeadEncode(head)
	if err != nil {
		return pebbleerrors.RPCEncodeFailed
	}
	if err := e.transport.SendV(handle, [][]byte{encodedHead, body}); err != nil {
		return pebbleerrors.RPCSendFailed
	}
	return pebbleerrors.Success
}

func (e *Engine) fireRequestComplete(functionName string, result int32, elapsedMS int64) {
	if e.eventHandler != nil {
		e.eventHandler.OnRequestProcComplete(functionName, result, elapsedMS)
	}
}

func (e *Engine) fireResponseComplete(functionName string, result int32, elapsedMS int64) {
	if e.eventHandler != nil {
		e.eventHandler.OnResponseProcComplete(functionName, result, elapsedMS)
	}
}

func nowMS() int64 {
	return time.Now().UnixMilli()
}
