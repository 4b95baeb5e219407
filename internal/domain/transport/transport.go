// Package transport defines the external collaborator contracts the RPC
// engine consumes: the bytes-on-wire transport, the head/exception codec,
// and the optional event-handler hooks. None of these are implemented by
// the engine itself (spec.md §1 Non-goals) — internal/infrastructure/rpc
// only depends on these interfaces, and internal/infrastructure/transport
// supplies a reference implementation for tests and demos.
package transport

// Handle is an opaque transport-connection identifier, never interpreted
// by the engine.
type Handle int64

// Transport is the bytes-on-wire contract the engine sends through. Every
// Transport method is an atomic step from the engine's point of view
// (spec.md §5) — it may block, but the engine never suspends mid-operation
// waiting on it.
type Transport interface {
	// Send transmits a single buffer to handle.
	Send(handle Handle, data []byte) error

	// SendV transmits a list of fragments to handle as one logical
	// message (head fragment first, body fragment second in every use
	// the engine makes of it).
	SendV(handle Handle, frags [][]byte) error

	// Broadcast transmits a single buffer to every connection registered
	// under name. Returns the number of recipients, or a negative number
	// on failure.
	Broadcast(name string, data []byte) int

	// BroadcastV is the fragmented form of Broadcast.
	BroadcastV(name string, frags [][]byte) int
}

// MessageType distinguishes CALL/REPLY/EXCEPTION/ONEWAY frames (spec.md §3).
type MessageType int32

const (
	// Call is a request awaiting a Reply or Exception.
	Call MessageType = iota
	// Reply is a successful response to a Call.
	Reply
	// Exception is an in-band error response to a Call.
	Exception
	// Oneway is a request with no response; the engine creates no session
	// for it.
	Oneway
)

func (m MessageType) String() string {
	switch m {
	case Call:
		return "CALL"
	case Reply:
		return "REPLY"
	case Exception:
		return "EXCEPTION"
	case Oneway:
		return "ONEWAY"
	default:
		return "UNKNOWN"
	}
}

// Head is the subset of the wire head the engine reads and writes. Codec
// implementations may carry additional fields of their own; those are
// preserved verbatim across Decode/Encode round trips by the codec, not by
// the engine (spec.md §3).
type Head struct {
	MessageType  MessageType
	SessionID    uint64
	FunctionName string
}

// Exception is the in-band error payload carried by an EXCEPTION frame.
type Exception struct {
	ErrorCode int32
	Message   []byte
}

// Codec encodes/decodes heads and exceptions. Additional codec-internal
// state (e.g. protocol version, compression flags) is the codec's own
// business; the engine only reads/writes the Head/Exception fields above.
type Codec interface {
	// HeadEncode writes head into a fresh buffer and returns it.
	HeadEncode(head Head) ([]byte, error)

	// HeadDecode parses a head prefix out of buf, returning the decoded
	// head and the number of bytes it consumed.
	HeadDecode(buf []byte) (Head, int, error)

	// ExceptionEncode writes exc into a fresh buffer and returns it.
	ExceptionEncode(exc Exception) ([]byte, error)

	// ExceptionDecode parses an exception out of buf.
	ExceptionDecode(buf []byte) (Exception, int, error)
}

// EventHandler receives the engine's completion notifications. Both
// methods are optional — a nil EventHandler means the engine simply does
// not report.
type EventHandler interface {
	// OnRequestProcComplete fires once a server-side request has been
	// fully handled (reply sent, handler error, unsupported function, or
	// timeout).
	OnRequestProcComplete(functionName string, result int32, elapsedMS int64)

	// OnResponseProcComplete fires once a client-side call has been fully
	// resolved (reply, exception, or timeout).
	OnResponseProcComplete(functionName string, result int32, elapsedMS int64)
}

// MetricsSink is the handle-health metrics collaborator the engine writes
// to on every resolved client-side call and on timeout (spec.md §6).
type MetricsSink interface {
	ReportHandleResult(handle Handle, code int32, elapsedMS int64)
}
