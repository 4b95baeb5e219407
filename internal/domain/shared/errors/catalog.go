// Package errors implements the stable error-kind catalog shared by the
// naming and rpc packages: integer kinds with registered human strings,
// wrapped for Go idioms.
package errors

import (
	"fmt"
	"sync"

	"github.com/pkg/errors"
)

// Kind is a stable, small-magnitude integer error code. Zero means success;
// negative values are failures. Kinds are never exceptions — they travel as
// ordinary return values and get wrapped into *Error only at the boundary
// where a human-readable message or a cause chain is useful.
type Kind int32

// Success is the zero kind shared by the naming and rpc catalogs.
const Success Kind = 0

// Naming kinds (spec.md §4.B, §6).
const (
	NamingInvalidParam Kind = -1 - iota
	NamingURLRegistered
	NamingURLNotBinded
	NamingRegisterFailed
	NamingFactoryMapNull
	NamingFactoryExisted
)

// RPC kinds (spec.md §4.F, §6). Numbered in a separate range from the
// naming kinds so the two catalogs never alias.
const (
	RPCInvalidParam Kind = -101 - iota
	RPCEncodeFailed
	RPCDecodeFailed
	RPCRecvExceptionMsg
	RPCUnknownType
	RPCUnsupportFunctionName
	RPCSessionNotFound
	RPCSendFailed
	RPCRequestTimeout
	RPCFunctionNameExisted
	RPCSystemError
	RPCProcessTimeout
	RPCBroadcastFailed
	RPCFunctionNameUnexisted
	RPCMessageExpired
	RPCTaskOverload
)

// SystemOverloadBase anchors a contiguous range of overload sub-reasons:
// a transport-supplied positive hint h maps to SystemOverloadBase - h.
const SystemOverloadBase Kind = -10000

// OverloadKind maps a positive transport overload hint into the catalog's
// overload range, registering a string for it the first time it is seen.
func OverloadKind(hint int32) Kind {
	k := SystemOverloadBase - Kind(hint)
	mu.Lock()
	if _, ok := strings_[k]; !ok {
		strings_[k] = fmt.Sprintf("system overload: hint %d", hint)
	}
	mu.Unlock()
	return k
}

var (
	mu       sync.Mutex
	strings_ = map[Kind]string{
		Success: "success",

		NamingInvalidParam:   "invalid paramater",
		NamingURLRegistered:  "url already registered",
		NamingURLNotBinded:   "url not binded",
		NamingRegisterFailed: "register failed",
		NamingFactoryMapNull: "naming factory map is null",
		NamingFactoryExisted: "naming factory is existed",

		RPCInvalidParam:          "invalid paramater",
		RPCEncodeFailed:          "encode failed",
		RPCDecodeFailed:          "decode failed",
		RPCRecvExceptionMsg:      "receive a exception message",
		RPCUnknownType:           "unknown message type received",
		RPCUnsupportFunctionName: "unsupport function name",
		RPCSessionNotFound:       "session is expired",
		RPCSendFailed:            "send failed",
		RPCRequestTimeout:        "request timeout",
		RPCFunctionNameExisted:   "service name is already registered",
		RPCSystemError:           "system error",
		RPCProcessTimeout:        "process service timeout",
		RPCBroadcastFailed:       "broadcast request failed",
		RPCFunctionNameUnexisted: "service name unexisted",
		RPCMessageExpired:        "system overload: message expired",
		RPCTaskOverload:          "system overload: task overload",
	}
)

// RegisterKind adds or overwrites the human string for a kind. Applications
// embedding this module can use it to register strings for their own
// extension kinds (e.g. application error codes carried back through
// SendResponse).
func RegisterKind(k Kind, message string) {
	mu.Lock()
	defer mu.Unlock()
	strings_[k] = message
}

// KindString returns the registered human string for k, or a generic
// fallback if nothing was registered for it.
func KindString(k Kind) string {
	mu.Lock()
	defer mu.Unlock()
	if s, ok := strings_[k]; ok {
		return s
	}
	return fmt.Sprintf("unregistered error kind %d", int32(k))
}

// Error is the Go-idiomatic wrapper around a catalog Kind: it satisfies the
// error interface and preserves an optional cause for errors.Unwrap/errors.Is.
type Error struct {
	Kind    Kind
	Message string
	Cause   error
}

// New creates an *Error for kind with an explicit message, ignoring the
// kind's registered string (use for call-site context, e.g. a function
// name involved in the failure).
func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Wrap creates an *Error for kind around cause, in the github.com/pkg/errors
// style used elsewhere in this module.
func Wrap(kind Kind, cause error, message string) *Error {
	return &Error{Kind: kind, Message: message, Cause: errors.Wrap(cause, message)}
}

// Of builds an *Error using the kind's own registered catalog string.
func Of(kind Kind) *Error {
	return &Error{Kind: kind, Message: KindString(kind)}
}

func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s (kind=%d): %v", e.Message, int32(e.Kind), e.Cause)
	}
	return fmt.Sprintf("%s (kind=%d)", e.Message, int32(e.Kind))
}

// Unwrap exposes the wrapped cause for errors.Is/errors.As.
func (e *Error) Unwrap() error {
	return e.Cause
}

// KindOf extracts the Kind carried by err, if any, returning (kind, true)
// when err is (or wraps) an *Error from this package.
func KindOf(err error) (Kind, bool) {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind, true
	}
	return 0, false
}
