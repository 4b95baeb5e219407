// Package codec provides a reference Codec implementation for the rpc
// engine: a length-prefixed JSON encoding of Head and Exception frames.
// It is not part of the engine's core contract — any codec satisfying
// transport.Codec works — but gives the engine something runnable without
// requiring every integrator to write a wire format first.
package codec

import (
	"encoding/binary"
	"encoding/json"
	"fmt"

	"github.com/FishShrimp/Pebble/internal/domain/transport"
)

// JSON is a transport.Codec that frames each value as a 4-byte
// big-endian length prefix followed by its JSON encoding.
type JSON struct{}

type wireHead struct {
	MessageType  int32  `json:"type"`
	SessionID    uint64 `json:"sid"`
	FunctionName string `json:"fn"`
}

type wireException struct {
	ErrorCode int32  `json:"code"`
	Message   []byte `json:"msg"`
}

// HeadEncode implements transport.Codec.
func (JSON) HeadEncode(head transport.Head) ([]byte, error) {
	return encodeFramed(wireHead{
		MessageType:  int32(head.MessageType),
		SessionID:    head.SessionID,
		FunctionName: head.FunctionName,
	})
}

// HeadDecode implements transport.Codec.
func (JSON) HeadDecode(buf []byte) (transport.Head, int, error) {
	var w wireHead
	n, err := decodeFramed(buf, &w)
	if err != nil {
		return transport.Head{}, 0, err
	}
	return transport.Head{
		MessageType:  transport.MessageType(w.MessageType),
		SessionID:    w.SessionID,
		FunctionName: w.FunctionName,
	}, n, nil
}

// ExceptionEncode implements transport.Codec.
func (JSON) ExceptionEncode(exc transport.Exception) ([]byte, error) {
	return encodeFramed(wireException{ErrorCode: exc.ErrorCode, Message: exc.Message})
}

// ExceptionDecode implements transport.Codec.
func (JSON) ExceptionDecode(buf []byte) (transport.Exception, int, error) {
	var w wireException
	n, err := decodeFramed(buf, &w)
	if err != nil {
		return transport.Exception{}, 0, err
	}
	return transport.Exception{ErrorCode: w.ErrorCode, Message: w.Message}, n, nil
}

func encodeFramed(v interface{}) ([]byte, error) {
	body, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	out := make([]byte, 4+len(body))
	binary.BigEndian.PutUint32(out, uint32(len(body)))
	copy(out[4:], body)
	return out, nil
}

func decodeFramed(buf []byte, v interface{}) (int, error) {
	if len(buf) < 4 {
		return 0, fmt.Errorf("codec: frame too short: %d bytes", len(buf))
	}
	n := int(binary.BigEndian.Uint32(buf))
	if len(buf) < 4+n {
		return 0, fmt.Errorf("codec: frame declares %d bytes, have %d", n, len(buf)-4)
	}
	if err := json.Unmarshal(buf[4:4+n], v); err != nil {
		return 0, err
	}
	return 4 + n, nil
}
