package transport

import (
	"testing"

	pebbleerrors "github.com/FishShrimp/Pebble/internal/domain/shared/errors"
	domaintransport "github.com/FishShrimp/Pebble/internal/domain/transport"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSendDeliversToRegisteredPeer(t *testing.T) {
	lb := NewLoopback()
	var gotData []byte
	var gotHint int32
	lb.Register(1, "", func(handle domaintransport.Handle, data []byte, hint int32) pebbleerrors.Kind {
		gotData = data
		gotHint = hint
		return pebbleerrors.Success
	})

	err := lb.SendV(1, [][]byte{[]byte("head"), []byte("body")})
	require.NoError(t, err)
	assert.Equal(t, []byte("headbody"), gotData)
	assert.Equal(t, int32(0), gotHint)
}

func TestSendUnknownHandleErrors(t *testing.T) {
	lb := NewLoopback()
	err := lb.Send(99, []byte("x"))
	assert.Error(t, err)
}

func TestSetOverloadHintAppliesToNextSend(t *testing.T) {
	lb := NewLoopback()
	var gotHint int32
	lb.Register(1, "", func(handle domaintransport.Handle, data []byte, hint int32) pebbleerrors.Kind {
		gotHint = hint
		return pebbleerrors.Success
	})
	lb.SetOverloadHint(1, 3)

	_ = lb.Send(1, []byte("x"))
	assert.Equal(t, int32(3), gotHint)
}

func TestBroadcastVDeliversToEveryMemberOfName(t *testing.T) {
	lb := NewLoopback()
	var count int
	handler := func(handle domaintransport.Handle, data []byte, hint int32) pebbleerrors.Kind {
		count++
		return pebbleerrors.Success
	}
	lb.Register(1, "topic", handler)
	lb.Register(2, "topic", handler)
	lb.Register(3, "other", handler)

	n := lb.BroadcastV("topic", [][]byte{[]byte("a")})
	assert.Equal(t, 2, n)
	assert.Equal(t, 2, count)
}

func TestBroadcastUnknownNameIsZero(t *testing.T) {
	lb := NewLoopback()
	assert.Equal(t, 0, lb.Broadcast("missing", []byte("x")))
}
