package rpc

import (
	"testing"

	pebbleerrors "github.com/FishShrimp/Pebble/internal/domain/shared/errors"
	"github.com/stretchr/testify/assert"
)

func noopHandler(body []byte, sink *ReplySink) pebbleerrors.Kind {
	return pebbleerrors.Success
}

func TestDispatchTableAddAndLookup(t *testing.T) {
	d := newDispatchTable()
	assert.Equal(t, pebbleerrors.Success, d.add("echo", noopHandler))

	h, ok := d.lookup("echo")
	assert.True(t, ok)
	assert.NotNil(t, h)
}

func TestDispatchTableAddRejectsEmptyNameOrNilHandler(t *testing.T) {
	d := newDispatchTable()
	assert.Equal(t, pebbleerrors.RPCInvalidParam, d.add("", noopHandler))
	assert.Equal(t, pebbleerrors.RPCInvalidParam, d.add("echo", nil))
}

func TestDispatchTableAddRejectsDuplicate(t *testing.T) {
	d := newDispatchTable()
	require := assert.New(t)
	require.Equal(pebbleerrors.Success, d.add("echo", noopHandler))
	require.Equal(pebbleerrors.RPCFunctionNameExisted, d.add("echo", noopHandler))
}

func TestDispatchTableRemove(t *testing.T) {
	d := newDispatchTable()
	d.add("echo", noopHandler)

	assert.Equal(t, pebbleerrors.Success, d.remove("echo"))
	_, ok := d.lookup("echo")
	assert.False(t, ok)
}

func TestDispatchTableRemoveUnknownFails(t *testing.T) {
	d := newDispatchTable()
	assert.Equal(t, pebbleerrors.RPCFunctionNameUnexisted, d.remove("missing"))
}
