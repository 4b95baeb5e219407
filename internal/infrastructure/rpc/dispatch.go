package rpc

import (
	pebbleerrors "github.com/FishShrimp/Pebble/internal/domain/shared/errors"
)

// RequestHandler is a registered service function. It returns an integer
// status directly to support the ONEWAY path, where nothing downstream
// ever reads the reply sink; on the non-ONEWAY path the handler's return
// value is typically what it also hands to sink.Reply, but the two are not
// required to match (spec.md §4.F.3).
type RequestHandler func(body []byte, sink *ReplySink) pebbleerrors.Kind

// dispatchTable is the unique-keyed function_name -> RequestHandler map
// (spec.md §4.E).
type dispatchTable struct {
	handlers map[string]RequestHandler
}

func newDispatchTable() *dispatchTable {
	return &dispatchTable{handlers: make(map[string]RequestHandler)}
}

func (d *dispatchTable) add(name string, handler RequestHandler) pebbleerrors.Kind {
	if name == "" || handler == nil {
		return pebbleerrors.RPCInvalidParam
	}
	if _, exists := d.handlers[name]; exists {
		return pebbleerrors.RPCFunctionNameExisted
	}
	d.handlers[name] = handler
	return pebbleerrors.Success
}

func (d *dispatchTable) remove(name string) pebbleerrors.Kind {
	if _, exists := d.handlers[name]; !exists {
		return pebbleerrors.RPCFunctionNameUnexisted
	}
	delete(d.handlers, name)
	return pebbleerrors.Success
}

func (d *dispatchTable) lookup(name string) (RequestHandler, bool) {
	h, ok := d.handlers[name]
	return h, ok
}
