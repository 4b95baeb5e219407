// Command echo wires two in-process engines over the loopback transport
// and drives a handful of round trips end to end: a successful call, an
// application error, a ONEWAY notification, and a call that is left to
// time out. Everything runs on a single goroutine, matching the engine's
// single-threaded cooperative model — the loopback transport delivers
// each send synchronously, so a client's continuation has already run by
// the time SendRequest returns, except for the deliberately-unanswered
// "slow" call, which only settles once Update() drives its timer.
package main

import (
	"fmt"
	"os"
	"time"

	pebbleerrors "github.com/FishShrimp/Pebble/internal/domain/shared/errors"
	"github.com/FishShrimp/Pebble/internal/domain/transport"
	"github.com/FishShrimp/Pebble/internal/infrastructure/codec"
	"github.com/FishShrimp/Pebble/internal/infrastructure/logging"
	"github.com/FishShrimp/Pebble/internal/infrastructure/rpc"
	infratransport "github.com/FishShrimp/Pebble/internal/infrastructure/transport"
)

const (
	clientHandle transport.Handle = 1
	serverHandle transport.Handle = 2
)

type stdoutEvents struct {
	logger *logging.Logger
}

func (e stdoutEvents) OnRequestProcComplete(name string, result int32, elapsedMS int64) {
	e.logger.Info("request complete", logging.Fields{"function": name, "result": result, "elapsed_ms": elapsedMS})
}

func (e stdoutEvents) OnResponseProcComplete(name string, result int32, elapsedMS int64) {
	e.logger.Info("response complete", logging.Fields{"function": name, "result": result, "elapsed_ms": elapsedMS})
}

func main() {
	logger, err := logging.NewDevelopment()
	if err != nil {
		fmt.Fprintln(os.Stderr, "failed to build logger:", err)
		os.Exit(1)
	}
	defer logger.Sync()

	lb := infratransport.NewLoopback()
	wireCodec := codec.JSON{}
	events := stdoutEvents{logger: logger}

	server := rpc.NewEngine(lb, wireCodec, rpc.DefaultConfig(),
		rpc.WithLogger(logger), rpc.WithEventHandler(events))
	clientCfg := rpc.DefaultConfig()
	clientCfg.InstanceID = "echo-client"
	client := rpc.NewEngine(lb, wireCodec, clientCfg,
		rpc.WithLogger(logger), rpc.WithEventHandler(events))

	lb.Register(serverHandle, "broadcast", server.OnMessage)
	lb.Register(clientHandle, "", client.OnMessage)

	server.AddOnRequestFunction("echo", func(body []byte, sink *rpc.ReplySink) pebbleerrors.Kind {
		return sink.Reply(pebbleerrors.Success, body)
	})
	server.AddOnRequestFunction("div", func(body []byte, sink *rpc.ReplySink) pebbleerrors.Kind {
		return sink.Reply(pebbleerrors.Kind(-17), []byte("divide by zero"))
	})
	server.AddOnRequestFunction("slow", func(body []byte, sink *rpc.ReplySink) pebbleerrors.Kind {
		return pebbleerrors.Success // deliberately never calls sink.Reply
	})

	runCall(client, "echo", []byte("hello"), logger)
	runCall(client, "div", []byte("1/0"), logger)

	onewayHead := transport.Head{MessageType: transport.Oneway, FunctionName: "echo"}
	encoded, _ := wireCodec.HeadEncode(onewayHead)
	if err := lb.SendV(serverHandle, [][]byte{encoded, []byte("fire and forget")}); err != nil {
		logger.Error("oneway send failed", logging.Fields{"error": err.Error()})
	}

	settled := false
	runCallAsync(client, "slow", []byte("never replies"), logger, func() { settled = true })

	ticker := time.NewTicker(10 * time.Millisecond)
	defer ticker.Stop()
	deadline := time.After(500 * time.Millisecond)
	for !settled {
		select {
		case <-ticker.C:
			server.Update()
			client.Update()
		case <-deadline:
			logger.Warn("demo timed out waiting for the slow call to expire")
			return
		}
	}
}

func runCall(client *rpc.Engine, function string, body []byte, logger *logging.Logger) {
	runCallAsync(client, function, body, logger, nil)
}

// runCallAsync issues a call and installs a continuation that logs the
// outcome and, if onSettled is given, signals completion for the caller's
// own loop to notice.
func runCallAsync(client *rpc.Engine, function string, body []byte, logger *logging.Logger, onSettled func()) {
	sessionID := client.GenSessionId()
	head := transport.Head{MessageType: transport.Call, SessionID: sessionID, FunctionName: function}

	ret := client.SendRequest(serverHandle, head, body, 150, func(status pebbleerrors.Kind, payload []byte) pebbleerrors.Kind {
		logger.Info("call settled",
			logging.Fields{"function": function, "status": int32(status), "payload": string(payload)})
		if onSettled != nil {
			onSettled()
		}
		return status
	})
	if ret != pebbleerrors.Success {
		logger.Error("send failed", logging.Fields{"function": function, "status": int32(ret)})
	}
}
