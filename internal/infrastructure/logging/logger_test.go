package logging

import (
	"bytes"
	"strings"
	"testing"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type testingWriter struct {
	tb   testing.TB
	logs *bytes.Buffer
}

func (w *testingWriter) Write(p []byte) (int, error) {
	return w.logs.Write(p)
}

func (w *testingWriter) Sync() error {
	return nil
}

func newTestLogger(t *testing.T) (*Logger, *bytes.Buffer) {
	buf := &bytes.Buffer{}
	writer := &testingWriter{tb: t, logs: buf}

	encoderConfig := zapcore.EncoderConfig{
		MessageKey:     "msg",
		LevelKey:       "level",
		TimeKey:        "time",
		NameKey:        "logger",
		CallerKey:      "caller",
		FunctionKey:    zapcore.OmitKey,
		StacktraceKey:  "stacktrace",
		LineEnding:     zapcore.DefaultLineEnding,
		EncodeLevel:    zapcore.LowercaseLevelEncoder,
		EncodeTime:     zapcore.ISO8601TimeEncoder,
		EncodeDuration: zapcore.SecondsDurationEncoder,
		EncodeCaller:   zapcore.ShortCallerEncoder,
	}

	core := zapcore.NewCore(
		zapcore.NewJSONEncoder(encoderConfig),
		zapcore.AddSync(writer),
		zap.NewAtomicLevelAt(zapcore.DebugLevel),
	)

	return &Logger{logger: zap.New(core)}, buf
}

func TestLoggerLevels(t *testing.T) {
	testLogger, buf := newTestLogger(t)
	defer testLogger.Sync()

	testLogger.Debug("dispatch table miss")
	testLogger.Info("request complete")
	testLogger.Warn("demo timed out waiting for the slow call to expire")
	testLogger.Error("send failed")

	output := buf.String()
	for _, want := range []string{"dispatch table miss", "request complete", "demo timed out waiting for the slow call to expire", "send failed"} {
		if !strings.Contains(output, want) {
			t.Errorf("message %q not found in logs", want)
		}
	}
	for _, level := range []string{"debug", "info", "warn", "error"} {
		if !strings.Contains(output, `"level":"`+level+`"`) {
			t.Errorf("%s level not found in logs", level)
		}
	}
}

func TestLoggerWithFields(t *testing.T) {
	testLogger, buf := newTestLogger(t)
	defer testLogger.Sync()

	testLogger.Info("call settled", Fields{
		"function": "echo",
		"result":   int32(0),
	})

	output := buf.String()
	if !strings.Contains(output, `"function":"echo"`) {
		t.Error("function field not found in logs")
	}
	if !strings.Contains(output, `"result":0`) {
		t.Error("result field not found in logs")
	}
}

func TestLoggerWithScopesSubsequentLines(t *testing.T) {
	testLogger, buf := newTestLogger(t)
	defer testLogger.Sync()

	scoped := testLogger.With(Fields{"session_id": uint64(7)})
	scoped.Info("rpc call")
	scoped.Warn("rpc reply error")

	output := buf.String()
	if strings.Count(output, `"session_id":7`) != 2 {
		t.Error("expected session_id field on both scoped log lines")
	}
}
