// This file shows how RPC-level events can be logged with this package,
// without the logging package needing to import the rpc package (the
// fields below are primitives, not rpc.Head values). The engine itself
// does not call these helpers.
package logging

import (
	"context"
	"net/http"
	"time"
)

type contextKey string

const loggerContextKey contextKey = "logger"

// LoggingMiddleware creates an HTTP middleware that logs requests.
func LoggingMiddleware(logger *Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			ctx := context.WithValue(r.Context(), loggerContextKey, logger)

			next.ServeHTTP(w, r.WithContext(ctx))

			logger.Info("http request",
				Fields{
					"method":      r.Method,
					"path":        r.URL.Path,
					"remote_addr": r.RemoteAddr,
					"user_agent":  r.UserAgent(),
					"duration_ms": time.Since(start).Milliseconds(),
				})
		})
	}
}

// GetLoggerFromContext extracts logger from context
func GetLoggerFromContext(ctx context.Context) *Logger {
	if logger, ok := ctx.Value(loggerContextKey).(*Logger); ok {
		return logger
	}
	return Default()
}

// LogRPCCall logs an inbound CALL/ONEWAY head before dispatch.
func LogRPCCall(logger *Logger, sessionID uint64, functionName string, messageType string) {
	logger.Info("rpc call",
		Fields{
			"session_id":   sessionID,
			"function":     functionName,
			"message_type": messageType,
		})
}

// LogRPCReply logs the outcome of a REPLY/EXCEPTION leaving the engine.
func LogRPCReply(logger *Logger, sessionID uint64, functionName string, result int32, elapsedMS int64) {
	fields := Fields{
		"session_id": sessionID,
		"function":   functionName,
		"result":     result,
		"elapsed_ms": elapsedMS,
	}
	if result != 0 {
		logger.Warn("rpc reply error", fields)
	} else {
		logger.Debug("rpc reply ok", fields)
	}
}

// ServerStartupLogger logs server startup information
func ServerStartupLogger(logger *Logger, serverName, version, address string) {
	logger.Info("server starting",
		Fields{
			"name":    serverName,
			"version": version,
			"address": address,
		})
}

// WithRequestID returns a new logger with the request ID field
func WithRequestID(logger *Logger, requestID string) *Logger {
	return logger.With(Fields{
		"request_id": requestID,
	})
}
