package middleware

import (
	"context"
	"log/slog"
	"time"

	"connectrpc.com/connect"

	"github.com/mmynk/settleup/internal/metrics"
)

// LoggingInterceptor returns a Connect interceptor that logs every RPC and
// records its latency. Client errors log at WARN, internal ones at ERROR.
// Install it inside the auth interceptor so the user ID is known.
func LoggingInterceptor() connect.UnaryInterceptorFunc {
	return func(next connect.UnaryFunc) connect.UnaryFunc {
		return func(ctx context.Context, req connect.AnyRequest) (connect.AnyResponse, error) {
			start := time.Now()
			resp, err := next(ctx, req)
			logRPC(ctx, req.Spec().Procedure, time.Since(start), err)
			return resp, err
		}
	}
}

func logRPC(ctx context.Context, procedure string, elapsed time.Duration, err error) {
	code := "ok"
	level := slog.LevelInfo
	if err != nil {
		c := connect.CodeOf(err)
		code = c.String()
		level = slog.LevelWarn
		if c == connect.CodeInternal || c == connect.CodeUnknown {
			level = slog.LevelError
		}
	}
	metrics.RPCHandled(procedure, code, elapsed.Seconds())

	attrs := []any{
		"procedure", procedure,
		"code", code,
		"user_id", GetUserID(ctx),
		"duration_ms", elapsed.Milliseconds(),
	}
	if err != nil {
		attrs = append(attrs, "error", err)
	}
	slog.Log(ctx, level, "RPC handled", attrs...)
}
