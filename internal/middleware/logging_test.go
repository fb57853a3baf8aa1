package middleware

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"testing"

	"connectrpc.com/connect"
)

func TestLoggingInterceptor(t *testing.T) {
	var buf bytes.Buffer
	prev := slog.Default()
	slog.SetDefault(slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})))
	t.Cleanup(func() { slog.SetDefault(prev) })

	tests := []struct {
		name      string
		err       error
		wantLevel string
		wantCode  string
	}{
		{"success", nil, "level=INFO", "code=ok"},
		{"client error", connect.NewError(connect.CodeNotFound, errors.New("missing")), "level=WARN", "code=not_found"},
		{"internal error", errors.New("boom"), "level=ERROR", "code=unknown"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf.Reset()
			handler := LoggingInterceptor()(func(context.Context, connect.AnyRequest) (connect.AnyResponse, error) {
				if tt.err != nil {
					return nil, tt.err
				}
				return connect.NewResponse(&ping{}), nil
			})

			ctx := WithUser(context.Background(), "u1", "u1@example.com")
			if _, err := handler(ctx, connect.NewRequest(&ping{})); !errors.Is(err, tt.err) {
				t.Fatalf("error not passed through: %v", err)
			}

			out := buf.String()
			for _, want := range []string{tt.wantLevel, tt.wantCode, "user_id=u1"} {
				if !strings.Contains(out, want) {
					t.Errorf("log %q missing %q", out, want)
				}
			}
		})
	}
}
