package ctxutil

import (
	"context"
	"testing"
	"time"
)

func TestSessionID(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	if got := GetSessionID(ctx); got != "" {
		t.Errorf("empty context returned %q", got)
	}

	ctx = WithSessionID(ctx, "sess-1")
	if got := GetSessionID(ctx); got != "sess-1" {
		t.Errorf("GetSessionID = %q", got)
	}
}

func TestRequestID(t *testing.T) {
	t.Parallel()

	ctx := context.Background()
	if _, ok := GetRequestID(ctx); ok {
		t.Error("empty context reported a request ID")
	}

	ctx = WithRequestID(ctx, "req-42")
	got, ok := GetRequestID(ctx)
	if !ok || got != "req-42" {
		t.Errorf("GetRequestID = %q, %v", got, ok)
	}
}

func TestPreserveTracing(t *testing.T) {
	t.Parallel()

	parent, cancel := context.WithTimeout(context.Background(), time.Millisecond)
	defer cancel()
	parent = WithSessionID(parent, "sess-2")
	parent = WithRequestID(parent, "req-7")

	detached := PreserveTracing(parent)
	cancel()

	if err := detached.Err(); err != nil {
		t.Errorf("detached context canceled: %v", err)
	}
	if got := GetSessionID(detached); got != "sess-2" {
		t.Errorf("session ID = %q", got)
	}
	if got, ok := GetRequestID(detached); !ok || got != "req-7" {
		t.Errorf("request ID = %q, %v", got, ok)
	}
}
