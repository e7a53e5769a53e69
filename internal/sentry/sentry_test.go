package sentry

import (
	"context"
	"testing"
	"time"
)

func TestInitializeEmptyTokenDisables(t *testing.T) {
	err := Initialize(Config{Token: ""})
	if err != nil {
		t.Errorf("Initialize with empty token: %v", err)
	}
}

func TestInitializeMissingHost(t *testing.T) {
	if err := Initialize(Config{Token: "test-token", Host: ""}); err == nil {
		t.Error("expected error when host is missing")
	}
}

// The SDK keeps global state, so the remaining cases run sequentially.

func TestInitializeValidConfig(t *testing.T) {
	err := Initialize(Config{
		Token:       "test-token",
		Host:        "errors.betterstack.com",
		Environment: "test",
		SampleRate:  1.0,
	})
	if err != nil {
		t.Fatalf("Initialize: %v", err)
	}
	if !IsEnabled() {
		t.Error("IsEnabled = false after initialization")
	}
	Flush(time.Second)
}

func TestInitializeDefaultSampleRate(t *testing.T) {
	err := Initialize(Config{
		Token:      "test-token-2",
		Host:       "errors.betterstack.com",
		SampleRate: 0,
	})
	if err != nil {
		t.Errorf("Initialize: %v", err)
	}
	Flush(time.Second)
}

func TestCapturePanicDoesNotRethrow(t *testing.T) {
	defer func() {
		if r := recover(); r != nil {
			t.Errorf("CapturePanic re-panicked: %v", r)
		}
	}()
	CapturePanic(context.Background(), "boom", "session-1")
	Flush(100 * time.Millisecond)
}

func TestFlushNoEvents(t *testing.T) {
	if !Flush(100 * time.Millisecond) {
		t.Error("Flush returned false with no events pending")
	}
}
