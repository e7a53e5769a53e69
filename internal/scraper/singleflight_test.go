package scraper

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

func TestFlightGroupCollapsesConcurrentCalls(t *testing.T) {
	t.Parallel()

	fg := NewFlightGroup()
	var calls atomic.Int32
	started := make(chan struct{})
	release := make(chan struct{})

	fn := func() (interface{}, error) {
		if calls.Add(1) == 1 {
			close(started)
		}
		<-release
		return "data", nil
	}

	var wg sync.WaitGroup
	do := func() {
		defer wg.Done()
		v, _, err := fg.Do(context.Background(), "schedules", fn)
		if err != nil || v != "data" {
			t.Errorf("Do = %v, %v", v, err)
		}
	}

	wg.Add(1)
	go do()
	<-started // first call is now in flight

	for i := 0; i < 4; i++ {
		wg.Add(1)
		go do()
	}

	// Give the joiners a moment to attach to the in-flight call.
	time.Sleep(50 * time.Millisecond)
	close(release)
	wg.Wait()

	if got := calls.Load(); got != 1 {
		t.Errorf("function executed %d times, want 1", got)
	}
}

func TestFlightGroupCanceledContext(t *testing.T) {
	t.Parallel()

	fg := NewFlightGroup()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, _, err := fg.Do(ctx, "news", func() (interface{}, error) {
		t.Error("function executed despite canceled context")
		return nil, nil
	})
	if err == nil {
		t.Error("expected context error")
	}
}
