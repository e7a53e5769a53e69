package warmup

import (
	"sync/atomic"
	"time"
)

// ReadinessState tracks whether the initial data refresh has finished.
// The readiness probe reports not-ready until either MarkReady is
// called or the timeout elapses, whichever comes first.
type ReadinessState struct {
	ready     atomic.Bool
	startTime time.Time     // immutable after construction
	timeout   time.Duration // immutable after construction
}

// ReadinessStatus is the JSON body of the readiness endpoint.
type ReadinessStatus struct {
	Ready          bool   `json:"ready"`
	Reason         string `json:"reason,omitempty"`
	ElapsedSeconds int    `json:"elapsed_seconds,omitempty"`
	TimeoutSeconds int    `json:"timeout_seconds,omitempty"`
}

// NewReadinessState creates a state that reports ready once MarkReady
// is called or after timeout has elapsed since creation.
func NewReadinessState(timeout time.Duration) *ReadinessState {
	return &ReadinessState{
		startTime: time.Now(),
		timeout:   timeout,
	}
}

// IsReady returns true when the service should accept traffic.
func (s *ReadinessState) IsReady() bool {
	if s.ready.Load() {
		return true
	}
	return time.Since(s.startTime) >= s.timeout
}

// MarkReady records that the initial refresh completed.
func (s *ReadinessState) MarkReady() {
	s.ready.Store(true)
}

// RefreshCompleted returns true only if MarkReady was called, unlike
// IsReady which also honors the timeout.
func (s *ReadinessState) RefreshCompleted() bool {
	return s.ready.Load()
}

// Status returns the current readiness state for the probe response.
func (s *ReadinessState) Status() ReadinessStatus {
	elapsed := time.Since(s.startTime)
	isReady := s.IsReady()

	status := ReadinessStatus{
		Ready:          isReady,
		ElapsedSeconds: int(elapsed.Seconds()),
		TimeoutSeconds: int(s.timeout.Seconds()),
	}

	if !isReady {
		status.Reason = "initial data refresh in progress"
	} else if !s.ready.Load() {
		status.Reason = "timeout reached, refresh may still be running"
	}
	return status
}
