package stream

import (
	"sync"

	"github.com/glancehq/assistant-platform/internal/model"
)

// CaptureSink records events in memory. Used by tests.
type CaptureSink struct {
	mu     sync.Mutex
	events []model.StreamEvent
	closed bool
}

// NewCaptureSink creates an empty capture sink.
func NewCaptureSink() *CaptureSink {
	return &CaptureSink{}
}

// Emit records the event unless the sink is closed.
func (s *CaptureSink) Emit(event model.StreamEvent) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return
	}
	s.events = append(s.events, event)
	if event.Terminal() {
		s.closed = true
	}
}

// Closed reports whether a terminal event has been recorded.
func (s *CaptureSink) Closed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

// Close terminates the sink.
func (s *CaptureSink) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
}

// Events returns a copy of everything recorded so far.
func (s *CaptureSink) Events() []model.StreamEvent {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]model.StreamEvent, len(s.events))
	copy(out, s.events)
	return out
}
