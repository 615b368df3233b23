// Package stream provides the ordered, single-writer sink for outbound
// agent events.
package stream

import (
	"encoding/json"
	"fmt"
	"net/http"
	"sync"

	"go.uber.org/zap"

	"github.com/glancehq/assistant-platform/internal/model"
	"github.com/glancehq/assistant-platform/pkg/logger"
)

// Sink accepts ordered stream events from the orchestrator and delivers
// them to the wire. After a terminal event, or after any write error,
// further Emit calls are no-ops.
type Sink interface {
	Emit(event model.StreamEvent)
	Closed() bool
	Close()
}

// SSESink writes events to an HTTP response as server-sent events. Each
// event is one JSON object on a `data:` line followed by a blank line.
type SSESink struct {
	mu      sync.Mutex
	w       http.ResponseWriter
	flusher http.Flusher
	closed  bool
	log     *logger.Logger
}

// NewSSESink prepares an SSE sink over the given response writer. The
// caller must have set the event-stream headers already.
func NewSSESink(w http.ResponseWriter, flusher http.Flusher, log *logger.Logger) *SSESink {
	return &SSESink{w: w, flusher: flusher, log: log}
}

// Emit writes one event. Wire errors close the sink and are otherwise
// swallowed; the producer keeps running and its writes become no-ops.
func (s *SSESink) Emit(event model.StreamEvent) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return
	}

	data, err := json.Marshal(event)
	if err != nil {
		s.log.Error("failed to marshal stream event", zap.Error(err))
		s.closed = true
		return
	}

	if _, err := fmt.Fprintf(s.w, "data: %s\n\n", data); err != nil {
		s.log.Debug("stream write failed, closing sink", zap.Error(err))
		s.closed = true
		return
	}
	s.flusher.Flush()

	if event.Terminal() {
		s.closed = true
	}
}

// Closed reports whether the sink has been terminated.
func (s *SSESink) Closed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}

// Close terminates the sink. Idempotent.
func (s *SSESink) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
}

// Heartbeat writes an SSE comment line to keep intermediaries from timing
// out an idle connection. No-op once closed.
func (s *SSESink) Heartbeat() {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return
	}
	if _, err := fmt.Fprint(s.w, ": heartbeat\n\n"); err != nil {
		s.closed = true
		return
	}
	s.flusher.Flush()
}
