package stream

import (
	"encoding/json"

	"go.uber.org/zap"

	"github.com/glancehq/assistant-platform/internal/model"
	"github.com/glancehq/assistant-platform/pkg/logger"
)

// Publisher is the slice of the NATS client the mirror needs.
type Publisher interface {
	Publish(subject string, data []byte) error
}

// MirrorSink forwards events to an inner sink and additionally publishes
// them, fire-and-forget, on a NATS subject for out-of-process observers.
// Publish failures never affect delivery to the client.
type MirrorSink struct {
	inner   Sink
	pub     Publisher
	subject string
	log     *logger.Logger
}

// NewMirrorSink wraps inner with a NATS mirror on the given subject.
func NewMirrorSink(inner Sink, pub Publisher, subject string, log *logger.Logger) *MirrorSink {
	return &MirrorSink{inner: inner, pub: pub, subject: subject, log: log}
}

// Emit forwards to the inner sink, then mirrors. Once the inner sink is
// closed, Emit is a no-op.
func (s *MirrorSink) Emit(event model.StreamEvent) {
	if s.inner.Closed() {
		return
	}
	s.inner.Emit(event)

	data, err := json.Marshal(event)
	if err != nil {
		return
	}
	if err := s.pub.Publish(s.subject, data); err != nil {
		s.log.Debug("event mirror publish failed", zap.Error(err))
	}
}

// Closed reports the inner sink's state.
func (s *MirrorSink) Closed() bool {
	return s.inner.Closed()
}

// Close closes the inner sink.
func (s *MirrorSink) Close() {
	s.inner.Close()
}
