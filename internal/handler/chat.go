// Package handler provides the HTTP endpoints of the assistant platform.
package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/glancehq/assistant-platform/internal/conversation"
	"github.com/glancehq/assistant-platform/internal/middleware"
	"github.com/glancehq/assistant-platform/internal/model"
	natsclient "github.com/glancehq/assistant-platform/internal/nats"
	"github.com/glancehq/assistant-platform/internal/stream"
	"github.com/glancehq/assistant-platform/pkg/logger"
	"github.com/glancehq/assistant-platform/pkg/metrics"
)

// Processor handles one chat turn against a sink. Implemented by the
// orchestrator and by the mock agent.
type Processor interface {
	Process(ctx context.Context, req *model.ChatRequest, sink stream.Sink)
}

// ChatHandler serves the chat event stream.
type ChatHandler struct {
	processor Processor
	store     *conversation.Store
	mirror    *natsclient.Client // nil disables the event mirror
	logger    *logger.Logger
}

// NewChatHandler creates a chat handler. mirror may be nil.
func NewChatHandler(processor Processor, store *conversation.Store, mirror *natsclient.Client, log *logger.Logger) *ChatHandler {
	return &ChatHandler{
		processor: processor,
		store:     store,
		mirror:    mirror,
		logger:    log,
	}
}

// Chat handles POST /chat: decode the request, open the event stream, and
// run the agent against it.
func (h *ChatHandler) Chat(w http.ResponseWriter, r *http.Request) {
	var req model.ChatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	if len(req.Messages) == 0 {
		writeError(w, http.StatusBadRequest, "messages cannot be empty")
		return
	}
	if err := middleware.ValidateConversationID(req.ConversationID); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	if last, ok := req.LastUserTurn(); ok {
		if err := middleware.ValidateMessageContent(last.Content); err != nil {
			writeError(w, http.StatusBadRequest, err.Error())
			return
		}
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no") // Disable nginx buffering

	flusher, ok := w.(http.Flusher)
	if !ok {
		writeError(w, http.StatusInternalServerError, "streaming not supported")
		return
	}

	metrics.IncrementSSEConnections()
	defer metrics.DecrementSSEConnections()

	sseSink := stream.NewSSESink(w, flusher, h.logger)

	// Heartbeats keep intermediaries from dropping the connection while a
	// slow model thinks. They stop on their own once the sink closes.
	heartbeatDone := make(chan struct{})
	defer close(heartbeatDone)
	go func() {
		ticker := time.NewTicker(30 * time.Second)
		defer ticker.Stop()
		for {
			select {
			case <-heartbeatDone:
				return
			case <-ticker.C:
				sseSink.Heartbeat()
			}
		}
	}()

	var sink stream.Sink = sseSink
	if h.mirror != nil {
		subject := "assistant.events." + req.ConversationID
		if req.ConversationID == "" {
			subject = "assistant.events.anonymous"
		}
		sink = stream.NewMirrorSink(sink, h.mirror, subject, h.logger)
	}

	// The orchestrator guarantees a terminal event on its own paths; a
	// panic is the one way out without one.
	defer func() {
		if rec := recover(); rec != nil {
			h.logger.Error("agent panicked", zap.Any("panic", rec))
			sink.Emit(model.ErrorEvent("internal agent failure", model.CodeAgentError))
		}
		sink.Close()
	}()

	h.processor.Process(r.Context(), &req, sink)
}

// Clear handles DELETE /chat/{conversationId}: drop one conversation's
// history.
func (h *ChatHandler) Clear(w http.ResponseWriter, r *http.Request) {
	conversationID := chi.URLParam(r, "conversationId")
	if conversationID == "" {
		writeError(w, http.StatusBadRequest, "conversation ID is required")
		return
	}

	h.store.Clear(conversationID)
	h.logger.Info("conversation cleared", zap.String("conversation_id", conversationID))
	writeJSON(w, http.StatusOK, map[string]bool{"cleared": true})
}
