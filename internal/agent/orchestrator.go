// Package agent implements the reason-and-act orchestration loop.
package agent

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/glancehq/assistant-platform/internal/conversation"
	"github.com/glancehq/assistant-platform/internal/llm"
	"github.com/glancehq/assistant-platform/internal/model"
	"github.com/glancehq/assistant-platform/internal/parse"
	"github.com/glancehq/assistant-platform/internal/prompt"
	"github.com/glancehq/assistant-platform/internal/stream"
	"github.com/glancehq/assistant-platform/internal/tool"
	"github.com/glancehq/assistant-platform/pkg/logger"
	"github.com/glancehq/assistant-platform/pkg/metrics"
)

const (
	statusThinking   = "Thinking..."
	statusProcessing = "Processing tool results..."

	emptyResultApology = "I've completed the search but couldn't find any matching results. Want me to try different terms?"
	iterationApology   = "I'm sorry, I wasn't able to finish working through that request. Could you try rephrasing or narrowing it down?"
)

// Config carries the orchestrator knobs.
type Config struct {
	MaxIterations        int
	ContextWindowEntries int
	WordStreamDelay      time.Duration
	LLMTimeout           time.Duration
	LLMModel             string
	LLMTemperature       float64
	LLMMaxTokens         int
}

// Orchestrator drives one chat turn: prompt assembly, the bounded LLM-tool
// loop, and incremental emission to the sink. It is the sink's only
// writer; tools return values and never touch the wire.
type Orchestrator struct {
	llm            llm.Client
	registry       *tool.Registry
	executor       *tool.Executor
	router         *prompt.Router
	store          *conversation.Store
	contextBuilder *prompt.ContextBuilder
	widgets        *WidgetGenerator
	cfg            Config
	log            *logger.Logger
}

// New creates an orchestrator.
func New(
	llmClient llm.Client,
	registry *tool.Registry,
	executor *tool.Executor,
	router *prompt.Router,
	store *conversation.Store,
	contextBuilder *prompt.ContextBuilder,
	widgets *WidgetGenerator,
	cfg Config,
	log *logger.Logger,
) *Orchestrator {
	if cfg.MaxIterations <= 0 {
		cfg.MaxIterations = 5
	}
	if cfg.ContextWindowEntries <= 0 {
		cfg.ContextWindowEntries = 10
	}
	if cfg.LLMTimeout <= 0 {
		cfg.LLMTimeout = 5 * time.Minute
	}
	return &Orchestrator{
		llm:            llmClient,
		registry:       registry,
		executor:       executor,
		router:         router,
		store:          store,
		contextBuilder: contextBuilder,
		widgets:        widgets,
		cfg:            cfg,
		log:            log,
	}
}

// Process handles one chat request, emitting events to the sink until a
// terminal done or error.
func (o *Orchestrator) Process(ctx context.Context, req *model.ChatRequest, sink stream.Sink) {
	last, ok := req.LastUserTurn()
	if !ok {
		sink.Emit(model.ErrorEvent("the last message must be a user message", model.CodeValidationError))
		return
	}
	query := last.Content

	conversationID := req.ConversationID
	if conversationID == "" {
		conversationID = uuid.New().String()
	}
	log := o.log.WithConversation(conversationID)

	// The history read precedes the append so the current turn is not
	// duplicated into the context window.
	withHistory := includeHistory(query)
	var history []model.Entry
	if withHistory {
		history = o.store.Recent(conversationID, o.cfg.ContextWindowEntries)
	}

	o.store.Append(conversationID, model.Entry{
		Role:      model.RoleUser,
		Content:   query,
		Timestamp: time.Now(),
	})

	if err := o.llm.Available(ctx); err != nil {
		log.Warn("LLM unavailable", zap.Error(err))
		sink.Emit(model.ErrorEvent("the language model is currently unavailable", model.CodeLLMUnavailable))
		return
	}

	// The session rides the context into tool handlers; nothing shared is
	// mutated, so concurrent requests with different sessions cannot race.
	if req.SessionInfo != nil {
		ctx = model.WithSession(ctx, req.SessionInfo)
	} else {
		log.Warn("request carries no session; API-backed tools will fail on use")
	}

	userContext := o.contextBuilder.Build(ctx, req.SessionInfo)
	domains := o.router.DetectDomains(query)
	relevant := o.router.RelevantTools(o.registry.AllDescriptors(), domains)
	systemPrompt := o.router.Assemble(prompt.AssembleInput{
		Query:       query,
		Tools:       relevant,
		UserContext: userContext,
	})

	log.Info("processing chat turn",
		zap.Strings("domains", domains),
		zap.Int("relevant_tools", len(relevant)),
		zap.Bool("with_history", withHistory),
		zap.Int("history_entries", len(history)))

	messages := make([]llm.ChatMessage, 0, len(history)+2)
	messages = append(messages, llm.ChatMessage{Role: "system", Content: systemPrompt})
	for _, entry := range history {
		messages = append(messages, llm.ChatMessage{Role: string(entry.Role), Content: entry.Content})
	}
	messages = append(messages, llm.ChatMessage{Role: "user", Content: query})

	summaryRequest := isSummaryRequest(query)

	o.runLoop(ctx, loopState{
		conversationID: conversationID,
		query:          query,
		messages:       messages,
		summaryRequest: summaryRequest,
		log:            log,
	}, sink)
}

type loopState struct {
	conversationID string
	query          string
	messages       []llm.ChatMessage
	summaryRequest bool
	log            *logger.Logger
}

func (o *Orchestrator) runLoop(ctx context.Context, st loopState, sink stream.Sink) {
	iterations := 0
	defer func() {
		metrics.AgentIterations.Observe(float64(iterations))
	}()

	for iteration := 0; iteration < o.cfg.MaxIterations; iteration++ {
		iterations = iteration + 1

		if iteration == 0 {
			sink.Emit(model.StatusEvent(statusThinking))
		} else {
			sink.Emit(model.StatusEvent(statusProcessing))
		}

		raw, err := o.complete(ctx, st.messages)
		if err != nil {
			st.log.Error("LLM stream failed", zap.Error(err))
			sink.Emit(model.ErrorEvent("the language model returned an error", model.CodeLLMError))
			return
		}

		parsed := parse.Parse(raw)

		if len(parsed.ToolCalls) > 0 {
			st.messages = o.dispatchTools(ctx, st, parsed, raw, sink)
			continue
		}

		o.finalize(st, parsed, iteration, sink)
		return
	}

	// Cap reached: a user-visible apology, not an error.
	st.log.Warn("iteration cap reached", zap.Int("max_iterations", o.cfg.MaxIterations))
	o.streamText(sink, iterationApology)
	o.store.Append(st.conversationID, model.Entry{
		Role:      model.RoleAssistant,
		Content:   iterationApology,
		Timestamp: time.Now(),
	})
	sink.Emit(model.DoneEvent())
}

// complete invokes the LLM stream once and accumulates the content.
func (o *Orchestrator) complete(ctx context.Context, messages []llm.ChatMessage) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, o.cfg.LLMTimeout)
	defer cancel()

	start := time.Now()
	resp, err := o.llm.CompleteStream(ctx, &llm.CompletionRequest{
		Model:       o.cfg.LLMModel,
		Messages:    messages,
		MaxTokens:   o.cfg.LLMMaxTokens,
		Temperature: o.cfg.LLMTemperature,
	}, func(token string, index int) error { return nil })
	if err != nil {
		metrics.RecordLLMStream(o.llm.Name(), "error", time.Since(start).Seconds(), 0, 0)
		return "", err
	}

	metrics.RecordLLMStream(o.llm.Name(), "success", time.Since(start).Seconds(), resp.TokensIn, resp.TokensOut)
	return resp.Content, nil
}

// dispatchTools executes the parsed calls concurrently, emits their
// widgets in call order, and appends the synthesized turns for the next
// iteration.
func (o *Orchestrator) dispatchTools(ctx context.Context, st loopState, parsed parse.ParsedResponse, raw string, sink stream.Sink) []llm.ChatMessage {
	names := make([]string, len(parsed.ToolCalls))
	order := make([]string, len(parsed.ToolCalls))
	for i, call := range parsed.ToolCalls {
		names[i] = call.Name
		order[i] = call.ID
	}
	st.log.Info("dispatching tool calls", zap.Strings("tools", names))

	results := o.executor.ExecuteMany(ctx, parsed.ToolCalls)

	if !st.summaryRequest {
		for _, w := range o.widgets.FromToolResults(order, results) {
			sink.Emit(model.WidgetEvent(w))
			metrics.WidgetsEmittedTotal.WithLabelValues(string(w.Type)).Inc()
		}
	}

	messages := append(st.messages, llm.ChatMessage{Role: "assistant", Content: raw})
	messages = append(messages, llm.ChatMessage{
		Role:    "user",
		Content: toolResultsMessage(parsed.ToolCalls, results),
	})
	return messages
}

// finalize streams the final text, emits any LLM-authored widgets, records
// the assistant turn, and closes with done.
func (o *Orchestrator) finalize(st loopState, parsed parse.ParsedResponse, iteration int, sink stream.Sink) {
	text := parsed.Response
	if strings.TrimSpace(text) == "" && iteration > 0 {
		text = emptyResultApology
	}

	o.streamText(sink, text)

	llmWidgets := o.widgets.FromLLM(parsed.Widgets)
	for _, w := range llmWidgets {
		sink.Emit(model.WidgetEvent(w))
		metrics.WidgetsEmittedTotal.WithLabelValues(string(w.Type)).Inc()
	}

	o.store.Append(st.conversationID, model.Entry{
		Role:      model.RoleAssistant,
		Content:   text,
		Timestamp: time.Now(),
		Widgets:   llmWidgets,
	})

	sink.Emit(model.DoneEvent())
}

var streamTokenRe = regexp.MustCompile(`\s*\S+\s*`)

// streamText emits the text word by word, preserving whitespace. The
// optional delay shapes client-side animation.
func (o *Orchestrator) streamText(sink stream.Sink, text string) {
	tokens := streamTokenRe.FindAllString(text, -1)
	for i, token := range tokens {
		sink.Emit(model.TextDeltaEvent(token))
		if o.cfg.WordStreamDelay > 0 && i < len(tokens)-1 {
			time.Sleep(o.cfg.WordStreamDelay)
		}
	}
}

// toolResultsMessage renders the per-call feedback block the LLM sees on
// the next iteration.
func toolResultsMessage(calls []model.ToolCall, results map[string]model.ToolResult) string {
	var b strings.Builder
	for _, call := range calls {
		result := results[call.ID]
		if result.Success {
			pretty, err := json.MarshalIndent(result.Data, "", "  ")
			if err != nil {
				pretty = []byte(fmt.Sprintf("%v", result.Data))
			}
			fmt.Fprintf(&b, "Tool %q returned: %s\n\n", call.Name, pretty)
		} else {
			fmt.Fprintf(&b, "Tool %q failed: %s\n\n", call.Name, result.Error)
		}
	}
	b.WriteString("Write the user-facing reply from these results. If no results were found, tell the user that clearly.")
	return b.String()
}
