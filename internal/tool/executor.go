package tool

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/glancehq/assistant-platform/internal/model"
	"github.com/glancehq/assistant-platform/pkg/logger"
	"github.com/glancehq/assistant-platform/pkg/metrics"
)

// Executor validates arguments, dispatches handlers, and aggregates
// results by call id. Errors in one call never abort others.
type Executor struct {
	registry *Registry
	log      *logger.Logger
}

// NewExecutor creates an executor over the given registry.
func NewExecutor(registry *Registry, log *logger.Logger) *Executor {
	return &Executor{registry: registry, log: log}
}

// Execute runs a single tool call.
func (e *Executor) Execute(ctx context.Context, call model.ToolCall) model.ToolResult {
	desc, handler, ok := e.registry.ByName(call.Name)
	if !ok {
		return model.ToolFailure(fmt.Sprintf(
			"Unknown tool: %s; available: %s",
			call.Name, strings.Join(e.registry.AllNames(), ", ")))
	}

	if missing := missingRequired(desc, call.Arguments); len(missing) > 0 {
		return model.ToolFailure(fmt.Sprintf(
			"Missing required parameters for %s: %s",
			call.Name, strings.Join(missing, ", ")))
	}
	e.warnTypeMismatches(desc, call.Arguments)

	start := time.Now()
	result := e.invoke(ctx, call, handler)
	metrics.RecordToolExecution(call.Name, result.Success, time.Since(start).Seconds())
	return result
}

// invoke calls the handler, converting returned errors and panics into
// failed results.
func (e *Executor) invoke(ctx context.Context, call model.ToolCall, handler Handler) (result model.ToolResult) {
	defer func() {
		if r := recover(); r != nil {
			e.log.Error("tool handler panicked",
				zap.String("tool", call.Name),
				zap.Any("panic", r))
			result = model.ToolFailure(fmt.Sprintf("tool %s panicked: %v", call.Name, r))
		}
	}()

	result, err := handler(ctx, call.Arguments)
	if err != nil {
		return model.ToolFailure(err.Error())
	}
	if !result.Success && result.Error == "" {
		result.Error = "tool reported failure without a message"
	}
	return result
}

// ExecuteMany runs all calls concurrently and joins, preserving the
// id -> result mapping.
func (e *Executor) ExecuteMany(ctx context.Context, calls []model.ToolCall) map[string]model.ToolResult {
	results := make(map[string]model.ToolResult, len(calls))
	var mu sync.Mutex

	g, ctx := errgroup.WithContext(ctx)
	for _, call := range calls {
		call := call
		g.Go(func() error {
			result := e.Execute(ctx, call)
			mu.Lock()
			results[call.ID] = result
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()

	return results
}

// ExecuteSequential runs the calls one at a time, for handlers with
// ordering constraints.
func (e *Executor) ExecuteSequential(ctx context.Context, calls []model.ToolCall) map[string]model.ToolResult {
	results := make(map[string]model.ToolResult, len(calls))
	for _, call := range calls {
		results[call.ID] = e.Execute(ctx, call)
	}
	return results
}

func missingRequired(desc Descriptor, args map[string]any) []string {
	var missing []string
	for _, name := range desc.Required {
		if _, ok := args[name]; !ok {
			missing = append(missing, name)
		}
	}
	return missing
}

// warnTypeMismatches does a shallow type check against the schema. A
// mismatch is logged but forwarded; the handler decides.
func (e *Executor) warnTypeMismatches(desc Descriptor, args map[string]any) {
	for name, value := range args {
		spec, ok := desc.Parameters[name]
		if !ok || value == nil {
			continue
		}
		if !matchesType(spec.Type, value) {
			e.log.Warn("tool argument type mismatch",
				zap.String("tool", desc.Name),
				zap.String("param", name),
				zap.String("expected", spec.Type))
		}
	}
}

func matchesType(typ string, value any) bool {
	switch typ {
	case "string":
		_, ok := value.(string)
		return ok
	case "number", "integer":
		switch value.(type) {
		case float64, float32, int, int64:
			return true
		}
		return false
	case "boolean":
		_, ok := value.(bool)
		return ok
	case "array":
		_, ok := value.([]any)
		return ok
	case "object":
		_, ok := value.(map[string]any)
		return ok
	default:
		return true
	}
}
