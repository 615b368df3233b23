package handler

import (
	"net/http"

	"github.com/glancehq/assistant-platform/internal/llm"
	"github.com/glancehq/assistant-platform/internal/tool"
)

// HealthHandler handles health check endpoints.
type HealthHandler struct {
	llmClient llm.Client
	registry  *tool.Registry
}

// NewHealthHandler creates a new health handler.
func NewHealthHandler(llmClient llm.Client, registry *tool.Registry) *HealthHandler {
	return &HealthHandler{
		llmClient: llmClient,
		registry:  registry,
	}
}

// Health handles GET /health: agent liveness including LLM reachability
// and registered tool names.
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	llmStatus := map[string]any{"configured": h.llmClient != nil}
	if h.llmClient != nil {
		llmStatus["provider"] = h.llmClient.Name()
		llmStatus["available"] = h.llmClient.Available(r.Context()) == nil
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"status": "healthy",
		"llm":    llmStatus,
		"tools":  h.registry.AllNames(),
	})
}

// Ready handles GET /ready.
func (h *HealthHandler) Ready(w http.ResponseWriter, r *http.Request) {
	if h.llmClient == nil {
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{
			"status": "not ready",
			"reason": "no LLM client configured",
		})
		return
	}

	writeJSON(w, http.StatusOK, map[string]string{
		"status": "ready",
	})
}
