// Package tool provides the tool registry and executor for the agent.
package tool

import (
	"context"
	"sort"
	"sync"

	"go.uber.org/zap"

	"github.com/glancehq/assistant-platform/internal/model"
	"github.com/glancehq/assistant-platform/pkg/logger"
)

// Domain tags gate prompt fragments and tool visibility.
const (
	DomainEmail    = "email"
	DomainCalendar = "calendar"
	DomainGeneral  = "general"
)

// Kind classifies what a tool does when invoked.
const (
	KindAPI       = "api"       // calls an external API
	KindClient    = "client"    // resolved client-side
	KindComposite = "composite" // orchestrates other tools
	KindInternal  = "internal"  // computed in-process
)

// ParamSpec describes one tool parameter.
type ParamSpec struct {
	Type        string     `json:"type"`
	Description string     `json:"description"`
	Enum        []string   `json:"enum,omitempty"`
	Items       *ParamSpec `json:"items,omitempty"`
	Default     any        `json:"default,omitempty"`
}

// UsageHints feed the prompt text only; they never affect dispatch.
type UsageHints struct {
	WhenToUse     string
	WhenNotToUse  string
	Prerequisites string
	Output        string // text | widget | both
}

// Descriptor describes a registered tool.
type Descriptor struct {
	Name        string
	Description string
	Parameters  map[string]ParamSpec
	Required    []string
	Domain      string // empty means undomained: always visible
	Kind        string
	Hints       UsageHints
}

// Handler executes a tool call. The request session, when present, rides
// ctx (model.SessionFromContext). A returned error becomes a failed
// ToolResult.
type Handler func(ctx context.Context, args map[string]any) (model.ToolResult, error)

type registered struct {
	desc    Descriptor
	handler Handler
}

// Registry is the name -> (descriptor, handler) map. Read-only after
// startup in normal operation, but locked for safety.
type Registry struct {
	mu    sync.RWMutex
	tools map[string]*registered
	log   *logger.Logger
}

// NewRegistry creates an empty registry.
func NewRegistry(log *logger.Logger) *Registry {
	return &Registry{
		tools: make(map[string]*registered),
		log:   log,
	}
}

// Register adds a tool. Last write wins; overwrites log a warning.
func (r *Registry) Register(desc Descriptor, handler Handler) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.tools[desc.Name]; exists {
		r.log.Warn("tool re-registered, previous handler replaced",
			zap.String("tool", desc.Name))
	}
	r.tools[desc.Name] = &registered{desc: desc, handler: handler}
}

// Unregister removes a tool by name.
func (r *Registry) Unregister(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.tools, name)
}

// ByName fetches a tool for dispatch.
func (r *Registry) ByName(name string) (Descriptor, Handler, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	t, ok := r.tools[name]
	if !ok {
		return Descriptor{}, nil, false
	}
	return t.desc, t.handler, true
}

// ByDomain returns descriptors whose domain is in the set. Tools without a
// domain tag are always included.
func (r *Registry) ByDomain(domains []string) []Descriptor {
	set := make(map[string]bool, len(domains))
	for _, d := range domains {
		set[d] = true
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []Descriptor
	for _, t := range r.tools {
		if t.desc.Domain == "" || set[t.desc.Domain] {
			out = append(out, t.desc)
		}
	}
	sortDescriptors(out)
	return out
}

// AllNames returns every registered tool name, sorted.
func (r *Registry) AllNames() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()

	names := make([]string, 0, len(r.tools))
	for name := range r.tools {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// AllDescriptors returns every descriptor, sorted by name.
func (r *Registry) AllDescriptors() []Descriptor {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]Descriptor, 0, len(r.tools))
	for _, t := range r.tools {
		out = append(out, t.desc)
	}
	sortDescriptors(out)
	return out
}

func sortDescriptors(descs []Descriptor) {
	sort.Slice(descs, func(i, j int) bool { return descs[i].Name < descs[j].Name })
}
