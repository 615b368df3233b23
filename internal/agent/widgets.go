package agent

import (
	"fmt"
	"sync/atomic"

	"go.uber.org/zap"

	"github.com/glancehq/assistant-platform/internal/model"
	"github.com/glancehq/assistant-platform/pkg/logger"
)

// allowedComponents is the vdom whitelist for custom widgets.
var allowedComponents = map[string]bool{
	"container": true,
	"row":       true,
	"column":    true,
	"text":      true,
	"heading":   true,
	"button":    true,
	"input":     true,
	"select":    true,
	"list":      true,
	"list_item": true,
	"image":     true,
	"divider":   true,
	"badge":     true,
	"link":      true,
}

// widgetCounter backs widget ids for every generator in the process.
var widgetCounter atomic.Uint64

// WidgetGenerator assigns widget ids and validates LLM-emitted widget
// descriptors. The id counter is process-wide monotonic.
type WidgetGenerator struct {
	log *logger.Logger
}

// NewWidgetGenerator creates a generator.
func NewWidgetGenerator(log *logger.Logger) *WidgetGenerator {
	return &WidgetGenerator{log: log}
}

func (g *WidgetGenerator) nextID() string {
	return fmt.Sprintf("widget-%d", widgetCounter.Add(1))
}

// FromToolResults collects widgets from successful results in the given
// call order, assigning ids and default actions.
func (g *WidgetGenerator) FromToolResults(order []string, results map[string]model.ToolResult) []model.WidgetBlock {
	var out []model.WidgetBlock
	for _, id := range order {
		result, ok := results[id]
		if !ok || !result.Success {
			continue
		}
		for _, w := range result.Widgets {
			if w.ID == "" {
				w.ID = g.nextID()
			}
			if len(w.Actions) == 0 && w.Type != model.WidgetCustom {
				w.Actions = defaultActions(w)
			}
			out = append(out, w)
		}
	}
	return out
}

// FromLLM validates LLM-emitted descriptors and turns the survivors into
// blocks. Invalid descriptors are dropped with a log line, never an error.
func (g *WidgetGenerator) FromLLM(descriptors []model.WidgetDescriptor) []model.WidgetBlock {
	var out []model.WidgetBlock
	for _, d := range descriptors {
		block, ok := g.build(d)
		if !ok {
			continue
		}
		out = append(out, block)
	}
	return out
}

func (g *WidgetGenerator) build(d model.WidgetDescriptor) (model.WidgetBlock, bool) {
	switch {
	case d.Type == model.WidgetCustom:
		if d.VDOM == nil || !validVDOM(d.VDOM) {
			g.log.Warn("dropping custom widget with invalid vdom")
			return model.WidgetBlock{}, false
		}
		return model.WidgetBlock{
			ID:   g.nextID(),
			Type: model.WidgetCustom,
			VDOM: d.VDOM,
		}, true

	case model.KnownWidgetType(d.Type):
		if len(d.Data) == 0 {
			g.log.Warn("dropping widget without data", zap.String("type", string(d.Type)))
			return model.WidgetBlock{}, false
		}
		block := model.WidgetBlock{
			ID:      g.nextID(),
			Type:    d.Type,
			Data:    d.Data,
			Actions: d.Actions,
		}
		if len(block.Actions) == 0 {
			block.Actions = defaultActions(block)
		}
		return block, true

	default:
		g.log.Warn("dropping widget with unknown type", zap.String("type", string(d.Type)))
		return model.WidgetBlock{}, false
	}
}

// defaultActions infers the action set appropriate to a widget type.
func defaultActions(w model.WidgetBlock) []string {
	switch w.Type {
	case model.WidgetEmailPreview:
		return []string{"reply", "archive", "open"}
	case model.WidgetCalendarEvent, model.WidgetMeetingCard:
		if link, _ := w.Data["meetingLink"].(string); link != "" {
			return []string{"join", "decline", "details"}
		}
		return []string{"accept", "decline", "details"}
	case model.WidgetSearchResults:
		return []string{"open"}
	case model.WidgetForm:
		return []string{"submit", "cancel"}
	case model.WidgetFlightCard:
		return []string{"check_in", "details"}
	}
	return nil
}

// validVDOM checks the component whitelist recursively.
func validVDOM(node *model.VDOMNode) bool {
	if node == nil || !allowedComponents[node.Component] {
		return false
	}
	for _, child := range node.Children {
		if child.Node != nil && !validVDOM(child.Node) {
			return false
		}
	}
	return true
}
