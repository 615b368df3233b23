package tools

import (
	"context"
	"time"

	"github.com/glancehq/assistant-platform/internal/model"
	"github.com/glancehq/assistant-platform/internal/tool"
)

// RegisterGeneralTools adds tools that belong to no particular domain.
// They carry no domain tag, so the router offers them on every request.
func RegisterGeneralTools(reg *tool.Registry, location *time.Location) {
	if location == nil {
		location = time.Local
	}

	reg.Register(tool.Descriptor{
		Name:        "get_current_time",
		Description: "Get the current date and time in the user's timezone.",
		Kind:        tool.KindInternal,
		Hints: tool.UsageHints{
			WhenToUse: "A date or time calculation needs an anchor.",
			Output:    "text",
		},
	}, func(ctx context.Context, args map[string]any) (model.ToolResult, error) {
		now := time.Now().In(location)
		return model.ToolSuccess(map[string]any{
			"iso":      now.Format(time.RFC3339),
			"readable": now.Format("Monday, January 2, 2006 at 3:04 PM MST"),
			"timezone": location.String(),
		}), nil
	})
}
