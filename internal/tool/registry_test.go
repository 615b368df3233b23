package tool

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/glancehq/assistant-platform/internal/model"
	"github.com/glancehq/assistant-platform/pkg/logger"
)

func okHandler(ctx context.Context, args map[string]any) (model.ToolResult, error) {
	return model.ToolSuccess("ok"), nil
}

func TestRegistry_RegisterAndByName(t *testing.T) {
	r := NewRegistry(logger.NewNop())
	r.Register(Descriptor{Name: "t1", Domain: DomainEmail}, okHandler)

	desc, handler, ok := r.ByName("t1")
	require.True(t, ok)
	assert.Equal(t, "t1", desc.Name)
	assert.NotNil(t, handler)

	_, _, ok = r.ByName("missing")
	assert.False(t, ok)
}

func TestRegistry_LastWriteWins(t *testing.T) {
	r := NewRegistry(logger.NewNop())
	r.Register(Descriptor{Name: "t1", Description: "first"}, okHandler)
	r.Register(Descriptor{Name: "t1", Description: "second"}, okHandler)

	desc, _, ok := r.ByName("t1")
	require.True(t, ok)
	assert.Equal(t, "second", desc.Description)
	assert.Len(t, r.AllNames(), 1)
}

func TestRegistry_RegisterUnregisterRoundTrip(t *testing.T) {
	r := NewRegistry(logger.NewNop())
	r.Register(Descriptor{Name: "keep"}, okHandler)
	before := r.AllNames()

	r.Register(Descriptor{Name: "temp"}, okHandler)
	r.Unregister("temp")

	assert.Equal(t, before, r.AllNames())
}

func TestRegistry_ByDomain(t *testing.T) {
	r := NewRegistry(logger.NewNop())
	r.Register(Descriptor{Name: "mail_tool", Domain: DomainEmail}, okHandler)
	r.Register(Descriptor{Name: "cal_tool", Domain: DomainCalendar}, okHandler)
	r.Register(Descriptor{Name: "untagged"}, okHandler)

	got := r.ByDomain([]string{DomainEmail})
	names := descNames(got)
	assert.Contains(t, names, "mail_tool")
	assert.Contains(t, names, "untagged")
	assert.NotContains(t, names, "cal_tool")

	both := r.ByDomain([]string{DomainEmail, DomainCalendar})
	assert.Len(t, both, 3)
}

func TestRegistry_AllNamesSorted(t *testing.T) {
	r := NewRegistry(logger.NewNop())
	r.Register(Descriptor{Name: "zebra"}, okHandler)
	r.Register(Descriptor{Name: "alpha"}, okHandler)

	assert.Equal(t, []string{"alpha", "zebra"}, r.AllNames())
}

func descNames(descs []Descriptor) []string {
	names := make([]string, len(descs))
	for i, d := range descs {
		names[i] = d.Name
	}
	return names
}
