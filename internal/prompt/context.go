package prompt

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/glancehq/assistant-platform/internal/model"
	"github.com/glancehq/assistant-platform/pkg/logger"
)

// ActivitySource provides the light activity snapshot for the user
// context block. Failures are tolerated silently.
type ActivitySource interface {
	UnreadCount(ctx context.Context) (int, error)
}

// ContextBuilder produces the optional user-context prompt block: current
// time, timezone, identity, and a brief activity snapshot.
type ContextBuilder struct {
	clock    func() time.Time
	location *time.Location
	activity ActivitySource
	log      *logger.Logger
}

// NewContextBuilder creates a builder. A nil location defaults to the
// process-local zone; a nil activity source skips the snapshot.
func NewContextBuilder(location *time.Location, activity ActivitySource, log *logger.Logger) *ContextBuilder {
	if location == nil {
		location = time.Local
	}
	return &ContextBuilder{
		clock:    time.Now,
		location: location,
		activity: activity,
		log:      log,
	}
}

// Build renders the user-context block. An empty string is legal and means
// the section is omitted from the prompt.
func (b *ContextBuilder) Build(ctx context.Context, session *model.SessionInfo) string {
	now := b.clock().In(b.location)

	var lines []string
	lines = append(lines, fmt.Sprintf("Current time: %s", now.Format("Monday, January 2, 2006 at 3:04 PM MST")))
	lines = append(lines, fmt.Sprintf("Timezone: %s", b.location.String()))

	if session != nil && session.UserEmail != "" {
		identity := session.UserEmail
		if session.DisplayName != "" {
			identity = fmt.Sprintf("%s <%s>", session.DisplayName, session.UserEmail)
		}
		lines = append(lines, "User: "+identity)
	}

	if b.activity != nil {
		count, err := b.activity.UnreadCount(ctx)
		if err != nil {
			b.log.Debug("activity snapshot unavailable", zap.Error(err))
		} else {
			lines = append(lines, fmt.Sprintf("Unread emails: %d", count))
		}
	}

	return strings.Join(lines, "\n")
}

// WithClock overrides the time source. Used in tests.
func (b *ContextBuilder) WithClock(clock func() time.Time) *ContextBuilder {
	b.clock = clock
	return b
}
