package agent

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIncludeHistory(t *testing.T) {
	tests := []struct {
		query string
		want  bool
	}{
		// Standalone phrases omit history.
		{"find invoice", false},
		{"show emails", false},
		{"any unread messages", false},

		// Follow-up indicators include it.
		{"who's organizing it?", true},
		{"archive that one", true},
		{"what about the other meeting", true},
		{"show me more of those", true},

		// Acknowledgements include it.
		{"yes", true},
		{"ok, go ahead", true},
		{"thanks", true},

		// Standalone action verbs without indicators omit it.
		{"find flights to denver", false},
		{"search for the q3 budget email", false},
		{"list today's meetings", false},

		// Ambiguity defaults to inclusion.
		{"why did the build fail", true},
		{"", true},
	}

	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			assert.Equal(t, tt.want, includeHistory(tt.query), "query: %q", tt.query)
		})
	}
}
