package agent

import "strings"

// summaryKeywords mark a query as a summary request, which suppresses
// tool-result widgets for the turn in favor of a text-only reply.
var summaryKeywords = []string{
	"summary", "summarize", "summarise", "sum up", "brief", "briefly",
	"overview", "recap", "catch me up", "quick look", "highlights",
	"what's important", "key points", "tldr", "tl;dr", "in short", "gist",
}

// isSummaryRequest is a case-insensitive substring match against the
// keyword set.
func isSummaryRequest(query string) bool {
	q := strings.ToLower(query)
	for _, kw := range summaryKeywords {
		if strings.Contains(q, kw) {
			return true
		}
	}
	return false
}
