package agent

import "strings"

// Context-inclusion gating: decide whether prior conversation turns ride
// along to the LLM. The heuristic is frozen by its test suite, not by any
// claim of linguistic correctness.

// standalonePhrases are short queries that never need history.
var standalonePhrases = []string{
	"find invoice",
	"show emails",
	"show my emails",
	"check my inbox",
	"any unread messages",
	"what's on my calendar",
	"show my schedule",
	"list my meetings",
}

// contextIndicators suggest the query leans on earlier turns.
var contextIndicators = []string{
	" it", "it ", " that", " this", " them", " they", " those", " these",
	" he ", " she ", " him", " her ",
	"the same", "another", "also", "instead", "again", "more of",
	"earlier", "previous", "the first one", "the last one", "the other",
	"what about", "how about", "and the",
}

// acknowledgements are short follow-up openers.
var acknowledgements = []string{
	"yes", "no", "ok", "okay", "sure", "yep", "nope", "thanks", "thank you",
	"sounds good", "go ahead", "do it", "please do",
}

// actionVerbs open standalone imperative queries.
var actionVerbs = []string{
	"find", "search", "show", "get", "list", "fetch", "check", "open",
	"display", "give",
}

// includeHistory reports whether prior turns should be passed to the LLM
// for this query. Ambiguity defaults to inclusion.
func includeHistory(query string) bool {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return true
	}

	for _, phrase := range standalonePhrases {
		if q == phrase {
			return false
		}
	}

	for _, ack := range acknowledgements {
		if q == ack || strings.HasPrefix(q, ack+" ") || strings.HasPrefix(q, ack+",") {
			return true
		}
	}

	hasIndicator := false
	padded := " " + q + " "
	for _, ind := range contextIndicators {
		if strings.Contains(padded, ind) {
			hasIndicator = true
			break
		}
	}
	if hasIndicator {
		return true
	}

	first := q
	if i := strings.IndexAny(q, " \t"); i > 0 {
		first = q[:i]
	}
	for _, verb := range actionVerbs {
		if first == verb {
			return false
		}
	}

	return true
}
