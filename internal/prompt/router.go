package prompt

import (
	"fmt"
	"sort"
	"strings"

	"github.com/glancehq/assistant-platform/internal/tool"
)

// GeneralDomain is the fallback domain when no keywords match.
const GeneralDomain = "general"

// Router performs keyword-driven intent classification and assembles the
// final system prompt. Detection is pure: the same query always yields the
// same assembly.
type Router struct {
	domains      []DomainBlock
	capabilities []CapabilityBlock
}

// NewRouter creates a router over the built-in fragment set.
func NewRouter() *Router {
	return &Router{
		domains:      defaultDomainBlocks(),
		capabilities: defaultCapabilityBlocks(),
	}
}

// AssembleInput is everything a prompt assembly depends on.
type AssembleInput struct {
	Query       string
	Tools       []tool.Descriptor
	UserContext string
}

// DetectDomains lowercases the query and reports every domain block with a
// matching keyword substring. Empty result falls back to general.
func (r *Router) DetectDomains(query string) []string {
	q := strings.ToLower(query)

	var detected []string
	for _, block := range r.domains {
		if len(block.Keywords) == 0 {
			continue
		}
		for _, kw := range block.Keywords {
			if strings.Contains(q, kw) {
				detected = append(detected, block.Name)
				break
			}
		}
	}

	if len(detected) == 0 {
		return []string{GeneralDomain}
	}
	return detected
}

// DetectCapabilities reports capability blocks triggered by the query.
// Independent of domain detection; zero or more may load.
func (r *Router) DetectCapabilities(query string) []string {
	q := strings.ToLower(query)

	var detected []string
	for _, block := range r.capabilities {
		for _, kw := range block.Keywords {
			if strings.Contains(q, kw) {
				detected = append(detected, block.Name)
				break
			}
		}
	}
	return detected
}

// RelevantTools filters to tools whose domain is in the set, plus every
// tool lacking a domain tag.
func (r *Router) RelevantTools(all []tool.Descriptor, domains []string) []tool.Descriptor {
	set := make(map[string]bool, len(domains))
	for _, d := range domains {
		set[d] = true
	}

	var out []tool.Descriptor
	for _, desc := range all {
		if desc.Domain == "" || set[desc.Domain] {
			out = append(out, desc)
		}
	}
	return out
}

// Assemble renders the full system prompt for one request. Sections are
// rendered with headings and joined by blank lines; produced fresh per
// request and never cached.
func (r *Router) Assemble(in AssembleInput) string {
	var sections []string

	sections = append(sections, section("Persona", personaText))
	sections = append(sections, section("Guardrails", guardrailsText))

	domains := r.DetectDomains(in.Query)
	for _, name := range domains {
		for _, block := range r.domains {
			if block.Name == name {
				sections = append(sections, section("Domain: "+block.Name, block.Text))
			}
		}
	}

	for _, name := range r.DetectCapabilities(in.Query) {
		for _, block := range r.capabilities {
			if block.Name == name {
				sections = append(sections, section("Capability: "+block.Name, block.Text))
			}
		}
	}

	sections = append(sections, section("Tools", renderTools(in.Tools)))
	sections = append(sections, section("Response Format", responseFormatText))

	if in.UserContext != "" {
		sections = append(sections, section("User Context", in.UserContext))
	}

	return strings.Join(sections, "\n\n")
}

func section(heading, body string) string {
	return "## " + heading + "\n\n" + strings.TrimSpace(body)
}

func renderTools(tools []tool.Descriptor) string {
	if len(tools) == 0 {
		return "No tools available."
	}

	var b strings.Builder
	for i, t := range tools {
		if i > 0 {
			b.WriteString("\n\n")
		}
		fmt.Fprintf(&b, "### %s\n%s", t.Name, t.Description)

		if t.Hints.WhenToUse != "" {
			fmt.Fprintf(&b, "\nUse when: %s", t.Hints.WhenToUse)
		}
		if t.Hints.WhenNotToUse != "" {
			fmt.Fprintf(&b, "\nAvoid when: %s", t.Hints.WhenNotToUse)
		}
		if t.Hints.Prerequisites != "" {
			fmt.Fprintf(&b, "\nRequires: %s", t.Hints.Prerequisites)
		}

		if len(t.Parameters) == 0 {
			b.WriteString("\nParameters: none")
			continue
		}

		required := make(map[string]bool, len(t.Required))
		for _, name := range t.Required {
			required[name] = true
		}

		b.WriteString("\nParameters:")
		for _, name := range sortedParamNames(t.Parameters) {
			spec := t.Parameters[name]
			mark := "optional"
			if required[name] {
				mark = "required"
			}
			fmt.Fprintf(&b, "\n- %s (%s, %s): %s", name, spec.Type, mark, spec.Description)
			if len(spec.Enum) > 0 {
				fmt.Fprintf(&b, " One of: %s.", strings.Join(spec.Enum, ", "))
			}
		}
	}
	return b.String()
}

func sortedParamNames(params map[string]tool.ParamSpec) []string {
	names := make([]string, 0, len(params))
	for name := range params {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
