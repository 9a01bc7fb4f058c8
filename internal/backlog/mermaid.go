package backlog

import (
	"fmt"
	"strings"

	"github.com/lbliii/sunwell/internal/goal"
)

// statusGlyph maps a status to the marker rendered in graph exports.
var statusGlyph = map[goal.Status]string{
	goal.StatusPending:    "…",
	goal.StatusReady:      "□",
	goal.StatusInProgress: "⏳",
	goal.StatusCompleted:  "✓",
	goal.StatusFailed:     "✗",
	goal.StatusBlocked:    "⛔",
	goal.StatusSkipped:    "⊘",
}

// Mermaid exports the dependency graph as a Mermaid flowchart, with a
// status glyph per goal and one edge per depends_on entry. Parent
// relationships are rendered as subgraphs for epics and milestones.
func (s *Store) Mermaid() string {
	s.mu.Lock()
	defer s.mu.Unlock()

	var b strings.Builder
	b.WriteString("graph TD\n")

	var writeNode func(id string, indent string)
	writeNode = func(id string, indent string) {
		g := s.goals[id]
		title := g.Title
		if len(title) > 30 {
			title = title[:30]
		}
		fmt.Fprintf(&b, "%s%s[\"%s %s\"]\n", indent, mermaidID(id), statusGlyph[g.Status], escapeQuotes(title))
	}

	// Group epic and milestone subtrees into subgraphs; everything
	// else renders flat.
	inSubgraph := make(map[string]bool)
	for _, id := range s.order {
		g := s.goals[id]
		if !g.IsEpic() {
			continue
		}
		fmt.Fprintf(&b, "  subgraph %s_group[\"%s\"]\n", mermaidID(id), escapeQuotes(g.Title))
		writeNode(id, "    ")
		inSubgraph[id] = true
		for _, mid := range s.children[id] {
			writeNode(mid, "    ")
			inSubgraph[mid] = true
			for _, tid := range s.children[mid] {
				writeNode(tid, "    ")
				inSubgraph[tid] = true
			}
		}
		b.WriteString("  end\n")
	}
	for _, id := range s.order {
		if !inSubgraph[id] {
			writeNode(id, "  ")
		}
	}

	for _, id := range s.order {
		for _, dep := range s.goals[id].DependsOn {
			if _, ok := s.goals[dep]; ok {
				fmt.Fprintf(&b, "  %s --> %s\n", mermaidID(dep), mermaidID(id))
			}
		}
	}
	return b.String()
}

// mermaidID sanitizes a goal ID into a Mermaid-safe node identifier.
func mermaidID(id string) string {
	return strings.Map(func(r rune) rune {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '_':
			return r
		default:
			return '_'
		}
	}, id)
}

func escapeQuotes(s string) string {
	return strings.ReplaceAll(s, `"`, `'`)
}
