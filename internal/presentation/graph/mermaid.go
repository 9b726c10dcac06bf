package graph

import (
	"fmt"
	"strings"

	"github.com/aretw0/dsg/pkg/domain"
	"github.com/aretw0/dsg/pkg/handler"
)

// GenerateMermaid produces a Mermaid flowchart of the scene hierarchy.
// It applies semantic styling:
// - View: ((Circle))
// - Group: [[Subroutine]]
// - Points part: [/Parallelogram/]
// - Surface part: [Rectangle]
// Parts that failed to reconstruct are styled as failed. Nodes whose parent
// is not a known group get no incoming edge.
func GenerateMermaid(s handler.Summary) string {
	var sb strings.Builder
	sb.WriteString("graph TD\n")

	groups := make(map[int64]bool, len(s.Groups))
	for _, g := range s.Groups {
		groups[g.ID] = true
	}

	for _, g := range s.Groups {
		opener, closer := "[[", "]]"
		if g.View {
			opener, closer = "((", "))"
		}
		fmt.Fprintf(&sb, "    %s%s\"%s\"%s\n", groupID(g.ID), opener, label(g.Name, g.ID), closer)
		if g.ParentID != domain.NoID && groups[g.ParentID] {
			fmt.Fprintf(&sb, "    %s --> %s\n", groupID(g.ParentID), groupID(g.ID))
		}
	}

	var failed []string
	for _, p := range s.Parts {
		opener, closer := "[", "]"
		if p.Render == domain.RenderPoints {
			opener, closer = "[/", "/]"
		}
		fmt.Fprintf(&sb, "    %s%s\"%s <br/> %d verts\"%s\n", partID(p.ID), opener, label(p.Name, p.ID), p.Vertices, closer)
		if groups[p.ParentID] {
			fmt.Fprintf(&sb, "    %s --> %s\n", groupID(p.ParentID), partID(p.ID))
		}
		if p.Error != "" {
			failed = append(failed, partID(p.ID))
		}
	}

	if len(failed) > 0 {
		sb.WriteString("\n    %% Overlay Styles\n")
		// Force black text (color:#000) for high-contrast on light backgrounds, regardless of theme (Light/Dark)
		sb.WriteString("    classDef failed fill:#ffcdd2,stroke:#c62828,stroke-width:2px,color:#000;\n")
		for _, id := range failed {
			fmt.Fprintf(&sb, "    class %s failed;\n", id)
		}
	}

	return sb.String()
}

func groupID(id int64) string { return fmt.Sprintf("g%d", id) }

func partID(id int64) string { return fmt.Sprintf("p%d", id) }

// label escapes double quotes, which would end the Mermaid label early.
func label(name string, id int64) string {
	if name == "" {
		return fmt.Sprintf("#%d", id)
	}
	return strings.ReplaceAll(name, "\"", "'")
}
