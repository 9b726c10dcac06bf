package tui

import (
	"fmt"
	"strings"

	"github.com/aretw0/dsg/pkg/handler"
)

// SummaryMarkdown lays out a scene summary as markdown tables for NewRenderer.
func SummaryMarkdown(s handler.Summary) string {
	var b strings.Builder
	fmt.Fprintf(&b, "# Scene\n\n")
	fmt.Fprintf(&b, "%d update(s), %d group(s), %d variable(s), %d part(s)\n\n",
		s.Updates, len(s.Groups), len(s.Variables), len(s.Parts))
	if s.Bounds != nil {
		bb := *s.Bounds
		fmt.Fprintf(&b, "Bounds: `%g %g %g %g %g %g`\n\n", bb[0], bb[1], bb[2], bb[3], bb[4], bb[5])
	}
	fmt.Fprintf(&b, "Time limits: `%g - %g`\n\n", s.TimeLimits[0], s.TimeLimits[1])

	if len(s.Variables) > 0 {
		b.WriteString("## Variables\n\n| id | name | levels | range |\n|---|---|---|---|\n")
		for _, v := range s.Variables {
			fmt.Fprintf(&b, "| %d | %s | %d | %g - %g |\n", v.ID, v.Name, v.Levels, v.Min, v.Max)
		}
		b.WriteString("\n")
	}

	if len(s.Parts) > 0 {
		b.WriteString("## Parts\n\n| id | name | render | vertices | primitives | variable | digest |\n|---|---|---|---|---|---|---|\n")
		for _, p := range s.Parts {
			prims := p.Triangles + p.Segments + p.Points
			digest := p.Digest
			if len(digest) > 12 {
				digest = digest[:12]
			}
			name := p.Name
			if p.Error != "" {
				name += " (error: " + p.Error + ")"
			}
			fmt.Fprintf(&b, "| %d | %s | %s | %d | %d | %s | `%s` |\n",
				p.ID, name, p.Render, p.Vertices, prims, p.Variable, digest)
		}
	}
	return b.String()
}
