package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/aretw0/dsg/internal/presentation/tui"
	"github.com/aretw0/dsg/pkg/handler"
	"golang.org/x/term"
)

// isTerminal reports whether w is an interactive terminal.
func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// printSummary renders s with glamour on a terminal and as plain markdown
// otherwise. asJSON forces JSON output.
func printSummary(w io.Writer, s handler.Summary, asJSON bool) {
	if asJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(s); err != nil {
			fmt.Fprintf(w, "Error encoding summary: %v\n", err)
		}
		return
	}

	md := tui.SummaryMarkdown(s)
	if !isTerminal(w) {
		fmt.Fprint(w, md)
		return
	}
	out, err := tui.NewRenderer()(md)
	if err != nil {
		fmt.Fprint(w, md)
		return
	}
	fmt.Fprint(w, out)
}
