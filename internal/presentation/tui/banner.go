package tui

import (
	"fmt"
	"io"

	"github.com/muesli/termenv"
)

// PrintBanner writes the DSG banner and version to w.
func PrintBanner(w io.Writer, version string) {
	p := termenv.ColorProfile()
	lines := []struct {
		text  string
		color string
	}{
		{"  ____  ____   ____ ", "#38bdf8"},
		{" |  _ \\/ ___| / ___|", "#60a5fa"},
		{" | | | \\___ \\| |  _ ", "#818cf8"},
		{" | |_| |___) | |_| |", "#a78bfa"},
		{" |____/|____/ \\____|", "#c084fc"},
	}

	fmt.Fprintln(w)
	for _, l := range lines {
		fmt.Fprintln(w, termenv.String(l.text).Foreground(p.Color(l.color)))
	}
	fmt.Fprintln(w, termenv.String("  dynamic scene graph "+version).Faint())
	fmt.Fprintln(w)
}
