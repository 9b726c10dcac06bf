package tui

import (
	"fmt"
	"time"

	"github.com/aretw0/dsg/pkg/domain"
	"github.com/muesli/termenv"
)

// FormatStatus renders a progress record as one colored line.
// now is used to compute the elapsed time of a running update.
func FormatStatus(p domain.Progress, now time.Time) string {
	profile := termenv.ColorProfile()

	if p.Status != domain.StatusWorking {
		label := termenv.String(" IDLE ").Foreground(profile.Color("#0f172a")).Background(profile.Color("#22c55e"))
		return fmt.Sprintf("%s processed %d buffers", label, p.ProcessedBuffers)
	}

	label := termenv.String(" WORKING ").Foreground(profile.Color("#0f172a")).Background(profile.Color("#facc15"))
	started := time.Unix(0, int64(p.StartTime*float64(time.Second)))
	elapsed := now.Sub(started).Truncate(time.Second)
	if elapsed < 0 {
		elapsed = 0
	}
	return fmt.Sprintf("%s %d/%d buffers (%s) %s",
		label, p.ProcessedBuffers, p.TotalBuffers, Percent(p), termenv.String(elapsed.String()).Faint())
}

// Percent is the share of processed buffers, "-" when the total is unknown.
func Percent(p domain.Progress) string {
	if p.TotalBuffers == 0 {
		return "-"
	}
	return fmt.Sprintf("%.0f%%", 100*float64(p.ProcessedBuffers)/float64(p.TotalBuffers))
}
