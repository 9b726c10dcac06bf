package runtime

import (
	"context"
	"log/slog"
	"time"

	"github.com/aretw0/dsg/pkg/domain"
	"github.com/aretw0/dsg/pkg/ports"
)

// DefaultProgressInterval is the minimum spacing between two progress writes
// while an update is running.
const DefaultProgressInterval = time.Second

// progressTracker maintains the status record and decides when to write it.
// Transitions into and out of "working" are always written; the per-command
// records in between are throttled.
type progressTracker struct {
	writer   ports.StatusWriter
	backlog  func() int
	now      func() time.Time
	interval time.Duration
	logger   *slog.Logger

	current   domain.Progress
	lastWrite time.Time
}

func (p *progressTracker) begin(ctx context.Context) {
	p.current = domain.Progress{
		Status:       domain.StatusWorking,
		StartTime:    epochSeconds(p.now()),
		TotalBuffers: p.queued(),
	}
	p.write(ctx)
}

func (p *progressTracker) step(ctx context.Context) {
	if p.current.Status != domain.StatusWorking {
		return
	}
	p.current.ProcessedBuffers++
	p.current.TotalBuffers = p.current.ProcessedBuffers + p.queued()
	if p.now().Sub(p.lastWrite) < p.interval {
		return
	}
	p.write(ctx)
}

func (p *progressTracker) end(ctx context.Context) {
	p.current.Status = domain.StatusIdle
	p.current.TotalBuffers = p.current.ProcessedBuffers + p.queued()
	p.write(ctx)
}

func (p *progressTracker) snapshot() domain.Progress {
	return p.current
}

func (p *progressTracker) queued() uint64 {
	if p.backlog == nil {
		return 0
	}
	if n := p.backlog(); n > 0 {
		return uint64(n)
	}
	return 0
}

// write is best effort: failures are logged at debug and never surface.
func (p *progressTracker) write(ctx context.Context) {
	p.lastWrite = p.now()
	if p.writer == nil {
		return
	}
	if err := p.writer.WriteStatus(ctx, p.current); err != nil {
		p.logger.Debug("status write failed", "error", err)
	}
}

func epochSeconds(t time.Time) float64 {
	return float64(t.UnixNano()) / float64(time.Second)
}
