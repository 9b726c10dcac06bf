package runtime

import (
	"log/slog"
	"time"

	"github.com/aretw0/dsg/pkg/domain"
	"github.com/aretw0/dsg/pkg/ports"
)

// EngineOption configures an Engine.
type EngineOption func(*Engine)

// WithLogger sets the structured logger. A nil logger is ignored.
func WithLogger(logger *slog.Logger) EngineOption {
	return func(e *Engine) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// WithLifecycleHooks registers observability hooks.
func WithLifecycleHooks(hooks domain.LifecycleHooks) EngineOption {
	return func(e *Engine) {
		e.hooks = hooks
	}
}

// WithStatusWriter enables progress reporting through w.
func WithStatusWriter(w ports.StatusWriter) EngineOption {
	return func(e *Engine) {
		e.progress.writer = w
	}
}

// WithBacklog sets the function reporting how many commands are queued but
// not yet dispatched. It feeds total_buffers in the progress record.
func WithBacklog(backlog func() int) EngineOption {
	return func(e *Engine) {
		e.progress.backlog = backlog
	}
}

// WithTimeScale multiplies every view timeline before it reaches the scene.
func WithTimeScale(scale float64) EngineOption {
	return func(e *Engine) {
		e.timeScale = scale
	}
}

// WithNormalize enables vertex normalization against the scene bounds.
func WithNormalize(enabled bool) EngineOption {
	return func(e *Engine) {
		e.normalize = enabled
	}
}

// WithVRMode marks the session as feeding a VR client. VR clients need
// real-world units, so normalization is forced off.
func WithVRMode(enabled bool) EngineOption {
	return func(e *Engine) {
		e.vrMode = enabled
	}
}

// WithClock overrides time.Now.
func WithClock(now func() time.Time) EngineOption {
	return func(e *Engine) {
		e.now = now
		e.progress.now = now
	}
}

// WithProgressInterval sets the minimum spacing between progress writes
// inside an update (default: one second).
func WithProgressInterval(d time.Duration) EngineOption {
	return func(e *Engine) {
		e.progress.interval = d
	}
}
