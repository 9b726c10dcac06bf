package runner

import (
	"log/slog"

	"github.com/aretw0/dsg/pkg/domain"
)

// DefaultSendBuffer is the capacity of the outbound request channel.
const DefaultSendBuffer = 16

// Option defines a functional option for configuring the Runner.
type Option func(*Runner)

// WithLogger configures the structured logger.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Runner) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// WithControl overrides the control message sent when the connection starts.
func WithControl(ctl domain.ControlRequest) Option {
	return func(r *Runner) {
		r.control = ctl
	}
}

// WithSendBuffer sets the capacity of the outbound request channel.
func WithSendBuffer(n int) Option {
	return func(r *Runner) {
		if n > 0 {
			r.sendBuffer = n
		}
	}
}

// DefaultControl is the control message used when none is configured:
// spontaneous full refreshes, no temporal geometry, 1 MiB chunks.
// Incremental updates are never requested.
func DefaultControl() domain.ControlRequest {
	return domain.ControlRequest{
		AllowSpontaneous:        true,
		IncludeTemporalGeometry: false,
		AllowIncrementalUpdates: false,
		MaximumChunkSize:        domain.DefaultMaximumChunkSize,
	}
}
