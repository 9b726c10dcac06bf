package dsg

import (
	"context"
	"io"
	"log/slog"
	"time"

	"github.com/aretw0/dsg/internal/runtime"
	"github.com/aretw0/dsg/pkg/domain"
	"github.com/aretw0/dsg/pkg/ports"
)

// Session is the high-level entry point of the library.
// It wraps the internal state machine and exposes a narrow API to runners.
type Session struct {
	runtime     *runtime.Engine
	handler     ports.UpdateHandler
	hooks       domain.LifecycleHooks
	logger      *slog.Logger
	runtimeOpts []runtime.EngineOption
	Name        string
}

// Option defines a functional option for configuring the Session.
type Option func(*Session)

// WithLifecycleHooks registers observability hooks.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(s *Session) {
		s.hooks = hooks
	}
}

// WithLogger sets a custom structured logger for the session.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Session) {
		s.logger = logger
	}
}

// WithName labels the session in logs.
func WithName(name string) Option {
	return func(s *Session) {
		s.Name = name
	}
}

// WithStatusWriter enables the progress artifact.
func WithStatusWriter(w ports.StatusWriter) Option {
	return func(s *Session) {
		s.runtimeOpts = append(s.runtimeOpts, runtime.WithStatusWriter(w))
	}
}

// WithTimeScale multiplies view timelines (default: 1).
func WithTimeScale(scale float64) Option {
	return func(s *Session) {
		s.runtimeOpts = append(s.runtimeOpts, runtime.WithTimeScale(scale))
	}
}

// WithNormalize enables normalization into the unit box around the scene bounds.
func WithNormalize(enabled bool) Option {
	return func(s *Session) {
		s.runtimeOpts = append(s.runtimeOpts, runtime.WithNormalize(enabled))
	}
}

// WithVRMode configures the session for a VR client. Normalization is forced off.
func WithVRMode(enabled bool) Option {
	return func(s *Session) {
		s.runtimeOpts = append(s.runtimeOpts, runtime.WithVRMode(enabled))
	}
}

// WithClock overrides the wall clock used for progress and events.
func WithClock(now func() time.Time) Option {
	return func(s *Session) {
		s.runtimeOpts = append(s.runtimeOpts, runtime.WithClock(now))
	}
}

// WithProgressInterval sets the throttle for progress writes inside an update.
func WithProgressInterval(d time.Duration) Option {
	return func(s *Session) {
		s.runtimeOpts = append(s.runtimeOpts, runtime.WithProgressInterval(d))
	}
}

// New creates a Session reporting to handler.
// A handler is mandatory; New returns domain.ErrNoHandler when it is nil.
func New(handler ports.UpdateHandler, opts ...Option) (*Session, error) {
	if handler == nil {
		return nil, domain.ErrNoHandler
	}
	s := &Session{handler: handler}
	for _, opt := range opts {
		opt(s)
	}

	if s.logger == nil {
		s.logger = slog.New(slog.NewJSONHandler(io.Discard, nil))
	}
	if s.Name != "" {
		s.logger = s.logger.With("session", s.Name)
	}

	runtimeOpts := []runtime.EngineOption{
		runtime.WithLifecycleHooks(s.hooks),
		runtime.WithLogger(s.logger),
	}
	runtimeOpts = append(runtimeOpts, s.runtimeOpts...)
	s.runtime = runtime.NewEngine(handler, runtimeOpts...)
	return s, nil
}

// Dispatch applies one command. It must be called from a single goroutine.
func (s *Session) Dispatch(ctx context.Context, cmd domain.Command) {
	s.runtime.Dispatch(ctx, cmd)
}

// StartConnection notifies the handler that a connection was established.
func (s *Session) StartConnection(ctx context.Context) error {
	return s.runtime.StartConnection(ctx)
}

// EndConnection notifies the handler that the connection is gone.
func (s *Session) EndConnection(ctx context.Context) error {
	return s.runtime.EndConnection(ctx)
}

// SetBacklog wires the queued-command counter used in progress records.
func (s *Session) SetBacklog(backlog func() int) {
	s.runtime.SetBacklog(backlog)
}

// Scene returns the live scene. Only safe from the dispatching goroutine.
func (s *Session) Scene() *domain.Scene { return s.runtime.Scene() }

// Part returns the part currently being assembled.
func (s *Session) Part() *domain.Part { return s.runtime.Part() }

// Updating reports whether a scene refresh is in progress.
func (s *Session) Updating() bool { return s.runtime.Updating() }

// VRMode reports whether the session was configured for a VR client.
func (s *Session) VRMode() bool { return s.runtime.VRMode() }

// Progress returns the last computed status record.
func (s *Session) Progress() domain.Progress { return s.runtime.Progress() }

// Handler returns the UpdateHandler the session reports to.
func (s *Session) Handler() ports.UpdateHandler { return s.handler }

// Logger returns the session logger.
func (s *Session) Logger() *slog.Logger { return s.logger }
