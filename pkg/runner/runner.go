package runner

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync"
	"sync/atomic"

	"github.com/aretw0/dsg"
	"github.com/aretw0/dsg/pkg/domain"
	"github.com/aretw0/dsg/pkg/ports"
	"golang.org/x/sync/errgroup"
)

// Runner drives one connection: it pumps the stream into a Queue, sends
// control requests, and dispatches commands into the Session.
type Runner struct {
	session    *dsg.Session
	stream     ports.Stream
	logger     *slog.Logger
	control    domain.ControlRequest
	sendBuffer int

	inbound    *Queue
	outbound   chan *domain.Request
	senderDone chan struct{}

	group  *errgroup.Group
	cancel context.CancelFunc

	started  atomic.Bool
	stopping atomic.Bool
	shutdown atomic.Bool

	errMu     sync.Mutex
	err       error
	closeOnce sync.Once
}

// New creates a Runner for an already connected stream.
func New(session *dsg.Session, stream ports.Stream, opts ...Option) *Runner {
	r := &Runner{
		session:    session,
		stream:     stream,
		logger:     session.Logger(),
		control:    DefaultControl(),
		sendBuffer: DefaultSendBuffer,
		inbound:    NewQueue(),
		senderDone: make(chan struct{}),
	}
	for _, opt := range opts {
		opt(r)
	}
	r.outbound = make(chan *domain.Request, r.sendBuffer)
	return r
}

// Start notifies the handler, launches the receiver and sender goroutines,
// and sends the control message.
func (r *Runner) Start(ctx context.Context) error {
	if !r.started.CompareAndSwap(false, true) {
		return domain.ErrAlreadyStarted
	}

	r.session.SetBacklog(r.inbound.Len)
	if err := r.session.StartConnection(ctx); err != nil {
		r.logger.Warn("handler failed to start connection", "error", err)
	}

	runCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	r.cancel = cancel
	g, gctx := errgroup.WithContext(runCtx)
	r.group = g
	g.Go(func() error { return r.receive(gctx) })
	g.Go(func() error {
		defer close(r.senderDone)
		return r.send(gctx)
	})

	ctl := r.control
	ctl.AllowIncrementalUpdates = false
	r.logger.Debug("sending control request",
		"spontaneous", ctl.AllowSpontaneous,
		"temporal", ctl.IncludeTemporalGeometry,
		"max_chunk", ctl.MaximumChunkSize)
	return r.enqueue(ctx, &domain.Request{Control: &ctl})
}

// RequestUpdate asks the server for one scene refresh. It is safe to call
// from any goroutine.
func (r *Runner) RequestUpdate(ctx context.Context, temporal bool) error {
	return r.enqueue(ctx, &domain.Request{Update: &domain.UpdateRequest{Temporal: temporal}})
}

// HandleOneUpdate requests a refresh and dispatches commands until the
// matching UPDATE_SCENE_END has been applied.
func (r *Runner) HandleOneUpdate(ctx context.Context) error {
	if err := r.RequestUpdate(ctx, r.control.IncludeTemporalGeometry); err != nil {
		return err
	}
	for {
		cmd, err := r.next(ctx)
		if err != nil {
			return err
		}
		r.session.Dispatch(ctx, cmd)
		if cmd.Type() == domain.CmdSceneEnd {
			return nil
		}
	}
}

// Run dispatches commands until the connection ends or ctx is cancelled.
// It returns nil on a clean end of stream.
func (r *Runner) Run(ctx context.Context) error {
	for {
		cmd, err := r.next(ctx)
		if err != nil {
			if errors.Is(err, domain.ErrConnectionClosed) && r.Err() == nil {
				return nil
			}
			return err
		}
		r.session.Dispatch(ctx, cmd)
	}
}

// next pops the next command. The stop flag is polled between commands; a
// command already popped is always dispatched by the caller.
func (r *Runner) next(ctx context.Context) (domain.Command, error) {
	if r.stopping.Load() {
		return nil, domain.ErrConnectionClosed
	}
	cmd, err := r.inbound.Pop(ctx)
	if err != nil {
		if errors.Is(err, domain.ErrConnectionClosed) {
			if transportErr := r.Err(); transportErr != nil {
				return nil, transportErr
			}
		}
		return nil, err
	}
	return cmd, nil
}

// Close half-closes the outbound stream, stops both goroutines, and
// notifies the handler. It returns the transport error, if any.
func (r *Runner) Close(ctx context.Context) error {
	if !r.started.Load() {
		return nil
	}
	r.closeOnce.Do(func() {
		r.stopping.Store(true)
		r.shutdown.Store(true)

		select {
		case r.outbound <- nil:
		case <-r.senderDone:
		}
		<-r.senderDone

		r.inbound.Close()
		if err := r.stream.Close(); err != nil {
			r.logger.Debug("stream close failed", "error", err)
		}
		r.cancel()
		if err := r.group.Wait(); err != nil {
			r.setErr(err)
		}

		if err := r.session.EndConnection(ctx); err != nil {
			r.logger.Warn("handler failed to end connection", "error", err)
		}
	})
	return r.Err()
}

// Err reports the transport failure that ended the connection, if any.
func (r *Runner) Err() error {
	r.errMu.Lock()
	defer r.errMu.Unlock()
	return r.err
}

// Backlog is the number of received commands not yet dispatched.
func (r *Runner) Backlog() int {
	return r.inbound.Len()
}

// Shutdown reports whether the connection has ended, locally or remotely.
func (r *Runner) Shutdown() bool {
	return r.shutdown.Load()
}

func (r *Runner) setErr(err error) {
	r.errMu.Lock()
	defer r.errMu.Unlock()
	if r.err == nil {
		r.err = err
	}
}

func (r *Runner) enqueue(ctx context.Context, req *domain.Request) error {
	if r.shutdown.Load() {
		return domain.ErrConnectionClosed
	}
	select {
	case r.outbound <- req:
		return nil
	case <-r.senderDone:
		return domain.ErrConnectionClosed
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (r *Runner) receive(ctx context.Context) error {
	defer r.inbound.Close()
	for {
		cmd, err := r.stream.Recv()
		if err != nil {
			local := r.shutdown.Swap(true)
			if local || errors.Is(err, io.EOF) {
				r.logger.Debug("command stream ended")
				return nil
			}
			r.logger.Error("command stream failed", "error", err)
			err = fmt.Errorf("failed to receive command: %w", err)
			r.setErr(err)
			return err
		}
		if err := r.inbound.Push(cmd); err != nil {
			return nil
		}
	}
}

func (r *Runner) send(ctx context.Context) error {
	for {
		select {
		case req := <-r.outbound:
			if req == nil {
				if err := r.stream.CloseSend(); err != nil {
					r.logger.Debug("close send failed", "error", err)
				}
				return nil
			}
			if err := r.stream.Send(*req); err != nil {
				err = fmt.Errorf("failed to send request: %w", err)
				r.setErr(err)
				r.shutdown.Store(true)
				return err
			}
		case <-ctx.Done():
			return nil
		}
	}
}
