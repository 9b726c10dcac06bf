package memory

import (
	"context"
	"io"
	"sync"

	"github.com/aretw0/dsg/pkg/domain"
	"github.com/aretw0/dsg/pkg/ports"
)

// DefaultStreamBuffer bounds the number of fed commands not yet received.
const DefaultStreamBuffer = 4096

// Responder scripts the server side of a Stream: it is called for every
// request sent and returns the commands to feed in reply.
type Responder func(req domain.Request) []domain.Command

// Stream is a scripted, in-process ports.Stream.
// Commands are fed with Feed and terminated with End or Fail.
type Stream struct {
	cmds      chan domain.Command
	closed    chan struct{}
	responder Responder

	mu         sync.Mutex
	ended      bool
	endErr     error
	sent       []domain.Request
	sendClosed bool
	closeOnce  sync.Once
}

// NewStream creates an open stream. responder may be nil.
func NewStream(responder Responder) *Stream {
	return &Stream{
		cmds:      make(chan domain.Command, DefaultStreamBuffer),
		closed:    make(chan struct{}),
		responder: responder,
		endErr:    io.EOF,
	}
}

// Feed queues commands for Recv. Commands fed after End are dropped.
func (s *Stream) Feed(cmds ...domain.Command) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ended {
		return
	}
	for _, c := range cmds {
		s.cmds <- c
	}
}

// End makes Recv return io.EOF once the fed commands are drained.
func (s *Stream) End() {
	s.Fail(io.EOF)
}

// Fail makes Recv return err once the fed commands are drained.
func (s *Stream) Fail(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.ended {
		return
	}
	s.ended = true
	s.endErr = err
	close(s.cmds)
}

func (s *Stream) Recv() (domain.Command, error) {
	select {
	case cmd, ok := <-s.cmds:
		if !ok {
			s.mu.Lock()
			defer s.mu.Unlock()
			return nil, s.endErr
		}
		return cmd, nil
	case <-s.closed:
		return nil, domain.ErrConnectionClosed
	}
}

func (s *Stream) Send(req domain.Request) error {
	s.mu.Lock()
	if s.sendClosed {
		s.mu.Unlock()
		return domain.ErrConnectionClosed
	}
	s.sent = append(s.sent, req)
	s.mu.Unlock()

	if s.responder != nil {
		s.Feed(s.responder(req)...)
	}
	return nil
}

func (s *Stream) CloseSend() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.sendClosed = true
	return nil
}

func (s *Stream) Close() error {
	s.closeOnce.Do(func() { close(s.closed) })
	return nil
}

// Sent returns a copy of every request sent so far.
func (s *Stream) Sent() []domain.Request {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]domain.Request(nil), s.sent...)
}

// SendClosed reports whether CloseSend was called.
func (s *Stream) SendClosed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.sendClosed
}

// Connector hands out a fresh scripted stream per Connect call.
type Connector struct {
	Responder Responder

	mu      sync.Mutex
	streams []*Stream
}

// Connect implements ports.Connector.
func (c *Connector) Connect(ctx context.Context) (ports.Stream, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	s := NewStream(c.Responder)
	c.mu.Lock()
	c.streams = append(c.streams, s)
	c.mu.Unlock()
	return s, nil
}

// Streams returns every stream handed out so far.
func (c *Connector) Streams() []*Stream {
	c.mu.Lock()
	defer c.mu.Unlock()
	return append([]*Stream(nil), c.streams...)
}
