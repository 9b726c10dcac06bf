package grpc

import (
	"context"
	"fmt"
	"io"
	"log/slog"

	"github.com/aretw0/dsg/pkg/domain"
	"github.com/aretw0/dsg/pkg/ports"
	gogrpc "google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
)

// DefaultAddress is the conventional DSG endpoint.
const DefaultAddress = "127.0.0.1:12345"

// Dialer creates a client connection.
type Dialer interface {
	Dial(addr string, opts ...gogrpc.DialOption) (*gogrpc.ClientConn, error)
}

// DialerFunc adapts a dial function to the Dialer interface.
type DialerFunc func(addr string, opts ...gogrpc.DialOption) (*gogrpc.ClientConn, error)

// Dial implements Dialer for DialerFunc.
func (fn DialerFunc) Dial(addr string, opts ...gogrpc.DialOption) (*gogrpc.ClientConn, error) {
	return fn(addr, opts...)
}

// DialStage describes where a connection attempt failed.
type DialStage string

const (
	// DialStageConnect indicates a client connection failure.
	DialStageConnect DialStage = "connect"
	// DialStageStream indicates the scene stream could not be opened.
	DialStageStream DialStage = "stream"
)

// DialError wraps connection failures with a stage indicator.
type DialError struct {
	Stage DialStage
	Err   error
}

// Error implements the error interface.
func (e *DialError) Error() string {
	if e == nil {
		return "gRPC dial error"
	}
	return fmt.Sprintf("gRPC %s error: %v", e.Stage, e.Err)
}

// Unwrap returns the underlying error.
func (e *DialError) Unwrap() error {
	if e == nil {
		return nil
	}
	return e.Err
}

// DefaultClientDialOptions returns the dial options used when none are given.
// DSG servers listen on plaintext loopback ports.
func DefaultClientDialOptions() []gogrpc.DialOption {
	return []gogrpc.DialOption{
		gogrpc.WithTransportCredentials(insecure.NewCredentials()),
		gogrpc.WithDefaultCallOptions(gogrpc.CallContentSubtype(CodecName)),
	}
}

// Connector opens scene streams to one server. It implements ports.Connector.
type Connector struct {
	addr   string
	dialer Dialer
	opts   []gogrpc.DialOption
	logger *slog.Logger
}

// ConnectorOption configures a Connector.
type ConnectorOption func(*Connector)

// WithDialer overrides grpc.NewClient.
func WithDialer(d Dialer) ConnectorOption {
	return func(c *Connector) {
		c.dialer = d
	}
}

// WithDialOptions appends dial options to the defaults.
func WithDialOptions(opts ...gogrpc.DialOption) ConnectorOption {
	return func(c *Connector) {
		c.opts = append(c.opts, opts...)
	}
}

// WithLogger sets the structured logger.
func WithLogger(logger *slog.Logger) ConnectorOption {
	return func(c *Connector) {
		c.logger = logger
	}
}

// NewConnector creates a Connector for addr.
func NewConnector(addr string, opts ...ConnectorOption) *Connector {
	if addr == "" {
		addr = DefaultAddress
	}
	c := &Connector{
		addr:   addr,
		dialer: DialerFunc(gogrpc.NewClient),
		opts:   DefaultClientDialOptions(),
		logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Connect dials the server and opens the scene stream.
func (c *Connector) Connect(ctx context.Context) (ports.Stream, error) {
	conn, err := c.dialer.Dial(c.addr, c.opts...)
	if err != nil {
		return nil, &DialError{Stage: DialStageConnect, Err: err}
	}

	streamCtx, cancel := context.WithCancel(ctx)
	cs, err := conn.NewStream(streamCtx, &subscribeStreamDesc, SubscribeMethod)
	if err != nil {
		cancel()
		_ = conn.Close()
		return nil, &DialError{Stage: DialStageStream, Err: err}
	}
	c.logger.Debug("scene stream opened", "addr", c.addr)
	return &stream{cs: cs, conn: conn, cancel: cancel}, nil
}

type stream struct {
	cs     gogrpc.ClientStream
	conn   *gogrpc.ClientConn
	cancel context.CancelFunc
}

func (s *stream) Recv() (domain.Command, error) {
	var env domain.Envelope
	if err := s.cs.RecvMsg(&env); err != nil {
		return nil, err
	}
	return domain.Decode(env), nil
}

func (s *stream) Send(req domain.Request) error {
	return s.cs.SendMsg(&req)
}

func (s *stream) CloseSend() error {
	return s.cs.CloseSend()
}

func (s *stream) Close() error {
	s.cancel()
	return s.conn.Close()
}
