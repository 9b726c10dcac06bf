package ports

import (
	"context"

	"github.com/aretw0/dsg/pkg/domain"
)

// CommandSource yields decoded scene-update commands.
// Recv blocks until a command is available and returns io.EOF when the
// stream ends cleanly.
type CommandSource interface {
	Recv() (domain.Command, error)
}

// RequestSink accepts outbound control messages.
type RequestSink interface {
	Send(req domain.Request) error

	// CloseSend signals that no further requests will be sent.
	CloseSend() error
}

// Stream is one bidirectional DSG connection.
type Stream interface {
	CommandSource
	RequestSink

	// Close aborts the stream, unblocking a pending Recv.
	Close() error
}

// Connector opens streams to a DSG server.
type Connector interface {
	Connect(ctx context.Context) (Stream, error)
}
