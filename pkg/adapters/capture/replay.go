package capture

import (
	"context"

	"github.com/aretw0/dsg/pkg/adapters/memory"
	"github.com/aretw0/dsg/pkg/domain"
	"github.com/aretw0/dsg/pkg/ports"
)

// Connector replays a capture as if it came from a server. The capture is
// streamed once when the control message allows spontaneous updates, and
// once more for every update request.
type Connector struct {
	Commands []domain.Command

	// Once ends the stream after the first replay.
	Once bool
}

// NewConnector loads path into a Connector.
func NewConnector(path string) (*Connector, error) {
	cmds, err := Load(path)
	if err != nil {
		return nil, err
	}
	return &Connector{Commands: cmds}, nil
}

// Connect implements ports.Connector.
func (c *Connector) Connect(ctx context.Context) (ports.Stream, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	var stream *memory.Stream
	stream = memory.NewStream(func(req domain.Request) []domain.Command {
		replay := req.Update != nil || (req.Control != nil && req.Control.AllowSpontaneous)
		if !replay {
			return nil
		}
		if c.Once {
			stream.Feed(c.Commands...)
			stream.End()
			return nil
		}
		return c.Commands
	})
	return stream, nil
}
