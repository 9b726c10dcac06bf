package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/aretw0/dsg/pkg/domain"
	backend "github.com/redis/go-redis/v9"
)

// StatusPublisher implements ports.StatusWriter and ports.StatusReader.
// Every record is stored under "<prefix>status" and published on the channel
// of the same name, so remote progress UIs can either poll or subscribe.
type StatusPublisher struct {
	client *backend.Client
	key    string
	ttl    time.Duration
}

// NewStatusPublisher wraps an existing client.
func NewStatusPublisher(client *backend.Client, opts ...Option) *StatusPublisher {
	o := resolve(opts)
	return &StatusPublisher{client: client, key: o.prefix + "status", ttl: o.ttl}
}

// Channel is the pub/sub channel records are published on.
func (p *StatusPublisher) Channel() string {
	return p.key
}

func (p *StatusPublisher) WriteStatus(ctx context.Context, progress domain.Progress) error {
	data, err := json.Marshal(progress)
	if err != nil {
		return fmt.Errorf("failed to marshal status: %w", err)
	}
	pipe := p.client.Pipeline()
	pipe.Set(ctx, p.key, data, p.ttl)
	pipe.Publish(ctx, p.key, data)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to publish status: %w", err)
	}
	return nil
}

// ReadStatus returns the last stored record, or an idle record when none exists.
func (p *StatusPublisher) ReadStatus(ctx context.Context) (domain.Progress, error) {
	data, err := p.client.Get(ctx, p.key).Bytes()
	if errors.Is(err, backend.Nil) {
		return domain.Progress{Status: domain.StatusIdle}, nil
	}
	if err != nil {
		return domain.Progress{}, fmt.Errorf("failed to read status: %w", err)
	}
	var progress domain.Progress
	if err := json.Unmarshal(data, &progress); err != nil {
		return domain.Progress{}, fmt.Errorf("failed to unmarshal status: %w", err)
	}
	return progress, nil
}
