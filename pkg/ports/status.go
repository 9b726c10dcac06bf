package ports

import (
	"context"

	"github.com/aretw0/dsg/pkg/domain"
)

// StatusWriter publishes the progress record of the running update.
// Writers are best effort: the engine logs and ignores their errors.
type StatusWriter interface {
	WriteStatus(ctx context.Context, progress domain.Progress) error
}

// StatusReader exposes the last published progress record.
type StatusReader interface {
	ReadStatus(ctx context.Context) (domain.Progress, error)
}
