package handler

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"sync/atomic"

	"github.com/aretw0/dsg/pkg/domain"
	"github.com/aretw0/dsg/pkg/ports"
)

// Dedup forwards only parts whose digest changed since they were last seen.
// Every other callback passes straight through.
type Dedup struct {
	ports.UpdateHandler

	store   ports.FingerprintStore
	logger  *slog.Logger
	skipped atomic.Int64
}

// NewDedup wraps next with change detection backed by store.
func NewDedup(next ports.UpdateHandler, store ports.FingerprintStore, logger *slog.Logger) *Dedup {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Dedup{UpdateHandler: next, store: store, logger: logger}
}

// FingerprintKey is the store key of a part.
func FingerprintKey(info *domain.PartInfo) string {
	return fmt.Sprintf("part:%d", info.ID)
}

func (d *Dedup) FinalizePart(ctx context.Context, scene *domain.Scene, part *domain.Part) error {
	if part.Empty() {
		return d.UpdateHandler.FinalizePart(ctx, scene, part)
	}

	key := FingerprintKey(part.Info)
	digest := part.Digest()
	prev, err := d.store.Lookup(ctx, key)
	switch {
	case err == nil && prev == digest:
		d.skipped.Add(1)
		d.logger.Debug("part unchanged", "part", part.Info.ID, "digest", digest)
		return nil
	case err != nil && !errors.Is(err, domain.ErrFingerprintNotFound):
		d.logger.Warn("fingerprint lookup failed", "part", part.Info.ID, "error", err)
	}

	if err := d.UpdateHandler.FinalizePart(ctx, scene, part); err != nil {
		return err
	}
	if err := d.store.Store(ctx, key, digest); err != nil {
		return fmt.Errorf("failed to store fingerprint: %w", err)
	}
	return nil
}

// EndConnection forgets every fingerprint: a new connection resends the scene.
func (d *Dedup) EndConnection(ctx context.Context) error {
	err := d.UpdateHandler.EndConnection(ctx)
	if ferr := d.store.Forget(ctx); ferr != nil {
		err = errors.Join(err, fmt.Errorf("failed to forget fingerprints: %w", ferr))
	}
	return err
}

// Skipped is the number of parts not forwarded.
func (d *Dedup) Skipped() int64 {
	return d.skipped.Load()
}
