package handler

import (
	"context"
	"errors"

	"github.com/aretw0/dsg/pkg/domain"
	"github.com/aretw0/dsg/pkg/ports"
)

// Multi calls every handler in order. All handlers run even when one fails;
// the errors are joined.
type Multi []ports.UpdateHandler

func (m Multi) each(fn func(ports.UpdateHandler) error) error {
	var errs []error
	for _, h := range m {
		if err := fn(h); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (m Multi) StartConnection(ctx context.Context) error {
	return m.each(func(h ports.UpdateHandler) error { return h.StartConnection(ctx) })
}

func (m Multi) EndConnection(ctx context.Context) error {
	return m.each(func(h ports.UpdateHandler) error { return h.EndConnection(ctx) })
}

func (m Multi) BeginUpdate(ctx context.Context, scene *domain.Scene) error {
	return m.each(func(h ports.UpdateHandler) error { return h.BeginUpdate(ctx, scene) })
}

func (m Multi) EndUpdate(ctx context.Context, scene *domain.Scene) error {
	return m.each(func(h ports.UpdateHandler) error { return h.EndUpdate(ctx, scene) })
}

func (m Multi) AddGroup(ctx context.Context, scene *domain.Scene, id int64, isView bool) error {
	return m.each(func(h ports.UpdateHandler) error { return h.AddGroup(ctx, scene, id, isView) })
}

func (m Multi) AddVariable(ctx context.Context, scene *domain.Scene, id int64) error {
	return m.each(func(h ports.UpdateHandler) error { return h.AddVariable(ctx, scene, id) })
}

func (m Multi) FinalizePart(ctx context.Context, scene *domain.Scene, part *domain.Part) error {
	return m.each(func(h ports.UpdateHandler) error { return h.FinalizePart(ctx, scene, part) })
}
