package ports

import (
	"context"

	"github.com/aretw0/dsg/pkg/domain"
)

// UpdateHandler receives the scene as the engine rebuilds it.
//
// All methods are called synchronously on the consumer goroutine, in stream
// order, and must not block indefinitely. The scene argument is owned by the
// engine and is only valid for the duration of the call. Returned errors are
// logged by the engine; they never abort the session.
type UpdateHandler interface {
	// StartConnection is called once before the first command is read.
	StartConnection(ctx context.Context) error

	// EndConnection is called once after the stream has been shut down.
	EndConnection(ctx context.Context) error

	// BeginUpdate is called on UPDATE_SCENE_BEGIN, after the registries were cleared.
	BeginUpdate(ctx context.Context, scene *domain.Scene) error

	// EndUpdate is called on UPDATE_SCENE_END, after the last part was finalized.
	EndUpdate(ctx context.Context, scene *domain.Scene) error

	// AddGroup is called after a group or view has been registered.
	AddGroup(ctx context.Context, scene *domain.Scene, id int64, isView bool) error

	// AddVariable is called after a variable has been registered.
	AddVariable(ctx context.Context, scene *domain.Scene, id int64) error

	// FinalizePart hands over a completed part, exactly once per part.
	// The engine never mutates the part afterwards.
	FinalizePart(ctx context.Context, scene *domain.Scene, part *domain.Part) error
}

// NopHandler implements UpdateHandler with no-op methods.
// Embed it to override only the callbacks you need.
type NopHandler struct{}

var _ UpdateHandler = NopHandler{}

func (NopHandler) StartConnection(context.Context) error                           { return nil }
func (NopHandler) EndConnection(context.Context) error                             { return nil }
func (NopHandler) BeginUpdate(context.Context, *domain.Scene) error                { return nil }
func (NopHandler) EndUpdate(context.Context, *domain.Scene) error                  { return nil }
func (NopHandler) AddGroup(context.Context, *domain.Scene, int64, bool) error      { return nil }
func (NopHandler) AddVariable(context.Context, *domain.Scene, int64) error         { return nil }
func (NopHandler) FinalizePart(context.Context, *domain.Scene, *domain.Part) error { return nil }
