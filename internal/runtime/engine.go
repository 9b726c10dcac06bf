package runtime

import (
	"context"
	"io"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/aretw0/dsg/pkg/domain"
	"github.com/aretw0/dsg/pkg/ports"
)

// Engine is the session state machine. It owns the scene registries and the
// current part, and turns the command stream into UpdateHandler callbacks.
//
// An Engine is not safe for concurrent use: exactly one goroutine dispatches.
type Engine struct {
	handler ports.UpdateHandler
	hooks   domain.LifecycleHooks
	logger  *slog.Logger
	now     func() time.Time

	timeScale float64
	normalize bool
	vrMode    bool

	scene    *domain.Scene
	part     *domain.Part
	updating atomic.Bool
	progress *progressTracker

	updateStart time.Time
	updateParts int
}

// NewEngine creates an idle engine reporting to handler.
func NewEngine(handler ports.UpdateHandler, opts ...EngineOption) *Engine {
	e := &Engine{
		handler:   handler,
		logger:    slog.New(slog.NewTextHandler(io.Discard, nil)),
		now:       time.Now,
		timeScale: 1,
		progress: &progressTracker{
			now:      time.Now,
			interval: DefaultProgressInterval,
		},
	}
	for _, opt := range opts {
		opt(e)
	}
	if e.vrMode {
		e.normalize = false
	}
	e.progress.logger = e.logger
	e.scene = domain.NewScene(e.normalize)
	e.part = domain.NewPart(nil)
	return e
}

// Scene returns the live scene. Callers must not retain it across Dispatch calls
// made from another goroutine.
func (e *Engine) Scene() *domain.Scene { return e.scene }

// Part returns the part currently being assembled.
func (e *Engine) Part() *domain.Part { return e.part }

// Updating reports whether a SceneBegin has been seen without its SceneEnd.
// Unlike the other accessors it may be called from any goroutine.
func (e *Engine) Updating() bool { return e.updating.Load() }

// VRMode reports whether the engine was configured for a VR client.
func (e *Engine) VRMode() bool { return e.vrMode }

// Progress returns the last computed status record.
func (e *Engine) Progress() domain.Progress { return e.progress.snapshot() }

// SetBacklog replaces the queued-command counter used for total_buffers.
func (e *Engine) SetBacklog(backlog func() int) { e.progress.backlog = backlog }

// StartConnection notifies the handler that a new connection is up.
func (e *Engine) StartConnection(ctx context.Context) error {
	e.logger.Debug("connection started")
	return e.handler.StartConnection(ctx)
}

// EndConnection notifies the handler that the connection is gone.
func (e *Engine) EndConnection(ctx context.Context) error {
	e.logger.Debug("connection ended", "updating", e.updating.Load())
	return e.handler.EndConnection(ctx)
}

// Dispatch applies one command. It never fails: out-of-order commands are
// applied to whatever state exists and handler errors are logged.
func (e *Engine) Dispatch(ctx context.Context, cmd domain.Command) {
	start := e.now()
	typ := cmd.Type()
	if !e.updating.Load() && typ != domain.CmdSceneBegin {
		e.logger.Debug("command outside scene update", "type", typ)
	}

	switch c := cmd.(type) {
	case domain.SceneBegin:
		e.beginUpdate(ctx)
	case domain.SceneEnd:
		e.endUpdate(ctx)
	case domain.UpdateGroup:
		e.addGroup(ctx, c.Group)
	case domain.UpdateView:
		e.addView(ctx, c.View)
	case domain.UpdatePart:
		e.finalizePart(ctx)
		info := c.Part
		e.part = domain.NewPart(&info)
	case domain.UpdateGeom:
		e.mergeGeom(c.Chunk)
	case domain.UpdateVariable:
		e.addVariable(ctx, c.Variable)
	case domain.UpdateTexture:
		e.logger.Debug("texture update ignored", "id", c.Texture.ID)
	case domain.DeleteID:
		e.logger.Debug("delete ignored", "ids", c.Delete.IDs)
	default:
		e.logger.Debug("command ignored", "type", typ)
	}

	if typ != domain.CmdSceneBegin && typ != domain.CmdSceneEnd {
		e.progress.step(ctx)
	}

	if e.hooks.OnCommand != nil {
		e.hooks.OnCommand(ctx, &domain.CommandEvent{
			Timestamp: start,
			Type:      typ,
			Duration:  e.now().Sub(start),
			Updating:  e.updating.Load(),
		})
	}
}

func (e *Engine) beginUpdate(ctx context.Context) {
	if e.updating.Load() {
		e.logger.Debug("scene begin during update, restarting")
	}
	e.scene.Reset()
	e.part = domain.NewPart(nil)
	e.updating.Store(true)
	e.updateStart = e.now()
	e.updateParts = 0

	if err := e.handler.BeginUpdate(ctx, e.scene); err != nil {
		e.logger.Warn("handler failed to begin update", "error", err)
	}
	e.progress.begin(ctx)

	if e.hooks.OnUpdateBegin != nil {
		e.hooks.OnUpdateBegin(ctx, &domain.UpdateEvent{Timestamp: e.updateStart})
	}
}

func (e *Engine) endUpdate(ctx context.Context) {
	e.finalizePart(ctx)
	e.updating.Store(false)

	if err := e.handler.EndUpdate(ctx, e.scene); err != nil {
		e.logger.Warn("handler failed to end update", "error", err)
	}
	e.progress.end(ctx)

	now := e.now()
	e.logger.Info("scene update complete",
		"parts", e.updateParts,
		"groups", len(e.scene.Groups),
		"variables", len(e.scene.Variables),
		"elapsed", now.Sub(e.updateStart))

	if e.hooks.OnUpdateEnd != nil {
		e.hooks.OnUpdateEnd(ctx, &domain.UpdateEvent{
			Timestamp: now,
			Parts:     e.updateParts,
			Elapsed:   now.Sub(e.updateStart),
		})
	}
}

// finalizePart hands the current part to the handler exactly once. The part
// is replaced, never reused, so the handler may keep it.
func (e *Engine) finalizePart(ctx context.Context) {
	part := e.part
	if err := e.handler.FinalizePart(ctx, e.scene, part); err != nil {
		var id int64
		if part.Info != nil {
			id = part.Info.ID
		}
		e.logger.Warn("handler failed to finalize part", "part", id, "error", err)
	}
	e.scene.MeshBlockCount++
	e.updateParts++

	if e.hooks.OnPartFinalized != nil {
		ev := &domain.PartEvent{
			Timestamp: e.now(),
			Digest:    part.Digest(),
			Vertices:  part.NumVertices(),
			Chunks:    part.Chunks(),
			Empty:     part.Empty(),
		}
		if part.Info != nil {
			ev.PartID = part.Info.ID
			ev.Name = part.Info.Name
		}
		e.hooks.OnPartFinalized(ctx, ev)
	}
	e.part = domain.NewPart(nil)
}

func (e *Engine) addGroup(ctx context.Context, g domain.Group) {
	e.scene.Groups[g.ID] = &g
	e.applyBounds(g)
	if err := e.handler.AddGroup(ctx, e.scene, g.ID, false); err != nil {
		e.logger.Warn("handler failed to add group", "group", g.ID, "error", err)
	}
}

func (e *Engine) addView(ctx context.Context, v domain.View) {
	v.Timeline = [2]float64{v.Timeline[0] * e.timeScale, v.Timeline[1] * e.timeScale}
	e.scene.Views[v.ID] = &v
	e.scene.Groups[v.ID] = &v.Group
	e.applyBounds(v.Group)
	e.scene.ExpandTime(v.Timeline)
	e.scene.CurTimeline = v.Timeline
	if err := e.handler.AddGroup(ctx, e.scene, v.ID, true); err != nil {
		e.logger.Warn("handler failed to add view", "view", v.ID, "error", err)
	}
}

func (e *Engine) applyBounds(g domain.Group) {
	bounds, err := g.SceneBounds()
	if err != nil {
		e.logger.Warn("ignoring scene bounds", "group", g.ID, "error", err)
		return
	}
	if bounds != nil {
		e.scene.Bounds = bounds
	}
}

func (e *Engine) addVariable(ctx context.Context, v domain.Variable) {
	e.scene.Variables[v.ID] = &v
	if err := e.handler.AddVariable(ctx, e.scene, v.ID); err != nil {
		e.logger.Warn("handler failed to add variable", "variable", v.ID, "error", err)
	}
}

func (e *Engine) mergeGeom(c domain.GeomChunk) {
	if c.PayloadType == domain.PayloadElemVariable || c.PayloadType == domain.PayloadNodeVariable {
		if _, ok := e.scene.Variables[c.VariableID]; !ok {
			e.logger.Debug("dropping chunk for unknown variable", "variable", c.VariableID)
			e.part.Skip(c)
			return
		}
	}
	if !e.part.Merge(c) {
		e.logger.Debug("unsupported geometry payload", "payload", c.PayloadType)
	}
}
