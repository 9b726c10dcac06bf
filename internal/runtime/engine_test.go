package runtime_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/aretw0/dsg/internal/runtime"
	"github.com/aretw0/dsg/pkg/domain"
	"github.com/aretw0/dsg/pkg/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// recordingHandler captures every callback in order.
type recordingHandler struct {
	ports.NopHandler
	calls     []string
	finalized []*domain.Part
	groups    []int64
	views     []int64
	variables []int64
	failWith  error
}

func (h *recordingHandler) BeginUpdate(ctx context.Context, scene *domain.Scene) error {
	h.calls = append(h.calls, "begin")
	return h.failWith
}

func (h *recordingHandler) EndUpdate(ctx context.Context, scene *domain.Scene) error {
	h.calls = append(h.calls, "end")
	return h.failWith
}

func (h *recordingHandler) AddGroup(ctx context.Context, scene *domain.Scene, id int64, isView bool) error {
	h.calls = append(h.calls, "group")
	if isView {
		h.views = append(h.views, id)
	} else {
		h.groups = append(h.groups, id)
	}
	return h.failWith
}

func (h *recordingHandler) AddVariable(ctx context.Context, scene *domain.Scene, id int64) error {
	h.calls = append(h.calls, "variable")
	h.variables = append(h.variables, id)
	return h.failWith
}

func (h *recordingHandler) FinalizePart(ctx context.Context, scene *domain.Scene, part *domain.Part) error {
	h.calls = append(h.calls, "finalize")
	h.finalized = append(h.finalized, part)
	return h.failWith
}

// statusLog collects every written progress record.
type statusLog struct {
	records []domain.Progress
	err     error
}

func (s *statusLog) WriteStatus(ctx context.Context, p domain.Progress) error {
	s.records = append(s.records, p)
	return s.err
}

type fakeClock struct {
	t time.Time
}

func (c *fakeClock) Now() time.Time { return c.t }

func (c *fakeClock) Advance(d time.Duration) { c.t = c.t.Add(d) }

func dispatchAll(e *runtime.Engine, cmds ...domain.Command) {
	for _, c := range cmds {
		e.Dispatch(context.Background(), c)
	}
}

func triangleScene() []domain.Command {
	return []domain.Command{
		domain.SceneBegin{},
		domain.UpdateView{View: domain.View{Group: domain.Group{ID: 1}, Timeline: [2]float64{0, 1}}},
		domain.UpdateGroup{Group: domain.Group{ID: 2, ParentID: 1}},
		domain.UpdateVariable{Variable: domain.Variable{ID: 10, Levels: []domain.Level{{Value: 0}, {Value: 1}}}},
		domain.UpdatePart{Part: domain.PartInfo{ID: 3, ParentID: 2, ColorVariableID: 10}},
		domain.UpdateGeom{Chunk: domain.GeomChunk{PayloadType: domain.PayloadCoordinates, TotalArraySize: 9, FltArray: []float32{0, 0, 0, 1, 0, 0, 0, 1, 0}}},
		domain.UpdateGeom{Chunk: domain.GeomChunk{PayloadType: domain.PayloadTriangles, TotalArraySize: 3, IntArray: []uint32{0, 1, 2}}},
		domain.UpdateGeom{Chunk: domain.GeomChunk{PayloadType: domain.PayloadNodeVariable, VariableID: 10, TotalArraySize: 3, FltArray: []float32{0, 0.5, 1}}},
		domain.UpdatePart{Part: domain.PartInfo{ID: 4, ParentID: 2}},
		domain.SceneEnd{},
	}
}

func TestEngine_FullUpdate(t *testing.T) {
	h := &recordingHandler{}
	e := runtime.NewEngine(h)

	dispatchAll(e, triangleScene()...)

	assert.Equal(t, []string{"begin", "group", "group", "variable", "finalize", "finalize", "finalize", "end"}, h.calls)
	assert.Equal(t, []int64{1}, h.views)
	assert.Equal(t, []int64{2}, h.groups)
	assert.Equal(t, []int64{10}, h.variables)
	assert.False(t, e.Updating())

	require.Len(t, h.finalized, 3)
	assert.True(t, h.finalized[0].Empty(), "the implicit part before the first UpdatePart is finalized too")
	assert.Equal(t, int64(3), h.finalized[1].Info.ID)
	assert.Equal(t, []float32{0, 0.5, 1}, h.finalized[1].ColorValues)
	assert.Equal(t, int64(4), h.finalized[2].Info.ID)
	assert.Equal(t, 3, e.Scene().MeshBlockCount)
}

func TestEngine_FinalizedPartsAreNotReused(t *testing.T) {
	h := &recordingHandler{}
	e := runtime.NewEngine(h)
	dispatchAll(e, triangleScene()...)

	seen := map[*domain.Part]bool{}
	for _, p := range h.finalized {
		assert.False(t, seen[p], "each finalize receives a distinct part")
		seen[p] = true
	}
	assert.NotSame(t, h.finalized[len(h.finalized)-1], e.Part())
	assert.Equal(t, []float32{0, 0, 0, 1, 0, 0, 0, 1, 0}, h.finalized[1].Coords, "data survives later commands")
}

func TestEngine_FinalizeCountMatchesBoundaries(t *testing.T) {
	h := &recordingHandler{}
	e := runtime.NewEngine(h)

	cmds := []domain.Command{domain.SceneBegin{}}
	for i := range 5 {
		cmds = append(cmds, domain.UpdatePart{Part: domain.PartInfo{ID: int64(100 + i)}})
	}
	cmds = append(cmds, domain.SceneEnd{})
	dispatchAll(e, cmds...)

	// one for the implicit empty part, one per UpdatePart
	assert.Len(t, h.finalized, 6)
}

func TestEngine_SceneBeginResetsRegistries(t *testing.T) {
	h := &recordingHandler{}
	e := runtime.NewEngine(h)
	dispatchAll(e, triangleScene()...)
	require.NotEmpty(t, e.Scene().Groups)

	dispatchAll(e, domain.SceneBegin{})
	assert.Empty(t, e.Scene().Groups)
	assert.Empty(t, e.Scene().Views)
	assert.Empty(t, e.Scene().Variables)
	assert.Nil(t, e.Scene().Bounds)
	assert.Zero(t, e.Scene().MeshBlockCount)
	assert.True(t, e.Part().Empty())
	assert.True(t, e.Updating())
}

func TestEngine_TimeLimitsMonotonic(t *testing.T) {
	e := runtime.NewEngine(&recordingHandler{}, runtime.WithTimeScale(2))

	view := func(id int64, lo, hi float64) domain.Command {
		return domain.UpdateView{View: domain.View{Group: domain.Group{ID: id}, Timeline: [2]float64{lo, hi}}}
	}
	dispatchAll(e, domain.SceneBegin{}, view(1, 5, 6), view(2, 1, 2), view(3, 3, 4))

	assert.Equal(t, [2]float64{2, 12}, e.Scene().TimeLimits)
	assert.Equal(t, [2]float64{6, 8}, e.Scene().CurTimeline)

	t.Run("Survives Refresh", func(t *testing.T) {
		dispatchAll(e, domain.SceneEnd{}, domain.SceneBegin{}, view(1, 4, 5))
		assert.Equal(t, [2]float64{2, 12}, e.Scene().TimeLimits)
	})
}

func TestEngine_SceneBounds(t *testing.T) {
	e := runtime.NewEngine(&recordingHandler{}, runtime.WithNormalize(true))
	require.True(t, e.Scene().Normalize)

	dispatchAll(e,
		domain.SceneBegin{},
		domain.UpdateView{View: domain.View{Group: domain.Group{ID: 1, Attributes: map[string]string{
			domain.SceneBoundsAttribute: "-1,-2,-3,1,2,3",
		}}}},
	)
	require.NotNil(t, e.Scene().Bounds)
	assert.Equal(t, domain.Bounds{-1, -2, -3, 1, 2, 3}, *e.Scene().Bounds)

	t.Run("Malformed Keeps Previous", func(t *testing.T) {
		dispatchAll(e, domain.UpdateGroup{Group: domain.Group{ID: 2, Attributes: map[string]string{
			domain.SceneBoundsAttribute: "1,2,oops",
		}}})
		require.NotNil(t, e.Scene().Bounds)
		assert.Equal(t, domain.Bounds{-1, -2, -3, 1, 2, 3}, *e.Scene().Bounds)
	})
}

func TestEngine_VRModeDisablesNormalization(t *testing.T) {
	e := runtime.NewEngine(&recordingHandler{}, runtime.WithNormalize(true), runtime.WithVRMode(true))
	assert.True(t, e.VRMode())
	assert.False(t, e.Scene().Normalize)
}

func TestEngine_LenientOrdering(t *testing.T) {
	h := &recordingHandler{}
	e := runtime.NewEngine(h)

	// geometry before any scene begin or part lands in the implicit empty part
	dispatchAll(e,
		domain.UpdateGeom{Chunk: domain.GeomChunk{PayloadType: domain.PayloadCoordinates, TotalArraySize: 3, FltArray: []float32{1, 2, 3}}},
		domain.UpdateTexture{Texture: domain.TextureUpdate{ID: 9}},
		domain.DeleteID{Delete: domain.DeleteIDs{IDs: []int64{1}}},
		domain.Ignored{Raw: "SOMETHING_NEW"},
	)
	assert.Equal(t, []float32{1, 2, 3}, e.Part().Coords)
	assert.Empty(t, h.calls)

	dispatchAll(e, domain.SceneEnd{})
	assert.Equal(t, []string{"finalize", "end"}, h.calls)
}

func TestEngine_UnknownVariableChunkDropped(t *testing.T) {
	e := runtime.NewEngine(&recordingHandler{})
	dispatchAll(e,
		domain.SceneBegin{},
		domain.UpdatePart{Part: domain.PartInfo{ID: 3, ColorVariableID: 10}},
		domain.UpdateGeom{Chunk: domain.GeomChunk{PayloadType: domain.PayloadNodeVariable, VariableID: 10, TotalArraySize: 1, FltArray: []float32{1}}},
	)
	assert.Nil(t, e.Part().ColorValues)
	assert.Equal(t, 1, e.Part().Chunks())
}

func TestEngine_HandlerErrorsAreNotFatal(t *testing.T) {
	h := &recordingHandler{failWith: errors.New("boom")}
	e := runtime.NewEngine(h)

	assert.NotPanics(t, func() { dispatchAll(e, triangleScene()...) })
	assert.Len(t, h.finalized, 3)
	assert.False(t, e.Updating())
}

func TestEngine_Progress(t *testing.T) {
	clock := &fakeClock{t: time.Unix(1000, 0)}
	status := &statusLog{}
	backlog := 7
	e := runtime.NewEngine(&recordingHandler{},
		runtime.WithClock(clock.Now),
		runtime.WithStatusWriter(status),
		runtime.WithBacklog(func() int { return backlog }),
	)

	dispatchAll(e, domain.SceneBegin{})
	require.Len(t, status.records, 1)
	assert.Equal(t, domain.Progress{Status: domain.StatusWorking, StartTime: 1000, TotalBuffers: 7}, status.records[0])

	t.Run("Throttled Within A Second", func(t *testing.T) {
		backlog = 3
		clock.Advance(100 * time.Millisecond)
		dispatchAll(e, domain.UpdatePart{Part: domain.PartInfo{ID: 1}}, domain.UpdatePart{Part: domain.PartInfo{ID: 2}})
		assert.Len(t, status.records, 1)
		assert.Equal(t, uint64(2), e.Progress().ProcessedBuffers)
		assert.Equal(t, uint64(5), e.Progress().TotalBuffers)
	})

	t.Run("Written After A Second", func(t *testing.T) {
		clock.Advance(time.Second)
		dispatchAll(e, domain.UpdatePart{Part: domain.PartInfo{ID: 3}})
		require.Len(t, status.records, 2)
		assert.Equal(t, uint64(3), status.records[1].ProcessedBuffers)
		assert.Equal(t, domain.StatusWorking, status.records[1].Status)
	})

	t.Run("End Always Written", func(t *testing.T) {
		backlog = 0
		dispatchAll(e, domain.SceneEnd{})
		require.Len(t, status.records, 3)
		last := status.records[2]
		assert.Equal(t, domain.StatusIdle, last.Status)
		assert.Equal(t, float64(1000), last.StartTime)
		assert.Equal(t, last.ProcessedBuffers, last.TotalBuffers)
	})
}

func TestEngine_ProgressWriteFailureSwallowed(t *testing.T) {
	status := &statusLog{err: errors.New("disk full")}
	e := runtime.NewEngine(&recordingHandler{}, runtime.WithStatusWriter(status))
	assert.NotPanics(t, func() { dispatchAll(e, domain.SceneBegin{}, domain.SceneEnd{}) })
	assert.Len(t, status.records, 2)
}

func TestEngine_LifecycleHooks(t *testing.T) {
	var commands []domain.CommandType
	var parts []*domain.PartEvent
	var begins, ends int
	var lastEnd *domain.UpdateEvent

	hooks := domain.LifecycleHooks{
		OnCommand: func(ctx context.Context, ev *domain.CommandEvent) {
			commands = append(commands, ev.Type)
		},
		OnPartFinalized: func(ctx context.Context, ev *domain.PartEvent) {
			parts = append(parts, ev)
		},
		OnUpdateBegin: func(ctx context.Context, ev *domain.UpdateEvent) { begins++ },
		OnUpdateEnd: func(ctx context.Context, ev *domain.UpdateEvent) {
			ends++
			lastEnd = ev
		},
	}
	e := runtime.NewEngine(&recordingHandler{}, runtime.WithLifecycleHooks(hooks))
	dispatchAll(e, triangleScene()...)

	assert.Len(t, commands, len(triangleScene()))
	assert.Equal(t, domain.CmdSceneBegin, commands[0])
	assert.Equal(t, 1, begins)
	assert.Equal(t, 1, ends)
	require.NotNil(t, lastEnd)
	assert.Equal(t, 3, lastEnd.Parts)

	require.Len(t, parts, 3)
	assert.True(t, parts[0].Empty)
	assert.Equal(t, int64(3), parts[1].PartID)
	assert.Equal(t, 3, parts[1].Vertices)
	assert.Equal(t, 3, parts[1].Chunks)
	assert.NotEmpty(t, parts[1].Digest)
}
