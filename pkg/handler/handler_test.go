package handler_test

import (
	"context"
	"errors"
	"testing"

	"github.com/aretw0/dsg"
	"github.com/aretw0/dsg/pkg/adapters/memory"
	"github.com/aretw0/dsg/pkg/domain"
	"github.com/aretw0/dsg/pkg/handler"
	"github.com/aretw0/dsg/pkg/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func triangleScene(coordHash string) []domain.Command {
	return []domain.Command{
		domain.SceneBegin{},
		domain.UpdateView{View: domain.View{Group: domain.Group{ID: 1, Name: "root", Attributes: map[string]string{
			domain.SceneBoundsAttribute: "0,0,0,2,2,0",
		}}, Timeline: [2]float64{0, 4}}},
		domain.UpdateGroup{Group: domain.Group{ID: 2, ParentID: 1, Name: "case"}},
		domain.UpdateVariable{Variable: domain.Variable{ID: 10, Name: "temperature", Levels: []domain.Level{{Value: 280}, {Value: 320}}}},
		domain.UpdatePart{Part: domain.PartInfo{ID: 3, ParentID: 2, Name: "hull", Render: domain.RenderSurface, ColorVariableID: 10, Hash: "hull"}},
		domain.UpdateGeom{Chunk: domain.GeomChunk{PayloadType: domain.PayloadCoordinates, TotalArraySize: 9, FltArray: []float32{0, 0, 0, 1, 0, 0, 0, 1, 0}, Hash: coordHash}},
		domain.UpdateGeom{Chunk: domain.GeomChunk{PayloadType: domain.PayloadTriangles, TotalArraySize: 3, IntArray: []uint32{0, 1, 2}, Hash: "t"}},
		domain.UpdateGeom{Chunk: domain.GeomChunk{PayloadType: domain.PayloadElemVariable, VariableID: 10, TotalArraySize: 1, FltArray: []float32{300}, Hash: "v"}},
		domain.UpdatePart{Part: domain.PartInfo{ID: 4, ParentID: 2, Name: "probes", Render: domain.RenderPoints, NodeSizeDefault: 1, Hash: "probes"}},
		domain.UpdateGeom{Chunk: domain.GeomChunk{PayloadType: domain.PayloadCoordinates, TotalArraySize: 6, FltArray: []float32{0, 0, 0, 2, 2, 0}, Hash: "p"}},
		domain.SceneEnd{},
	}
}

func run(t *testing.T, h ports.UpdateHandler, cmds ...[]domain.Command) *dsg.Session {
	t.Helper()
	s, err := dsg.New(h)
	require.NoError(t, err)
	ctx := context.Background()
	require.NoError(t, s.StartConnection(ctx))
	for _, batch := range cmds {
		for _, c := range batch {
			s.Dispatch(ctx, c)
		}
	}
	return s
}

func TestRecorder_Summary(t *testing.T) {
	rec := handler.NewRecorder(nil)
	assert.Zero(t, rec.Summary().Updates)

	run(t, rec, triangleScene("c"))
	sum := rec.Summary()

	assert.Equal(t, 1, sum.Updates)
	require.NotNil(t, sum.Bounds)
	assert.Equal(t, domain.Bounds{0, 0, 0, 2, 2, 0}, *sum.Bounds)
	assert.Equal(t, [2]float64{0, 4}, sum.TimeLimits)

	require.Len(t, sum.Groups, 2)
	assert.Equal(t, handler.GroupSummary{ID: 1, Name: "root", View: true}, sum.Groups[0])
	assert.Equal(t, handler.GroupSummary{ID: 2, ParentID: 1, Name: "case"}, sum.Groups[1])

	require.Len(t, sum.Variables, 1)
	assert.Equal(t, handler.VariableSummary{ID: 10, Name: "temperature", Levels: 2, Min: 280, Max: 320}, sum.Variables[0])

	require.Len(t, sum.Parts, 2, "the empty leading part is not recorded")
	hull := sum.Parts[0]
	assert.Equal(t, "hull", hull.Name)
	assert.Equal(t, 3, hull.Vertices)
	assert.Equal(t, 1, hull.Triangles)
	assert.True(t, hull.Flattened, "elemental colors flatten the mesh")
	assert.Equal(t, "temperature", hull.Variable)
	assert.NotEmpty(t, hull.Digest)
	assert.Empty(t, hull.Error)

	probes, ok := rec.Part(4)
	require.True(t, ok)
	assert.Equal(t, 2, probes.Points)
	assert.Zero(t, probes.Triangles)

	_, ok = rec.Part(99)
	assert.False(t, ok)
}

func TestRecorder_ReportsBadIndices(t *testing.T) {
	rec := handler.NewRecorder(nil)
	run(t, rec, []domain.Command{
		domain.SceneBegin{},
		domain.UpdatePart{Part: domain.PartInfo{ID: 1, Name: "broken"}},
		domain.UpdateGeom{Chunk: domain.GeomChunk{PayloadType: domain.PayloadCoordinates, TotalArraySize: 3, FltArray: []float32{0, 0, 0}}},
		domain.UpdateGeom{Chunk: domain.GeomChunk{PayloadType: domain.PayloadTriangles, TotalArraySize: 3, IntArray: []uint32{0, 1, 2}}},
		domain.SceneEnd{},
	})
	parts := rec.Summary().Parts
	require.Len(t, parts, 1)
	assert.Contains(t, parts[0].Error, "index out of range")
}

type finalizeLog struct {
	ports.NopHandler
	ids []int64
	err error
}

func (f *finalizeLog) FinalizePart(ctx context.Context, scene *domain.Scene, part *domain.Part) error {
	if part.Info != nil {
		f.ids = append(f.ids, part.Info.ID)
	}
	return f.err
}

func TestDedup_SkipsUnchangedParts(t *testing.T) {
	next := &finalizeLog{}
	store := memory.NewStore()
	d := handler.NewDedup(next, store, nil)

	run(t, d, triangleScene("c"), triangleScene("c"))
	assert.Equal(t, []int64{3, 4}, next.ids, "second refresh is identical")
	assert.Equal(t, int64(2), d.Skipped())

	run(t, d, triangleScene("c-changed"))
	assert.Equal(t, []int64{3, 4, 3}, next.ids, "only the hull changed")

	require.NoError(t, d.EndConnection(context.Background()))
	assert.Zero(t, store.Len())
}

func TestDedup_FailedForwardIsRetried(t *testing.T) {
	next := &finalizeLog{err: errors.New("renderer busy")}
	store := memory.NewStore()
	d := handler.NewDedup(next, store, nil)

	run(t, d, triangleScene("c"))
	assert.Zero(t, store.Len(), "nothing is fingerprinted when forwarding fails")

	next.err = nil
	run(t, d, triangleScene("c"))
	assert.Equal(t, []int64{3, 4, 3, 4}, next.ids)
}

func TestMulti(t *testing.T) {
	a := &finalizeLog{}
	b := &finalizeLog{err: errors.New("b failed")}
	c := &finalizeLog{}
	m := handler.Multi{a, b, c}

	part := domain.NewPart(&domain.PartInfo{ID: 5})
	err := m.FinalizePart(context.Background(), domain.NewScene(false), part)
	assert.ErrorContains(t, err, "b failed")
	assert.Equal(t, []int64{5}, a.ids)
	assert.Equal(t, []int64{5}, c.ids, "later handlers still run")

	assert.NoError(t, m.StartConnection(context.Background()))
	assert.NoError(t, m.AddGroup(context.Background(), domain.NewScene(false), 1, true))
}
