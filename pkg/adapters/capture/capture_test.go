package capture_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/aretw0/dsg/pkg/adapters/capture"
	"github.com/aretw0/dsg/pkg/adapters/memory"
	"github.com/aretw0/dsg/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const triangleYAML = `
commands:
  - command_type: UPDATE_SCENE_BEGIN
  - command_type: UPDATE_VIEW
    view:
      id: 1
      name: root
      timeline: [0, 2.5]
      attributes:
        ENS_SCENE_BOUNDS: "0,0,0,1,1,0"
  - command_type: UPDATE_VARIABLE
    variable:
      id: 10
      name: pressure
      levels: [{value: 0}, {value: 1}]
  - command_type: UPDATE_PART
    part: {id: 3, parent_id: 1, name: hull, render: surface, color_variableid: 10, fill_color: [1, 0, 0, 1]}
  - command_type: UPDATE_GEOM
    geometry:
      payload_type: COORDINATES
      total_array_size: 9
      flt_array: [0, 0, 0, 1, 0, 0, 0, 1, 0]
      hash: c1
  - command_type: UPDATE_GEOM
    geometry: {payload_type: TRIANGLES, total_array_size: 3, int_array: [0, 1, 2]}
  - command_type: SOMETHING_NEWER
  - command_type: UPDATE_SCENE_END
`

func TestParse_YAML(t *testing.T) {
	cmds, err := capture.Parse([]byte(triangleYAML))
	require.NoError(t, err)
	require.Len(t, cmds, 8)

	view, ok := cmds[1].(domain.UpdateView)
	require.True(t, ok)
	assert.Equal(t, int64(1), view.View.ID)
	assert.Equal(t, [2]float64{0, 2.5}, view.View.Timeline)
	assert.Equal(t, "0,0,0,1,1,0", view.View.Attributes[domain.SceneBoundsAttribute])

	part, ok := cmds[3].(domain.UpdatePart)
	require.True(t, ok)
	assert.Equal(t, domain.RenderSurface, part.Part.Render)
	assert.Equal(t, int64(10), part.Part.ColorVariableID)
	assert.Equal(t, [4]float32{1, 0, 0, 1}, part.Part.FillColor)

	geom, ok := cmds[4].(domain.UpdateGeom)
	require.True(t, ok)
	assert.Equal(t, uint32(9), geom.Chunk.TotalArraySize)
	assert.Equal(t, []float32{0, 0, 0, 1, 0, 0, 0, 1, 0}, geom.Chunk.FltArray)
	assert.Equal(t, "c1", geom.Chunk.Hash)

	assert.Equal(t, domain.Ignored{Raw: "SOMETHING_NEWER"}, cmds[6])
}

func TestParse_TopLevelList(t *testing.T) {
	cmds, err := capture.Parse([]byte(`[{"command_type": "UPDATE_SCENE_BEGIN"}, {"command_type": "UPDATE_SCENE_END"}]`))
	require.NoError(t, err)
	assert.Equal(t, []domain.Command{domain.SceneBegin{}, domain.SceneEnd{}}, cmds)
}

func TestParse_Errors(t *testing.T) {
	_, err := capture.Parse([]byte(`name: nothing here`))
	assert.Error(t, err)

	_, err = capture.Parse([]byte(`"just a string"`))
	assert.Error(t, err)

	cmds, err := capture.Parse(nil)
	assert.NoError(t, err)
	assert.Empty(t, cmds)
}

func TestSaveLoad(t *testing.T) {
	cmds, err := capture.Parse([]byte(triangleYAML))
	require.NoError(t, err)
	cmds = append(cmds, domain.UpdateVariable{Variable: domain.Variable{ID: 11, Texture: []byte{255, 0, 0, 255, 0, 0, 255, 255}}})

	path := filepath.Join(t.TempDir(), "scene.json")
	require.NoError(t, capture.Save(path, cmds))

	loaded, err := capture.Load(path)
	require.NoError(t, err)
	assert.Equal(t, cmds, loaded)
}

func TestRecorder(t *testing.T) {
	stream := memory.NewStream(nil)
	stream.Feed(domain.SceneBegin{}, domain.SceneEnd{})
	stream.End()

	rec := capture.Record(stream)
	for {
		if _, err := rec.Recv(); err != nil {
			break
		}
	}
	assert.Equal(t, []domain.Command{domain.SceneBegin{}, domain.SceneEnd{}}, rec.Commands())
}

func TestConnector_Once(t *testing.T) {
	c := &capture.Connector{Commands: []domain.Command{domain.SceneBegin{}, domain.SceneEnd{}}, Once: true}
	stream, err := c.Connect(context.Background())
	require.NoError(t, err)

	require.NoError(t, stream.Send(domain.Request{Update: &domain.UpdateRequest{}}))
	var got []domain.Command
	for {
		cmd, err := stream.Recv()
		if err != nil {
			break
		}
		got = append(got, cmd)
	}
	assert.Equal(t, c.Commands, got)
}

func TestConnector_ControlWithoutSpontaneous(t *testing.T) {
	c := &capture.Connector{Commands: []domain.Command{domain.SceneBegin{}}}
	stream, err := c.Connect(context.Background())
	require.NoError(t, err)

	require.NoError(t, stream.Send(domain.Request{Control: &domain.ControlRequest{AllowSpontaneous: false}}))
	require.NoError(t, stream.Send(domain.Request{Update: &domain.UpdateRequest{}}))
	cmd, err := stream.Recv()
	require.NoError(t, err)
	assert.Equal(t, domain.CmdSceneBegin, cmd.Type())
}
