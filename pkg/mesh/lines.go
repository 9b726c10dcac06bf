package mesh

import (
	"fmt"

	"github.com/aretw0/dsg/pkg/domain"
)

// LineSet is the segment list derived from a part's line indices.
type LineSet struct {
	Info      *domain.PartInfo
	Vertices  []float32
	Indices   []uint32
	TexCoords []float32
	Variable  *domain.Variable
}

// LineRep derives line segments from a part. It returns nil when the part has
// no line indices. Elemental colors flatten the segments the same way
// NodalSurfaceRep flattens triangles, one color value per segment.
func LineRep(part *domain.Part, n Normalizer, vars map[int64]*domain.Variable) (*LineSet, error) {
	if part == nil || part.Empty() || len(part.Lines) < 2 {
		return nil, nil
	}
	numVerts := part.NumVertices()
	numSegs := len(part.Lines) / 2
	segs := part.Lines[:2*numSegs]
	if err := checkIndices(segs, numVerts); err != nil {
		return nil, fmt.Errorf("part %d: %w", part.Info.ID, err)
	}

	verts := append([]float32(nil), part.Coords[:3*numVerts]...)
	NormalizeVerts(verts, n)

	variable := vars[part.Info.ColorVariableID]
	var colors []float32
	if variable != nil {
		colors = usable(part.ColorValues, 1, part.ColorElemental, numSegs, numVerts)
	}

	set := &LineSet{Info: part.Info}
	if colors != nil && part.ColorElemental {
		set.Vertices = make([]float32, 3*len(segs))
		set.Indices = make([]uint32, len(segs))
		flat := make([]float32, len(segs))
		for i, src := range segs {
			set.Indices[i] = uint32(i)
			copy(set.Vertices[3*i:3*i+3], verts[3*src:3*src+3])
			flat[i] = colors[i/2]
		}
		colors = flat
	} else {
		set.Vertices = verts
		set.Indices = append([]uint32(nil), segs...)
		if colors != nil {
			colors = colors[:numVerts]
		}
	}

	if colors != nil {
		set.TexCoords = TexCoords(colors, variable)
		set.Variable = variable
	}
	return set, nil
}
