package mesh

import "github.com/aretw0/dsg/pkg/domain"

// PointCloud is the point cloud derived from a points part.
// Colors holds RGB triples; Sizes is nil when the renderer default applies.
type PointCloud struct {
	Info     *domain.PartInfo
	Vertices []float32
	Colors   []float32
	Sizes    []float32
	Variable *domain.Variable
}

// PointRep derives per-vertex positions, colors and sizes for a part rendered
// as points. It returns nil for any other render kind or an empty part.
func PointRep(part *domain.Part, n Normalizer, vars map[int64]*domain.Variable) *PointCloud {
	if part == nil || part.Empty() || part.Info.Render != domain.RenderPoints {
		return nil
	}
	numVerts := part.NumVertices()
	if numVerts == 0 {
		return nil
	}

	verts := append([]float32(nil), part.Coords[:3*numVerts]...)
	invScale := NormalizeVerts(verts, n)
	rep := &PointCloud{Info: part.Info, Vertices: verts}

	if v := vars[part.Info.ColorVariableID]; v != nil && len(part.ColorValues) == numVerts {
		rep.Colors = VertexColors(part.ColorValues, v)
		rep.Variable = v
	}

	base := part.Info.NodeSizeDefault * invScale
	switch {
	case part.Info.NodeSizeVariableID != domain.NoID && len(part.NodeSizes) == numVerts:
		rep.Sizes = make([]float32, numVerts)
		for i, s := range part.NodeSizes {
			rep.Sizes[i] = s * base
		}
	case invScale != 1:
		rep.Sizes = make([]float32, numVerts)
		for i := range rep.Sizes {
			rep.Sizes[i] = base
		}
	}
	return rep
}
