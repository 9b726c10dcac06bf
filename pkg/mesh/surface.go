package mesh

import (
	"fmt"

	"github.com/aretw0/dsg/pkg/domain"
)

// Surface is the triangle mesh derived from a part.
type Surface struct {
	Info      *domain.PartInfo
	Vertices  []float32
	Indices   []uint32
	Normals   []float32
	TexCoords []float32
	Variable  *domain.Variable

	// Flat is set when the mesh was flattened to one vertex per corner.
	Flat bool
}

// NodalSurfaceRep derives a renderer-ready triangle mesh from a finalized part.
//
// It returns nil when the part has no triangles. Coordinates are normalized on
// a copy; the part itself is not modified. When normals or colors are
// elemental the mesh is flattened: every triangle gets three fresh vertices
// so per-face values need no interpolation.
func NodalSurfaceRep(part *domain.Part, n Normalizer, vars map[int64]*domain.Variable) (*Surface, error) {
	if part == nil || part.Empty() || len(part.Triangles) == 0 {
		return nil, nil
	}
	numVerts := part.NumVertices()
	numFaces := len(part.Triangles) / 3
	tris := part.Triangles[:3*numFaces]
	if err := checkIndices(tris, numVerts); err != nil {
		return nil, fmt.Errorf("part %d: %w", part.Info.ID, err)
	}

	verts := append([]float32(nil), part.Coords[:3*numVerts]...)
	NormalizeVerts(verts, n)

	normals := usable(part.Normals, 3, part.NormalsElemental, numFaces, numVerts)
	variable := vars[part.Info.ColorVariableID]
	var colors []float32
	if variable != nil {
		colors = usable(part.ColorValues, 1, part.ColorElemental, numFaces, numVerts)
	}

	rep := &Surface{Info: part.Info}
	rep.Flat = (normals != nil && part.NormalsElemental) || (colors != nil && part.ColorElemental)
	if rep.Flat {
		rep.Vertices, rep.Indices, rep.Normals, colors = flattenTriangles(tris, verts, normals, part.NormalsElemental, colors, part.ColorElemental)
	} else {
		rep.Vertices = verts
		rep.Indices = append([]uint32(nil), tris...)
		if normals != nil {
			rep.Normals = append([]float32(nil), normals[:3*numVerts]...)
		}
		if colors != nil {
			colors = colors[:numVerts]
		}
	}

	if colors != nil {
		rep.TexCoords = TexCoords(colors, variable)
		rep.Variable = variable
	}
	return rep, nil
}

// flattenTriangles emits three new vertices per triangle with identity
// indices. Normals and colors are resolved independently, by face when their
// elemental flag is set and by original vertex otherwise.
func flattenTriangles(tris []uint32, verts, normals []float32, normElem bool, colors []float32, colorElem bool) (outVerts []float32, outIdx []uint32, outNorms, outColors []float32) {
	count := len(tris)
	outVerts = make([]float32, 3*count)
	outIdx = make([]uint32, count)
	if normals != nil {
		outNorms = make([]float32, 3*count)
	}
	if colors != nil {
		outColors = make([]float32, count)
	}

	for i, src := range tris {
		face := i / 3
		outIdx[i] = uint32(i)
		copy(outVerts[3*i:3*i+3], verts[3*src:3*src+3])

		if outNorms != nil {
			from := int(src)
			if normElem {
				from = face
			}
			copy(outNorms[3*i:3*i+3], normals[3*from:3*from+3])
		}
		if outColors != nil {
			if colorElem {
				outColors[i] = colors[face]
			} else {
				outColors[i] = colors[src]
			}
		}
	}
	return outVerts, outIdx, outNorms, outColors
}

// usable returns arr when it is long enough for its attribution, nil otherwise.
func usable(arr []float32, stride int, elemental bool, numElems, numVerts int) []float32 {
	want := numVerts
	if elemental {
		want = numElems
	}
	if want == 0 || len(arr) < stride*want {
		return nil
	}
	return arr
}

func checkIndices(idx []uint32, numVerts int) error {
	for _, i := range idx {
		if int(i) >= numVerts {
			return fmt.Errorf("%w: index %d with %d vertices", ErrIndexOutOfRange, i, numVerts)
		}
	}
	return nil
}
