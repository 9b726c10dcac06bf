package mesh

import "github.com/aretw0/dsg/pkg/domain"

// Normalizer carries the scene-wide scale state used by every representation.
type Normalizer struct {
	Enabled bool
	Bounds  *domain.Bounds
}

// NormalizerFor builds a Normalizer from the scene registries.
func NormalizerFor(scene *domain.Scene) Normalizer {
	if scene == nil {
		return Normalizer{}
	}
	return Normalizer{Enabled: scene.Normalize, Bounds: scene.Bounds}
}

// NormalizeVerts maps verts (xyz triples) in place into a unit box centered on
// the scene bounds and returns the inverse scale 1/s, where s is the largest
// extent of the bounds. When disabled or when the bounds are unknown it
// returns 1 and leaves verts untouched.
func NormalizeVerts(verts []float32, n Normalizer) float32 {
	if !n.Enabled || n.Bounds == nil {
		return 1
	}
	center := n.Bounds.Center()
	s := n.Bounds.MaxExtent()
	if s == 0 {
		s = 1
	}
	for i := 0; i+2 < len(verts); i += 3 {
		verts[i] = (verts[i] - center[0]) / s
		verts[i+1] = (verts[i+1] - center[1]) / s
		verts[i+2] = (verts[i+2] - center[2]) / s
	}
	return 1 / s
}
