package mesh

import (
	"github.com/aretw0/dsg/pkg/domain"
	"github.com/chewxy/math32"
)

// TexCoordT is the fixed second coordinate of every 1-D palette lookup.
const TexCoordT float32 = 0.5

// paletteRange returns the level range used for texture lookups. A
// degenerate range is widened downwards by one so the division stays finite.
func paletteRange(v *domain.Variable) (lo, hi float32) {
	lo, hi, ok := v.LevelRange()
	if !ok {
		return 0, 1
	}
	if lo == hi {
		lo--
	}
	return lo, hi
}

// TexCoords maps scalar values to (s, t) pairs addressing texel centers of
// the variable's palette: s = clamp((value-min)/(max-min), 0, 1) * (N-1)/N + 1/(2N).
func TexCoords(values []float32, v *domain.Variable) []float32 {
	lo, hi := paletteRange(v)
	n := float32(max(v.NumTexels(), 1))
	halfTexel := 1 / (2 * n)
	span := (n - 1) / n

	out := make([]float32, 2*len(values))
	for i, value := range values {
		s := (value - lo) / (hi - lo)
		s = math32.Max(0, math32.Min(1, s))
		out[2*i] = s*span + halfTexel
		out[2*i+1] = TexCoordT
	}
	return out
}

// VertexColors resolves each value to an RGB triple in [0,1] by linear
// interpolation across the palette texels.
func VertexColors(values []float32, v *domain.Variable) []float32 {
	out := make([]float32, 3*len(values))
	n := v.NumTexels()
	if n == 0 {
		return out
	}
	lo, hi, ok := v.LevelRange()
	if !ok {
		lo, hi = 0, 1
	}

	for i, value := range values {
		var rgb [3]float32
		switch {
		case lo == hi:
			switch {
			case value == lo:
				rgb = texel(v, n/2)
			case value < lo:
				rgb = texel(v, 0)
			default:
				rgb = texel(v, n-1)
			}
		case value <= lo:
			rgb = texel(v, 0)
		case value > hi:
			rgb = texel(v, n-1)
		default:
			pos := (value - lo) / (hi - lo) * float32(n-1)
			idx := int(math32.Floor(pos))
			if idx >= n-1 {
				rgb = texel(v, n-1)
				break
			}
			frac := pos - float32(idx)
			a, b := texel(v, idx), texel(v, idx+1)
			for c := range rgb {
				rgb[c] = a[c]*(1-frac) + b[c]*frac
			}
		}
		copy(out[3*i:], rgb[:])
	}
	return out
}

func texel(v *domain.Variable, i int) [3]float32 {
	px := v.Texture[4*i : 4*i+3]
	return [3]float32{
		float32(px[0]) / 255,
		float32(px[1]) / 255,
		float32(px[2]) / 255,
	}
}
