/*
Package mesh derives renderer-consumable geometry from finalized parts.

Every function here is pure: the scene scale state (Normalizer) and the
variable registry are passed in explicitly, and parts are never modified.

  - NodalSurfaceRep: triangle meshes, flattened when normals or colors are per face.
  - PointRep: point clouds with explicit per-vertex RGB and sizes.
  - LineRep: line segments.
  - NormalizeVerts, TexCoords, VertexColors: the shared building blocks.
*/
package mesh

import "errors"

// ErrIndexOutOfRange is returned when a connectivity array references a
// vertex past the end of the coordinates.
var ErrIndexOutOfRange = errors.New("index out of range")
