package domain

import (
	"fmt"
	"math"
	"strconv"
	"strings"
)

// SceneBoundsAttribute is the group attribute holding the scene bounding box
// as six comma separated floats: xmin,ymin,zmin,xmax,ymax,zmax.
const SceneBoundsAttribute = "ENS_SCENE_BOUNDS"

// Group is a node in the scene hierarchy.
type Group struct {
	ID         int64             `json:"id" mapstructure:"id"`
	ParentID   int64             `json:"parent_id" mapstructure:"parent_id"`
	Name       string            `json:"name" mapstructure:"name"`
	Kind       string            `json:"kind,omitempty" mapstructure:"kind"`
	Matrix     []float32         `json:"matrix4x4,omitempty" mapstructure:"matrix4x4"`
	Attributes map[string]string `json:"attributes,omitempty" mapstructure:"attributes"`
}

// SceneBounds extracts the ENS_SCENE_BOUNDS attribute, if present.
func (g Group) SceneBounds() (*Bounds, error) {
	raw, ok := g.Attributes[SceneBoundsAttribute]
	if !ok {
		return nil, nil
	}
	b, err := ParseBounds(raw)
	if err != nil {
		return nil, err
	}
	return &b, nil
}

// View is the root group of a scene. It carries the simulation time
// interval and camera parameters.
type View struct {
	Group       `mapstructure:",squash"`
	Timeline    [2]float64 `json:"timeline" mapstructure:"timeline"`
	LookAt      [3]float32 `json:"lookat,omitempty" mapstructure:"lookat"`
	LookFrom    [3]float32 `json:"lookfrom,omitempty" mapstructure:"lookfrom"`
	UpVector    [3]float32 `json:"upvector,omitempty" mapstructure:"upvector"`
	FieldOfView float32    `json:"fieldofview,omitempty" mapstructure:"fieldofview"`
	AspectRatio float32    `json:"aspectratio,omitempty" mapstructure:"aspectratio"`
	NearFar     [2]float32 `json:"nearfar,omitempty" mapstructure:"nearfar"`
	Hash        string     `json:"hash,omitempty" mapstructure:"hash"`
}

// Level is one entry of a variable's level table.
type Level struct {
	Value float32 `json:"value" mapstructure:"value"`
	Name  string  `json:"name,omitempty" mapstructure:"name"`
}

// Variable is palette and legend metadata referenced by parts.
// Texture holds N RGBA texels, four bytes each.
type Variable struct {
	ID       int64   `json:"id" mapstructure:"id"`
	ParentID int64   `json:"parent_id,omitempty" mapstructure:"parent_id"`
	Name     string  `json:"name" mapstructure:"name"`
	Texture  []byte  `json:"texture,omitempty" mapstructure:"texture"`
	Levels   []Level `json:"levels,omitempty" mapstructure:"levels"`
	Hash     string  `json:"hash,omitempty" mapstructure:"hash"`
}

// NumTexels returns the number of complete RGBA samples in the palette.
func (v *Variable) NumTexels() int {
	return len(v.Texture) / 4
}

// LevelRange returns the min and max of the level table.
// ok is false when the table is empty.
func (v *Variable) LevelRange() (lo, hi float32, ok bool) {
	if len(v.Levels) == 0 {
		return 0, 0, false
	}
	lo, hi = v.Levels[0].Value, v.Levels[0].Value
	for _, l := range v.Levels[1:] {
		lo = min(lo, l.Value)
		hi = max(hi, l.Value)
	}
	return lo, hi, true
}

// Bounds is an axis-aligned box: xmin,ymin,zmin,xmax,ymax,zmax.
type Bounds [6]float32

// ParseBounds parses the ENS_SCENE_BOUNDS attribute format.
func ParseBounds(raw string) (Bounds, error) {
	var b Bounds
	fields := strings.Split(raw, ",")
	if len(fields) != len(b) {
		return b, fmt.Errorf("%w: expected 6 values, got %d", ErrInvalidBounds, len(fields))
	}
	for i, f := range fields {
		v, err := strconv.ParseFloat(strings.TrimSpace(f), 32)
		if err != nil {
			return b, fmt.Errorf("%w: %v", ErrInvalidBounds, err)
		}
		b[i] = float32(v)
	}
	return b, nil
}

// Center returns the midpoint of the box.
func (b Bounds) Center() [3]float32 {
	return [3]float32{
		(b[0] + b[3]) * 0.5,
		(b[1] + b[4]) * 0.5,
		(b[2] + b[5]) * 0.5,
	}
}

// MaxExtent returns the largest edge length of the box.
func (b Bounds) MaxExtent() float32 {
	return max(b[3]-b[0], b[4]-b[1], b[5]-b[2])
}

// Scene holds the registries of one scene update. The engine owns it and
// resets it on every UPDATE_SCENE_BEGIN; handlers receive it read-only for the
// duration of a callback and must copy anything they keep.
type Scene struct {
	Groups    map[int64]*Group
	Views     map[int64]*View
	Variables map[int64]*Variable

	// Bounds is the last ENS_SCENE_BOUNDS seen, nil when unknown.
	Bounds *Bounds

	// Normalize reports whether consumers should normalize coordinates into
	// the unit box centered on Bounds.
	Normalize bool

	// TimeLimits is the union of every scaled view timeline. It never shrinks.
	TimeLimits [2]float64

	// CurTimeline is the scaled timeline of the most recent view.
	CurTimeline [2]float64

	// MeshBlockCount counts finalized parts; consumers use it to build
	// unique mesh names within a group.
	MeshBlockCount int
}

// NewScene returns an empty scene with inverted time limits.
func NewScene(normalize bool) *Scene {
	s := &Scene{
		Normalize:  normalize,
		TimeLimits: [2]float64{math.MaxFloat64, -math.MaxFloat64},
	}
	s.Reset()
	return s
}

// Reset clears the per-update registries. TimeLimits is kept so the bound
// stays monotonic across refreshes.
func (s *Scene) Reset() {
	s.Groups = make(map[int64]*Group)
	s.Views = make(map[int64]*View)
	s.Variables = make(map[int64]*Variable)
	s.Bounds = nil
	s.MeshBlockCount = 0
}

// ExpandTime grows TimeLimits to include the given interval.
func (s *Scene) ExpandTime(timeline [2]float64) {
	s.TimeLimits[0] = min(s.TimeLimits[0], timeline[0])
	s.TimeLimits[1] = max(s.TimeLimits[1], timeline[1])
}
