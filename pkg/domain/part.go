package domain

import (
	"crypto/sha256"
	"encoding/hex"
	"hash"
	"strconv"
)

// NoID marks an unset id reference (color or size variable).
const NoID int64 = 0

// RenderKind selects how a part is drawn.
type RenderKind string

const (
	RenderSurface RenderKind = "surface"
	RenderPoints  RenderKind = "points"
)

// PartInfo is the metadata carried by an UPDATE_PART record.
type PartInfo struct {
	ID                 int64      `json:"id" mapstructure:"id"`
	ParentID           int64      `json:"parent_id" mapstructure:"parent_id"`
	Name               string     `json:"name" mapstructure:"name"`
	Render             RenderKind `json:"render" mapstructure:"render"`
	FillColor          [4]float32 `json:"fill_color" mapstructure:"fill_color"`
	Diffuse            float32    `json:"diffuse,omitempty" mapstructure:"diffuse"`
	NodeSizeDefault    float32    `json:"node_size_default,omitempty" mapstructure:"node_size_default"`
	ColorVariableID    int64      `json:"color_variableid,omitempty" mapstructure:"color_variableid"`
	NodeSizeVariableID int64      `json:"node_size_variableid,omitempty" mapstructure:"node_size_variableid"`
	Hash               string     `json:"hash,omitempty" mapstructure:"hash"`
}

// Part is the geometry block currently being assembled from UPDATE_GEOM chunks.
//
// Arrays are stored flat: Coords and Normals hold xyz triples, Triangles three
// indices per face, Lines two per segment. ColorValues and NodeSizes hold one
// scalar per node, or per element when the matching Elemental flag is set.
type Part struct {
	Info *PartInfo

	Coords           []float32
	Triangles        []uint32
	Lines            []uint32
	Normals          []float32
	NormalsElemental bool
	ColorValues      []float32
	ColorElemental   bool
	NodeSizes        []float32

	hash      hash.Hash
	fragments map[string]string
	chunks    int
}

// NewPart returns a part armed for the given metadata. A nil info yields the
// empty part that exists between SceneBegin and the first UpdatePart.
func NewPart(info *PartInfo) *Part {
	p := &Part{}
	p.Reset(info)
	return p
}

// Reset drops all arrays and re-arms the part for a new metadata record.
// The hash chain is re-seeded with the metadata hash.
func (p *Part) Reset(info *PartInfo) {
	p.Info = info
	p.Coords = nil
	p.Triangles = nil
	p.Lines = nil
	p.Normals = nil
	p.NormalsElemental = false
	p.ColorValues = nil
	p.ColorElemental = false
	p.NodeSizes = nil
	p.chunks = 0
	p.fragments = make(map[string]string)
	p.hash = sha256.New()
	if info != nil {
		p.hash.Write([]byte(info.Hash))
	}
}

// Empty reports whether the part has no metadata.
func (p *Part) Empty() bool {
	return p.Info == nil
}

// NumVertices is the number of xyz triples in Coords.
func (p *Part) NumVertices() int {
	return len(p.Coords) / 3
}

// Chunks is the number of geometry chunks merged since the last Reset.
func (p *Part) Chunks() int {
	return p.chunks
}

// Digest returns the hex SHA-256 fingerprint of the commands applied so far.
func (p *Part) Digest() string {
	return hex.EncodeToString(p.hash.Sum(nil))
}

// Merge writes one chunk into the matching array.
//
// The first chunk of an array allocates a zero-filled buffer of
// TotalArraySize elements; a later chunk declaring a different size resizes
// the buffer, keeping what was already written. Chunks may arrive in any order
// and a resent range simply overwrites. Variable chunks are copied only when
// their id is the part's color or node-size variable.
//
// Merge returns false when the payload type is not one a part stores.
func (p *Part) Merge(c GeomChunk) bool {
	p.chunks++
	merged := true
	key := fragmentKey(c)

	switch c.PayloadType {
	case PayloadCoordinates:
		p.Coords = mergeInto(p.Coords, c.ChunkOffset, c.TotalArraySize, c.FltArray)
	case PayloadTriangles:
		p.Triangles = mergeInto(p.Triangles, c.ChunkOffset, c.TotalArraySize, c.IntArray)
	case PayloadLines:
		p.Lines = mergeInto(p.Lines, c.ChunkOffset, c.TotalArraySize, c.IntArray)
	case PayloadElemNormals, PayloadNodeNormals:
		p.Normals = mergeInto(p.Normals, c.ChunkOffset, c.TotalArraySize, c.FltArray)
		p.NormalsElemental = c.PayloadType.Elemental()
	case PayloadElemVariable, PayloadNodeVariable:
		if p.Info != nil && c.VariableID != NoID {
			if c.VariableID == p.Info.ColorVariableID {
				p.ColorValues = mergeInto(p.ColorValues, c.ChunkOffset, c.TotalArraySize, c.FltArray)
				p.ColorElemental = c.PayloadType.Elemental()
			}
			if c.VariableID == p.Info.NodeSizeVariableID {
				p.NodeSizes = mergeInto(p.NodeSizes, c.ChunkOffset, c.TotalArraySize, c.FltArray)
			}
		}
	default:
		merged = false
	}

	p.absorb(key, c.Hash)
	return merged
}

// Skip accounts for a chunk whose payload is discarded. The chunk still
// counts and still feeds the digest.
func (p *Part) Skip(c GeomChunk) {
	p.chunks++
	p.absorb(fragmentKey(c), c.Hash)
}

// absorb feeds a fragment hash into the digest. Consecutive chunks of one
// logical array share a fragment; absorbing it once keeps the digest
// independent of how the array was split.
func (p *Part) absorb(key, fragment string) {
	if last, ok := p.fragments[key]; ok && last == fragment {
		return
	}
	p.fragments[key] = fragment
	p.hash.Write([]byte(fragment))
}

func fragmentKey(c GeomChunk) string {
	switch c.PayloadType {
	case PayloadElemNormals, PayloadNodeNormals:
		return "normals"
	case PayloadElemVariable, PayloadNodeVariable:
		return "variable:" + strconv.FormatInt(c.VariableID, 10)
	}
	return string(c.PayloadType)
}

func mergeInto[T any](buf []T, offset, total uint32, payload []T) []T {
	size := int(total)
	if end := int(offset) + len(payload); end > size {
		size = end
	}
	if len(buf) != size {
		resized := make([]T, size)
		copy(resized, buf)
		buf = resized
	}
	copy(buf[offset:], payload)
	return buf
}
