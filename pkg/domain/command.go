package domain

// CommandType is the tag carried by every record on the scene-update stream.
type CommandType string

const (
	CmdSceneBegin     CommandType = "UPDATE_SCENE_BEGIN"
	CmdSceneEnd       CommandType = "UPDATE_SCENE_END"
	CmdUpdateGroup    CommandType = "UPDATE_GROUP"
	CmdUpdateView     CommandType = "UPDATE_VIEW"
	CmdUpdatePart     CommandType = "UPDATE_PART"
	CmdUpdateGeom     CommandType = "UPDATE_GEOM"
	CmdUpdateVariable CommandType = "UPDATE_VARIABLE"
	CmdUpdateTexture  CommandType = "UPDATE_TEXTURE"
	CmdDeleteID       CommandType = "DELETE_ID"
)

// Command is a single decoded scene-update record.
// Concrete variants are the types below; anything the decoder does not
// recognize becomes an Ignored value.
type Command interface {
	Type() CommandType
}

// SceneBegin opens a scene refresh.
type SceneBegin struct{}

// SceneEnd closes a scene refresh.
type SceneEnd struct{}

// UpdateGroup registers a node of the scene hierarchy.
type UpdateGroup struct {
	Group Group
}

// UpdateView registers the root view group.
type UpdateView struct {
	View View
}

// UpdatePart starts a new part, finalizing the current one.
type UpdatePart struct {
	Part PartInfo
}

// UpdateGeom carries one chunk of one of the current part's arrays.
type UpdateGeom struct {
	Chunk GeomChunk
}

// UpdateVariable registers palette metadata.
type UpdateVariable struct {
	Variable Variable
}

// UpdateTexture announces a texture. The engine only logs it.
type UpdateTexture struct {
	Texture TextureUpdate
}

// DeleteID asks the consumer to drop previously sent ids. The engine only logs it.
type DeleteID struct {
	Delete DeleteIDs
}

// Ignored wraps a record with an unknown tag.
type Ignored struct {
	Raw CommandType
}

func (SceneBegin) Type() CommandType     { return CmdSceneBegin }
func (SceneEnd) Type() CommandType       { return CmdSceneEnd }
func (UpdateGroup) Type() CommandType    { return CmdUpdateGroup }
func (UpdateView) Type() CommandType     { return CmdUpdateView }
func (UpdatePart) Type() CommandType     { return CmdUpdatePart }
func (UpdateGeom) Type() CommandType     { return CmdUpdateGeom }
func (UpdateVariable) Type() CommandType { return CmdUpdateVariable }
func (UpdateTexture) Type() CommandType  { return CmdUpdateTexture }
func (DeleteID) Type() CommandType       { return CmdDeleteID }
func (i Ignored) Type() CommandType      { return i.Raw }

// PayloadType identifies which part array an UPDATE_GEOM chunk belongs to.
type PayloadType string

const (
	PayloadCoordinates  PayloadType = "COORDINATES"
	PayloadTriangles    PayloadType = "TRIANGLES"
	PayloadLines        PayloadType = "LINES"
	PayloadElemNormals  PayloadType = "ELEM_NORMALS"
	PayloadNodeNormals  PayloadType = "NODE_NORMALS"
	PayloadElemVariable PayloadType = "ELEM_VARIABLE"
	PayloadNodeVariable PayloadType = "NODE_VARIABLE"
)

// Elemental reports whether the payload is attributed per element (face or
// segment) rather than per node.
func (p PayloadType) Elemental() bool {
	return p == PayloadElemNormals || p == PayloadElemVariable
}

// GeomChunk is a partial update to a logical part array.
// Offsets and sizes are expressed in array elements, not bytes.
type GeomChunk struct {
	PayloadType    PayloadType `json:"payload_type" mapstructure:"payload_type"`
	ChunkOffset    uint32      `json:"chunk_offset" mapstructure:"chunk_offset"`
	TotalArraySize uint32      `json:"total_array_size" mapstructure:"total_array_size"`
	IntArray       []uint32    `json:"int_array,omitempty" mapstructure:"int_array"`
	FltArray       []float32   `json:"flt_array,omitempty" mapstructure:"flt_array"`
	VariableID     int64       `json:"variable_id,omitempty" mapstructure:"variable_id"`
	Hash           string      `json:"hash,omitempty" mapstructure:"hash"`
}

// TextureUpdate is the body of an UPDATE_TEXTURE record.
type TextureUpdate struct {
	ID     int64  `json:"id" mapstructure:"id"`
	Width  uint32 `json:"width" mapstructure:"width"`
	Height uint32 `json:"height" mapstructure:"height"`
	Format string `json:"format,omitempty" mapstructure:"format"`
	Hash   string `json:"hash,omitempty" mapstructure:"hash"`
}

// DeleteIDs is the body of a DELETE_ID record.
type DeleteIDs struct {
	IDs []int64 `json:"id" mapstructure:"id"`
}
