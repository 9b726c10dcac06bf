package domain

// Envelope is the wire form of a Command: a tag plus at most one populated body.
// It is shared by the gRPC transport and capture files.
type Envelope struct {
	CommandType CommandType    `json:"command_type" mapstructure:"command_type"`
	Group       *Group         `json:"group,omitempty" mapstructure:"group"`
	View        *View          `json:"view,omitempty" mapstructure:"view"`
	Part        *PartInfo      `json:"part,omitempty" mapstructure:"part"`
	Geometry    *GeomChunk     `json:"geometry,omitempty" mapstructure:"geometry"`
	Variable    *Variable      `json:"variable,omitempty" mapstructure:"variable"`
	Texture     *TextureUpdate `json:"texture,omitempty" mapstructure:"texture"`
	Delete      *DeleteIDs     `json:"delete,omitempty" mapstructure:"delete"`
}

// Decode converts an envelope into its Command variant.
// Unknown tags, and known tags missing their body, decode to Ignored.
func Decode(env Envelope) Command {
	switch env.CommandType {
	case CmdSceneBegin:
		return SceneBegin{}
	case CmdSceneEnd:
		return SceneEnd{}
	case CmdUpdateGroup:
		if env.Group != nil {
			return UpdateGroup{Group: *env.Group}
		}
	case CmdUpdateView:
		if env.View != nil {
			return UpdateView{View: *env.View}
		}
	case CmdUpdatePart:
		if env.Part != nil {
			return UpdatePart{Part: *env.Part}
		}
	case CmdUpdateGeom:
		if env.Geometry != nil {
			return UpdateGeom{Chunk: *env.Geometry}
		}
	case CmdUpdateVariable:
		if env.Variable != nil {
			return UpdateVariable{Variable: *env.Variable}
		}
	case CmdUpdateTexture:
		if env.Texture != nil {
			return UpdateTexture{Texture: *env.Texture}
		}
	case CmdDeleteID:
		if env.Delete != nil {
			return DeleteID{Delete: *env.Delete}
		}
	}
	return Ignored{Raw: env.CommandType}
}

// Encode converts a Command back into its wire envelope.
func Encode(cmd Command) Envelope {
	env := Envelope{CommandType: cmd.Type()}
	switch c := cmd.(type) {
	case UpdateGroup:
		env.Group = &c.Group
	case UpdateView:
		env.View = &c.View
	case UpdatePart:
		env.Part = &c.Part
	case UpdateGeom:
		env.Geometry = &c.Chunk
	case UpdateVariable:
		env.Variable = &c.Variable
	case UpdateTexture:
		env.Texture = &c.Texture
	case DeleteID:
		env.Delete = &c.Delete
	}
	return env
}
