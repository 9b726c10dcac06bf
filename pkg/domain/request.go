package domain

// DefaultMaximumChunkSize is the chunk size requested when none is configured.
const DefaultMaximumChunkSize uint32 = 1024 * 1024

// ControlRequest opens the scene transfer on a new connection.
type ControlRequest struct {
	AllowSpontaneous        bool   `json:"allow_spontaneous"`
	IncludeTemporalGeometry bool   `json:"include_temporal_geometry"`
	AllowIncrementalUpdates bool   `json:"allow_incremental_updates"`
	MaximumChunkSize        uint32 `json:"maximum_chunk_size"`
}

// UpdateRequest asks the server for one scene refresh.
type UpdateRequest struct {
	Temporal bool `json:"temporal"`
}

// Request is the outbound envelope: exactly one field is set.
type Request struct {
	Control *ControlRequest `json:"init,omitempty"`
	Update  *UpdateRequest  `json:"update_request,omitempty"`
}
