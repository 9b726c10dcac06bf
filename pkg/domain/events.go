package domain

import (
	"context"
	"time"
)

// CommandEvent is emitted after the engine has applied a command.
type CommandEvent struct {
	Timestamp time.Time     `json:"timestamp"`
	Type      CommandType   `json:"type"`
	Duration  time.Duration `json:"duration"`
	Updating  bool          `json:"updating"`
}

// PartEvent is emitted after a part has been handed to the UpdateHandler.
type PartEvent struct {
	Timestamp time.Time `json:"timestamp"`
	PartID    int64     `json:"part_id"`
	Name      string    `json:"name"`
	Digest    string    `json:"digest"`
	Vertices  int       `json:"vertices"`
	Chunks    int       `json:"chunks"`
	Empty     bool      `json:"empty"`
}

// UpdateEvent marks the beginning or end of a scene refresh.
type UpdateEvent struct {
	Timestamp time.Time     `json:"timestamp"`
	Parts     int           `json:"parts"`
	Elapsed   time.Duration `json:"elapsed,omitempty"`
}

// LifecycleHooks defines callbacks for engine observability.
// Any field may be nil.
type LifecycleHooks struct {
	OnCommand       func(context.Context, *CommandEvent)
	OnPartFinalized func(context.Context, *PartEvent)
	OnUpdateBegin   func(context.Context, *UpdateEvent)
	OnUpdateEnd     func(context.Context, *UpdateEvent)
}
