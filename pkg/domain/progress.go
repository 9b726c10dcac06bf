package domain

// ProgressStatus is the coarse state reported in the status artifact.
type ProgressStatus string

const (
	StatusIdle    ProgressStatus = "idle"
	StatusWorking ProgressStatus = "working"
)

// Progress is the record written to the status artifact while an update runs.
// StartTime is in seconds since the Unix epoch.
type Progress struct {
	Status           ProgressStatus `json:"status"`
	StartTime        float64        `json:"start_time"`
	ProcessedBuffers uint64         `json:"processed_buffers"`
	TotalBuffers     uint64         `json:"total_buffers"`
}
