package handler

import (
	"context"
	"io"
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/aretw0/dsg/pkg/domain"
	"github.com/aretw0/dsg/pkg/mesh"
	"github.com/aretw0/dsg/pkg/ports"
)

// PartSummary describes one reconstructed part.
type PartSummary struct {
	ID        int64             `json:"id"`
	ParentID  int64             `json:"parent_id"`
	Name      string            `json:"name"`
	Render    domain.RenderKind `json:"render"`
	Digest    string            `json:"digest"`
	Chunks    int               `json:"chunks"`
	Vertices  int               `json:"vertices"`
	Triangles int               `json:"triangles,omitempty"`
	Segments  int               `json:"segments,omitempty"`
	Points    int               `json:"points,omitempty"`
	Variable  string            `json:"variable,omitempty"`
	Flattened bool              `json:"flattened,omitempty"`
	Error     string            `json:"error,omitempty"`
}

// GroupSummary describes one group or view.
type GroupSummary struct {
	ID       int64  `json:"id"`
	ParentID int64  `json:"parent_id"`
	Name     string `json:"name"`
	View     bool   `json:"view,omitempty"`
}

// VariableSummary describes one palette variable.
type VariableSummary struct {
	ID     int64   `json:"id"`
	Name   string  `json:"name"`
	Levels int     `json:"levels"`
	Min    float32 `json:"min"`
	Max    float32 `json:"max"`
}

// Summary is the state of the last completed scene update.
type Summary struct {
	Updates    int               `json:"updates"`
	Completed  time.Time         `json:"completed"`
	Groups     []GroupSummary    `json:"groups"`
	Variables  []VariableSummary `json:"variables"`
	Parts      []PartSummary     `json:"parts"`
	Bounds     *domain.Bounds    `json:"bounds,omitempty"`
	TimeLimits [2]float64        `json:"time_limits"`
	Normalized bool              `json:"normalized"`
}

// Recorder is an UpdateHandler that reconstructs every part and keeps a
// Summary for inspection surfaces. Safe for concurrent readers.
type Recorder struct {
	ports.NopHandler

	logger *slog.Logger
	now    func() time.Time

	mu      sync.RWMutex
	pending []PartSummary
	last    Summary
}

// NewRecorder creates a Recorder. logger may be nil.
func NewRecorder(logger *slog.Logger) *Recorder {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return &Recorder{logger: logger, now: time.Now}
}

func (r *Recorder) BeginUpdate(ctx context.Context, scene *domain.Scene) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.pending = nil
	return nil
}

func (r *Recorder) FinalizePart(ctx context.Context, scene *domain.Scene, part *domain.Part) error {
	if part.Empty() {
		return nil
	}
	summary, err := summarize(scene, part)
	if err != nil {
		summary.Error = err.Error()
	}

	r.mu.Lock()
	r.pending = append(r.pending, summary)
	r.mu.Unlock()

	r.logger.Debug("part reconstructed",
		"part", summary.ID,
		"name", summary.Name,
		"vertices", summary.Vertices,
		"triangles", summary.Triangles)
	return err
}

func (r *Recorder) EndUpdate(ctx context.Context, scene *domain.Scene) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	s := Summary{
		Updates:    r.last.Updates + 1,
		Completed:  r.now(),
		Parts:      r.pending,
		TimeLimits: scene.TimeLimits,
		Normalized: scene.Normalize,
	}
	if scene.Bounds != nil {
		b := *scene.Bounds
		s.Bounds = &b
	}
	for id, g := range scene.Groups {
		_, isView := scene.Views[id]
		s.Groups = append(s.Groups, GroupSummary{ID: id, ParentID: g.ParentID, Name: g.Name, View: isView})
	}
	sort.Slice(s.Groups, func(i, j int) bool { return s.Groups[i].ID < s.Groups[j].ID })

	for id, v := range scene.Variables {
		lo, hi, _ := v.LevelRange()
		s.Variables = append(s.Variables, VariableSummary{ID: id, Name: v.Name, Levels: len(v.Levels), Min: lo, Max: hi})
	}
	sort.Slice(s.Variables, func(i, j int) bool { return s.Variables[i].ID < s.Variables[j].ID })

	r.last = s
	r.pending = nil
	return nil
}

// Summary returns the last completed scene summary.
func (r *Recorder) Summary() Summary {
	r.mu.RLock()
	defer r.mu.RUnlock()
	s := r.last
	s.Groups = append([]GroupSummary(nil), r.last.Groups...)
	s.Variables = append([]VariableSummary(nil), r.last.Variables...)
	s.Parts = append([]PartSummary(nil), r.last.Parts...)
	return s
}

// Part returns the summary of one part of the last completed scene.
func (r *Recorder) Part(id int64) (PartSummary, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, p := range r.last.Parts {
		if p.ID == id {
			return p, true
		}
	}
	return PartSummary{}, false
}

func summarize(scene *domain.Scene, part *domain.Part) (PartSummary, error) {
	info := part.Info
	s := PartSummary{
		ID:       info.ID,
		ParentID: info.ParentID,
		Name:     info.Name,
		Render:   info.Render,
		Digest:   part.Digest(),
		Chunks:   part.Chunks(),
		Vertices: part.NumVertices(),
	}
	n := mesh.NormalizerFor(scene)

	if info.Render == domain.RenderPoints {
		if cloud := mesh.PointRep(part, n, scene.Variables); cloud != nil {
			s.Points = len(cloud.Vertices) / 3
			if cloud.Variable != nil {
				s.Variable = cloud.Variable.Name
			}
		}
		return s, nil
	}

	surface, err := mesh.NodalSurfaceRep(part, n, scene.Variables)
	if err != nil {
		return s, err
	}
	if surface != nil {
		s.Triangles = len(surface.Indices) / 3
		s.Flattened = surface.Flat
		if surface.Variable != nil {
			s.Variable = surface.Variable.Name
		}
	}

	lines, err := mesh.LineRep(part, n, scene.Variables)
	if err != nil {
		return s, err
	}
	if lines != nil {
		s.Segments = len(lines.Indices) / 2
		if s.Variable == "" && lines.Variable != nil {
			s.Variable = lines.Variable.Name
		}
	}
	return s, nil
}
