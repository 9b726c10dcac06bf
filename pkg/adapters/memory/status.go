package memory

import (
	"context"
	"sync"

	"github.com/aretw0/dsg/pkg/domain"
)

// Status keeps the latest progress record in memory. It implements both
// ports.StatusWriter and ports.StatusReader, so the HTTP and MCP surfaces can
// serve what the engine last wrote.
type Status struct {
	mu      sync.RWMutex
	current domain.Progress
	writes  int
}

// NewStatus returns an idle status holder.
func NewStatus() *Status {
	return &Status{current: domain.Progress{Status: domain.StatusIdle}}
}

func (s *Status) WriteStatus(ctx context.Context, p domain.Progress) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.current = p
	s.writes++
	return nil
}

func (s *Status) ReadStatus(ctx context.Context) (domain.Progress, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.current, nil
}

// Writes counts WriteStatus calls.
func (s *Status) Writes() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.writes
}
