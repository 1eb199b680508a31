package memory

import (
	"context"
	"sync"

	"github.com/mcoot/arenactl/internal/audit"
)

// Sink is an in-memory audit sink
type Sink struct {
	mu      sync.RWMutex
	entries []audit.Entry
	flushes int
}

// New creates an empty in-memory sink
func New() *Sink {
	return &Sink{}
}

// Ensure Sink implements the interface
var _ audit.Sink = (*Sink)(nil)

func (s *Sink) Record(ctx context.Context, entry audit.Entry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = append(s.entries, entry)
	return nil
}

func (s *Sink) Flush(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.flushes++
	return nil
}

// Entries returns a copy of all recorded entries
func (s *Sink) Entries() []audit.Entry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	result := make([]audit.Entry, len(s.entries))
	copy(result, s.entries)
	return result
}

// ByAction returns recorded entries with the given action
func (s *Sink) ByAction(action audit.Action) []audit.Entry {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var result []audit.Entry
	for _, e := range s.entries {
		if e.Action == action {
			result = append(result, e)
		}
	}
	return result
}

// Flushes returns how many times Flush was called
func (s *Sink) Flushes() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.flushes
}
