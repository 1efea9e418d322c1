package memory

import (
	"context"
	"fmt"
	"sync"

	"safisha/internal/sheets"
)

// Store is an in-process mirror sheet.
type Store struct {
	mu    sync.Mutex
	items []sheets.Entry
}

var _ sheets.Mirror = (*Store)(nil)

func New(seed ...sheets.Entry) *Store {
	return &Store{items: append([]sheets.Entry(nil), seed...)}
}

// AppendEntry stores the entry and returns a synthetic row reference.
// Row 1 is the header, so the first entry lands on row 2.
func (s *Store) AppendEntry(_ context.Context, e sheets.Entry) (string, error) {
	if e.Priority == "" {
		e.Priority = sheets.DefaultPriority
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = append(s.items, e)
	return fmt.Sprintf("mem:%d", len(s.items)+1), nil
}

// ListEntries returns a copy of the stored entries in append order.
func (s *Store) ListEntries(_ context.Context) ([]sheets.Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]sheets.Entry(nil), s.items...), nil
}

func (s *Store) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.items)
}
