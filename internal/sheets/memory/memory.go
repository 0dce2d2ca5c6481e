// Package memory is an in-process spreadsheet source for development and
// tests.
package memory

import (
	"context"
	"errors"
	"fmt"
	"sync"

	ports "despesas/internal/sheets"
	"despesas/internal/table"
)

var _ ports.TableSource = (*Source)(nil)

// ErrRangeNotFound is returned for ranges never Put.
var ErrRangeNotFound = errors.New("range not found")

type Source struct {
	mu     sync.Mutex
	tables map[string]table.Table
	calls  int
}

func New() *Source {
	return &Source{tables: make(map[string]table.Table)}
}

func key(spreadsheetID, rng string) string {
	return spreadsheetID + "|" + rng
}

// Put registers t as the content of rng in spreadsheetID.
func (s *Source) Put(spreadsheetID, rng string, t table.Table) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tables[key(spreadsheetID, rng)] = t
}

// FetchTable returns the table registered for the range.
func (s *Source) FetchTable(_ context.Context, spreadsheetID, rng string) (table.Table, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	t, ok := s.tables[key(spreadsheetID, rng)]
	if !ok {
		return table.Table{}, fmt.Errorf("%w: %s!%s", ErrRangeNotFound, spreadsheetID, rng)
	}
	return t, nil
}

// Calls reports how many fetches were served.
func (s *Source) Calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls
}
