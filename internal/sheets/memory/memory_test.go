package memory

import (
	"context"
	"errors"
	"testing"

	"despesas/internal/table"
)

func TestSourcePutAndFetch(t *testing.T) {
	s := New()
	want := table.Table{Headers: []string{"data"}, Rows: [][]table.Cell{{table.Number("45366")}}}
	s.Put("id", "A1:A", want)

	got, err := s.FetchTable(context.Background(), "id", "A1:A")
	if err != nil {
		t.Fatalf("FetchTable: %v", err)
	}
	if len(got.Rows) != 1 || got.Cell(0, 0) != table.Number("45366") {
		t.Fatalf("unexpected table %+v", got)
	}

	if _, err := s.FetchTable(context.Background(), "id", "B1:B"); !errors.Is(err, ErrRangeNotFound) {
		t.Fatalf("expected ErrRangeNotFound, got %v", err)
	}
	if s.Calls() != 2 {
		t.Fatalf("Calls = %d, want 2", s.Calls())
	}
}
