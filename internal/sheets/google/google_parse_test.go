package google

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	goption "google.golang.org/api/option"
	gsheet "google.golang.org/api/sheets/v4"

	"despesas/internal/log"
	"despesas/internal/table"
)

func ledgerValues() [][]interface{} {
	return [][]interface{}{
		{"Data", "Descrição", "Tipo", "Valor", "Despesa", "Status", "Centro de Custos"},
		{45366.0, "Aluguel", "despesa", 1500.5, "Moradia", "pago", "Casa"},
		{"15/03/2024", "Mercado", "despesa", "R$ 350,25", "Alimentação", "pendente"},
		{"", "", ""},
	}
}

func TestValuesToTable(t *testing.T) {
	tbl := valuesToTable(ledgerValues())

	if len(tbl.Headers) != 7 || tbl.Headers[1] != "Descrição" {
		t.Fatalf("unexpected headers %v", tbl.Headers)
	}
	if len(tbl.Rows) != 2 {
		t.Fatalf("got %d rows, want 2 (trailing blank dropped)", len(tbl.Rows))
	}

	if got := tbl.Cell(0, 0); got != table.Number("45366") {
		t.Fatalf("serial date cell = %+v", got)
	}
	if got := tbl.Cell(0, 3); got != table.Number("1500.5") {
		t.Fatalf("amount cell = %+v", got)
	}
	if got := tbl.Cell(1, 3); got != table.Text("R$ 350,25") {
		t.Fatalf("text amount cell = %+v", got)
	}
	if got := tbl.Cell(1, 6); got != (table.Cell{}) {
		t.Fatalf("short row should read as empty, got %+v", got)
	}
}

func TestValuesToTable_Empty(t *testing.T) {
	tbl := valuesToTable(nil)
	if len(tbl.Headers) != 0 || len(tbl.Rows) != 0 {
		t.Fatalf("expected empty table, got %+v", tbl)
	}
}

func TestCellFromValue(t *testing.T) {
	tests := []struct {
		in   interface{}
		want table.Cell
	}{
		{nil, table.Text("")},
		{12.0, table.Number("12")},
		{-0.25, table.Number("-0.25")},
		{"texto", table.Text("texto")},
		{true, table.Text("true")},
	}
	for _, tt := range tests {
		if got := cellFromValue(tt.in); got != tt.want {
			t.Errorf("cellFromValue(%v) = %+v, want %+v", tt.in, got, tt.want)
		}
	}
}

func TestClient_FetchTable(t *testing.T) {
	var gotQuery string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.Contains(r.URL.Path, "/spreadsheets/sheet-123/values/") {
			http.NotFound(w, r)
			return
		}
		gotQuery = r.URL.RawQuery
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]interface{}{
			"range":  "Despesas!A1:G4",
			"values": ledgerValues(),
		})
	}))
	defer srv.Close()

	svc, err := gsheet.NewService(context.Background(),
		goption.WithEndpoint(srv.URL+"/"),
		goption.WithoutAuthentication(),
		goption.WithHTTPClient(srv.Client()))
	if err != nil {
		t.Fatalf("NewService: %v", err)
	}
	c := NewWithService(svc, log.Discard())

	tbl, err := c.FetchTable(context.Background(), "sheet-123", "Despesas!A1:G")
	if err != nil {
		t.Fatalf("FetchTable: %v", err)
	}
	if len(tbl.Rows) != 2 || tbl.Cell(0, 0).Kind != table.KindNumber {
		t.Fatalf("unexpected table %+v", tbl)
	}
	if !strings.Contains(gotQuery, "valueRenderOption=UNFORMATTED_VALUE") ||
		!strings.Contains(gotQuery, "dateTimeRenderOption=SERIAL_NUMBER") {
		t.Fatalf("render options not sent: %s", gotQuery)
	}

	if _, err := c.FetchTable(context.Background(), "", "A1:B"); err == nil {
		t.Fatal("expected error for missing spreadsheet id")
	}
}
