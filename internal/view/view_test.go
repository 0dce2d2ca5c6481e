package view

import (
	"fmt"
	"reflect"
	"testing"

	"github.com/shopspring/decimal"

	"despesas/internal/core"
)

func rec(period, category, status, costCenter, amount string) core.ExpenseRecord {
	return core.ExpenseRecord{
		Date:        core.NewDate(2024, 1, 1),
		PeriodLabel: period,
		Category:    core.Optional(category),
		Status:      status,
		CostCenter:  core.Optional(costCenter),
		Amount:      decimal.RequireFromString(amount),
		EntryType:   core.EntryTypeExpense,
	}
}

func sample() []core.ExpenseRecord {
	return []core.ExpenseRecord{
		rec("2024-03 (Mar)", "Moradia", "pago", "Casa", "1500"),
		rec("2024-01 (Jan)", "Alimentação", "pendente", "", "300.50"),
		rec("2024-03 (Mar)", "Alimentação", "pago", "Casa", "200"),
		rec("2024-02 (Fev)", "", "em aberto", "Empresa", "99.99"),
	}
}

func keys(groups []core.GroupTotal) []string {
	out := make([]string, len(groups))
	for i, g := range groups {
		out[i] = g.Key
	}
	return out
}

func TestFilter_AllIsIdentity(t *testing.T) {
	records := sample()
	got := Filter(records, NoFilter())
	if len(got) != len(records) {
		t.Fatalf("got %d records, want %d", len(got), len(records))
	}
	for i := range records {
		if !got[i].Equal(records[i]) {
			t.Fatalf("record %d differs", i)
		}
	}
}

func TestFilter(t *testing.T) {
	tests := []struct {
		name     string
		criteria Criteria
		want     int
	}{
		{"single category", Criteria{Selection{"Alimentação"}, Everything(), Everything()}, 2},
		{"conjunctive", Criteria{Selection{"Alimentação"}, Selection{"pago"}, Everything()}, 1},
		{"cost center excludes absent", Criteria{Everything(), Everything(), Selection{"Casa"}}, 2},
		{"all alongside values", Criteria{Selection{"Moradia", All}, Everything(), Everything()}, 4},
		{"empty selection matches nothing", Criteria{Selection{}, Everything(), Everything()}, 0},
		{"unknown status", Criteria{Everything(), Selection{"cancelado"}, Everything()}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Filter(sample(), tt.criteria); len(got) != tt.want {
				t.Fatalf("got %d records, want %d", len(got), tt.want)
			}
		})
	}
}

func TestMonthlyTotals_FirstSeenOrder(t *testing.T) {
	got := MonthlyTotals(sample())
	want := []string{"2024-03 (Mar)", "2024-01 (Jan)", "2024-02 (Fev)"}
	if !reflect.DeepEqual(keys(got), want) {
		t.Fatalf("order = %v, want %v", keys(got), want)
	}
	if !got[0].Total.Equal(decimal.RequireFromString("1700")) {
		t.Fatalf("March total = %s", got[0].Total)
	}
}

func TestStatusTotals(t *testing.T) {
	got := StatusTotals(sample())
	if !reflect.DeepEqual(keys(got), []string{"pago", "pendente", "em aberto"}) {
		t.Fatalf("keys = %v", keys(got))
	}
}

func TestGrandTotal(t *testing.T) {
	if got := GrandTotal(sample()); !got.Equal(decimal.RequireFromString("2100.49")) {
		t.Fatalf("GrandTotal = %s", got)
	}
	if got := GrandTotal(nil); !got.IsZero() {
		t.Fatalf("GrandTotal(nil) = %s", got)
	}
}

func TestTopCategories_TruncatesToTrueTop(t *testing.T) {
	var records []core.ExpenseRecord
	for i := 0; i < 500; i++ {
		records = append(records, rec("2024-01 (Jan)", fmt.Sprintf("cat-%03d", i), "pago", "", fmt.Sprint(i+1)))
	}

	got := TopCategories(records)
	if len(got) != TopN {
		t.Fatalf("got %d groups, want %d", len(got), TopN)
	}
	for i, g := range got {
		want := fmt.Sprintf("cat-%03d", 499-i)
		if g.Key != want {
			t.Fatalf("rank %d = %s, want %s", i, g.Key, want)
		}
	}
}

func TestTopCategories_TiesAndAbsent(t *testing.T) {
	records := []core.ExpenseRecord{
		rec("p", "B", "s", "", "10"),
		rec("p", "", "s", "", "1000"),
		rec("p", "A", "s", "", "10"),
		rec("p", "C", "s", "", "20"),
	}
	got := TopCategories(records)
	if !reflect.DeepEqual(keys(got), []string{"C", "B", "A"}) {
		t.Fatalf("keys = %v", keys(got))
	}
}

func TestTopCostCenters(t *testing.T) {
	var records []core.ExpenseRecord
	for i := 0; i < 12; i++ {
		records = append(records, rec("p", "c", "s", fmt.Sprintf("cc-%02d", i), fmt.Sprint((i+1)*10)))
	}
	records = append(records, rec("p", "c", "s", "", "100000"))

	got := TopCostCenters(records)
	if len(got) != TopN {
		t.Fatalf("got %d groups, want %d", len(got), TopN)
	}
	// cc-00 and cc-01 are the two smallest and fall out; the rest ascend.
	if got[0].Key != "cc-02" || got[len(got)-1].Key != "cc-11" {
		t.Fatalf("unexpected ranking %v", keys(got))
	}
	for i := 1; i < len(got); i++ {
		if got[i].Total.LessThan(got[i-1].Total) {
			t.Fatalf("not ascending at %d: %v", i, keys(got))
		}
	}
}

func TestOptions(t *testing.T) {
	got := Options(sample())
	want := core.FilterOptions{
		Categories:  []string{"Alimentação", "Moradia"},
		Statuses:    []string{"em aberto", "pago", "pendente"},
		CostCenters: []string{"Casa", "Empresa"},
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("Options = %+v, want %+v", got, want)
	}
}

func TestSummarize(t *testing.T) {
	d := Summarize(Filter(sample(), Criteria{Everything(), Selection{"pago"}, Everything()}))
	if d.RecordCount != 2 || !d.GrandTotal.Equal(decimal.RequireFromString("1700")) {
		t.Fatalf("unexpected dashboard %+v", d)
	}
	if len(d.Monthly) != 1 || len(d.TopCategories) != 2 || len(d.TopCostCenters) != 1 {
		t.Fatalf("unexpected groups %+v", d)
	}
}
