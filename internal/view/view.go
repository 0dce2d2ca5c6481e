// Package view filters a snapshot and computes the dashboard aggregations.
// Every function is pure: inputs are never modified.
package view

import (
	"sort"

	"github.com/shopspring/decimal"

	"despesas/internal/core"
)

// All is the selection value that lifts the constraint on a dimension.
const All = "all"

// TopN bounds the category and cost center rankings.
const TopN = 10

// Selection is the set of accepted values for one dimension. A selection
// containing All accepts everything; an empty selection accepts nothing.
type Selection []string

// Everything returns a selection that accepts every value.
func Everything() Selection {
	return Selection{All}
}

func (s Selection) unconstrained() bool {
	for _, v := range s {
		if v == All {
			return true
		}
	}
	return false
}

// matcher returns a predicate for optional values. Absent values only pass
// an unconstrained selection.
func (s Selection) matcher() func(*string) bool {
	if s.unconstrained() {
		return func(*string) bool { return true }
	}
	set := make(map[string]struct{}, len(s))
	for _, v := range s {
		set[v] = struct{}{}
	}
	return func(v *string) bool {
		if v == nil {
			return false
		}
		_, ok := set[*v]
		return ok
	}
}

// Criteria holds the three dashboard selections.
type Criteria struct {
	Categories  Selection
	Statuses    Selection
	CostCenters Selection
}

// NoFilter accepts every record.
func NoFilter() Criteria {
	return Criteria{Categories: Everything(), Statuses: Everything(), CostCenters: Everything()}
}

// Filter returns the records matching every selection of c, in order. The
// result is a new slice.
func Filter(records []core.ExpenseRecord, c Criteria) []core.ExpenseRecord {
	category := c.Categories.matcher()
	status := c.Statuses.matcher()
	costCenter := c.CostCenters.matcher()

	out := make([]core.ExpenseRecord, 0, len(records))
	for _, r := range records {
		st := r.Status
		if category(r.Category) && status(&st) && costCenter(r.CostCenter) {
			out = append(out, r)
		}
	}
	return out
}

// GrandTotal sums every amount.
func GrandTotal(records []core.ExpenseRecord) decimal.Decimal {
	total := decimal.Zero
	for _, r := range records {
		total = total.Add(r.Amount)
	}
	return total
}

// MonthlyTotals sums amounts per period label in first-seen order.
func MonthlyTotals(records []core.ExpenseRecord) []core.GroupTotal {
	return groupBy(records, func(r core.ExpenseRecord) (string, bool) {
		return r.PeriodLabel, true
	})
}

// StatusTotals sums amounts per status in first-seen order.
func StatusTotals(records []core.ExpenseRecord) []core.GroupTotal {
	return groupBy(records, func(r core.ExpenseRecord) (string, bool) {
		return r.Status, true
	})
}

// TopCategories returns at most TopN categories by descending total. Ties
// keep first-seen order. Records without a category are skipped.
func TopCategories(records []core.ExpenseRecord) []core.GroupTotal {
	groups := groupBy(records, func(r core.ExpenseRecord) (string, bool) {
		return r.CategoryName(), r.Category != nil
	})
	return largest(groups, TopN)
}

// TopCostCenters picks the TopN cost centers by total and returns them in
// ascending order, the way the horizontal bar chart draws them. Records
// without a cost center are skipped.
func TopCostCenters(records []core.ExpenseRecord) []core.GroupTotal {
	groups := groupBy(records, func(r core.ExpenseRecord) (string, bool) {
		return r.CostCenterName(), r.CostCenter != nil
	})
	top := largest(groups, TopN)
	sort.SliceStable(top, func(i, j int) bool {
		return top[i].Total.LessThan(top[j].Total)
	})
	return top
}

// Options lists the distinct, sorted values available to each selector.
func Options(records []core.ExpenseRecord) core.FilterOptions {
	categories := map[string]struct{}{}
	statuses := map[string]struct{}{}
	costCenters := map[string]struct{}{}
	for _, r := range records {
		if r.Category != nil {
			categories[*r.Category] = struct{}{}
		}
		statuses[r.Status] = struct{}{}
		if r.CostCenter != nil {
			costCenters[*r.CostCenter] = struct{}{}
		}
	}
	return core.FilterOptions{
		Categories:  sortedKeys(categories),
		Statuses:    sortedKeys(statuses),
		CostCenters: sortedKeys(costCenters),
	}
}

// Summarize computes every aggregation of records.
func Summarize(records []core.ExpenseRecord) core.Dashboard {
	return core.Dashboard{
		GrandTotal:     GrandTotal(records),
		RecordCount:    len(records),
		Monthly:        MonthlyTotals(records),
		ByStatus:       StatusTotals(records),
		TopCategories:  TopCategories(records),
		TopCostCenters: TopCostCenters(records),
	}
}

func groupBy(records []core.ExpenseRecord, key func(core.ExpenseRecord) (string, bool)) []core.GroupTotal {
	index := make(map[string]int)
	groups := make([]core.GroupTotal, 0)
	for _, r := range records {
		k, ok := key(r)
		if !ok {
			continue
		}
		i, seen := index[k]
		if !seen {
			i = len(groups)
			index[k] = i
			groups = append(groups, core.GroupTotal{Key: k, Total: decimal.Zero})
		}
		groups[i].Total = groups[i].Total.Add(r.Amount)
	}
	return groups
}

func largest(groups []core.GroupTotal, n int) []core.GroupTotal {
	sort.SliceStable(groups, func(i, j int) bool {
		return groups[i].Total.GreaterThan(groups[j].Total)
	})
	if len(groups) > n {
		groups = groups[:n]
	}
	return groups
}

func sortedKeys(m map[string]struct{}) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
