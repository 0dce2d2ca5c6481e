package ingest

import (
	"strings"

	"despesas/internal/core"
)

// FilterExpenses keeps expense rows with a valid date. The entry type test
// runs first, then the date test; survivors carry the canonical entry type.
func FilterExpenses(records []core.ExpenseRecord) []core.ExpenseRecord {
	out := make([]core.ExpenseRecord, 0, len(records))
	for _, r := range records {
		if !IsExpense(r.EntryType) {
			continue
		}
		if r.Date.IsMissing() {
			continue
		}
		r.EntryType = core.EntryTypeExpense
		out = append(out, r)
	}
	return out
}

// IsExpense reports whether an entry type denotes an expense row.
func IsExpense(entryType string) bool {
	return strings.EqualFold(strings.TrimSpace(entryType), core.EntryTypeExpense)
}
