package core

import (
	"path/filepath"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

// EntryTypeExpense is the only entry type retained in a snapshot.
const EntryTypeExpense = "despesa"

type (
	// Date is a calendar date at UTC midnight. The zero value means the
	// source value was missing or could not be parsed.
	Date struct {
		time.Time
	}

	// ExpenseRecord is one normalized ledger row.
	ExpenseRecord struct {
		Date        Date
		Description string
		Category    *string // nil when the source cell was empty
		Amount      decimal.Decimal
		Status      string
		CostCenter  *string // nil when the source cell was empty
		PeriodLabel string
		EntryType   string
	}

	// Snapshot is a named, ordered collection of records persisted as one unit.
	Snapshot struct {
		Name    string
		Records []ExpenseRecord
	}
)

// NewDate creates a new Date from year, month, day
func NewDate(year, month, day int) Date {
	return Date{Time: time.Date(year, time.Month(month), day, 0, 0, 0, 0, time.UTC)}
}

// DateOf truncates t to its calendar date in t's own location.
func DateOf(t time.Time) Date {
	return NewDate(t.Year(), int(t.Month()), t.Day())
}

// IsMissing reports whether the date could not be parsed from the source.
func (d Date) IsMissing() bool {
	return d.IsZero()
}

// Equal reports whether two records carry the same values.
func (r ExpenseRecord) Equal(o ExpenseRecord) bool {
	return r.Date.Equal(o.Date.Time) &&
		r.Description == o.Description &&
		equalOptional(r.Category, o.Category) &&
		r.Amount.Equal(o.Amount) &&
		r.Status == o.Status &&
		equalOptional(r.CostCenter, o.CostCenter) &&
		r.PeriodLabel == o.PeriodLabel &&
		r.EntryType == o.EntryType
}

// CategoryName returns the category or "" when absent.
func (r ExpenseRecord) CategoryName() string {
	if r.Category == nil {
		return ""
	}
	return *r.Category
}

// CostCenterName returns the cost center or "" when absent.
func (r ExpenseRecord) CostCenterName() string {
	if r.CostCenter == nil {
		return ""
	}
	return *r.CostCenter
}

// Optional returns a pointer to the trimmed value, or nil when it is blank.
func Optional(s string) *string {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil
	}
	return &s
}

func equalOptional(a, b *string) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

// SnapshotNameFromFile derives a snapshot name from an uploaded file name:
// the base name without extension, with spaces replaced by underscores.
func SnapshotNameFromFile(filename string) string {
	base := filepath.Base(strings.ReplaceAll(filename, "\\", "/"))
	base = strings.TrimSuffix(base, filepath.Ext(base))
	return strings.ReplaceAll(strings.TrimSpace(base), " ", "_")
}

// ValidateSnapshotName rejects names that cannot be stored as a single file
// directly under the storage root.
func ValidateSnapshotName(name string) error {
	switch {
	case strings.TrimSpace(name) == "":
		return &InvalidNameError{Name: name, Reason: "empty name"}
	case strings.ContainsAny(name, `/\`):
		return &InvalidNameError{Name: name, Reason: "contains a path separator"}
	case strings.Contains(name, ".."):
		return &InvalidNameError{Name: name, Reason: "contains '..'"}
	case strings.HasPrefix(name, "."):
		return &InvalidNameError{Name: name, Reason: "starts with '.'"}
	}
	return nil
}
