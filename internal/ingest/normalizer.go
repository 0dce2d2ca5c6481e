package ingest

import (
	"strconv"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/xuri/excelize/v2"

	"despesas/internal/core"
	"despesas/internal/table"
)

// Text date layouts, tried in order. ISO first, then the day-first forms
// used by Brazilian spreadsheets.
var dateLayouts = []string{
	"2006-01-02",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05",
	time.RFC3339,
	"2/1/2006",
	"2/1/2006 15:04:05",
	"2/1/2006 15:04",
	"2/1/06",
	"2-1-2006",
	"2.1.2006",
}

// Stats counts per-row values that degraded during normalization. Degraded
// values never fail a batch.
type Stats struct {
	Rows            int
	MissingDates    int
	DegradedAmounts int
}

// Normalizer turns raw rows into typed records.
type Normalizer struct {
	months core.MonthNames
}

// NewNormalizer returns a normalizer that labels periods with months.
func NewNormalizer(months core.MonthNames) *Normalizer {
	return &Normalizer{months: months}
}

// Normalize converts every row of t. Headers must already have passed
// Validate; records keep the source row order. EntryType is carried through
// trimmed but otherwise untouched for the filter to inspect.
func (n *Normalizer) Normalize(t table.Table) ([]core.ExpenseRecord, Stats) {
	cols := columnIndex(t.Headers)
	cell := func(row int, header string) table.Cell {
		col, ok := cols[NormalizeHeader(header)]
		if !ok {
			return table.Cell{}
		}
		return t.Cell(row, col)
	}

	stats := Stats{Rows: len(t.Rows)}
	records := make([]core.ExpenseRecord, 0, len(t.Rows))
	for i := range t.Rows {
		date := ParseDate(cell(i, HeaderDate))
		if date.IsMissing() {
			stats.MissingDates++
		}

		amountCell := cell(i, HeaderAmount)
		amount, ok := ParseAmountCell(amountCell)
		if !ok && strings.TrimSpace(amountCell.Value) != "" {
			stats.DegradedAmounts++
		}

		records = append(records, core.ExpenseRecord{
			Date:        date,
			Description: strings.TrimSpace(cell(i, HeaderDescription).Value),
			Category:    core.Optional(cell(i, HeaderCategory).Value),
			Amount:      amount,
			Status:      strings.ToLower(strings.TrimSpace(cell(i, HeaderStatus).Value)),
			CostCenter:  core.Optional(cell(i, HeaderCostCenter).Value),
			PeriodLabel: n.months.PeriodLabel(date),
			EntryType:   strings.TrimSpace(cell(i, HeaderType).Value),
		})
	}
	return records, stats
}

// ParseDate reads a date cell. Numeric cells are spreadsheet serial dates;
// text cells are matched against dateLayouts. Anything else is missing.
func ParseDate(c table.Cell) core.Date {
	v := strings.TrimSpace(c.Value)
	if v == "" {
		return core.Date{}
	}
	if c.Kind == table.KindNumber {
		serial, err := strconv.ParseFloat(v, 64)
		if err != nil || serial <= 0 {
			return core.Date{}
		}
		t, err := excelize.ExcelDateToTime(serial, false)
		if err != nil {
			return core.Date{}
		}
		return core.DateOf(t)
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, v); err == nil {
			return core.DateOf(t)
		}
	}
	return core.Date{}
}

// ParseAmountCell reads an amount cell, using the raw parser for numeric
// cells and the localized currency parser for text.
func ParseAmountCell(c table.Cell) (decimal.Decimal, bool) {
	if c.Kind == table.KindNumber {
		return core.ParseRawAmount(c.Value)
	}
	return core.ParseAmount(c.Value)
}
