package snapshots

import (
	"fmt"
	"time"

	"github.com/shopspring/decimal"

	"despesas/internal/core"
)

const secondsPerDay = 24 * 60 * 60

// maxCents is the largest magnitude an INT64 DECIMAL(18,2) column holds.
var maxCents = decimal.New(999_999_999_999_999_999, 0)

// snapshotRow is the on-disk layout of one record. Dates are days since the
// Unix epoch and amounts are centavos, so both survive a round trip exactly.
type snapshotRow struct {
	Date        *int32  `parquet:"name=date, type=INT32, convertedtype=DATE, repetitiontype=OPTIONAL"`
	Description string  `parquet:"name=description, type=BYTE_ARRAY, convertedtype=UTF8"`
	Category    *string `parquet:"name=category, type=BYTE_ARRAY, convertedtype=UTF8, repetitiontype=OPTIONAL"`
	Amount      int64   `parquet:"name=amount, type=INT64, convertedtype=DECIMAL, scale=2, precision=18"`
	Status      string  `parquet:"name=status, type=BYTE_ARRAY, convertedtype=UTF8"`
	PeriodLabel string  `parquet:"name=period_label, type=BYTE_ARRAY, convertedtype=UTF8"`
	CostCenter  *string `parquet:"name=cost_center, type=BYTE_ARRAY, convertedtype=UTF8, repetitiontype=OPTIONAL"`
}

// toRow converts r for storage. Amounts are stored exactly or not at all.
func toRow(r core.ExpenseRecord) (snapshotRow, error) {
	cents, err := toCents(r.Amount)
	if err != nil {
		return snapshotRow{}, err
	}
	row := snapshotRow{
		Description: r.Description,
		Category:    r.Category,
		Amount:      cents,
		Status:      r.Status,
		PeriodLabel: r.PeriodLabel,
		CostCenter:  r.CostCenter,
	}
	if !r.Date.IsMissing() {
		days := int32(r.Date.Unix() / secondsPerDay)
		row.Date = &days
	}
	return row, nil
}

func toCents(amount decimal.Decimal) (int64, error) {
	if !amount.Equal(amount.Round(core.AmountPlaces)) {
		return 0, fmt.Errorf("%w: %s has more than %d decimal places", core.ErrAmountOutOfRange, amount, core.AmountPlaces)
	}
	cents := amount.Shift(core.AmountPlaces)
	if cents.Abs().GreaterThan(maxCents) {
		return 0, fmt.Errorf("%w: %s exceeds DECIMAL(18,2)", core.ErrAmountOutOfRange, amount)
	}
	return cents.IntPart(), nil
}

// record rebuilds a domain record. Only expense rows are ever stored, so the
// entry type is not kept on disk.
func (row snapshotRow) record() core.ExpenseRecord {
	r := core.ExpenseRecord{
		Description: row.Description,
		Category:    row.Category,
		Amount:      decimal.New(row.Amount, -core.AmountPlaces),
		Status:      row.Status,
		PeriodLabel: row.PeriodLabel,
		CostCenter:  row.CostCenter,
		EntryType:   core.EntryTypeExpense,
	}
	if row.Date != nil {
		r.Date = core.DateOf(time.Unix(int64(*row.Date)*secondsPerDay, 0).UTC())
	}
	return r
}
