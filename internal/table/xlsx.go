package table

import (
	"errors"
	"fmt"
	"io"
	"strconv"

	"github.com/xuri/excelize/v2"
)

// ReadXLSX reads the first worksheet of a workbook. Cells keep their raw
// stored value; numeric cells (including serial dates) are marked KindNumber
// so the normalizer never applies localized separator rules to them.
func ReadXLSX(r io.Reader) (Table, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return Table{}, fmt.Errorf("open xlsx: %w", err)
	}
	defer f.Close()

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return Table{}, errors.New("open xlsx: workbook has no sheets")
	}
	sheet := sheets[0]

	rows, err := f.GetRows(sheet, excelize.Options{RawCellValue: true})
	if err != nil {
		return Table{}, fmt.Errorf("read sheet %q: %w", sheet, err)
	}

	matrix := make([][]Cell, len(rows))
	for i, row := range rows {
		cells := make([]Cell, len(row))
		for j, v := range row {
			cells[j] = Cell{Value: v, Kind: cellKind(f, sheet, j+1, i+1, v)}
		}
		matrix[i] = cells
	}
	return fromRows(matrix), nil
}

func cellKind(f *excelize.File, sheet string, col, row int, v string) CellKind {
	if v == "" {
		return KindText
	}
	name, err := excelize.CoordinatesToCellName(col, row)
	if err != nil {
		return KindText
	}
	typ, err := f.GetCellType(sheet, name)
	if err != nil {
		return KindText
	}
	switch typ {
	case excelize.CellTypeNumber:
		return KindNumber
	case excelize.CellTypeUnset:
		// Numbers are stored without a type attribute.
		if _, err := strconv.ParseFloat(v, 64); err == nil {
			return KindNumber
		}
	}
	return KindText
}
