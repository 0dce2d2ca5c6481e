package google

import (
	"fmt"
	"strconv"
	"strings"

	"despesas/internal/table"
)

// valuesToTable converts a values matrix (as returned by the Sheets API with
// unformatted values) into a raw table. The first row holds the headers;
// trailing empty rows are dropped.
func valuesToTable(values [][]interface{}) table.Table {
	if len(values) == 0 {
		return table.Table{}
	}

	headers := make([]string, len(values[0]))
	for i, v := range values[0] {
		headers[i] = strings.TrimSpace(cellFromValue(v).Value)
	}

	rows := make([][]table.Cell, 0, len(values)-1)
	for _, raw := range values[1:] {
		row := make([]table.Cell, len(raw))
		for i, v := range raw {
			row[i] = cellFromValue(v)
		}
		rows = append(rows, row)
	}
	for len(rows) > 0 && blankRow(rows[len(rows)-1]) {
		rows = rows[:len(rows)-1]
	}
	return table.Table{Headers: headers, Rows: rows}
}

// cellFromValue maps a JSON-decoded Sheets value to a cell. Numbers (and
// serial dates) become numeric cells; everything else is text.
func cellFromValue(v interface{}) table.Cell {
	switch x := v.(type) {
	case nil:
		return table.Text("")
	case float64:
		return table.Number(strconv.FormatFloat(x, 'f', -1, 64))
	case string:
		return table.Text(x)
	case bool:
		return table.Text(strconv.FormatBool(x))
	default:
		return table.Text(fmt.Sprint(x))
	}
}

func blankRow(row []table.Cell) bool {
	for _, c := range row {
		if strings.TrimSpace(c.Value) != "" {
			return false
		}
	}
	return true
}
