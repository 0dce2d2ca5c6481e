// Package table holds the raw tabular input handed to the ingestion pipeline
// and the readers that build it from uploaded files.
package table

import (
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"despesas/internal/core"
)

// CellKind tells the normalizer how a cell value was stored at the source.
type CellKind int

const (
	// KindText is a string cell; amounts and dates in it are localized text.
	KindText CellKind = iota
	// KindNumber is a numeric cell holding a plain number or a serial date.
	KindNumber
)

// Cell is one raw value.
type Cell struct {
	Value string
	Kind  CellKind
}

// Text builds a text cell.
func Text(v string) Cell { return Cell{Value: v, Kind: KindText} }

// Number builds a numeric cell.
func Number(v string) Cell { return Cell{Value: v, Kind: KindNumber} }

// Table is a header row plus data rows. Rows may be shorter than Headers.
type Table struct {
	Headers []string
	Rows    [][]Cell
}

// Cell returns row[col], or an empty text cell when the row is short.
func (t Table) Cell(row, col int) Cell {
	if row < 0 || row >= len(t.Rows) || col < 0 || col >= len(t.Rows[row]) {
		return Cell{}
	}
	return t.Rows[row][col]
}

// Format identifies an upload file format.
type Format string

const (
	FormatXLSX Format = "xlsx"
	FormatCSV  Format = "csv"
)

// FormatFromFilename picks the reader for an uploaded file by its extension.
func FormatFromFilename(filename string) (Format, error) {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".xlsx", ".xlsm":
		return FormatXLSX, nil
	case ".csv", ".txt":
		return FormatCSV, nil
	default:
		return "", fmt.Errorf("%w: %q", core.ErrUnsupportedFormat, filepath.Ext(filename))
	}
}

// Read parses r according to format.
func Read(r io.Reader, format Format) (Table, error) {
	switch format {
	case FormatXLSX:
		return ReadXLSX(r)
	case FormatCSV:
		return ReadCSV(r)
	default:
		return Table{}, fmt.Errorf("%w: %q", core.ErrUnsupportedFormat, format)
	}
}

// fromRows splits a matrix into headers and data rows, dropping trailing
// blank rows.
func fromRows(rows [][]Cell) Table {
	if len(rows) == 0 {
		return Table{}
	}
	headers := make([]string, len(rows[0]))
	for i, c := range rows[0] {
		headers[i] = c.Value
	}
	data := rows[1:]
	for len(data) > 0 && isBlank(data[len(data)-1]) {
		data = data[:len(data)-1]
	}
	return Table{Headers: headers, Rows: data}
}

func isBlank(row []Cell) bool {
	for _, c := range row {
		if strings.TrimSpace(c.Value) != "" {
			return false
		}
	}
	return true
}
