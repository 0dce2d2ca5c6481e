// Package sheets declares the outbound ports for spreadsheet sources.
package sheets

import (
	"context"

	"despesas/internal/table"
)

// TableSource fetches a rectangular range from a remote spreadsheet as a raw
// table whose first row is the header.
type TableSource interface {
	FetchTable(ctx context.Context, spreadsheetID, rng string) (table.Table, error)
}
