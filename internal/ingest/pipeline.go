package ingest

import (
	"context"
	"fmt"
	"io"

	"despesas/internal/core"
	"despesas/internal/log"
	"despesas/internal/table"
)

// SnapshotWriter persists a full snapshot, replacing any previous one of the
// same name.
type SnapshotWriter interface {
	Exists(name string) bool
	Write(name string, records []core.ExpenseRecord) error
}

// Result summarizes one ingestion run.
type Result struct {
	Name            string `json:"name"`
	RowsRead        int    `json:"rows_read"`
	RowsKept        int    `json:"rows_kept"`
	MissingDates    int    `json:"missing_dates"`
	DegradedAmounts int    `json:"degraded_amounts"`
	Replaced        bool   `json:"replaced"` // an older snapshot of the same name was overwritten
}

// Pipeline runs validate, normalize and filter, then hands the survivors to
// the snapshot store.
type Pipeline struct {
	store      SnapshotWriter
	normalizer *Normalizer
	logger     *log.Logger
}

// NewPipeline wires a pipeline over store. A nil logger falls back to the
// process default.
func NewPipeline(store SnapshotWriter, months core.MonthNames, logger *log.Logger) *Pipeline {
	return &Pipeline{
		store:      store,
		normalizer: NewNormalizer(months),
		logger:     log.OrDefault(logger, log.ComponentIngest),
	}
}

// Ingest stores the expense rows of t as snapshot name. A table missing
// required columns yields a *core.SchemaError and nothing is written.
func (p *Pipeline) Ingest(ctx context.Context, t table.Table, name string) (Result, error) {
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}
	if err := core.ValidateSnapshotName(name); err != nil {
		return Result{}, err
	}

	v := Validate(t)
	if !v.OK {
		p.logger.WarnContext(ctx, "Upload rejected",
			log.FieldSnapshot, name,
			log.FieldMissingColumns, v.Missing)
		return Result{}, &core.SchemaError{Missing: v.Missing}
	}

	records, stats := p.normalizer.Normalize(t)
	kept := FilterExpenses(records)

	res := Result{
		Name:            name,
		RowsRead:        stats.Rows,
		RowsKept:        len(kept),
		MissingDates:    stats.MissingDates,
		DegradedAmounts: stats.DegradedAmounts,
		Replaced:        p.store.Exists(name),
	}

	if err := p.store.Write(name, kept); err != nil {
		p.logger.Op(ctx, log.OpIngest, err, log.FieldSnapshot, name)
		return res, fmt.Errorf("write snapshot %q: %w", name, err)
	}

	p.logger.Op(ctx, log.OpIngest, nil,
		log.NewFields().WithSnapshot(name).
			WithIngest(res.RowsRead, res.RowsKept, res.MissingDates, res.DegradedAmounts).
			ToSlice()...)
	return res, nil
}

// IngestFile reads an uploaded file and ingests it under the name derived
// from filename.
func (p *Pipeline) IngestFile(ctx context.Context, r io.Reader, filename string) (Result, error) {
	format, err := table.FormatFromFilename(filename)
	if err != nil {
		return Result{}, err
	}
	t, err := table.Read(r, format)
	if err != nil {
		return Result{}, fmt.Errorf("read %s: %w", filename, err)
	}
	return p.Ingest(ctx, t, core.SnapshotNameFromFile(filename))
}
