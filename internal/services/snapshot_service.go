// Package services orchestrates snapshot ingestion, retrieval and dashboards
// for the HTTP server and the operator CLI.
package services

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"despesas/internal/cache"
	"despesas/internal/core"
	"despesas/internal/ingest"
	"despesas/internal/log"
	"despesas/internal/sheets"
	"despesas/internal/table"
	"despesas/internal/view"
)

var (
	// ErrImportDisabled is returned by ImportSheet when no sheet source is wired.
	ErrImportDisabled = errors.New("google sheets import disabled")
	// ErrHistoryDisabled is returned by History when no journal is wired.
	ErrHistoryDisabled = errors.New("ingestion journal disabled")
)

// Event sources recorded in the journal.
const (
	SourceUpload = "upload"
	SourceSheets = "sheets"
	SourceCLI    = "cli"
)

type (
	// SnapshotStore is durable snapshot storage.
	SnapshotStore interface {
		ExistsRoot() bool
		Exists(name string) bool
		List() ([]string, error)
		Read(name string) ([]core.ExpenseRecord, error)
		Write(name string, records []core.ExpenseRecord) error
		Delete(name string) error
	}

	// Journal keeps an audit trail of snapshot events.
	Journal interface {
		Record(ctx context.Context, e core.SnapshotEvent) error
		Recent(ctx context.Context, limit int) ([]core.SnapshotEvent, error)
	}

	// EventPublisher announces snapshot events to other systems.
	EventPublisher interface {
		PublishSnapshotEvent(ctx context.Context, e core.SnapshotEvent) error
	}
)

// Options configures the optional collaborators of a SnapshotService.
// Nil Journal, Publisher or Sheets disable the matching feature.
type Options struct {
	Months    core.MonthNames
	CacheSize int
	CacheTTL  time.Duration
	Journal   Journal
	Publisher EventPublisher
	Sheets    sheets.TableSource
	Logger    *log.Logger
	// EventTimeout bounds journal and publish work after a write.
	// Zero means DefaultEventTimeout.
	EventTimeout time.Duration
}

// DefaultEventTimeout is how long an ingest or delete waits on the journal
// and the event publisher before giving up on them.
const DefaultEventTimeout = 2 * time.Second

// DashboardView is a filtered snapshot plus its aggregations.
type DashboardView struct {
	Name    string               `json:"name"`
	Records []core.ExpenseRecord `json:"records"`
	Summary core.Dashboard       `json:"summary"`
}

// SnapshotService is the single entry point the hosts use. Reads go through
// an in-memory cache that is invalidated whenever a name is written or
// deleted through the service.
type SnapshotService struct {
	store     SnapshotStore
	pipeline  *ingest.Pipeline
	cache     *cache.SnapshotCache
	journal   Journal
	publisher EventPublisher
	sheets    sheets.TableSource
	logger    *log.Logger

	eventTimeout time.Duration
}

func NewSnapshotService(store SnapshotStore, opts Options) *SnapshotService {
	logger := log.OrDefault(opts.Logger, log.ComponentService)
	size := opts.CacheSize
	if size <= 0 {
		size = 32
	}
	eventTimeout := opts.EventTimeout
	if eventTimeout <= 0 {
		eventTimeout = DefaultEventTimeout
	}
	return &SnapshotService{
		store:     store,
		pipeline:  ingest.NewPipeline(store, opts.Months, opts.Logger),
		cache:     cache.NewSnapshotCache(store.Read, size, opts.CacheTTL),
		journal:   opts.Journal,
		publisher: opts.Publisher,
		sheets:    opts.Sheets,
		logger:    logger,

		eventTimeout: eventTimeout,
	}
}

// Cache exposes the snapshot cache so the host can register it for
// periodic expiry.
func (s *SnapshotService) Cache() *cache.SnapshotCache {
	return s.cache
}

// Ready reports whether the storage root is provisioned.
func (s *SnapshotService) Ready() bool {
	return s.store.ExistsRoot()
}

// List returns the stored snapshot names, sorted.
func (s *SnapshotService) List(ctx context.Context) ([]string, error) {
	names, err := s.store.List()
	if err != nil {
		s.logger.Op(ctx, log.OpList, err)
		return nil, err
	}
	return names, nil
}

// Records returns every record of name.
func (s *SnapshotService) Records(ctx context.Context, name string) ([]core.ExpenseRecord, error) {
	if err := core.ValidateSnapshotName(name); err != nil {
		return nil, err
	}
	records, err := s.cache.Get(name)
	if err != nil {
		if !errors.Is(err, core.ErrNotFound) {
			s.logger.Op(ctx, log.OpRead, err, log.FieldSnapshot, name)
		}
		return nil, err
	}
	return records, nil
}

// Ingest stores t as name.
func (s *SnapshotService) Ingest(ctx context.Context, t table.Table, name, source string) (ingest.Result, error) {
	res, err := s.pipeline.Ingest(ctx, t, name)
	return s.afterIngest(ctx, res, err, source)
}

// IngestFile stores an uploaded xlsx or csv file under the name derived from
// filename.
func (s *SnapshotService) IngestFile(ctx context.Context, r io.Reader, filename string) (ingest.Result, error) {
	res, err := s.pipeline.IngestFile(ctx, r, filename)
	return s.afterIngest(ctx, res, err, SourceUpload)
}

// ImportSheet fetches a Google Sheets range and stores it as name.
func (s *SnapshotService) ImportSheet(ctx context.Context, spreadsheetID, rng, name string) (ingest.Result, error) {
	if s.sheets == nil {
		return ingest.Result{}, ErrImportDisabled
	}
	if err := core.ValidateSnapshotName(name); err != nil {
		return ingest.Result{}, err
	}
	t, err := s.sheets.FetchTable(ctx, spreadsheetID, rng)
	if err != nil {
		s.logger.Op(ctx, log.OpImport, err, log.FieldSnapshot, name)
		return ingest.Result{}, fmt.Errorf("fetch sheet: %w", err)
	}
	return s.Ingest(ctx, t, name, SourceSheets)
}

func (s *SnapshotService) afterIngest(ctx context.Context, res ingest.Result, err error, source string) (ingest.Result, error) {
	if res.Name != "" {
		s.cache.Invalidate(res.Name)
	}
	if err != nil {
		return res, err
	}

	e := core.NewSnapshotEvent(res.Name, core.ActionIngested)
	e.Source = source
	e.RowsRead = res.RowsRead
	e.RowsKept = res.RowsKept
	e.MissingDates = res.MissingDates
	e.DegradedAmounts = res.DegradedAmounts
	s.emit(ctx, e)
	return res, nil
}

// Delete removes name. Deleting an absent snapshot is core.ErrNotFound.
func (s *SnapshotService) Delete(ctx context.Context, name string) error {
	err := s.store.Delete(name)
	s.cache.Invalidate(name)
	if err != nil {
		if !errors.Is(err, core.ErrNotFound) {
			s.logger.Op(ctx, log.OpDelete, err, log.FieldSnapshot, name)
		}
		return err
	}
	s.logger.Op(ctx, log.OpDelete, nil, log.FieldSnapshot, name)
	s.emit(ctx, core.NewSnapshotEvent(name, core.ActionDeleted))
	return nil
}

// Dashboard filters name by c and aggregates the result.
func (s *SnapshotService) Dashboard(ctx context.Context, name string, c view.Criteria) (DashboardView, error) {
	records, err := s.Records(ctx, name)
	if err != nil {
		return DashboardView{}, err
	}
	filtered := view.Filter(records, c)
	return DashboardView{
		Name:    name,
		Records: filtered,
		Summary: view.Summarize(filtered),
	}, nil
}

// Options lists the selector values of name.
func (s *SnapshotService) Options(ctx context.Context, name string) (core.FilterOptions, error) {
	records, err := s.Records(ctx, name)
	if err != nil {
		return core.FilterOptions{}, err
	}
	return view.Options(records), nil
}

// History returns the most recent journal events, newest first.
func (s *SnapshotService) History(ctx context.Context, limit int) ([]core.SnapshotEvent, error) {
	if s.journal == nil {
		return nil, ErrHistoryDisabled
	}
	return s.journal.Recent(ctx, limit)
}

// emit records e in the journal and publishes it. Both are best effort: the
// snapshot is already on disk, so failures are only logged. Together they
// never hold the caller longer than the event timeout.
func (s *SnapshotService) emit(ctx context.Context, e core.SnapshotEvent) {
	ctx, cancel := context.WithTimeout(ctx, s.eventTimeout)
	defer cancel()

	if s.journal != nil {
		if err := s.journal.Record(ctx, e); err != nil {
			s.logger.ErrorContext(ctx, "Failed to record snapshot event",
				"id", e.ID, log.FieldSnapshot, e.Snapshot, log.FieldError, err)
		}
	}
	if s.publisher != nil {
		if err := s.publisher.PublishSnapshotEvent(ctx, e); err != nil {
			s.logger.ErrorContext(ctx, "Failed to publish snapshot event",
				"id", e.ID, log.FieldSnapshot, e.Snapshot, log.FieldError, err)
		}
	}
}
