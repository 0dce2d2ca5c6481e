// Package snapshots persists named expense snapshots as parquet files under a
// storage root that is provisioned outside the application.
package snapshots

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/xitongsys/parquet-go-source/local"
	"github.com/xitongsys/parquet-go-source/writerfile"
	"github.com/xitongsys/parquet-go/parquet"
	"github.com/xitongsys/parquet-go/reader"
	"github.com/xitongsys/parquet-go/writer"

	"despesas/internal/core"
)

// Ext is the file extension of a stored snapshot.
const Ext = ".parquet"

// Store reads and writes snapshots directly on disk. It holds no in-memory
// state besides the root path and takes no locks; concurrent writers of the
// same name race and the last rename wins.
type Store struct {
	root string
}

// New returns a store rooted at root. The directory is not created.
func New(root string) *Store {
	return &Store{root: root}
}

// Root returns the storage root path.
func (s *Store) Root() string {
	return s.root
}

// ExistsRoot reports whether the storage root exists and is a directory.
func (s *Store) ExistsRoot() bool {
	info, err := os.Stat(s.root)
	return err == nil && info.IsDir()
}

// List returns the stored snapshot names in lexicographic order. A root that
// is absent or not a directory yields an empty list.
func (s *Store) List() ([]string, error) {
	if !s.ExistsRoot() {
		return []string{}, nil
	}
	entries, err := os.ReadDir(s.root)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", s.root, err)
	}

	names := make([]string, 0, len(entries))
	for _, e := range entries {
		n := e.Name()
		if e.IsDir() || strings.HasPrefix(n, ".") || !strings.HasSuffix(n, Ext) {
			continue
		}
		names = append(names, strings.TrimSuffix(n, Ext))
	}
	sort.Strings(names)
	return names, nil
}

// Exists reports whether a snapshot called name is stored.
func (s *Store) Exists(name string) bool {
	if core.ValidateSnapshotName(name) != nil {
		return false
	}
	info, err := os.Stat(s.path(name))
	return err == nil && info.Mode().IsRegular()
}

// Write stores records as name, replacing any previous snapshot. The file
// is written next to its final path and renamed into place, so readers never
// observe a partial snapshot.
func (s *Store) Write(name string, records []core.ExpenseRecord) error {
	if err := core.ValidateSnapshotName(name); err != nil {
		return err
	}
	if !s.ExistsRoot() {
		return fmt.Errorf("%w: %s", core.ErrStorageUnavailable, s.root)
	}

	rows := make([]snapshotRow, 0, len(records))
	for i, r := range records {
		row, err := toRow(r)
		if err != nil {
			return fmt.Errorf("snapshots: record %d: %w", i, err)
		}
		rows = append(rows, row)
	}

	final := s.path(name)
	tmp := filepath.Join(s.root, "."+name+Ext+".tmp")
	if err := writeParquet(tmp, rows); err != nil {
		os.Remove(tmp)
		return err
	}
	if err := os.Rename(tmp, final); err != nil {
		os.Remove(tmp)
		return fmt.Errorf("snapshots: commit %s: %w", name, err)
	}
	return nil
}

// Read loads every record of name from disk.
func (s *Store) Read(name string) ([]core.ExpenseRecord, error) {
	if err := core.ValidateSnapshotName(name); err != nil {
		return nil, err
	}
	path := s.path(name)
	if _, err := os.Stat(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", core.ErrNotFound, name)
		}
		return nil, fmt.Errorf("snapshots: stat %s: %w", name, err)
	}
	return readParquet(path)
}

// Delete removes name. Deleting an absent snapshot is ErrNotFound.
func (s *Store) Delete(name string) error {
	if err := core.ValidateSnapshotName(name); err != nil {
		return err
	}
	if err := os.Remove(s.path(name)); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("%w: %s", core.ErrNotFound, name)
		}
		return fmt.Errorf("snapshots: delete %s: %w", name, err)
	}
	return nil
}

func (s *Store) path(name string) string {
	return filepath.Join(s.root, name+Ext)
}

func writeParquet(path string, rows []snapshotRow) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("snapshots: create parquet: %w", err)
	}
	fw := writerfile.NewWriterFile(file)
	pw, err := writer.NewParquetWriter(fw, new(snapshotRow), 1)
	if err != nil {
		file.Close()
		return fmt.Errorf("snapshots: parquet schema: %w", err)
	}
	pw.CompressionType = parquet.CompressionCodec_SNAPPY

	for i := range rows {
		if err := pw.Write(&rows[i]); err != nil {
			pw.WriteStop()
			file.Close()
			return fmt.Errorf("snapshots: parquet write: %w", err)
		}
	}
	if err := pw.WriteStop(); err != nil {
		file.Close()
		return fmt.Errorf("snapshots: parquet flush: %w", err)
	}
	if err := file.Sync(); err != nil {
		file.Close()
		return fmt.Errorf("snapshots: sync parquet file: %w", err)
	}
	if err := file.Close(); err != nil {
		return fmt.Errorf("snapshots: close parquet file: %w", err)
	}
	return nil
}

func readParquet(path string) ([]core.ExpenseRecord, error) {
	fr, err := local.NewLocalFileReader(path)
	if err != nil {
		return nil, fmt.Errorf("snapshots: open parquet: %w", err)
	}
	defer fr.Close()

	pr, err := reader.NewParquetReader(fr, new(snapshotRow), 1)
	if err != nil {
		return nil, fmt.Errorf("snapshots: parquet schema: %w", err)
	}
	defer pr.ReadStop()

	n := int(pr.GetNumRows())
	records := make([]core.ExpenseRecord, 0, n)
	if n == 0 {
		return records, nil
	}

	rows := make([]snapshotRow, n)
	if err := pr.Read(&rows); err != nil {
		return nil, fmt.Errorf("snapshots: parquet read: %w", err)
	}
	for _, row := range rows {
		records = append(records, row.record())
	}
	return records, nil
}
