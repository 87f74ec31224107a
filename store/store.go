// Package store persists call records into a workbook partitioned by
// calendar month: one sheet per year-month, sheet row 1 is the schema
// header. Appends rewrite only the target sheet; loads merge every sheet
// into one time-ordered view.
package store

import (
	"errors"
	"fmt"
	"io/fs"
	"log"
	"os"
	"sort"
	"time"

	"github.com/xuri/excelize/v2"

	"calldesk/record"
)

// Load statuses distinguish "expected empty" from "degraded" results.
const (
	StatusOK      = "ok"
	StatusEmpty   = "empty"   // backing file does not exist yet
	StatusCorrupt = "corrupt" // file unreadable; view degraded to zero rows
)

// Row is one record in the merged view with its parsed timestamp. Dated is
// false when the timestamp did not parse; such rows sort after all dated
// rows and are excluded from period filtering.
type Row struct {
	record.CallRecord
	At    time.Time
	Dated bool
}

// MergedView is the concatenation of all partitions, ordered by parsed
// timestamp descending.
type MergedView struct {
	Rows   []Row
	Status string
}

// Store owns one workbook file. It is stateless between calls; every
// operation is a blocking read-or-write of the backing file.
type Store struct {
	path string
}

func New(path string) *Store {
	return &Store{path: path}
}

// Path returns the backing workbook location.
func (s *Store) Path() string { return s.path }

// Append routes rec into its month partition and persists it after any
// rows already in that partition. Other partitions are left untouched.
// Persistence failure (including the file being locked by another
// process) is returned to the caller; there is no retry. Concurrent
// appends from two processes are not isolated: last write wins.
func (s *Store) Append(rec record.CallRecord) error {
	key := record.PartitionKey(rec.Timestamp)

	if _, err := os.Stat(s.path); errors.Is(err, fs.ErrNotExist) {
		return s.create(key, rec)
	}

	f, err := excelize.OpenFile(s.path)
	if err != nil {
		return fmt.Errorf("store: open %s: %w", s.path, err)
	}
	defer f.Close()

	rows, err := sheetRows(f, key)
	if err != nil {
		return err
	}
	if len(rows) == 0 {
		rows = [][]string{headerRow()}
	}
	rows = append(rows, rec.Row())

	if err := writeSheet(f, key, rows); err != nil {
		return err
	}
	if err := f.Save(); err != nil {
		return fmt.Errorf("store: save %s: %w", s.path, err)
	}
	return nil
}

// create writes a fresh workbook holding a single partition with one record.
func (s *Store) create(key string, rec record.CallRecord) error {
	f := excelize.NewFile()
	defer f.Close()
	if err := f.SetSheetName("Sheet1", key); err != nil {
		return fmt.Errorf("store: name sheet %s: %w", key, err)
	}
	if err := writeSheet(f, key, [][]string{headerRow(), rec.Row()}); err != nil {
		return err
	}
	if err := f.SaveAs(s.path); err != nil {
		return fmt.Errorf("store: create %s: %w", s.path, err)
	}
	return nil
}

// LoadAll reads every partition, backfills short rows to the full schema,
// and returns the merged view sorted by parsed timestamp descending. A
// missing file yields zero rows with StatusEmpty; an unreadable file
// degrades to zero rows with StatusCorrupt rather than failing the caller.
func (s *Store) LoadAll() MergedView {
	if _, err := os.Stat(s.path); errors.Is(err, fs.ErrNotExist) {
		return MergedView{Status: StatusEmpty}
	}

	f, err := excelize.OpenFile(s.path)
	if err != nil {
		log.Printf("store: load %s: %v", s.path, err)
		return MergedView{Status: StatusCorrupt}
	}
	defer f.Close()

	var out []Row
	for _, sheet := range f.GetSheetList() {
		rows, err := f.GetRows(sheet)
		if err != nil {
			log.Printf("store: read sheet %s: %v", sheet, err)
			return MergedView{Status: StatusCorrupt}
		}
		for i, raw := range rows {
			if i == 0 && isHeader(raw) {
				continue
			}
			if blank(raw) {
				continue
			}
			rec := record.FromRow(raw)
			at, ok := record.ParseTimestamp(rec.Timestamp)
			out = append(out, Row{CallRecord: rec, At: at, Dated: ok})
		}
	}

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Dated != out[j].Dated {
			return out[i].Dated
		}
		return out[i].At.After(out[j].At)
	})
	return MergedView{Rows: out, Status: StatusOK}
}

// Partitions lists the sheet names currently in the workbook.
func (s *Store) Partitions() ([]string, error) {
	f, err := excelize.OpenFile(s.path)
	if err != nil {
		return nil, fmt.Errorf("store: open %s: %w", s.path, err)
	}
	defer f.Close()
	return f.GetSheetList(), nil
}

// sheetRows returns the named sheet's rows, creating the sheet when it is
// absent. A missing sheet is an empty partition, not an error.
func sheetRows(f *excelize.File, key string) ([][]string, error) {
	idx, err := f.GetSheetIndex(key)
	if err != nil {
		return nil, fmt.Errorf("store: sheet index %s: %w", key, err)
	}
	if idx < 0 {
		if _, err := f.NewSheet(key); err != nil {
			return nil, fmt.Errorf("store: new sheet %s: %w", key, err)
		}
		return nil, nil
	}
	rows, err := f.GetRows(key)
	if err != nil {
		return nil, fmt.Errorf("store: read sheet %s: %w", key, err)
	}
	return rows, nil
}

func writeSheet(f *excelize.File, key string, rows [][]string) error {
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return fmt.Errorf("store: cell name: %w", err)
		}
		cells := make([]interface{}, len(row))
		for j, v := range row {
			cells[j] = v
		}
		if err := f.SetSheetRow(key, cell, &cells); err != nil {
			return fmt.Errorf("store: write sheet %s: %w", key, err)
		}
	}
	return nil
}

func headerRow() []string {
	return append([]string(nil), record.Columns...)
}

func isHeader(row []string) bool {
	return len(row) > 0 && row[0] == record.Columns[0]
}

func blank(row []string) bool {
	for _, v := range row {
		if v != "" {
			return false
		}
	}
	return true
}
