// Package runlog keeps a CSV history of reconciliation runs in a project
// directory.
package runlog

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/cleared-dev/conferencia/internal/model"
)

// Entry is one row in the run log.
type Entry struct {
	Timestamp   time.Time
	CompanyID   int
	PlanID      int
	Start       time.Time
	End         time.Time
	CFOPs       int
	Confirmed   int
	Divergences int
	ExportDir   string
}

// Header is the CSV header for logs/conferencias.csv.
const Header = "timestamp,empresa,plano,inicio,fim,cfops,conferidos,divergencias,exportacao"

const (
	numFields      = 9
	logDir         = "logs"
	logFile        = "logs/conferencias.csv"
	colTimestamp   = 0
	colCompany     = 1
	colPlan        = 2
	colStart       = 3
	colEnd         = 4
	colCFOPs       = 5
	colConfirmed   = 6
	colDivergences = 7
	colExportDir   = 8
)

// FromResult summarizes a finished run.
func FromResult(at time.Time, companyID, planID int, start, end time.Time, res *model.Result, exportDir string) Entry {
	return Entry{
		Timestamp:   at,
		CompanyID:   companyID,
		PlanID:      planID,
		Start:       start,
		End:         end,
		CFOPs:       res.TotalCFOPsEntrada + res.TotalCFOPsSaida,
		Confirmed:   res.CFOPsEntradaConferidos + res.CFOPsSaidaConferidos,
		Divergences: res.DivergenceCount,
		ExportDir:   exportDir,
	}
}

// MarshalEntry converts an Entry to a CSV row.
func MarshalEntry(e Entry) []string {
	row := make([]string, numFields)
	row[colTimestamp] = e.Timestamp.Format(time.RFC3339)
	row[colCompany] = strconv.Itoa(e.CompanyID)
	row[colPlan] = strconv.Itoa(e.PlanID)
	row[colStart] = e.Start.Format(time.DateOnly)
	row[colEnd] = e.End.Format(time.DateOnly)
	row[colCFOPs] = strconv.Itoa(e.CFOPs)
	row[colConfirmed] = strconv.Itoa(e.Confirmed)
	row[colDivergences] = strconv.Itoa(e.Divergences)
	row[colExportDir] = e.ExportDir
	return row
}

// UnmarshalEntry converts a CSV row to an Entry.
func UnmarshalEntry(record []string) (Entry, error) {
	if len(record) != numFields {
		return Entry{}, fmt.Errorf("expected %d fields, got %d", numFields, len(record))
	}

	var (
		e   Entry
		err error
	)
	if e.Timestamp, err = time.Parse(time.RFC3339, record[colTimestamp]); err != nil {
		return Entry{}, fmt.Errorf("parsing timestamp %q: %w", record[colTimestamp], err)
	}
	if e.Start, err = time.Parse(time.DateOnly, record[colStart]); err != nil {
		return Entry{}, fmt.Errorf("parsing inicio %q: %w", record[colStart], err)
	}
	if e.End, err = time.Parse(time.DateOnly, record[colEnd]); err != nil {
		return Entry{}, fmt.Errorf("parsing fim %q: %w", record[colEnd], err)
	}

	ints := []struct {
		col int
		dst *int
	}{
		{colCompany, &e.CompanyID},
		{colPlan, &e.PlanID},
		{colCFOPs, &e.CFOPs},
		{colConfirmed, &e.Confirmed},
		{colDivergences, &e.Divergences},
	}
	for _, f := range ints {
		if *f.dst, err = strconv.Atoi(record[f.col]); err != nil {
			return Entry{}, fmt.Errorf("parsing column %d %q: %w", f.col+1, record[f.col], err)
		}
	}
	e.ExportDir = record[colExportDir]
	return e, nil
}

// Append writes entries to <root>/logs/conferencias.csv, creating the file
// and header if needed.
func Append(root string, entries ...Entry) error {
	dir := filepath.Join(root, logDir)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating logs dir: %w", err)
	}

	path := filepath.Join(root, logFile)
	needsHeader := false
	if _, err := os.Stat(path); os.IsNotExist(err) {
		needsHeader = true
	}

	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("opening run log: %w", err)
	}
	defer f.Close()

	cw := csv.NewWriter(f)
	if needsHeader {
		if err := cw.Write(strings.Split(Header, ",")); err != nil {
			return fmt.Errorf("writing header: %w", err)
		}
	}
	for i, e := range entries {
		if err := cw.Write(MarshalEntry(e)); err != nil {
			return fmt.Errorf("writing entry %d: %w", i, err)
		}
	}
	cw.Flush()
	return cw.Error()
}

// Read returns all entries from <root>/logs/conferencias.csv, or nil when
// the file does not exist.
func Read(root string) ([]Entry, error) {
	f, err := os.Open(filepath.Join(root, logFile))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("opening run log: %w", err)
	}
	defer f.Close()

	return readEntries(f)
}

func readEntries(r io.Reader) ([]Entry, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = numFields

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading run log CSV: %w", err)
	}
	if len(records) <= 1 {
		return nil, nil
	}

	var entries []Entry
	for i, rec := range records[1:] {
		e, err := UnmarshalEntry(rec)
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", i+2, err)
		}
		entries = append(entries, e)
	}
	return entries, nil
}
