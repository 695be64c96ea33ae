// Package importlog keeps a CSV audit trail of imported balance-sheet files.
package importlog

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"
)

// Outcome is the result of importing one file.
type Outcome string

const (
	Imported Outcome = "imported"
	Rejected Outcome = "rejected"
	Skipped  Outcome = "skipped"
)

// Entry is one row in the import log.
type Entry struct {
	Timestamp time.Time
	BatchID   string
	CompanyID string
	Period    string
	File      string
	Accounts  int
	Outcome   Outcome
	Error     string
}

// Header is the CSV header for import-log.csv.
const Header = "timestamp,batch,company,period,file,accounts,outcome,error"

const (
	numFields    = 8
	logDir       = "logs"
	logFile      = "logs/import-log.csv"
	colTimestamp = 0
	colBatch     = 1
	colCompany   = 2
	colPeriod    = 3
	colFile      = 4
	colAccounts  = 5
	colOutcome   = 6
	colError     = 7
)

// MarshalEntry converts an Entry to a CSV row.
func MarshalEntry(e Entry) []string {
	row := make([]string, numFields)
	row[colTimestamp] = e.Timestamp.Format(time.RFC3339)
	row[colBatch] = e.BatchID
	row[colCompany] = e.CompanyID
	row[colPeriod] = e.Period
	row[colFile] = e.File
	row[colAccounts] = strconv.Itoa(e.Accounts)
	row[colOutcome] = string(e.Outcome)
	row[colError] = e.Error
	return row
}

// UnmarshalEntry converts a CSV row to an Entry.
func UnmarshalEntry(record []string) (Entry, error) {
	if len(record) != numFields {
		return Entry{}, fmt.Errorf("expected %d fields, got %d", numFields, len(record))
	}
	ts, err := time.Parse(time.RFC3339, record[colTimestamp])
	if err != nil {
		return Entry{}, fmt.Errorf("parsing timestamp %q: %w", record[colTimestamp], err)
	}
	n, err := strconv.Atoi(record[colAccounts])
	if err != nil {
		return Entry{}, fmt.Errorf("parsing accounts %q: %w", record[colAccounts], err)
	}
	return Entry{
		Timestamp: ts,
		BatchID:   record[colBatch],
		CompanyID: record[colCompany],
		Period:    record[colPeriod],
		File:      record[colFile],
		Accounts:  n,
		Outcome:   Outcome(record[colOutcome]),
		Error:     record[colError],
	}, nil
}

// Append writes entries to <root>/logs/import-log.csv, creating the file and header if needed.
func Append(root string, entries []Entry) error {
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
		return fmt.Errorf("opening import log: %w", err)
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

// Read returns all entries from <root>/logs/import-log.csv.
// Returns an empty slice if the file does not exist.
func Read(root string) ([]Entry, error) {
	f, err := os.Open(filepath.Join(root, logFile))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("opening import log: %w", err)
	}
	defer f.Close()
	return readEntries(f)
}

func readEntries(r io.Reader) ([]Entry, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = numFields

	records, err := cr.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("reading import log CSV: %w", err)
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
