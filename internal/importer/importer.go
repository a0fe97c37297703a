// Package importer parses visit and material receipt CSV uploads into typed
// records, and writes the matching exports.
//
// Imports are all-or-nothing: a header mismatch or a first invalid row
// aborts the whole batch with a single error, so a failed upload never
// leaves partial state behind.
package importer

import (
	"encoding/csv"
	"fmt"
	"io"
	"sort"
	"strings"

	"github.com/sitewise/sitewise-server/internal/dates"
	"github.com/sitewise/sitewise-server/internal/model"
	"github.com/sitewise/sitewise-server/internal/report"
)

// Visit CSV columns, as produced by the site gate log export.
var VisitHeaders = []string{
	"Sl No", "Date", "Visitor Name", "Department", "Designation",
	"Visited Project Name", "Entry Time", "Out Time", "Duration", "Formula",
}

// Material receipt CSV columns. Receipt files come from a spreadsheet with
// extra bookkeeping columns, so this set is matched in superset mode.
var ReceiptHeaders = []string{
	"Sl No", "Project", "MRF Number", "Supplier", "Material Name",
	"Quantity", "Unit", "Receiving Date", "Receiving Time",
}

type headerMode int

const (
	// exactMatch requires the header set to equal the expected set
	// (order-independent).
	exactMatch headerMode = iota
	// supersetMatch tolerates extra columns; every expected column must
	// still be present.
	supersetMatch
)

func headerIndex(got, expected []string, mode headerMode) (map[string]int, error) {
	idx := make(map[string]int, len(got))
	for i, h := range got {
		idx[strings.TrimSpace(h)] = i
	}
	var missing []string
	for _, h := range expected {
		if _, ok := idx[h]; !ok {
			missing = append(missing, h)
		}
	}
	if len(missing) > 0 {
		sort.Strings(missing)
		return nil, fmt.Errorf("CSV header mismatch: missing columns %s", strings.Join(missing, ", "))
	}
	if mode == exactMatch && len(idx) != len(expected) {
		return nil, fmt.Errorf("CSV header mismatch: expected exactly columns %s", strings.Join(expected, ", "))
	}
	return idx, nil
}

func field(record []string, idx map[string]int, name string) string {
	i, ok := idx[name]
	if !ok || i >= len(record) {
		return ""
	}
	return strings.TrimSpace(record[i])
}

// row carries a data record with the row number a user sees in a
// spreadsheet (header row + 1-based display, so data row index + 2).
type row struct {
	num int
	rec []string
}

// ParseVisits reads a visit CSV. Header mode is exact: an unexpected or
// missing column aborts with zero records. The first row missing a
// mandatory field or carrying an unparseable date aborts the import with
// the display row number. Malformed durations do not abort; they parse to
// zero and flag the row improper.
func ParseVisits(r io.Reader) ([]*model.Visit, error) {
	rows, idx, err := readAll(r, VisitHeaders, exactMatch)
	if err != nil {
		return nil, err
	}
	out := make([]*model.Visit, 0, len(rows))
	for _, r := range rows {
		rec := r.rec
		person := field(rec, idx, "Visitor Name")
		if person == "" {
			return nil, fmt.Errorf("row %d: missing Visitor Name", r.num)
		}
		project := field(rec, idx, "Visited Project Name")
		if project == "" {
			return nil, fmt.Errorf("row %d: missing Visited Project Name", r.num)
		}
		rawDate := field(rec, idx, "Date")
		if rawDate == "" {
			return nil, fmt.Errorf("row %d: missing Date", r.num)
		}
		date, err := dates.Normalize(rawDate)
		if err != nil {
			return nil, fmt.Errorf("row %d: %v", r.num, err)
		}

		durRaw := field(rec, idx, "Duration")
		secs, ok := report.ParseDurationSeconds(durRaw)
		out = append(out, &model.Visit{
			Date:            date,
			Person:          person,
			Department:      field(rec, idx, "Department"),
			Designation:     field(rec, idx, "Designation"),
			Project:         project,
			EntryTime:       field(rec, idx, "Entry Time"),
			OutTime:         field(rec, idx, "Out Time"),
			DurationRaw:     durRaw,
			DurationSeconds: secs,
			Improper:        !ok || secs == 0,
			Source:          model.SourceImport,
		})
	}
	return out, nil
}

// ParseReceipts reads a material receipt CSV in superset header mode.
func ParseReceipts(r io.Reader) ([]*model.Receipt, error) {
	rows, idx, err := readAll(r, ReceiptHeaders, supersetMatch)
	if err != nil {
		return nil, err
	}
	out := make([]*model.Receipt, 0, len(rows))
	for _, r := range rows {
		rec := r.rec
		project := field(rec, idx, "Project")
		if project == "" {
			return nil, fmt.Errorf("row %d: missing Project", r.num)
		}
		mrf := field(rec, idx, "MRF Number")
		if mrf == "" {
			return nil, fmt.Errorf("row %d: missing MRF Number", r.num)
		}
		material := field(rec, idx, "Material Name")
		if material == "" {
			return nil, fmt.Errorf("row %d: missing Material Name", r.num)
		}
		rawDate := field(rec, idx, "Receiving Date")
		if rawDate == "" {
			return nil, fmt.Errorf("row %d: missing Receiving Date", r.num)
		}
		date, err := dates.Normalize(rawDate)
		if err != nil {
			return nil, fmt.Errorf("row %d: %v", r.num, err)
		}
		out = append(out, &model.Receipt{
			Project:      project,
			MRFNumber:    mrf,
			Supplier:     field(rec, idx, "Supplier"),
			Material:     material,
			Quantity:     field(rec, idx, "Quantity"),
			Unit:         field(rec, idx, "Unit"),
			ReceivedDate: date,
			ReceivedTime: field(rec, idx, "Receiving Time"),
		})
	}
	return out, nil
}

func readAll(r io.Reader, expected []string, mode headerMode) ([]row, map[string]int, error) {
	cr := csv.NewReader(r)
	cr.TrimLeadingSpace = true
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err != nil {
		return nil, nil, fmt.Errorf("unable to read header: %w", err)
	}
	idx, err := headerIndex(header, expected, mode)
	if err != nil {
		return nil, nil, err
	}

	var rows []row
	num := 1 // header is row 1
	for {
		rec, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, nil, fmt.Errorf("unable to read CSV: %w", err)
		}
		num++
		if isBlank(rec) {
			continue
		}
		rows = append(rows, row{num: num, rec: rec})
	}
	return rows, idx, nil
}

func isBlank(rec []string) bool {
	for _, f := range rec {
		if strings.TrimSpace(f) != "" {
			return false
		}
	}
	return true
}
