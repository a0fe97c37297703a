package importer

import (
	"encoding/csv"
	"io"
	"strconv"

	"github.com/sitewise/sitewise-server/internal/model"
	"github.com/sitewise/sitewise-server/internal/report"
)

// WriteVisitsCSV writes visits using the import header set plus computed
// columns, so an export round-trips through the importer.
func WriteVisitsCSV(w io.Writer, visits []*model.Visit) error {
	cw := csv.NewWriter(w)
	headers := append(append([]string{}, VisitHeaders...), "Normalized Duration", "Improper")
	if err := cw.Write(headers); err != nil {
		return err
	}
	for i, v := range visits {
		improper := ""
		if v.Improper {
			improper = "Yes"
		}
		rec := []string{
			strconv.Itoa(i + 1), v.Date, v.Person, v.Department, v.Designation,
			v.Project, v.EntryTime, v.OutTime, v.DurationRaw, "",
			report.FormatMinutes(v.DurationSeconds), improper,
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteReceiptsCSV writes material receipts using the import header set.
func WriteReceiptsCSV(w io.Writer, receipts []*model.Receipt) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(ReceiptHeaders); err != nil {
		return err
	}
	for i, r := range receipts {
		rec := []string{
			strconv.Itoa(i + 1), r.Project, r.MRFNumber, r.Supplier, r.Material,
			r.Quantity, r.Unit, r.ReceivedDate, r.ReceivedTime,
		}
		if err := cw.Write(rec); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}
