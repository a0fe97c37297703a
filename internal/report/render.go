package report

import (
	"encoding/csv"
	"fmt"
	"io"
	"strconv"

	"github.com/xuri/excelize/v2"
)

// Section is one table of a rendered report. Reports expose their tabular
// form through Sections(); renderers below turn sections into CSV or an
// xlsx workbook (one sheet per section).
type Section struct {
	Title   string
	Headers []string
	Rows    [][]string
}

// WriteCSV renders sections as a single CSV document. Multi-section reports
// separate sections with a title row and a blank line.
func WriteCSV(w io.Writer, sections []Section) error {
	cw := csv.NewWriter(w)
	for i, sec := range sections {
		if len(sections) > 1 {
			if i > 0 {
				if err := cw.Write([]string{}); err != nil {
					return err
				}
			}
			if err := cw.Write([]string{sec.Title}); err != nil {
				return err
			}
		}
		if err := cw.Write(sec.Headers); err != nil {
			return err
		}
		for _, row := range sec.Rows {
			if err := cw.Write(row); err != nil {
				return err
			}
		}
	}
	cw.Flush()
	return cw.Error()
}

// WriteWorkbook renders sections as an xlsx workbook, one sheet per section.
func WriteWorkbook(w io.Writer, sections []Section) error {
	f := excelize.NewFile()
	defer func() { _ = f.Close() }()

	for i, sec := range sections {
		sheet := sec.Title
		if sheet == "" {
			sheet = fmt.Sprintf("Sheet%d", i+1)
		}
		if i == 0 {
			// rename the default sheet instead of leaving an empty Sheet1
			if err := f.SetSheetName("Sheet1", sheet); err != nil {
				return err
			}
		} else {
			if _, err := f.NewSheet(sheet); err != nil {
				return err
			}
		}
		for col, h := range sec.Headers {
			cell, err := excelize.CoordinatesToCellName(col+1, 1)
			if err != nil {
				return err
			}
			if err := f.SetCellValue(sheet, cell, h); err != nil {
				return err
			}
		}
		for rowIdx, row := range sec.Rows {
			for col, val := range row {
				cell, err := excelize.CoordinatesToCellName(col+1, rowIdx+2)
				if err != nil {
					return err
				}
				if err := f.SetCellValue(sheet, cell, val); err != nil {
					return err
				}
			}
		}
	}
	return f.Write(w)
}

func boolMark(b bool) string {
	if b {
		return "Yes"
	}
	return ""
}

// Sections renders the visit summary: people, teams, and per-day tables.
func (s VisitSummary) Sections() []Section {
	people := Section{
		Title:   "People",
		Headers: []string{"Person", "Team", "Visits", "Improper", "Duration", "Projects"},
	}
	for _, p := range s.People {
		people.Rows = append(people.Rows, []string{
			p.Person, p.Team, strconv.Itoa(p.VisitCount), strconv.Itoa(p.ImproperCount), p.Duration, strconv.Itoa(p.ProjectCount),
		})
	}
	teams := Section{
		Title:   "Teams",
		Headers: []string{"Team", "Members", "Visits", "Improper", "Duration"},
	}
	for _, t := range s.Teams {
		teams.Rows = append(teams.Rows, []string{
			t.Team, strconv.Itoa(len(t.Members)), strconv.Itoa(t.VisitCount), strconv.Itoa(t.ImproperCount), t.Duration,
		})
	}
	days := Section{
		Title:   "Days",
		Headers: []string{"Date", "Visits"},
	}
	for _, d := range s.Days {
		days.Rows = append(days.Rows, []string{d.Date, strconv.Itoa(d.VisitCount)})
	}
	return []Section{people, teams, days}
}

// Sections renders the person/project report as a single table with a
// trailing totals row.
func (p PersonProjects) Sections() []Section {
	sec := Section{
		Title:   "Project Visits",
		Headers: []string{"Date", "Project", "Entry Time", "Out Time", "Duration", "Improper"},
	}
	for _, v := range p.Visits {
		sec.Rows = append(sec.Rows, []string{v.Date, v.Project, v.EntryTime, v.OutTime, v.Duration, boolMark(v.Improper)})
	}
	totals := Section{
		Title:   "Totals",
		Headers: []string{"Person", "Total Visits", "Unique External Projects", "Total Duration"},
		Rows: [][]string{{
			p.Person, strconv.Itoa(p.TotalVisits), strconv.Itoa(p.UniqueExternalProjects), p.TotalDuration,
		}},
	}
	return []Section{sec, totals}
}

func outcomeLabel(o MatchOutcome) string {
	switch o {
	case VisitFound:
		return "Visit Found"
	case NoVisit:
		return "No Visit in Window"
	case UnreadableTime:
		return "Unreadable Time"
	}
	return string(o)
}

// Sections renders the delivery coverage report.
func (c DeliveryCoverage) Sections() []Section {
	matches := Section{
		Title:   "Deliveries",
		Headers: []string{"Project", "MRF Number", "Material", "Received Date", "Received Time", "Outcome", "Matched Person", "Entry Time", "Out Time"},
	}
	for _, m := range c.Matches {
		row := []string{
			m.Receipt.Project, m.Receipt.MRFNumber, m.Receipt.Material,
			m.Receipt.ReceivedDate, m.Receipt.ReceivedTime, outcomeLabel(m.Outcome),
			"", "", "",
		}
		if m.Visit != nil {
			row[6], row[7], row[8] = m.Visit.Person, m.Visit.EntryTime, m.Visit.OutTime
		}
		matches.Rows = append(matches.Rows, row)
	}
	summary := Section{
		Title:   "Coverage",
		Headers: []string{"Total", "Visit Found", "No Visit", "Unreadable", "Coverage"},
		Rows: [][]string{{
			strconv.Itoa(c.Total), strconv.Itoa(c.Found), strconv.Itoa(c.Missed),
			strconv.Itoa(c.Unreadable), fmt.Sprintf("%.0f%%", c.CoverageRatio*100),
		}},
	}
	return []Section{matches, summary}
}
