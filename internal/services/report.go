package services

import (
	"context"
	"io"

	"github.com/pkg/errors"

	"github.com/sitewise/sitewise-server/internal/model"
	"github.com/sitewise/sitewise-server/internal/report"
	"github.com/sitewise/sitewise-server/internal/roster"
	"github.com/sitewise/sitewise-server/internal/store"
)

// ReportService assembles aggregate views over visits, receipts and issues.
type ReportService struct {
	store store.Store
	ros   *roster.Roster
}

func NewReportService(s store.Store, ros *roster.Roster) *ReportService {
	if ros == nil {
		ros = roster.Empty()
	}
	return &ReportService{store: s, ros: ros}
}

func (s *ReportService) visits(ctx context.Context, f report.VisitFilter) ([]*model.Visit, error) {
	visits, err := s.store.Visits().List(ctx, model.ListVisitsRequest{
		From:    f.From,
		To:      f.To,
		Project: f.Project,
		Person:  f.Person,
	})
	if err != nil {
		return nil, err
	}
	if f.Team == "" {
		return visits, nil
	}
	return report.VisitFilter{Team: f.Team}.Apply(visits, s.ros), nil
}

// VisitSummary aggregates filtered visits by person, team and day.
func (s *ReportService) VisitSummary(ctx context.Context, f report.VisitFilter) (*report.VisitSummary, error) {
	visits, err := s.visits(ctx, f)
	if err != nil {
		return nil, err
	}
	sum := report.BuildVisitSummary(visits, s.ros)
	return &sum, nil
}

// PersonProjects lists one person's site visits with unique external
// project counts.
func (s *ReportService) PersonProjects(ctx context.Context, person string, f report.VisitFilter) (*report.PersonProjects, error) {
	if person == "" {
		return nil, errors.Wrap(model.ErrValidation, "person is required")
	}
	f.Person = person
	visits, err := s.visits(ctx, f)
	if err != nil {
		return nil, err
	}
	pp := report.BuildPersonProjects(person, visits)
	return &pp, nil
}

// DeliveryCoverage cross-references receipts against visits within the
// delivery window.
func (s *ReportService) DeliveryCoverage(ctx context.Context, from, to, project string) (*report.DeliveryCoverage, error) {
	receipts, err := s.store.Receipts().List(ctx, model.ListReceiptsRequest{From: from, To: to, Project: project})
	if err != nil {
		return nil, err
	}
	// Match against the full visit log; a receipt's visit may fall outside
	// the receipt listing filters only by project, never by date.
	visits, err := s.store.Visits().List(ctx, model.ListVisitsRequest{})
	if err != nil {
		return nil, err
	}
	cov := report.BuildDeliveryCoverage(receipts, visits)
	return &cov, nil
}

// Overview returns the dashboard headline numbers.
func (s *ReportService) Overview(ctx context.Context) (*report.Overview, error) {
	visits, err := s.store.Visits().List(ctx, model.ListVisitsRequest{})
	if err != nil {
		return nil, err
	}
	receipts, err := s.store.Receipts().List(ctx, model.ListReceiptsRequest{})
	if err != nil {
		return nil, err
	}
	issues, err := s.store.Issues().List(ctx)
	if err != nil {
		return nil, err
	}
	ov := report.BuildOverview(visits, receipts, issues)
	return &ov, nil
}

// Export renders sections as csv or xlsx.
func (s *ReportService) Export(w io.Writer, format string, sections []report.Section) error {
	switch format {
	case "csv", "":
		return report.WriteCSV(w, sections)
	case "xlsx":
		return report.WriteWorkbook(w, sections)
	default:
		return errors.Wrapf(model.ErrValidation, "unsupported format %q", format)
	}
}
