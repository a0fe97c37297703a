package services

import (
	"context"
	"io"

	"github.com/pkg/errors"

	"github.com/sitewise/sitewise-server/internal/dates"
	"github.com/sitewise/sitewise-server/internal/importer"
	"github.com/sitewise/sitewise-server/internal/model"
	"github.com/sitewise/sitewise-server/internal/report"
	"github.com/sitewise/sitewise-server/internal/roster"
	"github.com/sitewise/sitewise-server/internal/store"
)

// VisitService handles visit records: CSV import/export, manual entry and
// filtered listing.
type VisitService struct {
	store store.Store
	ros   *roster.Roster
}

func NewVisitService(s store.Store, ros *roster.Roster) *VisitService {
	if ros == nil {
		ros = roster.Empty()
	}
	return &VisitService{store: s, ros: ros}
}

// ImportCSV parses a visit log export and stores every row, or nothing when
// any row fails validation.
func (s *VisitService) ImportCSV(ctx context.Context, r io.Reader) ([]*model.Visit, error) {
	visits, err := importer.ParseVisits(r)
	if err != nil {
		return nil, errors.Wrap(model.ErrValidation, err.Error())
	}
	return s.store.Visits().CreateBatch(ctx, visits)
}

// CreateManual records a single hand-entered visit.
func (s *VisitService) CreateManual(ctx context.Context, v *model.Visit) (*model.Visit, error) {
	if v.Person == "" || v.Project == "" || v.Date == "" {
		return nil, errors.Wrap(model.ErrValidation, "person, project and date are required")
	}
	date, err := dates.Normalize(v.Date)
	if err != nil {
		return nil, errors.Wrapf(model.ErrValidation, "date: %v", err)
	}
	v.Date = date
	// Same rule as imported rows: malformed or zero durations land in the
	// improper bucket instead of the duration sums.
	secs, ok := report.ParseDurationSeconds(v.DurationRaw)
	v.DurationSeconds = secs
	v.Improper = !ok || secs == 0
	v.Source = model.SourceManual

	created, err := s.store.Visits().CreateBatch(ctx, []*model.Visit{v})
	if err != nil {
		return nil, err
	}
	return created[0], nil
}

// ListVisits returns visits matching the filter. From/To/Project/Person push
// down to storage; the team filter resolves against the roster in memory.
func (s *VisitService) ListVisits(ctx context.Context, f report.VisitFilter) ([]*model.Visit, error) {
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

func (s *VisitService) GetVisit(ctx context.Context, visitID string) (*model.Visit, error) {
	return s.store.Visits().GetByID(ctx, visitID)
}

// ExportCSV writes the filtered visits back out in the import layout plus
// normalized duration columns.
func (s *VisitService) ExportCSV(ctx context.Context, w io.Writer, f report.VisitFilter) error {
	visits, err := s.ListVisits(ctx, f)
	if err != nil {
		return err
	}
	return importer.WriteVisitsCSV(w, visits)
}

// ClearVisits removes every visit record.
func (s *VisitService) ClearVisits(ctx context.Context) error {
	return s.store.Visits().DeleteAll(ctx)
}

// ReceiptService handles delivery receipt records.
type ReceiptService struct {
	store store.Store
}

func NewReceiptService(s store.Store) *ReceiptService { return &ReceiptService{store: s} }

// ImportCSV parses a material receipt export and stores every row, or
// nothing when any row fails validation.
func (s *ReceiptService) ImportCSV(ctx context.Context, r io.Reader) ([]*model.Receipt, error) {
	receipts, err := importer.ParseReceipts(r)
	if err != nil {
		return nil, errors.Wrap(model.ErrValidation, err.Error())
	}
	return s.store.Receipts().CreateBatch(ctx, receipts)
}

// CreateManual records a single hand-entered delivery receipt.
func (s *ReceiptService) CreateManual(ctx context.Context, r *model.Receipt) (*model.Receipt, error) {
	if r.Project == "" || r.MRFNumber == "" || r.Material == "" || r.ReceivedDate == "" {
		return nil, errors.Wrap(model.ErrValidation, "project, mrfNumber, material and receivedDate are required")
	}
	date, err := dates.Normalize(r.ReceivedDate)
	if err != nil {
		return nil, errors.Wrapf(model.ErrValidation, "receivedDate: %v", err)
	}
	r.ReceivedDate = date

	created, err := s.store.Receipts().CreateBatch(ctx, []*model.Receipt{r})
	if err != nil {
		return nil, err
	}
	return created[0], nil
}

func (s *ReceiptService) ListReceipts(ctx context.Context, req model.ListReceiptsRequest) ([]*model.Receipt, error) {
	return s.store.Receipts().List(ctx, req)
}

func (s *ReceiptService) ExportCSV(ctx context.Context, w io.Writer, req model.ListReceiptsRequest) error {
	receipts, err := s.store.Receipts().List(ctx, req)
	if err != nil {
		return err
	}
	return importer.WriteReceiptsCSV(w, receipts)
}

func (s *ReceiptService) ClearReceipts(ctx context.Context) error {
	return s.store.Receipts().DeleteAll(ctx)
}
