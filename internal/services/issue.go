package services

import (
	"context"
	"time"

	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"github.com/sitewise/sitewise-server/internal/model"
	"github.com/sitewise/sitewise-server/internal/store"
)

// Classifier produces an analysis for an issue report. Satisfied by
// *insights.Client; nil when no upstream is configured.
type Classifier interface {
	Classify(ctx context.Context, description string, photos []model.Photo) (*model.Analysis, error)
}

// IssueService handles reported site problems and their analysis.
type IssueService struct {
	store      store.Store
	classifier Classifier
	log        zerolog.Logger
}

func NewIssueService(s store.Store, c Classifier, log zerolog.Logger) *IssueService {
	return &IssueService{store: s, classifier: c, log: log}
}

// CreateIssue records a new open issue. Analysis starts empty and is filled
// in by Analyze.
func (s *IssueService) CreateIssue(ctx context.Context, is *model.Issue) (*model.Issue, error) {
	if is.Project == "" || is.Description == "" {
		return nil, errors.Wrap(model.ErrValidation, "project and description are required")
	}
	is.Status = model.IssueOpen
	is.Analysis = nil
	return s.store.Issues().Create(ctx, is)
}

func (s *IssueService) GetIssue(ctx context.Context, issueID string) (*model.Issue, error) {
	return s.store.Issues().GetByID(ctx, issueID)
}

func (s *IssueService) ListIssues(ctx context.Context) ([]*model.Issue, error) {
	return s.store.Issues().List(ctx)
}

// AddComment appends a note to an existing issue.
func (s *IssueService) AddComment(ctx context.Context, issueID, author, text string) (*model.Issue, error) {
	if text == "" {
		return nil, errors.Wrap(model.ErrValidation, "comment text is required")
	}
	return s.store.Issues().AddComment(ctx, issueID, model.Comment{
		Author:       author,
		Text:         text,
		CreationTime: time.Now().UTC(),
	})
}

// Analyze runs the classifier over the issue text and photos and stores the
// result. On classifier failure the stored analysis stays untouched and the
// error propagates to the caller; there is no retry.
func (s *IssueService) Analyze(ctx context.Context, issueID string) (*model.Issue, error) {
	if s.classifier == nil {
		return nil, errors.Wrap(model.ErrValidation, "analysis upstream is not configured")
	}
	is, err := s.store.Issues().GetByID(ctx, issueID)
	if err != nil {
		return nil, err
	}
	a, err := s.classifier.Classify(ctx, is.Description, is.Photos)
	if err != nil {
		s.log.Warn().Err(err).Str("issue_id", issueID).Msg("issue analysis failed")
		return nil, err
	}
	return s.store.Issues().SetAnalysis(ctx, issueID, a)
}

// SetStatus transitions an issue between OPEN and CLOSED.
func (s *IssueService) SetStatus(ctx context.Context, issueID, status string) (*model.Issue, error) {
	if status != model.IssueOpen && status != model.IssueClosed {
		return nil, errors.Wrapf(model.ErrValidation, "unknown status %q", status)
	}
	return s.store.Issues().SetStatus(ctx, issueID, status)
}

func (s *IssueService) DeleteIssue(ctx context.Context, issueID string) error {
	return s.store.Issues().Delete(ctx, issueID)
}
