package store

import (
	"context"

	"github.com/sitewise/sitewise-server/internal/model"
)

// Store exposes persistence operations required by services.
// Implementations live under internal/store/<driver>/ (sqlite, postgres).
type Store interface {
	Users() Users
	Visits() Visits
	Receipts() Receipts
	Issues() Issues
}

type Users interface {
	Create(ctx context.Context, u *model.User) (*model.User, error)
	Get(ctx context.Context, userID string) (*model.User, error)
	GetByEmail(ctx context.Context, email string) (*model.User, error)
	List(ctx context.Context) ([]*model.User, error)
	Update(ctx context.Context, u *model.User) (*model.User, error)
	Count(ctx context.Context) (int, error)
}

type Visits interface {
	// CreateBatch inserts all visits or none; imports rely on this being
	// all-or-nothing.
	CreateBatch(ctx context.Context, vs []*model.Visit) ([]*model.Visit, error)
	GetByID(ctx context.Context, visitID string) (*model.Visit, error)
	// List returns visits matching the request filters, newest date first.
	List(ctx context.Context, req model.ListVisitsRequest) ([]*model.Visit, error)
	DeleteAll(ctx context.Context) error
}

type Receipts interface {
	CreateBatch(ctx context.Context, rs []*model.Receipt) ([]*model.Receipt, error)
	List(ctx context.Context, req model.ListReceiptsRequest) ([]*model.Receipt, error)
	DeleteAll(ctx context.Context) error
}

type Issues interface {
	Create(ctx context.Context, is *model.Issue) (*model.Issue, error)
	GetByID(ctx context.Context, issueID string) (*model.Issue, error)
	List(ctx context.Context) ([]*model.Issue, error)
	AddComment(ctx context.Context, issueID string, c model.Comment) (*model.Issue, error)
	SetAnalysis(ctx context.Context, issueID string, a *model.Analysis) (*model.Issue, error)
	SetStatus(ctx context.Context, issueID, status string) (*model.Issue, error)
	Delete(ctx context.Context, issueID string) error
}
