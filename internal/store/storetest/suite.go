package storetest

import (
	"context"
	"testing"

	"github.com/google/uuid"

	"github.com/sitewise/sitewise-server/internal/model"
	"github.com/sitewise/sitewise-server/internal/store"
)

// Run exercises a minimal compliance suite against a store.Store
// implementation. Implementations should provide a clean, isolated store and
// return it from makeStore.
func Run(t *testing.T, makeStore func(t *testing.T) store.Store) {
	t.Helper()

	s := makeStore(t)
	ctx := context.Background()

	// Users
	email := "u-" + uuid.New().String() + "@example.test"
	u, err := s.Users().Create(ctx, &model.User{Email: email, DisplayName: "Test User", Role: "manager", PasswordHash: "x"})
	if err != nil {
		t.Fatalf("CreateUser: %v", err)
	}
	if u.UserID == "" || u.Status != model.UserActive {
		t.Fatalf("CreateUser defaults: %+v", u)
	}
	if got, err := s.Users().GetByEmail(ctx, email); err != nil || got.UserID != u.UserID {
		t.Fatalf("GetUserByEmail: got=%v err=%v", got, err)
	}
	u.Role = "admin"
	if got, err := s.Users().Update(ctx, u); err != nil || got.Role != "admin" {
		t.Fatalf("UpdateUser: got=%v err=%v", got, err)
	}
	if n, err := s.Users().Count(ctx); err != nil || n < 1 {
		t.Fatalf("CountUsers: n=%d err=%v", n, err)
	}
	if _, err := s.Users().Get(ctx, "missing"); err != model.ErrNotFound {
		t.Fatalf("GetUser(missing): want ErrNotFound, got %v", err)
	}

	// Visits: batch insert, date-descending listing, filters.
	batch := []*model.Visit{
		{Date: "2024-03-01", Person: "Alice", Project: "Tower A", EntryTime: "09:00", OutTime: "10:00", DurationRaw: "1:0:0", DurationSeconds: 3600, Source: model.SourceImport},
		{Date: "2024-03-03", Person: "Bob", Project: "Tower B", EntryTime: "11:00", OutTime: "11:30", DurationRaw: "0:30:0", DurationSeconds: 1800, Source: model.SourceImport},
		{Date: "2024-03-02", Person: "Alice", Project: "Tower A", Improper: true, Source: model.SourceManual},
	}
	created, err := s.Visits().CreateBatch(ctx, batch)
	if err != nil || len(created) != 3 {
		t.Fatalf("CreateBatch visits: n=%d err=%v", len(created), err)
	}
	all, err := s.Visits().List(ctx, model.ListVisitsRequest{})
	if err != nil || len(all) != 3 {
		t.Fatalf("ListVisits: n=%d err=%v", len(all), err)
	}
	if all[0].Date != "2024-03-03" || all[2].Date != "2024-03-01" {
		t.Fatalf("ListVisits order: %s .. %s", all[0].Date, all[2].Date)
	}
	byPerson, err := s.Visits().List(ctx, model.ListVisitsRequest{Person: "alice "})
	if err != nil || len(byPerson) != 2 {
		t.Fatalf("ListVisits person filter: n=%d err=%v", len(byPerson), err)
	}
	ranged, err := s.Visits().List(ctx, model.ListVisitsRequest{From: "2024-03-02", To: "2024-03-03"})
	if err != nil || len(ranged) != 2 {
		t.Fatalf("ListVisits range filter: n=%d err=%v", len(ranged), err)
	}
	if got, err := s.Visits().GetByID(ctx, created[0].VisitID); err != nil || got.Person != "Alice" {
		t.Fatalf("GetVisit: got=%v err=%v", got, err)
	}

	// Receipts
	recs, err := s.Receipts().CreateBatch(ctx, []*model.Receipt{
		{Project: "Tower A", MRFNumber: "MRF-1", Material: "Cement", ReceivedDate: "2024-03-02", ReceivedTime: "10:25"},
	})
	if err != nil || len(recs) != 1 || recs[0].ReceiptID == "" {
		t.Fatalf("CreateBatch receipts: %v err=%v", recs, err)
	}
	if lst, err := s.Receipts().List(ctx, model.ListReceiptsRequest{Project: "tower a"}); err != nil || len(lst) != 1 {
		t.Fatalf("ListReceipts: n=%d err=%v", len(lst), err)
	}

	// Issues: create, comment, analysis set as a unit.
	is, err := s.Issues().Create(ctx, &model.Issue{
		Project:     "Tower A",
		Description: "Cracked slab on level 3",
		Photos:      []model.Photo{{MimeType: "image/jpeg", Data: "aGVsbG8="}},
	})
	if err != nil || is.Status != model.IssueOpen {
		t.Fatalf("CreateIssue: %v err=%v", is, err)
	}
	if got, err := s.Issues().GetByID(ctx, is.IssueID); err != nil || len(got.Photos) != 1 || got.Analysis != nil {
		t.Fatalf("GetIssue: got=%v err=%v", got, err)
	}
	if got, err := s.Issues().AddComment(ctx, is.IssueID, model.Comment{Author: "Bob", Text: "rebar exposed"}); err != nil || len(got.Comments) != 1 {
		t.Fatalf("AddComment: got=%v err=%v", got, err)
	}
	a := &model.Analysis{Category: "Structural", Priority: "High", Summary: "Crack in load-bearing slab."}
	if got, err := s.Issues().SetAnalysis(ctx, is.IssueID, a); err != nil || got.Analysis == nil || got.Analysis.Category != "Structural" {
		t.Fatalf("SetAnalysis: got=%v err=%v", got, err)
	}
	if got, err := s.Issues().SetStatus(ctx, is.IssueID, model.IssueClosed); err != nil || got.Status != model.IssueClosed {
		t.Fatalf("SetStatus: got=%v err=%v", got, err)
	}
	if err := s.Issues().Delete(ctx, is.IssueID); err != nil {
		t.Fatalf("DeleteIssue: %v", err)
	}
	if _, err := s.Issues().GetByID(ctx, is.IssueID); err != model.ErrNotFound {
		t.Fatalf("GetIssue after delete: want ErrNotFound, got %v", err)
	}

	// Clear-records semantics
	if err := s.Visits().DeleteAll(ctx); err != nil {
		t.Fatalf("DeleteAll visits: %v", err)
	}
	if lst, err := s.Visits().List(ctx, model.ListVisitsRequest{}); err != nil || len(lst) != 0 {
		t.Fatalf("ListVisits after clear: n=%d err=%v", len(lst), err)
	}
	if err := s.Receipts().DeleteAll(ctx); err != nil {
		t.Fatalf("DeleteAll receipts: %v", err)
	}
}
