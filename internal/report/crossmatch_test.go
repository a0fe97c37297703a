package report

import (
	"testing"

	"github.com/sitewise/sitewise-server/internal/model"
)

func visit(date, project, entry, out string) *model.Visit {
	return &model.Visit{Date: date, Project: project, EntryTime: entry, OutTime: out, Person: "Alice"}
}

func receipt(date, project, at string) *model.Receipt {
	return &model.Receipt{Project: project, MRFNumber: "MRF-1", Material: "Cement", ReceivedDate: date, ReceivedTime: at}
}

func TestMatchDelivery_OverlapInsideWindow(t *testing.T) {
	// delivery 10:25 -> window [09:55, 10:55]; visit [10:00, 10:20] overlaps
	m := MatchDelivery(receipt("2024-03-02", "Tower A", "10:25"),
		[]*model.Visit{visit("2024-03-02", "Tower A", "10:00", "10:20")})
	if m.Outcome != VisitFound || m.Visit == nil {
		t.Fatalf("outcome = %v, want VisitFound", m.Outcome)
	}
}

func TestMatchDelivery_InclusiveBoundary(t *testing.T) {
	// entry exactly at deliveryTime - 30min must match
	m := MatchDelivery(receipt("2024-03-02", "Tower A", "10:30"),
		[]*model.Visit{visit("2024-03-02", "Tower A", "10:00", "10:00")})
	if m.Outcome != VisitFound {
		t.Fatalf("boundary visit: outcome = %v, want VisitFound", m.Outcome)
	}
	// visit ending exactly at windowStart also matches
	m = MatchDelivery(receipt("2024-03-02", "Tower A", "10:30"),
		[]*model.Visit{visit("2024-03-02", "Tower A", "09:00", "10:00")})
	if m.Outcome != VisitFound {
		t.Fatalf("out==windowStart: outcome = %v, want VisitFound", m.Outcome)
	}
}

func TestMatchDelivery_OneSecondOutside(t *testing.T) {
	// visit ends one second before the window opens
	m := MatchDelivery(receipt("2024-03-02", "Tower A", "10:30"),
		[]*model.Visit{visit("2024-03-02", "Tower A", "09:00", "09:59:59")})
	if m.Outcome != NoVisit {
		t.Fatalf("outcome = %v, want NoVisit", m.Outcome)
	}
}

func TestMatchDelivery_ProjectAndDateConstrained(t *testing.T) {
	visits := []*model.Visit{
		visit("2024-03-02", "Tower B", "10:00", "11:00"), // wrong project
		visit("2024-03-03", "Tower A", "10:00", "11:00"), // wrong date
	}
	if m := MatchDelivery(receipt("2024-03-02", "Tower A", "10:30"), visits); m.Outcome != NoVisit {
		t.Fatalf("outcome = %v, want NoVisit", m.Outcome)
	}
	// project match is trim+case-insensitive
	if m := MatchDelivery(receipt("2024-03-02", " tower a ", "10:30"),
		[]*model.Visit{visit("2024-03-02", "Tower A", "10:00", "11:00")}); m.Outcome != VisitFound {
		t.Fatalf("normalized project: outcome = %v, want VisitFound", m.Outcome)
	}
}

func TestMatchDelivery_FirstMatchWins(t *testing.T) {
	visits := []*model.Visit{
		visit("2024-03-02", "Tower A", "10:00", "10:20"),
		visit("2024-03-02", "Tower A", "10:10", "10:40"),
	}
	m := MatchDelivery(receipt("2024-03-02", "Tower A", "10:25"), visits)
	if m.Visit != visits[0] {
		t.Fatalf("expected first matching visit in scan order")
	}
}

func TestMatchDelivery_UnreadableTimes(t *testing.T) {
	// unreadable receipt time is its own outcome, never an error
	m := MatchDelivery(receipt("2024-03-02", "Tower A", "garbled"),
		[]*model.Visit{visit("2024-03-02", "Tower A", "10:00", "11:00")})
	if m.Outcome != UnreadableTime {
		t.Fatalf("outcome = %v, want UnreadableTime", m.Outcome)
	}
	// unreadable visit clock skips that visit
	m = MatchDelivery(receipt("2024-03-02", "Tower A", "10:30"),
		[]*model.Visit{visit("2024-03-02", "Tower A", "bad", "11:00")})
	if m.Outcome != NoVisit {
		t.Fatalf("outcome = %v, want NoVisit", m.Outcome)
	}
}

func TestBuildDeliveryCoverage(t *testing.T) {
	visits := []*model.Visit{visit("2024-03-02", "Tower A", "10:00", "10:20")}
	receipts := []*model.Receipt{
		receipt("2024-03-02", "Tower A", "10:25"), // found
		receipt("2024-03-02", "Tower A", "14:00"), // missed
		receipt("2024-03-02", "Tower A", "noon"),  // unreadable
	}
	cov := BuildDeliveryCoverage(receipts, visits)
	if cov.Total != 3 || cov.Found != 1 || cov.Missed != 1 || cov.Unreadable != 1 {
		t.Fatalf("coverage counts: %+v", cov)
	}
	if cov.CoverageRatio != 0.5 {
		t.Fatalf("coverage ratio = %v, want 0.5", cov.CoverageRatio)
	}
}
