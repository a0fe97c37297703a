package report

import (
	"time"

	"github.com/sitewise/sitewise-server/internal/dates"
	"github.com/sitewise/sitewise-server/internal/model"
)

// DeliveryWindow is the half-width of the match window around a delivery
// timestamp.
const DeliveryWindow = 30 * time.Minute

// MatchOutcome classifies a delivery against the visit log.
type MatchOutcome string

const (
	// VisitFound: some visit's [entry, out] interval overlaps the window.
	VisitFound MatchOutcome = "visit-found"
	// NoVisit: no same-project same-date visit overlaps the window.
	NoVisit MatchOutcome = "no-visit"
	// UnreadableTime: the receipt's receiving time could not be parsed.
	// Soft fail; the batch never aborts on a noisy row.
	UnreadableTime MatchOutcome = "unreadable-time"
)

// DeliveryMatch is the cross-analysis result for one receipt.
type DeliveryMatch struct {
	Receipt *model.Receipt `json:"receipt"`
	Outcome MatchOutcome   `json:"outcome"`
	Visit   *model.Visit   `json:"visit,omitempty"`
}

// MatchDelivery finds the first visit (in scan order) whose interval
// overlaps the ±30-minute window around the receipt's receiving time,
// constrained to the same project and calendar date. Window boundaries are
// inclusive: a visit ending exactly at windowStart still matches.
func MatchDelivery(r *model.Receipt, visits []*model.Visit) DeliveryMatch {
	at, err := dates.Clock(r.ReceivedTime)
	if err != nil {
		return DeliveryMatch{Receipt: r, Outcome: UnreadableTime}
	}
	windowStart := at - DeliveryWindow
	windowEnd := at + DeliveryWindow

	project := norm(r.Project)
	for _, v := range visits {
		if v.Date != r.ReceivedDate || norm(v.Project) != project {
			continue
		}
		entry, err := dates.Clock(v.EntryTime)
		if err != nil {
			continue // unreadable visit clock: treated as non-matching, not an error
		}
		out, err := dates.Clock(v.OutTime)
		if err != nil {
			continue
		}
		if entry <= windowEnd && out >= windowStart {
			return DeliveryMatch{Receipt: r, Outcome: VisitFound, Visit: v}
		}
	}
	return DeliveryMatch{Receipt: r, Outcome: NoVisit}
}

// DeliveryCoverage is the cross-analysis report over a receipt set.
type DeliveryCoverage struct {
	Matches       []DeliveryMatch `json:"matches"`
	Total         int             `json:"total"`
	Found         int             `json:"found"`
	Missed        int             `json:"missed"`
	Unreadable    int             `json:"unreadable"`
	CoverageRatio float64         `json:"coverageRatio"`
}

// BuildDeliveryCoverage cross-analyzes every receipt against the visit log.
// The coverage ratio is found/total over readable receipts.
func BuildDeliveryCoverage(receipts []*model.Receipt, visits []*model.Visit) DeliveryCoverage {
	cov := DeliveryCoverage{Matches: make([]DeliveryMatch, 0, len(receipts))}
	for _, r := range receipts {
		m := MatchDelivery(r, visits)
		cov.Matches = append(cov.Matches, m)
		cov.Total++
		switch m.Outcome {
		case VisitFound:
			cov.Found++
		case NoVisit:
			cov.Missed++
		case UnreadableTime:
			cov.Unreadable++
		}
	}
	if readable := cov.Found + cov.Missed; readable > 0 {
		cov.CoverageRatio = float64(cov.Found) / float64(readable)
	}
	return cov
}
