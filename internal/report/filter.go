package report

import (
	"strings"

	"github.com/sitewise/sitewise-server/internal/model"
	"github.com/sitewise/sitewise-server/internal/roster"
)

func norm(s string) string { return strings.ToLower(strings.TrimSpace(s)) }

// VisitFilter narrows a visit slice. All set fields must match; date bounds
// are inclusive ISO string comparisons. The team filter resolves membership
// through the roster.
type VisitFilter struct {
	From    string
	To      string
	Project string
	Person  string
	Team    string
}

type visitPredicate func(*model.Visit) bool

func (f VisitFilter) predicates(ros *roster.Roster) []visitPredicate {
	var preds []visitPredicate
	if f.From != "" {
		preds = append(preds, func(v *model.Visit) bool { return v.Date >= f.From })
	}
	if f.To != "" {
		preds = append(preds, func(v *model.Visit) bool { return v.Date <= f.To })
	}
	if f.Project != "" {
		want := norm(f.Project)
		preds = append(preds, func(v *model.Visit) bool { return norm(v.Project) == want })
	}
	if f.Person != "" {
		want := norm(f.Person)
		preds = append(preds, func(v *model.Visit) bool { return norm(v.Person) == want })
	}
	if f.Team != "" {
		preds = append(preds, func(v *model.Visit) bool {
			team, ok := ros.TeamOf(v.Person)
			return ok && team == f.Team
		})
	}
	return preds
}

// Apply returns the visits matching every set filter field, preserving order.
func (f VisitFilter) Apply(visits []*model.Visit, ros *roster.Roster) []*model.Visit {
	if ros == nil {
		ros = roster.Empty()
	}
	preds := f.predicates(ros)
	if len(preds) == 0 {
		return visits
	}
	out := make([]*model.Visit, 0, len(visits))
outer:
	for _, v := range visits {
		for _, p := range preds {
			if !p(v) {
				continue outer
			}
		}
		out = append(out, v)
	}
	return out
}
