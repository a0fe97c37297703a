package report

import (
	"sort"

	"github.com/sitewise/sitewise-server/internal/model"
	"github.com/sitewise/sitewise-server/internal/roster"
)

// SelfSentinel marks a visit row that does not point at an external project.
// It is excluded from unique external project counts but still counted as a
// visit.
const SelfSentinel = "self"

// PersonSummary aggregates one person's visits.
type PersonSummary struct {
	Person          string `json:"person"`
	Team            string `json:"team,omitempty"`
	VisitCount      int    `json:"visitCount"`
	ImproperCount   int    `json:"improperCount"`
	DurationSeconds int    `json:"durationSeconds"`
	Duration        string `json:"duration"` // HH:MM
	ProjectCount    int    `json:"projectCount"`
}

// TeamSummary aggregates member totals into team totals. It is produced in
// two passes: individuals are bucketed by team through the roster, then
// their totals are summed, so the team total always equals the sum of its
// member totals.
type TeamSummary struct {
	Team            string   `json:"team"`
	Members         []string `json:"members"`
	VisitCount      int      `json:"visitCount"`
	ImproperCount   int      `json:"improperCount"`
	DurationSeconds int      `json:"durationSeconds"`
	Duration        string   `json:"duration"`
}

// DaySummary counts visits per calendar date.
type DaySummary struct {
	Date       string `json:"date"`
	VisitCount int    `json:"visitCount"`
}

// SummarizeByPerson groups visits by person. Duration sums exclude improper
// rows (malformed or zero durations); those are counted separately.
func SummarizeByPerson(visits []*model.Visit, ros *roster.Roster) []PersonSummary {
	if ros == nil {
		ros = roster.Empty()
	}
	byPerson := map[string]*PersonSummary{}
	projects := map[string]map[string]struct{}{}
	for _, v := range visits {
		key := norm(v.Person)
		ps, ok := byPerson[key]
		if !ok {
			ps = &PersonSummary{Person: v.Person}
			if team, found := ros.TeamOf(v.Person); found {
				ps.Team = team
			}
			byPerson[key] = ps
			projects[key] = map[string]struct{}{}
		}
		ps.VisitCount++
		if v.Improper {
			ps.ImproperCount++
		} else {
			ps.DurationSeconds += v.DurationSeconds
		}
		if p := norm(v.Project); p != "" && p != SelfSentinel {
			projects[key][p] = struct{}{}
		}
	}

	out := make([]PersonSummary, 0, len(byPerson))
	for key, ps := range byPerson {
		ps.Duration = FormatMinutes(ps.DurationSeconds)
		ps.ProjectCount = len(projects[key])
		out = append(out, *ps)
	}
	sort.Slice(out, func(i, j int) bool { return norm(out[i].Person) < norm(out[j].Person) })
	return out
}

// SummarizeByTeam rolls person summaries up into team totals. Persons not in
// the roster are omitted; roster membership is assumed disjoint, so no visit
// is counted twice.
func SummarizeByTeam(people []PersonSummary, ros *roster.Roster) []TeamSummary {
	if ros == nil {
		ros = roster.Empty()
	}
	byTeam := map[string]*TeamSummary{}
	for _, ps := range people {
		team, ok := ros.TeamOf(ps.Person)
		if !ok {
			continue
		}
		ts, ok := byTeam[team]
		if !ok {
			ts = &TeamSummary{Team: team}
			byTeam[team] = ts
		}
		ts.Members = append(ts.Members, ps.Person)
		ts.VisitCount += ps.VisitCount
		ts.ImproperCount += ps.ImproperCount
		ts.DurationSeconds += ps.DurationSeconds
	}

	out := make([]TeamSummary, 0, len(byTeam))
	for _, ts := range byTeam {
		ts.Duration = FormatMinutes(ts.DurationSeconds)
		out = append(out, *ts)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Team < out[j].Team })
	return out
}

// SummarizeByDay counts visits per date, newest first.
func SummarizeByDay(visits []*model.Visit) []DaySummary {
	byDay := map[string]int{}
	for _, v := range visits {
		byDay[v.Date]++
	}
	out := make([]DaySummary, 0, len(byDay))
	for d, n := range byDay {
		out = append(out, DaySummary{Date: d, VisitCount: n})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Date > out[j].Date })
	return out
}

// VisitSummary is the full visit-summary report.
type VisitSummary struct {
	From           string          `json:"from,omitempty"`
	To             string          `json:"to,omitempty"`
	Team           string          `json:"team,omitempty"`
	People         []PersonSummary `json:"people"`
	Teams          []TeamSummary   `json:"teams"`
	Days           []DaySummary    `json:"days"`
	TotalVisits    int             `json:"totalVisits"`
	ImproperVisits int             `json:"improperVisits"`
	TotalDuration  string          `json:"totalDuration"`
}

// BuildVisitSummary aggregates an already-filtered visit slice.
func BuildVisitSummary(visits []*model.Visit, ros *roster.Roster) VisitSummary {
	s := VisitSummary{
		People: SummarizeByPerson(visits, ros),
		Days:   SummarizeByDay(visits),
	}
	s.Teams = SummarizeByTeam(s.People, ros)
	total := 0
	for _, ps := range s.People {
		s.TotalVisits += ps.VisitCount
		s.ImproperVisits += ps.ImproperCount
		total += ps.DurationSeconds
	}
	s.TotalDuration = FormatMinutes(total)
	return s
}

// ProjectVisit is one row of the person/project report.
type ProjectVisit struct {
	Date      string `json:"date"`
	Project   string `json:"project"`
	EntryTime string `json:"entryTime,omitempty"`
	OutTime   string `json:"outTime,omitempty"`
	Duration  string `json:"duration,omitempty"`
	Improper  bool   `json:"improper"`
}

// PersonProjects is the per-salesperson project visit report. The unique
// external project count excludes the Self sentinel, so three visits of
// which one is "Self" and two hit the same project count as one.
type PersonProjects struct {
	Person                 string         `json:"person"`
	Visits                 []ProjectVisit `json:"visits"`
	TotalVisits            int            `json:"totalVisits"`
	UniqueExternalProjects int            `json:"uniqueExternalProjects"`
	TotalDuration          string         `json:"totalDuration"`
}

// BuildPersonProjects aggregates one person's visits (already filtered to
// that person and date window).
func BuildPersonProjects(person string, visits []*model.Visit) PersonProjects {
	pp := PersonProjects{Person: person, Visits: make([]ProjectVisit, 0, len(visits))}
	unique := map[string]struct{}{}
	totalSeconds := 0
	for _, v := range visits {
		pp.Visits = append(pp.Visits, ProjectVisit{
			Date:      v.Date,
			Project:   v.Project,
			EntryTime: v.EntryTime,
			OutTime:   v.OutTime,
			Duration:  v.DurationRaw,
			Improper:  v.Improper,
		})
		pp.TotalVisits++
		if !v.Improper {
			totalSeconds += v.DurationSeconds
		}
		if p := norm(v.Project); p != "" && p != SelfSentinel {
			unique[p] = struct{}{}
		}
	}
	pp.UniqueExternalProjects = len(unique)
	pp.TotalDuration = FormatMinutes(totalSeconds)
	return pp
}
