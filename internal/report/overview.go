package report

import (
	"github.com/sitewise/sitewise-server/internal/model"
)

// Overview is the dashboard landing summary: record counts plus the busiest
// day and most-visited project.
type Overview struct {
	VisitCount      int    `json:"visitCount"`
	ReceiptCount    int    `json:"receiptCount"`
	IssueCount      int    `json:"issueCount"`
	OpenIssueCount  int    `json:"openIssueCount"`
	DistinctPeople  int    `json:"distinctPeople"`
	DistinctProject int    `json:"distinctProjects"`
	BusiestDay      string `json:"busiestDay,omitempty"`
	TopProject      string `json:"topProject,omitempty"`
}

// BuildOverview computes the dashboard summary over the full record sets.
func BuildOverview(visits []*model.Visit, receipts []*model.Receipt, issues []*model.Issue) Overview {
	o := Overview{
		VisitCount:   len(visits),
		ReceiptCount: len(receipts),
		IssueCount:   len(issues),
	}
	for _, is := range issues {
		if is.Status == model.IssueOpen {
			o.OpenIssueCount++
		}
	}

	people := map[string]struct{}{}
	projects := map[string]string{}
	projByCount := map[string]int{}
	dayByCount := map[string]int{}
	for _, v := range visits {
		people[norm(v.Person)] = struct{}{}
		if p := norm(v.Project); p != "" && p != SelfSentinel {
			projects[p] = v.Project
			projByCount[p]++
		}
		dayByCount[v.Date]++
	}
	o.DistinctPeople = len(people)
	o.DistinctProject = len(projects)

	best := 0
	for d, n := range dayByCount {
		if n > best || (n == best && d > o.BusiestDay) {
			best, o.BusiestDay = n, d
		}
	}
	best = 0
	topKey := ""
	for p, n := range projByCount {
		if n > best || (n == best && p < topKey) {
			best, topKey = n, p
		}
	}
	o.TopProject = projects[topKey]
	return o
}
