package models

import "time"

// IssueSort selects the ordering of a listing.
type IssueSort string

const (
	SortNewest   IssueSort = "newest"
	SortOldest   IssueSort = "oldest"
	SortPriority IssueSort = "priority"
)

// MaxPage bounds page numbers so the skip offset stays small.
const MaxPage = 100000

// IssueFilter narrows a listing. Zero values mean "all".
type IssueFilter struct {
	Status   IssueStatus
	Priority IssuePriority
	Category IssueCategory
	Search   string
	Sort     IssueSort
	Page     int
	Limit    int
}

// Normalize clamps paging the same way the public listing does.
func (f *IssueFilter) Normalize() {
	if f.Page < 1 {
		f.Page = 1
	}
	if f.Page > MaxPage {
		f.Page = MaxPage
	}
	if f.Limit < 1 || f.Limit > 100 {
		f.Limit = 50
	}
	switch f.Sort {
	case SortNewest, SortOldest, SortPriority:
	default:
		f.Sort = SortNewest
	}
}

// Skip is the number of matching documents before the requested page.
func (f IssueFilter) Skip() int {
	return (f.Page - 1) * f.Limit
}

// IssueSummary holds dashboard counters.
type IssueSummary struct {
	Total      int64                   `json:"total"`
	Open       int64                   `json:"open"`
	ByStatus   map[IssueStatus]int64   `json:"byStatus"`
	ByPriority map[IssuePriority]int64 `json:"byPriority"`
	ByCategory map[IssueCategory]int64 `json:"byCategory"`
	Last7Days  []DailyCount            `json:"last7Days"`
}

type DailyCount struct {
	Date  string `json:"date"`
	Count int64  `json:"count"`
}

// NewIssueSummary returns a summary with every known key present.
func NewIssueSummary() *IssueSummary {
	s := &IssueSummary{
		ByStatus:   make(map[IssueStatus]int64),
		ByPriority: make(map[IssuePriority]int64),
		ByCategory: make(map[IssueCategory]int64),
	}
	for _, v := range Statuses {
		s.ByStatus[v] = 0
	}
	for _, v := range Priorities {
		s.ByPriority[v] = 0
	}
	for _, v := range Categories {
		s.ByCategory[v] = 0
	}
	return s
}

// Add folds one report into the counters.
func (s *IssueSummary) Add(issue IssueReport) {
	s.Total++
	s.ByStatus[issue.Status]++
	s.ByPriority[issue.Priority]++
	s.ByCategory[issue.Category]++
	if issue.Status != Resolved {
		s.Open++
	}
}

// FillLast7Days builds the daily histogram ending today, using count for each day window.
func (s *IssueSummary) FillLast7Days(now time.Time, count func(from, to time.Time) int64) {
	s.Last7Days = make([]DailyCount, 0, 7)
	for i := 6; i >= 0; i-- {
		date := now.AddDate(0, 0, -i)
		date = time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, date.Location())
		s.Last7Days = append(s.Last7Days, DailyCount{
			Date:  date.Format("2006-01-02"),
			Count: count(date, date.AddDate(0, 0, 1)),
		})
	}
}
