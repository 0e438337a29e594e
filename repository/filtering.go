package repository

import (
	"sort"
	"strings"

	"civiclens-be/models"
)

func matches(issue *models.IssueReport, f models.IssueFilter) bool {
	if f.Status != "" && issue.Status != f.Status {
		return false
	}
	if f.Priority != "" && issue.Priority != f.Priority {
		return false
	}
	if f.Category != "" && issue.Category != f.Category {
		return false
	}
	if f.Search != "" {
		q := strings.ToLower(f.Search)
		if !strings.Contains(strings.ToLower(issue.Description), q) &&
			!strings.Contains(strings.ToLower(issue.Address), q) {
			return false
		}
	}
	return true
}

// sortIssues orders in place. Priority sort breaks ties by newest first.
func sortIssues(issues []models.IssueReport, by models.IssueSort) {
	sort.SliceStable(issues, func(i, j int) bool {
		a, b := issues[i], issues[j]
		switch by {
		case models.SortOldest:
			return a.CreatedAt.Before(b.CreatedAt)
		case models.SortPriority:
			if a.Priority.Rank() != b.Priority.Rank() {
				return a.Priority.Rank() > b.Priority.Rank()
			}
		}
		return a.CreatedAt.After(b.CreatedAt)
	})
}

func paginate(issues []models.IssueReport, f models.IssueFilter) []models.IssueReport {
	start := f.Skip()
	if start < 0 || start >= len(issues) {
		return []models.IssueReport{}
	}
	end := start + f.Limit
	if end > len(issues) {
		end = len(issues)
	}
	return issues[start:end]
}

// filterSortPage applies a normalized filter to an unsorted slice.
func filterSortPage(all []models.IssueReport, f models.IssueFilter) ([]models.IssueReport, int64) {
	matched := make([]models.IssueReport, 0, len(all))
	for i := range all {
		if matches(&all[i], f) {
			matched = append(matched, all[i])
		}
	}
	sortIssues(matched, f.Sort)
	return paginate(matched, f), int64(len(matched))
}
