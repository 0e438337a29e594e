package repository

import (
	"context"
	"strconv"
	"sync"
	"time"

	"civiclens-be/models"
)

// MemoryIssueRepository keeps reports in process memory.
type MemoryIssueRepository struct {
	mu     sync.RWMutex
	issues map[string]models.IssueReport
	nextID int
	now    func() time.Time
}

func NewMemoryIssueRepository() *MemoryIssueRepository {
	return &MemoryIssueRepository{
		issues: make(map[string]models.IssueReport),
		now:    time.Now,
	}
}

func (r *MemoryIssueRepository) Create(ctx context.Context, issue *models.IssueReport) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	r.nextID++
	id := strconv.Itoa(r.nextID)
	stored := *issue
	stored.ID = id
	r.issues[id] = stored
	return id, nil
}

func (r *MemoryIssueRepository) Get(ctx context.Context, id string) (*models.IssueReport, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	issue, ok := r.issues[id]
	if !ok {
		return nil, ErrIssueNotFound
	}
	return &issue, nil
}

func (r *MemoryIssueRepository) List(ctx context.Context, filter models.IssueFilter) ([]models.IssueReport, int64, error) {
	if err := ctx.Err(); err != nil {
		return nil, 0, err
	}
	filter.Normalize()

	r.mu.RLock()
	all := make([]models.IssueReport, 0, len(r.issues))
	for _, issue := range r.issues {
		all = append(all, issue)
	}
	r.mu.RUnlock()

	page, total := filterSortPage(all, filter)
	return page, total, nil
}

func (r *MemoryIssueRepository) UpdateStatus(ctx context.Context, id string, status models.IssueStatus) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	issue, ok := r.issues[id]
	if !ok {
		return ErrIssueNotFound
	}
	issue.Status = status
	r.issues[id] = issue
	return nil
}

func (r *MemoryIssueRepository) Summary(ctx context.Context) (*models.IssueSummary, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()

	summary := models.NewIssueSummary()
	for _, issue := range r.issues {
		summary.Add(issue)
	}
	summary.FillLast7Days(r.now(), func(from, to time.Time) int64 {
		var n int64
		for _, issue := range r.issues {
			if !issue.CreatedAt.Before(from) && issue.CreatedAt.Before(to) {
				n++
			}
		}
		return n
	})
	return summary, nil
}

// Len reports how many documents are stored.
func (r *MemoryIssueRepository) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.issues)
}
