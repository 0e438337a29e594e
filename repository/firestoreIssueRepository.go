package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"civiclens-be/models"
)

// FirestoreIssueRepository stores reports in a Firestore collection.
type FirestoreIssueRepository struct {
	client *firestore.Client
}

func NewFirestoreIssueRepository(client *firestore.Client) *FirestoreIssueRepository {
	return &FirestoreIssueRepository{client: client}
}

func (r *FirestoreIssueRepository) issues() *firestore.CollectionRef {
	return r.client.Collection(IssuesCollection)
}

func (r *FirestoreIssueRepository) Create(ctx context.Context, issue *models.IssueReport) (string, error) {
	ref, _, err := r.issues().Add(ctx, issue)
	if err != nil {
		return "", fmt.Errorf("failed to create issue: %w", err)
	}
	return ref.ID, nil
}

func (r *FirestoreIssueRepository) Get(ctx context.Context, id string) (*models.IssueReport, error) {
	doc, err := r.issues().Doc(id).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, ErrIssueNotFound
		}
		return nil, fmt.Errorf("failed to get issue: %w", err)
	}
	return decodeSnapshot(doc)
}

func decodeSnapshot(doc *firestore.DocumentSnapshot) (*models.IssueReport, error) {
	var issue models.IssueReport
	if err := doc.DataTo(&issue); err != nil {
		return nil, fmt.Errorf("failed to parse issue %s: %w", doc.Ref.ID, err)
	}
	issue.ID = doc.Ref.ID
	return &issue, nil
}

// List filters with equality clauses only; ordering, search and paging happen in
// memory so the query never needs a composite index.
func (r *FirestoreIssueRepository) List(ctx context.Context, f models.IssueFilter) ([]models.IssueReport, int64, error) {
	f.Normalize()

	query := r.issues().Query
	if f.Status != "" {
		query = query.Where("status", "==", string(f.Status))
	}
	if f.Priority != "" {
		query = query.Where("priority", "==", string(f.Priority))
	}
	if f.Category != "" {
		query = query.Where("category", "==", string(f.Category))
	}

	all, err := r.collect(ctx, query)
	if err != nil {
		return nil, 0, err
	}
	page, total := filterSortPage(all, f)
	return page, total, nil
}

func (r *FirestoreIssueRepository) collect(ctx context.Context, query firestore.Query) ([]models.IssueReport, error) {
	iter := query.Documents(ctx)
	defer iter.Stop()

	var issues []models.IssueReport
	for {
		doc, err := iter.Next()
		if errors.Is(err, iterator.Done) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to iterate issues: %w", err)
		}
		issue, err := decodeSnapshot(doc)
		if err != nil {
			return nil, err
		}
		issues = append(issues, *issue)
	}
	return issues, nil
}

func (r *FirestoreIssueRepository) UpdateStatus(ctx context.Context, id string, s models.IssueStatus) error {
	_, err := r.issues().Doc(id).Update(ctx, []firestore.Update{
		{Path: "status", Value: string(s)},
	})
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return ErrIssueNotFound
		}
		return fmt.Errorf("failed to update issue: %w", err)
	}
	return nil
}

func (r *FirestoreIssueRepository) Summary(ctx context.Context) (*models.IssueSummary, error) {
	all, err := r.collect(ctx, r.issues().Query)
	if err != nil {
		return nil, err
	}

	summary := models.NewIssueSummary()
	for _, issue := range all {
		summary.Add(issue)
	}
	summary.FillLast7Days(time.Now(), func(from, to time.Time) int64 {
		var n int64
		for _, issue := range all {
			if !issue.CreatedAt.Before(from) && issue.CreatedAt.Before(to) {
				n++
			}
		}
		return n
	})
	return summary, nil
}
