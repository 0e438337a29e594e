package repository

import (
	"context"
	"errors"

	"civiclens-be/models"
)

// IssuesCollection is the single flat collection reports live in.
const IssuesCollection = "issues"

var (
	ErrIssueNotFound        = errors.New("issue not found")
	ErrBackendNotConfigured = errors.New("backend not configured")
)

// IssueRepository persists issue reports. Implementations assign the id on Create.
type IssueRepository interface {
	Create(ctx context.Context, issue *models.IssueReport) (string, error)
	Get(ctx context.Context, id string) (*models.IssueReport, error)
	List(ctx context.Context, filter models.IssueFilter) ([]models.IssueReport, int64, error)
	UpdateStatus(ctx context.Context, id string, status models.IssueStatus) error
	Summary(ctx context.Context) (*models.IssueSummary, error)
}

// Unconfigured stands in when the datastore could not be initialized.
// Reads degrade to empty results, writes fail with ErrBackendNotConfigured.
type Unconfigured struct{}

func (Unconfigured) Create(context.Context, *models.IssueReport) (string, error) {
	return "", ErrBackendNotConfigured
}

func (Unconfigured) Get(context.Context, string) (*models.IssueReport, error) {
	return nil, ErrIssueNotFound
}

func (Unconfigured) List(context.Context, models.IssueFilter) ([]models.IssueReport, int64, error) {
	return []models.IssueReport{}, 0, nil
}

func (Unconfigured) UpdateStatus(context.Context, string, models.IssueStatus) error {
	return ErrBackendNotConfigured
}

func (Unconfigured) Summary(context.Context) (*models.IssueSummary, error) {
	return models.NewIssueSummary(), nil
}
