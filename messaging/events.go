package messaging

import (
	"context"
	"errors"
	"time"

	"civiclens-be/models"
)

// EventType doubles as the routing key / topic key for brokers.
type EventType string

const (
	IssueCreated  EventType = "issue.created"
	StatusChanged EventType = "issue.status_changed"
)

type Event struct {
	Type           EventType           `json:"type"`
	IssueID        string              `json:"issueId"`
	Issue          *models.IssueReport `json:"issue,omitempty"`
	PreviousStatus models.IssueStatus  `json:"previousStatus,omitempty"`
	Status         models.IssueStatus  `json:"status,omitempty"`
	OccurredAt     time.Time           `json:"occurredAt"`
}

func NewIssueCreated(issue models.IssueReport) Event {
	return Event{
		Type:       IssueCreated,
		IssueID:    issue.ID,
		Issue:      &issue,
		Status:     issue.Status,
		OccurredAt: time.Now().UTC(),
	}
}

func NewStatusChanged(id string, previous, next models.IssueStatus) Event {
	return Event{
		Type:           StatusChanged,
		IssueID:        id,
		PreviousStatus: previous,
		Status:         next,
		OccurredAt:     time.Now().UTC(),
	}
}

// Publisher delivers issue events somewhere outside the request.
type Publisher interface {
	Publish(ctx context.Context, event Event) error
	Close() error
}

// Noop drops every event.
type Noop struct{}

func (Noop) Publish(context.Context, Event) error { return nil }

func (Noop) Close() error { return nil }

// FanOut publishes to every publisher and joins the failures.
type FanOut []Publisher

func (f FanOut) Publish(ctx context.Context, event Event) error {
	var errs []error
	for _, p := range f {
		if err := p.Publish(ctx, event); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

func (f FanOut) Close() error {
	var errs []error
	for _, p := range f {
		if err := p.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
