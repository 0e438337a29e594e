package ai

//go:generate mockgen -source=prioritizer.go -destination=mock_prioritizer.go -package=ai

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"civiclens-be/models"
)

var (
	ErrDisabled        = errors.New("ai prioritization disabled")
	ErrInvalidPriority = errors.New("model returned an unknown priority")
)

// PrioritizeInput is what the model sees. Photo is optional.
type PrioritizeInput struct {
	Description string
	Photo       []byte
	PhotoMIME   string
}

type PrioritizeResult struct {
	Priority models.IssuePriority `json:"priority"`
	Reason   string               `json:"reason"`
}

// Prioritizer assigns a priority label and a one-sentence reason to a report.
type Prioritizer interface {
	Prioritize(ctx context.Context, in PrioritizeInput) (*PrioritizeResult, error)
}

// Fallback is used whenever the model is unavailable or its answer is unusable.
func Fallback() *PrioritizeResult {
	return &PrioritizeResult{Priority: models.DefaultPriority, Reason: models.DefaultReason}
}

// normalize accepts the label in any letter case and requires a reason.
func (r *PrioritizeResult) normalize() error {
	label := strings.TrimSpace(string(r.Priority))
	for _, p := range models.Priorities {
		if strings.EqualFold(label, string(p)) {
			r.Priority = p
			r.Reason = strings.TrimSpace(r.Reason)
			if r.Reason == "" {
				r.Reason = models.DefaultReason
			}
			return nil
		}
	}
	return fmt.Errorf("%w: %q", ErrInvalidPriority, label)
}

// Disabled is the Prioritizer used when no API key is configured.
type Disabled struct{}

func (Disabled) Prioritize(context.Context, PrioritizeInput) (*PrioritizeResult, error) {
	return nil, ErrDisabled
}
