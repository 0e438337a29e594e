package services

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"time"

	"github.com/sirupsen/logrus"

	"civiclens-be/ai"
	"civiclens-be/logger"
	"civiclens-be/messaging"
	"civiclens-be/models"
	"civiclens-be/repository"
	"civiclens-be/utils"
)

var (
	ErrInvalidStatus   = errors.New("invalid status")
	ErrInvalidCategory = errors.New("invalid category")
)

const publishTimeout = 5 * time.Second

// SubmitInput is a validated public report. Photo takes precedence over PhotoURL.
type SubmitInput struct {
	Description string
	Category    models.IssueCategory
	Address     string
	PhotoURL    string
	Lat         *float64
	Lng         *float64
	Photo       *PhotoUpload
}

type IssueServiceOptions struct {
	AITimeout   time.Duration
	FallbackLat float64
	FallbackLng float64
}

type IssueService struct {
	repo        repository.IssueRepository
	photos      *PhotoService
	prioritizer ai.Prioritizer
	publisher   messaging.Publisher
	opts        IssueServiceOptions
	jitter      func() float64
	now         func() time.Time
}

func NewIssueService(repo repository.IssueRepository, photos *PhotoService, prioritizer ai.Prioritizer, publisher messaging.Publisher, opts IssueServiceOptions) *IssueService {
	if prioritizer == nil {
		prioritizer = ai.Disabled{}
	}
	if publisher == nil {
		publisher = messaging.Noop{}
	}
	if opts.AITimeout <= 0 {
		opts.AITimeout = 20 * time.Second
	}
	return &IssueService{
		repo:        repo,
		photos:      photos,
		prioritizer: prioritizer,
		publisher:   publisher,
		opts:        opts,
		jitter:      rand.Float64,
		now:         time.Now,
	}
}

// Submit stores a new report with status Submitted.
func (s *IssueService) Submit(ctx context.Context, in SubmitInput) (*models.IssueReport, error) {
	if !in.Category.IsValid() {
		return nil, ErrInvalidCategory
	}

	var photoURL *string
	if in.PhotoURL != "" {
		photoURL = &in.PhotoURL
	}

	var uploaded *UploadedPhoto
	if in.Photo != nil {
		var err error
		uploaded, err = s.photos.Upload(ctx, *in.Photo)
		if err != nil {
			return nil, err
		}
		photoURL = &uploaded.URL
	}

	result := s.prioritize(ctx, in.Description, uploaded)

	issue := models.IssueReport{
		Description: in.Description,
		Category:    in.Category,
		Location:    s.location(in.Lat, in.Lng),
		Address:     in.Address,
		PhotoURL:    photoURL,
		Status:      models.Submitted,
		Priority:    result.Priority,
		Reason:      result.Reason,
		CreatedAt:   s.now().UTC(),
	}

	id, err := s.repo.Create(ctx, &issue)
	if err != nil {
		if uploaded != nil {
			s.photos.Discard(context.WithoutCancel(ctx), uploaded.Path)
		}
		return nil, err
	}
	issue.ID = id

	logger.Log.WithFields(logrus.Fields{
		"issue_id": id,
		"category": issue.Category,
		"priority": issue.Priority,
	}).Info("Issue submitted")

	s.publish(messaging.NewIssueCreated(issue))
	return &issue, nil
}

func (s *IssueService) prioritize(ctx context.Context, description string, photo *UploadedPhoto) *ai.PrioritizeResult {
	ctx, cancel := context.WithTimeout(ctx, s.opts.AITimeout)
	defer cancel()

	in := ai.PrioritizeInput{Description: description}
	if photo != nil {
		in.Photo = photo.Image.Data
		in.PhotoMIME = photo.Image.ContentType
	}

	result, err := s.prioritizer.Prioritize(ctx, in)
	if err != nil {
		if !errors.Is(err, ai.ErrDisabled) {
			logger.Log.Warnf("AI prioritization failed, using default: %v", err)
		}
		return ai.Fallback()
	}
	return result
}

// location uses the submitted coordinates, or a point within ±0.05° of the fallback center.
func (s *IssueService) location(lat, lng *float64) models.Location {
	loc := models.Location{
		Lat: s.opts.FallbackLat + (s.jitter()-0.5)*0.1,
		Lng: s.opts.FallbackLng + (s.jitter()-0.5)*0.1,
	}
	if lat != nil {
		loc.Lat = *lat
	}
	if lng != nil {
		loc.Lng = *lng
	}
	return loc
}

func (s *IssueService) List(ctx context.Context, filter models.IssueFilter) ([]models.IssueReport, int64, error) {
	return s.repo.List(ctx, filter)
}

func (s *IssueService) Get(ctx context.Context, id string) (*models.IssueReport, error) {
	return s.repo.Get(ctx, id)
}

func (s *IssueService) Summary(ctx context.Context) (*models.IssueSummary, error) {
	return s.repo.Summary(ctx)
}

// UpdateStatus sets any of the four statuses; there is no transition graph.
func (s *IssueService) UpdateStatus(ctx context.Context, id string, status models.IssueStatus) error {
	if !status.IsValid() {
		return fmt.Errorf("%w: %q", ErrInvalidStatus, status)
	}

	// A missing document is reported by UpdateStatus itself.
	var previous models.IssueStatus
	current, err := s.repo.Get(ctx, id)
	switch {
	case err == nil:
		previous = current.Status
	case !errors.Is(err, repository.ErrIssueNotFound):
		return err
	}
	if err := s.repo.UpdateStatus(ctx, id, status); err != nil {
		return err
	}

	logger.Log.WithFields(logrus.Fields{
		"issue_id": id,
		"from":     previous,
		"to":       status,
	}).Info("Issue status updated")

	s.publish(messaging.NewStatusChanged(id, previous, status))
	return nil
}

func (s *IssueService) publish(event messaging.Event) {
	utils.SafeGo(func() {
		ctx, cancel := context.WithTimeout(context.Background(), publishTimeout)
		defer cancel()
		if err := s.publisher.Publish(ctx, event); err != nil {
			logger.Log.WithField("event", event.Type).Warnf("Failed to publish event: %v", err)
		}
	})
}
