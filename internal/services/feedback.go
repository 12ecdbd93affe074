package services

import (
	"context"
	"encoding/json"
	"errors"
	"strings"

	"github.com/dekorhaus/apiserver/internal/store"
	"github.com/dekorhaus/apiserver/types"
	"github.com/rs/zerolog/log"
)

// FeedbackChannel is the broker channel feedback events are published to.
const FeedbackChannel = "feedback.created"

// FeedbackRepository defines persistence operations for feedback.
type FeedbackRepository interface {
	ListByProject(ctx context.Context, projectID int) ([]types.Feedback, error)
	Get(ctx context.Context, id int) (types.Feedback, error)
	Create(ctx context.Context, feedback types.Feedback) (types.Feedback, error)
	Delete(ctx context.Context, id int) error
}

// EventPublisher sends a message to the named broker channel.
type EventPublisher interface {
	Publish(ctx context.Context, channel string, data []byte, attrs map[string]string) (string, error)
}

// FeedbackService encapsulates feedback use-cases. Created feedback is
// announced on the broker best-effort so site operators get notified;
// publish failures never fail the request.
type FeedbackService struct {
	repo      FeedbackRepository
	projects  ProjectRepository
	publisher EventPublisher
}

// NewFeedbackService constructs a FeedbackService. publisher may be nil
// when the deployment runs without a broker.
func NewFeedbackService(repo FeedbackRepository, projects ProjectRepository, publisher EventPublisher) *FeedbackService {
	return &FeedbackService{
		repo:      repo,
		projects:  projects,
		publisher: publisher,
	}
}

// ListByProject returns the project's feedback, newest first. A project
// with no feedback yields an empty list; a missing project yields
// store.ErrNotFound.
func (s *FeedbackService) ListByProject(ctx context.Context, projectID int) ([]types.Feedback, error) {
	exists, err := s.projects.Exists(ctx, projectID)
	if err != nil {
		return nil, err
	}
	if !exists {
		return nil, store.ErrNotFound
	}
	return s.repo.ListByProject(ctx, projectID)
}

// Add creates a feedback row for the project and publishes a
// notification event.
func (s *FeedbackService) Add(ctx context.Context, projectID, userID int, message string) (types.Feedback, error) {
	message = strings.TrimSpace(message)
	if message == "" {
		return types.Feedback{}, errors.New("message cannot be empty")
	}

	exists, err := s.projects.Exists(ctx, projectID)
	if err != nil {
		return types.Feedback{}, err
	}
	if !exists {
		return types.Feedback{}, store.ErrNotFound
	}

	created, err := s.repo.Create(ctx, types.Feedback{
		ProjectID: projectID,
		UserID:    userID,
		Message:   message,
	})
	if err != nil {
		return types.Feedback{}, err
	}

	s.announce(ctx, created)
	return created, nil
}

func (s *FeedbackService) Delete(ctx context.Context, id int) error {
	return s.repo.Delete(ctx, id)
}

func (s *FeedbackService) announce(ctx context.Context, feedback types.Feedback) {
	if s.publisher == nil {
		return
	}
	data, err := json.Marshal(feedback)
	if err != nil {
		return
	}
	if _, err := s.publisher.Publish(ctx, FeedbackChannel, data, map[string]string{
		"event": "feedback.created",
	}); err != nil {
		log.Warn().Err(err).Int("feedback_id", feedback.ID).Msg("failed to publish feedback event")
	}
}
