package service

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/mmynk/tabkeeper/internal/models"
)

// FeedbackBackend sends app feedback. *api.Client implements it.
type FeedbackBackend interface {
	SubmitFeedback(ctx context.Context, fb models.Feedback) error
}

// FeedbackService sends feedback about the app.
type FeedbackService struct {
	backend FeedbackBackend
}

// NewFeedbackService creates a FeedbackService.
func NewFeedbackService(backend FeedbackBackend) *FeedbackService {
	return &FeedbackService{backend: backend}
}

// Submit validates and sends one piece of feedback.
func (s *FeedbackService) Submit(ctx context.Context, firstName, lastName, text string) error {
	fb := models.Feedback{
		FirstName: strings.TrimSpace(firstName),
		LastName:  strings.TrimSpace(lastName),
		Feedback:  strings.TrimSpace(text),
	}
	if err := validateInput(fb); err != nil {
		return err
	}
	if err := s.backend.SubmitFeedback(ctx, fb); err != nil {
		return fmt.Errorf("failed to submit feedback: %w", err)
	}
	slog.Debug("Feedback submitted", "first_name", fb.FirstName)
	return nil
}
