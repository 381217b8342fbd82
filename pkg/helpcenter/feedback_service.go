package helpcenter

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

const maxFeedbackBodyLen = 5000

// SubmitFeedback resolves the optional guide slug softly: a slug that does
// not resolve stores a null guide reference instead of rejecting the
// submission. User input is not lost over a typo.
func (s *service) SubmitFeedback(ctx context.Context, req SubmitFeedbackRequest) (*Feedback, error) {
	body := strings.TrimSpace(req.Body)
	if body == "" {
		return nil, fmt.Errorf("%w: feedback body must not be empty", ErrInvalidInput)
	}
	if len(body) > maxFeedbackBodyLen {
		return nil, fmt.Errorf("%w: feedback body exceeds %d characters", ErrInvalidInput, maxFeedbackBodyLen)
	}
	if req.Rating != nil && (*req.Rating < 1 || *req.Rating > 5) {
		return nil, fmt.Errorf("%w: rating must be 1..5", ErrInvalidInput)
	}

	var guideID *uuid.UUID
	if req.GuideSlug != "" {
		guide, err := s.repository.GetGuideBySlug(ctx, req.GuideSlug)
		switch {
		case err == nil:
			guideID = &guide.ID
		case errors.Is(err, ErrGuideNotFound):
			s.logger.Debug("feedback referenced unknown guide slug", "slug", req.GuideSlug)
		default:
			return nil, err
		}
	}

	feedback := &Feedback{
		ID:        uuid.New(),
		GuideID:   guideID,
		Email:     strings.TrimSpace(req.Email),
		Body:      body,
		Rating:    req.Rating,
		CreatedAt: s.now(),
	}

	if err := s.repository.CreateFeedback(ctx, feedback); err != nil {
		return nil, err
	}

	return feedback, nil
}

func (s *service) GetFeedback(ctx context.Context, id uuid.UUID) (*Feedback, error) {
	return s.repository.GetFeedback(ctx, id)
}

func (s *service) ListFeedback(ctx context.Context) ([]*Feedback, error) {
	return s.repository.ListFeedback(ctx)
}

func (s *service) DeleteFeedback(ctx context.Context, id uuid.UUID) error {
	return s.repository.DeleteFeedback(ctx, id)
}
