package service

import (
	"context"
	"log/slog"
	"strings"

	"github.com/staybook/staybook-go/internal/model"
)

const (
	MinRating = 1
	MaxRating = 5
)

// ReviewService submits guest reviews.
type ReviewService struct {
	store   ListingStore
	session Session
	logger  *slog.Logger
}

// NewReviewService creates a new ReviewService.
func NewReviewService(store ListingStore, session Session, logger *slog.Logger) *ReviewService {
	if logger == nil {
		logger = slog.Default()
	}
	return &ReviewService{store: store, session: session, logger: logger}
}

// Submit posts a review. The rating must be within 1..5 and the comment must
// not be blank.
func (s *ReviewService) Submit(ctx context.Context, listingID string, rating int, comment string) (*model.Review, error) {
	if !s.session.Authenticated() {
		return nil, ErrAuthRequired
	}
	if listingID == "" {
		return nil, ErrListingRequired
	}
	if rating < MinRating || rating > MaxRating {
		return nil, ErrInvalidRating
	}
	comment = strings.TrimSpace(comment)
	if comment == "" {
		return nil, ErrCommentRequired
	}

	review, err := s.store.CreateReview(ctx, model.CreateReviewRequest{
		ListingID: listingID,
		Rating:    rating,
		Comment:   comment,
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("review submitted", "listing", listingID, "review", review.ID)
	return review, nil
}
