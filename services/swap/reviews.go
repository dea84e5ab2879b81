package swap

import (
	"context"
	"errors"
	"strings"
	"unicode/utf8"

	"servswap/database"
	"servswap/models"
	"servswap/services/apperr"
	"servswap/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const maxReviewComment = 1000

func (s *DefaultSwapService) Review(ctx context.Context, reviewerID, swapID string, req models.ReviewRequest) (*models.Review, error) {
	if req.Rating < 1 || req.Rating > 5 {
		return nil, apperr.Invalid("rating must be between 1 and 5")
	}
	comment := strings.TrimSpace(req.Comment)
	if utf8.RuneCountInString(comment) > maxReviewComment {
		return nil, apperr.Invalid("comment must be at most %d characters", maxReviewComment)
	}

	swap, err := s.loadAsParticipant(ctx, reviewerID, swapID)
	if err != nil {
		return nil, err
	}
	if swap.Status != models.SwapCompleted {
		return nil, apperr.Conflict("only completed swaps can be reviewed")
	}

	// The unique (swapId, reviewerId) index decides whether this is a repeat;
	// reviewedBy on the swap is only written once the review exists.
	review := &models.Review{
		ID:         uuid.New().String(),
		SwapID:     swapID,
		ReviewerID: reviewerID,
		RevieweeID: swap.Counterparty(reviewerID),
		Rating:     req.Rating,
		Comment:    comment,
	}
	if err := s.Swaps.CreateReview(ctx, review); err != nil {
		if errors.Is(err, database.ErrConflict) {
			return nil, apperr.Conflict("you already reviewed this swap")
		}
		return nil, apperr.Internal("failed to save review", err)
	}
	if err := s.Swaps.AddReviewer(ctx, swapID, reviewerID); err != nil && !errors.Is(err, database.ErrConflict) {
		utils.GetLogger().Error("failed to mark swap as reviewed",
			zap.String("swapID", swapID), zap.String("reviewerID", reviewerID), zap.Error(err))
	}
	if err := s.Users.AddRating(ctx, review.RevieweeID, review.Rating); err != nil {
		utils.GetLogger().Error("failed to update rating",
			zap.String("userID", review.RevieweeID), zap.String("swapID", swapID), zap.Error(err))
	}

	s.notify(ctx, review.RevieweeID, models.NotifyReviewReceived, "New review",
		s.displayName(ctx, reviewerID)+" left you a review", swap)
	return review, nil
}

func (s *DefaultSwapService) ListReviews(ctx context.Context, revieweeID string, page models.Page) ([]models.Review, error) {
	reviews, err := s.Swaps.ListReviewsFor(ctx, revieweeID, page)
	if err != nil {
		return nil, apperr.Internal("failed to list reviews", err)
	}
	return reviews, nil
}
