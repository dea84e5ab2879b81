package swap

import (
	"context"
	"time"

	serviceRepo "servswap/database/repository/service"
	swapRepo "servswap/database/repository/swap"
	userRepo "servswap/database/repository/user"
	"servswap/models"
	"servswap/services/notification"
)

type SwapService interface {
	Propose(ctx context.Context, proposerID string, req models.ProposeSwapRequest) (*models.Swap, error)
	Accept(ctx context.Context, userID, swapID string) (*models.Swap, error)
	Decline(ctx context.Context, userID, swapID string) (*models.Swap, error)
	Cancel(ctx context.Context, userID, swapID string) (*models.Swap, error)
	// MarkComplete records one side's completion; the swap completes once both sides have marked it.
	MarkComplete(ctx context.Context, userID, swapID string) (*models.Swap, error)
	Review(ctx context.Context, reviewerID, swapID string, req models.ReviewRequest) (*models.Review, error)

	GetSwap(ctx context.Context, userID, swapID string) (*models.Swap, error)
	ListSwaps(ctx context.Context, userID string, filter models.SwapListFilter, page models.Page) ([]models.Swap, error)
	ListReviews(ctx context.Context, revieweeID string, page models.Page) ([]models.Review, error)
	Matches(ctx context.Context, userID string, limit int) ([]models.SwapMatch, error)

	PurgeUser(ctx context.Context, userID string) error
}

type DefaultSwapService struct {
	Swaps    swapRepo.SwapRepository
	Services serviceRepo.ServiceRepository
	Users    userRepo.UserRepository
	Notifier notification.Notifier

	Now func() time.Time
}

func (s *DefaultSwapService) now() time.Time {
	if s.Now != nil {
		return s.Now()
	}
	return time.Now()
}
