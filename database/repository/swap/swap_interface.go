package swapRepo

import (
	"context"
	"time"

	"servswap/models"
)

// SwapRepository defines data access for swaps and the reviews left on them.
type SwapRepository interface {
	Create(ctx context.Context, swap *models.Swap) error
	GetByID(ctx context.Context, id string) (*models.Swap, error)

	// Transition moves a swap from one status to another only if it is still in from.
	// It returns the updated swap, or database.ErrConflict when the status moved on.
	Transition(ctx context.Context, id string, from, to models.SwapStatus, fields map[string]any) (*models.Swap, error)
	// MarkParticipantComplete sets the completion flag for one side of an accepted swap.
	MarkParticipantComplete(ctx context.Context, id string, proposer bool) (*models.Swap, error)
	// AddReviewer records that reviewerID reviewed a completed swap. A second call for the
	// same reviewer returns database.ErrConflict.
	AddReviewer(ctx context.Context, id, reviewerID string) error
	// CancelOpenForUser cancels every pending or accepted swap the user takes part in.
	CancelOpenForUser(ctx context.Context, userID string) (int64, error)

	CountByProposerSince(ctx context.Context, proposerID string, since time.Time) (int64, error)
	FindOpenForPair(ctx context.Context, offeredServiceID, requestedServiceID string) (*models.Swap, error)
	HasAcceptedForService(ctx context.Context, serviceID string) (bool, error)
	HasSharedSwap(ctx context.Context, userA, userB string) (bool, error)
	ListForUser(ctx context.Context, userID string, filter models.SwapListFilter, page models.Page) ([]models.Swap, error)
	CountByStatus(ctx context.Context) (map[string]int64, error)

	CreateReview(ctx context.Context, review *models.Review) error
	ListReviewsFor(ctx context.Context, revieweeID string, page models.Page) ([]models.Review, error)
}
