package swap

import (
	"context"
	"errors"
	"strings"
	"unicode/utf8"

	"servswap/database"
	"servswap/models"
	"servswap/services/apperr"
	"servswap/services/subscription"
	"servswap/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const maxMessage = 1000

func (s *DefaultSwapService) loadUser(ctx context.Context, userID string) (*models.User, error) {
	u, err := s.Users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return nil, apperr.NotFound("user not found")
		}
		return nil, apperr.Internal("failed to load user", err)
	}
	return u, nil
}

func (s *DefaultSwapService) loadService(ctx context.Context, serviceID, which string) (*models.Service, error) {
	svc, err := s.Services.GetByID(ctx, serviceID)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return nil, apperr.NotFound("%s service not found", which)
		}
		return nil, apperr.Internal("failed to load service", err)
	}
	if !svc.Active {
		return nil, apperr.Invalid("%s service is not active", which)
	}
	return svc, nil
}

// checkProposalAllowance enforces the monthly proposal allowance of the free plan.
func (s *DefaultSwapService) checkProposalAllowance(ctx context.Context, u *models.User) error {
	now := s.now()
	if subscription.IsPremium(u, now) {
		return nil
	}
	used, err := s.Swaps.CountByProposerSince(ctx, u.ID, subscription.MonthStart(now))
	if err != nil {
		return apperr.Internal("failed to count proposals", err)
	}
	if limit := subscription.FreeSwapProposalsPerMonth(); used >= int64(limit) {
		return apperr.LimitReached("free plan allows %d swap proposals per month, upgrade to premium for unlimited proposals", limit)
	}
	return nil
}

func (s *DefaultSwapService) Propose(ctx context.Context, proposerID string, req models.ProposeSwapRequest) (*models.Swap, error) {
	logger := utils.GetLogger()

	msg := strings.TrimSpace(req.Message)
	if utf8.RuneCountInString(msg) > maxMessage {
		return nil, apperr.Invalid("message must be at most %d characters", maxMessage)
	}

	proposer, err := s.loadUser(ctx, proposerID)
	if err != nil {
		return nil, err
	}
	if proposer.Suspended {
		return nil, apperr.Forbidden("account is suspended")
	}

	offered, err := s.loadService(ctx, req.OfferedServiceID, "offered")
	if err != nil {
		return nil, err
	}
	if offered.OwnerID != proposerID {
		return nil, apperr.Forbidden("you can only offer your own services")
	}
	requested, err := s.loadService(ctx, req.RequestedServiceID, "requested")
	if err != nil {
		return nil, err
	}
	if requested.OwnerID == proposerID {
		return nil, apperr.Invalid("you cannot request your own service")
	}
	recipient, err := s.loadUser(ctx, requested.OwnerID)
	if err != nil {
		return nil, err
	}
	if recipient.Suspended {
		return nil, apperr.Invalid("this member is not accepting swaps")
	}

	_, err = s.Swaps.FindOpenForPair(ctx, offered.ID, requested.ID)
	switch {
	case err == nil:
		return nil, apperr.Conflict("a swap for these services is already open")
	case !errors.Is(err, database.ErrNotFound):
		return nil, apperr.Internal("failed to check open swaps", err)
	}

	if err := s.checkProposalAllowance(ctx, proposer); err != nil {
		return nil, err
	}

	swap := &models.Swap{
		ID:                 uuid.New().String(),
		ProposerID:         proposerID,
		RecipientID:        recipient.ID,
		OfferedServiceID:   offered.ID,
		RequestedServiceID: requested.ID,
		Message:            msg,
		Status:             models.SwapPending,
		ReviewedBy:         []string{},
		CreatedAt:          s.now(),
	}
	if err := s.Swaps.Create(ctx, swap); err != nil {
		return nil, apperr.Internal("failed to create swap", err)
	}
	logger.Info("swap proposed",
		zap.String("swapID", swap.ID),
		zap.String("proposerID", proposerID),
		zap.String("recipientID", recipient.ID))

	s.notify(ctx, recipient.ID, models.NotifySwapProposed, "New swap proposal",
		proposer.DisplayName+" wants to swap "+offered.Title+" for your "+requested.Title, swap)
	return swap, nil
}

// notify is best effort; a failed notification never fails the swap operation.
func (s *DefaultSwapService) notify(ctx context.Context, userID string, t models.NotificationType, title, body string, swap *models.Swap) {
	if s.Notifier == nil {
		return
	}
	data := map[string]string{"swapId": swap.ID, "status": string(swap.Status)}
	if err := s.Notifier.Notify(ctx, userID, t, title, body, data); err != nil {
		utils.GetLogger().Error("swap notification failed",
			zap.String("swapID", swap.ID), zap.String("type", string(t)), zap.Error(err))
	}
}
