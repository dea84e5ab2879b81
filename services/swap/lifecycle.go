package swap

import (
	"context"
	"errors"

	"servswap/database"
	"servswap/models"
	"servswap/services/apperr"
	"servswap/utils"

	"go.uber.org/zap"
)

func (s *DefaultSwapService) load(ctx context.Context, swapID string) (*models.Swap, error) {
	swap, err := s.Swaps.GetByID(ctx, swapID)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return nil, apperr.NotFound("swap not found")
		}
		return nil, apperr.Internal("failed to load swap", err)
	}
	return swap, nil
}

func (s *DefaultSwapService) loadAsParticipant(ctx context.Context, userID, swapID string) (*models.Swap, error) {
	swap, err := s.load(ctx, swapID)
	if err != nil {
		return nil, err
	}
	if !swap.IsParticipant(userID) {
		return nil, apperr.Forbidden("you are not part of this swap")
	}
	return swap, nil
}

func (s *DefaultSwapService) transition(ctx context.Context, swap *models.Swap, to models.SwapStatus, fields map[string]any) (*models.Swap, error) {
	updated, err := s.Swaps.Transition(ctx, swap.ID, swap.Status, to, fields)
	if err != nil {
		if errors.Is(err, database.ErrConflict) {
			return nil, apperr.Conflict("swap was updated by someone else, reload and try again")
		}
		return nil, apperr.Internal("failed to update swap", err)
	}
	utils.GetLogger().Info("swap transitioned",
		zap.String("swapID", swap.ID),
		zap.String("from", string(swap.Status)),
		zap.String("to", string(to)))
	return updated, nil
}

func (s *DefaultSwapService) displayName(ctx context.Context, userID string) string {
	u, err := s.Users.GetByID(ctx, userID)
	if err != nil {
		return "A member"
	}
	return u.DisplayName
}

func (s *DefaultSwapService) respond(ctx context.Context, userID, swapID string, accept bool) (*models.Swap, error) {
	swap, err := s.loadAsParticipant(ctx, userID, swapID)
	if err != nil {
		return nil, err
	}
	if swap.RecipientID != userID {
		return nil, apperr.Forbidden("only the recipient can respond to a proposal")
	}
	if swap.Status != models.SwapPending {
		return nil, apperr.Conflict("swap is %s, not pending", swap.Status)
	}

	to, nt, verb := models.SwapDeclined, models.NotifySwapDeclined, "declined"
	if accept {
		to, nt, verb = models.SwapAccepted, models.NotifySwapAccepted, "accepted"
	}
	updated, err := s.transition(ctx, swap, to, map[string]any{"respondedAt": s.now()})
	if err != nil {
		return nil, err
	}
	s.notify(ctx, swap.ProposerID, nt, "Swap "+verb,
		s.displayName(ctx, userID)+" "+verb+" your swap proposal", updated)
	return updated, nil
}

func (s *DefaultSwapService) Accept(ctx context.Context, userID, swapID string) (*models.Swap, error) {
	return s.respond(ctx, userID, swapID, true)
}

func (s *DefaultSwapService) Decline(ctx context.Context, userID, swapID string) (*models.Swap, error) {
	return s.respond(ctx, userID, swapID, false)
}

// Cancel withdraws a pending proposal (proposer only) or calls off an accepted swap (either side).
func (s *DefaultSwapService) Cancel(ctx context.Context, userID, swapID string) (*models.Swap, error) {
	swap, err := s.loadAsParticipant(ctx, userID, swapID)
	if err != nil {
		return nil, err
	}
	switch swap.Status {
	case models.SwapPending:
		if swap.ProposerID != userID {
			return nil, apperr.Forbidden("the recipient declines a proposal instead of cancelling it")
		}
	case models.SwapAccepted:
	default:
		return nil, apperr.Conflict("a %s swap cannot be cancelled", swap.Status)
	}

	updated, err := s.transition(ctx, swap, models.SwapCancelled, nil)
	if err != nil {
		return nil, err
	}
	s.notify(ctx, swap.Counterparty(userID), models.NotifySwapCancelled, "Swap cancelled",
		s.displayName(ctx, userID)+" cancelled your swap", updated)
	return updated, nil
}

func (s *DefaultSwapService) MarkComplete(ctx context.Context, userID, swapID string) (*models.Swap, error) {
	logger := utils.GetLogger()

	swap, err := s.loadAsParticipant(ctx, userID, swapID)
	if err != nil {
		return nil, err
	}
	if swap.Status != models.SwapAccepted {
		return nil, apperr.Conflict("only accepted swaps can be completed")
	}

	marked, err := s.Swaps.MarkParticipantComplete(ctx, swapID, swap.ProposerID == userID)
	if err != nil {
		if errors.Is(err, database.ErrConflict) {
			return nil, apperr.Conflict("swap is no longer accepted")
		}
		return nil, apperr.Internal("failed to mark swap complete", err)
	}
	if !marked.ProposerCompleted || !marked.RecipientCompleted {
		return marked, nil
	}

	completed, err := s.Swaps.Transition(ctx, swapID, models.SwapAccepted, models.SwapCompleted,
		map[string]any{"completedAt": s.now()})
	if errors.Is(err, database.ErrConflict) {
		// The other side's call finished the swap first.
		return s.load(ctx, swapID)
	}
	if err != nil {
		return nil, apperr.Internal("failed to complete swap", err)
	}

	for _, id := range []string{completed.ProposerID, completed.RecipientID} {
		if err := s.Users.Increment(ctx, id, "completedSwaps", 1); err != nil {
			logger.Error("failed to count completed swap", zap.String("userID", id), zap.Error(err))
		}
		s.notify(ctx, id, models.NotifySwapCompleted, "Swap completed",
			"Your swap is complete. Leave a review for your swap partner.", completed)
	}
	logger.Info("swap completed", zap.String("swapID", swapID))
	return completed, nil
}

func (s *DefaultSwapService) GetSwap(ctx context.Context, userID, swapID string) (*models.Swap, error) {
	return s.loadAsParticipant(ctx, userID, swapID)
}

func (s *DefaultSwapService) ListSwaps(ctx context.Context, userID string, filter models.SwapListFilter, page models.Page) ([]models.Swap, error) {
	switch filter.Role {
	case "":
		filter.Role = "all"
	case "all", "sent", "received":
	default:
		return nil, apperr.Invalid("role must be sent, received or all")
	}
	switch filter.Status {
	case "", models.SwapPending, models.SwapAccepted, models.SwapDeclined, models.SwapCancelled, models.SwapCompleted:
	default:
		return nil, apperr.Invalid("unknown swap status %q", filter.Status)
	}

	swaps, err := s.Swaps.ListForUser(ctx, userID, filter, page)
	if err != nil {
		return nil, apperr.Internal("failed to list swaps", err)
	}
	return swaps, nil
}

// PurgeUser cancels the open swaps of a member whose account is going away.
func (s *DefaultSwapService) PurgeUser(ctx context.Context, userID string) error {
	n, err := s.Swaps.CancelOpenForUser(ctx, userID)
	if err != nil {
		return err
	}
	if n > 0 {
		utils.GetLogger().Info("open swaps cancelled", zap.String("userID", userID), zap.Int64("count", n))
	}
	return nil
}
