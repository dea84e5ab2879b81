package notification

import (
	"context"

	"servswap/models"
	"servswap/utils"

	"go.uber.org/zap"
)

// ConnectionLister resolves a member's accepted connections.
type ConnectionLister interface {
	AcceptedIDs(ctx context.Context, userID string) ([]string, error)
}

// DeliverFanOut notifies every accepted connection of the payload's author and
// returns how many recipients were notified. Only a failed connection lookup is
// returned as an error: a failed recipient is logged and skipped so a retry of
// the whole task never notifies the others twice.
func DeliverFanOut(ctx context.Context, conns ConnectionLister, n Notifier, p models.FanOutPayload) (int, error) {
	ids, err := conns.AcceptedIDs(ctx, p.AuthorID)
	if err != nil {
		return 0, err
	}

	delivered := 0
	for _, id := range ids {
		if id == p.AuthorID {
			continue
		}
		if err := n.Notify(ctx, id, p.Type, p.Title, p.Body, p.Data); err != nil {
			utils.GetLogger().Warn("fan-out notification failed",
				zap.String("authorID", p.AuthorID), zap.String("userID", id), zap.Error(err))
			continue
		}
		delivered++
	}
	return delivered, nil
}
