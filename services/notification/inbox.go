package notification

import (
	"context"
	"errors"

	"servswap/database"
	"servswap/models"
	"servswap/services/apperr"
)

func (s *DefaultNotificationService) List(ctx context.Context, userID string, unreadOnly bool, page models.Page) ([]models.Notification, error) {
	items, err := s.Repo.List(ctx, userID, unreadOnly, page)
	if err != nil {
		return nil, apperr.Internal("failed to load notifications", err)
	}
	return items, nil
}

func (s *DefaultNotificationService) UnreadCount(ctx context.Context, userID string) (int64, error) {
	n, err := s.Repo.CountUnread(ctx, userID)
	if err != nil {
		return 0, apperr.Internal("failed to count notifications", err)
	}
	return n, nil
}

func (s *DefaultNotificationService) MarkRead(ctx context.Context, userID, id string) error {
	if err := s.Repo.MarkRead(ctx, userID, id); err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return apperr.NotFound("notification not found")
		}
		return apperr.Internal("failed to update notification", err)
	}
	return nil
}

func (s *DefaultNotificationService) MarkAllRead(ctx context.Context, userID string) (int64, error) {
	n, err := s.Repo.MarkAllRead(ctx, userID)
	if err != nil {
		return 0, apperr.Internal("failed to update notifications", err)
	}
	return n, nil
}

func (s *DefaultNotificationService) Delete(ctx context.Context, userID, id string) error {
	if err := s.Repo.Delete(ctx, userID, id); err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return apperr.NotFound("notification not found")
		}
		return apperr.Internal("failed to delete notification", err)
	}
	return nil
}

// PurgeUser drops the inbox of a member whose account is going away.
func (s *DefaultNotificationService) PurgeUser(ctx context.Context, userID string) error {
	return s.Repo.DeleteForUser(ctx, userID)
}
