package notification

import (
	"context"
	"fmt"

	"servswap/models"
	"servswap/utils"

	"firebase.google.com/go/v4/errorutils"
	"firebase.google.com/go/v4/messaging"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

func (s *DefaultNotificationService) Notify(
	ctx context.Context,
	userID string,
	t models.NotificationType,
	title, body string,
	data map[string]string,
) error {
	n := &models.Notification{
		ID:     uuid.New().String(),
		UserID: userID,
		Type:   t,
		Title:  title,
		Body:   body,
		Data:   data,
	}
	if err := s.Repo.Create(ctx, n); err != nil {
		return fmt.Errorf("Notify: %w", err)
	}

	if s.Push != nil {
		s.push(ctx, n)
	}
	return nil
}

func (s *DefaultNotificationService) NotifyMany(
	ctx context.Context,
	userIDs []string,
	t models.NotificationType,
	title, body string,
	data map[string]string,
) error {
	var firstErr error
	for _, id := range userIDs {
		if err := s.Notify(ctx, id, t, title, body, data); err != nil {
			utils.GetLogger().Warn("fan-out notification failed",
				zap.String("userID", id), zap.String("type", string(t)), zap.Error(err))
			if firstErr == nil {
				firstErr = err
			}
		}
	}
	return firstErr
}

// push delivers n over FCM when the member allows push and has tokens.
// Delivery failures are logged and never fail the caller.
func (s *DefaultNotificationService) push(ctx context.Context, n *models.Notification) {
	logger := utils.GetLogger()

	u, err := s.Users.GetByID(ctx, n.UserID)
	if err != nil {
		logger.Warn("push skipped: user lookup failed", zap.String("userID", n.UserID), zap.Error(err))
		return
	}
	if !u.NotificationPrefs.Push || len(u.FCMTokens) == 0 {
		return
	}

	data := map[string]string{
		"type":           string(n.Type),
		"notificationId": n.ID,
	}
	for k, v := range n.Data {
		data[k] = v
	}

	msg := &messaging.MulticastMessage{
		Tokens: u.FCMTokens,
		Notification: &messaging.Notification{
			Title: n.Title,
			Body:  n.Body,
		},
		Data: data,
		Android: &messaging.AndroidConfig{
			Priority: "high",
			Notification: &messaging.AndroidNotification{
				ChannelID: "high_priority",
				Sound:     "default",
			},
		},
		APNS: &messaging.APNSConfig{
			Headers: map[string]string{
				"apns-priority":  "10",
				"apns-push-type": "alert",
			},
			Payload: &messaging.APNSPayload{
				Aps: &messaging.Aps{Sound: "default"},
			},
		},
	}

	resp, err := s.Push.SendEachForMulticast(ctx, msg)
	if err != nil {
		logger.Warn("FCM multicast failed", zap.String("userID", u.ID), zap.Error(err))
		return
	}

	var stale []string
	for i, r := range resp.Responses {
		if r.Success || i >= len(u.FCMTokens) {
			continue
		}
		if messaging.IsUnregistered(r.Error) || errorutils.IsInvalidArgument(r.Error) {
			stale = append(stale, u.FCMTokens[i])
		}
	}
	if len(stale) > 0 {
		if err := s.Users.PullFromArray(ctx, u.ID, "fcmTokens", stale); err != nil {
			logger.Warn("failed to prune FCM tokens", zap.String("userID", u.ID), zap.Error(err))
		} else {
			logger.Info("pruned FCM tokens", zap.String("userID", u.ID), zap.Int("count", len(stale)))
		}
	}
}
