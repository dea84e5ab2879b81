package notification

import (
	"context"

	notificationRepo "servswap/database/repository/notification"
	userRepo "servswap/database/repository/user"
	"servswap/models"

	"firebase.google.com/go/v4/messaging"
)

// Notifier creates in-app notifications and pushes them to the member's devices.
type Notifier interface {
	Notify(ctx context.Context, userID string, t models.NotificationType, title, body string, data map[string]string) error
	// NotifyMany fans one event out to every recipient. It keeps going past
	// individual failures and returns the first error seen.
	NotifyMany(ctx context.Context, userIDs []string, t models.NotificationType, title, body string, data map[string]string) error
}

// NotificationService is the member-facing inbox on top of Notifier.
type NotificationService interface {
	Notifier
	List(ctx context.Context, userID string, unreadOnly bool, page models.Page) ([]models.Notification, error)
	UnreadCount(ctx context.Context, userID string) (int64, error)
	MarkRead(ctx context.Context, userID, id string) error
	MarkAllRead(ctx context.Context, userID string) (int64, error)
	Delete(ctx context.Context, userID, id string) error
}

// PushSender is satisfied by *messaging.Client.
type PushSender interface {
	SendEachForMulticast(ctx context.Context, message *messaging.MulticastMessage) (*messaging.BatchResponse, error)
}

// DefaultNotificationService is the production implementation.
type DefaultNotificationService struct {
	Repo  notificationRepo.NotificationRepository
	Users userRepo.UserRepository
	// Push may be nil, in which case notifications are stored only.
	Push PushSender
}
