package models

import "time"

type NotificationType string

const (
	NotifySwapProposed        NotificationType = "swap_proposed"
	NotifySwapAccepted        NotificationType = "swap_accepted"
	NotifySwapDeclined        NotificationType = "swap_declined"
	NotifySwapCancelled       NotificationType = "swap_cancelled"
	NotifySwapCompleted       NotificationType = "swap_completed"
	NotifyReviewReceived      NotificationType = "review_received"
	NotifyConnectionRequest   NotificationType = "connection_request"
	NotifyConnectionAccepted  NotificationType = "connection_accepted"
	NotifyMessage             NotificationType = "message"
	NotifyPostLiked           NotificationType = "post_liked"
	NotifyPostCommented       NotificationType = "post_commented"
	NotifyNewPost             NotificationType = "new_post"
	NotifySubscriptionUpdated NotificationType = "subscription_updated"
	NotifySubscriptionRenewal NotificationType = "subscription_renewal"
	NotifyVerificationGranted NotificationType = "verification_granted"
)

type Notification struct {
	ID        string            `bson:"id" json:"id"`
	UserID    string            `bson:"userId" json:"userId"`
	Type      NotificationType  `bson:"type" json:"type"`
	Title     string            `bson:"title" json:"title"`
	Body      string            `bson:"body" json:"body"`
	Data      map[string]string `bson:"data,omitempty" json:"data,omitempty"`
	Read      bool              `bson:"read" json:"read"`
	CreatedAt time.Time         `bson:"createdAt" json:"createdAt"`
}
