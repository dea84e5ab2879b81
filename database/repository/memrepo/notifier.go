package memrepo

import (
	"context"
	"sync"

	"servswap/models"
)

// Sent is one notification recorded by Notifier.
type Sent struct {
	UserID string
	Type   models.NotificationType
	Title  string
	Body   string
	Data   map[string]string
}

// Notifier records notifications instead of delivering them.
type Notifier struct {
	mu   sync.Mutex
	sent []Sent
	// Err, when set, is returned by every call after recording it.
	Err error
	// FailFor makes calls for the listed members fail without recording anything.
	FailFor map[string]error
}

func (n *Notifier) Notify(_ context.Context, userID string, t models.NotificationType, title, body string, data map[string]string) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if err := n.FailFor[userID]; err != nil {
		return err
	}
	n.sent = append(n.sent, Sent{UserID: userID, Type: t, Title: title, Body: body, Data: data})
	return n.Err
}

func (n *Notifier) NotifyMany(ctx context.Context, userIDs []string, t models.NotificationType, title, body string, data map[string]string) error {
	for _, id := range userIDs {
		_ = n.Notify(ctx, id, t, title, body, data)
	}
	return n.Err
}

// All returns a copy of everything recorded so far.
func (n *Notifier) All() []Sent {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]Sent(nil), n.sent...)
}

// To returns the notification types sent to userID, in order.
func (n *Notifier) To(userID string) []models.NotificationType {
	var out []models.NotificationType
	for _, s := range n.All() {
		if s.UserID == userID {
			out = append(out, s.Type)
		}
	}
	return out
}
