package memrepo

import (
	"context"
	"fmt"
	"sync"
	"time"

	"servswap/database"
	notificationRepo "servswap/database/repository/notification"
	"servswap/models"
)

// Notifications keeps notifications in insertion order.
type Notifications struct {
	mu    sync.Mutex
	items []models.Notification
}

var _ notificationRepo.NotificationRepository = (*Notifications)(nil)

func NewNotifications() *Notifications {
	return &Notifications{}
}

func (r *Notifications) Create(_ context.Context, n *models.Notification) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if n.CreatedAt.IsZero() {
		n.CreatedAt = time.Now()
	}
	r.items = append(r.items, *n)
	return nil
}

func (r *Notifications) CreateMany(ctx context.Context, ns []models.Notification) error {
	for i := range ns {
		if err := r.Create(ctx, &ns[i]); err != nil {
			return err
		}
	}
	return nil
}

// All returns every stored notification for userID, oldest first.
func (r *Notifications) All(userID string) []models.Notification {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []models.Notification{}
	for _, n := range r.items {
		if n.UserID == userID {
			out = append(out, n)
		}
	}
	return out
}

func (r *Notifications) List(_ context.Context, userID string, unreadOnly bool, page models.Page) ([]models.Notification, error) {
	r.mu.Lock()
	out := []models.Notification{}
	for i := len(r.items) - 1; i >= 0; i-- {
		n := r.items[i]
		if n.UserID == userID && (!unreadOnly || !n.Read) {
			out = append(out, n)
		}
	}
	r.mu.Unlock()
	p := page.Normalize()
	return paginate(out, p.Skip(), p.Limit), nil
}

func (r *Notifications) CountUnread(_ context.Context, userID string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for _, item := range r.items {
		if item.UserID == userID && !item.Read {
			n++
		}
	}
	return n, nil
}

func (r *Notifications) MarkRead(_ context.Context, userID, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.items {
		if r.items[i].ID == id && r.items[i].UserID == userID {
			r.items[i].Read = true
			return nil
		}
	}
	return fmt.Errorf("notification %s: %w", id, database.ErrNotFound)
}

func (r *Notifications) MarkAllRead(_ context.Context, userID string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for i := range r.items {
		if r.items[i].UserID == userID && !r.items[i].Read {
			r.items[i].Read = true
			n++
		}
	}
	return n, nil
}

func (r *Notifications) Delete(_ context.Context, userID, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for i := range r.items {
		if r.items[i].ID == id && r.items[i].UserID == userID {
			r.items = append(r.items[:i], r.items[i+1:]...)
			return nil
		}
	}
	return fmt.Errorf("notification %s: %w", id, database.ErrNotFound)
}

func (r *Notifications) DeleteForUser(_ context.Context, userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	kept := r.items[:0]
	for _, n := range r.items {
		if n.UserID != userID {
			kept = append(kept, n)
		}
	}
	r.items = kept
	return nil
}
