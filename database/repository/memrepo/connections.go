package memrepo

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"servswap/database"
	connectionRepo "servswap/database/repository/connection"
	"servswap/models"
)

type Connections struct {
	mu   sync.Mutex
	byID map[string]models.Connection
}

var _ connectionRepo.ConnectionRepository = (*Connections)(nil)

func NewConnections(seed ...models.Connection) *Connections {
	r := &Connections{byID: map[string]models.Connection{}}
	for _, c := range seed {
		r.byID[c.ID] = c
	}
	return r
}

func (r *Connections) Create(_ context.Context, c *models.Connection) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	now := time.Now()
	c.CreatedAt, c.UpdatedAt = now, now
	r.byID[c.ID] = *c
	return nil
}

func (r *Connections) GetByID(_ context.Context, id string) (*models.Connection, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.byID[id]
	if !ok {
		return nil, fmt.Errorf("connection %s: %w", id, database.ErrNotFound)
	}
	return &c, nil
}

func (r *Connections) FindBetween(_ context.Context, a, b string) (*models.Connection, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var best *models.Connection
	for _, c := range r.byID {
		if (c.RequesterID == a && c.AddresseeID == b) || (c.RequesterID == b && c.AddresseeID == a) {
			c := c
			if best == nil || c.UpdatedAt.After(best.UpdatedAt) {
				best = &c
			}
		}
	}
	if best == nil {
		return nil, database.ErrNotFound
	}
	return best, nil
}

func (r *Connections) UpdateStatus(_ context.Context, id string, from, to models.ConnectionStatus) (*models.Connection, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.byID[id]
	if !ok || c.Status != from {
		return nil, database.ErrConflict
	}
	c.Status = to
	c.UpdatedAt = time.Now()
	r.byID[id] = c
	return &c, nil
}

func (r *Connections) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byID[id]; !ok {
		return fmt.Errorf("connection %s: %w", id, database.ErrNotFound)
	}
	delete(r.byID, id)
	return nil
}

func (r *Connections) DeleteForUser(_ context.Context, userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, c := range r.byID {
		if c.RequesterID == userID || c.AddresseeID == userID {
			delete(r.byID, id)
		}
	}
	return nil
}

func (r *Connections) ListForUser(_ context.Context, userID string, status models.ConnectionStatus) ([]models.Connection, error) {
	r.mu.Lock()
	out := []models.Connection{}
	for _, c := range r.byID {
		if (c.RequesterID == userID || c.AddresseeID == userID) && c.Status == status {
			out = append(out, c)
		}
	}
	r.mu.Unlock()
	sort.SliceStable(out, func(i, j int) bool { return out[i].UpdatedAt.After(out[j].UpdatedAt) })
	return out, nil
}

func (r *Connections) AcceptedIDs(ctx context.Context, userID string) ([]string, error) {
	conns, _ := r.ListForUser(ctx, userID, models.ConnectionAccepted)
	ids := make([]string, 0, len(conns))
	for i := range conns {
		ids = append(ids, conns[i].Other(userID))
	}
	return ids, nil
}
