package memrepo

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"servswap/database"
	serviceRepo "servswap/database/repository/service"
	"servswap/models"
)

type Services struct {
	mu   sync.Mutex
	byID map[string]models.Service
}

var _ serviceRepo.ServiceRepository = (*Services)(nil)

func NewServices(seed ...models.Service) *Services {
	r := &Services{byID: map[string]models.Service{}}
	for _, s := range seed {
		r.byID[s.ID] = s
	}
	return r
}

func (r *Services) Create(_ context.Context, svc *models.Service) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	now := time.Now()
	svc.CreatedAt, svc.UpdatedAt = now, now
	r.byID[svc.ID] = *svc
	return nil
}

func (r *Services) GetByID(_ context.Context, id string) (*models.Service, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.byID[id]
	if !ok {
		return nil, fmt.Errorf("service %s: %w", id, database.ErrNotFound)
	}
	return &s, nil
}

func (r *Services) GetByIDs(_ context.Context, ids []string) ([]models.Service, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []models.Service{}
	for _, id := range ids {
		if s, ok := r.byID[id]; ok {
			out = append(out, s)
		}
	}
	return out, nil
}

func (r *Services) UpdateFields(_ context.Context, id string, fields map[string]any) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.byID[id]
	if !ok {
		return fmt.Errorf("service %s: %w", id, database.ErrNotFound)
	}
	doc, err := toDoc(s)
	if err != nil {
		return err
	}
	for k, v := range fields {
		setPath(doc, k, v)
	}
	var updated models.Service
	if err := fromDoc(doc, &updated); err != nil {
		return err
	}
	updated.UpdatedAt = time.Now()
	r.byID[id] = updated
	return nil
}

func (r *Services) AddImage(_ context.Context, id, url string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.byID[id]
	if !ok {
		return fmt.Errorf("service %s: %w", id, database.ErrNotFound)
	}
	s.ImageURLs = append(s.ImageURLs, url)
	r.byID[id] = s
	return nil
}

func (r *Services) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byID[id]; !ok {
		return fmt.Errorf("service %s: %w", id, database.ErrNotFound)
	}
	delete(r.byID, id)
	return nil
}

func (r *Services) sorted(match func(models.Service) bool) []models.Service {
	r.mu.Lock()
	out := []models.Service{}
	for _, s := range r.byID {
		if match(s) {
			out = append(out, s)
		}
	}
	r.mu.Unlock()
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out
}

func (r *Services) List(_ context.Context, f models.ServiceFilter, page models.Page) ([]models.Service, int64, error) {
	q := strings.ToLower(f.Query)
	out := r.sorted(func(s models.Service) bool {
		if f.ActiveOnly && !s.Active {
			return false
		}
		if f.Category != "" && s.Category != f.Category {
			return false
		}
		if f.OwnerID != "" && s.OwnerID != f.OwnerID {
			return false
		}
		if f.OwnerID == "" && f.ExcludeOwnerID != "" && s.OwnerID == f.ExcludeOwnerID {
			return false
		}
		if q != "" {
			hit := strings.Contains(strings.ToLower(s.Title), q) || strings.Contains(strings.ToLower(s.Description), q)
			for _, t := range s.Tags {
				hit = hit || strings.Contains(strings.ToLower(t), q)
			}
			if !hit {
				return false
			}
		}
		return true
	})
	p := page.Normalize()
	return paginate(out, p.Skip(), p.Limit), int64(len(out)), nil
}

func (r *Services) CountActiveByOwner(_ context.Context, ownerID string) (int64, error) {
	return int64(len(r.sorted(func(s models.Service) bool { return s.OwnerID == ownerID && s.Active }))), nil
}

func (r *Services) FindByTerms(_ context.Context, terms []string, excludeOwnerID string, limit int) ([]models.Service, error) {
	out := r.sorted(func(s models.Service) bool {
		return s.Active && s.OwnerID != excludeOwnerID &&
			(contains(terms, s.Category) || intersects(terms, s.Tags))
	})
	return paginate(out, 0, limit), nil
}

func (r *Services) DeactivateByOwner(_ context.Context, ownerID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, s := range r.byID {
		if s.OwnerID == ownerID && s.Active {
			s.Active, s.SuspendedHidden = false, true
			r.byID[id] = s
		}
	}
	return nil
}

func (r *Services) ReactivateByOwner(_ context.Context, ownerID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, s := range r.byID {
		if s.OwnerID == ownerID && s.SuspendedHidden {
			s.Active, s.SuspendedHidden = true, false
			r.byID[id] = s
		}
	}
	return nil
}

func (r *Services) ListByOwner(_ context.Context, ownerID string) ([]models.Service, error) {
	return r.sorted(func(s models.Service) bool { return s.OwnerID == ownerID }), nil
}

func (r *Services) DeleteByOwner(_ context.Context, ownerID string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for id, s := range r.byID {
		if s.OwnerID == ownerID {
			delete(r.byID, id)
			n++
		}
	}
	return n, nil
}

func (r *Services) Count(_ context.Context) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return int64(len(r.byID)), nil
}
