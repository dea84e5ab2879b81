package memrepo

import (
	"context"
	"fmt"
	"reflect"
	"sort"
	"strings"
	"sync"
	"time"

	"servswap/database"
	userRepo "servswap/database/repository/user"
	"servswap/models"
)

// Users is an in-memory userRepo.UserRepository.
type Users struct {
	mu   sync.Mutex
	byID map[string]models.User
}

var _ userRepo.UserRepository = (*Users)(nil)

func NewUsers(seed ...models.User) *Users {
	r := &Users{byID: map[string]models.User{}}
	for _, u := range seed {
		r.byID[u.ID] = u
	}
	return r
}

func (r *Users) Create(_ context.Context, user *models.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byID[user.ID]; ok {
		return fmt.Errorf("user %s exists", user.ID)
	}
	now := time.Now()
	user.CreatedAt, user.UpdatedAt = now, now
	r.byID[user.ID] = *user
	return nil
}

func (r *Users) GetByID(_ context.Context, id string) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.byID[id]
	if !ok {
		return nil, fmt.Errorf("user with id %s: %w", id, database.ErrNotFound)
	}
	return &u, nil
}

func (r *Users) GetByIDs(_ context.Context, ids []string) ([]models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := []models.User{}
	for _, id := range ids {
		if u, ok := r.byID[id]; ok {
			out = append(out, u)
		}
	}
	return out, nil
}

func (r *Users) findBy(match func(models.User) bool) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.byID {
		if match(u) {
			u := u
			return &u, nil
		}
	}
	return nil, database.ErrNotFound
}

func (r *Users) GetByFirebaseUID(_ context.Context, uid string) (*models.User, error) {
	return r.findBy(func(u models.User) bool { return u.FirebaseUID == uid })
}

func (r *Users) GetByStripeCustomerID(_ context.Context, customerID string) (*models.User, error) {
	return r.findBy(func(u models.User) bool {
		return customerID != "" && u.Subscription.StripeCustomerID == customerID
	})
}

// mutate applies fn to the document form of a user and stores the result.
func (r *Users) mutate(id string, fn func(doc map[string]any)) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.byID[id]
	if !ok {
		return fmt.Errorf("user with id %s: %w", id, database.ErrNotFound)
	}
	doc, err := toDoc(u)
	if err != nil {
		return err
	}
	fn(doc)
	var updated models.User
	if err := fromDoc(doc, &updated); err != nil {
		return err
	}
	updated.UpdatedAt = time.Now()
	r.byID[id] = updated
	return nil
}

func (r *Users) UpdateFields(_ context.Context, id string, fields map[string]any) error {
	return r.mutate(id, func(doc map[string]any) {
		for k, v := range fields {
			setPath(doc, k, v)
		}
	})
}

func (r *Users) AddToSet(_ context.Context, id, field string, value any) error {
	return r.mutate(id, func(doc map[string]any) {
		arr := asSlice(getPath(doc, field))
		for _, v := range arr {
			if reflect.DeepEqual(v, value) {
				return
			}
		}
		setPath(doc, field, append(arr, value))
	})
}

func (r *Users) PullFromArray(_ context.Context, id, field string, value any) error {
	drop := asSlice(value)
	if drop == nil {
		drop = []any{value}
	}
	return r.mutate(id, func(doc map[string]any) {
		kept := []any{}
	outer:
		for _, v := range asSlice(getPath(doc, field)) {
			for _, d := range drop {
				if reflect.DeepEqual(v, d) {
					continue outer
				}
			}
			kept = append(kept, v)
		}
		setPath(doc, field, kept)
	})
}

func (r *Users) UpsertDevice(_ context.Context, id string, device models.Device) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.byID[id]
	if !ok {
		return fmt.Errorf("user with id %s: %w", id, database.ErrNotFound)
	}
	devices := make([]models.Device, 0, len(u.Devices)+1)
	for _, d := range u.Devices {
		if d.DeviceID != device.DeviceID {
			devices = append(devices, d)
		}
	}
	u.Devices = append(devices, device)
	u.UpdatedAt = time.Now()
	r.byID[id] = u
	return nil
}

func (r *Users) RemoveDevices(_ context.Context, id string, deviceIDs []string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.byID[id]
	if !ok {
		return fmt.Errorf("user with id %s: %w", id, database.ErrNotFound)
	}
	devices := []models.Device{}
	for _, d := range u.Devices {
		if !contains(deviceIDs, d.DeviceID) {
			devices = append(devices, d)
		}
	}
	u.Devices = devices
	u.UpdatedAt = time.Now()
	r.byID[id] = u
	return nil
}

func (r *Users) Increment(_ context.Context, id, field string, delta int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.byID[id]
	if !ok {
		return fmt.Errorf("user with id %s: %w", id, database.ErrNotFound)
	}
	switch field {
	case "completedSwaps":
		u.CompletedSwaps += delta
	case "ratingCount":
		u.RatingCount += delta
	default:
		return fmt.Errorf("memrepo: unsupported increment field %q", field)
	}
	r.byID[id] = u
	return nil
}

func (r *Users) AddRating(_ context.Context, id string, rating int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.byID[id]
	if !ok {
		return fmt.Errorf("user with id %s: %w", id, database.ErrNotFound)
	}
	u.Rating = (u.Rating*float64(u.RatingCount) + float64(rating)) / float64(u.RatingCount+1)
	u.RatingCount++
	r.byID[id] = u
	return nil
}

func (r *Users) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byID[id]; !ok {
		return fmt.Errorf("user with id %s: %w", id, database.ErrNotFound)
	}
	delete(r.byID, id)
	return nil
}

func (r *Users) Search(_ context.Context, c userRepo.UserSearchCriteria, page models.Page) ([]models.User, error) {
	r.mu.Lock()
	var out []models.User
	for _, u := range r.byID {
		if u.Suspended || u.ID == c.ExcludeID {
			continue
		}
		if c.Skill != "" && !contains(u.SkillsOffered, c.Skill) {
			continue
		}
		if c.Query != "" && !strings.Contains(strings.ToLower(u.DisplayName), strings.ToLower(c.Query)) {
			continue
		}
		out = append(out, u)
	}
	r.mu.Unlock()

	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Rating != out[j].Rating {
			return out[i].Rating > out[j].Rating
		}
		return out[i].CompletedSwaps > out[j].CompletedSwaps
	})
	p := page.Normalize()
	return paginate(out, p.Skip(), p.Limit), nil
}

func (r *Users) List(_ context.Context, page models.Page) ([]models.User, int64, error) {
	r.mu.Lock()
	out := make([]models.User, 0, len(r.byID))
	for _, u := range r.byID {
		out = append(out, u)
	}
	r.mu.Unlock()

	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	p := page.Normalize()
	return paginate(out, p.Skip(), p.Limit), int64(len(out)), nil
}

func (r *Users) Count(_ context.Context, f userRepo.UserCountFilter) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for _, u := range r.byID {
		if f.PremiumOnly {
			s := u.Subscription
			if s.Plan != models.PlanPremium || !(s.Status == "active" || s.Status == "trialing" || s.Status == "past_due") {
				continue
			}
		}
		if f.VerifiedOnly && !u.Verified {
			continue
		}
		n++
	}
	return n, nil
}
