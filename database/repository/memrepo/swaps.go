package memrepo

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"servswap/database"
	swapRepo "servswap/database/repository/swap"
	"servswap/models"
)

type Swaps struct {
	mu      sync.Mutex
	byID    map[string]models.Swap
	reviews []models.Review
	// FailNextReview is returned once by the next CreateReview call.
	FailNextReview error
}

var _ swapRepo.SwapRepository = (*Swaps)(nil)

func NewSwaps(seed ...models.Swap) *Swaps {
	r := &Swaps{byID: map[string]models.Swap{}}
	for _, s := range seed {
		r.byID[s.ID] = s
	}
	return r
}

func (r *Swaps) Create(_ context.Context, swap *models.Swap) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if swap.CreatedAt.IsZero() {
		swap.CreatedAt = time.Now()
	}
	swap.UpdatedAt = swap.CreatedAt
	if swap.ReviewedBy == nil {
		swap.ReviewedBy = []string{}
	}
	r.byID[swap.ID] = *swap
	return nil
}

func (r *Swaps) GetByID(_ context.Context, id string) (*models.Swap, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.byID[id]
	if !ok {
		return nil, fmt.Errorf("swap %s: %w", id, database.ErrNotFound)
	}
	return &s, nil
}

func (r *Swaps) Transition(_ context.Context, id string, from, to models.SwapStatus, fields map[string]any) (*models.Swap, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.byID[id]
	if !ok || s.Status != from {
		return nil, database.ErrConflict
	}
	s.Status = to
	s.UpdatedAt = time.Now()
	if t, ok := fields["respondedAt"].(time.Time); ok {
		s.RespondedAt = &t
	}
	if t, ok := fields["completedAt"].(time.Time); ok {
		s.CompletedAt = &t
	}
	r.byID[id] = s
	return &s, nil
}

func (r *Swaps) MarkParticipantComplete(_ context.Context, id string, proposer bool) (*models.Swap, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.byID[id]
	if !ok || s.Status != models.SwapAccepted {
		return nil, database.ErrConflict
	}
	if proposer {
		s.ProposerCompleted = true
	} else {
		s.RecipientCompleted = true
	}
	r.byID[id] = s
	return &s, nil
}

func (r *Swaps) AddReviewer(_ context.Context, id, reviewerID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.byID[id]
	if !ok || s.Status != models.SwapCompleted || contains(s.ReviewedBy, reviewerID) {
		return database.ErrConflict
	}
	s.ReviewedBy = append(s.ReviewedBy, reviewerID)
	r.byID[id] = s
	return nil
}

func (r *Swaps) CancelOpenForUser(_ context.Context, userID string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for id, s := range r.byID {
		if s.IsParticipant(userID) && (s.Status == models.SwapPending || s.Status == models.SwapAccepted) {
			s.Status = models.SwapCancelled
			r.byID[id] = s
			n++
		}
	}
	return n, nil
}

func (r *Swaps) filter(match func(models.Swap) bool) []models.Swap {
	r.mu.Lock()
	out := []models.Swap{}
	for _, s := range r.byID {
		if match(s) {
			out = append(out, s)
		}
	}
	r.mu.Unlock()
	sort.SliceStable(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out
}

func (r *Swaps) CountByProposerSince(_ context.Context, proposerID string, since time.Time) (int64, error) {
	return int64(len(r.filter(func(s models.Swap) bool {
		return s.ProposerID == proposerID && !s.CreatedAt.Before(since)
	}))), nil
}

func open(s models.Swap) bool {
	return s.Status == models.SwapPending || s.Status == models.SwapAccepted
}

func (r *Swaps) FindOpenForPair(_ context.Context, offered, requested string) (*models.Swap, error) {
	found := r.filter(func(s models.Swap) bool {
		return s.OfferedServiceID == offered && s.RequestedServiceID == requested && open(s)
	})
	if len(found) == 0 {
		return nil, database.ErrNotFound
	}
	return &found[0], nil
}

func (r *Swaps) HasAcceptedForService(_ context.Context, serviceID string) (bool, error) {
	return len(r.filter(func(s models.Swap) bool {
		return s.Status == models.SwapAccepted && (s.OfferedServiceID == serviceID || s.RequestedServiceID == serviceID)
	})) > 0, nil
}

func (r *Swaps) HasSharedSwap(_ context.Context, a, b string) (bool, error) {
	return len(r.filter(func(s models.Swap) bool {
		return s.IsParticipant(a) && s.IsParticipant(b) && a != b &&
			(open(s) || s.Status == models.SwapCompleted)
	})) > 0, nil
}

func (r *Swaps) ListForUser(_ context.Context, userID string, f models.SwapListFilter, page models.Page) ([]models.Swap, error) {
	out := r.filter(func(s models.Swap) bool {
		switch f.Role {
		case "sent":
			if s.ProposerID != userID {
				return false
			}
		case "received":
			if s.RecipientID != userID {
				return false
			}
		default:
			if !s.IsParticipant(userID) {
				return false
			}
		}
		return f.Status == "" || s.Status == f.Status
	})
	p := page.Normalize()
	return paginate(out, p.Skip(), p.Limit), nil
}

func (r *Swaps) CountByStatus(_ context.Context) (map[string]int64, error) {
	counts := map[string]int64{}
	for _, s := range r.filter(func(models.Swap) bool { return true }) {
		counts[string(s.Status)]++
	}
	return counts, nil
}

func (r *Swaps) CreateReview(_ context.Context, review *models.Review) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if err := r.FailNextReview; err != nil {
		r.FailNextReview = nil
		return err
	}
	for _, existing := range r.reviews {
		if existing.SwapID == review.SwapID && existing.ReviewerID == review.ReviewerID {
			return database.ErrConflict
		}
	}
	review.CreatedAt = time.Now()
	r.reviews = append(r.reviews, *review)
	return nil
}

func (r *Swaps) ListReviewsFor(_ context.Context, revieweeID string, page models.Page) ([]models.Review, error) {
	r.mu.Lock()
	out := []models.Review{}
	for i := len(r.reviews) - 1; i >= 0; i-- {
		if r.reviews[i].RevieweeID == revieweeID {
			out = append(out, r.reviews[i])
		}
	}
	r.mu.Unlock()
	p := page.Normalize()
	return paginate(out, p.Skip(), p.Limit), nil
}
