package swap

import (
	"context"
	"sort"

	"servswap/models"
	"servswap/services/apperr"
	"servswap/services/subscription"
	"servswap/services/user"
)

const (
	DefaultMatchLimit = 10
	MaxMatchLimit     = 50
	// candidatePool bounds how many listings are scored per request.
	candidatePool = 200
)

func toSet(items []string) map[string]bool {
	set := make(map[string]bool, len(items))
	for _, it := range items {
		set[it] = true
	}
	return set
}

// overlap counts the distinct terms of want found in the service's category or tags.
func overlap(want map[string]bool, svc models.Service) int {
	seen := map[string]bool{}
	for _, term := range append([]string{svc.Category}, svc.Tags...) {
		if want[term] && !seen[term] {
			seen[term] = true
		}
	}
	return len(seen)
}

func mutual(offered map[string]bool, owner *models.User) bool {
	for _, w := range owner.SkillsWanted {
		if offered[w] {
			return true
		}
	}
	return false
}

// ScoreMatches ranks candidate services for u. Each overlapping wanted term
// scores 1 and an owner who wants one of u's offered skills adds 2. Ties go
// to the better-rated owner, then the newer listing. Services of owners not in
// owners are dropped.
func ScoreMatches(u *models.User, candidates []models.Service, owners map[string]*models.User) []models.SwapMatch {
	want := toSet(u.SkillsWanted)
	offered := toSet(u.SkillsOffered)

	matches := []models.SwapMatch{}
	for _, svc := range candidates {
		owner, ok := owners[svc.OwnerID]
		if !ok || owner.ID == u.ID || owner.Suspended || !svc.Active {
			continue
		}
		score := overlap(want, svc)
		if score == 0 {
			continue
		}
		m := models.SwapMatch{Service: svc, Owner: user.Public(owner)}
		if mutual(offered, owner) {
			m.Mutual = true
			score += 2
		}
		m.Score = score
		matches = append(matches, m)
	}

	sort.SliceStable(matches, func(i, j int) bool {
		a, b := matches[i], matches[j]
		if a.Score != b.Score {
			return a.Score > b.Score
		}
		if a.Owner.Rating != b.Owner.Rating {
			return a.Owner.Rating > b.Owner.Rating
		}
		return a.Service.CreatedAt.After(b.Service.CreatedAt)
	})
	return matches
}

func (s *DefaultSwapService) Matches(ctx context.Context, userID string, limit int) ([]models.SwapMatch, error) {
	u, err := s.loadUser(ctx, userID)
	if err != nil {
		return nil, err
	}
	if len(u.SkillsWanted) == 0 {
		return []models.SwapMatch{}, nil
	}

	if limit <= 0 {
		limit = DefaultMatchLimit
	}
	if limit > MaxMatchLimit {
		limit = MaxMatchLimit
	}
	if !subscription.IsPremium(u, s.now()) && limit > subscription.FreeMatchLimit {
		limit = subscription.FreeMatchLimit
	}

	candidates, err := s.Services.FindByTerms(ctx, u.SkillsWanted, userID, candidatePool)
	if err != nil {
		return nil, apperr.Internal("failed to find matching services", err)
	}

	ownerIDs := []string{}
	seen := map[string]bool{}
	for _, svc := range candidates {
		if !seen[svc.OwnerID] {
			seen[svc.OwnerID] = true
			ownerIDs = append(ownerIDs, svc.OwnerID)
		}
	}
	users, err := s.Users.GetByIDs(ctx, ownerIDs)
	if err != nil {
		return nil, apperr.Internal("failed to load service owners", err)
	}
	owners := make(map[string]*models.User, len(users))
	for i := range users {
		owners[users[i].ID] = &users[i]
	}

	matches := ScoreMatches(u, candidates, owners)
	if len(matches) > limit {
		matches = matches[:limit]
	}
	return matches, nil
}
