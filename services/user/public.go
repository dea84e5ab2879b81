package user

import (
	"time"

	"servswap/models"
	"servswap/services/subscription"
)

// Public converts a member into the profile other members may see.
func Public(u *models.User) models.PublicProfile {
	return models.PublicProfile{
		ID:             u.ID,
		DisplayName:    u.DisplayName,
		Bio:            u.Bio,
		Location:       u.Location,
		AvatarURL:      u.AvatarURL,
		SkillsOffered:  nonNil(u.SkillsOffered),
		SkillsWanted:   nonNil(u.SkillsWanted),
		Rating:         u.Rating,
		RatingCount:    u.RatingCount,
		CompletedSwaps: u.CompletedSwaps,
		Verified:       u.Verified,
		Premium:        subscription.IsPremium(u, time.Now()),
		CreatedAt:      u.CreatedAt,
	}
}

// PublicByID indexes profiles of users by id.
func PublicByID(users []models.User) map[string]models.PublicProfile {
	out := make(map[string]models.PublicProfile, len(users))
	for i := range users {
		out[users[i].ID] = Public(&users[i])
	}
	return out
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
