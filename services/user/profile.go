package user

import (
	"context"
	"errors"
	"strings"
	"unicode/utf8"

	"servswap/database"
	userRepo "servswap/database/repository/user"
	"servswap/models"
	"servswap/services/apperr"
	"servswap/services/storage"
	"servswap/utils"

	"go.uber.org/zap"
)

const (
	maxDisplayName = 60
	maxBio         = 500
	maxLocation    = 100
	maxSkills      = 20
	maxSkillLength = 40
)

func (s *DefaultUserService) load(ctx context.Context, userID string) (*models.User, error) {
	u, err := s.Repo.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return nil, apperr.NotFound("user not found")
		}
		return nil, apperr.Internal("failed to load user", err)
	}
	return u, nil
}

func (s *DefaultUserService) GetProfile(ctx context.Context, userID string) (*models.User, error) {
	return s.load(ctx, userID)
}

func (s *DefaultUserService) GetPublicProfile(ctx context.Context, userID string) (*models.PublicProfile, error) {
	u, err := s.load(ctx, userID)
	if err != nil {
		return nil, err
	}
	if u.Suspended {
		return nil, apperr.NotFound("user not found")
	}
	p := Public(u)
	return &p, nil
}

// NormalizeSkills trims, lowercases and dedupes a skill list, keeping first-seen order.
func NormalizeSkills(in []string) ([]string, error) {
	out := []string{}
	seen := map[string]bool{}
	for _, raw := range in {
		skill := strings.ToLower(strings.TrimSpace(raw))
		if skill == "" || seen[skill] {
			continue
		}
		if utf8.RuneCountInString(skill) > maxSkillLength {
			return nil, apperr.Invalid("skill %q is longer than %d characters", skill, maxSkillLength)
		}
		seen[skill] = true
		out = append(out, skill)
	}
	if len(out) > maxSkills {
		return nil, apperr.Invalid("at most %d skills are allowed", maxSkills)
	}
	return out, nil
}

func (s *DefaultUserService) UpdateProfile(ctx context.Context, userID string, req models.UserUpdateRequest) (*models.User, error) {
	fields := map[string]any{}

	if req.DisplayName != nil {
		name := strings.TrimSpace(*req.DisplayName)
		if n := utf8.RuneCountInString(name); n < 1 || n > maxDisplayName {
			return nil, apperr.Invalid("display name must be 1 to %d characters", maxDisplayName)
		}
		fields["displayName"] = name
	}
	if req.Bio != nil {
		bio := strings.TrimSpace(*req.Bio)
		if utf8.RuneCountInString(bio) > maxBio {
			return nil, apperr.Invalid("bio must be at most %d characters", maxBio)
		}
		fields["bio"] = bio
	}
	if req.Location != nil {
		loc := strings.TrimSpace(*req.Location)
		if utf8.RuneCountInString(loc) > maxLocation {
			return nil, apperr.Invalid("location must be at most %d characters", maxLocation)
		}
		fields["location"] = loc
	}
	if req.SkillsOffered != nil {
		skills, err := NormalizeSkills(req.SkillsOffered)
		if err != nil {
			return nil, err
		}
		fields["skillsOffered"] = skills
	}
	if req.SkillsWanted != nil {
		skills, err := NormalizeSkills(req.SkillsWanted)
		if err != nil {
			return nil, err
		}
		fields["skillsWanted"] = skills
	}
	if req.NotificationPrefs != nil {
		fields["notificationPrefs"] = *req.NotificationPrefs
	}

	if len(fields) > 0 {
		if err := s.Repo.UpdateFields(ctx, userID, fields); err != nil {
			if errors.Is(err, database.ErrNotFound) {
				return nil, apperr.NotFound("user not found")
			}
			return nil, apperr.Internal("failed to update profile", err)
		}
	}
	return s.load(ctx, userID)
}

func (s *DefaultUserService) UploadAvatar(ctx context.Context, userID, localPath string) (*models.User, error) {
	if s.Storage == nil {
		return nil, apperr.Internal("image storage is not configured", nil)
	}
	u, err := s.load(ctx, userID)
	if err != nil {
		return nil, err
	}
	url, err := s.Storage.UploadImage(ctx, localPath, "avatars/"+userID, storage.AvatarTransform)
	if err != nil {
		return nil, apperr.Internal("failed to upload avatar", err)
	}
	if err := s.Repo.UpdateFields(ctx, userID, map[string]any{"avatarUrl": url}); err != nil {
		return nil, apperr.Internal("failed to save avatar", err)
	}
	if u.AvatarURL != "" && u.AvatarURL != url {
		s.deleteAvatar(ctx, u.AvatarURL)
	}
	return s.load(ctx, userID)
}

// deleteAvatar drops a replaced or orphaned avatar. Failures are only logged.
func (s *DefaultUserService) deleteAvatar(ctx context.Context, fileURL string) {
	if s.Storage == nil || fileURL == "" {
		return
	}
	if err := s.Storage.DeleteFile(ctx, fileURL); err != nil {
		utils.GetLogger().Warn("failed to delete avatar", zap.String("url", fileURL), zap.Error(err))
	}
}

func (s *DefaultUserService) SearchUsers(ctx context.Context, requesterID, skill, query string, page models.Page) ([]models.PublicProfile, error) {
	criteria := userRepo.UserSearchCriteria{
		Skill:     strings.ToLower(strings.TrimSpace(skill)),
		Query:     strings.TrimSpace(query),
		ExcludeID: requesterID,
	}
	if criteria.Skill == "" && criteria.Query == "" {
		return nil, apperr.Invalid("provide a skill or a name to search for")
	}
	users, err := s.Repo.Search(ctx, criteria, page)
	if err != nil {
		return nil, apperr.Internal("search failed", err)
	}
	out := make([]models.PublicProfile, 0, len(users))
	for i := range users {
		out = append(out, Public(&users[i]))
	}
	return out, nil
}

func (s *DefaultUserService) RegisterFCMToken(ctx context.Context, userID, token string) error {
	token = strings.TrimSpace(token)
	if token == "" {
		return apperr.Invalid("token is required")
	}
	if err := s.Repo.AddToSet(ctx, userID, "fcmTokens", token); err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return apperr.NotFound("user not found")
		}
		return apperr.Internal("failed to register push token", err)
	}
	return nil
}

// DeleteAccount cancels billing, purges the member's data and removes the user.
func (s *DefaultUserService) DeleteAccount(ctx context.Context, userID string) error {
	logger := utils.GetLogger()
	u, err := s.load(ctx, userID)
	if err != nil {
		return err
	}

	if s.Billing != nil {
		if err := s.Billing.CancelAll(ctx, u); err != nil {
			return err
		}
	}
	for _, c := range s.Cleaners {
		if err := c.PurgeUser(ctx, userID); err != nil {
			logger.Error("account purge step failed", zap.String("userID", userID), zap.Error(err))
		}
	}
	if err := s.Repo.Delete(ctx, userID); err != nil {
		return apperr.Internal("failed to delete account", err)
	}
	s.deleteAvatar(ctx, u.AvatarURL)

	deviceIDs := make([]string, 0, len(u.Devices))
	for _, d := range u.Devices {
		deviceIDs = append(deviceIDs, d.DeviceID)
	}
	s.clearAuthCache(ctx, userID, deviceIDs...)
	logger.Info("account deleted", zap.String("userID", userID))
	return nil
}
