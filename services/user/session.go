package user

import (
	"context"
	"errors"
	"strings"
	"time"

	"servswap/config"
	"servswap/database"
	"servswap/models"
	"servswap/services/apperr"
	"servswap/utils"

	"firebase.google.com/go/v4/auth"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

func (s *DefaultUserService) tokenTTL() time.Duration {
	if s.TokenTTL > 0 {
		return s.TokenTTL
	}
	if h := config.AppConfig.JWTTTLHours; h > 0 {
		return time.Duration(h) * time.Hour
	}
	return 24 * time.Hour
}

func claimString(tok *auth.Token, key string) string {
	v, _ := tok.Claims[key].(string)
	return v
}

// newUserFromToken builds a fresh member from verified Firebase claims.
func newUserFromToken(tok *auth.Token) *models.User {
	email := claimString(tok, "email")
	name := strings.TrimSpace(claimString(tok, "name"))
	if name == "" {
		name = strings.Split(email, "@")[0]
	}
	if name == "" {
		name = "Member"
	}
	if len([]rune(name)) > maxDisplayName {
		name = string([]rune(name)[:maxDisplayName])
	}
	return &models.User{
		ID:                uuid.New().String(),
		FirebaseUID:       tok.UID,
		Email:             email,
		DisplayName:       name,
		AvatarURL:         claimString(tok, "picture"),
		SkillsOffered:     []string{},
		SkillsWanted:      []string{},
		Subscription:      models.Subscription{Plan: models.PlanFree},
		Devices:           []models.Device{},
		FCMTokens:         []string{},
		NotificationPrefs: models.NotificationPrefs{Push: true, Email: true},
	}
}

// ExchangeSession trades a verified Firebase ID token for an app session bound to device.
func (s *DefaultUserService) ExchangeSession(ctx context.Context, idToken string, device models.Device) (*models.AuthResponse, error) {
	logger := utils.GetLogger()

	if device.DeviceID == "" {
		return nil, apperr.Invalid("device id is required")
	}
	tok, err := s.Verifier.VerifyIDToken(ctx, idToken)
	if err != nil {
		logger.Info("firebase token rejected", zap.Error(err))
		return nil, apperr.Unauthorized("invalid identity token")
	}

	u, err := s.Repo.GetByFirebaseUID(ctx, tok.UID)
	switch {
	case errors.Is(err, database.ErrNotFound):
		u = newUserFromToken(tok)
		if err := s.Repo.Create(ctx, u); err != nil {
			return nil, apperr.Internal("failed to create account", err)
		}
		logger.Info("member created", zap.String("userID", u.ID))
	case err != nil:
		return nil, apperr.Internal("failed to load account", err)
	}

	if u.Suspended {
		return nil, apperr.Forbidden("account is suspended")
	}

	token, err := utils.GenerateToken(u.ID, device.DeviceID, s.tokenTTL())
	if err != nil {
		return nil, apperr.Internal("failed to issue session", err)
	}

	device.TokenHash = utils.HashToken(token)
	device.LastLogin = time.Now()
	if err := s.Repo.UpsertDevice(ctx, u.ID, device); err != nil {
		return nil, apperr.Internal("failed to register device", err)
	}
	u.Devices = upsertDevice(u.Devices, device)
	s.clearAuthCache(ctx, u.ID, device.DeviceID)

	return &models.AuthResponse{ID: u.ID, Token: token, User: u}, nil
}

func upsertDevice(devices []models.Device, d models.Device) []models.Device {
	out := make([]models.Device, 0, len(devices)+1)
	for _, existing := range devices {
		if existing.DeviceID != d.DeviceID {
			out = append(out, existing)
		}
	}
	return append(out, d)
}

func (s *DefaultUserService) clearAuthCache(ctx context.Context, userID string, deviceIDs ...string) {
	if s.AuthCache == nil {
		return
	}
	keys := make([]string, 0, len(deviceIDs))
	for _, id := range deviceIDs {
		keys = append(keys, utils.AuthCacheKey(userID, id))
	}
	if len(keys) == 0 {
		return
	}
	if err := s.AuthCache.Del(ctx, keys...).Err(); err != nil {
		utils.GetLogger().Error("Failed to clear auth cache", zap.String("userID", userID), zap.Error(err))
	}
}
