package user

import (
	"context"
	"time"

	userRepo "servswap/database/repository/user"
	"servswap/models"
	"servswap/services/storage"

	"firebase.google.com/go/v4/auth"
	"github.com/go-redis/redis/v8"
)

type UserService interface {
	// Sessions
	ExchangeSession(ctx context.Context, idToken string, device models.Device) (*models.AuthResponse, error)
	Logout(ctx context.Context, userID, deviceID string) error
	GetDevices(ctx context.Context, userID string) ([]models.Device, error)
	SignOutOtherDevices(ctx context.Context, userID, currentDeviceID string) error
	// RevokeAllDevices drops every session of the member.
	RevokeAllDevices(ctx context.Context, userID string) error

	// Profiles
	GetProfile(ctx context.Context, userID string) (*models.User, error)
	GetPublicProfile(ctx context.Context, userID string) (*models.PublicProfile, error)
	UpdateProfile(ctx context.Context, userID string, req models.UserUpdateRequest) (*models.User, error)
	UploadAvatar(ctx context.Context, userID, localPath string) (*models.User, error)
	SearchUsers(ctx context.Context, requesterID, skill, query string, page models.Page) ([]models.PublicProfile, error)
	RegisterFCMToken(ctx context.Context, userID, token string) error
	DeleteAccount(ctx context.Context, userID string) error
}

// TokenVerifier is satisfied by *auth.Client.
type TokenVerifier interface {
	VerifyIDToken(ctx context.Context, idToken string) (*auth.Token, error)
}

// BillingCanceller ends paid subscriptions when an account goes away.
type BillingCanceller interface {
	CancelAll(ctx context.Context, u *models.User) error
}

// AccountCleaner removes a member's data held outside the users collection.
type AccountCleaner interface {
	PurgeUser(ctx context.Context, userID string) error
}

// DefaultUserService is the production implementation.
type DefaultUserService struct {
	Repo     userRepo.UserRepository
	Verifier TokenVerifier
	Storage  storage.StorageService
	Billing  BillingCanceller
	Cleaners []AccountCleaner
	// AuthCache is the token-hash cache the auth middleware reads; nil disables invalidation.
	AuthCache *redis.Client
	TokenTTL  time.Duration
}
