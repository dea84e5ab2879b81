package admin

import (
	"context"

	feedRepo "servswap/database/repository/feed"
	serviceRepo "servswap/database/repository/service"
	swapRepo "servswap/database/repository/swap"
	userRepo "servswap/database/repository/user"
	"servswap/models"
)

type AdminService interface {
	ListUsers(ctx context.Context, page models.Page) (*models.UserList, error)
	// SuspendUser blocks the member, signs out every device and hides their listings.
	SuspendUser(ctx context.Context, userID string) error
	// UnsuspendUser lifts the block and restores the listings the suspension hid.
	UnsuspendUser(ctx context.Context, userID string) error
	Stats(ctx context.Context) (*models.AdminStats, error)
	TakeDownService(ctx context.Context, serviceID string) error
	LegalSections() []models.LegalSection
}

// DeviceRevoker ends every session of a member.
type DeviceRevoker interface {
	RevokeAllDevices(ctx context.Context, userID string) error
}

// ServiceRemover deletes a listing on behalf of moderators.
type ServiceRemover interface {
	TakeDown(ctx context.Context, serviceID string) error
}

type DefaultAdminService struct {
	Users    userRepo.UserRepository
	Services serviceRepo.ServiceRepository
	Swaps    swapRepo.SwapRepository
	Posts    feedRepo.FeedRepository
	Sessions DeviceRevoker
	Listings ServiceRemover
}
