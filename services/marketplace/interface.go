package marketplace

import (
	"context"

	serviceRepo "servswap/database/repository/service"
	swapRepo "servswap/database/repository/swap"
	userRepo "servswap/database/repository/user"
	"servswap/models"
	"servswap/services/storage"
)

type MarketplaceService interface {
	CreateService(ctx context.Context, ownerID string, req models.CreateServiceRequest) (*models.Service, error)
	// UpdateService applies a partial update; only the owner may edit a listing.
	UpdateService(ctx context.Context, ownerID, serviceID string, req models.UpdateServiceRequest) (*models.Service, error)
	DeleteService(ctx context.Context, ownerID, serviceID string) error
	GetService(ctx context.Context, requesterID, serviceID string) (*models.Service, error)
	ListServices(ctx context.Context, requesterID string, filter models.ServiceFilter, page models.Page) ([]models.Service, int64, error)
	UploadServiceImage(ctx context.Context, ownerID, serviceID, localPath string) (*models.Service, error)
	// TakeDown removes a listing regardless of owner. Admin only.
	TakeDown(ctx context.Context, serviceID string) error
	PurgeUser(ctx context.Context, userID string) error
}

type DefaultMarketplaceService struct {
	Services serviceRepo.ServiceRepository
	Swaps    swapRepo.SwapRepository
	Users    userRepo.UserRepository
	Storage  storage.StorageService
}
