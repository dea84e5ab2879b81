package marketplace

import (
	"context"

	"servswap/models"
	"servswap/services/apperr"
	"servswap/services/storage"
	"servswap/utils"

	"go.uber.org/zap"
)

func (s *DefaultMarketplaceService) UploadServiceImage(ctx context.Context, ownerID, serviceID, localPath string) (*models.Service, error) {
	svc, err := s.loadOwned(ctx, ownerID, serviceID)
	if err != nil {
		return nil, err
	}
	if len(svc.ImageURLs) >= MaxImages {
		return nil, apperr.Invalid("a listing can have at most %d images", MaxImages)
	}
	if s.Storage == nil {
		return nil, apperr.Internal("image storage is not configured", nil)
	}

	url, err := s.Storage.UploadImage(ctx, localPath, "services/"+serviceID, storage.ServiceTransform)
	if err != nil {
		return nil, apperr.Internal("failed to upload image", err)
	}
	if err := s.Services.AddImage(ctx, serviceID, url); err != nil {
		return nil, apperr.Internal("failed to save image", err)
	}
	return s.load(ctx, serviceID)
}

// deleteImages removes stored listing images. Failures only leave orphaned files
// behind, so they are logged.
func (s *DefaultMarketplaceService) deleteImages(ctx context.Context, urls []string) {
	if s.Storage == nil {
		return
	}
	for _, u := range urls {
		if err := s.Storage.DeleteFile(ctx, u); err != nil {
			utils.GetLogger().Warn("failed to delete listing image", zap.String("url", u), zap.Error(err))
		}
	}
}
