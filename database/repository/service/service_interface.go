package serviceRepo

import (
	"context"

	"servswap/models"
)

// ServiceRepository defines data access for marketplace listings.
type ServiceRepository interface {
	Create(ctx context.Context, svc *models.Service) error
	GetByID(ctx context.Context, id string) (*models.Service, error)
	GetByIDs(ctx context.Context, ids []string) ([]models.Service, error)
	UpdateFields(ctx context.Context, id string, fields map[string]any) error
	// AddImage appends an image URL to the listing.
	AddImage(ctx context.Context, id, url string) error
	Delete(ctx context.Context, id string) error
	// List returns one page of listings for the filter together with the total match count.
	List(ctx context.Context, filter models.ServiceFilter, page models.Page) ([]models.Service, int64, error)
	// CountActiveByOwner counts the active listings of one owner.
	CountActiveByOwner(ctx context.Context, ownerID string) (int64, error)
	// FindByTerms returns active listings whose category or tags contain any of terms,
	// excluding the given owner.
	FindByTerms(ctx context.Context, terms []string, excludeOwnerID string, limit int) ([]models.Service, error)
	// DeactivateByOwner hides the owner's active listings and marks them as hidden by suspension.
	DeactivateByOwner(ctx context.Context, ownerID string) error
	// ReactivateByOwner restores the listings hidden by DeactivateByOwner.
	ReactivateByOwner(ctx context.Context, ownerID string) error
	// ListByOwner returns every listing of the owner, active or not.
	ListByOwner(ctx context.Context, ownerID string) ([]models.Service, error)
	// DeleteByOwner removes every listing of the owner and returns how many were deleted.
	DeleteByOwner(ctx context.Context, ownerID string) (int64, error)
	Count(ctx context.Context) (int64, error)
}
