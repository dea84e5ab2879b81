package marketplace

import (
	"context"
	"errors"
	"strings"
	"time"
	"unicode/utf8"

	"servswap/database"
	"servswap/models"
	"servswap/services/apperr"
	"servswap/services/subscription"
	"servswap/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	minTitle       = 3
	maxTitle       = 100
	maxDescription = 2000
	maxTags        = 10
	maxTagLength   = 30
	maxHours       = 100
	MaxImages      = 5
)

func validateTitle(title string) (string, error) {
	title = strings.TrimSpace(title)
	if n := utf8.RuneCountInString(title); n < minTitle || n > maxTitle {
		return "", apperr.Invalid("title must be %d to %d characters", minTitle, maxTitle)
	}
	return title, nil
}

func validateDescription(desc string) (string, error) {
	desc = strings.TrimSpace(desc)
	if utf8.RuneCountInString(desc) > maxDescription {
		return "", apperr.Invalid("description must be at most %d characters", maxDescription)
	}
	return desc, nil
}

func validateCategory(category string) (string, error) {
	category = strings.ToLower(strings.TrimSpace(category))
	if !models.IsValidCategory(category) {
		return "", apperr.Invalid("unknown category %q", category)
	}
	return category, nil
}

func validateHours(h float64) error {
	if h <= 0 || h > maxHours {
		return apperr.Invalid("estimated hours must be greater than 0 and at most %d", maxHours)
	}
	return nil
}

func normalizeTags(in []string) ([]string, error) {
	out := []string{}
	seen := map[string]bool{}
	for _, raw := range in {
		tag := strings.ToLower(strings.TrimSpace(raw))
		if tag == "" || seen[tag] {
			continue
		}
		if utf8.RuneCountInString(tag) > maxTagLength {
			return nil, apperr.Invalid("tag %q is too long", tag)
		}
		seen[tag] = true
		out = append(out, tag)
	}
	if len(out) > maxTags {
		return nil, apperr.Invalid("at most %d tags are allowed", maxTags)
	}
	return out, nil
}

// checkListingAllowance refuses another active listing once a free member is at the limit.
func (s *DefaultMarketplaceService) checkListingAllowance(ctx context.Context, ownerID string) error {
	u, err := s.Users.GetByID(ctx, ownerID)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return apperr.NotFound("user not found")
		}
		return apperr.Internal("failed to load user", err)
	}
	if u.Suspended {
		return apperr.Forbidden("account is suspended")
	}
	if subscription.IsPremium(u, time.Now()) {
		return nil
	}
	active, err := s.Services.CountActiveByOwner(ctx, ownerID)
	if err != nil {
		return apperr.Internal("failed to count listings", err)
	}
	if limit := subscription.FreeActiveListings(); active >= int64(limit) {
		return apperr.LimitReached("free plan allows %d active listings, upgrade to premium for more", limit)
	}
	return nil
}

func (s *DefaultMarketplaceService) CreateService(ctx context.Context, ownerID string, req models.CreateServiceRequest) (*models.Service, error) {
	title, err := validateTitle(req.Title)
	if err != nil {
		return nil, err
	}
	desc, err := validateDescription(req.Description)
	if err != nil {
		return nil, err
	}
	category, err := validateCategory(req.Category)
	if err != nil {
		return nil, err
	}
	tags, err := normalizeTags(req.Tags)
	if err != nil {
		return nil, err
	}
	if err := validateHours(req.EstimatedHours); err != nil {
		return nil, err
	}
	if err := s.checkListingAllowance(ctx, ownerID); err != nil {
		return nil, err
	}

	svc := &models.Service{
		ID:             uuid.New().String(),
		OwnerID:        ownerID,
		Title:          title,
		Description:    desc,
		Category:       category,
		Tags:           tags,
		EstimatedHours: req.EstimatedHours,
		ImageURLs:      []string{},
		Active:         true,
	}
	if err := s.Services.Create(ctx, svc); err != nil {
		return nil, apperr.Internal("failed to create listing", err)
	}
	utils.GetLogger().Info("listing created", zap.String("serviceID", svc.ID), zap.String("ownerID", ownerID))
	return svc, nil
}

func (s *DefaultMarketplaceService) load(ctx context.Context, serviceID string) (*models.Service, error) {
	svc, err := s.Services.GetByID(ctx, serviceID)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return nil, apperr.NotFound("service not found")
		}
		return nil, apperr.Internal("failed to load service", err)
	}
	return svc, nil
}

func (s *DefaultMarketplaceService) loadOwned(ctx context.Context, ownerID, serviceID string) (*models.Service, error) {
	svc, err := s.load(ctx, serviceID)
	if err != nil {
		return nil, err
	}
	if svc.OwnerID != ownerID {
		return nil, apperr.Forbidden("only the owner can change this listing")
	}
	return svc, nil
}

func (s *DefaultMarketplaceService) UpdateService(ctx context.Context, ownerID, serviceID string, req models.UpdateServiceRequest) (*models.Service, error) {
	svc, err := s.loadOwned(ctx, ownerID, serviceID)
	if err != nil {
		return nil, err
	}

	fields := map[string]any{}
	if req.Title != nil {
		title, err := validateTitle(*req.Title)
		if err != nil {
			return nil, err
		}
		fields["title"] = title
	}
	if req.Description != nil {
		desc, err := validateDescription(*req.Description)
		if err != nil {
			return nil, err
		}
		fields["description"] = desc
	}
	if req.Category != nil {
		category, err := validateCategory(*req.Category)
		if err != nil {
			return nil, err
		}
		fields["category"] = category
	}
	if req.Tags != nil {
		tags, err := normalizeTags(req.Tags)
		if err != nil {
			return nil, err
		}
		fields["tags"] = tags
	}
	if req.EstimatedHours != nil {
		if err := validateHours(*req.EstimatedHours); err != nil {
			return nil, err
		}
		fields["estimatedHours"] = *req.EstimatedHours
	}
	if req.Active != nil && *req.Active != svc.Active {
		if *req.Active {
			if err := s.checkListingAllowance(ctx, ownerID); err != nil {
				return nil, err
			}
		}
		fields["active"] = *req.Active
	}

	if len(fields) == 0 {
		return svc, nil
	}
	if err := s.Services.UpdateFields(ctx, serviceID, fields); err != nil {
		return nil, apperr.Internal("failed to update listing", err)
	}
	return s.load(ctx, serviceID)
}

func (s *DefaultMarketplaceService) DeleteService(ctx context.Context, ownerID, serviceID string) error {
	svc, err := s.loadOwned(ctx, ownerID, serviceID)
	if err != nil {
		return err
	}
	busy, err := s.Swaps.HasAcceptedForService(ctx, serviceID)
	if err != nil {
		return apperr.Internal("failed to check swaps", err)
	}
	if busy {
		return apperr.Conflict("this service is part of an accepted swap, finish or cancel it first")
	}
	return s.remove(ctx, svc)
}

func (s *DefaultMarketplaceService) TakeDown(ctx context.Context, serviceID string) error {
	svc, err := s.load(ctx, serviceID)
	if err != nil {
		return err
	}
	if err := s.remove(ctx, svc); err != nil {
		return err
	}
	utils.GetLogger().Warn("listing taken down", zap.String("serviceID", serviceID))
	return nil
}

func (s *DefaultMarketplaceService) remove(ctx context.Context, svc *models.Service) error {
	if err := s.Services.Delete(ctx, svc.ID); err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return apperr.NotFound("service not found")
		}
		return apperr.Internal("failed to delete listing", err)
	}
	s.deleteImages(ctx, svc.ImageURLs)
	return nil
}

// GetService hides inactive listings from everyone but their owner.
func (s *DefaultMarketplaceService) GetService(ctx context.Context, requesterID, serviceID string) (*models.Service, error) {
	svc, err := s.load(ctx, serviceID)
	if err != nil {
		return nil, err
	}
	if !svc.Active && svc.OwnerID != requesterID {
		return nil, apperr.NotFound("service not found")
	}
	return svc, nil
}

func (s *DefaultMarketplaceService) ListServices(ctx context.Context, requesterID string, filter models.ServiceFilter, page models.Page) ([]models.Service, int64, error) {
	if filter.Category != "" {
		category, err := validateCategory(filter.Category)
		if err != nil {
			return nil, 0, err
		}
		filter.Category = category
	}
	filter.Query = strings.TrimSpace(filter.Query)
	filter.ActiveOnly = filter.OwnerID == "" || filter.OwnerID != requesterID

	services, total, err := s.Services.List(ctx, filter, page)
	if err != nil {
		return nil, 0, apperr.Internal("failed to list services", err)
	}
	return services, total, nil
}

// PurgeUser deletes the listings of a member whose account is going away,
// images included.
func (s *DefaultMarketplaceService) PurgeUser(ctx context.Context, userID string) error {
	services, err := s.Services.ListByOwner(ctx, userID)
	if err != nil {
		return apperr.Internal("failed to load listings", err)
	}
	n, err := s.Services.DeleteByOwner(ctx, userID)
	if err != nil {
		return apperr.Internal("failed to delete listings", err)
	}
	for i := range services {
		s.deleteImages(ctx, services[i].ImageURLs)
	}
	utils.GetLogger().Info("listings purged", zap.String("userID", userID), zap.Int64("count", n))
	return nil
}
