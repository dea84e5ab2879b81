package admin

import (
	"context"
	"errors"

	"servswap/database"
	userRepo "servswap/database/repository/user"
	"servswap/models"
	"servswap/services/apperr"
	"servswap/utils"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

func (s *DefaultAdminService) ListUsers(ctx context.Context, page models.Page) (*models.UserList, error) {
	users, total, err := s.Users.List(ctx, page)
	if err != nil {
		return nil, apperr.Internal("failed to list users", err)
	}
	return &models.UserList{Users: users, Total: total}, nil
}

func (s *DefaultAdminService) setSuspended(ctx context.Context, userID string, suspended bool) error {
	if err := s.Users.UpdateFields(ctx, userID, map[string]any{"suspended": suspended}); err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return apperr.NotFound("user not found")
		}
		return apperr.Internal("failed to update user", err)
	}
	return nil
}

func (s *DefaultAdminService) SuspendUser(ctx context.Context, userID string) error {
	logger := utils.GetLogger()
	if err := s.setSuspended(ctx, userID, true); err != nil {
		return err
	}
	if err := s.Sessions.RevokeAllDevices(ctx, userID); err != nil {
		return err
	}
	if err := s.Services.DeactivateByOwner(ctx, userID); err != nil {
		logger.Error("failed to hide listings of suspended user", zap.String("userID", userID), zap.Error(err))
	}
	logger.Warn("user suspended", zap.String("userID", userID))
	return nil
}

func (s *DefaultAdminService) UnsuspendUser(ctx context.Context, userID string) error {
	if err := s.setSuspended(ctx, userID, false); err != nil {
		return err
	}
	if err := s.Services.ReactivateByOwner(ctx, userID); err != nil {
		return apperr.Internal("failed to restore listings", err)
	}
	utils.GetLogger().Info("user unsuspended", zap.String("userID", userID))
	return nil
}

// Stats gathers the dashboard counters concurrently.
func (s *DefaultAdminService) Stats(ctx context.Context) (*models.AdminStats, error) {
	stats := &models.AdminStats{}
	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() (err error) {
		stats.Users, err = s.Users.Count(gctx, userRepo.UserCountFilter{})
		return err
	})
	g.Go(func() (err error) {
		stats.PremiumUsers, err = s.Users.Count(gctx, userRepo.UserCountFilter{PremiumOnly: true})
		return err
	})
	g.Go(func() (err error) {
		stats.VerifiedUsers, err = s.Users.Count(gctx, userRepo.UserCountFilter{VerifiedOnly: true})
		return err
	})
	g.Go(func() (err error) {
		stats.Services, err = s.Services.Count(gctx)
		return err
	})
	g.Go(func() (err error) {
		stats.Posts, err = s.Posts.CountPosts(gctx)
		return err
	})
	g.Go(func() (err error) {
		stats.Swaps, err = s.Swaps.CountByStatus(gctx)
		return err
	})

	if err := g.Wait(); err != nil {
		return nil, apperr.Internal("failed to gather stats", err)
	}
	return stats, nil
}

func (s *DefaultAdminService) TakeDownService(ctx context.Context, serviceID string) error {
	return s.Listings.TakeDown(ctx, serviceID)
}
