package user

import (
	"context"

	"servswap/models"
	"servswap/services/apperr"
)

func (s *DefaultUserService) GetDevices(ctx context.Context, userID string) ([]models.Device, error) {
	u, err := s.load(ctx, userID)
	if err != nil {
		return nil, err
	}
	devices := make([]models.Device, len(u.Devices))
	for i, d := range u.Devices {
		d.TokenHash = ""
		devices[i] = d
	}
	return devices, nil
}

// keepDevices removes the devices for which keep is false and drops their
// auth cache entries. Devices registered meanwhile are left alone.
func (s *DefaultUserService) keepDevices(ctx context.Context, userID string, keep func(models.Device) bool) error {
	u, err := s.load(ctx, userID)
	if err != nil {
		return err
	}
	var dropped []string
	for _, d := range u.Devices {
		if !keep(d) {
			dropped = append(dropped, d.DeviceID)
		}
	}
	if len(dropped) == 0 {
		return nil
	}
	if err := s.Repo.RemoveDevices(ctx, userID, dropped); err != nil {
		return apperr.Internal("failed to update devices", err)
	}
	s.clearAuthCache(ctx, userID, dropped...)
	return nil
}

func (s *DefaultUserService) Logout(ctx context.Context, userID, deviceID string) error {
	return s.keepDevices(ctx, userID, func(d models.Device) bool { return d.DeviceID != deviceID })
}

func (s *DefaultUserService) SignOutOtherDevices(ctx context.Context, userID, currentDeviceID string) error {
	return s.keepDevices(ctx, userID, func(d models.Device) bool { return d.DeviceID == currentDeviceID })
}

func (s *DefaultUserService) RevokeAllDevices(ctx context.Context, userID string) error {
	return s.keepDevices(ctx, userID, func(models.Device) bool { return false })
}
