package userRepo

import (
	"context"

	"servswap/models"
)

// UserRepository defines methods for user data access.
type UserRepository interface {
	// Create inserts a new user record.
	Create(ctx context.Context, user *models.User) error
	// GetByID retrieves a user by its unique ID.
	GetByID(ctx context.Context, id string) (*models.User, error)
	// GetByIDs retrieves every user whose ID is in ids. Missing IDs are skipped.
	GetByIDs(ctx context.Context, ids []string) ([]models.User, error)
	// GetByFirebaseUID retrieves a user by the Firebase Auth UID.
	GetByFirebaseUID(ctx context.Context, uid string) (*models.User, error)
	// GetByStripeCustomerID retrieves a user by the Stripe customer ID.
	GetByStripeCustomerID(ctx context.Context, customerID string) (*models.User, error)
	// UpdateFields applies a partial $set on the user document.
	UpdateFields(ctx context.Context, id string, fields map[string]any) error
	// AddToSet adds value to an array field if absent.
	AddToSet(ctx context.Context, id, field string, value any) error
	// PullFromArray removes value from an array field.
	PullFromArray(ctx context.Context, id, field string, value any) error
	// UpsertDevice replaces the session for device.DeviceID, or appends it, in one
	// document update so concurrent sign-ins never drop each other's devices.
	UpsertDevice(ctx context.Context, id string, device models.Device) error
	// RemoveDevices drops the sessions of deviceIDs and leaves the rest untouched.
	RemoveDevices(ctx context.Context, id string, deviceIDs []string) error
	// Increment adds delta to a numeric field.
	Increment(ctx context.Context, id, field string, delta int) error
	// AddRating folds a new rating into the running average.
	AddRating(ctx context.Context, id string, rating int) error
	// Delete removes a user record by its ID.
	Delete(ctx context.Context, id string) error
	// Search finds non-suspended users offering skill and/or matching query by name.
	Search(ctx context.Context, criteria UserSearchCriteria, page models.Page) ([]models.User, error)
	// List returns users ordered by creation date, newest first.
	List(ctx context.Context, page models.Page) ([]models.User, int64, error)
	// Count returns the number of users matching the stats filter.
	Count(ctx context.Context, filter UserCountFilter) (int64, error)
}

// UserSearchCriteria holds parameters for a user search.
type UserSearchCriteria struct {
	Skill     string // Exact skill in skillsOffered.
	Query     string // Partial display name, case-insensitive.
	ExcludeID string
}

// UserCountFilter selects users for admin statistics.
type UserCountFilter struct {
	PremiumOnly  bool
	VerifiedOnly bool
}
