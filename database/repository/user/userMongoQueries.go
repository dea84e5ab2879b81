// File: database/repository/user/userMongoQueries.go
package userRepo

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"time"

	"servswap/database"
	"servswap/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

func (r *MongoUserRepo) findOne(ctx context.Context, filter bson.M, what string) (*models.User, error) {
	ctx, cancel := withTimeout(ctx, 5*time.Second)
	defer cancel()

	var user models.User
	if err := r.coll.FindOne(ctx, filter).Decode(&user); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("user with %s: %w", what, database.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to fetch user with %s: %w", what, err)
	}

	if user.Devices == nil {
		user.Devices = []models.Device{}
	}
	return &user, nil
}

// GetByID retrieves a user by its unique ID.
func (r *MongoUserRepo) GetByID(ctx context.Context, id string) (*models.User, error) {
	return r.findOne(ctx, bson.M{"id": id}, "id "+id)
}

// GetByFirebaseUID retrieves a user by its Firebase Auth UID.
func (r *MongoUserRepo) GetByFirebaseUID(ctx context.Context, uid string) (*models.User, error) {
	return r.findOne(ctx, bson.M{"firebaseUid": uid}, "firebase uid "+uid)
}

// GetByStripeCustomerID retrieves a user by its Stripe customer ID.
func (r *MongoUserRepo) GetByStripeCustomerID(ctx context.Context, customerID string) (*models.User, error) {
	return r.findOne(ctx, bson.M{"subscription.stripeCustomerId": customerID}, "stripe customer "+customerID)
}

func (r *MongoUserRepo) GetByIDs(ctx context.Context, ids []string) ([]models.User, error) {
	if len(ids) == 0 {
		return []models.User{}, nil
	}
	return r.find(ctx, bson.M{"id": bson.M{"$in": ids}}, options.Find())
}

func (r *MongoUserRepo) find(ctx context.Context, filter bson.M, opts *options.FindOptions) ([]models.User, error) {
	ctx, cancel := withTimeout(ctx, 10*time.Second)
	defer cancel()

	cursor, err := r.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve users: %w", err)
	}
	defer cursor.Close(ctx)

	users := []models.User{}
	for cursor.Next(ctx) {
		var u models.User
		if err := cursor.Decode(&u); err != nil {
			return nil, fmt.Errorf("failed to decode user: %w", err)
		}
		users = append(users, u)
	}
	return users, cursor.Err()
}

// Search finds non-suspended users by offered skill and/or display name.
func (r *MongoUserRepo) Search(ctx context.Context, criteria UserSearchCriteria, page models.Page) ([]models.User, error) {
	filter := bson.M{"suspended": bson.M{"$ne": true}}
	if criteria.Skill != "" {
		filter["skillsOffered"] = criteria.Skill
	}
	if criteria.Query != "" {
		filter["displayName"] = bson.M{"$regex": regexp.QuoteMeta(criteria.Query), "$options": "i"}
	}
	if criteria.ExcludeID != "" {
		filter["id"] = bson.M{"$ne": criteria.ExcludeID}
	}

	p := page.Normalize()
	opts := options.Find().
		SetSort(bson.D{{Key: "rating", Value: -1}, {Key: "completedSwaps", Value: -1}}).
		SetSkip(p.Skip()).
		SetLimit(int64(p.Limit))
	return r.find(ctx, filter, opts)
}

// List returns a page of users for the admin console, newest first.
func (r *MongoUserRepo) List(ctx context.Context, page models.Page) ([]models.User, int64, error) {
	p := page.Normalize()
	opts := options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: -1}}).
		SetSkip(p.Skip()).
		SetLimit(int64(p.Limit))

	users, err := r.find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, 0, err
	}
	total, err := r.Count(ctx, UserCountFilter{})
	if err != nil {
		return nil, 0, err
	}
	return users, total, nil
}

// Count returns the number of users matching the filter.
func (r *MongoUserRepo) Count(ctx context.Context, f UserCountFilter) (int64, error) {
	ctx, cancel := withTimeout(ctx, 5*time.Second)
	defer cancel()

	filter := bson.M{}
	if f.PremiumOnly {
		filter["subscription.plan"] = models.PlanPremium
		filter["subscription.status"] = bson.M{"$in": bson.A{"active", "trialing", "past_due"}}
	}
	if f.VerifiedOnly {
		filter["verified"] = true
	}
	n, err := r.coll.CountDocuments(ctx, filter)
	if err != nil {
		return 0, fmt.Errorf("failed to count users: %w", err)
	}
	return n, nil
}
