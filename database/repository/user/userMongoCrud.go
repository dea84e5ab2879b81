// File: database/repository/user/userMongoCrud.go
package userRepo

import (
	"context"
	"fmt"
	"time"

	"servswap/database"
	"servswap/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
)

// Create inserts a new user document.
func (r *MongoUserRepo) Create(ctx context.Context, user *models.User) error {
	ctx, cancel := withTimeout(ctx, 5*time.Second)
	defer cancel()

	now := time.Now()
	user.CreatedAt = now
	user.UpdatedAt = now

	if _, err := r.coll.InsertOne(ctx, user); err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

// UpdateFields applies a $set of the given fields and bumps updatedAt.
func (r *MongoUserRepo) UpdateFields(ctx context.Context, id string, fields map[string]any) error {
	ctx, cancel := withTimeout(ctx, 5*time.Second)
	defer cancel()

	set := bson.M{"updatedAt": time.Now()}
	for k, v := range fields {
		set[k] = v
	}

	result, err := r.coll.UpdateOne(ctx, bson.M{"id": id}, bson.M{"$set": set})
	if err != nil {
		return fmt.Errorf("failed to update user with id %s: %w", id, err)
	}
	if result.MatchedCount == 0 {
		return fmt.Errorf("user with id %s: %w", id, database.ErrNotFound)
	}
	return nil
}

func (r *MongoUserRepo) AddToSet(ctx context.Context, id, field string, value any) error {
	ctx, cancel := withTimeout(ctx, 5*time.Second)
	defer cancel()

	update := bson.M{
		"$addToSet": bson.M{field: value},
		"$set":      bson.M{"updatedAt": time.Now()},
	}
	result, err := r.coll.UpdateOne(ctx, bson.M{"id": id}, update)
	if err != nil {
		return fmt.Errorf("failed to add to %s for user %s: %w", field, id, err)
	}
	if result.MatchedCount == 0 {
		return fmt.Errorf("user with id %s: %w", id, database.ErrNotFound)
	}
	return nil
}

func (r *MongoUserRepo) PullFromArray(ctx context.Context, id, field string, value any) error {
	ctx, cancel := withTimeout(ctx, 5*time.Second)
	defer cancel()

	var pullCondition any

	// If value is a slice, use $in with that slice; otherwise pull the single value.
	switch v := value.(type) {
	case []string:
		pullCondition = bson.M{"$in": v}
	case []any:
		pullCondition = bson.M{"$in": v}
	default:
		pullCondition = v
	}

	update := bson.M{"$pull": bson.M{field: pullCondition}}
	result, err := r.coll.UpdateOne(ctx, bson.M{"id": id}, update)
	if err != nil {
		return fmt.Errorf("failed to pull from %s for user %s: %w", field, id, err)
	}
	if result.MatchedCount == 0 {
		return fmt.Errorf("user with id %s: %w", id, database.ErrNotFound)
	}
	return nil
}

func (r *MongoUserRepo) Increment(ctx context.Context, id, field string, delta int) error {
	ctx, cancel := withTimeout(ctx, 5*time.Second)
	defer cancel()

	update := bson.M{"$inc": bson.M{field: delta}}
	result, err := r.coll.UpdateOne(ctx, bson.M{"id": id}, update)
	if err != nil {
		return fmt.Errorf("failed to increment %s for user %s: %w", field, id, err)
	}
	if result.MatchedCount == 0 {
		return fmt.Errorf("user with id %s: %w", id, database.ErrNotFound)
	}
	return nil
}

// AddRating updates the running average in a single pipeline update so
// concurrent reviews cannot lose a count.
func (r *MongoUserRepo) AddRating(ctx context.Context, id string, rating int) error {
	ctx, cancel := withTimeout(ctx, 5*time.Second)
	defer cancel()

	count := bson.M{"$ifNull": bson.A{"$ratingCount", 0}}
	avg := bson.M{"$ifNull": bson.A{"$rating", 0}}
	pipeline := mongo.Pipeline{
		{{Key: "$set", Value: bson.M{
			"rating": bson.M{"$divide": bson.A{
				bson.M{"$add": bson.A{bson.M{"$multiply": bson.A{avg, count}}, rating}},
				bson.M{"$add": bson.A{count, 1}},
			}},
			"ratingCount": bson.M{"$add": bson.A{count, 1}},
			"updatedAt":   time.Now(),
		}}},
	}

	result, err := r.coll.UpdateOne(ctx, bson.M{"id": id}, pipeline)
	if err != nil {
		return fmt.Errorf("failed to add rating for user %s: %w", id, err)
	}
	if result.MatchedCount == 0 {
		return fmt.Errorf("user with id %s: %w", id, database.ErrNotFound)
	}
	return nil
}

func (r *MongoUserRepo) UpsertDevice(ctx context.Context, id string, device models.Device) error {
	ctx, cancel := withTimeout(ctx, 5*time.Second)
	defer cancel()

	others := bson.M{"$filter": bson.M{
		"input": bson.M{"$ifNull": bson.A{"$devices", bson.A{}}},
		"cond":  bson.M{"$ne": bson.A{"$$this.deviceId", device.DeviceID}},
	}}
	pipeline := mongo.Pipeline{
		{{Key: "$set", Value: bson.M{
			"devices":   bson.M{"$concatArrays": bson.A{others, bson.M{"$literal": bson.A{device}}}},
			"updatedAt": time.Now(),
		}}},
	}

	result, err := r.coll.UpdateOne(ctx, bson.M{"id": id}, pipeline)
	if err != nil {
		return fmt.Errorf("failed to upsert device for user %s: %w", id, err)
	}
	if result.MatchedCount == 0 {
		return fmt.Errorf("user with id %s: %w", id, database.ErrNotFound)
	}
	return nil
}

func (r *MongoUserRepo) RemoveDevices(ctx context.Context, id string, deviceIDs []string) error {
	ctx, cancel := withTimeout(ctx, 5*time.Second)
	defer cancel()

	update := bson.M{
		"$pull": bson.M{"devices": bson.M{"deviceId": bson.M{"$in": deviceIDs}}},
		"$set":  bson.M{"updatedAt": time.Now()},
	}
	result, err := r.coll.UpdateOne(ctx, bson.M{"id": id}, update)
	if err != nil {
		return fmt.Errorf("failed to remove devices for user %s: %w", id, err)
	}
	if result.MatchedCount == 0 {
		return fmt.Errorf("user with id %s: %w", id, database.ErrNotFound)
	}
	return nil
}

// Delete removes a user document by its ID.
func (r *MongoUserRepo) Delete(ctx context.Context, id string) error {
	ctx, cancel := withTimeout(ctx, 5*time.Second)
	defer cancel()

	result, err := r.coll.DeleteOne(ctx, bson.M{"id": id})
	if err != nil {
		return fmt.Errorf("failed to delete user with id %s: %w", id, err)
	}
	if result.DeletedCount == 0 {
		return fmt.Errorf("user with id %s: %w", id, database.ErrNotFound)
	}
	return nil
}
