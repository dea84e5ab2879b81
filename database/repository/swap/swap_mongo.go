package swapRepo

import (
	"context"
	"errors"
	"fmt"
	"time"

	"servswap/database"
	"servswap/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type MongoSwapRepo struct {
	swaps   *mongo.Collection
	reviews *mongo.Collection
}

func NewMongoSwapRepo(db *mongo.Database) SwapRepository {
	repo := &MongoSwapRepo{
		swaps:   db.Collection("swaps"),
		reviews: db.Collection("reviews"),
	}
	if err := repo.ensureIndexes(); err != nil {
		fmt.Printf("failed to create swap indexes: %v\n", err)
	}
	return repo
}

func (r *MongoSwapRepo) ensureIndexes() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	swapIndexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "id", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "proposerId", Value: 1}, {Key: "createdAt", Value: -1}}},
		{Keys: bson.D{{Key: "recipientId", Value: 1}, {Key: "createdAt", Value: -1}}},
		{Keys: bson.D{{Key: "offeredServiceId", Value: 1}, {Key: "requestedServiceId", Value: 1}, {Key: "status", Value: 1}}},
	}
	if _, err := r.swaps.Indexes().CreateMany(ctx, swapIndexes); err != nil {
		return fmt.Errorf("swaps: %w", err)
	}

	reviewIndexes := []mongo.IndexModel{
		{Keys: bson.D{{Key: "id", Value: 1}}, Options: options.Index().SetUnique(true)},
		// One review per reviewer per swap.
		{Keys: bson.D{{Key: "swapId", Value: 1}, {Key: "reviewerId", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "revieweeId", Value: 1}, {Key: "createdAt", Value: -1}}},
	}
	if _, err := r.reviews.Indexes().CreateMany(ctx, reviewIndexes); err != nil {
		return fmt.Errorf("reviews: %w", err)
	}
	return nil
}

func withTimeout(ctx context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	return context.WithTimeout(ctx, timeout)
}

func (r *MongoSwapRepo) Create(ctx context.Context, swap *models.Swap) error {
	ctx, cancel := withTimeout(ctx, 5*time.Second)
	defer cancel()

	now := time.Now()
	swap.CreatedAt = now
	swap.UpdatedAt = now
	if swap.ReviewedBy == nil {
		swap.ReviewedBy = []string{}
	}
	if _, err := r.swaps.InsertOne(ctx, swap); err != nil {
		return fmt.Errorf("failed to create swap: %w", err)
	}
	return nil
}

func (r *MongoSwapRepo) GetByID(ctx context.Context, id string) (*models.Swap, error) {
	ctx, cancel := withTimeout(ctx, 5*time.Second)
	defer cancel()

	var swap models.Swap
	if err := r.swaps.FindOne(ctx, bson.M{"id": id}).Decode(&swap); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("swap %s: %w", id, database.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to fetch swap %s: %w", id, err)
	}
	return &swap, nil
}

// updateWhere runs a FindOneAndUpdate returning the post-update document.
// No match is reported as database.ErrConflict.
func (r *MongoSwapRepo) updateWhere(ctx context.Context, filter, update bson.M) (*models.Swap, error) {
	ctx, cancel := withTimeout(ctx, 5*time.Second)
	defer cancel()

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var swap models.Swap
	if err := r.swaps.FindOneAndUpdate(ctx, filter, update, opts).Decode(&swap); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, database.ErrConflict
		}
		return nil, fmt.Errorf("failed to update swap: %w", err)
	}
	return &swap, nil
}

func (r *MongoSwapRepo) Transition(ctx context.Context, id string, from, to models.SwapStatus, fields map[string]any) (*models.Swap, error) {
	set := bson.M{"status": to, "updatedAt": time.Now()}
	for k, v := range fields {
		set[k] = v
	}
	swap, err := r.updateWhere(ctx, bson.M{"id": id, "status": from}, bson.M{"$set": set})
	if err != nil {
		return nil, fmt.Errorf("swap %s %s->%s: %w", id, from, to, err)
	}
	return swap, nil
}

func (r *MongoSwapRepo) MarkParticipantComplete(ctx context.Context, id string, proposer bool) (*models.Swap, error) {
	field := "recipientCompleted"
	if proposer {
		field = "proposerCompleted"
	}
	filter := bson.M{"id": id, "status": models.SwapAccepted}
	update := bson.M{"$set": bson.M{field: true, "updatedAt": time.Now()}}
	swap, err := r.updateWhere(ctx, filter, update)
	if err != nil {
		return nil, fmt.Errorf("swap %s complete: %w", id, err)
	}
	return swap, nil
}

func (r *MongoSwapRepo) AddReviewer(ctx context.Context, id, reviewerID string) error {
	filter := bson.M{
		"id":         id,
		"status":     models.SwapCompleted,
		"reviewedBy": bson.M{"$ne": reviewerID},
	}
	update := bson.M{"$addToSet": bson.M{"reviewedBy": reviewerID}}
	if _, err := r.updateWhere(ctx, filter, update); err != nil {
		return fmt.Errorf("swap %s review by %s: %w", id, reviewerID, err)
	}
	return nil
}

func (r *MongoSwapRepo) CancelOpenForUser(ctx context.Context, userID string) (int64, error) {
	ctx, cancel := withTimeout(ctx, 10*time.Second)
	defer cancel()

	filter := bson.M{
		"status": bson.M{"$in": bson.A{models.SwapPending, models.SwapAccepted}},
		"$or":    bson.A{bson.M{"proposerId": userID}, bson.M{"recipientId": userID}},
	}
	update := bson.M{"$set": bson.M{"status": models.SwapCancelled, "updatedAt": time.Now()}}
	result, err := r.swaps.UpdateMany(ctx, filter, update)
	if err != nil {
		return 0, fmt.Errorf("failed to cancel swaps of %s: %w", userID, err)
	}
	return result.ModifiedCount, nil
}
