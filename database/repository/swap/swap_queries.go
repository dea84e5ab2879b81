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

var openStatuses = bson.A{models.SwapPending, models.SwapAccepted}

func (r *MongoSwapRepo) CountByProposerSince(ctx context.Context, proposerID string, since time.Time) (int64, error) {
	ctx, cancel := withTimeout(ctx, 5*time.Second)
	defer cancel()

	n, err := r.swaps.CountDocuments(ctx, bson.M{
		"proposerId": proposerID,
		"createdAt":  bson.M{"$gte": since},
	})
	if err != nil {
		return 0, fmt.Errorf("failed to count proposals of %s: %w", proposerID, err)
	}
	return n, nil
}

func (r *MongoSwapRepo) FindOpenForPair(ctx context.Context, offeredServiceID, requestedServiceID string) (*models.Swap, error) {
	ctx, cancel := withTimeout(ctx, 5*time.Second)
	defer cancel()

	filter := bson.M{
		"offeredServiceId":   offeredServiceID,
		"requestedServiceId": requestedServiceID,
		"status":             bson.M{"$in": openStatuses},
	}
	var swap models.Swap
	if err := r.swaps.FindOne(ctx, filter).Decode(&swap); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, database.ErrNotFound
		}
		return nil, fmt.Errorf("failed to look up open swap: %w", err)
	}
	return &swap, nil
}

func (r *MongoSwapRepo) exists(ctx context.Context, filter bson.M) (bool, error) {
	ctx, cancel := withTimeout(ctx, 5*time.Second)
	defer cancel()

	n, err := r.swaps.CountDocuments(ctx, filter, options.Count().SetLimit(1))
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

func (r *MongoSwapRepo) HasAcceptedForService(ctx context.Context, serviceID string) (bool, error) {
	ok, err := r.exists(ctx, bson.M{
		"status": models.SwapAccepted,
		"$or": bson.A{
			bson.M{"offeredServiceId": serviceID},
			bson.M{"requestedServiceId": serviceID},
		},
	})
	if err != nil {
		return false, fmt.Errorf("failed to check swaps for service %s: %w", serviceID, err)
	}
	return ok, nil
}

// HasSharedSwap reports whether the two members share a swap that is pending,
// accepted or completed.
func (r *MongoSwapRepo) HasSharedSwap(ctx context.Context, userA, userB string) (bool, error) {
	ok, err := r.exists(ctx, bson.M{
		"status": bson.M{"$in": bson.A{models.SwapPending, models.SwapAccepted, models.SwapCompleted}},
		"$or": bson.A{
			bson.M{"proposerId": userA, "recipientId": userB},
			bson.M{"proposerId": userB, "recipientId": userA},
		},
	})
	if err != nil {
		return false, fmt.Errorf("failed to check shared swaps: %w", err)
	}
	return ok, nil
}

func (r *MongoSwapRepo) ListForUser(ctx context.Context, userID string, f models.SwapListFilter, page models.Page) ([]models.Swap, error) {
	ctx, cancel := withTimeout(ctx, 10*time.Second)
	defer cancel()

	filter := bson.M{}
	switch f.Role {
	case "sent":
		filter["proposerId"] = userID
	case "received":
		filter["recipientId"] = userID
	default:
		filter["$or"] = bson.A{bson.M{"proposerId": userID}, bson.M{"recipientId": userID}}
	}
	if f.Status != "" {
		filter["status"] = f.Status
	}

	p := page.Normalize()
	opts := options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: -1}}).
		SetSkip(p.Skip()).
		SetLimit(int64(p.Limit))

	cursor, err := r.swaps.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list swaps of %s: %w", userID, err)
	}
	defer cursor.Close(ctx)

	swaps := []models.Swap{}
	if err := cursor.All(ctx, &swaps); err != nil {
		return nil, fmt.Errorf("failed to decode swaps: %w", err)
	}
	return swaps, nil
}

// CountByStatus groups all swaps by status.
func (r *MongoSwapRepo) CountByStatus(ctx context.Context) (map[string]int64, error) {
	ctx, cancel := withTimeout(ctx, 10*time.Second)
	defer cancel()

	pipeline := mongo.Pipeline{
		{{Key: "$group", Value: bson.D{
			{Key: "_id", Value: "$status"},
			{Key: "count", Value: bson.D{{Key: "$sum", Value: 1}}},
		}}},
	}
	cursor, err := r.swaps.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, fmt.Errorf("failed to aggregate swaps: %w", err)
	}
	defer cursor.Close(ctx)

	var rows []struct {
		Status string `bson:"_id"`
		Count  int64  `bson:"count"`
	}
	if err := cursor.All(ctx, &rows); err != nil {
		return nil, fmt.Errorf("failed to decode swap counts: %w", err)
	}
	counts := make(map[string]int64, len(rows))
	for _, row := range rows {
		counts[row.Status] = row.Count
	}
	return counts, nil
}

func (r *MongoSwapRepo) CreateReview(ctx context.Context, review *models.Review) error {
	ctx, cancel := withTimeout(ctx, 5*time.Second)
	defer cancel()

	review.CreatedAt = time.Now()
	if _, err := r.reviews.InsertOne(ctx, review); err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return database.ErrConflict
		}
		return fmt.Errorf("failed to create review: %w", err)
	}
	return nil
}

func (r *MongoSwapRepo) ListReviewsFor(ctx context.Context, revieweeID string, page models.Page) ([]models.Review, error) {
	ctx, cancel := withTimeout(ctx, 10*time.Second)
	defer cancel()

	p := page.Normalize()
	opts := options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: -1}}).
		SetSkip(p.Skip()).
		SetLimit(int64(p.Limit))
	cursor, err := r.reviews.Find(ctx, bson.M{"revieweeId": revieweeID}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list reviews of %s: %w", revieweeID, err)
	}
	defer cursor.Close(ctx)

	reviews := []models.Review{}
	if err := cursor.All(ctx, &reviews); err != nil {
		return nil, fmt.Errorf("failed to decode reviews: %w", err)
	}
	return reviews, nil
}
