package serviceRepo

import (
	"context"
	"fmt"
	"regexp"
	"time"

	"servswap/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"
)

func buildFilter(f models.ServiceFilter) bson.M {
	filter := bson.M{}
	if f.ActiveOnly {
		filter["active"] = true
	}
	if f.Category != "" {
		filter["category"] = f.Category
	}
	if f.OwnerID != "" {
		filter["ownerId"] = f.OwnerID
	} else if f.ExcludeOwnerID != "" {
		filter["ownerId"] = bson.M{"$ne": f.ExcludeOwnerID}
	}
	if f.Query != "" {
		pattern := bson.M{"$regex": regexp.QuoteMeta(f.Query), "$options": "i"}
		filter["$or"] = bson.A{
			bson.M{"title": pattern},
			bson.M{"description": pattern},
			bson.M{"tags": pattern},
		}
	}
	return filter
}

// List returns listings newest first.
func (r *MongoServiceRepo) List(ctx context.Context, f models.ServiceFilter, page models.Page) ([]models.Service, int64, error) {
	filter := buildFilter(f)
	p := page.Normalize()
	opts := options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: -1}}).
		SetSkip(p.Skip()).
		SetLimit(int64(p.Limit))

	services, err := r.find(ctx, filter, opts)
	if err != nil {
		return nil, 0, err
	}

	countCtx, cancel := withTimeout(ctx, 5*time.Second)
	defer cancel()
	total, err := r.coll.CountDocuments(countCtx, filter)
	if err != nil {
		return nil, 0, fmt.Errorf("failed to count services: %w", err)
	}
	return services, total, nil
}

// FindByTerms is the candidate query behind swap matching.
func (r *MongoServiceRepo) FindByTerms(ctx context.Context, terms []string, excludeOwnerID string, limit int) ([]models.Service, error) {
	if len(terms) == 0 {
		return []models.Service{}, nil
	}
	filter := bson.M{
		"active":  true,
		"ownerId": bson.M{"$ne": excludeOwnerID},
		"$or": bson.A{
			bson.M{"category": bson.M{"$in": terms}},
			bson.M{"tags": bson.M{"$in": terms}},
		},
	}
	opts := options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: -1}}).
		SetLimit(int64(limit))
	return r.find(ctx, filter, opts)
}
