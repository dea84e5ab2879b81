package database

import (
	"servswap/models"

	"go.mongodb.org/mongo-driver/bson"
)

// NewestFirst is the sort that pairs with OlderThan.
var NewestFirst = bson.D{{Key: "createdAt", Value: -1}, {Key: "id", Value: -1}}

// OlderThan adds to filter the condition that a document sorts after c in
// NewestFirst order. The zero cursor leaves filter unchanged.
func OlderThan(filter bson.M, c models.Cursor) bson.M {
	if c.IsZero() {
		return filter
	}
	if c.ID == "" {
		filter["createdAt"] = bson.M{"$lt": c.CreatedAt}
		return filter
	}
	filter["$or"] = bson.A{
		bson.M{"createdAt": bson.M{"$lt": c.CreatedAt}},
		bson.M{"createdAt": c.CreatedAt, "id": bson.M{"$lt": c.ID}},
	}
	return filter
}
