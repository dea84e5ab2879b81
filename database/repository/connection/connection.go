package connectionRepo

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

type ConnectionRepository interface {
	Create(ctx context.Context, conn *models.Connection) error
	GetByID(ctx context.Context, id string) (*models.Connection, error)
	// FindBetween returns the most recent connection between a and b in either direction.
	FindBetween(ctx context.Context, a, b string) (*models.Connection, error)
	// UpdateStatus moves a connection out of from; database.ErrConflict when it is no longer in from.
	UpdateStatus(ctx context.Context, id string, from, to models.ConnectionStatus) (*models.Connection, error)
	Delete(ctx context.Context, id string) error
	DeleteForUser(ctx context.Context, userID string) error
	ListForUser(ctx context.Context, userID string, status models.ConnectionStatus) ([]models.Connection, error)
	// AcceptedIDs returns the ids of every member connected to userID.
	AcceptedIDs(ctx context.Context, userID string) ([]string, error)
}

type MongoConnectionRepo struct {
	coll *mongo.Collection
}

func NewMongoConnectionRepo(db *mongo.Database) ConnectionRepository {
	repo := &MongoConnectionRepo{coll: db.Collection("connections")}
	if err := repo.ensureIndexes(); err != nil {
		fmt.Printf("failed to create connection indexes: %v\n", err)
	}
	return repo
}

func (r *MongoConnectionRepo) ensureIndexes() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	_, err := r.coll.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "id", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "requesterId", Value: 1}, {Key: "status", Value: 1}}},
		{Keys: bson.D{{Key: "addresseeId", Value: 1}, {Key: "status", Value: 1}}},
	})
	return err
}

func pairFilter(a, b string) bson.M {
	return bson.M{"$or": bson.A{
		bson.M{"requesterId": a, "addresseeId": b},
		bson.M{"requesterId": b, "addresseeId": a},
	}}
}

func memberFilter(userID string) bson.A {
	return bson.A{bson.M{"requesterId": userID}, bson.M{"addresseeId": userID}}
}

func (r *MongoConnectionRepo) Create(ctx context.Context, conn *models.Connection) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	now := time.Now()
	conn.CreatedAt = now
	conn.UpdatedAt = now
	if _, err := r.coll.InsertOne(ctx, conn); err != nil {
		return fmt.Errorf("failed to create connection: %w", err)
	}
	return nil
}

func (r *MongoConnectionRepo) findOne(ctx context.Context, filter bson.M, opts ...*options.FindOneOptions) (*models.Connection, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var conn models.Connection
	if err := r.coll.FindOne(ctx, filter, opts...).Decode(&conn); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, database.ErrNotFound
		}
		return nil, fmt.Errorf("failed to fetch connection: %w", err)
	}
	return &conn, nil
}

func (r *MongoConnectionRepo) GetByID(ctx context.Context, id string) (*models.Connection, error) {
	conn, err := r.findOne(ctx, bson.M{"id": id})
	if err != nil {
		return nil, fmt.Errorf("connection %s: %w", id, err)
	}
	return conn, nil
}

func (r *MongoConnectionRepo) FindBetween(ctx context.Context, a, b string) (*models.Connection, error) {
	opts := options.FindOne().SetSort(bson.D{{Key: "updatedAt", Value: -1}})
	return r.findOne(ctx, pairFilter(a, b), opts)
}

func (r *MongoConnectionRepo) UpdateStatus(ctx context.Context, id string, from, to models.ConnectionStatus) (*models.Connection, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	filter := bson.M{"id": id, "status": from}
	update := bson.M{"$set": bson.M{"status": to, "updatedAt": time.Now()}}
	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)

	var conn models.Connection
	if err := r.coll.FindOneAndUpdate(ctx, filter, update, opts).Decode(&conn); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("connection %s: %w", id, database.ErrConflict)
		}
		return nil, fmt.Errorf("failed to update connection %s: %w", id, err)
	}
	return &conn, nil
}

func (r *MongoConnectionRepo) Delete(ctx context.Context, id string) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	result, err := r.coll.DeleteOne(ctx, bson.M{"id": id})
	if err != nil {
		return fmt.Errorf("failed to delete connection %s: %w", id, err)
	}
	if result.DeletedCount == 0 {
		return fmt.Errorf("connection %s: %w", id, database.ErrNotFound)
	}
	return nil
}

func (r *MongoConnectionRepo) DeleteForUser(ctx context.Context, userID string) error {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	if _, err := r.coll.DeleteMany(ctx, bson.M{"$or": memberFilter(userID)}); err != nil {
		return fmt.Errorf("failed to delete connections of %s: %w", userID, err)
	}
	return nil
}

func (r *MongoConnectionRepo) ListForUser(ctx context.Context, userID string, status models.ConnectionStatus) ([]models.Connection, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	filter := bson.M{"$or": memberFilter(userID), "status": status}
	opts := options.Find().SetSort(bson.D{{Key: "updatedAt", Value: -1}})
	cursor, err := r.coll.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list connections of %s: %w", userID, err)
	}
	defer cursor.Close(ctx)

	conns := []models.Connection{}
	if err := cursor.All(ctx, &conns); err != nil {
		return nil, fmt.Errorf("failed to decode connections: %w", err)
	}
	return conns, nil
}

func (r *MongoConnectionRepo) AcceptedIDs(ctx context.Context, userID string) ([]string, error) {
	conns, err := r.ListForUser(ctx, userID, models.ConnectionAccepted)
	if err != nil {
		return nil, err
	}
	ids := make([]string, 0, len(conns))
	for i := range conns {
		ids = append(ids, conns[i].Other(userID))
	}
	return ids, nil
}
