package feedRepo

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

type MongoFeedRepo struct {
	posts    *mongo.Collection
	comments *mongo.Collection
}

func NewMongoFeedRepo(db *mongo.Database) FeedRepository {
	repo := &MongoFeedRepo{
		posts:    db.Collection("posts"),
		comments: db.Collection("comments"),
	}
	if err := repo.ensureIndexes(); err != nil {
		fmt.Printf("failed to create feed indexes: %v\n", err)
	}
	return repo
}

func (r *MongoFeedRepo) ensureIndexes() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if _, err := r.posts.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "id", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "authorId", Value: 1}, {Key: "createdAt", Value: -1}, {Key: "id", Value: -1}}},
		{Keys: bson.D{{Key: "createdAt", Value: -1}, {Key: "id", Value: -1}}},
	}); err != nil {
		return fmt.Errorf("posts: %w", err)
	}
	if _, err := r.comments.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "id", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "postId", Value: 1}, {Key: "createdAt", Value: 1}}},
	}); err != nil {
		return fmt.Errorf("comments: %w", err)
	}
	return nil
}

func (r *MongoFeedRepo) CreatePost(ctx context.Context, post *models.Post) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	post.CreatedAt = time.Now()
	if post.LikedBy == nil {
		post.LikedBy = []string{}
	}
	if _, err := r.posts.InsertOne(ctx, post); err != nil {
		return fmt.Errorf("failed to create post: %w", err)
	}
	return nil
}

func (r *MongoFeedRepo) GetPost(ctx context.Context, id string) (*models.Post, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var post models.Post
	if err := r.posts.FindOne(ctx, bson.M{"id": id}).Decode(&post); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("post %s: %w", id, database.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to fetch post %s: %w", id, err)
	}
	return &post, nil
}

func (r *MongoFeedRepo) DeletePost(ctx context.Context, id string) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	result, err := r.posts.DeleteOne(ctx, bson.M{"id": id})
	if err != nil {
		return fmt.Errorf("failed to delete post %s: %w", id, err)
	}
	if result.DeletedCount == 0 {
		return fmt.Errorf("post %s: %w", id, database.ErrNotFound)
	}
	return nil
}

func (r *MongoFeedRepo) listPosts(ctx context.Context, filter bson.M, before models.Cursor, limit int) ([]models.Post, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	opts := options.Find().
		SetSort(database.NewestFirst).
		SetLimit(int64(limit))

	cursor, err := r.posts.Find(ctx, database.OlderThan(filter, before), opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list posts: %w", err)
	}
	defer cursor.Close(ctx)

	posts := []models.Post{}
	if err := cursor.All(ctx, &posts); err != nil {
		return nil, fmt.Errorf("failed to decode posts: %w", err)
	}
	return posts, nil
}

func (r *MongoFeedRepo) ListByAuthors(ctx context.Context, authorIDs []string, before models.Cursor, limit int) ([]models.Post, error) {
	if len(authorIDs) == 0 {
		return []models.Post{}, nil
	}
	return r.listPosts(ctx, bson.M{"authorId": bson.M{"$in": authorIDs}}, before, limit)
}

func (r *MongoFeedRepo) ListRecent(ctx context.Context, before models.Cursor, limit int) ([]models.Post, error) {
	return r.listPosts(ctx, bson.M{}, before, limit)
}

// toggleLike applies update only when the liker filter holds, so the counter
// stays consistent with likedBy under concurrent requests.
func (r *MongoFeedRepo) toggleLike(ctx context.Context, postID string, likerFilter bson.M, update bson.M) (bool, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	filter := bson.M{"id": postID}
	for k, v := range likerFilter {
		filter[k] = v
	}
	result, err := r.posts.UpdateOne(ctx, filter, update)
	if err != nil {
		return false, fmt.Errorf("failed to update likes on post %s: %w", postID, err)
	}
	if result.MatchedCount > 0 {
		return true, nil
	}

	n, err := r.posts.CountDocuments(ctx, bson.M{"id": postID})
	if err != nil {
		return false, fmt.Errorf("failed to check post %s: %w", postID, err)
	}
	if n == 0 {
		return false, fmt.Errorf("post %s: %w", postID, database.ErrNotFound)
	}
	return false, nil
}

func (r *MongoFeedRepo) Like(ctx context.Context, postID, userID string) (bool, error) {
	return r.toggleLike(ctx, postID,
		bson.M{"likedBy": bson.M{"$ne": userID}},
		bson.M{"$addToSet": bson.M{"likedBy": userID}, "$inc": bson.M{"likeCount": 1}},
	)
}

func (r *MongoFeedRepo) Unlike(ctx context.Context, postID, userID string) (bool, error) {
	return r.toggleLike(ctx, postID,
		bson.M{"likedBy": userID},
		bson.M{"$pull": bson.M{"likedBy": userID}, "$inc": bson.M{"likeCount": -1}},
	)
}

func (r *MongoFeedRepo) CountPosts(ctx context.Context) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	n, err := r.posts.CountDocuments(ctx, bson.M{})
	if err != nil {
		return 0, fmt.Errorf("failed to count posts: %w", err)
	}
	return n, nil
}
