package feedRepo

import (
	"context"
	"fmt"
	"time"

	"servswap/database"
	"servswap/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// CreateComment inserts the comment and bumps the post's comment counter.
func (r *MongoFeedRepo) CreateComment(ctx context.Context, comment *models.Comment) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	result, err := r.posts.UpdateOne(ctx, bson.M{"id": comment.PostID}, bson.M{"$inc": bson.M{"commentCount": 1}})
	if err != nil {
		return fmt.Errorf("failed to update post %s: %w", comment.PostID, err)
	}
	if result.MatchedCount == 0 {
		return fmt.Errorf("post %s: %w", comment.PostID, database.ErrNotFound)
	}

	comment.CreatedAt = time.Now()
	if _, err := r.comments.InsertOne(ctx, comment); err != nil {
		return fmt.Errorf("failed to create comment: %w", err)
	}
	return nil
}

// ListComments returns comments oldest first.
func (r *MongoFeedRepo) ListComments(ctx context.Context, postID string, page models.Page) ([]models.Comment, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	p := page.Normalize()
	opts := options.Find().
		SetSort(bson.D{{Key: "createdAt", Value: 1}}).
		SetSkip(p.Skip()).
		SetLimit(int64(p.Limit))

	cursor, err := r.comments.Find(ctx, bson.M{"postId": postID}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list comments of %s: %w", postID, err)
	}
	defer cursor.Close(ctx)

	comments := []models.Comment{}
	if err := cursor.All(ctx, &comments); err != nil {
		return nil, fmt.Errorf("failed to decode comments: %w", err)
	}
	return comments, nil
}

func (r *MongoFeedRepo) DeleteCommentsForPost(ctx context.Context, postID string) error {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	if _, err := r.comments.DeleteMany(ctx, bson.M{"postId": postID}); err != nil {
		return fmt.Errorf("failed to delete comments of %s: %w", postID, err)
	}
	return nil
}
