package messageRepo

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

type MessageRepository interface {
	// RecordMessage stores msg and upserts its conversation, bumping the recipient's unread counter.
	RecordMessage(ctx context.Context, msg *models.Message, participants []string, recipientID string) (*models.Conversation, error)
	GetConversation(ctx context.Context, id string) (*models.Conversation, error)
	ListConversations(ctx context.Context, userID string, page models.Page) ([]models.Conversation, error)
	// ListMessages returns messages that sort after before, newest first.
	ListMessages(ctx context.Context, conversationID string, before models.Cursor, limit int) ([]models.Message, error)
	MarkRead(ctx context.Context, conversationID, userID string) error
}

type MongoMessageRepo struct {
	conversations *mongo.Collection
	messages      *mongo.Collection
}

func NewMongoMessageRepo(db *mongo.Database) MessageRepository {
	repo := &MongoMessageRepo{
		conversations: db.Collection("conversations"),
		messages:      db.Collection("messages"),
	}
	if err := repo.ensureIndexes(); err != nil {
		fmt.Printf("failed to create message indexes: %v\n", err)
	}
	return repo
}

func (r *MongoMessageRepo) ensureIndexes() error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if _, err := r.conversations.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "id", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "participants", Value: 1}, {Key: "lastMessageAt", Value: -1}}},
	}); err != nil {
		return fmt.Errorf("conversations: %w", err)
	}
	if _, err := r.messages.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "id", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "conversationId", Value: 1}, {Key: "createdAt", Value: -1}, {Key: "id", Value: -1}}},
	}); err != nil {
		return fmt.Errorf("messages: %w", err)
	}
	return nil
}

func (r *MongoMessageRepo) RecordMessage(ctx context.Context, msg *models.Message, participants []string, recipientID string) (*models.Conversation, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	msg.CreatedAt = time.Now()
	if msg.ReadBy == nil {
		msg.ReadBy = []string{msg.SenderID}
	}
	if _, err := r.messages.InsertOne(ctx, msg); err != nil {
		return nil, fmt.Errorf("failed to store message: %w", err)
	}

	update := bson.M{
		"$set": bson.M{
			"lastMessage":   msg.Text,
			"lastSenderId":  msg.SenderID,
			"lastMessageAt": msg.CreatedAt,
		},
		"$setOnInsert": bson.M{
			"id":           msg.ConversationID,
			"participants": participants,
			"createdAt":    msg.CreatedAt,
		},
		"$inc": bson.M{"unread." + recipientID: 1},
	}
	opts := options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After)

	var conv models.Conversation
	if err := r.conversations.FindOneAndUpdate(ctx, bson.M{"id": msg.ConversationID}, update, opts).Decode(&conv); err != nil {
		return nil, fmt.Errorf("failed to upsert conversation %s: %w", msg.ConversationID, err)
	}
	return &conv, nil
}

func (r *MongoMessageRepo) GetConversation(ctx context.Context, id string) (*models.Conversation, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var conv models.Conversation
	if err := r.conversations.FindOne(ctx, bson.M{"id": id}).Decode(&conv); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("conversation %s: %w", id, database.ErrNotFound)
		}
		return nil, fmt.Errorf("failed to fetch conversation %s: %w", id, err)
	}
	return &conv, nil
}

func (r *MongoMessageRepo) ListConversations(ctx context.Context, userID string, page models.Page) ([]models.Conversation, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	p := page.Normalize()
	opts := options.Find().
		SetSort(bson.D{{Key: "lastMessageAt", Value: -1}}).
		SetSkip(p.Skip()).
		SetLimit(int64(p.Limit))
	cursor, err := r.conversations.Find(ctx, bson.M{"participants": userID}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list conversations of %s: %w", userID, err)
	}
	defer cursor.Close(ctx)

	convs := []models.Conversation{}
	if err := cursor.All(ctx, &convs); err != nil {
		return nil, fmt.Errorf("failed to decode conversations: %w", err)
	}
	return convs, nil
}

func (r *MongoMessageRepo) ListMessages(ctx context.Context, conversationID string, before models.Cursor, limit int) ([]models.Message, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	filter := database.OlderThan(bson.M{"conversationId": conversationID}, before)
	opts := options.Find().
		SetSort(database.NewestFirst).
		SetLimit(int64(limit))
	cursor, err := r.messages.Find(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to list messages of %s: %w", conversationID, err)
	}
	defer cursor.Close(ctx)

	msgs := []models.Message{}
	if err := cursor.All(ctx, &msgs); err != nil {
		return nil, fmt.Errorf("failed to decode messages: %w", err)
	}
	return msgs, nil
}

// MarkRead zeroes the member's unread counter and adds them to readBy on every message.
func (r *MongoMessageRepo) MarkRead(ctx context.Context, conversationID, userID string) error {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	result, err := r.conversations.UpdateOne(ctx,
		bson.M{"id": conversationID},
		bson.M{"$set": bson.M{"unread." + userID: 0}},
	)
	if err != nil {
		return fmt.Errorf("failed to reset unread on %s: %w", conversationID, err)
	}
	if result.MatchedCount == 0 {
		return fmt.Errorf("conversation %s: %w", conversationID, database.ErrNotFound)
	}

	_, err = r.messages.UpdateMany(ctx,
		bson.M{"conversationId": conversationID, "readBy": bson.M{"$ne": userID}},
		bson.M{"$addToSet": bson.M{"readBy": userID}},
	)
	if err != nil {
		return fmt.Errorf("failed to mark messages read on %s: %w", conversationID, err)
	}
	return nil
}
