package messaging

import (
	"context"
	"fmt"

	"servswap/models"

	"cloud.google.com/go/firestore"
)

// FirestoreMirror writes conversations/{id} and conversations/{id}/messages/{msgId}.
type FirestoreMirror struct {
	Client *firestore.Client
}

func NewFirestoreMirror(client *firestore.Client) *FirestoreMirror {
	return &FirestoreMirror{Client: client}
}

func (m *FirestoreMirror) conversation(id string) *firestore.DocumentRef {
	return m.Client.Collection("conversations").Doc(id)
}

func (m *FirestoreMirror) MirrorMessage(ctx context.Context, conv *models.Conversation, msg *models.Message) error {
	unread := map[string]any{}
	for k, v := range conv.Unread {
		unread[k] = v
	}
	_, err := m.conversation(conv.ID).Set(ctx, map[string]any{
		"participants":  conv.Participants,
		"lastMessage":   conv.LastMessage,
		"lastSenderId":  conv.LastSenderID,
		"lastMessageAt": conv.LastMessageAt,
		"unread":        unread,
	}, firestore.MergeAll)
	if err != nil {
		return fmt.Errorf("mirror conversation %s: %w", conv.ID, err)
	}

	_, err = m.conversation(conv.ID).Collection("messages").Doc(msg.ID).Set(ctx, map[string]any{
		"id":        msg.ID,
		"senderId":  msg.SenderID,
		"text":      msg.Text,
		"readBy":    msg.ReadBy,
		"createdAt": msg.CreatedAt,
	})
	if err != nil {
		return fmt.Errorf("mirror message %s: %w", msg.ID, err)
	}
	return nil
}

func (m *FirestoreMirror) MirrorRead(ctx context.Context, conversationID, userID string) error {
	_, err := m.conversation(conversationID).Set(ctx, map[string]any{
		"unread": map[string]any{userID: 0},
	}, firestore.MergeAll)
	if err != nil {
		return fmt.Errorf("mirror read state %s: %w", conversationID, err)
	}
	return nil
}
