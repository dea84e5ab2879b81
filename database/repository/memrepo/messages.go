package memrepo

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"servswap/database"
	messageRepo "servswap/database/repository/message"
	"servswap/models"
)

type Messages struct {
	mu            sync.Mutex
	conversations map[string]models.Conversation
	messages      []models.Message
	clock         func() time.Time
}

var _ messageRepo.MessageRepository = (*Messages)(nil)

func NewMessages() *Messages {
	return &Messages{conversations: map[string]models.Conversation{}, clock: time.Now}
}

// SetClock replaces the timestamp source for new messages.
func (r *Messages) SetClock(clock func() time.Time) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.clock = clock
}

func (r *Messages) RecordMessage(_ context.Context, msg *models.Message, participants []string, recipientID string) (*models.Conversation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	msg.CreatedAt = r.clock()
	if msg.ReadBy == nil {
		msg.ReadBy = []string{msg.SenderID}
	}
	r.messages = append(r.messages, *msg)

	conv, ok := r.conversations[msg.ConversationID]
	if !ok {
		conv = models.Conversation{
			ID:           msg.ConversationID,
			Participants: participants,
			Unread:       map[string]int{},
			CreatedAt:    msg.CreatedAt,
		}
	}
	conv.LastMessage = msg.Text
	conv.LastSenderID = msg.SenderID
	conv.LastMessageAt = msg.CreatedAt
	conv.Unread[recipientID]++
	r.conversations[conv.ID] = conv

	out := conv
	out.Unread = map[string]int{}
	for k, v := range conv.Unread {
		out.Unread[k] = v
	}
	return &out, nil
}

func (r *Messages) GetConversation(_ context.Context, id string) (*models.Conversation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.conversations[id]
	if !ok {
		return nil, fmt.Errorf("conversation %s: %w", id, database.ErrNotFound)
	}
	return &c, nil
}

func (r *Messages) ListConversations(_ context.Context, userID string, page models.Page) ([]models.Conversation, error) {
	r.mu.Lock()
	out := []models.Conversation{}
	for _, c := range r.conversations {
		if contains(c.Participants, userID) {
			out = append(out, c)
		}
	}
	r.mu.Unlock()
	sort.SliceStable(out, func(i, j int) bool { return out[i].LastMessageAt.After(out[j].LastMessageAt) })
	p := page.Normalize()
	return paginate(out, p.Skip(), p.Limit), nil
}

func (r *Messages) ListMessages(_ context.Context, conversationID string, before models.Cursor, limit int) ([]models.Message, error) {
	r.mu.Lock()
	out := []models.Message{}
	for _, m := range r.messages {
		if m.ConversationID == conversationID && before.Includes(m.CreatedAt, m.ID) {
			out = append(out, m)
		}
	}
	r.mu.Unlock()
	sort.Slice(out, func(i, j int) bool {
		return models.NewestFirst(out[i].CreatedAt, out[i].ID, out[j].CreatedAt, out[j].ID)
	})
	return paginate(out, 0, limit), nil
}

func (r *Messages) MarkRead(_ context.Context, conversationID, userID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.conversations[conversationID]
	if !ok {
		return fmt.Errorf("conversation %s: %w", conversationID, database.ErrNotFound)
	}
	c.Unread[userID] = 0
	r.conversations[conversationID] = c
	for i := range r.messages {
		if r.messages[i].ConversationID == conversationID && !contains(r.messages[i].ReadBy, userID) {
			r.messages[i].ReadBy = append(r.messages[i].ReadBy, userID)
		}
	}
	return nil
}
