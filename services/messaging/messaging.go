package messaging

import (
	"context"
	"errors"
	"sort"
	"strings"
	"unicode/utf8"

	"servswap/database"
	"servswap/models"
	"servswap/services/apperr"
	"servswap/services/user"
	"servswap/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	maxText          = 2000
	previewLength    = 100
	DefaultPageLimit = 30
	MaxPageLimit     = 100
)

// canMessage reports whether the pair is connected or shares a live or completed swap.
func (s *DefaultMessagingService) canMessage(ctx context.Context, a, b string) (bool, error) {
	conn, err := s.Connections.FindBetween(ctx, a, b)
	switch {
	case err == nil && conn.Status == models.ConnectionAccepted:
		return true, nil
	case err != nil && !errors.Is(err, database.ErrNotFound):
		return false, err
	}
	return s.Swaps.HasSharedSwap(ctx, a, b)
}

func preview(text string) string {
	if utf8.RuneCountInString(text) <= previewLength {
		return text
	}
	return string([]rune(text)[:previewLength]) + "..."
}

func (s *DefaultMessagingService) Send(ctx context.Context, from, to, text string) (*models.Message, error) {
	logger := utils.GetLogger()

	text = strings.TrimSpace(text)
	if n := utf8.RuneCountInString(text); n < 1 || n > maxText {
		return nil, apperr.Invalid("message must be 1 to %d characters", maxText)
	}
	if from == to {
		return nil, apperr.Invalid("you cannot message yourself")
	}

	sender, err := s.Users.GetByID(ctx, from)
	if err != nil {
		return nil, apperr.Internal("failed to load sender", err)
	}
	recipient, err := s.Users.GetByID(ctx, to)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return nil, apperr.NotFound("user not found")
		}
		return nil, apperr.Internal("failed to load recipient", err)
	}
	if recipient.Suspended {
		return nil, apperr.NotFound("user not found")
	}

	ok, err := s.canMessage(ctx, from, to)
	if err != nil {
		return nil, apperr.Internal("failed to check messaging permission", err)
	}
	if !ok {
		return nil, apperr.Forbidden("connect or start a swap with this member before messaging")
	}

	participants := []string{from, to}
	sort.Strings(participants)
	msg := &models.Message{
		ID:             uuid.New().String(),
		ConversationID: models.ConversationID(from, to),
		SenderID:       from,
		Text:           text,
		ReadBy:         []string{from},
	}
	conv, err := s.Store.RecordMessage(ctx, msg, participants, to)
	if err != nil {
		return nil, apperr.Internal("failed to send message", err)
	}

	if s.Mirror != nil {
		if err := s.Mirror.MirrorMessage(ctx, conv, msg); err != nil {
			logger.Warn("realtime mirror failed", zap.String("conversationID", conv.ID), zap.Error(err))
		}
	}
	if s.Notifier != nil {
		data := map[string]string{"conversationId": conv.ID, "senderId": from}
		if err := s.Notifier.Notify(ctx, to, models.NotifyMessage, sender.DisplayName, preview(text), data); err != nil {
			logger.Error("message notification failed", zap.String("conversationID", conv.ID), zap.Error(err))
		}
	}
	return msg, nil
}

func (s *DefaultMessagingService) loadConversation(ctx context.Context, userID, conversationID string) (*models.Conversation, error) {
	conv, err := s.Store.GetConversation(ctx, conversationID)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return nil, apperr.NotFound("conversation not found")
		}
		return nil, apperr.Internal("failed to load conversation", err)
	}
	for _, p := range conv.Participants {
		if p == userID {
			return conv, nil
		}
	}
	return nil, apperr.Forbidden("you are not part of this conversation")
}

func (s *DefaultMessagingService) Conversations(ctx context.Context, userID string, page models.Page) ([]models.ConversationView, error) {
	convs, err := s.Store.ListConversations(ctx, userID, page)
	if err != nil {
		return nil, apperr.Internal("failed to list conversations", err)
	}

	others := make([]string, 0, len(convs))
	for _, c := range convs {
		others = append(others, otherParticipant(c, userID))
	}
	users, err := s.Users.GetByIDs(ctx, others)
	if err != nil {
		return nil, apperr.Internal("failed to load members", err)
	}
	profiles := user.PublicByID(users)

	out := make([]models.ConversationView, 0, len(convs))
	for _, c := range convs {
		other := otherParticipant(c, userID)
		profile, ok := profiles[other]
		if !ok {
			profile = models.PublicProfile{ID: other, DisplayName: "Deleted member", SkillsOffered: []string{}, SkillsWanted: []string{}}
		}
		out = append(out, models.ConversationView{Conversation: c, Other: profile, UnreadCount: c.Unread[userID]})
	}
	return out, nil
}

func otherParticipant(c models.Conversation, userID string) string {
	for _, p := range c.Participants {
		if p != userID {
			return p
		}
	}
	return userID
}

func (s *DefaultMessagingService) Messages(ctx context.Context, userID, conversationID, before string, limit int) (*models.MessagePage, error) {
	if _, err := s.loadConversation(ctx, userID, conversationID); err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = DefaultPageLimit
	}
	if limit > MaxPageLimit {
		limit = MaxPageLimit
	}
	cursor, err := models.ParseCursor(before)
	if err != nil {
		return nil, apperr.Invalid("invalid cursor")
	}

	msgs, err := s.Store.ListMessages(ctx, conversationID, cursor, limit)
	if err != nil {
		return nil, apperr.Internal("failed to load messages", err)
	}
	page := &models.MessagePage{Messages: msgs}
	if len(msgs) == limit {
		last := msgs[len(msgs)-1]
		page.NextBefore = models.CursorFor(last.CreatedAt, last.ID).String()
	}
	return page, nil
}

func (s *DefaultMessagingService) MarkRead(ctx context.Context, userID, conversationID string) error {
	if _, err := s.loadConversation(ctx, userID, conversationID); err != nil {
		return err
	}
	if err := s.Store.MarkRead(ctx, conversationID, userID); err != nil {
		return apperr.Internal("failed to mark conversation read", err)
	}
	if s.Mirror != nil {
		if err := s.Mirror.MirrorRead(ctx, conversationID, userID); err != nil {
			utils.GetLogger().Warn("realtime mirror failed", zap.String("conversationID", conversationID), zap.Error(err))
		}
	}
	return nil
}
