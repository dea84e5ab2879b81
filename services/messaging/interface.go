package messaging

import (
	"context"

	connectionRepo "servswap/database/repository/connection"
	messageRepo "servswap/database/repository/message"
	swapRepo "servswap/database/repository/swap"
	userRepo "servswap/database/repository/user"
	"servswap/models"
	"servswap/services/notification"
)

type MessagingService interface {
	// Send delivers text from one member to another. Members may message each other
	// once connected or while they share a swap.
	Send(ctx context.Context, from, to, text string) (*models.Message, error)
	Conversations(ctx context.Context, userID string, page models.Page) ([]models.ConversationView, error)
	Messages(ctx context.Context, userID, conversationID, before string, limit int) (*models.MessagePage, error)
	MarkRead(ctx context.Context, userID, conversationID string) error
}

// Mirror copies chat state to a realtime store that clients listen on.
type Mirror interface {
	MirrorMessage(ctx context.Context, conv *models.Conversation, msg *models.Message) error
	MirrorRead(ctx context.Context, conversationID, userID string) error
}

type DefaultMessagingService struct {
	Store       messageRepo.MessageRepository
	Connections connectionRepo.ConnectionRepository
	Swaps       swapRepo.SwapRepository
	Users       userRepo.UserRepository
	Notifier    notification.Notifier
	// Mirror is nil when realtime mirroring is off.
	Mirror Mirror
}
