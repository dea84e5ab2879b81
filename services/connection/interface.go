package connection

import (
	"context"

	connectionRepo "servswap/database/repository/connection"
	userRepo "servswap/database/repository/user"
	"servswap/models"
	"servswap/services/notification"
)

// Relationship states reported by Status.
const (
	StatusNone            = "none"
	StatusPendingOutgoing = "pending_outgoing"
	StatusPendingIncoming = "pending_incoming"
	StatusConnected       = "connected"
)

type ConnectionService interface {
	// Request asks to connect with to. A pending request from to is accepted instead.
	Request(ctx context.Context, from, to string) (*models.Connection, error)
	Respond(ctx context.Context, userID, connectionID string, accept bool) (*models.Connection, error)
	Remove(ctx context.Context, userID, connectionID string) error
	List(ctx context.Context, userID string) ([]models.ConnectionView, error)
	Pending(ctx context.Context, userID string) (*models.PendingConnections, error)
	Status(ctx context.Context, userID, otherID string) (*models.ConnectionStatusResponse, error)
	PurgeUser(ctx context.Context, userID string) error
}

type DefaultConnectionService struct {
	Connections connectionRepo.ConnectionRepository
	Users       userRepo.UserRepository
	Notifier    notification.Notifier
}
