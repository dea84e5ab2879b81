package connection

import (
	"context"
	"errors"

	"servswap/database"
	"servswap/models"
	"servswap/services/apperr"
	"servswap/services/user"
	"servswap/utils"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

func (s *DefaultConnectionService) loadUser(ctx context.Context, userID string) (*models.User, error) {
	u, err := s.Users.GetByID(ctx, userID)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return nil, apperr.NotFound("user not found")
		}
		return nil, apperr.Internal("failed to load user", err)
	}
	return u, nil
}

func (s *DefaultConnectionService) Request(ctx context.Context, from, to string) (*models.Connection, error) {
	if from == to {
		return nil, apperr.Invalid("you cannot connect with yourself")
	}
	target, err := s.loadUser(ctx, to)
	if err != nil {
		return nil, err
	}
	if target.Suspended {
		return nil, apperr.NotFound("user not found")
	}

	existing, err := s.Connections.FindBetween(ctx, from, to)
	switch {
	case errors.Is(err, database.ErrNotFound):
	case err != nil:
		return nil, apperr.Internal("failed to check connection", err)
	case existing.Status == models.ConnectionAccepted:
		return nil, apperr.Conflict("you are already connected")
	case existing.Status == models.ConnectionPending && existing.RequesterID == from:
		return nil, apperr.Conflict("connection request already sent")
	case existing.Status == models.ConnectionPending:
		// They asked first.
		return s.accept(ctx, existing)
	}

	conn := &models.Connection{
		ID:          uuid.New().String(),
		RequesterID: from,
		AddresseeID: to,
		Status:      models.ConnectionPending,
	}
	if err := s.Connections.Create(ctx, conn); err != nil {
		return nil, apperr.Internal("failed to create connection request", err)
	}
	s.notify(ctx, to, models.NotifyConnectionRequest, "New connection request",
		s.displayName(ctx, from)+" wants to connect with you", conn.ID)
	return conn, nil
}

func (s *DefaultConnectionService) accept(ctx context.Context, conn *models.Connection) (*models.Connection, error) {
	updated, err := s.transition(ctx, conn, models.ConnectionAccepted)
	if err != nil {
		return nil, err
	}
	s.notify(ctx, conn.RequesterID, models.NotifyConnectionAccepted, "Connection accepted",
		s.displayName(ctx, conn.AddresseeID)+" accepted your connection request", conn.ID)
	return updated, nil
}

func (s *DefaultConnectionService) transition(ctx context.Context, conn *models.Connection, to models.ConnectionStatus) (*models.Connection, error) {
	updated, err := s.Connections.UpdateStatus(ctx, conn.ID, models.ConnectionPending, to)
	if err != nil {
		if errors.Is(err, database.ErrConflict) {
			return nil, apperr.Conflict("connection request was already answered")
		}
		return nil, apperr.Internal("failed to update connection", err)
	}
	utils.GetLogger().Info("connection answered", zap.String("connectionID", conn.ID), zap.String("status", string(to)))
	return updated, nil
}

func (s *DefaultConnectionService) load(ctx context.Context, connectionID string) (*models.Connection, error) {
	conn, err := s.Connections.GetByID(ctx, connectionID)
	if err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return nil, apperr.NotFound("connection not found")
		}
		return nil, apperr.Internal("failed to load connection", err)
	}
	return conn, nil
}

func (s *DefaultConnectionService) Respond(ctx context.Context, userID, connectionID string, accept bool) (*models.Connection, error) {
	conn, err := s.load(ctx, connectionID)
	if err != nil {
		return nil, err
	}
	if conn.AddresseeID != userID {
		return nil, apperr.Forbidden("only the addressee can answer this request")
	}
	if conn.Status != models.ConnectionPending {
		return nil, apperr.Conflict("connection request was already answered")
	}
	if accept {
		return s.accept(ctx, conn)
	}
	return s.transition(ctx, conn, models.ConnectionDeclined)
}

func (s *DefaultConnectionService) Remove(ctx context.Context, userID, connectionID string) error {
	conn, err := s.load(ctx, connectionID)
	if err != nil {
		return err
	}
	if conn.RequesterID != userID && conn.AddresseeID != userID {
		return apperr.Forbidden("you are not part of this connection")
	}
	if err := s.Connections.Delete(ctx, connectionID); err != nil {
		if errors.Is(err, database.ErrNotFound) {
			return apperr.NotFound("connection not found")
		}
		return apperr.Internal("failed to remove connection", err)
	}
	return nil
}

func (s *DefaultConnectionService) views(ctx context.Context, userID string, conns []models.Connection) ([]models.ConnectionView, error) {
	ids := make([]string, 0, len(conns))
	for i := range conns {
		ids = append(ids, conns[i].Other(userID))
	}
	users, err := s.Users.GetByIDs(ctx, ids)
	if err != nil {
		return nil, apperr.Internal("failed to load members", err)
	}
	profiles := user.PublicByID(users)

	out := make([]models.ConnectionView, 0, len(conns))
	for _, c := range conns {
		other, ok := profiles[c.Other(userID)]
		if !ok {
			continue
		}
		out = append(out, models.ConnectionView{Connection: c, Other: other})
	}
	return out, nil
}

func (s *DefaultConnectionService) List(ctx context.Context, userID string) ([]models.ConnectionView, error) {
	conns, err := s.Connections.ListForUser(ctx, userID, models.ConnectionAccepted)
	if err != nil {
		return nil, apperr.Internal("failed to list connections", err)
	}
	return s.views(ctx, userID, conns)
}

func (s *DefaultConnectionService) Pending(ctx context.Context, userID string) (*models.PendingConnections, error) {
	conns, err := s.Connections.ListForUser(ctx, userID, models.ConnectionPending)
	if err != nil {
		return nil, apperr.Internal("failed to list connection requests", err)
	}
	views, err := s.views(ctx, userID, conns)
	if err != nil {
		return nil, err
	}
	out := &models.PendingConnections{Incoming: []models.ConnectionView{}, Outgoing: []models.ConnectionView{}}
	for _, v := range views {
		if v.AddresseeID == userID {
			out.Incoming = append(out.Incoming, v)
		} else {
			out.Outgoing = append(out.Outgoing, v)
		}
	}
	return out, nil
}

func (s *DefaultConnectionService) Status(ctx context.Context, userID, otherID string) (*models.ConnectionStatusResponse, error) {
	conn, err := s.Connections.FindBetween(ctx, userID, otherID)
	if errors.Is(err, database.ErrNotFound) {
		return &models.ConnectionStatusResponse{Status: StatusNone}, nil
	}
	if err != nil {
		return nil, apperr.Internal("failed to check connection", err)
	}

	resp := &models.ConnectionStatusResponse{Status: StatusNone, ConnectionID: conn.ID}
	switch conn.Status {
	case models.ConnectionAccepted:
		resp.Status = StatusConnected
	case models.ConnectionPending:
		resp.Status = StatusPendingIncoming
		if conn.RequesterID == userID {
			resp.Status = StatusPendingOutgoing
		}
	default:
		resp.ConnectionID = ""
	}
	return resp, nil
}

func (s *DefaultConnectionService) PurgeUser(ctx context.Context, userID string) error {
	return s.Connections.DeleteForUser(ctx, userID)
}

func (s *DefaultConnectionService) displayName(ctx context.Context, userID string) string {
	u, err := s.Users.GetByID(ctx, userID)
	if err != nil {
		return "A member"
	}
	return u.DisplayName
}

func (s *DefaultConnectionService) notify(ctx context.Context, userID string, t models.NotificationType, title, body, connectionID string) {
	if s.Notifier == nil {
		return
	}
	if err := s.Notifier.Notify(ctx, userID, t, title, body, map[string]string{"connectionId": connectionID}); err != nil {
		utils.GetLogger().Error("connection notification failed", zap.String("connectionID", connectionID), zap.Error(err))
	}
}
