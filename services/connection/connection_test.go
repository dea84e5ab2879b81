package connection

import (
	"context"
	"testing"

	"servswap/database/repository/memrepo"
	"servswap/models"
	"servswap/services/apperr"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newService() (*DefaultConnectionService, *memrepo.Notifier) {
	n := &memrepo.Notifier{}
	return &DefaultConnectionService{
		Connections: memrepo.NewConnections(),
		Users: memrepo.NewUsers(
			models.User{ID: "ann", DisplayName: "Ann"},
			models.User{ID: "ben", DisplayName: "Ben"},
			models.User{ID: "sus", DisplayName: "Sus", Suspended: true},
		),
		Notifier: n,
	}, n
}

func TestRequestAndAccept(t *testing.T) {
	svc, n := newService()
	ctx := context.Background()

	conn, err := svc.Request(ctx, "ann", "ben")
	require.NoError(t, err)
	assert.Equal(t, models.ConnectionPending, conn.Status)
	assert.Equal(t, []models.NotificationType{models.NotifyConnectionRequest}, n.To("ben"))

	st, err := svc.Status(ctx, "ann", "ben")
	require.NoError(t, err)
	assert.Equal(t, StatusPendingOutgoing, st.Status)
	st, err = svc.Status(ctx, "ben", "ann")
	require.NoError(t, err)
	assert.Equal(t, StatusPendingIncoming, st.Status)

	pending, err := svc.Pending(ctx, "ben")
	require.NoError(t, err)
	require.Len(t, pending.Incoming, 1)
	assert.Equal(t, "Ann", pending.Incoming[0].Other.DisplayName)
	assert.Empty(t, pending.Outgoing)

	_, err = svc.Request(ctx, "ann", "ben")
	assert.True(t, apperr.Is(err, apperr.KindConflict))

	_, err = svc.Respond(ctx, "ann", conn.ID, true)
	assert.True(t, apperr.Is(err, apperr.KindForbidden), "only the addressee answers")

	accepted, err := svc.Respond(ctx, "ben", conn.ID, true)
	require.NoError(t, err)
	assert.Equal(t, models.ConnectionAccepted, accepted.Status)
	assert.Equal(t, []models.NotificationType{models.NotifyConnectionAccepted}, n.To("ann"))

	_, err = svc.Respond(ctx, "ben", conn.ID, false)
	assert.True(t, apperr.Is(err, apperr.KindConflict))

	list, err := svc.List(ctx, "ann")
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "ben", list[0].Other.ID)

	_, err = svc.Request(ctx, "ben", "ann")
	assert.True(t, apperr.Is(err, apperr.KindConflict))
}

func TestCrossedRequestsConnect(t *testing.T) {
	svc, _ := newService()
	ctx := context.Background()

	_, err := svc.Request(ctx, "ann", "ben")
	require.NoError(t, err)
	conn, err := svc.Request(ctx, "ben", "ann")
	require.NoError(t, err)
	assert.Equal(t, models.ConnectionAccepted, conn.Status)
	assert.Equal(t, "ann", conn.RequesterID)

	st, err := svc.Status(ctx, "ann", "ben")
	require.NoError(t, err)
	assert.Equal(t, StatusConnected, st.Status)
}

func TestRequestRejections(t *testing.T) {
	svc, _ := newService()
	ctx := context.Background()

	_, err := svc.Request(ctx, "ann", "ann")
	assert.True(t, apperr.Is(err, apperr.KindInvalid))
	_, err = svc.Request(ctx, "ann", "ghost")
	assert.True(t, apperr.Is(err, apperr.KindNotFound))
	_, err = svc.Request(ctx, "ann", "sus")
	assert.True(t, apperr.Is(err, apperr.KindNotFound))
}

func TestDeclineAndRemove(t *testing.T) {
	svc, _ := newService()
	ctx := context.Background()

	conn, err := svc.Request(ctx, "ann", "ben")
	require.NoError(t, err)
	declined, err := svc.Respond(ctx, "ben", conn.ID, false)
	require.NoError(t, err)
	assert.Equal(t, models.ConnectionDeclined, declined.Status)

	st, err := svc.Status(ctx, "ann", "ben")
	require.NoError(t, err)
	assert.Equal(t, StatusNone, st.Status)
	assert.Empty(t, st.ConnectionID)

	assert.True(t, apperr.Is(svc.Remove(ctx, "sus", conn.ID), apperr.KindForbidden))
	require.NoError(t, svc.Remove(ctx, "ann", conn.ID))
	assert.True(t, apperr.Is(svc.Remove(ctx, "ann", conn.ID), apperr.KindNotFound))
}

func TestPurgeUser(t *testing.T) {
	svc, _ := newService()
	ctx := context.Background()
	_, err := svc.Request(ctx, "ann", "ben")
	require.NoError(t, err)

	require.NoError(t, svc.PurgeUser(ctx, "ben"))
	pending, err := svc.Pending(ctx, "ann")
	require.NoError(t, err)
	assert.Empty(t, pending.Outgoing)
}
