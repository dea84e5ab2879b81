package messaging

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"servswap/database/repository/memrepo"
	"servswap/models"
	"servswap/services/apperr"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeMirror struct {
	messages []string
	reads    []string
	err      error
}

func (m *fakeMirror) MirrorMessage(_ context.Context, conv *models.Conversation, msg *models.Message) error {
	m.messages = append(m.messages, conv.ID+"/"+msg.ID)
	return m.err
}

func (m *fakeMirror) MirrorRead(_ context.Context, conversationID, userID string) error {
	m.reads = append(m.reads, conversationID+"/"+userID)
	return m.err
}

func newService() (*DefaultMessagingService, *fakeMirror, *memrepo.Notifier) {
	mirror, n := &fakeMirror{}, &memrepo.Notifier{}
	return &DefaultMessagingService{
		Store: memrepo.NewMessages(),
		Connections: memrepo.NewConnections(
			models.Connection{ID: "c1", RequesterID: "ann", AddresseeID: "ben", Status: models.ConnectionAccepted},
			models.Connection{ID: "c2", RequesterID: "ann", AddresseeID: "cal", Status: models.ConnectionPending},
		),
		Swaps: memrepo.NewSwaps(
			models.Swap{ID: "s1", ProposerID: "dee", RecipientID: "ann", Status: models.SwapAccepted},
		),
		Users: memrepo.NewUsers(
			models.User{ID: "ann", DisplayName: "Ann"},
			models.User{ID: "ben", DisplayName: "Ben"},
			models.User{ID: "cal", DisplayName: "Cal"},
			models.User{ID: "dee", DisplayName: "Dee"},
			models.User{ID: "sus", DisplayName: "Sus", Suspended: true},
		),
		Notifier: n,
		Mirror:   mirror,
	}, mirror, n
}

func TestSendToConnection(t *testing.T) {
	svc, mirror, n := newService()
	ctx := context.Background()

	msg, err := svc.Send(ctx, "ben", "ann", "  hello  ")
	require.NoError(t, err)
	assert.Equal(t, "hello", msg.Text)
	assert.Equal(t, models.ConversationID("ann", "ben"), msg.ConversationID)
	assert.Equal(t, []string{"ben"}, msg.ReadBy)

	require.Len(t, mirror.messages, 1)
	sent := n.All()
	require.Len(t, sent, 1)
	assert.Equal(t, "ann", sent[0].UserID)
	assert.Equal(t, models.NotifyMessage, sent[0].Type)
	assert.Equal(t, "Ben", sent[0].Title)
	assert.Equal(t, msg.ConversationID, sent[0].Data["conversationId"])
}

func TestSendPermissions(t *testing.T) {
	svc, _, _ := newService()
	ctx := context.Background()

	_, err := svc.Send(ctx, "dee", "ann", "about our swap")
	assert.NoError(t, err, "a shared swap allows messaging")

	_, err = svc.Send(ctx, "ann", "cal", "hi")
	assert.True(t, apperr.Is(err, apperr.KindForbidden), "a pending connection is not enough")

	_, err = svc.Send(ctx, "ann", "sus", "hi")
	assert.True(t, apperr.Is(err, apperr.KindNotFound))

	_, err = svc.Send(ctx, "ann", "ann", "hi")
	assert.True(t, apperr.Is(err, apperr.KindInvalid))

	_, err = svc.Send(ctx, "ann", "ben", "   ")
	assert.True(t, apperr.Is(err, apperr.KindInvalid))

	_, err = svc.Send(ctx, "ann", "ben", strings.Repeat("x", maxText+1))
	assert.True(t, apperr.Is(err, apperr.KindInvalid))
}

func TestMirrorFailureDoesNotFailSend(t *testing.T) {
	svc, mirror, _ := newService()
	mirror.err = errors.New("firestore unavailable")
	_, err := svc.Send(context.Background(), "ann", "ben", "hi")
	assert.NoError(t, err)
}

func TestNotificationPreviewIsTruncated(t *testing.T) {
	svc, _, n := newService()
	_, err := svc.Send(context.Background(), "ann", "ben", strings.Repeat("é", 150))
	require.NoError(t, err)
	body := n.All()[0].Body
	assert.True(t, strings.HasSuffix(body, "..."))
	assert.Equal(t, previewLength+3, len([]rune(body)))
}

func TestConversationsAndRead(t *testing.T) {
	svc, mirror, _ := newService()
	ctx := context.Background()

	for _, text := range []string{"one", "two", "three"} {
		_, err := svc.Send(ctx, "ann", "ben", text)
		require.NoError(t, err)
		time.Sleep(time.Millisecond)
	}
	convID := models.ConversationID("ann", "ben")

	convs, err := svc.Conversations(ctx, "ben", models.Page{})
	require.NoError(t, err)
	require.Len(t, convs, 1)
	assert.Equal(t, "Ann", convs[0].Other.DisplayName)
	assert.Equal(t, 3, convs[0].UnreadCount)
	assert.Equal(t, "three", convs[0].LastMessage)

	page, err := svc.Messages(ctx, "ben", convID, "", 2)
	require.NoError(t, err)
	require.Len(t, page.Messages, 2)
	assert.Equal(t, "three", page.Messages[0].Text)
	require.NotEmpty(t, page.NextBefore)

	rest, err := svc.Messages(ctx, "ben", convID, page.NextBefore, 2)
	require.NoError(t, err)
	require.Len(t, rest.Messages, 1)
	assert.Equal(t, "one", rest.Messages[0].Text)
	assert.Empty(t, rest.NextBefore)

	_, err = svc.Messages(ctx, "ben", convID, "yesterday", 2)
	assert.True(t, apperr.Is(err, apperr.KindInvalid))
	_, err = svc.Messages(ctx, "cal", convID, "", 2)
	assert.True(t, apperr.Is(err, apperr.KindForbidden))

	require.NoError(t, svc.MarkRead(ctx, "ben", convID))
	assert.Equal(t, []string{convID + "/ben"}, mirror.reads)
	convs, err = svc.Conversations(ctx, "ben", models.Page{})
	require.NoError(t, err)
	assert.Zero(t, convs[0].UnreadCount)

	assert.True(t, apperr.Is(svc.MarkRead(ctx, "ben", "nope"), apperr.KindNotFound))
}

func TestMessagesPageThroughSameInstant(t *testing.T) {
	svc, _, _ := newService()
	ctx := context.Background()
	same := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)
	svc.Store.(*memrepo.Messages).SetClock(func() time.Time { return same })

	for i := 0; i < 5; i++ {
		_, err := svc.Send(ctx, "ann", "ben", strings.Repeat("x", i+1))
		require.NoError(t, err)
	}
	convID := models.ConversationID("ann", "ben")

	var texts []string
	before := ""
	for i := 0; i < 5; i++ {
		page, err := svc.Messages(ctx, "ben", convID, before, 2)
		require.NoError(t, err)
		for _, m := range page.Messages {
			texts = append(texts, m.Text)
		}
		if page.NextBefore == "" {
			break
		}
		before = page.NextBefore
	}
	assert.Len(t, texts, 5)
	assert.ElementsMatch(t, []string{"x", "xx", "xxx", "xxxx", "xxxxx"}, texts)
}
