package service

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/discipulus-api/internal/dto"
	"github.com/noah-isme/discipulus-api/internal/models"
	"github.com/noah-isme/discipulus-api/internal/repository/memory"
	"github.com/noah-isme/discipulus-api/internal/seed"
	appErrors "github.com/noah-isme/discipulus-api/pkg/errors"
)

func newChatFixture(t *testing.T, delay time.Duration) (*ChatService, *memory.ConversationRepository) {
	store := newSeededStore(t)
	convs := memory.NewConversationRepository(store)
	svc := NewChatService(memory.NewTeacherRepository(store), convs, NewChatHub(), NewMetricsService(), ChatOptions{ReplyDelay: delay, ReplyText: "resposta"}, nil)
	t.Cleanup(svc.Close)
	return svc, convs
}

func messagesOf(t *testing.T, convs *memory.ConversationRepository, id string) []models.Message {
	t.Helper()
	msgs, err := convs.ListMessages(context.Background(), id)
	require.NoError(t, err)
	return msgs
}

func TestChatOpenSeedsGreetingOnce(t *testing.T) {
	svc, _ := newChatFixture(t, time.Second)
	ctx := context.Background()

	view, err := svc.Open(ctx, seed.DemoStudentID, "1")
	require.NoError(t, err)
	require.Len(t, view.Messages, 1)
	greeting := view.Messages[0]
	assert.Equal(t, models.SenderTeacher, greeting.Sender)
	assert.Equal(t, "Olá! Sou Sarah Johnson. Como posso ajudá-lo hoje?", greeting.Text)
	assert.WithinDuration(t, time.Now().Add(-5*time.Minute), greeting.Timestamp, 5*time.Second)

	again, err := svc.Open(ctx, seed.DemoStudentID, "1")
	require.NoError(t, err)
	assert.Equal(t, view.Conversation.ID, again.Conversation.ID)
	assert.Len(t, again.Messages, 1)

	_, err = svc.Open(ctx, seed.DemoStudentID, "404")
	assert.ErrorIs(t, err, appErrors.ErrNotFound)
}

func TestChatSendSchedulesOneReply(t *testing.T) {
	svc, convs := newChatFixture(t, 20*time.Millisecond)
	ctx := context.Background()
	view, err := svc.Open(ctx, seed.DemoStudentID, "1")
	require.NoError(t, err)

	_, err = svc.Send(ctx, view.Conversation.ID, seed.DemoStudentID, "   ")
	assert.ErrorIs(t, err, appErrors.ErrValidation)

	msg, err := svc.Send(ctx, view.Conversation.ID, seed.DemoStudentID, "  Olá, professora  ")
	require.NoError(t, err)
	assert.Equal(t, "Olá, professora", msg.Text)
	assert.Equal(t, models.SenderUser, msg.Sender)
	assert.True(t, svc.Typing(view.Conversation.ID))
	assert.Len(t, messagesOf(t, convs, view.Conversation.ID), 2)

	assert.Eventually(t, func() bool { return !svc.Typing(view.Conversation.ID) }, time.Second, 5*time.Millisecond)
	msgs := messagesOf(t, convs, view.Conversation.ID)
	require.Len(t, msgs, 3)
	assert.Equal(t, models.SenderTeacher, msgs[2].Sender)
	assert.Equal(t, "resposta", msgs[2].Text)
}

func TestChatRepliesFollowSendOrder(t *testing.T) {
	svc, convs := newChatFixture(t, 15*time.Millisecond)
	ctx := context.Background()
	view, err := svc.Open(ctx, seed.DemoStudentID, "2")
	require.NoError(t, err)
	id := view.Conversation.ID

	for _, text := range []string{"um", "dois", "três"} {
		_, err := svc.Send(ctx, id, seed.DemoStudentID, text)
		require.NoError(t, err)
	}

	assert.Eventually(t, func() bool { return len(messagesOf(t, convs, id)) == 7 }, time.Second, 5*time.Millisecond)
	assert.False(t, svc.Typing(id))
	var senders []models.MessageSender
	for i, m := range messagesOf(t, convs, id) {
		assert.Equal(t, int64(i+1), m.Seq)
		senders = append(senders, m.Sender)
	}
	assert.Equal(t, []models.MessageSender{
		models.SenderTeacher, models.SenderUser, models.SenderUser, models.SenderUser,
		models.SenderTeacher, models.SenderTeacher, models.SenderTeacher,
	}, senders)
}

func TestChatCancelPendingLeavesUserMessage(t *testing.T) {
	svc, convs := newChatFixture(t, 50*time.Millisecond)
	ctx := context.Background()
	view, err := svc.Open(ctx, seed.DemoStudentID, "3")
	require.NoError(t, err)
	id := view.Conversation.ID

	_, err = svc.Send(ctx, id, seed.DemoStudentID, "pergunta")
	require.NoError(t, err)

	cancelled, err := svc.CancelPending(ctx, id, seed.DemoStudentID)
	require.NoError(t, err)
	assert.Equal(t, 1, cancelled)
	assert.False(t, svc.Typing(id))

	time.Sleep(120 * time.Millisecond)
	msgs := messagesOf(t, convs, id)
	require.Len(t, msgs, 2)
	assert.Equal(t, models.SenderUser, msgs[1].Sender)
	assert.Equal(t, int64(0), svc.metrics.Snapshot().PendingReplies)
}

func TestChatConversationOwnership(t *testing.T) {
	svc, _ := newChatFixture(t, time.Second)
	ctx := context.Background()
	view, err := svc.Open(ctx, seed.DemoStudentID, "1")
	require.NoError(t, err)

	_, err = svc.Get(ctx, view.Conversation.ID, "intruder")
	assert.ErrorIs(t, err, appErrors.ErrNotFound)
	_, err = svc.Send(ctx, view.Conversation.ID, "intruder", "oi")
	assert.ErrorIs(t, err, appErrors.ErrNotFound)
}

func TestChatStreamReceivesEvents(t *testing.T) {
	svc, _ := newChatFixture(t, 10*time.Millisecond)
	ctx := context.Background()
	view, err := svc.Open(ctx, seed.DemoStudentID, "1")
	require.NoError(t, err)

	events, unsubscribe, err := svc.Subscribe(ctx, view.Conversation.ID, seed.DemoStudentID)
	require.NoError(t, err)
	defer unsubscribe()

	_, err = svc.Send(ctx, view.Conversation.ID, seed.DemoStudentID, "oi")
	require.NoError(t, err)

	var got []string
	timeout := time.After(time.Second)
	for len(got) < 4 {
		select {
		case evt := <-events:
			kind := evt.Type
			if evt.Type == dto.ChatEventTyping {
				if evt.Typing {
					kind += ":on"
				} else {
					kind += ":off"
				}
			}
			got = append(got, kind)
		case <-timeout:
			t.Fatalf("missing events, got %v", got)
		}
	}
	assert.Equal(t, []string{"message", "typing:on", "message", "typing:off"}, got)
}

func TestChatHubDropsWhenSubscriberIsSlow(t *testing.T) {
	hub := NewChatHub()
	ch, unsubscribe := hub.Subscribe("c1")

	for i := 0; i < chatSubscriberBuffer+5; i++ {
		hub.Publish(dto.ChatEvent{Type: dto.ChatEventTyping, ConversationID: "c1"})
	}
	assert.Len(t, ch, chatSubscriberBuffer)
	assert.Equal(t, 1, hub.Subscribers("c1"))

	unsubscribe()
	unsubscribe()
	assert.Equal(t, 0, hub.Subscribers("c1"))
	hub.Close()
}
