package handler

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/discipulus-api/internal/dto"
	"github.com/noah-isme/discipulus-api/internal/middleware"
	"github.com/noah-isme/discipulus-api/internal/models"
	appErrors "github.com/noah-isme/discipulus-api/pkg/errors"
)

type fakeChatSrv struct {
	text      string
	events    chan dto.ChatEvent
	unsubbed  chan struct{}
	cancelled int
	err       error
}

func (f *fakeChatSrv) Open(_ context.Context, userID, teacherID string) (*dto.ConversationView, error) {
	return &dto.ConversationView{Conversation: models.Conversation{ID: "conv-1", UserID: userID, TeacherID: teacherID}}, f.err
}

func (f *fakeChatSrv) Get(_ context.Context, conversationID, userID string) (*dto.ConversationView, error) {
	if f.err != nil {
		return nil, f.err
	}
	return &dto.ConversationView{Conversation: models.Conversation{ID: conversationID, UserID: userID}}, nil
}

func (f *fakeChatSrv) Send(_ context.Context, conversationID, _ string, text string) (*models.Message, error) {
	f.text = text
	if f.err != nil {
		return nil, f.err
	}
	return &models.Message{ID: "m-1", ConversationID: conversationID, Text: text, Sender: models.SenderUser}, nil
}

func (f *fakeChatSrv) CancelPending(context.Context, string, string) (int, error) {
	return f.cancelled, f.err
}

func (f *fakeChatSrv) Subscribe(context.Context, string, string) (<-chan dto.ChatEvent, func(), error) {
	if f.err != nil {
		return nil, nil, f.err
	}
	return f.events, func() { close(f.unsubbed) }, nil
}

func TestChatSendReturnsMessage(t *testing.T) {
	svc := &fakeChatSrv{}
	handler := NewChatHandler(svc, nil, nil)

	c, rec := newTestContext(http.MethodPost, "/conversations/conv-1/messages", map[string]string{"text": "Olá"}, studentClaims)
	c.AddParam("id", "conv-1")
	handler.Send(c)

	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "Olá", svc.text)
}

func TestChatSendEmptyMessage(t *testing.T) {
	handler := NewChatHandler(&fakeChatSrv{err: appErrors.Clone(appErrors.ErrValidation, "message text is required")}, nil, nil)

	c, rec := newTestContext(http.MethodPost, "/conversations/conv-1/messages", map[string]string{"text": "   "}, studentClaims)
	handler.Send(c)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestChatCancelPendingReportsCount(t *testing.T) {
	handler := NewChatHandler(&fakeChatSrv{cancelled: 2}, nil, nil)

	c, rec := newTestContext(http.MethodDelete, "/conversations/conv-1/pending", nil, studentClaims)
	handler.CancelPending(c)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"cancelled":2}`, string(decodeEnvelope(t, rec).Data))
}

func TestChatStreamPushesEvents(t *testing.T) {
	gin.SetMode(gin.TestMode)
	svc := &fakeChatSrv{events: make(chan dto.ChatEvent, 1), unsubbed: make(chan struct{})}
	handler := NewChatHandler(svc, nil, nil)

	router := gin.New()
	router.GET("/conversations/:id/stream", func(c *gin.Context) {
		c.Set(middleware.ContextUserKey, studentClaims)
		c.Next()
	}, handler.Stream)
	server := httptest.NewServer(router)
	defer server.Close()

	url := "ws" + strings.TrimPrefix(server.URL, "http") + "/conversations/conv-1/stream"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	require.NoError(t, err)

	svc.events <- dto.ChatEvent{Type: dto.ChatEventTyping, ConversationID: "conv-1", Typing: true}

	var event dto.ChatEvent
	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	require.NoError(t, conn.ReadJSON(&event))
	assert.Equal(t, dto.ChatEventTyping, event.Type)
	assert.True(t, event.Typing)

	require.NoError(t, conn.Close())
	select {
	case <-svc.unsubbed:
	case <-time.After(2 * time.Second):
		t.Fatal("stream did not unsubscribe after the client left")
	}
}

func TestChatStreamRejectsForeignConversation(t *testing.T) {
	handler := NewChatHandler(&fakeChatSrv{err: appErrors.Clone(appErrors.ErrNotFound, "conversation not found")}, nil, nil)

	c, rec := newTestContext(http.MethodGet, "/conversations/conv-9/stream", nil, studentClaims)
	handler.Stream(c)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
