package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/noah-isme/discipulus-api/internal/dto"
	"github.com/noah-isme/discipulus-api/internal/models"
	"github.com/noah-isme/discipulus-api/pkg/middleware/cors"
	"github.com/noah-isme/discipulus-api/pkg/response"
)

const (
	streamWriteWait  = 10 * time.Second
	streamPongWait   = 60 * time.Second
	streamPingPeriod = streamPongWait * 9 / 10
)

type chatService interface {
	Open(ctx context.Context, userID, teacherID string) (*dto.ConversationView, error)
	Get(ctx context.Context, conversationID, userID string) (*dto.ConversationView, error)
	Send(ctx context.Context, conversationID, userID, text string) (*models.Message, error)
	CancelPending(ctx context.Context, conversationID, userID string) (int, error)
	Subscribe(ctx context.Context, conversationID, userID string) (<-chan dto.ChatEvent, func(), error)
}

type sendMessageRequest struct {
	Text string `json:"text"`
}

// ChatHandler exposes teacher conversations.
type ChatHandler struct {
	service  chatService
	upgrader websocket.Upgrader
	logger   *zap.Logger
}

// NewChatHandler constructs a ChatHandler. An empty origin list accepts any
// websocket origin.
func NewChatHandler(service chatService, allowedOrigins []string, logger *zap.Logger) *ChatHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	origins := cors.NewMatcher(allowedOrigins)
	return &ChatHandler{
		service: service,
		logger:  logger,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				return origin == "" || origins.Allowed(origin)
			},
		},
	}
}

// Open godoc
// @Summary Open the conversation with a teacher
// @Tags Chat
// @Produce json
// @Param id path string true "Teacher ID"
// @Success 200 {object} response.Envelope
// @Router /teachers/{id}/conversation [post]
func (h *ChatHandler) Open(c *gin.Context) {
	claims, ok := requireClaims(c)
	if !ok {
		return
	}
	view, err := h.service.Open(c.Request.Context(), claims.UserID, c.Param("id"))
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, view, nil)
}

// Get godoc
// @Summary Conversation with its messages
// @Tags Chat
// @Produce json
// @Param id path string true "Conversation ID"
// @Success 200 {object} response.Envelope
// @Router /conversations/{id} [get]
func (h *ChatHandler) Get(c *gin.Context) {
	claims, ok := requireClaims(c)
	if !ok {
		return
	}
	view, err := h.service.Get(c.Request.Context(), c.Param("id"), claims.UserID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, view, nil)
}

// Send godoc
// @Summary Send a message
// @Description The teacher reply arrives later on the conversation
// @Tags Chat
// @Accept json
// @Produce json
// @Param id path string true "Conversation ID"
// @Param payload body sendMessageRequest true "Message"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Router /conversations/{id}/messages [post]
func (h *ChatHandler) Send(c *gin.Context) {
	claims, ok := requireClaims(c)
	if !ok {
		return
	}
	var req sendMessageRequest
	if !bindJSON(c, &req, "invalid message payload") {
		return
	}
	msg, err := h.service.Send(c.Request.Context(), c.Param("id"), claims.UserID, req.Text)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, msg)
}

// CancelPending godoc
// @Summary Cancel pending teacher replies
// @Tags Chat
// @Produce json
// @Param id path string true "Conversation ID"
// @Success 200 {object} response.Envelope
// @Router /conversations/{id}/pending [delete]
func (h *ChatHandler) CancelPending(c *gin.Context) {
	claims, ok := requireClaims(c)
	if !ok {
		return
	}
	cancelled, err := h.service.CancelPending(c.Request.Context(), c.Param("id"), claims.UserID)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, gin.H{"cancelled": cancelled}, nil)
}

// Stream godoc
// @Summary Conversation event stream (websocket)
// @Tags Chat
// @Param id path string true "Conversation ID"
// @Param access_token query string false "Access token for clients that cannot send headers"
// @Success 101
// @Router /conversations/{id}/stream [get]
func (h *ChatHandler) Stream(c *gin.Context) {
	claims, ok := requireClaims(c)
	if !ok {
		return
	}
	events, unsubscribe, err := h.service.Subscribe(c.Request.Context(), c.Param("id"), claims.UserID)
	if err != nil {
		response.Error(c, err)
		return
	}
	defer unsubscribe()

	conn, err := h.upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		h.logger.Debug("websocket upgrade failed", zap.Error(err))
		return
	}
	defer conn.Close()

	closed := make(chan struct{})
	go h.readPump(conn, closed)

	ticker := time.NewTicker(streamPingPeriod)
	defer ticker.Stop()
	for {
		select {
		case <-closed:
			return
		case event, open := <-events:
			_ = conn.SetWriteDeadline(time.Now().Add(streamWriteWait))
			if !open {
				_ = conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseGoingAway, ""))
				return
			}
			if err := conn.WriteJSON(event); err != nil {
				return
			}
		case <-ticker.C:
			_ = conn.SetWriteDeadline(time.Now().Add(streamWriteWait))
			if err := conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// readPump drains client frames so control messages are processed and
// closes done when the peer goes away.
func (h *ChatHandler) readPump(conn *websocket.Conn, done chan<- struct{}) {
	defer close(done)
	conn.SetReadLimit(512)
	_ = conn.SetReadDeadline(time.Now().Add(streamPongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(streamPongWait))
	})
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}
