package service

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/noah-isme/discipulus-api/internal/dto"
	"github.com/noah-isme/discipulus-api/internal/models"
	appErrors "github.com/noah-isme/discipulus-api/pkg/errors"
)

const (
	greetingOffset   = 5 * time.Minute
	defaultReplyText = "Obrigado pela sua mensagem! Vou responder em breve. Enquanto isso, que tal agendar uma aula para discutirmos melhor?"
	maxMessageLength = 4000
)

type chatTeacherReader interface {
	FindByID(ctx context.Context, id string) (*models.Teacher, error)
}

type conversationStore interface {
	FindByParticipants(ctx context.Context, userID, teacherID string) (*models.Conversation, error)
	FindByID(ctx context.Context, id string) (*models.Conversation, error)
	Create(ctx context.Context, conv *models.Conversation, greeting *models.Message) error
	AppendMessage(ctx context.Context, msg *models.Message) error
	ListMessages(ctx context.Context, conversationID string) ([]models.Message, error)
}

// ChatOptions configures the automated teacher reply.
type ChatOptions struct {
	ReplyDelay time.Duration
	ReplyText  string
}

// replyChain tracks the pending replies of one conversation. Replies wait
// for their predecessor so they land in send order.
type replyChain struct {
	ctx     context.Context
	cancel  context.CancelFunc
	tail    <-chan struct{}
	pending int
}

// ChatService manages conversations and their scripted teacher replies.
type ChatService struct {
	teachers chatTeacherReader
	convs    conversationStore
	hub      *ChatHub
	metrics  *MetricsService
	opts     ChatOptions
	logger   *zap.Logger
	now      func() time.Time

	mu      sync.Mutex
	chains  map[string]*replyChain
	wg      sync.WaitGroup
	base    context.Context
	stop    context.CancelFunc
	stopped bool
}

// NewChatService constructs a ChatService.
func NewChatService(teachers chatTeacherReader, convs conversationStore, hub *ChatHub, metrics *MetricsService, opts ChatOptions, logger *zap.Logger) *ChatService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if hub == nil {
		hub = NewChatHub()
	}
	if opts.ReplyDelay <= 0 {
		opts.ReplyDelay = 2 * time.Second
	}
	if strings.TrimSpace(opts.ReplyText) == "" {
		opts.ReplyText = defaultReplyText
	}
	base, stop := context.WithCancel(context.Background())
	return &ChatService{
		teachers: teachers,
		convs:    convs,
		hub:      hub,
		metrics:  metrics,
		opts:     opts,
		logger:   logger,
		now:      time.Now,
		chains:   make(map[string]*replyChain),
		base:     base,
		stop:     stop,
	}
}

// Open returns the user's conversation with a teacher, creating it with the
// teacher's greeting on first use.
func (s *ChatService) Open(ctx context.Context, userID, teacherID string) (*dto.ConversationView, error) {
	teacher, err := s.teachers.FindByID(ctx, teacherID)
	if err != nil {
		if notFound(err) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "teacher not found")
		}
		return nil, storageError(err, "failed to load teacher")
	}

	conv, err := s.convs.FindByParticipants(ctx, userID, teacherID)
	if err != nil && !notFound(err) {
		return nil, storageError(err, "failed to load conversation")
	}
	if conv == nil {
		now := s.now().UTC()
		conv = &models.Conversation{ID: uuid.NewString(), UserID: userID, TeacherID: teacherID, CreatedAt: now}
		greeting := &models.Message{
			ID:        uuid.NewString(),
			Text:      fmt.Sprintf("Olá! Sou %s. Como posso ajudá-lo hoje?", teacher.Name),
			Sender:    models.SenderTeacher,
			Timestamp: now.Add(-greetingOffset),
		}
		if err := s.convs.Create(ctx, conv, greeting); err != nil {
			// Lost a race with a concurrent open of the same pair.
			existing, findErr := s.convs.FindByParticipants(ctx, userID, teacherID)
			if findErr != nil {
				return nil, storageError(err, "failed to create conversation")
			}
			conv = existing
		}
	}
	return s.view(ctx, conv, teacher.Name)
}

// Get returns a conversation owned by userID.
func (s *ChatService) Get(ctx context.Context, conversationID, userID string) (*dto.ConversationView, error) {
	conv, err := s.load(ctx, conversationID, userID)
	if err != nil {
		return nil, err
	}
	name := ""
	if teacher, err := s.teachers.FindByID(ctx, conv.TeacherID); err == nil {
		name = teacher.Name
	}
	return s.view(ctx, conv, name)
}

// Send appends the user's message and schedules exactly one teacher reply.
func (s *ChatService) Send(ctx context.Context, conversationID, userID, text string) (*models.Message, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return nil, appErrors.Clone(appErrors.ErrValidation, "message text is required")
	}
	if len(text) > maxMessageLength {
		return nil, appErrors.Clone(appErrors.ErrValidation, "message text is too long")
	}
	conv, err := s.load(ctx, conversationID, userID)
	if err != nil {
		return nil, err
	}

	msg := &models.Message{
		ID:             uuid.NewString(),
		ConversationID: conv.ID,
		Text:           text,
		Sender:         models.SenderUser,
		Timestamp:      s.now().UTC(),
	}
	if err := s.convs.AppendMessage(ctx, msg); err != nil {
		return nil, storageError(err, "failed to store message")
	}
	s.metrics.RecordChatMessage(string(models.SenderUser))
	s.hub.Publish(dto.ChatEvent{Type: dto.ChatEventMessage, ConversationID: conv.ID, Message: msg})

	if s.scheduleReply(conv.ID) {
		s.hub.Publish(dto.ChatEvent{Type: dto.ChatEventTyping, ConversationID: conv.ID, Typing: true})
	}
	return msg, nil
}

// CancelPending drops every reply still pending on the conversation and
// returns how many were cancelled.
func (s *ChatService) CancelPending(ctx context.Context, conversationID, userID string) (int, error) {
	conv, err := s.load(ctx, conversationID, userID)
	if err != nil {
		return 0, err
	}
	s.mu.Lock()
	chain, ok := s.chains[conv.ID]
	cancelled := 0
	if ok {
		delete(s.chains, conv.ID)
		chain.cancel()
		cancelled = chain.pending
	}
	s.mu.Unlock()
	if !ok {
		return 0, nil
	}
	s.metrics.AddPendingReplies(-cancelled)
	s.hub.Publish(dto.ChatEvent{Type: dto.ChatEventTyping, ConversationID: conv.ID, Typing: false})
	s.logger.Debug("pending replies cancelled", zap.String("conversation_id", conv.ID), zap.Int("count", cancelled))
	return cancelled, nil
}

// Typing reports whether a teacher reply is pending on the conversation.
func (s *ChatService) Typing(conversationID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	chain, ok := s.chains[conversationID]
	return ok && chain.pending > 0
}

// Subscribe streams events of a conversation owned by userID.
func (s *ChatService) Subscribe(ctx context.Context, conversationID, userID string) (<-chan dto.ChatEvent, func(), error) {
	conv, err := s.load(ctx, conversationID, userID)
	if err != nil {
		return nil, nil, err
	}
	ch, cancel := s.hub.Subscribe(conv.ID)
	return ch, cancel, nil
}

// Close cancels every pending reply and waits for the reply goroutines.
func (s *ChatService) Close() {
	s.mu.Lock()
	if s.stopped {
		s.mu.Unlock()
		return
	}
	s.stopped = true
	pending := 0
	for id, chain := range s.chains {
		pending += chain.pending
		chain.cancel()
		delete(s.chains, id)
	}
	s.stop()
	s.mu.Unlock()

	s.wg.Wait()
	s.metrics.AddPendingReplies(-pending)
	s.hub.Close()
}

func (s *ChatService) scheduleReply(conversationID string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stopped {
		return false
	}
	chain, ok := s.chains[conversationID]
	if !ok {
		ctx, cancel := context.WithCancel(s.base)
		chain = &replyChain{ctx: ctx, cancel: cancel}
		s.chains[conversationID] = chain
	}
	prev := chain.tail
	done := make(chan struct{})
	chain.tail = done
	chain.pending++
	s.metrics.AddPendingReplies(1)

	s.wg.Add(1)
	go s.deliverReply(conversationID, chain, prev, done)
	return true
}

func (s *ChatService) deliverReply(conversationID string, chain *replyChain, prev <-chan struct{}, done chan struct{}) {
	defer s.wg.Done()
	defer close(done)

	timer := time.NewTimer(s.opts.ReplyDelay)
	defer timer.Stop()
	select {
	case <-chain.ctx.Done():
		return
	case <-timer.C:
	}
	if prev != nil {
		select {
		case <-chain.ctx.Done():
			return
		case <-prev:
		}
	}

	// A cancel either lands before this point or after the reply is stored.
	s.mu.Lock()
	defer s.mu.Unlock()
	if chain.ctx.Err() != nil {
		return
	}

	reply := &models.Message{
		ID:             uuid.NewString(),
		ConversationID: conversationID,
		Text:           s.opts.ReplyText,
		Sender:         models.SenderTeacher,
		Timestamp:      s.now().UTC(),
	}
	err := s.convs.AppendMessage(chain.ctx, reply)
	chain.pending--
	s.metrics.AddPendingReplies(-1)
	idle := chain.pending == 0
	if idle && s.chains[conversationID] == chain {
		delete(s.chains, conversationID)
		chain.cancel()
	}
	if err != nil {
		s.logger.Error("failed to store teacher reply", zap.String("conversation_id", conversationID), zap.Error(err))
	} else {
		s.metrics.RecordChatMessage(string(models.SenderTeacher))
		s.hub.Publish(dto.ChatEvent{Type: dto.ChatEventMessage, ConversationID: conversationID, Message: reply})
	}
	if idle {
		s.hub.Publish(dto.ChatEvent{Type: dto.ChatEventTyping, ConversationID: conversationID, Typing: false})
	}
}

func (s *ChatService) load(ctx context.Context, conversationID, userID string) (*models.Conversation, error) {
	conv, err := s.convs.FindByID(ctx, conversationID)
	if err != nil {
		if notFound(err) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "conversation not found")
		}
		return nil, storageError(err, "failed to load conversation")
	}
	if conv.UserID != userID {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "conversation not found")
	}
	return conv, nil
}

func (s *ChatService) view(ctx context.Context, conv *models.Conversation, teacherName string) (*dto.ConversationView, error) {
	messages, err := s.convs.ListMessages(ctx, conv.ID)
	if err != nil {
		return nil, storageError(err, "failed to load messages")
	}
	return &dto.ConversationView{
		Conversation:  *conv,
		TeacherName:   teacherName,
		Messages:      messages,
		TeacherTyping: s.Typing(conv.ID),
	}, nil
}
