package service

import (
	"sync"

	"github.com/noah-isme/discipulus-api/internal/dto"
)

const chatSubscriberBuffer = 16

// ChatHub fans conversation events out to stream subscribers. Slow
// subscribers miss events rather than block publishers.
type ChatHub struct {
	mu     sync.RWMutex
	subs   map[string]map[chan dto.ChatEvent]struct{}
	closed bool
}

// NewChatHub constructs an empty hub.
func NewChatHub() *ChatHub {
	return &ChatHub{subs: make(map[string]map[chan dto.ChatEvent]struct{})}
}

// Subscribe registers a listener for one conversation. The returned func
// unregisters it and closes the channel.
func (h *ChatHub) Subscribe(conversationID string) (<-chan dto.ChatEvent, func()) {
	ch := make(chan dto.ChatEvent, chatSubscriberBuffer)
	h.mu.Lock()
	if h.closed {
		h.mu.Unlock()
		close(ch)
		return ch, func() {}
	}
	if h.subs[conversationID] == nil {
		h.subs[conversationID] = make(map[chan dto.ChatEvent]struct{})
	}
	h.subs[conversationID][ch] = struct{}{}
	h.mu.Unlock()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			h.mu.Lock()
			defer h.mu.Unlock()
			if set, ok := h.subs[conversationID]; ok {
				if _, ok := set[ch]; ok {
					delete(set, ch)
					close(ch)
				}
				if len(set) == 0 {
					delete(h.subs, conversationID)
				}
			}
		})
	}
}

// Publish delivers evt to every subscriber of its conversation.
func (h *ChatHub) Publish(evt dto.ChatEvent) {
	if h == nil {
		return
	}
	h.mu.RLock()
	defer h.mu.RUnlock()
	for ch := range h.subs[evt.ConversationID] {
		select {
		case ch <- evt:
		default:
		}
	}
}

// Subscribers returns the number of listeners on a conversation.
func (h *ChatHub) Subscribers(conversationID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs[conversationID])
}

// Close disconnects every subscriber.
func (h *ChatHub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return
	}
	h.closed = true
	for id, set := range h.subs {
		for ch := range set {
			close(ch)
		}
		delete(h.subs, id)
	}
}
