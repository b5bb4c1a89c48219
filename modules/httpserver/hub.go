package httpserver

import (
	"context"
	"sync"

	"github.com/go-monolith/mono/pkg/types"
	"github.com/google/uuid"
)

// Progress feed message types, used as SSE event names.
const (
	MessageOffered   = "offered"
	MessageStarted   = "started"
	MessageProgress  = "progress"
	MessageCompleted = "completed"
)

// subscriberBuffer bounds how far a slow subscriber may lag before messages
// are dropped for it.
const subscriberBuffer = 32

// Message is a single progress feed entry.
type Message struct {
	Type    string
	Payload any
}

// Subscriber receives progress feed messages until it is unsubscribed or the
// hub stops, at which point its channel is closed.
type Subscriber struct {
	ID       string
	messages chan Message
}

// Messages returns the subscriber's receive channel.
func (s *Subscriber) Messages() <-chan Message {
	return s.messages
}

// Hub fans staging events out to progress feed subscribers. All subscriber
// bookkeeping happens on the Run goroutine.
type Hub struct {
	subscribers map[string]*Subscriber
	register    chan *Subscriber
	unregister  chan *Subscriber
	broadcast   chan Message
	done        chan struct{}
	mu          sync.RWMutex
	logger      types.Logger
}

// NewHub creates a new Hub.
func NewHub(logger types.Logger) *Hub {
	return &Hub{
		subscribers: make(map[string]*Subscriber),
		register:    make(chan *Subscriber),
		unregister:  make(chan *Subscriber),
		broadcast:   make(chan Message, 256),
		done:        make(chan struct{}),
		logger:      logger,
	}
}

// Run starts the hub's main loop and returns when ctx is done.
func (h *Hub) Run(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			h.logger.Debug("Progress hub shutting down")
			h.closeAll()
			close(h.done)
			return
		case sub := <-h.register:
			h.handleRegister(sub)
		case sub := <-h.unregister:
			h.handleUnregister(sub)
		case msg := <-h.broadcast:
			h.handleBroadcast(msg)
		}
	}
}

// Wait blocks until the hub has stopped.
func (h *Hub) Wait() {
	<-h.done
}

// Subscribe registers a new subscriber. It returns false once the hub has stopped.
func (h *Hub) Subscribe() (*Subscriber, bool) {
	sub := &Subscriber{
		ID:       uuid.New().String(),
		messages: make(chan Message, subscriberBuffer),
	}
	select {
	case h.register <- sub:
		return sub, true
	case <-h.done:
		return nil, false
	}
}

// Unsubscribe removes a subscriber and closes its channel.
func (h *Hub) Unsubscribe(sub *Subscriber) {
	select {
	case h.unregister <- sub:
	case <-h.done:
	}
}

// Broadcast queues a message for every subscriber. It is a no-op after the
// hub has stopped.
func (h *Hub) Broadcast(msgType string, payload any) {
	select {
	case h.broadcast <- Message{Type: msgType, Payload: payload}:
	case <-h.done:
	}
}

// SubscriberCount returns the number of connected subscribers.
func (h *Hub) SubscriberCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subscribers)
}

func (h *Hub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()

	for _, sub := range h.subscribers {
		close(sub.messages)
	}
	h.subscribers = make(map[string]*Subscriber)
}

func (h *Hub) handleRegister(sub *Subscriber) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.subscribers[sub.ID] = sub
	h.logger.Debug("Progress subscriber registered", "subscriberID", sub.ID)
}

func (h *Hub) handleUnregister(sub *Subscriber) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.subscribers[sub.ID]; ok {
		delete(h.subscribers, sub.ID)
		close(sub.messages)
		h.logger.Debug("Progress subscriber unregistered", "subscriberID", sub.ID)
	}
}

func (h *Hub) handleBroadcast(msg Message) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for _, sub := range h.subscribers {
		select {
		case sub.messages <- msg:
		default:
			h.logger.Warn("Dropping progress message for slow subscriber",
				"subscriberID", sub.ID,
				"type", msg.Type)
		}
	}
}
