package events

import (
	"context"
	"sync"

	"go.uber.org/zap"
)

// Conn is the minimal interface a WebSocket connection must satisfy.
type Conn interface {
	WriteJSON(v interface{}) error
	Close() error
}

// subscriberBuffer is how many events may queue for a slow connection
// before further events to it are dropped.
const subscriberBuffer = 16

// subscriber owns a single writer goroutine, so FanOut never waits on a
// socket.
type subscriber struct {
	conn Conn
	send chan Event
	done chan struct{}
}

func (s *subscriber) writeLoop(log *zap.SugaredLogger, userID int64) {
	for {
		select {
		case <-s.done:
			return
		case ev := <-s.send:
			if err := s.conn.WriteJSON(ev); err != nil {
				log.Warnw("error writing event to websocket", "user_id", userID, "error", err)
			}
		}
	}
}

// Hub tracks the local connections of each user.
type Hub struct {
	log *zap.SugaredLogger

	mu   sync.RWMutex
	subs map[int64]map[*subscriber]struct{}
}

func NewHub(log *zap.SugaredLogger) *Hub {
	return &Hub{log: log, subs: make(map[int64]map[*subscriber]struct{})}
}

// Register adds conn to the user's subscriptions and returns the function
// that removes it again.
func (h *Hub) Register(userID int64, conn Conn) func() {
	s := &subscriber{
		conn: conn,
		send: make(chan Event, subscriberBuffer),
		done: make(chan struct{}),
	}

	h.mu.Lock()
	if h.subs[userID] == nil {
		h.subs[userID] = make(map[*subscriber]struct{})
	}
	h.subs[userID][s] = struct{}{}
	h.mu.Unlock()

	go s.writeLoop(h.log, userID)

	var once sync.Once
	return func() {
		once.Do(func() {
			h.mu.Lock()
			delete(h.subs[userID], s)
			if len(h.subs[userID]) == 0 {
				delete(h.subs, userID)
			}
			h.mu.Unlock()
			close(s.done)
		})
	}
}

// Connections returns how many local connections the user has open.
func (h *Hub) Connections(userID int64) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.subs[userID])
}

// FanOut queues an event for every local connection of its user. It never
// blocks: a connection whose queue is full misses the event.
func (h *Hub) FanOut(event Event) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for s := range h.subs[event.UserID] {
		select {
		case s.send <- event:
		default:
			h.log.Warnw("websocket subscriber too slow, dropping event", "user_id", event.UserID)
		}
	}
}

// Publish delivers to local connections only. Used when there is no broker.
func (h *Hub) Publish(_ context.Context, event Event) error {
	h.FanOut(event)
	return nil
}
