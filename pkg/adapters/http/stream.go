package http

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"sync"

	"github.com/go-chi/chi/v5"
	"github.com/nexsupply/nexi/internal/logging"
	"github.com/nexsupply/nexi/pkg/domain"
)

// Event is pushed to the subscribers of a conversation after every change.
type Event struct {
	Type           string           `json:"type"`
	ConversationID string           `json:"conversation_id"`
	NodeID         string           `json:"current_node_id"`
	Status         domain.Status    `json:"status"`
	Messages       []domain.Message `json:"messages,omitempty"`
}

// Event types.
const (
	EventAnswered = "answered"
	EventRevised  = "revised"
	EventDeleted  = "deleted"
)

// StreamManager handles active SSE connections
type StreamManager struct {
	mu          sync.RWMutex
	subscribers map[string]map[chan<- string]struct{} // ConversationID -> set of channels
	logger      *slog.Logger
}

func NewStreamManager(logger *slog.Logger) *StreamManager {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &StreamManager{
		subscribers: make(map[string]map[chan<- string]struct{}),
		logger:      logger,
	}
}

func (sm *StreamManager) Subscribe(conversationID string) (chan string, func()) {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	ch := make(chan string, 10)
	if _, ok := sm.subscribers[conversationID]; !ok {
		sm.subscribers[conversationID] = make(map[chan<- string]struct{})
	}
	sm.subscribers[conversationID][ch] = struct{}{}

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			sm.mu.Lock()
			defer sm.mu.Unlock()
			if subs, ok := sm.subscribers[conversationID]; ok {
				delete(subs, ch)
				close(ch)
				if len(subs) == 0 {
					delete(sm.subscribers, conversationID)
				}
			}
		})
	}
}

// Subscribers returns the number of open streams of a conversation.
func (sm *StreamManager) Subscribers(conversationID string) int {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	return len(sm.subscribers[conversationID])
}

func (sm *StreamManager) Broadcast(conversationID string, msg string) {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	for ch := range sm.subscribers[conversationID] {
		select {
		case ch <- msg:
		default:
			// Slow client.
			sm.logger.Warn("SSE: client buffer full, dropping message", "conversation_id", conversationID)
		}
	}
}

// Publish encodes ev and broadcasts it to the conversation's subscribers.
func (sm *StreamManager) Publish(ev Event) {
	data, err := json.Marshal(ev)
	if err != nil {
		sm.logger.Error("SSE: event encode failed", "conversation_id", ev.ConversationID, "err", err)
		return
	}
	sm.Broadcast(ev.ConversationID, string(data))
}

// SubscribeEvents handles the GET /conversations/{id}/events request (SSE).
func (s *Server) SubscribeEvents(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "Streaming not supported", http.StatusInternalServerError)
		s.logger.Error("SubscribeEvents: streaming not supported")
		return
	}

	id := chi.URLParam(r, "id")
	if _, err := s.svc.Conversation(r.Context(), id); err != nil {
		s.respondError(w, r, "", err)
		return
	}

	ch, cancel := s.streams.Subscribe(id)
	defer cancel()
	s.logger.Info("SSE: subscribed", "conversation_id", id)

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	fmt.Fprintf(w, "event: ping\ndata: connected\n\n")
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			s.logger.Info("SSE: client disconnected", "conversation_id", id)
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			fmt.Fprintf(w, "data: %s\n\n", msg)
			flusher.Flush()
		}
	}
}
