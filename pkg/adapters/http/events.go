package http

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"sync"

	"github.com/aretw0/dsg/pkg/domain"
)

const (
	// TopicUpdate carries UpdateEvent payloads at the end of every refresh.
	TopicUpdate = "update"
	// TopicPart carries PartEvent payloads for every finalized part.
	TopicPart = "part"
)

// StreamManager handles active SSE connections.
type StreamManager struct {
	mu          sync.RWMutex
	subscribers map[string]map[chan string]struct{}
	logger      *slog.Logger
}

// NewStreamManager creates an empty manager.
func NewStreamManager(logger *slog.Logger) *StreamManager {
	if logger == nil {
		logger = slog.Default()
	}
	return &StreamManager{
		subscribers: make(map[string]map[chan string]struct{}),
		logger:      logger,
	}
}

// Subscribe registers a channel for topic. The returned func unsubscribes
// and closes the channel.
func (sm *StreamManager) Subscribe(topic string) (chan string, func()) {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	ch := make(chan string, 10)
	if sm.subscribers[topic] == nil {
		sm.subscribers[topic] = make(map[chan string]struct{})
	}
	sm.subscribers[topic][ch] = struct{}{}

	return ch, func() {
		sm.mu.Lock()
		defer sm.mu.Unlock()
		if _, ok := sm.subscribers[topic][ch]; !ok {
			return
		}
		delete(sm.subscribers[topic], ch)
		close(ch)
		if len(sm.subscribers[topic]) == 0 {
			delete(sm.subscribers, topic)
		}
	}
}

// Subscribers reports how many clients listen on topic.
func (sm *StreamManager) Subscribers(topic string) int {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	return len(sm.subscribers[topic])
}

// Broadcast sends msg to every subscriber of topic. Slow clients lose messages.
func (sm *StreamManager) Broadcast(topic string, msg string) {
	sm.mu.RLock()
	defer sm.mu.RUnlock()

	for ch := range sm.subscribers[topic] {
		select {
		case ch <- msg:
		default:
			sm.logger.Warn("SSE: client buffer full, dropping message", "topic", topic)
		}
	}
}

// Hooks returns lifecycle hooks that broadcast update and part events.
func (sm *StreamManager) Hooks() domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnPartFinalized: func(ctx context.Context, ev *domain.PartEvent) {
			sm.broadcastJSON(TopicPart, ev)
		},
		OnUpdateEnd: func(ctx context.Context, ev *domain.UpdateEvent) {
			sm.broadcastJSON(TopicUpdate, ev)
		},
	}
}

func (sm *StreamManager) broadcastJSON(topic string, v any) {
	data, err := json.Marshal(v)
	if err != nil {
		sm.logger.Error("SSE: failed to marshal event", "topic", topic, "error", err)
		return
	}
	sm.Broadcast(topic, string(data))
}

// SubscribeEvents handles GET /events (SSE). The topic query parameter
// selects "update" (default) or "part".
func (s *Server) SubscribeEvents(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		http.Error(w, "Streaming not supported", http.StatusInternalServerError)
		return
	}
	topic := r.URL.Query().Get("topic")
	if topic == "" {
		topic = TopicUpdate
	}
	if topic != TopicUpdate && topic != TopicPart {
		http.Error(w, "unknown topic", http.StatusBadRequest)
		return
	}

	ch, cancel := s.Streams.Subscribe(topic)
	defer cancel()

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	fmt.Fprintf(w, "event: ping\ndata: connected\n\n")
	flusher.Flush()

	for {
		select {
		case <-r.Context().Done():
			s.Logger.Debug("SSE client disconnected", "topic", topic)
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			fmt.Fprintf(w, "event: %s\ndata: %s\n\n", topic, msg)
			flusher.Flush()
		}
	}
}
