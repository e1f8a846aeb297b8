package server

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"time"
)

const (
	// sseRingBufferSize is the number of recent events kept for
	// Last-Event-ID replay.
	sseRingBufferSize = 1000

	sseKeepaliveInterval = 15 * time.Second
	sseClientBuffer      = 64
)

// sseEvent is one entry of the replay ring and one frame on the wire.
type sseEvent struct {
	ID    uint64
	Topic string
	Data  []byte // JSON-encoded payload
}

// sseHub fans mutations out to connected event-stream clients and keeps a
// fixed-size ring of recent events for reconnecting clients.
type sseHub struct {
	mu      sync.Mutex
	clients map[*sseClient]struct{}
	nextID  uint64
	ring    []sseEvent
	ringPos int
}

// sseClient is a single connected consumer.
type sseClient struct {
	topics []string // NATS-style patterns; empty matches all
	ch     chan sseEvent
}

func newSSEHub() *sseHub {
	return &sseHub{
		clients: make(map[*sseClient]struct{}),
		ring:    make([]sseEvent, 0, sseRingBufferSize),
	}
}

// broadcast assigns the next event ID, stores the event and delivers it to
// every matching client. Slow clients drop events rather than block
// mutations.
func (h *sseHub) broadcast(topic string, payload []byte) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.nextID++
	evt := sseEvent{ID: h.nextID, Topic: topic, Data: payload}
	if len(h.ring) < sseRingBufferSize {
		h.ring = append(h.ring, evt)
	} else {
		h.ring[h.ringPos] = evt
		h.ringPos = (h.ringPos + 1) % sseRingBufferSize
	}

	for c := range h.clients {
		if !c.matchesTopic(topic) {
			continue
		}
		select {
		case c.ch <- evt:
		default:
		}
	}
}

// subscribe registers a client and returns it with the buffered events
// newer than lastID, so replay and live delivery cannot overlap or gap.
func (h *sseHub) subscribe(topics []string, lastID uint64) (*sseClient, []sseEvent) {
	c := &sseClient{topics: topics, ch: make(chan sseEvent, sseClientBuffer)}

	h.mu.Lock()
	defer h.mu.Unlock()
	h.clients[c] = struct{}{}

	if lastID == 0 {
		return c, nil
	}
	var replay []sseEvent
	for i := range h.ring {
		evt := h.ring[(h.ringPos+i)%len(h.ring)]
		if evt.ID > lastID && c.matchesTopic(evt.Topic) {
			replay = append(replay, evt)
		}
	}
	return c, replay
}

func (h *sseHub) unsubscribe(c *sseClient) {
	h.mu.Lock()
	delete(h.clients, c)
	h.mu.Unlock()
}

func (h *sseHub) clientCount() int {
	h.mu.Lock()
	defer h.mu.Unlock()
	return len(h.clients)
}

func (c *sseClient) matchesTopic(topic string) bool {
	if len(c.topics) == 0 {
		return true
	}
	for _, pattern := range c.topics {
		if matchTopicPattern(pattern, topic) {
			return true
		}
	}
	return false
}

// matchTopicPattern matches a dot-separated topic against a pattern with
// "*" as a single-segment wildcard and a trailing ">" matching one or more
// remaining segments.
func matchTopicPattern(pattern, topic string) bool {
	if pattern == topic {
		return true
	}
	patParts := strings.Split(pattern, ".")
	topParts := strings.Split(topic, ".")
	for i, pp := range patParts {
		if pp == ">" {
			return i < len(topParts)
		}
		if i >= len(topParts) {
			return false
		}
		if pp != "*" && pp != topParts[i] {
			return false
		}
	}
	return len(patParts) == len(topParts)
}

// lastEventID reads the replay position from the Last-Event-ID header, or
// the last_event_id query parameter for clients that cannot set headers.
func lastEventID(r *http.Request) uint64 {
	raw := r.Header.Get("Last-Event-ID")
	if raw == "" {
		raw = r.URL.Query().Get("last_event_id")
	}
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		return 0
	}
	return id
}

// handleEventStream handles GET /v1/events/stream?topics=flock.item.>,...
func (s *Server) handleEventStream(w http.ResponseWriter, r *http.Request) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		writeError(w, http.StatusInternalServerError, "streaming not supported")
		return
	}

	var topics []string
	if q := r.URL.Query().Get("topics"); q != "" {
		for _, t := range strings.Split(q, ",") {
			if t = strings.TrimSpace(t); t != "" {
				topics = append(topics, t)
			}
		}
	}

	client, replay := s.sseHub.subscribe(topics, lastEventID(r))
	defer s.sseHub.unsubscribe(client)

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.Header().Set("X-Accel-Buffering", "no")
	w.WriteHeader(http.StatusOK)
	for _, evt := range replay {
		writeSSEEvent(w, evt)
	}
	flusher.Flush()

	keepalive := time.NewTicker(sseKeepaliveInterval)
	defer keepalive.Stop()

	ctx := r.Context()
	for {
		select {
		case <-ctx.Done():
			return
		case evt := <-client.ch:
			writeSSEEvent(w, evt)
			flusher.Flush()
		case <-keepalive.C:
			fmt.Fprint(w, ":keepalive\n\n")
			flusher.Flush()
		}
	}
}

func writeSSEEvent(w http.ResponseWriter, evt sseEvent) {
	fmt.Fprintf(w, "id:%d\nevent:%s\ndata:%s\n\n", evt.ID, evt.Topic, evt.Data)
}
