package session

import "sync"

// Event is one session notification fanned out to subscribers.
type Event struct {
	SceneID string `json:"scene_id"`
	// UserIDs restricts delivery. Empty means every subscriber of the scene.
	UserIDs []string `json:"user_ids,omitempty"`
	Type    string   `json:"type"`
	Payload any      `json:"payload,omitempty"`
}

// Event types published by the service.
const (
	EventWorkflowStarted = "workflow.started"
	EventWorkflowUpdated = "workflow.updated"
	EventDiceBroadcast   = "dice.broadcast"
)

type subscriber struct {
	userID string
	ch     chan Event
}

// Hub is an in-memory fanout of session events. Delivery is best-effort:
// a subscriber with a full buffer misses the event rather than blocking
// the publisher.
type Hub struct {
	mu   sync.RWMutex
	subs map[string][]subscriber
}

// NewHub creates an empty hub.
func NewHub() *Hub {
	return &Hub{subs: make(map[string][]subscriber)}
}

// Subscribe registers a listener for one scene. The returned cancel func
// removes the subscription and closes the channel.
func (h *Hub) Subscribe(sceneID, userID string, buffer int) (<-chan Event, func()) {
	if buffer <= 0 {
		buffer = 16
	}
	sub := subscriber{userID: userID, ch: make(chan Event, buffer)}

	h.mu.Lock()
	h.subs[sceneID] = append(h.subs[sceneID], sub)
	h.mu.Unlock()

	cancel := func() {
		h.mu.Lock()
		defer h.mu.Unlock()
		list := h.subs[sceneID]
		for i, s := range list {
			if s.ch == sub.ch {
				h.subs[sceneID] = append(list[:i], list[i+1:]...)
				close(s.ch)
				return
			}
		}
	}
	return sub.ch, cancel
}

// Publish delivers the event to matching subscribers of its scene.
func (h *Hub) Publish(ev Event) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for _, sub := range h.subs[ev.SceneID] {
		if len(ev.UserIDs) > 0 && !containsUser(ev.UserIDs, sub.userID) {
			continue
		}
		select {
		case sub.ch <- ev:
		default:
		}
	}
}

func containsUser(ids []string, userID string) bool {
	for _, id := range ids {
		if id == userID {
			return true
		}
	}
	return false
}
