package realtime

import "sync"

// Session is one subscribed board client. *Conn satisfies it; tests plug
// in fakes.
type Session interface {
	WriteJSON(v interface{}) error
	Close() error
}

// Event is the envelope relayed between board clients. Payloads pass
// through opaque; delivery is best effort with no ordering or persistence.
type Event struct {
	Event string      `json:"event"`
	Data  interface{} `json:"data,omitempty"`
}

const (
	// EventTaskChanged is what a client emits after mutating a task.
	EventTaskChanged = "task-changed"
	// EventTaskUpdated is what every other client in the room receives.
	EventTaskUpdated = "task-updated"
)

// BoardHub fans task change notifications out to the other clients
// connected to the same room. It is handed to whoever needs to publish,
// never looked up from ambient state.
type BoardHub struct {
	mu    sync.RWMutex
	rooms map[int64]map[Session]struct{}
}

func NewBoardHub() *BoardHub {
	return &BoardHub{
		rooms: make(map[int64]map[Session]struct{}),
	}
}

func (h *BoardHub) Register(roomID int64, sess Session) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.rooms[roomID] == nil {
		h.rooms[roomID] = make(map[Session]struct{})
	}
	h.rooms[roomID][sess] = struct{}{}
}

func (h *BoardHub) Unregister(roomID int64, sess Session) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if sessions, ok := h.rooms[roomID]; ok {
		delete(sessions, sess)
		if len(sessions) == 0 {
			delete(h.rooms, roomID)
		}
	}
	_ = sess.Close()
}

// BroadcastExcept relays data as a task-updated event to every session in
// the room except the sender. A nil sender reaches everyone, which is how
// server-side mutations publish.
func (h *BoardHub) BroadcastExcept(roomID int64, sender Session, data interface{}) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	event := Event{Event: EventTaskUpdated, Data: data}
	for sess := range h.rooms[roomID] {
		if sess == sender {
			continue
		}
		_ = sess.WriteJSON(event)
	}
}
