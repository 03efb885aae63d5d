// Package notifier delivers order-lifecycle events to connected clients.
// Delivery is best-effort: events sent while a client is offline are dropped,
// persisted order state remains the source of truth and clients re-fetch it.
package notifier

import (
	"encoding/json"
	"sync"

	"github.com/mealmart/mealmart/internal/logger"
	"github.com/mealmart/mealmart/internal/models"
	"go.uber.org/zap"
)

// room buffer per connection; a consumer that falls this far behind loses events
const sessionBufferSize = 16

// CustomerRoom returns the fanout room of a customer.
func CustomerRoom(customerID string) string {
	return "customer-" + customerID
}

// VendorRoom returns the fanout room of a vendor.
func VendorRoom(vendorID string) string {
	return "vendor-" + vendorID
}

// Event is the wire envelope pushed to clients.
type Event struct {
	Name    string `json:"event"`
	Payload any    `json:"payload"`
}

// Session is one connected client inside a room. The transport reads outgoing
// frames from C; the channel is closed when the session leaves the hub.
type Session struct {
	room string
	send chan []byte
}

// C returns the channel of outgoing frames.
func (s *Session) C() <-chan []byte {
	return s.send
}

// Hub maps rooms to live sessions and fans events out to them.
type Hub struct {
	mu    sync.Mutex
	rooms map[string]map[*Session]struct{}
}

// NewHub creates an empty hub
func NewHub() *Hub {
	return &Hub{rooms: make(map[string]map[*Session]struct{})}
}

// Join registers a new session in the room of the given role and owner.
// A user with several simultaneous connections holds several sessions in the
// same room and receives every event on all of them.
func (h *Hub) Join(role models.Role, ownerID string) *Session {
	room := string(role) + "-" + ownerID

	s := &Session{
		room: room,
		send: make(chan []byte, sessionBufferSize),
	}

	h.mu.Lock()
	defer h.mu.Unlock()

	sessions, ok := h.rooms[room]
	if !ok {
		sessions = make(map[*Session]struct{})
		h.rooms[room] = sessions
	}
	sessions[s] = struct{}{}

	logger.Log.Debug("session joined room", zap.String("room", room))
	return s
}

// Leave removes the session from its room and closes its channel. Safe to call
// more than once; the transport must call it on every disconnect path.
func (h *Hub) Leave(s *Session) {
	h.mu.Lock()
	defer h.mu.Unlock()

	sessions, ok := h.rooms[s.room]
	if !ok {
		return
	}
	if _, ok := sessions[s]; !ok {
		return
	}

	delete(sessions, s)
	if len(sessions) == 0 {
		delete(h.rooms, s.room)
	}
	close(s.send)

	logger.Log.Debug("session left room", zap.String("room", s.room))
}

// Emit delivers the event to every session currently in the room. Emits to an
// empty room are silent no-ops. Emit order is preserved per room.
func (h *Hub) Emit(room string, event string, payload any) {
	data, err := json.Marshal(Event{Name: event, Payload: payload})
	if err != nil {
		logger.Log.Error("marshal event", zap.String("event", event), zap.Error(err))
		return
	}

	h.broadcast(room, data)
}

func (h *Hub) broadcast(room string, data []byte) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for s := range h.rooms[room] {
		select {
		case s.send <- data:
		default:
			// slow consumer, drop the event for it
			logger.Log.Debug("dropping event for slow session", zap.String("room", room))
		}
	}
}
