package notifier

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/mealmart/mealmart/internal/logger"
	"github.com/nats-io/nats.go"
	"go.uber.org/zap"
)

const (
	bridgeSubjectPrefix = "mealmart.rooms."
	originHeader        = "Mealmart-Origin"
)

// Bridge republishes hub events over NATS and injects events published by
// other server instances into the local hub. It makes fanout reach clients
// connected to any instance; single-instance deployments run without it.
type Bridge struct {
	nc *nats.Conn
	id string
}

// NewBridge connects to NATS at url
func NewBridge(url string) (*Bridge, error) {
	nc, err := nats.Connect(url,
		nats.Name("mealmart notifier"),
		nats.MaxReconnects(5),
		nats.ReconnectWait(2*time.Second),
		nats.DisconnectErrHandler(func(nc *nats.Conn, err error) {
			logger.Log.Warn("NATS disconnected", zap.Error(err))
		}),
		nats.ReconnectHandler(func(nc *nats.Conn) {
			logger.Log.Info("NATS reconnected", zap.String("url", nc.ConnectedUrl()))
		}),
	)
	if err != nil {
		return nil, fmt.Errorf("connect to NATS: %w", err)
	}

	return &Bridge{nc: nc, id: uuid.NewString()}, nil
}

// Publish sends raw event data of a room to the other instances
func (b *Bridge) Publish(room string, data []byte) error {
	msg := nats.NewMsg(bridgeSubjectPrefix + room)
	msg.Header.Set(originHeader, b.id)
	msg.Data = data

	if err := b.nc.PublishMsg(msg); err != nil {
		return err
	}

	return b.nc.FlushTimeout(2 * time.Second)
}

// Subscribe feeds events published by other instances into hub
func (b *Bridge) Subscribe(hub *Hub) error {
	_, err := b.nc.Subscribe(bridgeSubjectPrefix+">", func(msg *nats.Msg) {
		if msg.Header.Get(originHeader) == b.id {
			// own publication echoed back
			return
		}
		room := msg.Subject[len(bridgeSubjectPrefix):]
		hub.broadcast(room, msg.Data)
	})
	return err
}

// Close closes the NATS connection
func (b *Bridge) Close() {
	if b.nc != nil && b.nc.IsConnected() {
		b.nc.Close()
	}
}

// BridgedNotifier emits into the local hub and republishes over the bridge.
type BridgedNotifier struct {
	hub    *Hub
	bridge *Bridge
}

// WithBridge wraps hub so every emit also reaches other instances
func WithBridge(hub *Hub, bridge *Bridge) *BridgedNotifier {
	return &BridgedNotifier{hub: hub, bridge: bridge}
}

// Emit delivers the event locally and, best-effort, to the other instances
func (n *BridgedNotifier) Emit(room string, event string, payload any) {
	data, err := json.Marshal(Event{Name: event, Payload: payload})
	if err != nil {
		logger.Log.Error("marshal event", zap.String("event", event), zap.Error(err))
		return
	}

	n.hub.broadcast(room, data)

	if err := n.bridge.Publish(room, data); err != nil {
		logger.Log.Warn("publish event to bridge", zap.String("room", room), zap.Error(err))
	}
}
