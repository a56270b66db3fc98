package realtime

import (
	"encoding/json"
	"time"
)

// MessageType names a websocket frame.
type MessageType string

const (
	// EventSyncAvailable tells clients that new deliveries are waiting in their sync queue.
	EventSyncAvailable MessageType = "sync.available"
	// EventChangesProcessed tells clients that submitted offline changes were replayed.
	EventChangesProcessed MessageType = "changes.processed"

	TypePing  MessageType = "ping"
	TypePong  MessageType = "pong"
	TypeError MessageType = "error"
)

// Message is the envelope of every frame exchanged over the socket.
type Message struct {
	Type      MessageType     `json:"type"`
	Timestamp time.Time       `json:"timestamp"`
	Payload   json.RawMessage `json:"payload,omitempty"`
}

// SyncAvailablePayload accompanies EventSyncAvailable.
type SyncAvailablePayload struct {
	Created int `json:"created"`
}

// ChangesProcessedPayload accompanies EventChangesProcessed.
type ChangesProcessedPayload struct {
	Applied int `json:"applied"`
	Failed  int `json:"failed"`
	Skipped int `json:"skipped"`
}

type errorPayload struct {
	Message string `json:"message"`
}

// NewMessage builds a message, marshalling payload when it is not nil.
func NewMessage(t MessageType, payload any) (*Message, error) {
	var raw json.RawMessage
	if payload != nil {
		b, err := json.Marshal(payload)
		if err != nil {
			return nil, err
		}
		raw = b
	}

	return &Message{
		Type:      t,
		Timestamp: time.Now().UTC(),
		Payload:   raw,
	}, nil
}

func encode(t MessageType, payload any) ([]byte, error) {
	msg, err := NewMessage(t, payload)
	if err != nil {
		return nil, err
	}
	return json.Marshal(msg)
}
