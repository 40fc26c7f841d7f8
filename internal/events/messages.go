package events

import (
	"encoding/json"
	"time"
)

// CollectionChangedMessage announces that a named collection snapshot
// was persisted. Consumers re-read the snapshot from the store; the
// message itself carries no records.
type CollectionChangedMessage struct {
	Key       string    `json:"key"`
	Count     int       `json:"count"`
	Timestamp time.Time `json:"timestamp"`
}

func NewCollectionChangedMessage(key string, count int) *CollectionChangedMessage {
	return &CollectionChangedMessage{
		Key:       key,
		Count:     count,
		Timestamp: time.Now(),
	}
}

// ToJSON converts the message to JSON bytes
func (m *CollectionChangedMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// CollectionChangedMessageFromJSON creates a message from JSON bytes
func CollectionChangedMessageFromJSON(data []byte) (*CollectionChangedMessage, error) {
	var msg CollectionChangedMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
