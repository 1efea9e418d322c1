package amqp

import (
	"encoding/json"
	"time"

	"safisha/internal/sheets"
)

// EntryMirrorMessage carries a full sheet entry, so the worker can append it
// without reading the primary store.
type EntryMirrorMessage struct {
	Entry     sheets.Entry `json:"entry"`
	Timestamp time.Time    `json:"timestamp"`
}

func NewEntryMirrorMessage(e sheets.Entry) *EntryMirrorMessage {
	return &EntryMirrorMessage{
		Entry:     e,
		Timestamp: time.Now(),
	}
}

// ToJSON converts the message to JSON bytes
func (m *EntryMirrorMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// EntryMirrorMessageFromJSON creates a message from JSON bytes
func EntryMirrorMessageFromJSON(data []byte) (*EntryMirrorMessage, error) {
	var msg EntryMirrorMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
