package amqp

import (
	"encoding/json"
	"time"
)

// Sync actions carried by an ExpenseSyncMessage.
const (
	ActionUpsert = "upsert"
	ActionDelete = "delete"
)

// ExpenseSyncMessage represents a lightweight message for syncing an expense to Google Sheets
// Contains only the ID and action, the worker will fetch the full expense from database
type ExpenseSyncMessage struct {
	ID        string    `json:"id"`
	Action    string    `json:"action"`
	Timestamp time.Time `json:"timestamp"`
}

// NewExpenseSyncMessage creates a new sync message with just ID and action
func NewExpenseSyncMessage(id, action string) *ExpenseSyncMessage {
	return &ExpenseSyncMessage{
		ID:        id,
		Action:    action,
		Timestamp: time.Now(),
	}
}

// ToJSON converts the message to JSON bytes
func (m *ExpenseSyncMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// FromJSON creates a message from JSON bytes
func ExpenseSyncMessageFromJSON(data []byte) (*ExpenseSyncMessage, error) {
	var msg ExpenseSyncMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
