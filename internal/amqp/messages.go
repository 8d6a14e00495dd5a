package amqp

import (
	"encoding/json"
	"time"
)

// TableChangedMessage announces that rows in a table changed for one owner.
// Consumers refetch whatever they derived from that table; the message
// deliberately carries no row data.
type TableChangedMessage struct {
	Table      string    `json:"table"`
	OwnerID    string    `json:"owner_id"`
	Op         string    `json:"op"`
	OccurredAt time.Time `json:"occurred_at"`
}

// NewTableChangedMessage creates a change notification for a table mutation
func NewTableChangedMessage(table, ownerID, op string) *TableChangedMessage {
	return &TableChangedMessage{
		Table:      table,
		OwnerID:    ownerID,
		Op:         op,
		OccurredAt: time.Now(),
	}
}

// ToJSON converts the message to JSON bytes
func (m *TableChangedMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// TableChangedMessageFromJSON creates a message from JSON bytes
func TableChangedMessageFromJSON(data []byte) (*TableChangedMessage, error) {
	var msg TableChangedMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
