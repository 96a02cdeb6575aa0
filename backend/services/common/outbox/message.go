package outbox

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

type Status string

const (
	StatusPending Status = "PENDING"
	StatusSent    Status = "SENT"
	StatusFailed  Status = "FAILED"
)

// Message is a row written in the same transaction as the state change it
// announces, and published later by a Relay.
type Message struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey"`
	AggregateID  string    `gorm:"type:varchar(128);index"`
	Destination  string    `gorm:"type:varchar(512);not null"`
	PartitionKey string    `gorm:"type:varchar(255)"`
	Payload      []byte    `gorm:"type:jsonb;not null"`
	Status       Status    `gorm:"type:varchar(16);not null;index"`
	Attempts     int       `gorm:"not null"`
	LastError    string    `gorm:"type:text"`
	CreatedAt    time.Time `gorm:"index"`
	SentAt       *time.Time
}

func (Message) TableName() string { return "outbox_messages" }

// NewMessage encodes payload as JSON into a pending message.
func NewMessage(aggregateID, destination, key string, payload interface{}) (Message, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return Message{}, fmt.Errorf("failed to encode outbox payload: %w", err)
	}
	return Message{
		ID:           uuid.New(),
		AggregateID:  aggregateID,
		Destination:  destination,
		PartitionKey: key,
		Payload:      body,
		Status:       StatusPending,
	}, nil
}
