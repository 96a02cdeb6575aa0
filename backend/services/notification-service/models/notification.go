package models

import "time"

const (
	ChannelEmail = "email"

	StatusSent   = "sent"
	StatusFailed = "failed"
)

// NotificationLog records the outcome of one delivery.
type NotificationLog struct {
	ID        int64     `json:"id" gorm:"primaryKey;autoIncrement"`
	EventID   string    `json:"event_id,omitempty" gorm:"type:varchar(255);index"`
	Recipient string    `json:"recipient" gorm:"type:varchar(255);index"`
	Subject   string    `json:"subject"`
	Channel   string    `json:"channel" gorm:"type:varchar(16)"`
	Status    string    `json:"status" gorm:"type:varchar(16);index"`
	MessageID string    `json:"message_id,omitempty"`
	Error     string    `json:"error,omitempty"`
	Attempts  int       `json:"attempts"`
	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
}

type NotificationFilter struct {
	Recipient string
	Status    string
	Channel   string
	Page      int
	PageSize  int
}
