// Package sender delivers rendered notifications over a concrete channel.
package sender

import (
	"context"
	"time"
)

// SendResult identifies an accepted message.
type SendResult struct {
	MessageID string
	SentAt    time.Time
}

// EmailSender delivers subject and body to one address as-is. Implementations
// return an error only when the message was not accepted for delivery.
type EmailSender interface {
	SendEmail(ctx context.Context, to, subject, body string) (SendResult, error)
}
