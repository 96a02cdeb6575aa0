package events

import (
	"encoding/json"
	"strconv"
	"time"
)

// Queue (and Kafka topic) names shared by producers and consumers.
const (
	CashbackQueue     = "cashback-queue"
	NotificationQueue = "notification-queue"

	deadLetterSuffix = "-dlq"
)

// DeadLetterQueue returns the dead-letter destination paired with a queue or topic.
func DeadLetterQueue(name string) string {
	return name + deadLetterSuffix
}

// CashbackMessage is published once per completed payment.
// EventID and TransactionID are optional; when EventID is set the cashback
// consumer deduplicates on it.
type CashbackMessage struct {
	EventID        string  `json:"eventId,omitempty"`
	TransactionID  string  `json:"transactionId,omitempty"`
	UserEmail      string  `json:"userEmail"`
	DealID         int64   `json:"dealId"`
	CashbackAmount float64 `json:"cashbackAmount"`
}

// NotificationMessage instructs the notification service to send an email.
type NotificationMessage struct {
	EventID   string `json:"eventId,omitempty"`
	Recipient string `json:"recipient"`
	Subject   string `json:"subject"`
	Message   string `json:"message"`
}

// DeadLetter wraps a message that could not be processed.
type DeadLetter struct {
	Source   string    `json:"source"`
	Payload  string    `json:"payload"`
	Reason   string    `json:"reason"`
	Attempts int       `json:"attempts"`
	FailedAt time.Time `json:"failedAt"`
}

// NewDeadLetter builds the dead-letter body for a failed message.
func NewDeadLetter(source, payload string, reason error, attempts int) ([]byte, error) {
	msg := ""
	if reason != nil {
		msg = reason.Error()
	}
	return json.Marshal(DeadLetter{
		Source:   source,
		Payload:  payload,
		Reason:   msg,
		Attempts: attempts,
		FailedAt: time.Now().UTC(),
	})
}

// snsEnvelope is the wrapper SNS adds when a topic fans out to SQS.
type snsEnvelope struct {
	Type    string `json:"Type"`
	Message string `json:"Message"`
}

// UnwrapSNS returns the inner message when body is an SNS notification,
// and body unchanged otherwise.
func UnwrapSNS(body string) string {
	var env snsEnvelope
	if err := json.Unmarshal([]byte(body), &env); err == nil && env.Message != "" && env.Type == "Notification" {
		return env.Message
	}
	return body
}

// FormatAmount renders an amount the way the notification copy expects:
// whole values keep one decimal ("5.0"), others use the shortest form ("2.75").
func FormatAmount(v float64) string {
	if v == float64(int64(v)) {
		return strconv.FormatFloat(v, 'f', 1, 64)
	}
	return strconv.FormatFloat(v, 'f', -1, 64)
}
