package aws

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/Arpita030/deals-App/backend/pkg/events"
	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/aws/aws-sdk-go-v2/service/sqs/types"
	"go.uber.org/zap"
)

// sqsAPI is the subset of the SQS client used here.
type sqsAPI interface {
	ReceiveMessage(ctx context.Context, params *sqs.ReceiveMessageInput, optFns ...func(*sqs.Options)) (*sqs.ReceiveMessageOutput, error)
	DeleteMessage(ctx context.Context, params *sqs.DeleteMessageInput, optFns ...func(*sqs.Options)) (*sqs.DeleteMessageOutput, error)
	SendMessage(ctx context.Context, params *sqs.SendMessageInput, optFns ...func(*sqs.Options)) (*sqs.SendMessageOutput, error)
	GetQueueUrl(ctx context.Context, params *sqs.GetQueueUrlInput, optFns ...func(*sqs.Options)) (*sqs.GetQueueUrlOutput, error)
	CreateQueue(ctx context.Context, params *sqs.CreateQueueInput, optFns ...func(*sqs.Options)) (*sqs.CreateQueueOutput, error)
}

// MessageHandler processes one message body. Returning nil acknowledges the
// message; returning an error marked with events.Permanent dead-letters it;
// any other error leaves it on the queue for redelivery.
type MessageHandler func(ctx context.Context, body string) error

// ConsumerOptions configures an SQSConsumer.
type ConsumerOptions struct {
	Source             string // logical queue name, recorded on dead letters
	QueueURL           string
	DeadLetterQueueURL string
	MaxReceiveCount    int
	WaitTimeSeconds    int32
	VisibilityTimeout  int32
	Metrics            *MetricsClient
}

// SQSConsumer long-polls a queue and routes failures to a dead-letter queue.
type SQSConsumer struct {
	client sqsAPI
	opts   ConsumerOptions
	logger *zap.Logger
}

// NewSQSConsumer creates a consumer for opts.QueueURL.
func NewSQSConsumer(cfg aws.Config, opts ConsumerOptions, logger *zap.Logger) *SQSConsumer {
	return newSQSConsumer(sqs.NewFromConfig(cfg), opts, logger)
}

func newSQSConsumer(client sqsAPI, opts ConsumerOptions, logger *zap.Logger) *SQSConsumer {
	if opts.MaxReceiveCount <= 0 {
		opts.MaxReceiveCount = 5
	}
	if opts.WaitTimeSeconds <= 0 {
		opts.WaitTimeSeconds = 20
	}
	if opts.VisibilityTimeout <= 0 {
		opts.VisibilityTimeout = 30
	}
	return &SQSConsumer{client: client, opts: opts, logger: logger}
}

// StartPolling polls until ctx is cancelled.
func (c *SQSConsumer) StartPolling(ctx context.Context, handler MessageHandler) error {
	c.logger.Info("SQS consumer started",
		zap.String("queue", c.opts.Source),
		zap.String("queue_url", c.opts.QueueURL),
	)

	for {
		select {
		case <-ctx.Done():
			c.logger.Info("SQS consumer stopped", zap.String("queue", c.opts.Source))
			return ctx.Err()
		default:
		}

		if err := c.pollOnce(ctx, handler); err != nil {
			if ctx.Err() != nil {
				continue
			}
			c.logger.Error("SQS receive error", zap.String("queue", c.opts.Source), zap.Error(err))
			select {
			case <-ctx.Done():
			case <-time.After(5 * time.Second):
			}
		}
	}
}

func (c *SQSConsumer) pollOnce(ctx context.Context, handler MessageHandler) error {
	result, err := c.client.ReceiveMessage(ctx, &sqs.ReceiveMessageInput{
		QueueUrl:            aws.String(c.opts.QueueURL),
		MaxNumberOfMessages: 10,
		WaitTimeSeconds:     c.opts.WaitTimeSeconds,
		VisibilityTimeout:   c.opts.VisibilityTimeout,
		MessageSystemAttributeNames: []types.MessageSystemAttributeName{
			types.MessageSystemAttributeNameApproximateReceiveCount,
		},
	})
	if err != nil {
		return fmt.Errorf("failed to receive messages: %w", err)
	}

	for _, msg := range result.Messages {
		c.handle(ctx, msg, handler)
	}
	return nil
}

func (c *SQSConsumer) handle(ctx context.Context, msg types.Message, handler MessageHandler) {
	body := aws.ToString(msg.Body)
	receiveCount := receiveCountOf(msg)

	err := handler(ctx, body)
	if err == nil {
		c.delete(ctx, msg.ReceiptHandle)
		return
	}

	if !events.IsPermanent(err) && receiveCount < c.opts.MaxReceiveCount {
		c.logger.Warn("message processing failed, leaving for redelivery",
			zap.String("queue", c.opts.Source),
			zap.String("message_id", aws.ToString(msg.MessageId)),
			zap.Int("receive_count", receiveCount),
			zap.Error(err),
		)
		return
	}

	if c.deadLetter(ctx, body, err, receiveCount) {
		c.delete(ctx, msg.ReceiptHandle)
	}
}

// deadLetter reports whether the original message may now be deleted.
func (c *SQSConsumer) deadLetter(ctx context.Context, body string, reason error, attempts int) bool {
	if c.opts.DeadLetterQueueURL == "" {
		c.logger.Error("dropping message with no dead-letter queue configured",
			zap.String("queue", c.opts.Source),
			zap.String("payload", body),
			zap.Error(reason),
		)
		return true
	}

	dl, err := events.NewDeadLetter(c.opts.Source, body, reason, attempts)
	if err != nil {
		c.logger.Error("failed to encode dead letter", zap.Error(err))
		return false
	}
	if _, err := c.client.SendMessage(ctx, &sqs.SendMessageInput{
		QueueUrl:    aws.String(c.opts.DeadLetterQueueURL),
		MessageBody: aws.String(string(dl)),
	}); err != nil {
		c.logger.Error("failed to send to dead-letter queue", zap.String("queue", c.opts.Source), zap.Error(err))
		return false
	}

	c.logger.Warn("message dead-lettered",
		zap.String("queue", c.opts.Source),
		zap.Int("attempts", attempts),
		zap.Error(reason),
	)
	_ = c.opts.Metrics.RecordCount(ctx, MetricDeadLettered, map[string]string{"Queue": c.opts.Source})
	return true
}

func (c *SQSConsumer) delete(ctx context.Context, receiptHandle *string) {
	if _, err := c.client.DeleteMessage(ctx, &sqs.DeleteMessageInput{
		QueueUrl:      aws.String(c.opts.QueueURL),
		ReceiptHandle: receiptHandle,
	}); err != nil {
		c.logger.Error("failed to delete SQS message", zap.String("queue", c.opts.Source), zap.Error(err))
	}
}

func receiveCountOf(msg types.Message) int {
	n, err := strconv.Atoi(msg.Attributes[string(types.MessageSystemAttributeNameApproximateReceiveCount)])
	if err != nil || n < 1 {
		return 1
	}
	return n
}

// GetQueueURL retrieves the URL for a queue name.
func GetQueueURL(ctx context.Context, cfg aws.Config, queueName string) (string, error) {
	return getQueueURL(ctx, sqs.NewFromConfig(cfg), queueName)
}

func getQueueURL(ctx context.Context, client sqsAPI, queueName string) (string, error) {
	result, err := client.GetQueueUrl(ctx, &sqs.GetQueueUrlInput{QueueName: aws.String(queueName)})
	if err != nil {
		return "", fmt.Errorf("failed to get queue URL for %s: %w", queueName, err)
	}
	return aws.ToString(result.QueueUrl), nil
}

// EnsureQueue creates the queue if needed and returns its URL. CreateQueue is
// idempotent for identical attributes, so this is safe on every start.
func EnsureQueue(ctx context.Context, cfg aws.Config, queueName string) (string, error) {
	out, err := sqs.NewFromConfig(cfg).CreateQueue(ctx, &sqs.CreateQueueInput{QueueName: aws.String(queueName)})
	if err != nil {
		return "", fmt.Errorf("failed to create queue %s: %w", queueName, err)
	}
	return aws.ToString(out.QueueUrl), nil
}

// SQSPublisher sends messages to queues addressed by name or URL.
type SQSPublisher struct {
	client sqsAPI
	mu     sync.RWMutex
	urls   map[string]string
}

// NewSQSPublisher creates a publisher that resolves queue URLs lazily.
func NewSQSPublisher(cfg aws.Config) *SQSPublisher {
	return newSQSPublisher(sqs.NewFromConfig(cfg))
}

func newSQSPublisher(client sqsAPI) *SQSPublisher {
	return &SQSPublisher{client: client, urls: make(map[string]string)}
}

// Publish sends payload to destination. For FIFO queues key becomes the
// message group, so messages sharing a key are delivered in order.
func (p *SQSPublisher) Publish(ctx context.Context, destination, key string, payload []byte) error {
	queueURL, err := p.resolve(ctx, destination)
	if err != nil {
		return err
	}

	input := &sqs.SendMessageInput{
		QueueUrl:    aws.String(queueURL),
		MessageBody: aws.String(string(payload)),
	}
	if strings.HasSuffix(queueURL, ".fifo") && key != "" {
		input.MessageGroupId = aws.String(key)
	}

	if _, err := p.client.SendMessage(ctx, input); err != nil {
		return fmt.Errorf("failed to send message to %s: %w", destination, err)
	}
	return nil
}

func (p *SQSPublisher) resolve(ctx context.Context, destination string) (string, error) {
	if strings.HasPrefix(destination, "http://") || strings.HasPrefix(destination, "https://") {
		return destination, nil
	}

	p.mu.RLock()
	u, ok := p.urls[destination]
	p.mu.RUnlock()
	if ok {
		return u, nil
	}

	u, err := getQueueURL(ctx, p.client, destination)
	if err != nil {
		return "", err
	}
	p.mu.Lock()
	p.urls[destination] = u
	p.mu.Unlock()
	return u, nil
}
