package aws

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatchlogs"
	"github.com/aws/aws-sdk-go-v2/service/cloudwatchlogs/types"
)

const (
	defaultLogGroup  = "/dealsfinder/services"
	logRetentionDays = 30
	logBufferSize    = 4096
	logBatchSize     = 500
	logFlushInterval = 2 * time.Second
	logPutTimeout    = 5 * time.Second
)

type logsAPI interface {
	CreateLogGroup(ctx context.Context, params *cloudwatchlogs.CreateLogGroupInput, optFns ...func(*cloudwatchlogs.Options)) (*cloudwatchlogs.CreateLogGroupOutput, error)
	PutRetentionPolicy(ctx context.Context, params *cloudwatchlogs.PutRetentionPolicyInput, optFns ...func(*cloudwatchlogs.Options)) (*cloudwatchlogs.PutRetentionPolicyOutput, error)
	CreateLogStream(ctx context.Context, params *cloudwatchlogs.CreateLogStreamInput, optFns ...func(*cloudwatchlogs.Options)) (*cloudwatchlogs.CreateLogStreamOutput, error)
	PutLogEvents(ctx context.Context, params *cloudwatchlogs.PutLogEventsInput, optFns ...func(*cloudwatchlogs.Options)) (*cloudwatchlogs.PutLogEventsOutput, error)
}

// CloudWatchLogsClient is an io.Writer for a zap core. Lines are buffered and
// shipped in batches by a background goroutine; when the buffer is full new
// lines are dropped and counted rather than blocking the caller.
type CloudWatchLogsClient struct {
	api     logsAPI
	group   string
	stream  string
	enabled bool

	batchSize int
	interval  time.Duration

	events    chan types.InputLogEvent
	flushReq  chan chan struct{}
	stop      chan struct{}
	stopped   chan struct{}
	closeOnce sync.Once
	dropped   atomic.Int64
}

// NewCloudWatchLogsClient is enabled by CLOUDWATCH_ENABLED=true. It writes to
// CLOUDWATCH_LOG_GROUP (created if missing) under a fresh stream per process.
func NewCloudWatchLogsClient(ctx context.Context, serviceName string) (*CloudWatchLogsClient, error) {
	cfg, err := LoadAWSConfig(ctx)
	if err != nil {
		return nil, err
	}

	group := os.Getenv("CLOUDWATCH_LOG_GROUP")
	if group == "" {
		group = defaultLogGroup
	}
	stream := fmt.Sprintf("%s-%d", serviceName, time.Now().Unix())
	enabled := os.Getenv("CLOUDWATCH_ENABLED") == "true"

	c := newCloudWatchLogsClient(cloudwatchlogs.NewFromConfig(cfg), group, stream, enabled, logBatchSize, logFlushInterval)
	if !enabled {
		return c, nil
	}
	if err := c.setup(ctx); err != nil {
		return nil, err
	}
	c.start()
	return c, nil
}

func newCloudWatchLogsClient(api logsAPI, group, stream string, enabled bool, batchSize int, interval time.Duration) *CloudWatchLogsClient {
	return &CloudWatchLogsClient{
		api:       api,
		group:     group,
		stream:    stream,
		enabled:   enabled,
		batchSize: batchSize,
		interval:  interval,
		events:    make(chan types.InputLogEvent, logBufferSize),
		flushReq:  make(chan chan struct{}),
		stop:      make(chan struct{}),
		stopped:   make(chan struct{}),
	}
}

func (c *CloudWatchLogsClient) setup(ctx context.Context) error {
	if _, err := c.api.CreateLogGroup(ctx, &cloudwatchlogs.CreateLogGroupInput{LogGroupName: aws.String(c.group)}); err != nil {
		var exists *types.ResourceAlreadyExistsException
		if !errors.As(err, &exists) {
			return fmt.Errorf("create log group %s: %w", c.group, err)
		}
	}
	if _, err := c.api.PutRetentionPolicy(ctx, &cloudwatchlogs.PutRetentionPolicyInput{
		LogGroupName:    aws.String(c.group),
		RetentionInDays: aws.Int32(logRetentionDays),
	}); err != nil {
		return fmt.Errorf("set retention on %s: %w", c.group, err)
	}
	if _, err := c.api.CreateLogStream(ctx, &cloudwatchlogs.CreateLogStreamInput{
		LogGroupName:  aws.String(c.group),
		LogStreamName: aws.String(c.stream),
	}); err != nil {
		return fmt.Errorf("create log stream %s: %w", c.stream, err)
	}
	return nil
}

func (c *CloudWatchLogsClient) start() { go c.run() }

func (c *CloudWatchLogsClient) IsEnabled() bool {
	return c != nil && c.enabled
}

// Dropped reports how many lines were discarded because the buffer was full.
func (c *CloudWatchLogsClient) Dropped() int64 {
	return c.dropped.Load()
}

// Write queues one log line. It never fails.
func (c *CloudWatchLogsClient) Write(p []byte) (int, error) {
	if !c.IsEnabled() {
		return len(p), nil
	}
	event := types.InputLogEvent{
		Message:   aws.String(string(p)),
		Timestamp: aws.Int64(time.Now().UnixMilli()),
	}
	select {
	case c.events <- event:
	default:
		c.dropped.Add(1)
	}
	return len(p), nil
}

// Sync ships everything queued so far and waits for it.
func (c *CloudWatchLogsClient) Sync() error {
	if !c.IsEnabled() {
		return nil
	}
	done := make(chan struct{})
	select {
	case c.flushReq <- done:
	case <-c.stopped:
		return nil
	}
	select {
	case <-done:
	case <-c.stopped:
	}
	return nil
}

// Close flushes pending lines and stops the background goroutine.
func (c *CloudWatchLogsClient) Close() error {
	if !c.IsEnabled() {
		return nil
	}
	c.closeOnce.Do(func() { close(c.stop) })
	<-c.stopped
	return nil
}

func (c *CloudWatchLogsClient) run() {
	defer close(c.stopped)

	ticker := time.NewTicker(c.interval)
	defer ticker.Stop()

	batch := make([]types.InputLogEvent, 0, c.batchSize)
	flush := func() {
		if len(batch) == 0 {
			return
		}
		c.put(batch)
		batch = make([]types.InputLogEvent, 0, c.batchSize)
	}
	add := func(e types.InputLogEvent) {
		batch = append(batch, e)
		if len(batch) >= c.batchSize {
			flush()
		}
	}
	drain := func() {
		for {
			select {
			case e := <-c.events:
				add(e)
			default:
				flush()
				return
			}
		}
	}

	for {
		select {
		case e := <-c.events:
			add(e)
		case <-ticker.C:
			flush()
		case done := <-c.flushReq:
			drain()
			close(done)
		case <-c.stop:
			drain()
			return
		}
	}
}

func (c *CloudWatchLogsClient) put(batch []types.InputLogEvent) {
	ctx, cancel := context.WithTimeout(context.Background(), logPutTimeout)
	defer cancel()
	if _, err := c.api.PutLogEvents(ctx, &cloudwatchlogs.PutLogEventsInput{
		LogGroupName:  aws.String(c.group),
		LogStreamName: aws.String(c.stream),
		LogEvents:     batch,
	}); err != nil {
		fmt.Fprintf(os.Stderr, "cloudwatch logs: dropped %d lines: %v\n", len(batch), err)
	}
}
