package kafka

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/Arpita030/deals-App/backend/pkg/events"
	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeWriter struct {
	written  []kafka.Message
	err      error
	failures int // fail this many writes before succeeding
	calls    int
}

func (w *fakeWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	w.calls++
	if w.err != nil {
		return w.err
	}
	if w.failures > 0 {
		w.failures--
		return errors.New("leader not available")
	}
	w.written = append(w.written, msgs...)
	return nil
}

func (w *fakeWriter) Close() error { return nil }

type fakeReader struct {
	queue     []kafka.Message
	committed []kafka.Message
	cancel    context.CancelFunc
}

func (r *fakeReader) FetchMessage(ctx context.Context) (kafka.Message, error) {
	if len(r.queue) == 0 {
		r.cancel()
		<-ctx.Done()
		return kafka.Message{}, ctx.Err()
	}
	m := r.queue[0]
	r.queue = r.queue[1:]
	return m, nil
}

func (r *fakeReader) CommitMessages(_ context.Context, msgs ...kafka.Message) error {
	r.committed = append(r.committed, msgs...)
	return nil
}

func (r *fakeReader) Close() error { return nil }

func testConsumer(reader messageReader, dlq messageWriter) *Consumer {
	return newConsumer(reader, dlq, ConsumerConfig{
		Topic:       events.CashbackQueue,
		MaxAttempts: 3,
		Backoff:     time.Millisecond,
	}, zap.NewNop())
}

func TestProcess_Success(t *testing.T) {
	dlq := &fakeWriter{}
	c := testConsumer(&fakeReader{}, dlq)

	err := c.process(context.Background(), kafka.Message{Value: []byte("{}")}, func(context.Context, string) error { return nil })

	assert.NoError(t, err)
	assert.Empty(t, dlq.written)
}

func TestProcess_RetriesThenSucceeds(t *testing.T) {
	dlq := &fakeWriter{}
	c := testConsumer(&fakeReader{}, dlq)

	calls := 0
	err := c.process(context.Background(), kafka.Message{Value: []byte("{}")}, func(context.Context, string) error {
		calls++
		if calls < 2 {
			return errors.New("transient")
		}
		return nil
	})

	assert.NoError(t, err)
	assert.Equal(t, 2, calls)
	assert.Empty(t, dlq.written)
}

func TestProcess_PermanentGoesStraightToDLQ(t *testing.T) {
	dlq := &fakeWriter{}
	c := testConsumer(&fakeReader{}, dlq)

	calls := 0
	err := c.process(context.Background(), kafka.Message{Key: []byte("u@x.com"), Value: []byte("garbage")}, func(context.Context, string) error {
		calls++
		return events.Permanent(errors.New("invalid payload"))
	})

	require.NoError(t, err)
	assert.Equal(t, 1, calls)
	require.Len(t, dlq.written, 1)
	assert.Equal(t, []byte("u@x.com"), dlq.written[0].Key)

	var dl events.DeadLetter
	require.NoError(t, json.Unmarshal(dlq.written[0].Value, &dl))
	assert.Equal(t, "garbage", dl.Payload)
	assert.Equal(t, 1, dl.Attempts)
}

func TestProcess_ExhaustedRetriesGoToDLQ(t *testing.T) {
	dlq := &fakeWriter{}
	c := testConsumer(&fakeReader{}, dlq)

	calls := 0
	err := c.process(context.Background(), kafka.Message{Value: []byte("{}")}, func(context.Context, string) error {
		calls++
		return errors.New("db down")
	})

	require.NoError(t, err)
	assert.Equal(t, 3, calls)
	require.Len(t, dlq.written, 1)
}

func TestProcess_DLQWriteIsRetriedUntilItSucceeds(t *testing.T) {
	dlq := &fakeWriter{failures: 2}
	c := testConsumer(&fakeReader{}, dlq)

	err := c.process(context.Background(), kafka.Message{Value: []byte("{}")}, func(context.Context, string) error {
		return events.Permanent(errors.New("bad"))
	})

	require.NoError(t, err)
	assert.Equal(t, 3, dlq.calls)
	assert.Len(t, dlq.written, 1)
}

func TestProcess_DLQWriteGivesUpOnlyWhenCancelled(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	dlq := &fakeWriter{err: errors.New("broker unavailable")}
	c := testConsumer(&fakeReader{}, dlq)

	err := c.process(ctx, kafka.Message{Value: []byte("{}")}, func(context.Context, string) error {
		return events.Permanent(errors.New("bad"))
	})

	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.Greater(t, dlq.calls, 1)
	assert.Empty(t, dlq.written)
}

func TestStart_UnresolvedMessageBlocksLaterCommits(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	reader := &fakeReader{
		queue: []kafka.Message{
			{Partition: 0, Offset: 10, Value: []byte("bad")},
			{Partition: 0, Offset: 11, Value: []byte("good")},
		},
		cancel: cancel,
	}
	c := testConsumer(reader, &fakeWriter{err: errors.New("broker unavailable")})

	var seen []string
	err := c.Start(ctx, func(_ context.Context, body string) error {
		seen = append(seen, body)
		if body == "bad" {
			return events.Permanent(errors.New("invalid payload"))
		}
		return nil
	})

	assert.Error(t, err)
	assert.Equal(t, []string{"bad"}, seen)
	assert.Empty(t, reader.committed)
	assert.Len(t, reader.queue, 1)
}

func TestDLQBackoff_IsCapped(t *testing.T) {
	assert.Equal(t, 3*time.Second, dlqBackoff(time.Second, 3))
	assert.Equal(t, maxDLQBackoff, dlqBackoff(time.Second, 1000))
}

func TestStart_CommitsHandledMessages(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	reader := &fakeReader{
		queue:  []kafka.Message{{Offset: 1, Value: []byte("a")}, {Offset: 2, Value: []byte("b")}},
		cancel: cancel,
	}
	c := testConsumer(reader, &fakeWriter{})

	var seen []string
	err := c.Start(ctx, func(_ context.Context, body string) error {
		seen = append(seen, body)
		return nil
	})

	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, []string{"a", "b"}, seen)
	assert.Len(t, reader.committed, 2)
}

func TestProducer_PublishUsesDestinationAsTopic(t *testing.T) {
	w := &fakeWriter{}
	p := &Producer{writer: w, logger: zap.NewNop()}

	require.NoError(t, p.Publish(context.Background(), events.NotificationQueue, "u@x.com", []byte(`{"k":1}`)))

	require.Len(t, w.written, 1)
	assert.Equal(t, events.NotificationQueue, w.written[0].Topic)
	assert.Equal(t, []byte("u@x.com"), w.written[0].Key)
}
