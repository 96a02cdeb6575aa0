package consumer

import (
	"context"
	"errors"
	"testing"
	"time"

	sdkaws "github.com/aws/aws-sdk-go-v2/aws"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func TestRun_UnknownBroker(t *testing.T) {
	err := Run(context.Background(), sdkaws.Config{}, Config{Broker: "rabbitmq", Queue: "cashback-queue"},
		func(context.Context, string) error { return nil }, zap.NewNop())
	assert.ErrorContains(t, err, `unknown message broker "rabbitmq"`)
}

func TestRestartOnError_RestartsUntilCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	starts := 0
	err := restartOnError(ctx, func(context.Context) error {
		starts++
		if starts == 3 {
			cancel()
			return ctx.Err()
		}
		return errors.New("failed to write dead letter")
	}, time.Millisecond, zap.NewNop())

	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 3, starts)
}
