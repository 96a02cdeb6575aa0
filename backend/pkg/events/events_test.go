package events

import (
	"encoding/json"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPermanent(t *testing.T) {
	base := errors.New("bad payload")

	assert.Nil(t, Permanent(nil))
	assert.False(t, IsPermanent(base))
	assert.True(t, IsPermanent(Permanent(base)))

	wrapped := fmt.Errorf("handler: %w", Permanent(base))
	assert.True(t, IsPermanent(wrapped))
	assert.ErrorIs(t, wrapped, base)
}

func TestUnwrapSNS(t *testing.T) {
	inner := `{"recipient":"u@x.com","subject":"s","message":"m"}`
	envelope, _ := json.Marshal(map[string]string{"Type": "Notification", "Message": inner})

	assert.Equal(t, inner, UnwrapSNS(string(envelope)))
	assert.Equal(t, inner, UnwrapSNS(inner))
	assert.Equal(t, "not json", UnwrapSNS("not json"))
}

func TestFormatAmount(t *testing.T) {
	assert.Equal(t, "5.0", FormatAmount(5))
	assert.Equal(t, "0.0", FormatAmount(0))
	assert.Equal(t, "2.75", FormatAmount(2.75))
}

func TestNewDeadLetter(t *testing.T) {
	body, err := NewDeadLetter(CashbackQueue, `{"x":1}`, errors.New("boom"), 3)
	require.NoError(t, err)

	var dl DeadLetter
	require.NoError(t, json.Unmarshal(body, &dl))
	assert.Equal(t, CashbackQueue, dl.Source)
	assert.Equal(t, `{"x":1}`, dl.Payload)
	assert.Equal(t, "boom", dl.Reason)
	assert.Equal(t, 3, dl.Attempts)
	assert.Equal(t, "cashback-queue-dlq", DeadLetterQueue(CashbackQueue))
}
