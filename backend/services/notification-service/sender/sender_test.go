package sender

import (
	"context"
	"errors"
	"net/smtp"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestNewSMTPSender_RequiresHostAndPort(t *testing.T) {
	_, err := NewSMTPSender(SMTPConfig{Port: "25", From: "a@b.c"})
	assert.Error(t, err)
	_, err = NewSMTPSender(SMTPConfig{Host: "smtp", From: "a@b.c"})
	assert.Error(t, err)
	_, err = NewSMTPSender(SMTPConfig{Host: "smtp", Port: "25"})
	assert.Error(t, err)
}

func TestSMTPSender_SendEmail(t *testing.T) {
	s, err := NewSMTPSender(SMTPConfig{Host: "smtp.local", Port: "2525", Username: "bot@deals.dev", Password: "pw"})
	require.NoError(t, err)

	var gotAddr, gotFrom string
	var gotTo []string
	var gotMsg []byte
	s.sendMail = func(addr string, a smtp.Auth, from string, to []string, msg []byte) error {
		gotAddr, gotFrom, gotTo, gotMsg = addr, from, to, msg
		assert.NotNil(t, a)
		return nil
	}

	res, err := s.SendEmail(context.Background(), "u@x.com", "🎉 Cashback Received!", "Hi there,\n\nYou just received a cashback of ₹5.0")
	require.NoError(t, err)
	assert.NotEmpty(t, res.MessageID)
	assert.Equal(t, "smtp.local:2525", gotAddr)
	assert.Equal(t, "bot@deals.dev", gotFrom)
	assert.Equal(t, []string{"u@x.com"}, gotTo)

	msg := string(gotMsg)
	assert.Contains(t, msg, "Content-Type: text/plain; charset=UTF-8")
	assert.Contains(t, msg, "Subject: =?UTF-8?q?")
	assert.True(t, strings.HasSuffix(msg, "\r\n\r\nHi there,\r\n\r\nYou just received a cashback of ₹5.0"))
}

func TestSMTPSender_Failure(t *testing.T) {
	s, _ := NewSMTPSender(SMTPConfig{Host: "smtp.local", Port: "25", From: "bot@deals.dev"})
	s.sendMail = func(string, smtp.Auth, string, []string, []byte) error { return errors.New("550 rejected") }

	_, err := s.SendEmail(context.Background(), "u@x.com", "s", "b")
	assert.ErrorContains(t, err, "550 rejected")
}

func TestSMTPSender_CancelledContext(t *testing.T) {
	s, _ := NewSMTPSender(SMTPConfig{Host: "smtp.local", Port: "25", From: "bot@deals.dev"})
	s.sendMail = func(string, smtp.Auth, string, []string, []byte) error {
		t.Fatal("should not dial")
		return nil
	}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := s.SendEmail(ctx, "u@x.com", "s", "b")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestLogSender(t *testing.T) {
	res, err := NewLogSender(zap.NewNop()).SendEmail(context.Background(), "u@x.com", "s", "b")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(res.MessageID, "log-"))
}
