package consumer

import (
	"context"
	"errors"
	"testing"

	"github.com/Arpita030/deals-App/backend/pkg/events"
	"github.com/Arpita030/deals-App/backend/services/cashback-service/models"
	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

type stubService struct {
	err    error
	bodies []string
}

func (s *stubService) HandleMessage(_ context.Context, body string) error {
	s.bodies = append(s.bodies, body)
	return s.err
}
func (s *stubService) HandleCashbackEvent(context.Context, events.CashbackMessage) error { return nil }
func (s *stubService) AddCashback(context.Context, models.AddCashbackRequest) (*models.Cashback, error) {
	return nil, nil
}
func (s *stubService) ListCashbacks(context.Context, string) ([]models.CashbackView, error) {
	return nil, nil
}
func (s *stubService) TotalCashback(context.Context, string) (float64, error) { return 0, nil }
func (s *stubService) Summary(context.Context, string) (*models.CashbackSummary, error) {
	return nil, nil
}
func (s *stubService) Reconcile(context.Context, string) (*models.CashbackSummary, error) {
	return nil, nil
}

func TestHandle_PassesErrorClassificationThrough(t *testing.T) {
	permanent := events.Permanent(errors.New("bad payload"))
	retryable := errors.New("db down")

	for _, want := range []error{nil, permanent, retryable} {
		svc := &stubService{err: want}
		err := NewCashbackConsumer(svc, zap.NewNop()).Handle(context.Background(), `{"userEmail":"u@x.com"}`)
		assert.Equal(t, want, err)
		assert.Equal(t, []string{`{"userEmail":"u@x.com"}`}, svc.bodies)
	}
}
