package services

import (
	"context"
	"encoding/json"
	"errors"
	"math"
	"sync"
	"testing"
	"time"

	"github.com/Arpita030/deals-App/backend/pkg/events"
	"github.com/Arpita030/deals-App/backend/services/cashback-service/models"
	"github.com/Arpita030/deals-App/backend/services/common/outbox"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

// memoryRepo keeps records in memory and deduplicates like the store does.
type memoryRepo struct {
	mu        sync.Mutex
	records   []models.Cashback
	summaries map[string]float64
	seen      map[string]bool
	outbox    []outbox.Message
	err       error
}

func newMemoryRepo() *memoryRepo {
	return &memoryRepo{summaries: map[string]float64{}, seen: map[string]bool{}}
}

func (m *memoryRepo) Apply(_ context.Context, rec *models.Cashback, eventID string, msgs ...outbox.Message) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return false, m.err
	}
	if eventID != "" {
		if m.seen[eventID] {
			return false, nil
		}
		m.seen[eventID] = true
	}
	rec.ID = int64(len(m.records) + 1)
	m.records = append(m.records, *rec)
	m.summaries[rec.UserEmail] += rec.CashbackAmount
	m.outbox = append(m.outbox, msgs...)
	return true, nil
}

func (m *memoryRepo) FindByUserEmail(_ context.Context, email string) ([]models.Cashback, error) {
	var out []models.Cashback
	for _, r := range m.records {
		if r.UserEmail == email {
			out = append(out, r)
		}
	}
	return out, nil
}

func (m *memoryRepo) SumByUserEmail(ctx context.Context, email string) (float64, error) {
	recs, _ := m.FindByUserEmail(ctx, email)
	total := 0.0
	for _, r := range recs {
		total += r.CashbackAmount
	}
	return total, nil
}

func (m *memoryRepo) FindSummary(_ context.Context, email string) (*models.CashbackSummary, error) {
	return &models.CashbackSummary{UserEmail: email, TotalCashback: m.summaries[email]}, nil
}

func (m *memoryRepo) Reconcile(ctx context.Context, email string) (float64, error) {
	total, _ := m.SumByUserEmail(ctx, email)
	m.summaries[email] = total
	return total, nil
}

func newService(repo *memoryRepo) *cashbackService {
	svc := NewCashbackService(repo, "", nil, zap.NewNop()).(*cashbackService)
	svc.now = func() time.Time { return time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC) }
	return svc
}

func body(t *testing.T, msg events.CashbackMessage) string {
	b, err := json.Marshal(msg)
	require.NoError(t, err)
	return string(b)
}

func TestHandleCashbackEvent_RecordsAndNotifies(t *testing.T) {
	repo := newMemoryRepo()
	svc := newService(repo)

	err := svc.HandleCashbackEvent(context.Background(), events.CashbackMessage{UserEmail: "u@x.com", DealID: 1, CashbackAmount: 5.0})
	require.NoError(t, err)

	require.Len(t, repo.records, 1)
	assert.Equal(t, time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC), repo.records[0].Timestamp)
	assert.Equal(t, 5.0, repo.summaries["u@x.com"])

	require.Len(t, repo.outbox, 1)
	assert.Equal(t, events.NotificationQueue, repo.outbox[0].Destination)
	var note events.NotificationMessage
	require.NoError(t, json.Unmarshal(repo.outbox[0].Payload, &note))
	assert.Equal(t, "u@x.com", note.Recipient)
	assert.Equal(t, "🎉 Cashback Received!", note.Subject)
	assert.Equal(t, "Hi there,\n\nYou just received a cashback of ₹5.0", note.Message)
}

func TestHandleCashbackEvent_SequentialEventsSum(t *testing.T) {
	repo := newMemoryRepo()
	svc := newService(repo)

	require.NoError(t, svc.HandleMessage(context.Background(), body(t, events.CashbackMessage{UserEmail: "u@x.com", DealID: 1, CashbackAmount: 5.0})))
	require.NoError(t, svc.HandleMessage(context.Background(), body(t, events.CashbackMessage{UserEmail: "u@x.com", DealID: 2, CashbackAmount: 3.0})))

	summary, _ := svc.Summary(context.Background(), "u@x.com")
	total, _ := svc.TotalCashback(context.Background(), "u@x.com")
	assert.Equal(t, 8.0, summary.TotalCashback)
	assert.Equal(t, total, summary.TotalCashback)
}

func TestHandleCashbackEvent_DuplicateEventIDAppliedOnce(t *testing.T) {
	repo := newMemoryRepo()
	svc := newService(repo)
	msg := events.CashbackMessage{EventID: "txn1:cashback", UserEmail: "u@x.com", DealID: 1, CashbackAmount: 5.0}

	require.NoError(t, svc.HandleCashbackEvent(context.Background(), msg))
	require.NoError(t, svc.HandleCashbackEvent(context.Background(), msg))

	assert.Len(t, repo.records, 1)
	assert.Equal(t, 5.0, repo.summaries["u@x.com"])
	require.Len(t, repo.outbox, 1)

	var note events.NotificationMessage
	require.NoError(t, json.Unmarshal(repo.outbox[0].Payload, &note))
	assert.Equal(t, "txn1:cashback:notification", note.EventID)
}

func TestHandleCashbackEvent_WithoutEventIDIsNotDeduplicated(t *testing.T) {
	repo := newMemoryRepo()
	svc := newService(repo)
	msg := events.CashbackMessage{UserEmail: "u@x.com", DealID: 1, CashbackAmount: 5.0}

	require.NoError(t, svc.HandleCashbackEvent(context.Background(), msg))
	require.NoError(t, svc.HandleCashbackEvent(context.Background(), msg))

	assert.Len(t, repo.records, 2)
	assert.Equal(t, 10.0, repo.summaries["u@x.com"])
}

func TestHandleMessage_TerminalFailures(t *testing.T) {
	cases := map[string]string{
		"malformed json": "{not json",
		"missing email":  `{"dealId":1,"cashbackAmount":5}`,
		"negative":       `{"userEmail":"u@x.com","dealId":1,"cashbackAmount":-1}`,
	}
	for name, b := range cases {
		t.Run(name, func(t *testing.T) {
			repo := newMemoryRepo()
			err := newService(repo).HandleMessage(context.Background(), b)
			require.Error(t, err)
			assert.True(t, events.IsPermanent(err))
			assert.Empty(t, repo.records)
		})
	}
}

func TestHandleCashbackEvent_NonFiniteAmountIsTerminal(t *testing.T) {
	svc := newService(newMemoryRepo())
	for _, v := range []float64{math.NaN(), math.Inf(1)} {
		err := svc.HandleCashbackEvent(context.Background(), events.CashbackMessage{UserEmail: "u@x.com", CashbackAmount: v})
		assert.True(t, events.IsPermanent(err))
	}
}

func TestHandleMessage_UnwrapsSNSEnvelope(t *testing.T) {
	repo := newMemoryRepo()
	inner := body(t, events.CashbackMessage{UserEmail: "u@x.com", DealID: 1, CashbackAmount: 2.75})
	envelope, _ := json.Marshal(map[string]string{"Type": "Notification", "Message": inner})

	require.NoError(t, newService(repo).HandleMessage(context.Background(), string(envelope)))
	assert.Equal(t, 2.75, repo.summaries["u@x.com"])
}

func TestHandleCashbackEvent_StoreErrorIsRetryable(t *testing.T) {
	repo := newMemoryRepo()
	repo.err = errors.New("connection reset")

	err := newService(repo).HandleCashbackEvent(context.Background(), events.CashbackMessage{UserEmail: "u@x.com", CashbackAmount: 1})
	require.Error(t, err)
	assert.False(t, events.IsPermanent(err))
}

func TestAddCashback(t *testing.T) {
	repo := newMemoryRepo()
	svc := newService(repo)

	rec, err := svc.AddCashback(context.Background(), models.AddCashbackRequest{UserEmail: "user@example.com", DealID: 1, CashbackAmount: 50})
	require.NoError(t, err)
	assert.Equal(t, "user@example.com", rec.UserEmail)
	assert.Equal(t, 50.0, rec.CashbackAmount)
	assert.Equal(t, 50.0, repo.summaries["user@example.com"])

	_, err = svc.AddCashback(context.Background(), models.AddCashbackRequest{UserEmail: "user@example.com", CashbackAmount: -1})
	assert.ErrorIs(t, err, ErrInvalidAmount)
}

func TestListCashbacksAndReconcile(t *testing.T) {
	repo := newMemoryRepo()
	svc := newService(repo)
	require.NoError(t, svc.HandleCashbackEvent(context.Background(), events.CashbackMessage{UserEmail: "u@x.com", DealID: 101, CashbackAmount: 25}))
	require.NoError(t, svc.HandleCashbackEvent(context.Background(), events.CashbackMessage{UserEmail: "u@x.com", DealID: 102, CashbackAmount: 35}))

	views, err := svc.ListCashbacks(context.Background(), "u@x.com")
	require.NoError(t, err)
	require.Len(t, views, 2)
	assert.Equal(t, int64(101), views[0].DealID)
	assert.Equal(t, 35.0, views[1].CashbackAmount)

	repo.summaries["u@x.com"] = 999
	summary, err := svc.Reconcile(context.Background(), "u@x.com")
	require.NoError(t, err)
	assert.Equal(t, 60.0, summary.TotalCashback)
	assert.Equal(t, 60.0, repo.summaries["u@x.com"])
}
