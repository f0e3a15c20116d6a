package worker

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/mero-vet/vet-clinic-app-sub000/internal/model"
	"github.com/mero-vet/vet-clinic-app-sub000/internal/repository/memory"
	"github.com/mero-vet/vet-clinic-app-sub000/pkg/logger"
	"github.com/mero-vet/vet-clinic-app-sub000/pkg/messaging"
	"github.com/mero-vet/vet-clinic-app-sub000/pkg/metrics"
)

type MockBroker struct {
	mock.Mock
}

func (m *MockBroker) Publish(ctx context.Context, channel string, message interface{}) error {
	args := m.Called(ctx, channel, message)
	return args.Error(0)
}

func (m *MockBroker) Subscribe(ctx context.Context, channel string) (<-chan []byte, error) {
	args := m.Called(ctx, channel)
	return nil, args.Error(1)
}

func (m *MockBroker) Close() error {
	return m.Called().Error(0)
}

func testConfig() OutboxProcessorConfig {
	return OutboxProcessorConfig{
		Channel:       "scheduling.events",
		BatchSize:     10,
		PollInterval:  time.Second,
		RetryAttempts: 2,
		RetryDelay:    time.Millisecond,
		MaxDeliveries: 3,
	}
}

func TestNewOutboxProcessor_ValidatesConfig(t *testing.T) {
	cfg := testConfig()
	cfg.BatchSize = 0
	_, err := NewOutboxProcessor(memory.NewOutboxRepository(), &MockBroker{}, cfg, logger.Nop(), metrics.NewNop())
	assert.Error(t, err)

	cfg = testConfig()
	cfg.Channel = ""
	_, err = NewOutboxProcessor(memory.NewOutboxRepository(), &MockBroker{}, cfg, logger.Nop(), metrics.NewNop())
	assert.Error(t, err)
}

func TestProcessOnce_PublishesEnvelope(t *testing.T) {
	ctx := context.Background()
	repo := memory.NewOutboxRepository()
	event := &model.OutboxEvent{
		EventType: model.EventAppointmentCreated,
		Payload:   json.RawMessage(`{"provider_id":"vet-1"}`),
	}
	require.NoError(t, repo.Create(ctx, event))

	broker := new(MockBroker)
	broker.On("Publish", mock.Anything, "scheduling.events", mock.MatchedBy(func(env messaging.Envelope) bool {
		return env.ID == event.ID && env.Type == model.EventAppointmentCreated
	})).Return(nil).Once()

	p, err := NewOutboxProcessor(repo, broker, testConfig(), logger.Nop(), metrics.NewNop())
	require.NoError(t, err)

	n, err := p.ProcessOnce(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)
	broker.AssertExpectations(t)

	n, err = p.ProcessOnce(ctx)
	require.NoError(t, err)
	assert.Zero(t, n, "processed events are not relayed again")
}

func TestProcessOnce_FailureSchedulesRetry(t *testing.T) {
	ctx := context.Background()
	repo := memory.NewOutboxRepository()
	require.NoError(t, repo.Create(ctx, &model.OutboxEvent{
		EventType: model.EventAppointmentCancelled,
		Payload:   json.RawMessage(`{}`),
	}))

	broker := new(MockBroker)
	broker.On("Publish", mock.Anything, "scheduling.events", mock.Anything).
		Return(errors.New("redis unavailable")).Times(2)

	p, err := NewOutboxProcessor(repo, broker, testConfig(), logger.Nop(), metrics.NewNop())
	require.NoError(t, err)
	p.now = func() time.Time { return time.Now().Add(time.Hour) }

	n, err := p.ProcessOnce(ctx)
	require.NoError(t, err)
	assert.Zero(t, n)
	broker.AssertNumberOfCalls(t, "Publish", 2)

	// the event went back to pending with a future retry time
	due, err := repo.ClaimPending(ctx, 10)
	require.NoError(t, err)
	assert.Empty(t, due)
}

func TestOutboxCleanupWorker(t *testing.T) {
	ctx := context.Background()
	repo := memory.NewOutboxRepository()
	event := &model.OutboxEvent{EventType: model.EventAppointmentCreated, Payload: json.RawMessage(`{}`)}
	require.NoError(t, repo.Create(ctx, event))
	_, err := repo.ClaimPending(ctx, 1)
	require.NoError(t, err)
	require.NoError(t, repo.MarkProcessed(ctx, event.ID))

	w := NewOutboxCleanupWorker(repo, time.Hour, time.Minute, logger.Nop())
	assert.Zero(t, w.Cleanup(ctx, time.Now()))
	assert.Equal(t, int64(1), w.Cleanup(ctx, time.Now().Add(2*time.Hour)))
}
