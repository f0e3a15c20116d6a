package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mero-vet/vet-clinic-app-sub000/pkg/logger"
	"github.com/mero-vet/vet-clinic-app-sub000/pkg/messaging"
)

const testConfig = `
scheduling:
  timezone: UTC
catalog:
  rules:
    lunch_start: "12:00"
    lunch_end: "13:00"
    lunch_applies_to: [veterinarian]
    advance_booking_days: 90
    emergency_slot_reserve: 0
`

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	root := newRootCmd()
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func TestValidateCommand(t *testing.T) {
	out, err := execute(t, "validate", "--config", writeConfig(t, testConfig))
	require.NoError(t, err)
	assert.Contains(t, out, "ok:")
	assert.Contains(t, out, "4 providers")
	assert.Contains(t, out, "Sunday")

	_, err = execute(t, "validate", "--config", writeConfig(t, "scheduling:\n  timezone: Nowhere/Land\n"))
	assert.Error(t, err)
}

func TestTypesCommand(t *testing.T) {
	out, err := execute(t, "types", "--config", writeConfig(t, testConfig))
	require.NoError(t, err)
	assert.Contains(t, out, "wellness")
	assert.Contains(t, out, "vet-1")
}

func TestSlotsCommand(t *testing.T) {
	path := writeConfig(t, testConfig)

	out, err := execute(t, "slots", "--config", path, "--date", "2024-06-10", "--provider", "vet-1", "--type", "wellness")
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.NotEmpty(t, lines)
	assert.Equal(t, "08:00-08:40", lines[0])
	assert.NotContains(t, out, "12:00-12:40")

	_, err = execute(t, "slots", "--config", path, "--date", "June 10", "--provider", "vet-1", "--type", "wellness")
	assert.Error(t, err)

	_, err = execute(t, "slots", "--config", path, "--date", "2024-06-10")
	assert.Error(t, err)
}

// readyBroker signals once a subscription is registered.
type readyBroker struct {
	*messaging.LogBroker
	ready chan struct{}
}

func (b *readyBroker) Subscribe(ctx context.Context, channel string) (<-chan []byte, error) {
	ch, err := b.LogBroker.Subscribe(ctx, channel)
	close(b.ready)
	return ch, err
}

func TestTail(t *testing.T) {
	broker := &readyBroker{LogBroker: messaging.NewLogBroker(logger.Nop()), ready: make(chan struct{})}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	var out bytes.Buffer
	done := make(chan error, 1)
	go func() {
		done <- tail(ctx, broker, "events", "appointment.created", json.NewEncoder(&out))
	}()
	<-broker.ready

	created := messaging.Envelope{ID: uuid.New(), Type: "appointment.created", Payload: json.RawMessage(`{"id":"a"}`)}
	cancelled := messaging.Envelope{ID: uuid.New(), Type: "appointment.cancelled", Payload: json.RawMessage(`{}`)}
	require.NoError(t, broker.Publish(ctx, "events", created))
	require.NoError(t, broker.Publish(ctx, "events", cancelled))
	require.NoError(t, broker.Publish(ctx, "events", "not an envelope"))
	require.NoError(t, broker.Close())

	require.NoError(t, <-done)

	dec := json.NewDecoder(&out)
	var got messaging.Envelope
	require.NoError(t, dec.Decode(&got))
	assert.Equal(t, created.ID, got.ID)
	assert.False(t, dec.More())
}
