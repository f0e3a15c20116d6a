package event

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mero-vet/vet-clinic-app-sub000/internal/model"
	"github.com/mero-vet/vet-clinic-app-sub000/internal/repository/memory"
)

func TestEmitWritesOutbox(t *testing.T) {
	ctx := context.Background()
	repo := memory.NewOutboxRepository()
	svc := NewService(repo)

	appt := &model.Appointment{
		ID:                uuid.New(),
		Date:              model.NewDate(2024, time.June, 10),
		StartTime:         model.NewClockTime(9, 0),
		EndTime:           model.NewClockTime(9, 40),
		ProviderID:        "P001",
		AppointmentTypeID: "wellness",
		Status:            model.AppointmentStatusScheduled,
	}
	require.NoError(t, svc.Emit(ctx, model.EventAppointmentCreated, NewAppointmentPayload(appt, time.Now())))

	events, err := repo.ClaimPending(ctx, 10)
	require.NoError(t, err)
	require.Len(t, events, 1)
	assert.Equal(t, model.EventAppointmentCreated, events[0].EventType)

	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(events[0].Payload, &body))
	assert.Equal(t, "2024-06-10", body["date"])
	assert.Equal(t, "09:00", body["start_time"])
	assert.Equal(t, "09:40", body["end_time"])
	assert.Equal(t, "P001", body["provider_id"])
}

func TestEmitRejectsUnmarshalablePayload(t *testing.T) {
	svc := NewService(memory.NewOutboxRepository())
	err := svc.Emit(context.Background(), "bad", map[string]interface{}{"ch": make(chan int)})
	assert.Error(t, err)
}
