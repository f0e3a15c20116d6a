package waitlist

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/mero-vet/vet-clinic-app-sub000/internal/catalog"
	"github.com/mero-vet/vet-clinic-app-sub000/internal/model"
	"github.com/mero-vet/vet-clinic-app-sub000/pkg/errors"
)

type mockEmitter struct {
	mock.Mock
}

func (m *mockEmitter) Emit(ctx context.Context, eventType string, payload interface{}) error {
	args := m.Called(ctx, eventType, payload)
	return args.Error(0)
}

var june10 = model.NewDate(2024, time.June, 10)

func newTestManager(opts ...Option) *Manager {
	clock := time.Date(2024, time.June, 1, 9, 0, 0, 0, time.UTC)
	opts = append([]Option{WithClock(func() time.Time {
		clock = clock.Add(time.Second)
		return clock
	})}, opts...)
	return NewManager(catalog.Default(), opts...)
}

func addEntry(t *testing.T, m *Manager, priority model.Priority, notes string) *model.WaitlistEntry {
	t.Helper()
	e, err := m.Add(context.Background(), &model.AddToWaitlistRequest{
		PatientID:         "pet-" + notes,
		ClientID:          "client-" + notes,
		AppointmentTypeID: "wellness",
		Priority:          priority,
		Notes:             notes,
	})
	require.NoError(t, err)
	return e
}

func TestAdd_OrdersByPriorityThenInsertion(t *testing.T) {
	m := newTestManager()

	addEntry(t, m, model.PriorityRoutine, "routine-1")
	addEntry(t, m, model.PriorityEmergency, "emergency")
	addEntry(t, m, model.PriorityUrgent, "urgent")
	addEntry(t, m, model.PriorityRoutine, "routine-2")

	entries, err := m.List(context.Background(), "")
	require.NoError(t, err)

	var order []string
	for _, e := range entries {
		order = append(order, e.Notes)
	}
	assert.Equal(t, []string{"emergency", "urgent", "routine-1", "routine-2"}, order)
}

func TestAdd_DefaultsAndValidation(t *testing.T) {
	m := newTestManager()
	ctx := context.Background()

	e, err := m.Add(ctx, &model.AddToWaitlistRequest{PatientID: "p", ClientID: "c", AppointmentTypeID: "emergency"})
	require.NoError(t, err)
	assert.Equal(t, model.PriorityEmergency, e.Priority, "inherits the type priority")
	assert.Equal(t, model.WaitlistStatusWaiting, e.Status)
	assert.NotEqual(t, uuid.Nil, e.ID)

	_, err = m.Add(ctx, &model.AddToWaitlistRequest{ClientID: "c", AppointmentTypeID: "wellness"})
	assert.True(t, errors.IsValidation(err))

	_, err = m.Add(ctx, &model.AddToWaitlistRequest{PatientID: "p", ClientID: "c", AppointmentTypeID: "wellness", Priority: "asap"})
	assert.True(t, errors.IsValidation(err))

	_, err = m.Add(ctx, &model.AddToWaitlistRequest{PatientID: "p", ClientID: "c", AppointmentTypeID: "boarding"})
	assert.True(t, errors.IsNotFound(err))
}

func TestProcess_NotifiesMatchingEntries(t *testing.T) {
	emitter := new(mockEmitter)
	emitter.On("Emit", mock.Anything, model.EventWaitlistNotified, mock.Anything).Return(nil)
	m := newTestManager(WithEvents(emitter))
	ctx := context.Background()

	match, err := m.Add(ctx, &model.AddToWaitlistRequest{
		PatientID:          "rex",
		ClientID:           "c1",
		AppointmentTypeID:  "wellness",
		PreferredDates:     []model.Date{june10},
		PreferredProviders: []string{"P001"},
	})
	require.NoError(t, err)
	otherDate, err := m.Add(ctx, &model.AddToWaitlistRequest{
		PatientID:         "fido",
		ClientID:          "c2",
		AppointmentTypeID: "wellness",
		PreferredDates:    []model.Date{june10.AddDays(1)},
	})
	require.NoError(t, err)
	otherType, err := m.Add(ctx, &model.AddToWaitlistRequest{PatientID: "tom", ClientID: "c3", AppointmentTypeID: "dental"})
	require.NoError(t, err)

	notified, err := m.Process(ctx, june10, "wellness", "P001")
	require.NoError(t, err)
	require.Len(t, notified, 1)
	assert.Equal(t, match.ID, notified[0].ID)
	assert.Equal(t, model.WaitlistStatusNotified, notified[0].Status)
	assert.NotNil(t, notified[0].NotifiedAt)

	for id, want := range map[uuid.UUID]model.WaitlistStatus{
		match.ID:     model.WaitlistStatusNotified,
		otherDate.ID: model.WaitlistStatusWaiting,
		otherType.ID: model.WaitlistStatusWaiting,
	} {
		got, err := m.Get(ctx, id)
		require.NoError(t, err)
		assert.Equal(t, want, got.Status)
	}

	again, err := m.Process(ctx, june10, "wellness", "P001")
	require.NoError(t, err)
	assert.Empty(t, again, "notified entries are not notified twice")

	emitter.AssertNumberOfCalls(t, "Emit", 1)
}

func TestMarkBookedAndRemove(t *testing.T) {
	m := newTestManager()
	ctx := context.Background()
	e := addEntry(t, m, model.PriorityRoutine, "a")

	apptID := uuid.New()
	booked, err := m.MarkBooked(ctx, e.ID, apptID)
	require.NoError(t, err)
	assert.Equal(t, model.WaitlistStatusBooked, booked.Status)
	require.NotNil(t, booked.AppointmentID)
	assert.Equal(t, apptID, *booked.AppointmentID)

	_, err = m.MarkBooked(ctx, e.ID, apptID)
	assert.True(t, errors.IsInvalidTransition(err))

	list, err := m.List(ctx, model.WaitlistStatusWaiting)
	require.NoError(t, err)
	assert.Empty(t, list)

	require.NoError(t, m.Remove(ctx, e.ID))
	_, err = m.Get(ctx, e.ID)
	assert.True(t, errors.IsNotFound(err))
	assert.True(t, errors.IsNotFound(m.Remove(ctx, e.ID)))

	_, err = m.List(ctx, "expired")
	assert.True(t, errors.IsValidation(err))
}
