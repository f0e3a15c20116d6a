package appointment

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mero-vet/vet-clinic-app-sub000/internal/model"
	"github.com/mero-vet/vet-clinic-app-sub000/pkg/errors"
)

func slotTimes(slots []model.TimeSlot) []string {
	out := make([]string, 0, len(slots))
	for _, s := range slots {
		out = append(out, s.Time.String())
	}
	return out
}

func TestGetAvailableSlots_EmptyDay(t *testing.T) {
	env := newTestEnv(t)

	slots, err := env.svc.GetAvailableSlots(context.Background(), SlotQuery{Date: monday, ProviderID: "P001", AppointmentTypeID: "wellness"})
	require.NoError(t, err)

	// 08:00..17:15 in 15 minute steps is 38 candidates; six overlap lunch
	// and the last two free slots are held back for emergencies.
	require.Len(t, slots, 30)
	assert.Equal(t, "08:00", slots[0].Time.String())
	assert.Equal(t, "08:40", slots[0].EndTime.String())
	assert.Equal(t, "16:45", slots[len(slots)-1].Time.String())
	assert.NotContains(t, slotTimes(slots), "11:30")
	assert.NotContains(t, slotTimes(slots), "12:45")
	assert.Contains(t, slotTimes(slots), "11:15")
	assert.Contains(t, slotTimes(slots), "13:00")

	for i := 1; i < len(slots); i++ {
		assert.Less(t, slots[i-1].Time, slots[i].Time)
	}
}

func TestGetAvailableSlots_EmergencyIgnoresReserve(t *testing.T) {
	env := newTestEnv(t)

	slots, err := env.svc.GetAvailableSlots(context.Background(), SlotQuery{Date: monday, ProviderID: "P001", AppointmentTypeID: "emergency"})
	require.NoError(t, err)
	require.NotEmpty(t, slots)
	assert.Equal(t, "16:45", slots[len(slots)-1].Time.String(), "75 minute visit ending at close")
}

func TestGetAvailableSlots_Soundness(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	env.book(t, wellness("P001", monday, nineAM))
	env.book(t, wellness("P001", monday, model.NewClockTime(15, 10)))
	_, err := env.svc.BlockTime(ctx, "P001", &model.BlockTimeRequest{
		Date:      monday,
		StartTime: model.NewClockTime(10, 30).Ptr(),
		EndTime:   model.NewClockTime(11, 0).Ptr(),
	})
	require.NoError(t, err)

	slots, err := env.svc.GetAvailableSlots(ctx, SlotQuery{Date: monday, ProviderID: "P001", AppointmentTypeID: "wellness"})
	require.NoError(t, err)
	require.NotEmpty(t, slots)

	times := slotTimes(slots)
	assert.NotContains(t, times, "09:00")
	assert.NotContains(t, times, "08:30")
	assert.Contains(t, times, "09:45")
	assert.NotContains(t, times, "10:00", "runs into the block")
	assert.Contains(t, times, "11:00")

	for _, slot := range slots {
		avail, err := env.svc.CheckAvailability(ctx, AvailabilityQuery{
			Date:              monday,
			Time:              slot.Time,
			ProviderID:        "P001",
			AppointmentTypeID: "wellness",
		})
		require.NoError(t, err)
		assert.True(t, avail.Available, "slot %s: %s", slot.Time, avail.Reason)
	}
}

func TestGetAvailableSlots_ClosedDayAndErrors(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	slots, err := env.svc.GetAvailableSlots(ctx, SlotQuery{Date: sunday, ProviderID: "P001", AppointmentTypeID: "wellness"})
	require.NoError(t, err)
	assert.Empty(t, slots)

	_, err = env.svc.GetAvailableSlots(ctx, SlotQuery{Date: monday, ProviderID: "T001", AppointmentTypeID: "surgery"})
	assert.True(t, errors.IsValidation(err))

	_, err = env.svc.GetAvailableSlots(ctx, SlotQuery{Date: monday, ProviderID: "P404", AppointmentTypeID: "wellness"})
	assert.True(t, errors.IsNotFound(err))

	_, err = env.svc.GetAvailableSlots(ctx, SlotQuery{Date: monday, ProviderID: "P001", AppointmentTypeID: "boarding"})
	assert.True(t, errors.IsNotFound(err))
}

func TestGetAvailableSlots_CacheInvalidatedByWrites(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	q := SlotQuery{Date: monday, ProviderID: "P001", AppointmentTypeID: "wellness"}

	before, err := env.svc.GetAvailableSlots(ctx, q)
	require.NoError(t, err)
	again, err := env.svc.GetAvailableSlots(ctx, q)
	require.NoError(t, err)
	assert.Equal(t, before, again)

	env.book(t, wellness("P001", monday, model.NewClockTime(8, 0)))

	after, err := env.svc.GetAvailableSlots(ctx, q)
	require.NoError(t, err)
	assert.NotContains(t, slotTimes(after), "08:00")
	assert.Less(t, len(after), len(before))
}

func TestSlotIterator_LazyAndRestartable(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()

	it, err := env.svc.Slots(ctx, SlotQuery{Date: monday, ProviderID: "P001", AppointmentTypeID: "wellness", Duration: 30})
	require.NoError(t, err)

	first, ok, err := it.Next(ctx)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "08:00", first.Time.String())
	assert.Equal(t, "08:30", first.EndTime.String())

	second, ok, err := it.Next(ctx)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "08:15", second.Time.String())

	env.book(t, wellness("P001", monday, model.NewClockTime(8, 0)))

	it.Reset()
	restarted, ok, err := it.Next(ctx)
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "08:45", restarted.Time.String(), "reset reads the day again")

	count := 1
	for {
		_, ok, err := it.Next(ctx)
		require.NoError(t, err)
		if !ok {
			break
		}
		count++
	}
	_, ok, err = it.Next(ctx)
	require.NoError(t, err)
	assert.False(t, ok, "stays exhausted")
	assert.Greater(t, count, 1)

	cancelled, cancel := context.WithCancel(ctx)
	cancel()
	it.Reset()
	_, _, err = it.Next(cancelled)
	assert.ErrorIs(t, err, context.Canceled)
}
