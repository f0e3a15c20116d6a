package reminder

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mero-vet/vet-clinic-app-sub000/internal/catalog"
	"github.com/mero-vet/vet-clinic-app-sub000/internal/model"
)

func TestSchedule_DefaultRules(t *testing.T) {
	s := NewScheduler(catalog.Default())
	at := time.Date(2024, time.June, 10, 9, 0, 0, 0, time.UTC)

	reminders := s.Schedule("wellness", at)
	require.Len(t, reminders, 2)

	assert.Equal(t, at.AddDate(0, 0, -2), reminders[0].ScheduledFor)
	assert.Equal(t, model.ReminderMethodEmail, reminders[0].Method)
	assert.Equal(t, at.AddDate(0, 0, -1), reminders[1].ScheduledFor)
	assert.Equal(t, model.ReminderMethodSMS, reminders[1].Method)

	for _, r := range reminders {
		assert.Equal(t, model.ReminderStatusScheduled, r.Status)
		assert.Contains(t, r.Message, "Monday, June 10")
		assert.Contains(t, r.Message, "9:00 AM")
		assert.NotContains(t, r.Message, "{")
	}
	assert.NotEqual(t, reminders[0].ID, reminders[1].ID)
}

func TestSchedule_TypeOverride(t *testing.T) {
	s := NewScheduler(catalog.Default())
	at := time.Date(2024, time.June, 20, 8, 30, 0, 0, time.UTC)

	reminders := s.Schedule("surgery", at)
	require.Len(t, reminders, 2)
	assert.Equal(t, at.AddDate(0, 0, -7), reminders[0].ScheduledFor)
	assert.Equal(t, "No food after midnight before surgery on Thursday, June 20 at 8:30 AM.", reminders[1].Message)
}

func TestSchedule_IsPure(t *testing.T) {
	s := NewScheduler(catalog.Default())
	at := time.Date(2024, time.June, 10, 14, 0, 0, 0, time.UTC)

	a := s.Schedule("dental", at)
	b := s.Schedule("dental", at)
	require.Len(t, b, len(a))
	for i := range a {
		assert.Equal(t, a[i].ScheduledFor, b[i].ScheduledFor)
		assert.Equal(t, a[i].Message, b[i].Message)
	}
}
