package catalog

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mero-vet/vet-clinic-app-sub000/config"
	"github.com/mero-vet/vet-clinic-app-sub000/internal/model"
	"github.com/mero-vet/vet-clinic-app-sub000/pkg/errors"
)

func TestDefaultCatalog(t *testing.T) {
	c := Default()

	wellness, err := c.AppointmentType("wellness")
	require.NoError(t, err)
	assert.Equal(t, 40, wellness.TotalDuration())

	total, err := c.TotalDuration("surgery")
	require.NoError(t, err)
	assert.Equal(t, 150, total)

	_, err = c.AppointmentType("boarding")
	assert.True(t, errors.IsNotFound(err))

	monday := model.NewDate(2024, time.June, 10)
	hours, open := c.HoursFor(monday)
	require.True(t, open)
	assert.Equal(t, "08:00", hours.Open.String())
	assert.Equal(t, "18:00", hours.Close.String())

	_, open = c.HoursFor(model.NewDate(2024, time.June, 16))
	assert.False(t, open, "sunday is closed")

	assert.Len(t, c.WeeklyHours(), 7)
}

func TestCatalog_ReturnsCopies(t *testing.T) {
	c := Default()

	wellness, err := c.AppointmentType("wellness")
	require.NoError(t, err)
	wellness.Duration = 999
	wellness.RequiredResources[0] = model.KindGroomer

	again, err := c.AppointmentType("wellness")
	require.NoError(t, err)
	assert.Equal(t, 30, again.Duration)
	assert.Equal(t, model.KindVeterinarian, again.RequiredResources[0])
}

func TestCatalog_ReminderRules(t *testing.T) {
	c := Default()

	surgery := c.ReminderRules("surgery")
	require.Len(t, surgery, 2)
	assert.Equal(t, 7, surgery[0].DaysBefore)
	assert.Equal(t, model.ReminderMethodEmail, surgery[0].Method)

	fallback := c.ReminderRules("wellness")
	require.Len(t, fallback, 2)
	assert.Equal(t, 2, fallback[0].DaysBefore)
	assert.Equal(t, 1, fallback[1].DaysBefore)
}

func TestCatalog_Capabilities(t *testing.T) {
	c := Default()

	assert.True(t, c.ProviderCanPerform(model.KindVeterinarian, "surgery"))
	assert.False(t, c.ProviderCanPerform(model.KindTechnician, "surgery"))
	assert.True(t, c.ProviderCanPerform(model.KindTechnician, "vaccination"))
	assert.False(t, c.ProviderCanPerform(model.KindVeterinarian, "grooming"))
	assert.False(t, c.ProviderCanPerform(model.KindVeterinarian, "unknown"))

	assert.Equal(t, []string{"grooming"}, c.Capabilities(model.KindGroomer))
}

func TestNew_Rejects(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Source)
	}{
		{"no types", func(s *Source) { s.Types = nil }},
		{"duplicate type", func(s *Source) { s.Types = append(s.Types, s.Types[0]) }},
		{"zero duration", func(s *Source) { s.Types[0].Duration = 0 }},
		{"bad priority", func(s *Source) { s.Types[0].Priority = "whenever" }},
		{"bad resource", func(s *Source) { s.Types[0].RequiredResources = []model.ResourceKind{"kennel"} }},
		{"inverted hours", func(s *Source) {
			s.Hours[time.Monday] = model.BusinessHours{Open: hm(18, 0), Close: hm(8, 0)}
		}},
		{"unknown reminder type", func(s *Source) {
			s.Reminders["boarding"] = []model.ReminderRule{{DaysBefore: 1, Method: model.ReminderMethodSMS}}
		}},
		{"bad reminder method", func(s *Source) {
			s.DefaultReminders = []model.ReminderRule{{DaysBefore: 1, Method: "pigeon"}}
		}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src := DefaultSource()
			tt.mutate(&src)
			_, err := New(src)
			assert.Error(t, err)
		})
	}
}

func TestFromConfig(t *testing.T) {
	t.Run("empty config uses defaults", func(t *testing.T) {
		c, err := FromConfig(config.CatalogConfig{})
		require.NoError(t, err)
		assert.Len(t, c.AppointmentTypes(), len(DefaultSource().Types))
	})

	t.Run("overrides", func(t *testing.T) {
		c, err := FromConfig(config.CatalogConfig{
			AppointmentTypes: []config.AppointmentTypeConfig{
				{ID: "checkup", Name: "Checkup", Duration: 20, Buffer: 10, RequiredResources: []string{"veterinarian", "exam_room"}},
			},
			BusinessHours: map[string]config.HoursConfig{
				"monday": {Open: "07:30", Close: "12:00"},
				"sunday": {Closed: true},
			},
			Rules: &config.RulesConfig{
				LunchStart:     "11:00",
				LunchEnd:       "11:30",
				LunchAppliesTo: []string{"veterinarian"},
				SameDayCutoff:  "10:00",
				NoShowLimit:    2,
			},
			DefaultReminders: []config.ReminderRuleConfig{{DaysBefore: 3, Method: "email"}},
		})
		require.NoError(t, err)

		checkup, err := c.AppointmentType("checkup")
		require.NoError(t, err)
		assert.Equal(t, model.PriorityRoutine, checkup.Priority)
		assert.Equal(t, 30, checkup.TotalDuration())

		hours, open := c.HoursFor(model.NewDate(2024, time.June, 10))
		require.True(t, open)
		assert.Equal(t, "07:30", hours.Open.String())

		_, open = c.HoursFor(model.NewDate(2024, time.June, 11))
		assert.False(t, open, "days missing from config are closed")

		rules := c.Rules()
		assert.Equal(t, "11:00", rules.LunchBreak.Start.String())
		assert.Equal(t, 2, rules.NoShowLimit)
		assert.Equal(t, []model.ReminderRule{{DaysBefore: 3, Method: model.ReminderMethodEmail}}, c.ReminderRules("checkup"))
	})

	t.Run("bad weekday", func(t *testing.T) {
		_, err := FromConfig(config.CatalogConfig{
			BusinessHours: map[string]config.HoursConfig{"funday": {Open: "08:00", Close: "09:00"}},
		})
		assert.Error(t, err)
	})
}
