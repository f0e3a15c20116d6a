package catalog

import (
	"fmt"
	"strings"
	"time"

	"github.com/mero-vet/vet-clinic-app-sub000/config"
	"github.com/mero-vet/vet-clinic-app-sub000/internal/model"
)

var weekdays = map[string]time.Weekday{
	"sunday":    time.Sunday,
	"monday":    time.Monday,
	"tuesday":   time.Tuesday,
	"wednesday": time.Wednesday,
	"thursday":  time.Thursday,
	"friday":    time.Friday,
	"saturday":  time.Saturday,
}

// FromConfig builds a catalog from the YAML sections, using the defaults
// for any section left empty.
func FromConfig(cfg config.CatalogConfig) (*Catalog, error) {
	src := DefaultSource()

	if len(cfg.AppointmentTypes) > 0 {
		types := make([]model.AppointmentType, 0, len(cfg.AppointmentTypes))
		for _, tc := range cfg.AppointmentTypes {
			types = append(types, typeFromConfig(tc))
		}
		src.Types = types
		// default reminder overrides only make sense for the default types
		src.Reminders = nil
	}

	if len(cfg.BusinessHours) > 0 {
		hours := make(map[time.Weekday]model.BusinessHours, len(cfg.BusinessHours))
		for name, hc := range cfg.BusinessHours {
			day, ok := weekdays[strings.ToLower(name)]
			if !ok {
				return nil, fmt.Errorf("unknown weekday %q in business hours", name)
			}
			h, err := hoursFromConfig(hc)
			if err != nil {
				return nil, fmt.Errorf("business hours for %s: %w", name, err)
			}
			hours[day] = h
		}
		src.Hours = hours
	}

	if cfg.Rules != nil {
		rules, err := rulesFromConfig(*cfg.Rules)
		if err != nil {
			return nil, err
		}
		src.Rules = rules
	}

	if len(cfg.Reminders) > 0 {
		reminders := make(map[string][]model.ReminderRule, len(cfg.Reminders))
		for _, set := range cfg.Reminders {
			reminders[set.AppointmentType] = remindersFromConfig(set.Rules)
		}
		src.Reminders = reminders
	}
	if len(cfg.DefaultReminders) > 0 {
		src.DefaultReminders = remindersFromConfig(cfg.DefaultReminders)
	}

	return New(src)
}

func typeFromConfig(tc config.AppointmentTypeConfig) model.AppointmentType {
	kinds := make([]model.ResourceKind, 0, len(tc.RequiredResources))
	for _, k := range tc.RequiredResources {
		kinds = append(kinds, model.ResourceKind(k))
	}
	return model.AppointmentType{
		ID:                 tc.ID,
		Name:               tc.Name,
		Duration:           tc.Duration,
		Buffer:             tc.Buffer,
		RequiredResources:  kinds,
		Color:              tc.Color,
		Price:              model.PriceRange{Min: tc.PriceMin, Max: tc.PriceMax},
		RequiresPreAuth:    tc.RequiresPreAuth,
		RequiresPrivacy:    tc.RequiresPrivacy,
		Priority:           model.Priority(tc.Priority),
		AllowDoubleBooking: tc.AllowDoubleBooking,
	}
}

func hoursFromConfig(hc config.HoursConfig) (model.BusinessHours, error) {
	if hc.Closed {
		return model.BusinessHours{Closed: true}, nil
	}
	open, err := model.ParseClockTime(hc.Open)
	if err != nil {
		return model.BusinessHours{}, err
	}
	closing, err := model.ParseClockTime(hc.Close)
	if err != nil {
		return model.BusinessHours{}, err
	}
	return model.BusinessHours{Open: open, Close: closing}, nil
}

func rulesFromConfig(rc config.RulesConfig) (model.SchedulingRules, error) {
	rules := model.SchedulingRules{
		AdvanceBookingDays:      rc.AdvanceBookingDays,
		CancellationWindowHours: rc.CancellationWindowHours,
		NoShowLimit:             rc.NoShowLimit,
		EmergencySlotReserve:    rc.EmergencySlotReserve,
	}

	if rc.LunchStart != "" || rc.LunchEnd != "" {
		start, err := model.ParseClockTime(rc.LunchStart)
		if err != nil {
			return rules, fmt.Errorf("lunch start: %w", err)
		}
		end, err := model.ParseClockTime(rc.LunchEnd)
		if err != nil {
			return rules, fmt.Errorf("lunch end: %w", err)
		}
		rules.LunchBreak = model.LunchBreak{Start: start, End: end}
		for _, k := range rc.LunchAppliesTo {
			rules.LunchBreak.AppliesTo = append(rules.LunchBreak.AppliesTo, model.ResourceKind(k))
		}
	}

	if rc.SameDayCutoff != "" {
		cutoff, err := model.ParseClockTime(rc.SameDayCutoff)
		if err != nil {
			return rules, fmt.Errorf("same day cutoff: %w", err)
		}
		rules.SameDayCutoff = cutoff
	}
	return rules, nil
}

func remindersFromConfig(rcs []config.ReminderRuleConfig) []model.ReminderRule {
	out := make([]model.ReminderRule, 0, len(rcs))
	for _, rc := range rcs {
		out = append(out, model.ReminderRule{
			DaysBefore: rc.DaysBefore,
			Method:     model.ReminderMethod(rc.Method),
			Message:    rc.Message,
		})
	}
	return out
}
