package catalog

import (
	"fmt"
	"sort"
	"time"

	"github.com/mero-vet/vet-clinic-app-sub000/internal/model"
	"github.com/mero-vet/vet-clinic-app-sub000/pkg/errors"
)

// Catalog is the clinic's static configuration: appointment types, weekly
// business hours, scheduling rules and reminder rules. It is immutable once
// built and safe for concurrent use.
type Catalog struct {
	types            map[string]*model.AppointmentType
	typeOrder        []string
	hours            map[time.Weekday]model.BusinessHours
	rules            model.SchedulingRules
	reminders        map[string][]model.ReminderRule
	defaultReminders []model.ReminderRule
}

// Source is the raw material for a catalog.
type Source struct {
	Types            []model.AppointmentType
	Hours            map[time.Weekday]model.BusinessHours
	Rules            model.SchedulingRules
	Reminders        map[string][]model.ReminderRule
	DefaultReminders []model.ReminderRule
}

func New(src Source) (*Catalog, error) {
	c := &Catalog{
		types:            make(map[string]*model.AppointmentType, len(src.Types)),
		hours:            make(map[time.Weekday]model.BusinessHours, 7),
		rules:            src.Rules,
		reminders:        make(map[string][]model.ReminderRule, len(src.Reminders)),
		defaultReminders: append([]model.ReminderRule(nil), src.DefaultReminders...),
	}

	if len(src.Types) == 0 {
		return nil, fmt.Errorf("catalog needs at least one appointment type")
	}
	for i := range src.Types {
		t := src.Types[i]
		if err := validateType(&t); err != nil {
			return nil, err
		}
		if _, dup := c.types[t.ID]; dup {
			return nil, fmt.Errorf("duplicate appointment type %q", t.ID)
		}
		t.RequiredResources = append([]model.ResourceKind(nil), t.RequiredResources...)
		c.types[t.ID] = &t
		c.typeOrder = append(c.typeOrder, t.ID)
	}

	for day, h := range src.Hours {
		if !h.Closed && h.Close <= h.Open {
			return nil, fmt.Errorf("business hours for %s close before they open", day)
		}
		c.hours[day] = h
	}

	if l := src.Rules.LunchBreak; l.End < l.Start {
		return nil, fmt.Errorf("lunch break ends before it starts")
	}

	for typeID, rules := range src.Reminders {
		if _, ok := c.types[typeID]; !ok {
			return nil, fmt.Errorf("reminder rules reference unknown appointment type %q", typeID)
		}
		for _, r := range rules {
			if err := validateReminder(r); err != nil {
				return nil, fmt.Errorf("reminder rule for %q: %w", typeID, err)
			}
		}
		c.reminders[typeID] = append([]model.ReminderRule(nil), rules...)
	}
	for _, r := range c.defaultReminders {
		if err := validateReminder(r); err != nil {
			return nil, fmt.Errorf("default reminder rule: %w", err)
		}
	}

	return c, nil
}

func validateType(t *model.AppointmentType) error {
	if t.ID == "" {
		return fmt.Errorf("appointment type id is required")
	}
	if t.Duration <= 0 {
		return fmt.Errorf("appointment type %q: duration must be positive", t.ID)
	}
	if t.Buffer < 0 {
		return fmt.Errorf("appointment type %q: buffer must not be negative", t.ID)
	}
	if t.Priority == "" {
		t.Priority = model.PriorityRoutine
	}
	if !t.Priority.Valid() {
		return fmt.Errorf("appointment type %q: unknown priority %q", t.ID, t.Priority)
	}
	for _, k := range t.RequiredResources {
		if !k.Valid() {
			return fmt.Errorf("appointment type %q: unknown resource kind %q", t.ID, k)
		}
	}
	return nil
}

func validateReminder(r model.ReminderRule) error {
	if r.DaysBefore < 0 {
		return fmt.Errorf("days before must not be negative")
	}
	if !r.Method.Valid() {
		return fmt.Errorf("unknown reminder method %q", r.Method)
	}
	return nil
}

// AppointmentType returns a copy of the type with id.
func (c *Catalog) AppointmentType(id string) (*model.AppointmentType, error) {
	t, ok := c.types[id]
	if !ok {
		return nil, errors.NewNotFound(fmt.Sprintf("appointment type %q", id), nil)
	}
	cp := *t
	cp.RequiredResources = append([]model.ResourceKind(nil), t.RequiredResources...)
	return &cp, nil
}

// AppointmentTypes lists types in configuration order.
func (c *Catalog) AppointmentTypes() []model.AppointmentType {
	out := make([]model.AppointmentType, 0, len(c.typeOrder))
	for _, id := range c.typeOrder {
		out = append(out, *c.types[id])
	}
	return out
}

// TotalDuration is duration plus buffer for the type.
func (c *Catalog) TotalDuration(typeID string) (int, error) {
	t, ok := c.types[typeID]
	if !ok {
		return 0, errors.NewNotFound(fmt.Sprintf("appointment type %q", typeID), nil)
	}
	return t.TotalDuration(), nil
}

// HoursFor returns the business hours of date's weekday. ok is false when
// the clinic is closed that day.
func (c *Catalog) HoursFor(date model.Date) (model.BusinessHours, bool) {
	h, ok := c.hours[date.Weekday()]
	if !ok || h.Closed {
		return model.BusinessHours{Closed: true}, false
	}
	return h, true
}

// WeeklyHours returns the configured week, Sunday first.
func (c *Catalog) WeeklyHours() []WeekdayHours {
	out := make([]WeekdayHours, 0, 7)
	for d := time.Sunday; d <= time.Saturday; d++ {
		h, ok := c.hours[d]
		if !ok {
			h = model.BusinessHours{Closed: true}
		}
		out = append(out, WeekdayHours{Weekday: d, Hours: h})
	}
	return out
}

type WeekdayHours struct {
	Weekday time.Weekday
	Hours   model.BusinessHours
}

func (c *Catalog) Rules() model.SchedulingRules {
	r := c.rules
	r.LunchBreak.AppliesTo = append([]model.ResourceKind(nil), c.rules.LunchBreak.AppliesTo...)
	return r
}

// ReminderRules returns the rule set for the type, falling back to the
// default set when the type has none of its own. Rules are ordered from the
// furthest ahead to the closest.
func (c *Catalog) ReminderRules(typeID string) []model.ReminderRule {
	rules, ok := c.reminders[typeID]
	if !ok {
		rules = c.defaultReminders
	}
	out := append([]model.ReminderRule(nil), rules...)
	sort.SliceStable(out, func(i, j int) bool { return out[i].DaysBefore > out[j].DaysBefore })
	return out
}

// ProviderCanPerform reports whether a provider of kind may perform the
// type. A type that names no provider kinds may be performed by anyone.
func (c *Catalog) ProviderCanPerform(kind model.ResourceKind, typeID string) bool {
	t, ok := c.types[typeID]
	if !ok {
		return false
	}
	kinds := t.RequiredProviderKinds()
	if len(kinds) == 0 {
		return true
	}
	for _, k := range kinds {
		if k == kind {
			return true
		}
	}
	return false
}

// Capabilities lists the type ids each provider kind may perform.
func (c *Catalog) Capabilities(kind model.ResourceKind) []string {
	var ids []string
	for _, id := range c.typeOrder {
		if c.ProviderCanPerform(kind, id) {
			ids = append(ids, id)
		}
	}
	return ids
}
