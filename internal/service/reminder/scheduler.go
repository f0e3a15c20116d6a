package reminder

import (
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/mero-vet/vet-clinic-app-sub000/internal/catalog"
	"github.com/mero-vet/vet-clinic-app-sub000/internal/model"
)

const defaultMessage = "Reminder: your {type} appointment is on {date} at {time}."

// Scheduler derives reminder records from the catalog's reminder rules.
// It performs no I/O.
type Scheduler struct {
	catalog *catalog.Catalog
}

func NewScheduler(cat *catalog.Catalog) *Scheduler {
	return &Scheduler{catalog: cat}
}

// Schedule returns one scheduled reminder per rule for an appointment of
// typeID starting at at. Rules with no message get the default template.
func (s *Scheduler) Schedule(typeID string, at time.Time) []model.Reminder {
	rules := s.catalog.ReminderRules(typeID)
	if len(rules) == 0 {
		return nil
	}

	typeName := typeID
	if t, err := s.catalog.AppointmentType(typeID); err == nil {
		typeName = t.Name
	}

	reminders := make([]model.Reminder, 0, len(rules))
	for _, rule := range rules {
		msg := rule.Message
		if msg == "" {
			msg = defaultMessage
		}
		reminders = append(reminders, model.Reminder{
			ID:           uuid.New(),
			ScheduledFor: at.AddDate(0, 0, -rule.DaysBefore),
			Method:       rule.Method,
			Message:      render(msg, typeName, at),
			Status:       model.ReminderStatusScheduled,
		})
	}
	return reminders
}

func render(msg, typeName string, at time.Time) string {
	return strings.NewReplacer(
		"{type}", typeName,
		"{date}", at.Format("Monday, January 2"),
		"{time}", at.Format("3:04 PM"),
	).Replace(msg)
}
