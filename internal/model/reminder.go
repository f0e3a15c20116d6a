package model

import (
	"time"

	"github.com/google/uuid"
)

type ReminderMethod string

const (
	ReminderMethodSMS   ReminderMethod = "sms"
	ReminderMethodEmail ReminderMethod = "email"
)

func (m ReminderMethod) Valid() bool {
	return m == ReminderMethodSMS || m == ReminderMethodEmail
}

type ReminderStatus string

const ReminderStatusScheduled ReminderStatus = "scheduled"

type Reminder struct {
	ID           uuid.UUID      `json:"id"`
	ScheduledFor time.Time      `json:"scheduled_for"`
	Method       ReminderMethod `json:"method"`
	Message      string         `json:"message"`
	Status       ReminderStatus `json:"status"`
}
