package model

import (
	"time"

	"github.com/google/uuid"
)

type NotificationStatus string

const (
	NotificationStatusPending NotificationStatus = "pending"
	NotificationStatusSent    NotificationStatus = "sent"
	NotificationStatusFailed  NotificationStatus = "failed"
)

// Notification is a confirmation or reminder handed to a delivery channel.
type Notification struct {
	ID            uuid.UUID          `json:"id"`
	AppointmentID uuid.UUID          `json:"appointment_id"`
	ClientID      string             `json:"client_id"`
	Channel       ReminderMethod     `json:"channel"`
	Recipient     string             `json:"recipient,omitempty"`
	Subject       string             `json:"subject"`
	Content       string             `json:"content"`
	Status        NotificationStatus `json:"status"`
	LastError     string             `json:"last_error,omitempty"`
	SentAt        *time.Time         `json:"sent_at,omitempty"`
	CreatedAt     time.Time          `json:"created_at"`
}
