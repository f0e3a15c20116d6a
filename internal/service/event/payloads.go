package event

import (
	"time"

	"github.com/google/uuid"

	"github.com/mero-vet/vet-clinic-app-sub000/internal/model"
)

// AppointmentPayload is the body of every appointment.* event.
type AppointmentPayload struct {
	AppointmentID     uuid.UUID               `json:"appointment_id"`
	Date              model.Date              `json:"date"`
	StartTime         model.ClockTime         `json:"start_time"`
	EndTime           model.ClockTime         `json:"end_time"`
	ProviderID        string                  `json:"provider_id"`
	RoomID            *string                 `json:"room_id,omitempty"`
	ClientID          string                  `json:"client_id"`
	PatientID         string                  `json:"patient_id"`
	AppointmentTypeID string                  `json:"appointment_type_id"`
	Status            model.AppointmentStatus `json:"status"`
	PreviousStatus    model.AppointmentStatus `json:"previous_status,omitempty"`
	PreviousDate      *model.Date             `json:"previous_date,omitempty"`
	PreviousStartTime *model.ClockTime        `json:"previous_start_time,omitempty"`
	LateCancellation  bool                    `json:"late_cancellation,omitempty"`
	Method            model.ReminderMethod    `json:"method,omitempty"`
	Reminders         []model.Reminder        `json:"reminders,omitempty"`
	OccurredAt        time.Time               `json:"occurred_at"`
}

func NewAppointmentPayload(a *model.Appointment, at time.Time) *AppointmentPayload {
	return &AppointmentPayload{
		AppointmentID:     a.ID,
		Date:              a.Date,
		StartTime:         a.StartTime,
		EndTime:           a.EndTime,
		ProviderID:        a.ProviderID,
		RoomID:            a.RoomID,
		ClientID:          a.ClientID,
		PatientID:         a.PatientID,
		AppointmentTypeID: a.AppointmentTypeID,
		Status:            a.Status,
		LateCancellation:  a.LateCancellation,
		Reminders:         a.Reminders,
		OccurredAt:        at,
	}
}

type WaitlistPayload struct {
	EntryID           uuid.UUID  `json:"entry_id"`
	ClientID          string     `json:"client_id"`
	PatientID         string     `json:"patient_id"`
	AppointmentTypeID string     `json:"appointment_type_id"`
	Date              model.Date `json:"date"`
	ProviderID        string     `json:"provider_id"`
	OccurredAt        time.Time  `json:"occurred_at"`
}

type BlockPayload struct {
	BlockID    uuid.UUID       `json:"block_id"`
	ProviderID string          `json:"provider_id"`
	Date       model.Date      `json:"date"`
	StartTime  model.ClockTime `json:"start_time"`
	EndTime    model.ClockTime `json:"end_time"`
	Reason     string          `json:"reason,omitempty"`
}
