package model

import (
	"time"

	"github.com/google/uuid"
)

type AppointmentStatus string

const (
	AppointmentStatusScheduled  AppointmentStatus = "scheduled"
	AppointmentStatusConfirmed  AppointmentStatus = "confirmed"
	AppointmentStatusArrived    AppointmentStatus = "arrived"
	AppointmentStatusInProgress AppointmentStatus = "in_progress"
	AppointmentStatusCompleted  AppointmentStatus = "completed"
	AppointmentStatusNoShow     AppointmentStatus = "no_show"
	AppointmentStatusCancelled  AppointmentStatus = "cancelled"
)

// statusRank orders the forward path of the visit lifecycle.
var statusRank = map[AppointmentStatus]int{
	AppointmentStatusScheduled:  0,
	AppointmentStatusConfirmed:  1,
	AppointmentStatusArrived:    2,
	AppointmentStatusInProgress: 3,
	AppointmentStatusCompleted:  4,
}

func (s AppointmentStatus) Valid() bool {
	switch s {
	case AppointmentStatusNoShow, AppointmentStatusCancelled:
		return true
	}
	_, ok := statusRank[s]
	return ok
}

// Terminal statuses accept no further transitions.
func (s AppointmentStatus) Terminal() bool {
	return s == AppointmentStatusCompleted || s == AppointmentStatusCancelled || s == AppointmentStatusNoShow
}

// CanTransitionTo reports whether the lifecycle allows moving from s to next.
// Forward moves along scheduled -> confirmed -> arrived -> in_progress ->
// completed may skip steps; no_show and cancelled are reachable from any
// non-terminal status.
func (s AppointmentStatus) CanTransitionTo(next AppointmentStatus) bool {
	if s.Terminal() || !next.Valid() || s == next {
		return false
	}
	if next == AppointmentStatusNoShow || next == AppointmentStatusCancelled {
		return true
	}
	return statusRank[next] > statusRank[s]
}

type Appointment struct {
	ID                uuid.UUID         `json:"id"`
	Date              Date              `json:"date"`
	StartTime         ClockTime         `json:"start_time"`
	EndTime           ClockTime         `json:"end_time"`
	PatientID         string            `json:"patient_id"`
	ClientID          string            `json:"client_id"`
	ProviderID        string            `json:"provider_id"`
	AppointmentTypeID string            `json:"appointment_type_id"`
	RoomID            *string           `json:"room_id,omitempty"`
	Reason            string            `json:"reason,omitempty"`
	Notes             string            `json:"notes,omitempty"`
	Status            AppointmentStatus `json:"status"`
	CreatedAt         time.Time         `json:"created_at"`
	UpdatedAt         time.Time         `json:"updated_at"`

	ConfirmationSent   bool            `json:"confirmation_sent"`
	ConfirmationMethod *ReminderMethod `json:"confirmation_method,omitempty"`
	ConfirmationSentAt *time.Time      `json:"confirmation_sent_at,omitempty"`
	RescheduleCount    int             `json:"reschedule_count"`
	Reminders          []Reminder      `json:"reminders"`

	ArrivedAt          *time.Time `json:"arrived_at,omitempty"`
	InRoomAt           *time.Time `json:"in_room_at,omitempty"`
	WaitMinutes        *int       `json:"wait_minutes,omitempty"`
	CompletedAt        *time.Time `json:"completed_at,omitempty"`
	NoShow             bool       `json:"no_show"`
	ExceedsNoShowLimit bool       `json:"exceeds_no_show_limit"`
	CancelledAt        *time.Time `json:"cancelled_at,omitempty"`
	CancelReason       *string    `json:"cancel_reason,omitempty"`
	LateCancellation   bool       `json:"late_cancellation"`
}

// Interval returns the occupied minutes of the appointment.
func (a *Appointment) Interval() Interval {
	return Interval{Start: a.StartTime, End: a.EndTime}
}

// Occupies reports whether the appointment still holds its time slot.
func (a *Appointment) Occupies() bool {
	return a.Status != AppointmentStatusCancelled
}

// StartsAt anchors the appointment start in loc.
func (a *Appointment) StartsAt(loc *time.Location) time.Time {
	return a.Date.At(a.StartTime, loc)
}

// Clone returns a deep copy so callers never alias stored records.
func (a *Appointment) Clone() *Appointment {
	if a == nil {
		return nil
	}
	c := *a
	if a.RoomID != nil {
		room := *a.RoomID
		c.RoomID = &room
	}
	if a.CancelReason != nil {
		reason := *a.CancelReason
		c.CancelReason = &reason
	}
	if a.WaitMinutes != nil {
		wait := *a.WaitMinutes
		c.WaitMinutes = &wait
	}
	if a.ConfirmationMethod != nil {
		m := *a.ConfirmationMethod
		c.ConfirmationMethod = &m
	}
	c.ArrivedAt = cloneTime(a.ArrivedAt)
	c.InRoomAt = cloneTime(a.InRoomAt)
	c.CompletedAt = cloneTime(a.CompletedAt)
	c.CancelledAt = cloneTime(a.CancelledAt)
	c.ConfirmationSentAt = cloneTime(a.ConfirmationSentAt)
	c.Reminders = append([]Reminder(nil), a.Reminders...)
	return &c
}

func cloneTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := *t
	return &v
}

// CreateAppointmentRequest times are pointers so an omitted start_time is
// reported as missing rather than read as 00:00.
type CreateAppointmentRequest struct {
	Date              Date       `json:"date" validate:"required"`
	StartTime         *ClockTime `json:"start_time" validate:"required"`
	PatientID         string     `json:"patient_id" validate:"required"`
	ClientID          string     `json:"client_id" validate:"required"`
	ProviderID        string     `json:"provider_id" validate:"required"`
	AppointmentTypeID string     `json:"appointment_type_id" validate:"required"`
	RoomID            *string    `json:"room_id,omitempty"`
	Reason            string     `json:"reason" validate:"max=500"`
	Notes             string     `json:"notes" validate:"max=2000"`
}

type RescheduleRequest struct {
	Date       Date       `json:"date" validate:"required"`
	StartTime  *ClockTime `json:"start_time" validate:"required"`
	ProviderID *string    `json:"provider_id,omitempty"`
}

type UpdateStatusRequest struct {
	Status AppointmentStatus `json:"status" validate:"required"`
}

type CancelRequest struct {
	Reason string `json:"reason" validate:"max=500"`
}

type ConfirmationRequest struct {
	Method    ReminderMethod `json:"method" validate:"required,oneof=sms email"`
	Recipient string         `json:"recipient,omitempty" validate:"omitempty,max=254"`
}

type AppointmentFilters struct {
	ProviderID       string
	RoomID           string
	PatientID        string
	ClientID         string
	Status           AppointmentStatus
	IncludeCancelled bool
}

// Matches applies the filters to a single appointment.
func (f *AppointmentFilters) Matches(a *Appointment) bool {
	if f == nil {
		return a.Status != AppointmentStatusCancelled
	}
	if f.ProviderID != "" && a.ProviderID != f.ProviderID {
		return false
	}
	if f.RoomID != "" && (a.RoomID == nil || *a.RoomID != f.RoomID) {
		return false
	}
	if f.PatientID != "" && a.PatientID != f.PatientID {
		return false
	}
	if f.ClientID != "" && a.ClientID != f.ClientID {
		return false
	}
	if f.Status != "" {
		return a.Status == f.Status
	}
	if !f.IncludeCancelled && a.Status == AppointmentStatusCancelled {
		return false
	}
	return true
}

type BlockedInterval struct {
	ID         uuid.UUID `json:"id"`
	ProviderID string    `json:"provider_id"`
	Date       Date      `json:"date"`
	StartTime  ClockTime `json:"start_time"`
	EndTime    ClockTime `json:"end_time"`
	Reason     string    `json:"reason,omitempty"`
	CreatedAt  time.Time `json:"created_at"`
}

func (b *BlockedInterval) Interval() Interval {
	return Interval{Start: b.StartTime, End: b.EndTime}
}

type BlockTimeRequest struct {
	Date      Date       `json:"date" validate:"required"`
	StartTime *ClockTime `json:"start_time" validate:"required"`
	EndTime   *ClockTime `json:"end_time" validate:"required"`
	Reason    string     `json:"reason" validate:"max=500"`
}

// TimeSlot is an open start time returned by slot search.
type TimeSlot struct {
	Time    ClockTime `json:"time"`
	EndTime ClockTime `json:"end_time"`
}

// ProviderSchedule is a provider's day: business hours, bookings and blocks.
type ProviderSchedule struct {
	ProviderID   string             `json:"provider_id"`
	Date         Date               `json:"date"`
	Hours        *BusinessHours     `json:"hours,omitempty"`
	Appointments []*Appointment     `json:"appointments"`
	Blocked      []*BlockedInterval `json:"blocked"`
}
