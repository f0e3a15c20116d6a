package model

import (
	"time"

	"github.com/google/uuid"
)

type WaitlistStatus string

const (
	WaitlistStatusWaiting  WaitlistStatus = "waiting"
	WaitlistStatusNotified WaitlistStatus = "notified"
	WaitlistStatusBooked   WaitlistStatus = "booked"
)

type WaitlistEntry struct {
	ID                 uuid.UUID      `json:"id"`
	PatientID          string         `json:"patient_id"`
	ClientID           string         `json:"client_id"`
	AppointmentTypeID  string         `json:"appointment_type_id"`
	PreferredDates     []Date         `json:"preferred_dates,omitempty"`
	PreferredProviders []string       `json:"preferred_providers,omitempty"`
	Priority           Priority       `json:"priority"`
	Notes              string         `json:"notes,omitempty"`
	Status             WaitlistStatus `json:"status"`
	CreatedAt          time.Time      `json:"created_at"`
	NotifiedAt         *time.Time     `json:"notified_at,omitempty"`
	AppointmentID      *uuid.UUID     `json:"appointment_id,omitempty"`
}

// Accepts reports whether a freed slot satisfies the entry's preferences.
// Empty preference sets accept anything.
func (w *WaitlistEntry) Accepts(date Date, typeID, providerID string) bool {
	if w.AppointmentTypeID != typeID {
		return false
	}
	if len(w.PreferredProviders) > 0 && !containsString(w.PreferredProviders, providerID) {
		return false
	}
	if len(w.PreferredDates) > 0 {
		for _, d := range w.PreferredDates {
			if d == date {
				return true
			}
		}
		return false
	}
	return true
}

func (w *WaitlistEntry) Clone() *WaitlistEntry {
	c := *w
	c.PreferredDates = append([]Date(nil), w.PreferredDates...)
	c.PreferredProviders = append([]string(nil), w.PreferredProviders...)
	c.NotifiedAt = cloneTime(w.NotifiedAt)
	if w.AppointmentID != nil {
		id := *w.AppointmentID
		c.AppointmentID = &id
	}
	return &c
}

func containsString(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

type AddToWaitlistRequest struct {
	PatientID          string   `json:"patient_id" validate:"required"`
	ClientID           string   `json:"client_id" validate:"required"`
	AppointmentTypeID  string   `json:"appointment_type_id" validate:"required"`
	PreferredDates     []Date   `json:"preferred_dates"`
	PreferredProviders []string `json:"preferred_providers"`
	Priority           Priority `json:"priority" validate:"omitempty,oneof=emergency urgent routine convenience"`
	Notes              string   `json:"notes" validate:"max=2000"`
}

type MarkBookedRequest struct {
	AppointmentID uuid.UUID `json:"appointment_id" validate:"required"`
}
