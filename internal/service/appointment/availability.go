package appointment

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/mero-vet/vet-clinic-app-sub000/internal/model"
	"github.com/mero-vet/vet-clinic-app-sub000/pkg/errors"
)

// Reasons reported when a candidate slot is rejected, in check order.
const (
	ReasonProviderConflict = "Provider has a conflicting appointment"
	ReasonRoomConflict     = "Room is already booked"
	ReasonOutsideHours     = "Outside business hours"
	ReasonClosed           = "Clinic is closed on this day"
	ReasonLunchBreak       = "Provider is on lunch break"
	ReasonBlockedTime      = "Provider time is blocked"
)

// Short codes used as metric labels.
const (
	CodeProviderConflict = "provider_conflict"
	CodeRoomConflict     = "room_conflict"
	CodeOutsideHours     = "outside_business_hours"
	CodeClosed           = "clinic_closed"
	CodeLunchBreak       = "lunch_break"
	CodeBlockedTime      = "blocked_time"
)

type Availability struct {
	Available bool   `json:"available"`
	Code      string `json:"code,omitempty"`
	Reason    string `json:"reason,omitempty"`
}

var available = Availability{Available: true}

func unavailable(code, reason string) Availability {
	return Availability{Code: code, Reason: reason}
}

type AvailabilityQuery struct {
	Date       model.Date
	Time       model.ClockTime
	Duration   int
	ProviderID string
	RoomID     *string
	// AppointmentTypeID is optional. When set it supplies the duration if
	// none is given and enables the double booking exemption.
	AppointmentTypeID string
	// ExcludeID ignores one appointment, used when moving it.
	ExcludeID *uuid.UUID
}

// daySnapshot is everything the checker reads for one provider on one day.
type daySnapshot struct {
	date         model.Date
	hours        model.BusinessHours
	open         bool
	appointments []*model.Appointment
	blocks       []*model.BlockedInterval
}

// loadSnapshot reads the day's state. Caller holds the date lock.
func (s *Service) loadSnapshot(ctx context.Context, date model.Date, providerID string) (*daySnapshot, error) {
	appts, err := s.store.ListByDate(ctx, date, nil)
	if err != nil {
		return nil, errors.NewInternal(fmt.Errorf("failed to list appointments: %w", err))
	}
	blocks, err := s.store.ListBlocks(ctx, providerID, date)
	if err != nil {
		return nil, errors.NewInternal(fmt.Errorf("failed to list blocked time: %w", err))
	}
	hours, open := s.catalog.HoursFor(date)
	return &daySnapshot{
		date:         date,
		hours:        hours,
		open:         open,
		appointments: appts,
		blocks:       blocks,
	}, nil
}

// CheckAvailability reports whether the candidate interval is free. It has
// no side effects.
func (s *Service) CheckAvailability(ctx context.Context, q AvailabilityQuery) (*Availability, error) {
	if q.Date.IsZero() {
		return nil, errors.NewValidation("date is required", nil)
	}
	provider, err := s.registry.Provider(q.ProviderID)
	if err != nil {
		return nil, err
	}
	if q.RoomID != nil {
		if _, err := s.registry.Room(*q.RoomID); err != nil {
			return nil, err
		}
	}

	var apptType *model.AppointmentType
	if q.AppointmentTypeID != "" {
		if apptType, err = s.catalog.AppointmentType(q.AppointmentTypeID); err != nil {
			return nil, err
		}
		if q.Duration == 0 {
			q.Duration = apptType.TotalDuration()
		}
	}
	if q.Duration <= 0 {
		return nil, errors.NewValidation("duration must be positive", nil)
	}

	unlock := s.locks.rlock(q.Date)
	defer unlock()

	snap, err := s.loadSnapshot(ctx, q.Date, provider.ID)
	if err != nil {
		return nil, err
	}
	avail := s.evaluate(snap, provider, q.RoomID, apptType, model.NewInterval(q.Time, q.Duration), q.ExcludeID)
	return &avail, nil
}

// evaluate runs the availability rules in order and returns the first
// failure: provider conflict, room conflict, business hours, lunch break,
// blocked time.
func (s *Service) evaluate(snap *daySnapshot, provider *model.Provider, roomID *string, apptType *model.AppointmentType, candidate model.Interval, exclude *uuid.UUID) Availability {
	for _, a := range snap.appointments {
		if !a.Occupies() || a.ProviderID != provider.ID || isExcluded(a, exclude) {
			continue
		}
		if a.Interval().Overlaps(candidate) && !s.doubleBookable(apptType, a.AppointmentTypeID) {
			return unavailable(CodeProviderConflict, ReasonProviderConflict)
		}
	}

	if roomID != nil {
		for _, a := range snap.appointments {
			if !a.Occupies() || a.RoomID == nil || *a.RoomID != *roomID || isExcluded(a, exclude) {
				continue
			}
			if a.Interval().Overlaps(candidate) {
				return unavailable(CodeRoomConflict, ReasonRoomConflict)
			}
		}
	}

	if !snap.open {
		return unavailable(CodeClosed, ReasonClosed)
	}
	if !candidate.Within(snap.hours.Interval()) {
		return unavailable(CodeOutsideHours, ReasonOutsideHours)
	}

	lunch := s.catalog.Rules().LunchBreak
	if lunch.Enabled() && lunch.AppliesToKind(provider.Kind) && candidate.Overlaps(lunch.Interval()) {
		return unavailable(CodeLunchBreak, ReasonLunchBreak)
	}

	for _, b := range snap.blocks {
		if b.Interval().Overlaps(candidate) {
			return unavailable(CodeBlockedTime, ReasonBlockedTime)
		}
	}
	return available
}

// doubleBookable reports whether the candidate may share the provider's
// time with an existing appointment of existingTypeID. Both types must
// allow it.
func (s *Service) doubleBookable(candidate *model.AppointmentType, existingTypeID string) bool {
	if candidate == nil || !candidate.AllowDoubleBooking {
		return false
	}
	if existingTypeID == candidate.ID {
		return true
	}
	existing, err := s.catalog.AppointmentType(existingTypeID)
	return err == nil && existing.AllowDoubleBooking
}

func isExcluded(a *model.Appointment, exclude *uuid.UUID) bool {
	return exclude != nil && a.ID == *exclude
}

func (s *Service) conflict(avail Availability) error {
	s.metrics.BookingConflicts.WithLabelValues(avail.Code).Inc()
	return errors.NewBookingConflict(avail.Reason)
}
