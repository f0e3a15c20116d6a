package appointment

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/mero-vet/vet-clinic-app-sub000/internal/model"
	"github.com/mero-vet/vet-clinic-app-sub000/internal/service/audit"
	"github.com/mero-vet/vet-clinic-app-sub000/internal/service/event"
	"github.com/mero-vet/vet-clinic-app-sub000/pkg/errors"
)

// CancelResult is a cancelled appointment plus the waitlist entries that
// were notified about the freed slot.
type CancelResult struct {
	Appointment *model.Appointment     `json:"appointment"`
	Notified    []*model.WaitlistEntry `json:"notified"`
}

// UpdateAppointmentStatus moves the appointment through its lifecycle and
// applies the side effects of the target status.
func (s *Service) UpdateAppointmentStatus(ctx context.Context, id uuid.UUID, status model.AppointmentStatus) (*model.Appointment, error) {
	if !status.Valid() {
		return nil, errors.NewValidation(fmt.Sprintf("unknown status %q", status), nil)
	}
	if status == model.AppointmentStatusCancelled {
		res, err := s.CancelAppointment(ctx, id, "")
		if err != nil {
			return nil, err
		}
		return res.Appointment, nil
	}

	appt, prev, err := s.transition(ctx, id, status)
	if err != nil {
		return nil, err
	}

	s.metrics.StatusTransitions.WithLabelValues(string(status)).Inc()
	payload := event.NewAppointmentPayload(appt, appt.UpdatedAt)
	payload.PreviousStatus = prev
	s.emit(ctx, model.EventAppointmentStatusChanged, payload)
	s.record(ctx, audit.ActionStatusChange, appt, map[string]interface{}{"from": string(prev)})

	log := s.logger.WithContext(ctx)
	log.Info("appointment status changed",
		"appointment_id", appt.ID.String(),
		"from", string(prev),
		"to", string(status),
	)
	if appt.ExceedsNoShowLimit {
		log.Warn("client reached the no-show limit", "client_id", appt.ClientID)
	}
	return appt, nil
}

func (s *Service) transition(ctx context.Context, id uuid.UUID, status model.AppointmentStatus) (*model.Appointment, model.AppointmentStatus, error) {
	appt, unlock, err := s.lockAppointment(ctx, id)
	if err != nil {
		return nil, "", err
	}
	defer unlock()

	prev := appt.Status
	if !prev.CanTransitionTo(status) {
		return nil, "", errors.NewInvalidTransition(string(prev), string(status))
	}

	now := s.now()
	switch status {
	case model.AppointmentStatusArrived:
		appt.ArrivedAt = &now
	case model.AppointmentStatusInProgress:
		appt.InRoomAt = &now
		if appt.ArrivedAt != nil {
			wait := int(now.Sub(*appt.ArrivedAt) / time.Minute)
			appt.WaitMinutes = &wait
		}
	case model.AppointmentStatusCompleted:
		appt.CompletedAt = &now
	case model.AppointmentStatusNoShow:
		appt.NoShow = true
		count, err := s.store.IncrementNoShows(ctx, appt.ClientID)
		if err != nil {
			return nil, "", errors.NewInternal(fmt.Errorf("failed to count no-show: %w", err))
		}
		if limit := s.catalog.Rules().NoShowLimit; limit > 0 && count >= limit {
			appt.ExceedsNoShowLimit = true
		}
	}
	appt.Status = status
	appt.UpdatedAt = now

	if err := s.store.Update(ctx, appt); err != nil {
		return nil, "", errors.NewInternal(fmt.Errorf("failed to update appointment: %w", err))
	}
	return appt, prev, nil
}

// CancelAppointment cancels the appointment, flags it late when inside the
// cancellation window and offers the freed slot to the waitlist.
func (s *Service) CancelAppointment(ctx context.Context, id uuid.UUID, reason string) (*CancelResult, error) {
	if err := s.validator.ValidateField("reason", reason, "max=500"); err != nil {
		return nil, errors.NewValidation("invalid cancellation reason", err)
	}

	appt, err := s.cancel(ctx, id, reason)
	if err != nil {
		return nil, err
	}

	s.metrics.StatusTransitions.WithLabelValues(string(model.AppointmentStatusCancelled)).Inc()
	s.metrics.Cancellations.WithLabelValues(strconv.FormatBool(appt.LateCancellation)).Inc()
	s.emit(ctx, model.EventAppointmentCancelled, event.NewAppointmentPayload(appt, appt.UpdatedAt))
	s.record(ctx, audit.ActionCancel, appt, map[string]interface{}{
		"reason": reason,
		"late":   appt.LateCancellation,
	})

	res := &CancelResult{Appointment: appt}
	if s.waitlist != nil {
		notified, err := s.waitlist.Process(ctx, appt.Date, appt.AppointmentTypeID, appt.ProviderID)
		if err != nil {
			s.logger.WithContext(ctx).Error(err, "failed to process waitlist", "appointment_id", appt.ID.String())
		}
		res.Notified = notified
	}

	s.logger.WithContext(ctx).Info("appointment cancelled",
		"appointment_id", appt.ID.String(),
		"late", appt.LateCancellation,
		"waitlist_notified", len(res.Notified),
	)
	return res, nil
}

func (s *Service) cancel(ctx context.Context, id uuid.UUID, reason string) (*model.Appointment, error) {
	appt, unlock, err := s.lockAppointment(ctx, id)
	if err != nil {
		return nil, err
	}
	defer unlock()

	if !appt.Status.CanTransitionTo(model.AppointmentStatusCancelled) {
		return nil, errors.NewInvalidTransition(string(appt.Status), string(model.AppointmentStatusCancelled))
	}

	now := s.now()
	appt.Status = model.AppointmentStatusCancelled
	appt.CancelledAt = &now
	appt.UpdatedAt = now
	if reason != "" {
		appt.CancelReason = &reason
	}
	if hours := s.catalog.Rules().CancellationWindowHours; hours > 0 {
		appt.LateCancellation = appt.StartsAt(s.loc).Sub(now) < time.Duration(hours)*time.Hour
	}

	if err := s.store.Update(ctx, appt); err != nil {
		return nil, errors.NewInternal(fmt.Errorf("failed to update appointment: %w", err))
	}
	return appt, nil
}
